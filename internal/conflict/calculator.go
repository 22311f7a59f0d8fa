package conflict

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/pkg/clock"
)

// PlanState 计划条目的只读视图与变更通知
type PlanState interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Subscribe(fn func()) (unsubscribe func())
}

// Detector 在快照上产出冲突列表，Engine 实现该接口
type Detector interface {
	Detect(ctx context.Context, snap Snapshot, term string, year int) ([]Conflict, error)
}

// Calculator 把检测结果发布到 Store，并在计划变更时自动重算
// 同一时刻只有一个同步会话，开启新会话会先关闭旧会话
type Calculator struct {
	detector Detector
	plan     PlanState
	store    *Store
	clock    clock.Clock
	logger   *zap.Logger

	mu          sync.Mutex
	session     uint64
	term        string
	year        int
	active      bool
	cancel      context.CancelFunc
	unsubscribe func()

	// 进行中的后台计算数，计划变更可能在 Wait 期间追加计算
	idleMu   sync.Mutex
	idle     *sync.Cond
	inflight int
}

// CalculatorOption Calculator 可选配置
type CalculatorOption func(*Calculator)

// WithCalculatorClock 替换时间来源（测试用）
func WithCalculatorClock(clk clock.Clock) CalculatorOption {
	return func(c *Calculator) { c.clock = clk }
}

// NewCalculator 创建 Calculator；store 由调用方注入，一个规划会话一个
func NewCalculator(detector Detector, plan PlanState, store *Store, logger *zap.Logger, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		detector: detector,
		plan:     plan,
		store:    store,
		clock:    clock.RealClock{},
		logger:   logger,
	}
	c.idle = sync.NewCond(&c.idleMu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate 计算并发布一次冲突结果，不返回错误
// 失败时保留上一次的冲突列表，只复位加载状态
func (c *Calculator) Calculate(ctx context.Context, term string, year int) {
	gen := c.store.Begin()

	snap, err := c.plan.Snapshot(ctx)
	if err != nil {
		c.logger.Error("读取计划快照失败",
			zap.String("term", term), zap.Int("year", year), zap.Error(err))
		c.store.Fail(gen)
		return
	}

	conflicts, err := c.detector.Detect(ctx, snap, term, year)
	if err != nil {
		c.logger.Error("冲突计算失败",
			zap.String("term", term), zap.Int("year", year), zap.Error(err))
		c.store.Fail(gen)
		return
	}

	// 会话已关闭时查询可能因取消而缺数据，结果不可信
	if ctx.Err() != nil {
		c.store.Fail(gen)
		return
	}

	if !c.store.Publish(gen, conflicts, c.clock.Now()) {
		c.logger.Debug("丢弃过期的冲突计算结果",
			zap.Uint64("generation", gen), zap.String("term", term), zap.Int("year", year))
	}
}

// StartSync 立即异步计算一次，并在每次计划变更时重算
// 返回的 stop 只关闭本次会话；会话被新的 StartSync 替换后再调用无效果
func (c *Calculator) StartSync(ctx context.Context, term string, year int) (stop func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	syncCtx, cancel := context.WithCancel(ctx)
	c.session++
	session := c.session
	c.term, c.year, c.active = term, year, true
	c.cancel = cancel

	c.launch(syncCtx, term, year)
	c.unsubscribe = c.plan.Subscribe(func() {
		c.launch(syncCtx, term, year)
	})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.session == session {
			c.stopLocked()
		}
	}
}

// Stop 关闭当前同步会话
func (c *Calculator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Session 当前同步会话的学期
func (c *Calculator) Session() (term string, year int, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term, c.year, c.active
}

// Wait 等待所有进行中的后台计算结束
func (c *Calculator) Wait() {
	c.idleMu.Lock()
	defer c.idleMu.Unlock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

// WaitContext 同 Wait，ctx 结束时提前返回 ctx.Err()
func (c *Calculator) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConflictsForTerm 当前发布结果中指定学期的冲突
func (c *Calculator) ConflictsForTerm(term string, year int) []Conflict {
	return c.store.ConflictsFor(term, year)
}

// ConflictCount 当前发布结果中指定学期的冲突数
func (c *Calculator) ConflictCount(term string, year int) int {
	return c.store.Count(term, year)
}

// State 当前发布状态
func (c *Calculator) State() State {
	return c.store.State()
}

func (c *Calculator) launch(ctx context.Context, term string, year int) {
	if ctx.Err() != nil {
		return
	}
	c.idleMu.Lock()
	c.inflight++
	c.idleMu.Unlock()

	go func() {
		defer func() {
			c.idleMu.Lock()
			c.inflight--
			if c.inflight == 0 {
				c.idle.Broadcast()
			}
			c.idleMu.Unlock()
		}()
		c.Calculate(ctx, term, year)
	}()
}

func (c *Calculator) stopLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.active = false
}
