package plan

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	"github.com/satwikShresth/OpenMario-sub003/pkg/clock"
)

// Session 一个学生的规划会话：计划集合 + 冲突状态 + 计算器
type Session struct {
	Plan       *Collection
	Store      *conflict.Store
	Calculator *conflict.Calculator
}

type hubEntry struct {
	session  *Session
	lastUsed time.Time
}

// Hub 按学生管理规划会话，会话按需创建
// 超过 idleTTL 未被访问的会话会被停止并移除
type Hub struct {
	detector  conflict.Detector
	events    repository.PlanEventRepository
	completed repository.CompletedCourseRepository
	logger    *zap.Logger
	clock     clock.Clock
	idleTTL   time.Duration

	mu       sync.Mutex
	sessions map[string]*hubEntry

	done      chan struct{}
	closeOnce sync.Once
}

// HubOption Hub 可选配置
type HubOption func(*Hub)

// WithIdleTTL 会话闲置上限，<=0 时不回收
func WithIdleTTL(d time.Duration) HubOption {
	return func(h *Hub) { h.idleTTL = d }
}

// WithHubClock 替换时间来源（测试用）
func WithHubClock(clk clock.Clock) HubOption {
	return func(h *Hub) { h.clock = clk }
}

// NewHub 创建 Hub；detector 在所有会话间共享
// 设置了 idleTTL 时启动后台回收，Close 时停止
func NewHub(detector conflict.Detector, events repository.PlanEventRepository, completed repository.CompletedCourseRepository, logger *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		detector:  detector,
		events:    events,
		completed: completed,
		logger:    logger,
		clock:     clock.RealClock{},
		sessions:  make(map[string]*hubEntry),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.idleTTL > 0 {
		go h.janitor(h.idleTTL / 2)
	}
	return h
}

// Session 取得学生的会话，不存在时创建；每次访问刷新闲置计时
func (h *Hub) Session(userID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	if e, ok := h.sessions[userID]; ok {
		e.lastUsed = now
		return e.session
	}

	col := NewCollection(userID, h.events, h.completed, h.logger)
	store := conflict.NewStore()
	s := &Session{
		Plan:       col,
		Store:      store,
		Calculator: conflict.NewCalculator(h.detector, col, store, h.logger.With(zap.String("user_id", userID))),
	}
	h.sessions[userID] = &hubEntry{session: s, lastUsed: now}
	return s
}

// Len 当前会话数
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Notify 学生计划变更；没有会话时无需处理
func (h *Hub) Notify(userID string) {
	h.mu.Lock()
	e, ok := h.sessions[userID]
	h.mu.Unlock()

	if ok {
		e.session.Plan.Notify()
	}
}

// EvictIdle 停止并移除闲置超过 idleTTL 的会话，返回移除数量
func (h *Hub) EvictIdle() int {
	if h.idleTTL <= 0 {
		return 0
	}
	cutoff := h.clock.Now().Add(-h.idleTTL)

	h.mu.Lock()
	var idle []*Session
	for userID, e := range h.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.session)
			delete(h.sessions, userID)
		}
	}
	h.mu.Unlock()

	stopAll(idle)
	if len(idle) > 0 {
		h.logger.Debug("回收闲置规划会话", zap.Int("evicted", len(idle)))
	}
	return len(idle)
}

// Close 停止回收与所有同步会话，并等待进行中的计算
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, e := range h.sessions {
		sessions = append(sessions, e.session)
	}
	h.mu.Unlock()

	stopAll(sessions)
}

func (h *Hub) janitor(interval time.Duration) {
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.EvictIdle()
		case <-h.done:
			return
		}
	}
}

func stopAll(sessions []*Session) {
	for _, s := range sessions {
		s.Calculator.Stop()
		s.Calculator.Wait()
	}
}
