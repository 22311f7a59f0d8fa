package requisite

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/satwikShresth/OpenMario-sub003/pkg/clock"
)

// KeyPrefix 远端缓存 key 前缀
const KeyPrefix = "requisites:"

const defaultFetchTimeout = 10 * time.Second

// RemoteStore 二级缓存（Redis）
type RemoteStore interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

type cacheEntry struct {
	value     *CourseRequisites
	expiresAt time.Time
}

// Cache 带时效的先修结构缓存
//
// 同一课程的并发查询通过 singleflight 合并为一次回源；条目在 ttl 后过期。
// 目录数据变更不会主动失效缓存，只能等过期或调用 Flush。
// 查询失败不缓存。
// 合并后的回源不受任何单个调用方取消的影响，只受 fetchTimeout 约束；
// 调用方各自等待自己的 ctx。
type Cache struct {
	source       Source
	remote       RemoteStore
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        clock.Clock
	logger       *zap.Logger

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// CacheOption Cache 可选配置
type CacheOption func(*Cache)

// WithRemote 启用二级缓存
func WithRemote(remote RemoteStore) CacheOption {
	return func(c *Cache) { c.remote = remote }
}

// WithFetchTimeout 设置单次合并回源的超时，<=0 时不设上限
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *Cache) { c.fetchTimeout = d }
}

// WithClock 替换时间来源（测试用）
func WithClock(clk clock.Clock) CacheOption {
	return func(c *Cache) { c.clock = clk }
}

// NewCache 创建缓存
func NewCache(source Source, ttl time.Duration, logger *zap.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		source:       source,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		clock:        clock.RealClock{},
		logger:       logger,
		entries:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCourseRequisites 先查本地，再查远端，最后回源
func (c *Cache) GetCourseRequisites(ctx context.Context, courseID string) (*CourseRequisites, error) {
	if v, ok := c.lookup(courseID); ok {
		return v, nil
	}

	ch := c.group.DoChan(courseID, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), courseID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*CourseRequisites), nil
	}
}

// fetch 在合并后的回源中执行：远端缓存 → 数据源
func (c *Cache) fetch(ctx context.Context, courseID string) (*CourseRequisites, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	// 排队期间可能已被其他调用写入
	if v, ok := c.lookup(courseID); ok {
		return v, nil
	}

	if v, ok := c.lookupRemote(ctx, courseID); ok {
		c.store(courseID, v)
		return v, nil
	}

	v, err := c.source.GetCourseRequisites(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.store(courseID, v)
	c.storeRemote(ctx, courseID, v)
	return v, nil
}

// Flush 清空本地与远端缓存，返回本地清除的条目数
func (c *Cache) Flush(ctx context.Context) (int, error) {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()

	if c.remote != nil {
		if _, err := c.remote.DeletePrefix(ctx, KeyPrefix); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Len 当前未过期条目数
func (c *Cache) Len() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(courseID string) (*CourseRequisites, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[courseID]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, courseID)
		return nil, false
	}
	return e.value, true
}

// store 同一课程的重复写入是等价的，直接覆盖
func (c *Cache) store(courseID string, v *CourseRequisites) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[courseID] = cacheEntry{value: v, expiresAt: c.clock.Now().Add(c.ttl)}
}

func (c *Cache) lookupRemote(ctx context.Context, courseID string) (*CourseRequisites, bool) {
	if c.remote == nil {
		return nil, false
	}
	var v CourseRequisites
	ok, err := c.remote.GetJSON(ctx, KeyPrefix+courseID, &v)
	if err != nil {
		c.logger.Warn("读取远端先修缓存失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &v, true
}

func (c *Cache) storeRemote(ctx context.Context, courseID string, v *CourseRequisites) {
	if c.remote == nil {
		return
	}
	if err := c.remote.SetJSON(ctx, KeyPrefix+courseID, v, c.ttl); err != nil {
		c.logger.Warn("写入远端先修缓存失败", zap.String("course_id", courseID), zap.Error(err))
	}
}
