package clock

import (
	"sync"
	"time"
)

// Clock 时间来源抽象，便于在测试中固定时间
type Clock interface {
	Now() time.Time
}

// RealClock 使用系统时间
type RealClock struct{}

// Now 返回当前系统时间
func (RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock 可手动推进的时钟，仅用于测试
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock 创建固定在 t 的时钟
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now 返回当前伪造时间
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set 将时钟设置到 t
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance 将时钟向前推进 d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
