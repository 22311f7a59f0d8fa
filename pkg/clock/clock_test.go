package clock

import (
	"testing"
	"time"
)

func TestFakeClock_AdvanceAndSet(t *testing.T) {
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	if !c.Now().Equal(start) {
		t.Fatalf("期望 Now=%v，实际=%v", start, c.Now())
	}

	c.Advance(5 * time.Minute)
	if want := start.Add(5 * time.Minute); !c.Now().Equal(want) {
		t.Errorf("期望 Advance 后=%v，实际=%v", want, c.Now())
	}

	later := start.Add(24 * time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("期望 Set 后=%v，实际=%v", later, c.Now())
	}
}

func TestRealClock_Monotonic(t *testing.T) {
	var c Clock = RealClock{}
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Error("RealClock 时间不应倒退")
	}
}
