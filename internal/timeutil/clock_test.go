package timeutil

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	before := time.Now()
	got := c.Now()
	if got.Before(before) {
		t.Errorf("Now() = %v, earlier than %v", got, before)
	}
	if c.Since(before) < 0 {
		t.Error("Since() returned a negative duration")
	}
}

func TestMockClockSteps(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Step = 250 * time.Millisecond

	first := c.Now()
	second := c.Now()

	if !first.Equal(start) {
		t.Errorf("first Now() = %v, want %v", first, start)
	}
	if d := second.Sub(first); d != 250*time.Millisecond {
		t.Errorf("step = %v, want 250ms", d)
	}
	if d := c.Since(first); d != 500*time.Millisecond {
		t.Errorf("Since(first) = %v, want 500ms", d)
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(RealClock); !ok {
		t.Error("Or(nil) should return RealClock")
	}
	m := NewMockClock(time.Unix(0, 0))
	if Or(m) != m {
		t.Error("Or(m) should return m")
	}
}
