package clock

import "time"

// Clock is an injectable time source. Loan due dates, fines and the overdue
// sweep all derive from Clock.Now so they stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by time.Now in UTC.
func System() Clock { return systemClock{} }

// Fixed returns a Clock pinned to t. Test helper.
func Fixed(t time.Time) *FixedClock { return &FixedClock{now: t} }

// FixedClock is a manually advanced Clock.
type FixedClock struct {
	now time.Time
}

func (c *FixedClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set pins the clock to t.
func (c *FixedClock) Set(t time.Time) { c.now = t }
