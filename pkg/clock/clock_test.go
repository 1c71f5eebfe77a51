package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Fixed(start)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now(), "fixed clock does not drift")

	c.Advance(36 * time.Hour)
	assert.Equal(t, start.Add(36*time.Hour), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	now := System().Now()
	assert.Equal(t, time.UTC, now.Location())
}
