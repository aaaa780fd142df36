package types

import (
	"sync"
	"time"
)

// Clock produces the monotonically non-decreasing wall-clock
// millisecond timestamps the resync queue orders on (spec §9: "the
// queue tolerates forward jumps but not backward ones"). It is backed
// by time.Now (wall clock, so timestamps are meaningful across
// restarts) but rebases against the last value handed out, so an NTP
// step backward never un-does queue ordering within a process
// lifetime.
type Clock struct {
	mu   sync.Mutex
	last int64
}

// NewClock returns a Clock seeded at the current wall-clock time.
func NewClock() *Clock {
	return &Clock{last: time.Now().UnixMilli()}
}

// NowMsec returns the current millisecond timestamp, guaranteed to be
// >= any value previously returned by this Clock.
func (c *Clock) NowMsec() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return uint64(now)
}

// defaultClock is the process-wide clock used by package-level helpers.
var defaultClock = NewClock()

// NowMsec returns the current millisecond timestamp from the default
// process-wide Clock.
func NowMsec() uint64 {
	return defaultClock.NowMsec()
}
