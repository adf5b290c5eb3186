// Package rate enforces per-user cooldowns between gated commands.
package rate

import (
	"sync"
	"time"
)

// Action identifies a cooldown-gated command kind.
type Action string

const (
	// ActionCreate gates group creation.
	ActionCreate Action = "create"
	// ActionNotify gates group pings.
	ActionNotify Action = "notify"
)

type cooldownKey struct {
	userID uint64
	action Action
}

// Limiter tracks the last successful use of each gated action per user.
// State is process-local and cache-like: losing it on restart only lifts
// cooldowns early, never corrupts anything.
type Limiter struct {
	mu        sync.Mutex
	lastUsed  map[cooldownKey]time.Time
	durations map[Action]time.Duration
	now       func() time.Time
}

// New creates a limiter with the given cooldown duration per action.
func New(durations map[Action]time.Duration) *Limiter {
	return &Limiter{
		lastUsed:  make(map[cooldownKey]time.Time),
		durations: durations,
		now:       time.Now,
	}
}

// NewWithClock creates a limiter with an injected clock for tests.
func NewWithClock(durations map[Action]time.Duration, now func() time.Time) *Limiter {
	l := New(durations)
	l.now = now

	return l
}

// Check reports whether the user is on cooldown for the action and, if so,
// how long remains. Expired entries are evicted lazily here; there is no
// background sweep.
func (l *Limiter) Check(userID uint64, action Action) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := cooldownKey{userID: userID, action: action}

	last, ok := l.lastUsed[key]
	if !ok {
		return 0, false
	}

	elapsed := l.now().Sub(last)
	if elapsed >= l.durations[action] {
		delete(l.lastUsed, key)
		return 0, false
	}

	return l.durations[action] - elapsed, true
}

// Arm stamps the user's last use of the action with the current time.
// Callers arm only after the gated action actually succeeded; arming a
// failed attempt would penalize the user for nothing.
func (l *Limiter) Arm(userID uint64, action Action) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastUsed[cooldownKey{userID: userID, action: action}] = l.now()
}

// RemainingSeconds converts a remaining cooldown to whole seconds, rounding
// up so a user is never told zero while still blocked.
func RemainingSeconds(remaining time.Duration) int {
	return int((remaining + time.Second - 1) / time.Second)
}
