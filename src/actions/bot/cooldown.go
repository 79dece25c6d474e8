package bot

import (
	"sync"
	"time"
)

// Cooldown allows one use per key per interval.
type Cooldown struct {
	users map[int64]time.Time
	mu    sync.Mutex
	limit time.Duration
	now   func() time.Time
}

func NewCooldown(limit time.Duration) *Cooldown {
	return &Cooldown{
		users: make(map[int64]time.Time),
		limit: limit,
		now:   time.Now,
	}
}

// CanUse records a use and reports whether it was allowed.
func (cd *Cooldown) CanUse(user int64) bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	now := cd.now()
	// Drop users whose cooldown has run out.
	for u, last := range cd.users {
		if now.Sub(last) >= cd.limit {
			delete(cd.users, u)
		}
	}

	if _, waiting := cd.users[user]; waiting {
		return false
	}
	cd.users[user] = now
	return true
}

// TimeUntilNext is how long user must wait.
func (cd *Cooldown) TimeUntilNext(user int64) time.Duration {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	lastUse, exists := cd.users[user]
	if !exists {
		return 0
	}

	elapsed := cd.now().Sub(lastUse)
	if elapsed >= cd.limit {
		return 0
	}
	return cd.limit - elapsed
}

// Reset forgets user, e.g. after a run failed before doing any work.
func (cd *Cooldown) Reset(user int64) {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	delete(cd.users, user)
}
