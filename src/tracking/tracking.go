// Package tracking records per-user activity for usage statistics.
package tracking

import (
	"context"
	"log"
	"time"
)

const touchTimeout = 3 * time.Second

// User identifies whoever sent an update.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// Stats are the user counters reported by /stats.
type Stats struct {
	Total int64 `json:"u_total"`
	Day   int64 `json:"u_24h"`
	Week  int64 `json:"u_7d"`
}

// Tracker upserts activity: first sight sets joined_at, every call bumps
// interaction_count and last_active_at.
type Tracker interface {
	Touch(ctx context.Context, u User) error
	Stats(ctx context.Context) (Stats, error)
}

// Record fires a Touch in the background. Failures are logged and dropped.
func Record(t Tracker, u User) {
	if t == nil || u.ID == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := t.Touch(ctx, u); err != nil {
			log.Printf("tracking: touch %d: %v", u.ID, err)
		}
	}()
}

// Nop discards activity.
type Nop struct{}

func (Nop) Touch(context.Context, User) error     { return nil }
func (Nop) Stats(context.Context) (Stats, error) { return Stats{}, nil }
