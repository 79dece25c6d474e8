// Package tasks stores the secretary bot's parsed notes and to-dos.
package tasks

import (
	"context"
	"errors"
	"time"
)

// Status only ever moves from Pending to Done.
type Status string

const (
	Pending Status = "pending"
	Done    Status = "done"
)

// DefaultLimit caps Active listings.
const DefaultLimit = 50

// ErrNoSuchTask is returned by MarkDone for an index outside the active list.
var ErrNoSuchTask = errors.New("tasks: no such active task")

// Task is one parsed message.
type Task struct {
	ID        string
	UserID    int64
	Type      string
	Action    string
	Tag       string
	Deadline  string
	Status    Status
	CreatedAt time.Time
}

// Stats are global counters for /stats and the admin endpoint.
type Stats struct {
	Total   int64 `json:"t_total"`
	Pending int64 `json:"t_pending"`
}

// Store persists tasks.
type Store interface {
	Add(ctx context.Context, t Task) (Task, error)
	// Active lists pending tasks, newest first.
	Active(ctx context.Context, user int64, limit int) ([]Task, error)
	// MarkDone flips the index-th (1-based) task of Active to done.
	MarkDone(ctx context.Context, user int64, index int) (Task, error)
	Stats(ctx context.Context) (Stats, error)
}

func normalize(t Task) Task {
	if t.Status == "" {
		t.Status = Pending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultLimit {
		return DefaultLimit
	}
	return limit
}

// pick resolves a 1-based index against an Active listing.
func pick(active []Task, index int) (Task, error) {
	if index < 1 || index > len(active) {
		return Task{}, ErrNoSuchTask
	}
	return active[index-1], nil
}
