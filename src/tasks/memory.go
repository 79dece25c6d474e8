package tasks

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore keeps tasks in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	seq   int
	tasks []Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Add(_ context.Context, t Task) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t = normalize(t)
	t.ID = strconv.Itoa(m.seq)
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *MemoryStore) Active(_ context.Context, user int64, limit int) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active(user, clampLimit(limit)), nil
}

func (m *MemoryStore) active(user int64, limit int) []Task {
	var out []Task
	for _, t := range m.tasks {
		if t.UserID == user && t.Status == Pending {
			out = append(out, t)
		}
	}
	// Newest first; later inserts win ties.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a > b
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *MemoryStore) MarkDone(_ context.Context, user int64, index int) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, err := pick(m.active(user, DefaultLimit), index)
	if err != nil {
		return Task{}, err
	}
	for i := range m.tasks {
		if m.tasks[i].ID == target.ID && m.tasks[i].Status == Pending {
			m.tasks[i].Status = Done
			return m.tasks[i], nil
		}
	}
	return Task{}, ErrNoSuchTask
}

func (m *MemoryStore) Stats(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Stats
	for _, t := range m.tasks {
		s.Total++
		if t.Status == Pending {
			s.Pending++
		}
	}
	return s, nil
}
