// Package stats merges user and task counters into the global report.
package stats

import (
	"context"
	"fmt"

	"github.com/teambots/teambots/src/tasks"
	"github.com/teambots/teambots/src/tracking"
)

// Global is the flat report shared by /stats and GET /admin/stats.
type Global struct {
	UsersTotal   int64 `json:"u_total"`
	UsersDay     int64 `json:"u_24h"`
	UsersWeek    int64 `json:"u_7d"`
	TasksTotal   int64 `json:"t_total"`
	TasksPending int64 `json:"t_pending"`
}

// Collect queries both sources. Either may be nil.
func Collect(ctx context.Context, tr tracking.Tracker, ts tasks.Store) (Global, error) {
	var g Global
	if tr != nil {
		s, err := tr.Stats(ctx)
		if err != nil {
			return g, fmt.Errorf("stats: users: %w", err)
		}
		g.UsersTotal, g.UsersDay, g.UsersWeek = s.Total, s.Day, s.Week
	}
	if ts != nil {
		s, err := ts.Stats(ctx)
		if err != nil {
			return g, fmt.Errorf("stats: tasks: %w", err)
		}
		g.TasksTotal, g.TasksPending = s.Total, s.Pending
	}
	return g, nil
}

// Text renders g for a chat message.
func (g Global) Text() string {
	return fmt.Sprintf("👥 Пользователи: %d (24ч: %d, 7д: %d)\n📌 Задачи: %d (активных: %d)",
		g.UsersTotal, g.UsersDay, g.UsersWeek, g.TasksTotal, g.TasksPending)
}
