package tasks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Record is the SQL row for a Task.
type Record struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index:idx_tasks_user_status;not null"`
	Type      string    `gorm:"size:32"`
	Action    string    `gorm:"type:text"`
	Tag       string    `gorm:"size:64"`
	Deadline  string    `gorm:"size:64"`
	Status    string    `gorm:"size:16;index:idx_tasks_user_status;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (Record) TableName() string { return "tasks" }

func (r Record) task() Task {
	return Task{
		ID:        strconv.FormatUint(r.ID, 10),
		UserID:    r.UserID,
		Type:      r.Type,
		Action:    r.Action,
		Tag:       r.Tag,
		Deadline:  r.Deadline,
		Status:    Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// SQLStore keeps tasks in Postgres, MySQL or SQLite through gorm.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the tasks table.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("tasks: migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Add(ctx context.Context, t Task) (Task, error) {
	t = normalize(t)
	rec := Record{
		UserID:    t.UserID,
		Type:      t.Type,
		Action:    t.Action,
		Tag:       t.Tag,
		Deadline:  t.Deadline,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return Task{}, fmt.Errorf("tasks: add: %w", err)
	}
	return rec.task(), nil
}

func (s *SQLStore) Active(ctx context.Context, user int64, limit int) ([]Task, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", user, string(Pending)).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("tasks: active: %w", err)
	}
	out := make([]Task, len(recs))
	for i, r := range recs {
		out[i] = r.task()
	}
	return out, nil
}

func (s *SQLStore) MarkDone(ctx context.Context, user int64, index int) (Task, error) {
	active, err := s.Active(ctx, user, DefaultLimit)
	if err != nil {
		return Task{}, err
	}
	target, err := pick(active, index)
	if err != nil {
		return Task{}, err
	}
	res := s.db.WithContext(ctx).Model(&Record{}).
		Where("id = ? AND status = ?", target.ID, string(Pending)).
		Update("status", string(Done))
	if res.Error != nil {
		return Task{}, fmt.Errorf("tasks: mark done: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return Task{}, ErrNoSuchTask
	}
	target.Status = Done
	return target, nil
}

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&st.Total).Error; err != nil {
		return Stats{}, fmt.Errorf("tasks: stats: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&Record{}).Where("status = ?", string(Pending)).Count(&st.Pending).Error; err != nil {
		return Stats{}, fmt.Errorf("tasks: stats: %w", err)
	}
	return st, nil
}
