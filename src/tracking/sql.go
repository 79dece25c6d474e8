package tracking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Activity is the SQL row for one user.
type Activity struct {
	UserID           int64     `gorm:"primaryKey;autoIncrement:false"`
	Username         string    `gorm:"size:64"`
	FirstName        string    `gorm:"size:128"`
	JoinedAt         time.Time `gorm:"not null"`
	LastActiveAt     time.Time `gorm:"index;not null"`
	InteractionCount int64     `gorm:"not null;default:0"`
}

func (Activity) TableName() string { return "users" }

// SQLTracker upserts into the users table.
type SQLTracker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQLTracker(db *gorm.DB) (*SQLTracker, error) {
	if err := db.AutoMigrate(&Activity{}); err != nil {
		return nil, fmt.Errorf("tracking: migrate: %w", err)
	}
	return &SQLTracker{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLTracker) Touch(ctx context.Context, u User) error {
	now := s.now()
	row := Activity{
		UserID:           u.ID,
		Username:         u.Username,
		FirstName:        u.FirstName,
		JoinedAt:         now,
		LastActiveAt:     now,
		InteractionCount: 1,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"username":          u.Username,
			"first_name":        u.FirstName,
			"last_active_at":    now,
			"interaction_count": gorm.Expr("users.interaction_count + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("tracking: touch: %w", err)
	}
	return nil
}

func (s *SQLTracker) Stats(ctx context.Context) (Stats, error) {
	now := s.now()
	var st Stats
	q := func() *gorm.DB { return s.db.WithContext(ctx).Model(&Activity{}) }
	if err := q().Count(&st.Total).Error; err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	if err := q().Where("last_active_at >= ?", now.Add(-24*time.Hour)).Count(&st.Day).Error; err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	if err := q().Where("last_active_at >= ?", now.Add(-7*24*time.Hour)).Count(&st.Week).Error; err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	return st, nil
}
