package postgres

import (
	"context"

	"github.com/atokschool/archiving-portal/internal/activity"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) CreateLog(ctx context.Context, entry *activity.Log) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ActivityRepository) CreateDownloadLog(ctx context.Context, entry *activity.DownloadLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*activity.LogWithUser, error) {
	var entries []*activity.LogWithUser

	err := r.db.WithContext(ctx).
		Table("activity_logs al").
		Select("al.*, u.full_name").
		Joins("JOIN users u ON al.user_id = u.id").
		Order("al.created_at DESC").
		Limit(limit).
		Find(&entries).Error

	return entries, err
}
