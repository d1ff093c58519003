package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atokschool/archiving-portal/internal/backup"
)

type BackupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) backup.Repository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Create(ctx context.Context, b *backup.Log) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BackupRepository) GetByID(ctx context.Context, id int64) (*backup.Log, error) {
	var b backup.Log
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, backup.ErrBackupNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BackupRepository) List(ctx context.Context) ([]*backup.Log, error) {
	var logs []*backup.Log
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&logs).Error
	return logs, err
}

func (r *BackupRepository) Stats(ctx context.Context) (*backup.Stats, error) {
	var stats backup.Stats

	err := r.db.WithContext(ctx).
		Model(&backup.Log{}).
		Select("COUNT(*) AS total_backups, COALESCE(SUM(file_size), 0) AS total_size").
		Row().
		Scan(&stats.TotalBackups, &stats.TotalSize)
	if err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	err = r.db.WithContext(ctx).
		Model(&backup.Log{}).
		Where("created_at >= ?", weekAgo).
		Count(&stats.LastSevenDay).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
