package activity

import (
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	CreateLog(ctx context.Context, entry *Log) error
	CreateDownloadLog(ctx context.Context, entry *DownloadLog) error
	Recent(ctx context.Context, limit int) ([]*LogWithUser, error)
}

// Service appends audit entries. Every write is best-effort: a failed
// audit insert is logged but never fails the user-facing request.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log satisfies auth.ActivityLogger.
func (s *Service) Log(ctx context.Context, userID int64, action, description, ip string) {
	s.LogWithRecord(ctx, userID, action, description, nil, ip)
}

// LogWithRecord appends an entry optionally linked to a stored record.
func (s *Service) LogWithRecord(ctx context.Context, userID int64, action, description string, recordID *int64, ip string) {
	entry := &Log{
		UserID:      userID,
		Action:      action,
		Description: description,
		RecordID:    recordID,
		IPAddress:   ip,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateLog(ctx, entry); err != nil {
		s.logger.Error("failed to write activity log", "error", err, "user_id", userID, "action", action)
	}
}

// LogDownload appends a download-log row for a record of the given kind.
func (s *Service) LogDownload(ctx context.Context, userID int64, recordKind string, recordID int64, ip string) {
	entry := &DownloadLog{
		UserID:     userID,
		RecordKind: recordKind,
		RecordID:   recordID,
		IPAddress:  ip,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateDownloadLog(ctx, entry); err != nil {
		s.logger.Error("failed to write download log", "error", err, "user_id", userID, "record_id", recordID)
	}
}

// Recent returns the newest entries joined with user names.
func (s *Service) Recent(ctx context.Context, limit int) ([]*LogWithUser, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Recent(ctx, limit)
}
