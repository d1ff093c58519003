package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/atokschool/archiving-portal/internal/activity"
	"github.com/atokschool/archiving-portal/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, b *Log) error
	GetByID(ctx context.Context, id int64) (*Log, error)
	List(ctx context.Context) ([]*Log, error)
	Stats(ctx context.Context) (*Stats, error)
}

type ActivityLogger interface {
	Log(ctx context.Context, userID int64, action, description, ip string)
}

type Service struct {
	repo       Repository
	uploadRoot string
	backupDir  string
	activity   ActivityLogger
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, uploadRoot, backupDir string, activityLog ActivityLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		uploadRoot: uploadRoot,
		backupDir:  backupDir,
		activity:   activityLog,
		logger:     logger,
		now:        time.Now,
	}
}

// Create archives the requested upload subtree into a timestamped zip
// under the backup directory and records the result.
func (s *Service) Create(ctx context.Context, user *auth.User, backupType, ip string) (*Log, error) {
	if !ValidType(backupType) {
		return nil, ErrInvalidType
	}

	root := s.uploadRoot
	if backupType != TypeFull {
		root = filepath.Join(s.uploadRoot, backupType)
	}

	if _, err := os.Stat(root); err != nil {
		return nil, ErrNothingToBack
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		s.logger.Error("failed to create backup directory", "error", err, "dir", s.backupDir)
		return nil, err
	}

	fileName := fmt.Sprintf("backup_%s_%s.zip", backupType, s.now().Format("20060102_150405"))
	dest := filepath.Join(s.backupDir, fileName)

	count, err := zipTree(root, dest)
	if err != nil {
		s.logger.Error("failed to build backup archive", "error", err, "type", backupType)
		return nil, err
	}
	if count == 0 {
		os.Remove(dest)
		return nil, ErrNothingToBack
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, err
	}

	b := &Log{
		BackupType: backupType,
		FileName:   fileName,
		FilePath:   dest,
		FileSize:   info.Size(),
		FileCount:  count,
		CreatedBy:  user.ID,
		CreatedAt:  s.now(),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("failed to record backup", "error", err, "file", fileName)
		os.Remove(dest)
		return nil, err
	}

	s.activity.Log(ctx, user.ID, activity.ActionCreateBackup,
		fmt.Sprintf("Created %s backup: %s (%d files)", backupType, fileName, count), ip)

	s.logger.Info("backup created",
		"backup_id", b.ID,
		"type", backupType,
		"files", count,
		"size", b.FileSize,
		"created_by", user.ID)

	return b, nil
}

// Download resolves a backup archive for streaming. The file check comes
// before the audit write, a dead row logs nothing.
func (s *Service) Download(ctx context.Context, user *auth.User, backupID int64, ip string) (*Download, error) {
	b, err := s.repo.GetByID(ctx, backupID)
	if err != nil {
		return nil, ErrBackupNotFound
	}

	if _, err := os.Stat(b.FilePath); err != nil {
		s.logger.Warn("backup file missing from disk", "backup_id", backupID, "path", b.FilePath)
		return nil, ErrFileMissing
	}

	s.activity.Log(ctx, user.ID, activity.ActionDownloadBackup,
		fmt.Sprintf("Downloaded backup: %s", b.FileName), ip)

	return &Download{Path: b.FilePath, FileName: b.FileName, Size: b.FileSize}, nil
}

func (s *Service) List(ctx context.Context) ([]*Log, error) {
	return s.repo.List(ctx)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
