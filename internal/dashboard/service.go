package dashboard

import (
	"context"
	"log/slog"

	"github.com/atokschool/archiving-portal/internal/activity"
)

const recentActivityLimit = 10

type Repository interface {
	Counts(ctx context.Context) (*Counts, error)
}

type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]*activity.LogWithUser, error)
}

type Service struct {
	repo     Repository
	activity ActivityReader
	logger   *slog.Logger
}

func NewService(repo Repository, activityLog ActivityReader, logger *slog.Logger) *Service {
	return &Service{repo: repo, activity: activityLog, logger: logger}
}

func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		s.logger.Error("failed to load dashboard counts", "error", err)
		return nil, err
	}
	return counts, nil
}

func (s *Service) RecentActivity(ctx context.Context) ([]*activity.LogWithUser, error) {
	entries, err := s.activity.Recent(ctx, recentActivityLimit)
	if err != nil {
		s.logger.Error("failed to load recent activity", "error", err)
		return nil, err
	}
	return entries, nil
}
