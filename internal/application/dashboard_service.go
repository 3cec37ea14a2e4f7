package application

import (
	"context"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

const recentIssueCount = 5

type DashboardStats struct {
	TotalAssets int `json:"total_assets"`
	entity.IssueStats
	RecentIssues []entity.Issue `json:"recent_issues"`
}

type ReportSummary struct {
	Issues entity.IssueBreakdown      `json:"issues"`
	Assets map[entity.AssetStatus]int `json:"assets"`
}

type DashboardService struct {
	Assets repo.AssetRepository
	Issues repo.IssueRepository
	Feed   repo.ChangeFeed
	now    func() time.Time
}

func (s *DashboardService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *DashboardService) Stats(ctx context.Context, orgID string) (*DashboardStats, error) {
	counts, err := s.Assets.CountByStatus(ctx, orgID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Issues.Stats(ctx, orgID, s.clock().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	recent, err := s.Issues.List(ctx, orgID, entity.IssueFilter{Limit: recentIssueCount})
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if recent == nil {
		recent = []entity.Issue{}
	}
	return &DashboardStats{TotalAssets: total, IssueStats: stats, RecentIssues: recent}, nil
}

func (s *DashboardService) Summary(ctx context.Context, orgID string) (*ReportSummary, error) {
	b, err := s.Issues.Breakdown(ctx, orgID)
	if err != nil {
		return nil, err
	}
	counts, err := s.Assets.CountByStatus(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &ReportSummary{Issues: b, Assets: counts}, nil
}

// Subscribe opens the tenant's change feed. The caller owns the
// subscription and must close it.
func (s *DashboardService) Subscribe(ctx context.Context, orgID string) (repo.ChangeSubscription, error) {
	return s.Feed.Subscribe(ctx, orgID)
}
