package repository

import (
	"context"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

type IssueRepository interface {
	List(ctx context.Context, orgID string, f entity.IssueFilter) ([]entity.Issue, error)
	GetByID(ctx context.Context, orgID, id string) (*entity.Issue, error)
	Create(ctx context.Context, i *entity.Issue) error
	UpdateStatus(ctx context.Context, orgID, id string, status entity.IssueStatus, resolvedAt *time.Time) (*entity.Issue, error)
	Delete(ctx context.Context, orgID, id string) error
	Stats(ctx context.Context, orgID string, resolvedSince time.Time) (entity.IssueStats, error)
	Breakdown(ctx context.Context, orgID string) (entity.IssueBreakdown, error)
}
