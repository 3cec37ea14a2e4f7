package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

type IssueInput struct {
	Title       string
	Description *string
	Priority    entity.IssuePriority
	AssetID     *string
	AssignedTo  *string
}

type IssueService struct {
	Issues repo.IssueRepository
	Assets repo.AssetRepository
	Feed   repo.ChangeFeed
	Logger *logrus.Logger
	now    func() time.Time
}

func (s *IssueService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func issueErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrIssueNotFound
	}
	return err
}

func (s *IssueService) List(ctx context.Context, orgID string, f entity.IssueFilter) ([]entity.Issue, error) {
	return s.Issues.List(ctx, orgID, f)
}

func (s *IssueService) Get(ctx context.Context, orgID, id string) (*entity.Issue, error) {
	i, err := s.Issues.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, issueErr(err)
	}
	return i, nil
}

// Create files an issue as the signed-in identity. A referenced asset must
// belong to the same tenant.
func (s *IssueService) Create(ctx context.Context, st *entity.SessionState, in IssueInput) (*entity.Issue, error) {
	orgID := st.OrgID()
	if orgID == "" {
		return nil, ErrAuthRequired
	}
	if in.AssetID != nil && *in.AssetID != "" {
		if _, err := s.Assets.GetByID(ctx, orgID, *in.AssetID); err != nil {
			return nil, assetErr(err)
		}
	} else {
		in.AssetID = nil
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	uid := st.UserID()
	issue := &entity.Issue{
		OrgID:       orgID,
		AssetID:     in.AssetID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      entity.IssueOpen,
		Priority:    priority,
		ReportedBy:  &uid,
		AssignedTo:  in.AssignedTo,
	}
	if err := s.Issues.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	s.publish(ctx, entity.ChangeInsert, issue.OrgID, issue.ID)
	return issue, nil
}

// UpdateStatus stamps resolved_at when the issue becomes resolved and
// clears it for every other status.
func (s *IssueService) UpdateStatus(ctx context.Context, orgID, id string, status entity.IssueStatus) (*entity.Issue, error) {
	var resolvedAt *time.Time
	if status == entity.IssueResolved {
		t := s.clock()
		resolvedAt = &t
	}
	issue, err := s.Issues.UpdateStatus(ctx, orgID, id, status, resolvedAt)
	if err != nil {
		return nil, issueErr(err)
	}
	s.publish(ctx, entity.ChangeUpdate, orgID, id)
	return issue, nil
}

func (s *IssueService) Delete(ctx context.Context, orgID, id string) error {
	if err := s.Issues.Delete(ctx, orgID, id); err != nil {
		return issueErr(err)
	}
	s.publish(ctx, entity.ChangeDelete, orgID, id)
	return nil
}

func (s *IssueService) publish(ctx context.Context, event, orgID, id string) {
	if s.Feed == nil {
		return
	}
	evt := entity.ChangeEvent{Event: event, Table: "issues", OrgID: orgID, RecordID: id, At: s.clock()}
	if err := s.Feed.Publish(ctx, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"org_id": orgID, "issue_id": id}).Warn("publish issue change failed")
	}
}
