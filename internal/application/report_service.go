package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/pkg/mailer"
	mailtpl "github.com/Codeveil-Studio/QResolve-app/pkg/mailer/templates"
)

const (
	UnknownAsset    = "Unknown Asset"
	UnknownLocation = "Unknown Location"
)

// ReportHints are the display values carried in the QR link. They are
// never trusted for writes.
type ReportHints struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	OrgID    string `json:"org_id"`
}

func NewReportHints(name, location, orgID string) ReportHints {
	h := ReportHints{Name: strings.TrimSpace(name), Location: strings.TrimSpace(location), OrgID: strings.TrimSpace(orgID)}
	if h.Name == "" {
		h.Name = UnknownAsset
	}
	if h.Location == "" {
		h.Location = UnknownLocation
	}
	return h
}

type ReportPage struct {
	Hints ReportHints      `json:"hints"`
	Asset *entity.AssetRef `json:"asset"`
}

type ReportInput struct {
	Title         string
	Description   string
	Priority      entity.IssuePriority
	ReporterName  string
	ReporterEmail string
}

// ReportService is the unauthenticated QR reporting entry point.
type ReportService struct {
	Assets     repo.AssetRepository
	Issues     repo.IssueRepository
	Orgs       repo.OrganizationRepository
	Identities repo.IdentityRepository
	Feed       repo.ChangeFeed
	Mail       mailer.Queue
	Brand      Brand
	Logger     *logrus.Logger
	newID      func() string
}

func (s *ReportService) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func (s *ReportService) lookup(ctx context.Context, assetID string) (*entity.AssetRef, error) {
	ref, err := s.Assets.GetRef(ctx, assetID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	return ref, nil
}

// Load returns the hints next to the authoritative asset projection.
func (s *ReportService) Load(ctx context.Context, assetID string, hints ReportHints) (*ReportPage, error) {
	ref, err := s.lookup(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return &ReportPage{Hints: hints, Asset: ref}, nil
}

// ComposeDescription appends the reporter trailer to the free text.
func ComposeDescription(description, reporterName, reporterEmail string) string {
	name := strings.TrimSpace(reporterName)
	if name == "" {
		name = "Anonymous"
	}
	email := strings.TrimSpace(reporterEmail)
	if email == "" {
		email = "N/A"
	}
	out := description + "\n\n---\nReported by: " + name + "\nContact: " + email
	return strings.TrimSpace(out)
}

// Submit files an open issue against the fetched asset's organization.
// The organization id from the QR link is not an input.
func (s *ReportService) Submit(ctx context.Context, assetID string, in ReportInput) (*entity.Issue, error) {
	ref, err := s.lookup(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if ref.OrgID == "" {
		return nil, ErrMissingAssetOrganization
	}

	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	desc := ComposeDescription(in.Description, in.ReporterName, in.ReporterEmail)
	reporter := s.id()
	assetRef := ref.ID

	issue := &entity.Issue{
		OrgID:       ref.OrgID,
		AssetID:     &assetRef,
		Title:       strings.TrimSpace(in.Title),
		Description: &desc,
		Status:      entity.IssueOpen,
		Priority:    priority,
		ReportedBy:  &reporter,
	}
	if err := s.Issues.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	if s.Feed != nil {
		evt := entity.ChangeEvent{Event: entity.ChangeInsert, Table: "issues", OrgID: issue.OrgID, RecordID: issue.ID, At: time.Now().UTC()}
		if err := s.Feed.Publish(ctx, evt); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("org_id", issue.OrgID).Warn("publish issue change failed")
		}
	}
	s.notifyOwner(ctx, ref, issue)
	return issue, nil
}

func (s *ReportService) notifyOwner(ctx context.Context, ref *entity.AssetRef, issue *entity.Issue) {
	if s.Mail == nil || s.Orgs == nil || s.Identities == nil {
		return
	}
	org, err := s.Orgs.GetByID(ctx, ref.OrgID)
	if err != nil {
		return
	}
	owner, err := s.Identities.GetByID(ctx, org.OwnerID)
	if err != nil {
		return
	}
	loc := ""
	if ref.Location != nil {
		loc = *ref.Location
	}
	data := mailtpl.Build("", owner.Email, s.Brand.AppName, s.Brand.CompanyName, s.Brand.SupportURL,
		mailtpl.WithIssue(ref.Name, loc, issue.Title, string(issue.Priority)),
		mailtpl.WithTime(issue.CreatedAt),
		mailtpl.WithDashboardURL(s.Brand.DashboardURL),
	)
	job := mailer.EmailJob{To: owner.Email, Template: mailtpl.IssueReported, Data: mailtpl.ToMap(data)}
	if err := s.Mail.Enqueue(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("org_id", ref.OrgID).Warn("queue issue email failed")
	}
}
