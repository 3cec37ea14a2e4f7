package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
	"github.com/Codeveil-Studio/QResolve-app/pkg/mailer"
	mailtpl "github.com/Codeveil-Studio/QResolve-app/pkg/mailer/templates"
)

// BootstrapService creates the tenant of an identity that has none yet.
type BootstrapService struct {
	Orgs     repo.OrganizationRepository
	Resolver *Resolver
	Sessions repo.SessionStore
	Events   EventPublisher
	Mail     mailer.Queue
	Brand    Brand
	Logger   *logrus.Logger
}

// CreateOrganization writes organization, owner membership and trialing
// subscription in one transaction, then refreshes st in place.
func (s *BootstrapService) CreateOrganization(ctx context.Context, st *entity.SessionState, name string) (*entity.Organization, error) {
	if st == nil || st.Identity == nil {
		return nil, ErrAuthRequired
	}
	if st.Organization != nil {
		return nil, ErrAlreadyBootstrapped
	}
	name = strings.TrimSpace(name)
	uid := st.Identity.ID

	tenant, err := s.Orgs.Bootstrap(ctx, name, uid)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyBootstrapped
		}
		return nil, fmt.Errorf("bootstrap organization: %w", err)
	}
	st.Organization = tenant.Organization
	st.Membership = tenant.Membership

	if s.Resolver != nil {
		if err := s.Resolver.RefreshOrganization(ctx, st); err != nil {
			s.warn(err, uid, "refresh organization failed")
			st.Organization = tenant.Organization
			st.Membership = tenant.Membership
		}
	}
	if s.Sessions != nil {
		if err := s.Sessions.PutState(ctx, st); err != nil {
			s.warn(err, uid, "cache state failed")
		}
	}
	if s.Events != nil {
		if err := s.Events.Publish(ctx, events.Event{Type: events.OrganizationChanged, UserID: uid, OrgID: tenant.Organization.ID}); err != nil {
			s.warn(err, uid, "publish organization event failed")
		}
	}
	s.welcome(ctx, st, tenant.Organization)

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": uid, "org_id": tenant.Organization.ID}).Info("organization created")
	}
	return tenant.Organization, nil
}

func (s *BootstrapService) welcome(ctx context.Context, st *entity.SessionState, org *entity.Organization) {
	if s.Mail == nil {
		return
	}
	name := ""
	if st.Profile != nil && st.Profile.FullName != nil {
		name = *st.Profile.FullName
	}
	data := mailtpl.Build(name, st.Identity.Email, s.Brand.AppName, s.Brand.CompanyName, s.Brand.SupportURL,
		mailtpl.WithOrganization(org.Name),
		mailtpl.WithDashboardURL(s.Brand.DashboardURL),
	)
	job := mailer.EmailJob{To: st.Identity.Email, Template: mailtpl.OrganizationCreated, Data: mailtpl.ToMap(data)}
	if err := s.Mail.Enqueue(ctx, job); err != nil {
		s.warn(err, st.Identity.ID, "queue welcome email failed")
	}
}

func (s *BootstrapService) warn(err error, userID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
	}
}
