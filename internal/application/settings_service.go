package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
)

type SettingsService struct {
	Profiles repo.ProfileRepository
	Orgs     repo.OrganizationRepository
	Sessions repo.SessionStore
	Events   EventPublisher
	Logger   *logrus.Logger
}

// UpdateProfile sets the display name, creating the profile if signup
// never managed to.
func (s *SettingsService) UpdateProfile(ctx context.Context, st *entity.SessionState, fullName string) (*entity.Profile, error) {
	if st == nil || st.Identity == nil {
		return nil, ErrAuthRequired
	}
	fullName = strings.TrimSpace(fullName)
	uid := st.Identity.ID

	p, err := s.Profiles.UpdateFullName(ctx, uid, fullName)
	if errors.Is(err, repo.ErrNotFound) {
		p = &entity.Profile{UserID: uid, FullName: &fullName, Email: &st.Identity.Email}
		err = s.Profiles.Create(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, uid)
	return p, nil
}

// UpdateOrganization renames the tenant. Only owners and admins may.
func (s *SettingsService) UpdateOrganization(ctx context.Context, st *entity.SessionState, name string) (*entity.Organization, error) {
	if st == nil || st.Identity == nil {
		return nil, ErrAuthRequired
	}
	if st.Organization == nil || st.Membership == nil || !st.Membership.Role.CanManageOrganization() {
		return nil, ErrForbidden
	}
	org, err := s.Orgs.UpdateName(ctx, st.Organization.ID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, st.Identity.ID)
	if s.Events != nil {
		err := s.Events.Publish(ctx, events.Event{Type: events.OrganizationChanged, UserID: st.Identity.ID, OrgID: org.ID})
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("org_id", org.ID).Warn("publish organization change failed")
		}
	}
	return org, nil
}

// Subscription returns the tenant's plan and metered asset count.
func (s *SettingsService) Subscription(ctx context.Context, orgID string) (*entity.Subscription, error) {
	return s.Orgs.GetSubscription(ctx, orgID)
}

func (s *SettingsService) invalidate(ctx context.Context, userID string) {
	if s.Sessions == nil {
		return
	}
	if err := s.Sessions.InvalidateState(ctx, userID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("invalidate state failed")
	}
}
