package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
)

// Resolver turns a session into the full application identity:
// identity, profile, membership and organization.
type Resolver struct {
	Identities repo.IdentityRepository
	Profiles   repo.ProfileRepository
	Orgs       repo.OrganizationRepository
	Sessions   repo.SessionStore
	Logger     *logrus.Logger
	now        func() time.Time
}

func NewResolver(identities repo.IdentityRepository, profiles repo.ProfileRepository, orgs repo.OrganizationRepository, sessions repo.SessionStore, logger *logrus.Logger) *Resolver {
	return &Resolver{
		Identities: identities,
		Profiles:   profiles,
		Orgs:       orgs,
		Sessions:   sessions,
		Logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *Resolver) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now().UTC()
}

// Resolve always returns a settled state. On error the state carries
// whatever was resolved before the failing fetch, minus the tenant fields.
func (r *Resolver) Resolve(ctx context.Context, sess *entity.Session) (*entity.SessionState, error) {
	if sess == nil {
		return entity.Anonymous(), nil
	}

	ident, err := r.Identities.GetByID(ctx, sess.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return entity.Anonymous(), nil
	}
	if err != nil {
		return entity.Anonymous(), fmt.Errorf("load identity: %w", err)
	}

	st := &entity.SessionState{Identity: ident, Session: sess}

	prof, err := r.Profiles.GetByUserID(ctx, ident.ID)
	switch {
	case err == nil:
		st.Profile = prof
	case errors.Is(err, repo.ErrNotFound):
	default:
		if r.Logger != nil {
			r.Logger.WithError(err).WithField("user_id", ident.ID).Warn("load profile failed")
		}
	}

	err = r.attachOrganization(ctx, st)
	st.ResolvedAt = r.clock()
	return st, err
}

// RefreshOrganization re-reads membership and organization for an
// already resolved identity. Session and profile are left as they are.
func (r *Resolver) RefreshOrganization(ctx context.Context, st *entity.SessionState) error {
	if st == nil || st.Identity == nil {
		return ErrAuthRequired
	}
	err := r.attachOrganization(ctx, st)
	st.Loading = false
	st.ResolvedAt = r.clock()
	return err
}

func (r *Resolver) attachOrganization(ctx context.Context, st *entity.SessionState) error {
	st.ClearTenant()

	m, err := r.Orgs.GetMembershipByUser(ctx, st.Identity.ID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case errors.Is(err, repo.ErrMultipleRows):
		return ErrMultipleMemberships
	case err != nil:
		return fmt.Errorf("load membership: %w", err)
	}

	org, err := r.Orgs.GetByID(ctx, m.OrgID)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrOrganizationMissing, m.OrgID)
	}
	if err != nil {
		return fmt.Errorf("load organization: %w", err)
	}
	st.Membership = m
	st.Organization = org
	return nil
}

// Current returns the cached state for sess, resolving and caching it when
// the cache is cold or belongs to another session. A pending sign-in yields
// the loading marker as is.
func (r *Resolver) Current(ctx context.Context, sess *entity.Session) (*entity.SessionState, error) {
	if sess == nil {
		return entity.Anonymous(), nil
	}
	cached, err := r.Sessions.GetState(ctx, sess.UserID)
	if err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithField("user_id", sess.UserID).Warn("read cached state failed")
	}
	if cached != nil {
		if cached.Loading {
			return cached, nil
		}
		if cached.Session != nil && cached.Session.ID == sess.ID {
			return cached, nil
		}
	}
	return r.resolveAndStore(ctx, sess)
}

func (r *Resolver) resolveAndStore(ctx context.Context, sess *entity.Session) (*entity.SessionState, error) {
	st, err := r.Resolve(ctx, sess)
	if err != nil {
		return st, err
	}
	if st.Identity != nil {
		if perr := r.Sessions.PutState(ctx, st); perr != nil && r.Logger != nil {
			r.Logger.WithError(perr).WithField("user_id", st.UserID()).Warn("cache state failed")
		}
	}
	return st, nil
}

// HandleAuthEvent keeps the state cache in step with auth transitions.
// It is registered on the event bus and never runs on the publisher's stack.
func (r *Resolver) HandleAuthEvent(ctx context.Context, evt events.Event) error {
	switch evt.Type {
	case events.SignedIn, events.TokenRefreshed, events.EmailVerified, events.OrganizationChanged:
		sess, err := r.Sessions.Get(ctx, evt.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return r.Sessions.InvalidateState(ctx, evt.UserID)
		}
		if err != nil {
			return err
		}
		st, err := r.Resolve(ctx, sess)
		if err != nil {
			// drop the loading marker so the next request resolves on its own
			if ierr := r.Sessions.InvalidateState(ctx, evt.UserID); ierr != nil && r.Logger != nil {
				r.Logger.WithError(ierr).WithField("user_id", evt.UserID).Warn("invalidate state failed")
			}
			return err
		}
		if st.Identity == nil {
			return r.Sessions.InvalidateState(ctx, evt.UserID)
		}
		return r.Sessions.PutState(ctx, st)
	case events.SignedOut:
		return r.Sessions.InvalidateState(ctx, evt.UserID)
	}
	return nil
}
