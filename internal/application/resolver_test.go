package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
)

type resolverFixture struct {
	identities *fakeIdentities
	profiles   *fakeProfiles
	orgs       *fakeOrgs
	sessions   *fakeSessions
	resolver   *Resolver
}

func newResolverFixture() *resolverFixture {
	f := &resolverFixture{
		identities: newFakeIdentities(),
		profiles:   newFakeProfiles(),
		orgs:       newFakeOrgs(),
		sessions:   newFakeSessions(),
	}
	f.resolver = NewResolver(f.identities, f.profiles, f.orgs, f.sessions, nil)
	return f
}

func (f *resolverFixture) identity(t *testing.T, email string, verified bool) *entity.Identity {
	t.Helper()
	i := &entity.Identity{Email: email}
	require.NoError(t, f.identities.Create(context.Background(), i))
	if verified {
		require.NoError(t, f.identities.MarkEmailConfirmed(context.Background(), i.ID, time.Now()))
	}
	return i
}

func TestResolve_NilSessionIsSettledAnonymous(t *testing.T) {
	f := newResolverFixture()
	st, err := f.resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Identity)
	assert.Nil(t, st.Profile)
	assert.Nil(t, st.Organization)
	assert.Nil(t, st.Membership)
}

func TestResolve_UnknownIdentityIsAnonymous(t *testing.T) {
	f := newResolverFixture()
	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, st.Identity)
	assert.Equal(t, GuardAnonymous, Evaluate(st))
}

func TestResolve_MissingProfileIsNotAnError(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)

	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: i.ID})
	require.NoError(t, err)
	assert.NotNil(t, st.Identity)
	assert.Nil(t, st.Profile)
	assert.Equal(t, GuardNoOrg, Evaluate(st))
}

func TestResolve_ProfileFetchFailureIsLoggedOnly(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	f.profiles.getErr = errors.New("connection reset")

	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: i.ID})
	require.NoError(t, err)
	assert.Nil(t, st.Profile)
}

func TestResolve_OrganizationComesFromMembership(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	f.orgs.addOrg("org-2", "Acme", i.ID)
	f.orgs.addOrg("org-9", "Other", "someone")
	f.orgs.addMember(i.ID, "org-2", entity.RoleAdmin)

	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: i.ID})
	require.NoError(t, err)
	require.NotNil(t, st.Organization)
	assert.Equal(t, "org-2", st.Organization.ID)
	assert.Equal(t, st.Membership.OrgID, st.Organization.ID)
	assert.Equal(t, entity.RoleAdmin, st.Membership.Role)
	assert.Equal(t, GuardAdmitted, Evaluate(st))
}

func TestResolve_MembershipToMissingOrganizationFails(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	f.orgs.addMember(i.ID, "org-gone", entity.RoleOwner)

	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: i.ID})
	require.ErrorIs(t, err, ErrOrganizationMissing)
	require.NotNil(t, st)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Organization)
	assert.Nil(t, st.Membership)
	// identity and session survive so session-only routes still work
	assert.Equal(t, i.ID, st.UserID())
	assert.Equal(t, "s1", st.Session.ID)
}

func TestResolve_MultipleMembershipsRejected(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	f.orgs.addOrg("org-1", "A", i.ID)
	f.orgs.addOrg("org-2", "B", i.ID)
	f.orgs.addMember(i.ID, "org-1", entity.RoleOwner)
	f.orgs.addMember(i.ID, "org-2", entity.RoleMember)

	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: i.ID})
	assert.ErrorIs(t, err, ErrMultipleMemberships)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Organization)
}

func TestResolve_IdentityFetchErrorSettles(t *testing.T) {
	f := newResolverFixture()
	f.identities.getByID = func(context.Context, string) (*entity.Identity, error) {
		return nil, errors.New("db down")
	}
	st, err := f.resolver.Resolve(context.Background(), &entity.Session{ID: "s1", UserID: "u1"})
	assert.Error(t, err)
	require.NotNil(t, st)
	assert.False(t, st.Loading)
}

func TestRefreshOrganization(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	ctx := context.Background()

	st, err := f.resolver.Resolve(ctx, &entity.Session{ID: "s1", UserID: i.ID})
	require.NoError(t, err)
	assert.Nil(t, st.Organization)

	f.orgs.addOrg("org-5", "Acme", i.ID)
	f.orgs.addMember(i.ID, "org-5", entity.RoleOwner)

	require.NoError(t, f.resolver.RefreshOrganization(ctx, st))
	assert.Equal(t, "org-5", st.OrgID())
	assert.Equal(t, "s1", st.Session.ID)

	assert.ErrorIs(t, f.resolver.RefreshOrganization(ctx, entity.Anonymous()), ErrAuthRequired)
}

func TestCurrent_UsesCacheForSameSession(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	ctx := context.Background()
	sess := &entity.Session{ID: "s1", UserID: i.ID}

	st, err := f.resolver.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, st.Organization)

	// a membership added behind the cache's back is not seen until invalidation
	f.orgs.addOrg("org-1", "Acme", i.ID)
	f.orgs.addMember(i.ID, "org-1", entity.RoleOwner)

	st, err = f.resolver.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, st.Organization)

	require.NoError(t, f.sessions.InvalidateState(ctx, i.ID))
	st, err = f.resolver.Current(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "org-1", st.OrgID())
}

func TestCurrent_ReResolvesForNewSession(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	ctx := context.Background()

	_, err := f.resolver.Current(ctx, &entity.Session{ID: "s1", UserID: i.ID})
	require.NoError(t, err)

	st, err := f.resolver.Current(ctx, &entity.Session{ID: "s2", UserID: i.ID})
	require.NoError(t, err)
	assert.Equal(t, "s2", st.Session.ID)
}

func TestCurrent_LoadingMarker(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	ctx := context.Background()
	require.NoError(t, f.sessions.MarkLoading(ctx, i.ID))

	st, err := f.resolver.Current(ctx, &entity.Session{ID: "s1", UserID: i.ID})
	require.NoError(t, err)
	assert.Equal(t, GuardLoading, Evaluate(st))
}

func TestHandleAuthEvent_SettlesLoadingMarker(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", false)
	ctx := context.Background()
	require.NoError(t, f.sessions.Save(ctx, &entity.Session{ID: "s1", UserID: i.ID}, i.Email))
	require.NoError(t, f.sessions.MarkLoading(ctx, i.ID))

	require.NoError(t, f.resolver.HandleAuthEvent(ctx, events.Event{Type: events.SignedIn, UserID: i.ID}))

	cached, err := f.sessions.GetState(ctx, i.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.False(t, cached.Loading)
	assert.Equal(t, GuardUnverified, Evaluate(cached))
}

func TestHandleAuthEvent_ResolutionErrorDropsMarker(t *testing.T) {
	f := newResolverFixture()
	i := f.identity(t, "ada@example.com", true)
	f.orgs.addMember(i.ID, "org-gone", entity.RoleOwner)
	ctx := context.Background()
	require.NoError(t, f.sessions.Save(ctx, &entity.Session{ID: "s1", UserID: i.ID}, i.Email))
	require.NoError(t, f.sessions.MarkLoading(ctx, i.ID))

	err := f.resolver.HandleAuthEvent(ctx, events.Event{Type: events.SignedIn, UserID: i.ID})
	assert.ErrorIs(t, err, ErrOrganizationMissing)

	cached, _ := f.sessions.GetState(ctx, i.ID)
	assert.Nil(t, cached)
}

func TestHandleAuthEvent_InvalidateFailureIsLogged(t *testing.T) {
	f := newResolverFixture()
	logger, hook := logtest.NewNullLogger()
	f.resolver.Logger = logger
	i := f.identity(t, "ada@example.com", true)
	f.orgs.addMember(i.ID, "org-gone", entity.RoleOwner)
	ctx := context.Background()
	require.NoError(t, f.sessions.Save(ctx, &entity.Session{ID: "s1", UserID: i.ID}, i.Email))
	f.sessions.invalidateErr = errors.New("redis down")

	err := f.resolver.HandleAuthEvent(ctx, events.Event{Type: events.SignedIn, UserID: i.ID})
	assert.ErrorIs(t, err, ErrOrganizationMissing)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "invalidate state failed", entry.Message)
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "redis down")
	assert.Equal(t, i.ID, entry.Data["user_id"])
}

func TestHandleAuthEvent_SignedOutClearsState(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	require.NoError(t, f.sessions.MarkLoading(ctx, "u1"))

	require.NoError(t, f.resolver.HandleAuthEvent(ctx, events.Event{Type: events.SignedOut, UserID: "u1"}))
	cached, _ := f.sessions.GetState(ctx, "u1")
	assert.Nil(t, cached)
}
