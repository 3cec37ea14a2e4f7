package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
	mailtpl "github.com/Codeveil-Studio/QResolve-app/pkg/mailer/templates"
)

type authFixture struct {
	*resolverFixture
	tokens *fakeTokens
	pub    *recordingPublisher
	mail   *recordingQueue
	jwt    *helpers.JWTManager
	svc    *AuthService
}

func newAuthFixture() *authFixture {
	rf := newResolverFixture()
	f := &authFixture{
		resolverFixture: rf,
		tokens:          newFakeTokens(),
		pub:             &recordingPublisher{},
		mail:            &recordingQueue{},
		jwt:             helpers.NewJWTManager("a", "r", time.Minute, time.Hour),
	}
	f.svc = &AuthService{
		Identities: rf.identities,
		Profiles:   rf.profiles,
		Sessions:   rf.sessions,
		Tokens:     f.tokens,
		JWT:        f.jwt,
		Events:     f.pub,
		Mail:       f.mail,
		Brand:      Brand{AppName: "QResolve", VerifyURL: "https://app.example/verify-email"},
	}
	return f
}

func TestSignUp(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	ident, pair, err := f.svc.SignUp(ctx, SignUpInput{Email: " Ada@Example.com ", Password: "secret123", FullName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.False(t, ident.IsVerified())
	assert.NotEqual(t, "secret123", ident.PasswordHash)

	claims, err := f.jwt.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	sess, err := f.sessions.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, claims.SessionID)

	p, err := f.profiles.GetByUserID(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", *p.FullName)

	cached, _ := f.sessions.GetState(ctx, ident.ID)
	require.NotNil(t, cached)
	assert.True(t, cached.Loading)

	assert.Equal(t, []events.Type{events.SignedIn}, f.pub.types())
	require.Len(t, f.mail.jobs, 1)
	assert.Equal(t, mailtpl.VerifyEmail, f.mail.jobs[0].Template)
	assert.Contains(t, f.mail.jobs[0].Data["VerifyURL"], "token="+f.tokens.latest())
}

func TestSignUp_ProfileFailureStillSucceeds(t *testing.T) {
	f := newAuthFixture()
	f.profiles.createErr = errors.New("profiles insert denied")

	ident, _, err := f.svc.SignUp(context.Background(), SignUpInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = f.profiles.GetByUserID(context.Background(), ident.ID)
	assert.Error(t, err)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, _, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = f.svc.SignUp(ctx, SignUpInput{Email: "ADA@example.com", Password: "other1234"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, _, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = f.svc.SignIn(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.SignIn(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unverified identities may sign in
	ident, _, err := f.svc.SignIn(ctx, "ADA@example.com", "secret123")
	require.NoError(t, err)
	assert.False(t, ident.IsVerified())
}

func TestSignOut(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	ident, _, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(ctx, ident.ID))
	_, err = f.sessions.Get(ctx, ident.ID)
	assert.Error(t, err)
	cached, _ := f.sessions.GetState(ctx, ident.ID)
	assert.Nil(t, cached)
	assert.Equal(t, events.SignedOut, f.pub.types()[len(f.pub.types())-1])
}

func TestRefresh_RotatesSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	ident, pair, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	next, uid, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, ident.ID, uid)

	claims, err := f.jwt.ParseRefreshToken(next.RefreshToken)
	require.NoError(t, err)
	sess, err := f.sessions.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, sess.ID)
	assert.Equal(t, next.RefreshTokenExpiry, sess.ExpiresAt)

	// the old refresh token no longer matches the stored sid
	_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_Garbage(t *testing.T) {
	f := newAuthFixture()
	_, _, err := f.svc.Refresh(context.Background(), "junk")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyConfirm(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	ident, _, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	tok := f.tokens.latest()

	uid, err := f.svc.VerifyConfirm(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, ident.ID, uid)

	got, _ := f.identities.GetByID(ctx, ident.ID)
	assert.True(t, got.IsVerified())

	_, err = f.svc.VerifyConfirm(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = f.svc.VerifyConfirm(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyInit_SkipsVerifiedIdentity(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	ident, _, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123", FullName: "Ada"})
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyInit(ctx, ident.ID))
	assert.Len(t, f.mail.jobs, 2)
	assert.Equal(t, "Ada", f.mail.jobs[1].Data["Name"])

	_, err = f.svc.VerifyConfirm(ctx, f.tokens.latest())
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyInit(ctx, ident.ID))
	assert.Len(t, f.mail.jobs, 2)

	assert.ErrorIs(t, f.svc.VerifyInit(ctx, "ghost"), ErrAuthRequired)
}

// Walks a new account from signup to an admitted tenant, with the resolver
// settling state on the event bus as it does in the server.
func TestSignupToOrganizationScenario(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	bus := events.NewBus(16, nil)
	bus.Subscribe(f.resolver.HandleAuthEvent)
	f.svc.Events = bus
	boot := &BootstrapService{Orgs: f.orgs, Resolver: f.resolver, Sessions: f.sessions, Events: bus}

	ident, _, err := f.svc.SignUp(ctx, SignUpInput{Email: "ada@example.com", Password: "secret123", FullName: "Ada"})
	require.NoError(t, err)
	sess, err := f.sessions.Get(ctx, ident.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, _ := f.resolver.Current(ctx, sess)
		return Evaluate(st) == GuardUnverified
	}, time.Second, 5*time.Millisecond)

	_, err = f.svc.VerifyConfirm(ctx, f.tokens.latest())
	require.NoError(t, err)

	var st *entity.SessionState
	require.Eventually(t, func() bool {
		st, _ = f.resolver.Current(ctx, sess)
		return Evaluate(st) == GuardNoOrg
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/onboarding", Evaluate(st).Redirect())

	org, err := boot.CreateOrganization(ctx, st, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	bus.Close()
	st, err = f.resolver.Current(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, GuardAdmitted, Evaluate(st))
	assert.Equal(t, "Acme", st.Organization.Name)
	assert.Equal(t, entity.RoleOwner, st.Membership.Role)
}
