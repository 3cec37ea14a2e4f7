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
	"github.com/Codeveil-Studio/QResolve-app/internal/events"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
	"github.com/Codeveil-Studio/QResolve-app/pkg/mailer"
	mailtpl "github.com/Codeveil-Studio/QResolve-app/pkg/mailer/templates"
)

// EventPublisher is satisfied by *events.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

// Brand carries the names and links rendered into outgoing email.
type Brand struct {
	AppName      string
	CompanyName  string
	SupportURL   string
	VerifyURL    string
	DashboardURL string
}

type AuthService struct {
	Identities repo.IdentityRepository
	Profiles   repo.ProfileRepository
	Sessions   repo.SessionStore
	Tokens     repo.TokenStore
	JWT        *helpers.JWTManager
	Events     EventPublisher
	Mail       mailer.Queue
	Brand      Brand
	VerifyTTL  time.Duration
	Logger     *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// SignUp creates the identity, then best-effort its profile. A failed
// profile insert is logged and the signup still succeeds.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*entity.Identity, TokenPair, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	ident := &entity.Identity{Email: normalizeEmail(in.Email), PasswordHash: hash}
	if err := s.Identities.Create(ctx, ident); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, fmt.Errorf("create identity: %w", err)
	}

	name := strings.TrimSpace(in.FullName)
	prof := &entity.Profile{UserID: ident.ID, Email: &ident.Email}
	if name != "" {
		prof.FullName = &name
	}
	if err := s.Profiles.Create(ctx, prof); err != nil {
		s.warn(err, ident.ID, "create profile failed")
	}

	pair, err := s.startSession(ctx, ident)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.sendVerification(ctx, ident, name); err != nil {
		s.warn(err, ident.ID, "queue verification email failed")
	}
	return ident, pair, nil
}

// SignIn does not require a verified email; the route guard handles that.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*entity.Identity, TokenPair, error) {
	ident, err := s.Identities.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		helpers.ComparePlaceholder(password)
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("load identity: %w", err)
	}
	if !helpers.CompareHashAndPassword(ident.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.startSession(ctx, ident)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return ident, pair, nil
}

func (s *AuthService) startSession(ctx context.Context, ident *entity.Identity) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.issueTokens(ident.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	sess := &entity.Session{ID: sid, UserID: ident.ID, CreatedAt: time.Now().UTC(), ExpiresAt: pair.RefreshTokenExpiry}
	if err := s.Sessions.Save(ctx, sess, ident.Email); err != nil {
		return TokenPair{}, fmt.Errorf("save session: %w", err)
	}
	if err := s.Sessions.MarkLoading(ctx, ident.ID); err != nil {
		s.warn(err, ident.ID, "mark state loading failed")
	}
	s.publish(ctx, events.Event{Type: events.SignedIn, UserID: ident.ID, SessionID: sid})
	return pair, nil
}

func (s *AuthService) issueTokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// SignOut removes the session hash and the cached state in one step.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if err := s.Sessions.Destroy(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.SignedOut, UserID: userID})
	return nil
}

// Refresh validates the refresh token against the stored sid and rotates it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	sess, err := s.Sessions.Get(ctx, claims.UserID)
	if err != nil || sess.ID != claims.SessionID {
		return TokenPair{}, "", ErrInvalidCredentials
	}

	sid := uuid.NewString()
	pair, err := s.issueTokens(claims.UserID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if err := s.Sessions.Rotate(ctx, claims.UserID, claims.SessionID, sid, pair.RefreshTokenExpiry); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, "", ErrInvalidCredentials
		}
		return TokenPair{}, "", err
	}
	s.publish(ctx, events.Event{Type: events.TokenRefreshed, UserID: claims.UserID, SessionID: sid})
	return pair, claims.UserID, nil
}

// VerifyInit (re)sends the verification link. Already verified identities are a no-op.
func (s *AuthService) VerifyInit(ctx context.Context, userID string) error {
	ident, err := s.Identities.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAuthRequired
		}
		return err
	}
	if ident.IsVerified() {
		return nil
	}
	name := ""
	if p, perr := s.Profiles.GetByUserID(ctx, userID); perr == nil && p.FullName != nil {
		name = *p.FullName
	}
	return s.sendVerification(ctx, ident, name)
}

// VerifyConfirm consumes a single-use token and marks the email confirmed.
func (s *AuthService) VerifyConfirm(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	uid, err := s.Tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if err := s.Identities.MarkEmailConfirmed(ctx, uid, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("confirm email: %w", err)
	}
	if err := s.Sessions.InvalidateState(ctx, uid); err != nil {
		s.warn(err, uid, "invalidate state failed")
	}
	s.publish(ctx, events.Event{Type: events.EmailVerified, UserID: uid})
	return uid, nil
}

func (s *AuthService) sendVerification(ctx context.Context, ident *entity.Identity, name string) error {
	if s.Mail == nil || s.Tokens == nil {
		return nil
	}
	ttl := s.VerifyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tok, err := s.Tokens.Issue(ctx, ident.ID, ttl)
	if err != nil {
		return err
	}
	link := s.Brand.VerifyURL + "?token=" + tok
	data := mailtpl.Build(name, ident.Email, s.Brand.AppName, s.Brand.CompanyName, s.Brand.SupportURL,
		mailtpl.WithVerifyURL(link),
		mailtpl.WithExpiresAt(time.Now().Add(ttl)),
	)
	return s.Mail.Enqueue(ctx, mailer.EmailJob{To: ident.Email, Template: mailtpl.VerifyEmail, Data: mailtpl.ToMap(data)})
}

func (s *AuthService) publish(ctx context.Context, evt events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		s.warn(err, evt.UserID, "publish auth event failed")
	}
}

func (s *AuthService) warn(err error, userID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
	}
}
