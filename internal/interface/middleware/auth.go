package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

const (
	CtxUserIDKey  = "userID"
	CtxSessionKey = "session"
	CtxStateKey   = "state"

	// CtxStateErrKey holds the error of a failed resolution. The state under
	// CtxStateKey is still settled and keeps identity and session.
	CtxStateErrKey = "state_error"
)

// SessionReader looks up the active session of an identity.
type SessionReader interface {
	Get(ctx context.Context, userID string) (*entity.Session, error)
}

// StateResolver returns the resolved state of a session.
type StateResolver interface {
	Current(ctx context.Context, sess *entity.Session) (*entity.SessionState, error)
}

// Session attaches the resolved session state to every request. Missing,
// invalid, or revoked credentials yield an anonymous state; route guards
// decide what that means. A failed resolution never aborts here, so
// session-only routes such as logout keep working.
func Session(jwt *helpers.JWTManager, sessions SessionReader, resolver StateResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := lookupSession(c, jwt, sessions, logger)
		if sess != nil {
			c.Set(CtxUserIDKey, sess.UserID)
			c.Set(CtxSessionKey, sess)
		}

		st, err := resolver.Current(c.Request.Context(), sess)
		if err != nil {
			helpers.LogError(logger, "session resolution failed", err, logrus.Fields{
				"user_id":    c.GetString(CtxUserIDKey),
				"request_id": c.GetString("request_id"),
			})
			c.Set(CtxStateErrKey, err)
		}
		if st == nil {
			st = entity.Anonymous()
		}
		c.Set(CtxStateKey, st)
		c.Next()
	}
}

func lookupSession(c *gin.Context, jwt *helpers.JWTManager, sessions SessionReader, logger *logrus.Logger) *entity.Session {
	tok := helpers.AccessTokenFrom(c)
	if tok == "" {
		return nil
	}
	claims, err := jwt.ParseAccessToken(tok)
	if err != nil {
		return nil
	}
	sess, err := sessions.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			helpers.LogWarn(logger, "session lookup failed", err, logrus.Fields{"user_id": claims.UserID})
		}
		return nil
	}
	// a rotated or replaced session invalidates older access tokens
	if sess.ID != claims.SessionID {
		return nil
	}
	return sess
}

// StateFrom returns the state attached by Session, or an anonymous state.
func StateFrom(c *gin.Context) *entity.SessionState {
	if v, ok := c.Get(CtxStateKey); ok {
		if st, ok := v.(*entity.SessionState); ok && st != nil {
			return st
		}
	}
	return entity.Anonymous()
}

// StateErr returns the resolution error recorded by Session, if any.
func StateErr(c *gin.Context) error {
	if v, ok := c.Get(CtxStateErrKey); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// RequireState admits only requests whose guard verdict equals want. A
// failed resolution is never admitted: its tenant fields are cleared and
// would otherwise read as NO_ORG.
func RequireState(want application.GuardState) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := StateErr(c); err != nil {
			d := application.ResolutionDenial(err)
			response.Abort(c, d.Status, d.Message, response.ErrorBody{Code: d.Code})
			return
		}
		g := application.Evaluate(StateFrom(c))
		d, ok := application.Admit(g, want)
		if !ok {
			if g == application.GuardLoading {
				c.Header("Retry-After", "1")
			}
			response.Abort(c, d.Status, d.Message, response.ErrorBody{Code: d.Code, Redirect: d.Redirect})
			return
		}
		c.Next()
	}
}

// RequireSession admits any request carrying a live session, whatever
// its guard verdict.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserIDKey) == "" {
			response.Abort(c, http.StatusUnauthorized, "sign in required", response.ErrorBody{Code: "unauthorized", Redirect: application.GuardAnonymous.Redirect()})
			return
		}
		c.Next()
	}
}
