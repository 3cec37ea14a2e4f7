package repository

import (
	"context"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

// SessionStore keeps the active session per identity and the cached
// resolution of that session.
type SessionStore interface {
	Save(ctx context.Context, s *entity.Session, email string) error
	// Get returns ErrNotFound when the identity has no active session.
	Get(ctx context.Context, userID string) (*entity.Session, error)
	// Rotate replaces oldSID with newSID and extends the session to expiresAt.
	// It returns ErrNotFound when oldSID is no longer current.
	Rotate(ctx context.Context, userID, oldSID, newSID string, expiresAt time.Time) error
	// Destroy removes the session and its cached state atomically.
	Destroy(ctx context.Context, userID string) error

	// GetState returns nil without error on a cache miss.
	GetState(ctx context.Context, userID string) (*entity.SessionState, error)
	PutState(ctx context.Context, st *entity.SessionState) error
	MarkLoading(ctx context.Context, userID string) error
	InvalidateState(ctx context.Context, userID string) error
}

// TokenStore holds single-use email verification tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// Consume returns ErrNotFound for unknown or expired tokens.
	Consume(ctx context.Context, token string) (string, error)
}

// ChangeFeed fans out row changes per tenant.
type ChangeFeed interface {
	Publish(ctx context.Context, evt entity.ChangeEvent) error
	Subscribe(ctx context.Context, orgID string) (ChangeSubscription, error)
}

// ChangeSubscription must be closed by the subscriber on every exit path.
type ChangeSubscription interface {
	Events() <-chan entity.ChangeEvent
	Close() error
}

// AssetIndex is the full-text search side of the asset table.
type AssetIndex interface {
	Index(ctx context.Context, a *entity.Asset) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, orgID, q string, size int) ([]map[string]any, error)
}
