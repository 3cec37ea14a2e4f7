package repository

import (
	"context"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

// IdentityRepository defines the interface for account storage.
type IdentityRepository interface {
	Create(ctx context.Context, i *entity.Identity) error
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
	MarkEmailConfirmed(ctx context.Context, id string, at time.Time) error
}

// ProfileRepository stores the 1:1 display profile of an identity.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	// GetByUserID returns ErrNotFound when the identity has no profile.
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateFullName(ctx context.Context, userID, fullName string) (*entity.Profile, error)
}
