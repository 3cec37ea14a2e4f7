package repository

import (
	"context"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

// AssetRepository is tenant scoped: every method except GetRef takes the orgID.
type AssetRepository interface {
	List(ctx context.Context, orgID string) ([]entity.Asset, error)
	GetByID(ctx context.Context, orgID, id string) (*entity.Asset, error)
	// GetRef reads the public projection of any asset by id.
	GetRef(ctx context.Context, id string) (*entity.AssetRef, error)
	// Create and Delete also adjust the subscription asset count and usage history.
	Create(ctx context.Context, a *entity.Asset) error
	Update(ctx context.Context, a *entity.Asset) error
	SetQRCode(ctx context.Context, orgID, id, url string) error
	Delete(ctx context.Context, orgID, id string) error
	CountByStatus(ctx context.Context, orgID string) (map[entity.AssetStatus]int, error)
}
