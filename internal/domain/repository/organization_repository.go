package repository

import (
	"context"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	// GetMembershipByUser returns the single membership of an identity,
	// ErrNotFound when there is none and ErrMultipleRows when there are several.
	GetMembershipByUser(ctx context.Context, userID string) (*entity.Membership, error)
	// Bootstrap writes organization, owner membership and trialing
	// subscription as one unit. Nothing is persisted on error.
	Bootstrap(ctx context.Context, name, ownerID string) (*entity.Tenant, error)
	UpdateName(ctx context.Context, id, name string) (*entity.Organization, error)
	GetSubscription(ctx context.Context, orgID string) (*entity.Subscription, error)
}
