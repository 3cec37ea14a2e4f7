package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

type OrganizationRepository struct {
	db DB
}

func NewOrganizationRepository(db DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const (
	organizationColumns = `id, name, owner_id, created_at, updated_at`
	membershipColumns   = `id, org_id, user_id, role::text, created_at, updated_at`
	subscriptionColumns = `id, org_id, status::text, current_asset_count, stripe_customer_id,
		stripe_subscription_id, current_period_start, current_period_end, created_at, updated_at`
)

func scanOrganization(row rowScanner) (*entity.Organization, error) {
	o := &entity.Organization{}
	if err := row.Scan(&o.ID, &o.Name, &o.OwnerID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func scanMembership(row rowScanner) (*entity.Membership, error) {
	m := &entity.Membership{}
	var role string
	if err := row.Scan(&m.ID, &m.OrgID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	m.Role = entity.Role(role)
	return m, nil
}

func scanSubscription(row rowScanner) (*entity.Subscription, error) {
	s := &entity.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.OrgID, &status, &s.CurrentAssetCount, &s.StripeCustomerID,
		&s.StripeSubscriptionID, &s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	s.Status = entity.SubscriptionStatus(status)
	return s, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
}

func (r *OrganizationRepository) GetMembershipByUser(ctx context.Context, userID string) (*entity.Membership, error) {
	// LIMIT 2 is enough to tell "one" from "several".
	rows, err := r.db.Query(ctx, `
		SELECT `+membershipColumns+`
		FROM organization_memberships
		WHERE user_id = $1
		ORDER BY created_at
		LIMIT 2
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*entity.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, repository.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, repository.ErrMultipleRows
	}
}

func (r *OrganizationRepository) Bootstrap(ctx context.Context, name, ownerID string) (*entity.Tenant, error) {
	t := &entity.Tenant{}
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		org, err := scanOrganization(tx.QueryRow(ctx, `
			INSERT INTO organizations (name, owner_id)
			VALUES ($1, $2)
			RETURNING `+organizationColumns, name, ownerID))
		if err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		t.Organization = org

		m, err := scanMembership(tx.QueryRow(ctx, `
			INSERT INTO organization_memberships (org_id, user_id, role)
			VALUES ($1, $2, $3::org_role)
			RETURNING `+membershipColumns, org.ID, ownerID, string(entity.RoleOwner)))
		if err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		t.Membership = m

		s, err := scanSubscription(tx.QueryRow(ctx, `
			INSERT INTO subscriptions (org_id, status)
			VALUES ($1, $2::subscription_status)
			RETURNING `+subscriptionColumns, org.ID, string(entity.SubscriptionTrialing)))
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		t.Subscription = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *OrganizationRepository) UpdateName(ctx context.Context, id, name string) (*entity.Organization, error) {
	return scanOrganization(r.db.QueryRow(ctx, `
		UPDATE organizations SET name = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+organizationColumns, name, id))
}

func (r *OrganizationRepository) GetSubscription(ctx context.Context, orgID string) (*entity.Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE org_id = $1`, orgID))
}

var _ repository.OrganizationRepository = (*OrganizationRepository)(nil)
