package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

type AssetRepository struct {
	db DB
}

func NewAssetRepository(db DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, org_id, name, description, type, location, status::text, qr_code,
	serial_number, purchase_date, purchase_cost::float8, created_by, created_at, updated_at`

func scanAsset(row rowScanner) (*entity.Asset, error) {
	a := &entity.Asset{}
	var status string
	if err := row.Scan(&a.ID, &a.OrgID, &a.Name, &a.Description, &a.Type, &a.Location, &status, &a.QRCode,
		&a.SerialNumber, &a.PurchaseDate, &a.PurchaseCost, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	a.Status = entity.AssetStatus(status)
	return a, nil
}

func (r *AssetRepository) List(ctx context.Context, orgID string) ([]entity.Asset, error) {
	rows, err := r.db.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []entity.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AssetRepository) GetByID(ctx context.Context, orgID, id string) (*entity.Asset, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE org_id = $1 AND id = $2`, orgID, id))
}

func (r *AssetRepository) GetRef(ctx context.Context, id string) (*entity.AssetRef, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	ref := &entity.AssetRef{}
	var orgID *string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, location, org_id, serial_number
		FROM assets
		WHERE id = $1
	`, id).Scan(&ref.ID, &ref.Name, &ref.Location, &orgID, &ref.SerialNumber)
	if err != nil {
		return nil, mapErr(err)
	}
	if orgID != nil {
		ref.OrgID = *orgID
	}
	return ref, nil
}

// recordUsage moves the metered asset count by delta inside tx.
func recordUsage(ctx context.Context, tx pgx.Tx, orgID string, delta int) error {
	var count int
	err := tx.QueryRow(ctx, `
		UPDATE subscriptions
		SET current_asset_count = GREATEST(current_asset_count + $1, 0), updated_at = now()
		WHERE org_id = $2
		RETURNING current_asset_count
	`, delta, orgID).Scan(&count)
	if err != nil {
		return fmt.Errorf("update asset count: %w", mapErr(err))
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO usage_history (org_id, asset_count, change_amount)
		VALUES ($1, $2, $3)
	`, orgID, count, delta); err != nil {
		return fmt.Errorf("insert usage history: %w", err)
	}
	return nil
}

func (r *AssetRepository) Create(ctx context.Context, a *entity.Asset) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		created, err := scanAsset(tx.QueryRow(ctx, `
			INSERT INTO assets (org_id, name, description, type, location, status, serial_number,
				purchase_date, purchase_cost, created_by)
			VALUES ($1, $2, $3, $4, $5, $6::asset_status, $7, $8, $9, $10)
			RETURNING `+assetColumns,
			a.OrgID, a.Name, a.Description, a.Type, a.Location, string(a.Status), a.SerialNumber,
			a.PurchaseDate, a.PurchaseCost, a.CreatedBy))
		if err != nil {
			return fmt.Errorf("insert asset: %w", err)
		}
		*a = *created
		return recordUsage(ctx, tx, a.OrgID, 1)
	})
}

func (r *AssetRepository) Update(ctx context.Context, a *entity.Asset) error {
	if !validID(a.ID) {
		return repository.ErrNotFound
	}
	updated, err := scanAsset(r.db.QueryRow(ctx, `
		UPDATE assets
		SET name = $1, description = $2, type = $3, location = $4, status = $5::asset_status,
			serial_number = $6, purchase_date = $7, purchase_cost = $8, updated_at = now()
		WHERE org_id = $9 AND id = $10
		RETURNING `+assetColumns,
		a.Name, a.Description, a.Type, a.Location, string(a.Status),
		a.SerialNumber, a.PurchaseDate, a.PurchaseCost, a.OrgID, a.ID))
	if err != nil {
		return err
	}
	*a = *updated
	return nil
}

func (r *AssetRepository) SetQRCode(ctx context.Context, orgID, id, url string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `UPDATE assets SET qr_code = $1, updated_at = now() WHERE org_id = $2 AND id = $3`, url, orgID, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, orgID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `DELETE FROM assets WHERE org_id = $1 AND id = $2`, orgID, id)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return recordUsage(ctx, tx, orgID, -1)
	})
}

func (r *AssetRepository) CountByStatus(ctx context.Context, orgID string) (map[entity.AssetStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status::text, count(*) FROM assets WHERE org_id = $1 GROUP BY status`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[entity.AssetStatus]int, 4)
	for _, s := range entity.AllAssetStatuses() {
		out[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[entity.AssetStatus(status)] = n
	}
	return out, rows.Err()
}

var _ repository.AssetRepository = (*AssetRepository)(nil)
