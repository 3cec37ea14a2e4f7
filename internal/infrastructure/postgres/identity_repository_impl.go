package postgres

import (
	"context"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

type IdentityRepository struct {
	db DB
}

func NewIdentityRepository(db DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

const identityColumns = `id, email, password_hash, email_confirmed_at, created_at, updated_at`

func scanIdentity(row rowScanner) (*entity.Identity, error) {
	i := &entity.Identity{}
	if err := row.Scan(&i.ID, &i.Email, &i.PasswordHash, &i.EmailConfirmedAt, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return i, nil
}

func (r *IdentityRepository) Create(ctx context.Context, i *entity.Identity) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, i.Email, i.PasswordHash)
	return mapErr(row.Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt))
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE id = $1`, id))
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *IdentityRepository) MarkEmailConfirmed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET email_confirmed_at = COALESCE(email_confirmed_at, $1), updated_at = now()
		WHERE id = $2
	`, at, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
