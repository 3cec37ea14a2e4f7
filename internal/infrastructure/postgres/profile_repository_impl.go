package postgres

import (
	"context"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, full_name, avatar_url, email, created_at, updated_at`

func scanProfile(row rowScanner) (*entity.Profile, error) {
	p := &entity.Profile{}
	if err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.AvatarURL, &p.Email, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, full_name, avatar_url, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.FullName, p.AvatarURL, p.Email)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (r *ProfileRepository) UpdateFullName(ctx context.Context, userID, fullName string) (*entity.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `
		UPDATE profiles SET full_name = $1, updated_at = now()
		WHERE user_id = $2
		RETURNING `+profileColumns, fullName, userID))
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
