package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/config"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	pginfra "github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/postgres"
	"github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/qrexport"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
)

const (
	demoEmail    = "demo@qresolve.local"
	demoPassword = "password123"
	demoOrg      = "Demo Facility"
)

func strp(s string) *string { return &s }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		AppName:     cfg.AppName + "-seed",
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	identities := pginfra.NewIdentityRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	orgs := pginfra.NewOrganizationRepository(pool)
	assets := pginfra.NewAssetRepository(pool)

	ident, err := identities.GetByEmail(ctx, demoEmail)
	if errors.Is(err, repo.ErrNotFound) {
		hash, herr := helpers.HashPassword(demoPassword)
		if herr != nil {
			logger.Fatalf("failed to hash password: %v", herr)
		}
		ident = &entity.Identity{Email: demoEmail, PasswordHash: hash}
		err = identities.Create(ctx, ident)
		if err == nil {
			err = profiles.Create(ctx, &entity.Profile{UserID: ident.ID, FullName: strp("Demo User"), Email: strp(demoEmail)})
		}
	}
	if err != nil {
		logger.Fatalf("failed to seed identity: %v", err)
	}
	if err := identities.MarkEmailConfirmed(ctx, ident.ID, time.Now().UTC()); err != nil {
		logger.Fatalf("failed to confirm email: %v", err)
	}

	var orgID string
	m, err := orgs.GetMembershipByUser(ctx, ident.ID)
	switch {
	case err == nil:
		orgID = m.OrgID
	case errors.Is(err, repo.ErrNotFound):
		tenant, berr := orgs.Bootstrap(ctx, demoOrg, ident.ID)
		if berr != nil {
			logger.Fatalf("failed to bootstrap organization: %v", berr)
		}
		orgID = tenant.Organization.ID
	default:
		logger.Fatalf("failed to load membership: %v", err)
	}

	existing, err := assets.List(ctx, orgID)
	if err != nil {
		logger.Fatalf("failed to list assets: %v", err)
	}
	if len(existing) == 0 {
		a := &entity.Asset{
			OrgID:        orgID,
			Name:         "Boiler Room Pump",
			Type:         strp("pump"),
			Location:     strp("Basement, Building A"),
			Status:       entity.AssetActive,
			SerialNumber: strp("BRP-0001"),
			CreatedBy:    ident.ID,
		}
		if err := assets.Create(ctx, a); err != nil {
			logger.Fatalf("failed to seed asset: %v", err)
		}
		existing = append(existing, *a)
	}

	logger.WithFields(logrus.Fields{"user_id": ident.ID, "org_id": orgID}).Info("seed complete")
	fmt.Printf("login: %s / %s\n", demoEmail, demoPassword)
	for i := range existing {
		fmt.Printf("report link for %q: %s\n", existing[i].Name, qrexport.ReportURL(cfg.PublicBaseURL, &existing[i]))
	}
}
