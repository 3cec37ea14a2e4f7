package router

import (
	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/container"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	pginfra "github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/postgres"
	"github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/qrexport"
	"github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/redisstore"
	"github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/search"
	handlers "github.com/Codeveil-Studio/QResolve-app/internal/interface/http"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
	"github.com/Codeveil-Studio/QResolve-app/internal/router/modules"
)

// Deps are the stores and services shared by all modules.
type Deps struct {
	Identities *pginfra.IdentityRepository
	Profiles   *pginfra.ProfileRepository
	Orgs       *pginfra.OrganizationRepository
	Assets     *pginfra.AssetRepository
	Issues     *pginfra.IssueRepository
	Sessions   *redisstore.Sessions
	Tokens     *redisstore.VerifyTokens
	Feed       *redisstore.ChangeFeed
	Index      repository.AssetIndex

	Resolver  *application.Resolver
	Auth      *application.AuthService
	Bootstrap *application.BootstrapService
	Reports   *application.ReportService
	AssetsSvc *application.AssetService
	IssuesSvc *application.IssueService
	Dashboard *application.DashboardService
	Settings  *application.SettingsService
}

func brand() application.Brand {
	cfg := container.GetConfig()
	return application.Brand{
		AppName:      cfg.AppName,
		CompanyName:  cfg.CompanyName,
		SupportURL:   cfg.SupportURL,
		VerifyURL:    cfg.VerifyEmailURL,
		DashboardURL: cfg.PublicBaseURL + "/dashboard",
	}
}

// BuildDeps constructs repositories and services from the container and
// subscribes the resolver to the event bus.
func BuildDeps() *Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	rdb := container.GetRedis()
	bus := container.GetBus()
	mail := container.GetMailQueue()

	d := &Deps{
		Identities: pginfra.NewIdentityRepository(pool),
		Profiles:   pginfra.NewProfileRepository(pool),
		Orgs:       pginfra.NewOrganizationRepository(pool),
		Assets:     pginfra.NewAssetRepository(pool),
		Issues:     pginfra.NewIssueRepository(pool),
		Sessions:   redisstore.NewSessions(rdb, cfg.StateTTL, cfg.StateLoadingTTL),
		Tokens:     redisstore.NewVerifyTokens(rdb),
		Feed:       redisstore.NewChangeFeed(rdb, logger),
	}
	// a nil *search.AssetIndex must not become a non-nil interface
	if es := container.GetES(); es != nil {
		d.Index = search.NewAssetIndex(es, cfg.ESAssetsIndex, logger)
	}

	exporter := &qrexport.Exporter{BaseURL: cfg.PublicBaseURL, Size: qrexport.DefaultSize}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		exporter.Uploader = qrexport.GCSUploader{Client: gcs, Bucket: cfg.GCSBucket}
	}

	d.Resolver = application.NewResolver(d.Identities, d.Profiles, d.Orgs, d.Sessions, logger)
	bus.Subscribe(d.Resolver.HandleAuthEvent)

	d.Auth = &application.AuthService{
		Identities: d.Identities,
		Profiles:   d.Profiles,
		Sessions:   d.Sessions,
		Tokens:     d.Tokens,
		JWT:        container.GetJWT(),
		Events:     bus,
		Mail:       mail,
		Brand:      brand(),
		Logger:     logger,
	}
	d.Bootstrap = &application.BootstrapService{
		Orgs:     d.Orgs,
		Resolver: d.Resolver,
		Sessions: d.Sessions,
		Events:   bus,
		Mail:     mail,
		Brand:    brand(),
		Logger:   logger,
	}
	d.Reports = &application.ReportService{
		Assets:     d.Assets,
		Issues:     d.Issues,
		Orgs:       d.Orgs,
		Identities: d.Identities,
		Feed:       d.Feed,
		Mail:       mail,
		Brand:      brand(),
		Logger:     logger,
	}
	d.AssetsSvc = &application.AssetService{Assets: d.Assets, Issues: d.Issues, Index: d.Index, QR: exporter, Logger: logger}
	d.IssuesSvc = &application.IssueService{Issues: d.Issues, Assets: d.Assets, Feed: d.Feed, Logger: logger}
	d.Dashboard = &application.DashboardService{Assets: d.Assets, Issues: d.Issues, Feed: d.Feed}
	d.Settings = &application.SettingsService{Profiles: d.Profiles, Orgs: d.Orgs, Sessions: d.Sessions, Events: bus, Logger: logger}
	return d
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	d := BuildDeps()

	session := middleware.Session(container.GetJWT(), d.Sessions, d.Resolver, logger)

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(d.Auth, logger, cfg.CookieDomain, cfg.CookieSecure),
		session,
	))
	r.Add(modules.NewSessionModule(
		handlers.NewSessionHandler(logger),
		handlers.NewOnboardingHandler(d.Bootstrap, logger),
		session,
	))
	r.Add(modules.NewReportModule(handlers.NewReportHandler(d.Reports, logger), cfg.ReportRateLimit, cfg.ReportRateWindow))
	r.Add(modules.NewWorkspaceModule(modules.WorkspaceHandlers{
		Assets:    handlers.NewAssetHandler(d.AssetsSvc, logger),
		Issues:    handlers.NewIssueHandler(d.IssuesSvc, logger),
		Dashboard: handlers.NewDashboardHandler(d.Dashboard, logger),
		Settings:  handlers.NewSettingsHandler(d.Settings, logger),
	}, session))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
