// Package app wires configuration into the database, cache, storage, Drive
// and service layers shared by the server and the importer CLI.
package app

import (
	"context"
	"fmt"

	"github.com/donnegro/comercial/backend-go/internal/cache"
	"github.com/donnegro/comercial/backend-go/internal/config"
	"github.com/donnegro/comercial/backend-go/internal/drive"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/internal/repository/postgres"
	"github.com/donnegro/comercial/backend-go/internal/service"
	"github.com/donnegro/comercial/backend-go/internal/storage"
	"github.com/donnegro/comercial/backend-go/pkg/logger"
)

type App struct {
	DB             *postgres.DB
	Drive          *drive.Service
	CatalogService *service.CatalogService
	ImportService  *service.ImportService
}

// Defaults converts the configured pricing percentages.
func Defaults(cfg config.PricingConfig) pricing.Defaults {
	return pricing.NewDefaults(
		cfg.DefaultMargin,
		cfg.DefaultInterest6,
		cfg.DefaultInterest12,
		cfg.DefaultInterest15,
		cfg.DefaultInterest18,
	)
}

// New connects to every configured backend. Cache, storage and Drive are
// optional: a failing cache or bucket is logged and skipped.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	catalogCache, err := cache.NewCatalogCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("catalog cache disabled")
		catalogCache = cache.NewNoopCatalogCache()
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err == nil {
			err = client.EnsureBucket(ctx, cfg.Storage.Region)
		}
		if err != nil {
			logger.Log.Warn().Err(err).Msg("cost list archival disabled")
		} else {
			store = client
		}
	}

	var driveService *drive.Service
	if cfg.Drive.CredentialsJSON != "" {
		driveService, err = drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize Google Drive service: %w", err)
		}
	}

	defaults := Defaults(cfg.Pricing)
	catalogRepo := postgres.NewCatalogRepository(db)
	runRepo := postgres.NewImportRunRepository(db)

	return &App{
		DB:             db,
		Drive:          driveService,
		CatalogService: service.NewCatalogService(catalogRepo, catalogCache, defaults),
		ImportService: service.NewImportService(catalogRepo, runRepo, catalogCache, store, service.ImportSettings{
			BatchSize: cfg.Import.BatchSize,
			Defaults:  defaults,
		}),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
