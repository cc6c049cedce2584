package config

import "testing"

func TestLoad(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "25")
	t.Setenv("PRICING_DEFAULT_INTEREST_12", "60.5")
	t.Setenv("DB_DRIVER", "pgx")

	cfg := Load()

	if cfg.Import.BatchSize != 25 {
		t.Fatalf("batch size want=25 got=%d", cfg.Import.BatchSize)
	}
	if cfg.Database.Driver != "pgx" {
		t.Fatalf("driver want=pgx got=%s", cfg.Database.Driver)
	}
	if cfg.Pricing.DefaultMargin != 18 || cfg.Pricing.DefaultInterest12 != 60.5 || cfg.Pricing.DefaultInterest18 != 85 {
		t.Fatalf("unexpected pricing defaults %+v", cfg.Pricing)
	}
	if cfg.Cache.CatalogTTLSeconds != 300 || cfg.Storage.Bucket != "cost-lists" {
		t.Fatalf("unexpected defaults cache=%+v storage=%+v", cfg.Cache, cfg.Storage)
	}
	if Load() != cfg {
		t.Fatalf("Load must return the same instance")
	}
}
