// Command seed fills the configured postgres or mongo store with demo listings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stays/internal/adapter/mongo"
	"stays/internal/adapter/postgres"
	"stays/internal/config"
	"stays/internal/domain"
	"stays/internal/observability"
	"stays/internal/seed"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	count := flag.Int("n", 100, "number of listings to generate")
	fakerSeed := flag.Int64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	if err := run(*count, *fakerSeed); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(count int, fakerSeed int64) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.IsProduction(), os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var repo domain.ListingRepository
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer func() { _ = db.Close() }()
		repo = postgres.NewListingRepo(db)
	case config.StoreMongo:
		store, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		defer func() { _ = store.Close(context.Background()) }()
		repo = mongo.NewListingRepo(store.Database())
	default:
		return fmt.Errorf("STORE_BACKEND %q is not persistent; set SEED_LISTINGS instead", cfg.StoreBackend)
	}

	n, err := seed.Listings(ctx, repo, seed.NewFactory(fakerSeed), count)
	if err != nil {
		return err
	}
	logger.Info("seeded listings", "backend", cfg.StoreBackend, "inserted", n, "requested", count)
	return nil
}
