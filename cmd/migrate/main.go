package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	catalogapp "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/application"
	"github.com/Apurer/go-gin-shop-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
	uowpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/postgres"
)

func main() {
	seed := flag.Bool("seed", false, "insert the demo catalogue after migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := platformobservability.NewLogger(os.Stdout, platformobservability.ParseLevel(os.Getenv("LOG_LEVEL")), "text")
	db, closeDB, err := platformpostgres.Open(ctx, os.Getenv("POSTGRES_DSN"), logger)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer closeDB()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set; nothing to migrate")
	}

	if err := migrations.Run(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("schema migrated")

	if !*seed {
		return
	}
	inserted, err := catalogapp.Seed(ctx, uowpostgres.NewStore(db, uowpostgres.WithLogger(logger)), catalogapp.DemoProducts())
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := migrations.SyncSequences(ctx, db, "products"); err != nil {
		log.Fatalf("seed: %v", err)
	}
	logger.Info("demo catalogue seeded", slog.Int("inserted", inserted))
}
