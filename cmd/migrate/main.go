package main

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/Domenick1991/skynet/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadConfig(config.Path("config.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Log, "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logg.Fatalf("apply migrations: %v", err)
	}
	names, _ := migrations.Names()
	logg.WithField("migrations", names).Info("schema up to date")
}
