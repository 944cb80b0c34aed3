package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skynet/api"
	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/bootstrap"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/Domenick1991/skynet/internal/repository"
	"github.com/Domenick1991/skynet/internal/service/passengers"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "passengers"

func main() {
	cfg, err := config.LoadConfig(config.Path("config.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Log, serviceName)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPassengerDB(ctx, cfg.Database)
	if err != nil {
		logg.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	passengerService := passengers.NewPassengerService(repository.NewPassengerRepository(db), logg)

	engine := bootstrap.NewEngine(serviceName, cfg.HTTP, prometheus.DefaultGatherer, logg,
		bootstrap.Route{Prefix: "/passengers", Handler: api.NewPassengerHandler(passengerService)},
	)
	if err := bootstrap.NewServers(serviceName, cfg, engine, logg).Run(ctx); err != nil {
		logg.Fatalf("server error: %v", err)
	}
}
