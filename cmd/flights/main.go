package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skynet/api"
	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/bootstrap"
	"github.com/Domenick1991/skynet/internal/cache"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/Domenick1991/skynet/internal/metrics"
	"github.com/Domenick1991/skynet/internal/repository"
	"github.com/Domenick1991/skynet/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "flights"

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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Flights.CacheTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logg.WithError(err).Warn("redis unavailable, flights will be read from postgres")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()

	flightService := flights.NewFlightService(
		repository.NewFlightRepository(pool),
		logg,
		flights.WithCache(redisCache),
		flights.WithEvents(producer, cfg.Kafka.FlightEventsTopic),
		flights.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)

	engine := bootstrap.NewEngine(serviceName, cfg.HTTP, prometheus.DefaultGatherer, logg,
		bootstrap.Route{Prefix: "/flights", Handler: api.NewFlightHandler(flightService)},
	)
	if err := bootstrap.NewServers(serviceName, cfg, engine, logg).Run(ctx); err != nil {
		logg.Fatalf("server error: %v", err)
	}
}
