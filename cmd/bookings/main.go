package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skynet/api"
	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/bootstrap"
	"github.com/Domenick1991/skynet/internal/client"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/Domenick1991/skynet/internal/metrics"
	"github.com/Domenick1991/skynet/internal/repository"
	"github.com/Domenick1991/skynet/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "bookings"

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

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logg.WithError(err).Warn("kafka unreachable, booking events will be dropped until it recovers")
	}

	timeout := cfg.Booking.CallTimeout()
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		client.NewFlightCatalogClient(cfg.Booking.FlightCatalogURL, timeout),
		client.NewPassengerDirectoryClient(cfg.Booking.PassengerDirectoryURL, timeout),
		logg,
		booking.WithEvents(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithCallTimeout(timeout),
		booking.WithPNRMaxAttempts(cfg.Booking.PNRMaxAttempts),
		booking.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)

	engine := bootstrap.NewEngine(serviceName, cfg.HTTP, prometheus.DefaultGatherer, logg,
		bootstrap.Route{Prefix: "/bookings", Handler: api.NewBookingHandler(bookingService)},
	)
	if err := bootstrap.NewServers(serviceName, cfg, engine, logg).Run(ctx); err != nil {
		logg.Fatalf("server error: %v", err)
	}
}
