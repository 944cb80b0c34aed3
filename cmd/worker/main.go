package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/audit"
	"github.com/Domenick1991/skynet/internal/email"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/Domenick1991/skynet/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig(config.Path("config.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Log, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := audit.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		logg.Fatalf("connect mongo: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logg.WithError(err).Warn("mongo disconnect")
		}
	}()

	auditRepo, err := audit.NewMongoRepository(ctx, mongoClient.Database(cfg.Mongo.Database), cfg.Mongo.AuditCollection)
	if err != nil {
		logg.Fatalf("prepare audit collection: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, logg)
	defer consumer.Close()

	processor := worker.NewProcessor(auditRepo, email.NewSender(producer, cfg.Kafka.NotificationsTopic, logg), logg)

	logg.WithField("topic", cfg.Kafka.BookingEventsTopic).Info("consuming booking events")
	if err := consumer.Consume(ctx, processor.Handle); err != nil {
		logg.Fatalf("consumer stopped: %v", err)
	}
	logg.Info("worker stopped")
}
