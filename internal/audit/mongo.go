package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/kafka"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is one booking lifecycle event as stored in the audit trail.
type Record struct {
	EventType   string    `bson:"eventType"`
	BookingID   int64     `bson:"bookingId"`
	PNR         string    `bson:"pnr"`
	FlightID    int64     `bson:"flightId"`
	PassengerID int64     `bson:"passengerId"`
	SeatID      int       `bson:"seatId"`
	Status      string    `bson:"status"`
	OccurredAt  time.Time `bson:"occurredAt"`
	RecordedAt  time.Time `bson:"recordedAt"`
}

func NewRecord(e kafka.BookingEvent) Record {
	return Record{
		EventType:   e.Type,
		BookingID:   e.BookingID,
		PNR:         e.PNR,
		FlightID:    e.FlightID,
		PassengerID: e.PassengerID,
		SeatID:      e.SeatID,
		Status:      e.Status,
		OccurredAt:  e.OccurredAt,
		RecordedAt:  time.Now().UTC(),
	}
}

type Repository interface {
	// Save reports false when the record was already stored.
	Save(ctx context.Context, r Record) (bool, error)
}

// NewMongoClient connects and pings within a bounded timeout.
func NewMongoClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(ctx context.Context, db *mongo.Database, collection string) (*MongoRepository, error) {
	coll := db.Collection(collection)

	// One record per event type and booking.
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventType", Value: 1}, {Key: "bookingId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.M{"pnr": 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create audit indexes: %w", err)
	}

	return &MongoRepository{collection: coll}, nil
}

// Save inserts the record. A redelivered event hits the unique index and
// comes back as (false, nil).
func (r *MongoRepository) Save(ctx context.Context, rec Record) (bool, error) {
	if _, err := r.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert audit record: %w", err)
	}
	return true, nil
}

var _ Repository = (*MongoRepository)(nil)
