package audit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewRecord(t *testing.T) {
	occurred := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	rec := NewRecord(kafka.BookingEvent{
		Type: kafka.EventBookingCreated, BookingID: 3, PNR: "ABC123", FlightID: 101, PassengerID: 202,
		SeatID: 12, Status: "BOOKED", OccurredAt: occurred,
	})

	assert.Equal(t, "booking_created", rec.EventType)
	assert.Equal(t, "ABC123", rec.PNR)
	assert.Equal(t, 12, rec.SeatID)
	assert.True(t, rec.OccurredAt.Equal(occurred))
	assert.False(t, rec.RecordedAt.IsZero())
}

func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := NewMongoClient(ctx, config.MongoConfig{URI: uri})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(fmt.Sprintf("skynet_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	repo, err := NewMongoRepository(ctx, db, "booking_audit")
	require.NoError(t, err)

	created := Record{EventType: kafka.EventBookingCreated, BookingID: 1, PNR: "QWE789", OccurredAt: time.Now().UTC()}
	stored, err := repo.Save(ctx, created)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = repo.Save(ctx, created)
	require.NoError(t, err)
	assert.False(t, stored, "redelivered event is reported as already stored")

	stored, err = repo.Save(ctx, Record{EventType: kafka.EventBookingCancelled, BookingID: 1, PNR: "QWE789", OccurredAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, stored)

	count, err := repo.collection.CountDocuments(ctx, bson.M{"pnr": "QWE789"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
