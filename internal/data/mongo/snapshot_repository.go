package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sharevest-expense-ledger/internal/domain/allocation"
)

const (
	// SnapshotCollectionName is the name of the allocation snapshot collection in MongoDB
	SnapshotCollectionName = "allocation_snapshots"
)

// snapshotDocument is the stored shape of an owner's snapshot. The record set
// itself is kept as the JSON encoding of the record array so the stored value
// matches the Postgres backend byte for byte.
type snapshotDocument struct {
	OwnerID   string    `bson:"owner_id"`
	Records   string    `bson:"records"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SnapshotRepository implements the allocation.SnapshotRepository interface for MongoDB
type SnapshotRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSnapshotRepository creates a new MongoDB snapshot repository
func NewSnapshotRepository(logger *slog.Logger, db *mongo.Database) allocation.SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Load retrieves the durable record set for an owner.
// Returns ErrSnapshotNotFound when no snapshot exists for the owner.
func (r *SnapshotRepository) Load(ctx context.Context, ownerID uuid.UUID) ([]allocation.Record, error) {
	collection := r.db.Collection(SnapshotCollectionName)

	filter := bson.M{"owner_id": ownerID.String()}
	var doc snapshotDocument
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, allocation.ErrSnapshotNotFound{OwnerID: ownerID}
		}
		r.logger.Error("Failed to load allocation snapshot",
			"owner_id", ownerID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to load allocation snapshot: %w", err)
	}

	var records []allocation.Record
	if err := json.Unmarshal([]byte(doc.Records), &records); err != nil {
		r.logger.Error("Failed to decode allocation snapshot",
			"owner_id", ownerID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode allocation snapshot: %w", err)
	}

	return records, nil
}

// Save replaces the owner's stored record set atomically via upsert.
func (r *SnapshotRepository) Save(ctx context.Context, ownerID uuid.UUID, records []allocation.Record) error {
	if records == nil {
		records = []allocation.Record{}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode allocation snapshot: %w", err)
	}

	collection := r.db.Collection(SnapshotCollectionName)

	filter := bson.M{"owner_id": ownerID.String()}
	doc := snapshotDocument{
		OwnerID:   ownerID.String(),
		Records:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		r.logger.Error("Failed to save allocation snapshot",
			"owner_id", ownerID.String(),
			"error", err)
		return fmt.Errorf("failed to save allocation snapshot: %w", err)
	}

	return nil
}
