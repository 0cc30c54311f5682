// Package postgres provides the PostgreSQL implementation of the allocation
// snapshot gateway. Each owner's record set is stored as a single jsonb row
// and replaced wholesale on every save.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/sharevest-expense-ledger/internal/platform/persistence"
)

// SnapshotRepository implements the allocation.SnapshotRepository interface for PostgreSQL
type SnapshotRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewSnapshotRepository creates a new PostgreSQL snapshot repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewSnapshotRepository(logger *slog.Logger, db *persistence.PostgresDB) allocation.SnapshotRepository {
	return &SnapshotRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Load retrieves the durable record set for an owner. Returns
// ErrSnapshotNotFound when the owner has never been saved.
func (r *SnapshotRepository) Load(ctx context.Context, ownerID uuid.UUID) ([]allocation.Record, error) {
	query := `
		SELECT records
		FROM allocation_snapshots
		WHERE owner_id = $1
	`

	var payload []byte
	err := r.querier.QueryRow(ctx, query, ownerID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, allocation.ErrSnapshotNotFound{OwnerID: ownerID}
		}
		r.logger.Error("Failed to load allocation snapshot", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to load allocation snapshot: %w", err)
	}

	var records []allocation.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		r.logger.Error("Failed to decode allocation snapshot", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to decode allocation snapshot: %w", err)
	}

	return records, nil
}

// Save replaces the owner's stored record set atomically via upsert. An empty
// set is stored as an empty array, not deleted, so a later Load distinguishes
// it from never-saved.
func (r *SnapshotRepository) Save(ctx context.Context, ownerID uuid.UUID, records []allocation.Record) error {
	if records == nil {
		records = []allocation.Record{}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode allocation snapshot: %w", err)
	}

	query := `
		INSERT INTO allocation_snapshots (owner_id, records, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET records = EXCLUDED.records, updated_at = NOW()
	`

	_, err = r.querier.Exec(ctx, query, ownerID, payload)
	if err != nil {
		r.logger.Error("Failed to save allocation snapshot", "owner_id", ownerID.String(), "error", err)
		return fmt.Errorf("failed to save allocation snapshot: %w", err)
	}

	return nil
}
