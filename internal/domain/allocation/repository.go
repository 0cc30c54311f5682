package allocation

import (
	"context"

	"github.com/google/uuid"
)

// SnapshotRepository provides durable per-owner storage of the full record
// set. Save replaces the stored set atomically for that owner; there is never
// a partial or incremental write. Load returns ErrSnapshotNotFound when no
// snapshot has ever been saved for the owner, which is distinct from an
// existing-but-empty set.
type SnapshotRepository interface {
	Load(ctx context.Context, ownerID uuid.UUID) ([]Record, error)
	Save(ctx context.Context, ownerID uuid.UUID, records []Record) error
}
