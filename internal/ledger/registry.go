package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
)

// Registry hands out the allocation store for an owner, creating and
// initializing it on first use. Stores are explicit per-owner instances
// passed by reference to consumers; nothing here is ambient or global beyond
// the registry the caller owns.
type Registry struct {
	logger *slog.Logger
	repo   allocation.SnapshotRepository
	writer *SnapshotWriter

	mu     sync.Mutex
	stores map[uuid.UUID]*Store
}

// NewRegistry creates an empty store registry.
func NewRegistry(logger *slog.Logger, repo allocation.SnapshotRepository, writer *SnapshotWriter) *Registry {
	return &Registry{
		logger: logger,
		repo:   repo,
		writer: writer,
		stores: make(map[uuid.UUID]*Store),
	}
}

// StoreFor returns the initialized store for an owner. Store initialization
// is idempotent, so concurrent calls for the same owner are safe; only the
// first triggers a durable load.
func (r *Registry) StoreFor(ctx context.Context, ownerID uuid.UUID) (*Store, error) {
	r.mu.Lock()
	store, ok := r.stores[ownerID]
	if !ok {
		store = NewStore(r.logger, r.repo, r.writer, ownerID)
		r.stores[ownerID] = store
	}
	r.mu.Unlock()

	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
