// Package ledger holds the stateful allocation core: per-owner stores that
// apply add and edit commands against in-memory record sets, and the
// serialized write pipeline that keeps durable storage in line with memory.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
)

// ErrAlreadySeeded indicates an onboarding seed attempt for an owner whose
// ledger already has state
type ErrAlreadySeeded struct {
	OwnerID uuid.UUID
}

func (e ErrAlreadySeeded) Error() string {
	return "ledger already seeded for owner: " + e.OwnerID.String()
}

// Is implements the errors.Is interface for ErrAlreadySeeded
func (e ErrAlreadySeeded) Is(target error) bool {
	t, ok := target.(ErrAlreadySeeded)
	if !ok {
		return false
	}
	if t.OwnerID == uuid.Nil {
		return true
	}
	return e.OwnerID == t.OwnerID
}

// Store owns the in-memory record set for a single owner. Mutations commit to
// memory synchronously and are immediately visible to readers; durable
// persistence happens afterwards through the writer and never blocks or
// reverts a commit. Readers always receive copies, never the live slice.
type Store struct {
	ownerID uuid.UUID
	logger  *slog.Logger
	repo    allocation.SnapshotRepository
	writer  *SnapshotWriter

	mu          sync.RWMutex
	records     []allocation.Record
	nextID      int64
	initialized bool
	persisted   bool // a durable snapshot existed at load, or a write has been enqueued since
}

// NewStore creates an uninitialized store for one owner.
func NewStore(logger *slog.Logger, repo allocation.SnapshotRepository, writer *SnapshotWriter, ownerID uuid.UUID) *Store {
	return &Store{
		ownerID: ownerID,
		logger:  logger.With("owner_id", ownerID.String()),
		repo:    repo,
		writer:  writer,
		nextID:  1,
	}
}

// Initialize adopts the owner's durable snapshot as current state, or starts
// empty when none exists. Idempotent: once a store is initialized further
// calls are no-ops.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	records, err := s.repo.Load(ctx, s.ownerID)
	if err != nil {
		if errors.Is(err, allocation.ErrSnapshotNotFound{}) {
			s.logger.Info("No durable snapshot for owner, starting empty")
			s.records = nil
			s.nextID = 1
			s.initialized = true
			return nil
		}
		return fmt.Errorf("failed to initialize allocation store: %w", err)
	}

	s.records = allocation.NormalizeShares(records)
	s.nextID = maxID(s.records) + 1
	s.persisted = true
	s.initialized = true
	s.logger.Info("Allocation store initialized", "record_count", len(s.records))
	return nil
}

// Seed derives the owner's initial record set from onboarding amounts.
// Allowed at most once, and only when neither memory nor durable storage has
// any state for the owner.
func (s *Store) Seed(ctx context.Context, amounts SeedAmounts) ([]allocation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persisted || len(s.records) > 0 {
		return nil, ErrAlreadySeeded{OwnerID: s.ownerID}
	}

	records, err := SeedRecords(s.ownerID, amounts)
	if err != nil {
		return nil, err
	}

	s.commitLocked(records, int64(len(records))+1)
	return s.snapshotLocked(), nil
}

// AddOrMerge applies an add command: amounts for an existing category (under
// case and whitespace insensitive comparison) are summed onto the existing
// record, otherwise a new record is created with a fresh id. Returns the new
// full snapshot.
func (s *Store) AddOrMerge(ctx context.Context, category string, amount decimal.Decimal) ([]allocation.Record, error) {
	key, display, err := allocation.NormalizeCategory(category)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, allocation.ErrNegativeAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]allocation.Record, len(s.records))
	copy(next, s.records)

	merged := false
	for i := range next {
		if recordKey(next[i]) == key {
			next[i].Amount = next[i].Amount.Add(amount)
			merged = true
			break
		}
	}

	nextID := s.nextID
	if !merged {
		r, err := allocation.NewRecord(nextID, s.ownerID, display, amount)
		if err != nil {
			return nil, err
		}
		next = append(next, r)
		nextID++
	}

	s.commitLocked(allocation.NormalizeShares(next), nextID)
	return s.snapshotLocked(), nil
}

// Edit applies an amount (and optionally category) change to the record with
// the given id. Renaming onto another record's category is rejected; merge
// semantics belong to AddOrMerge only.
func (s *Store) Edit(ctx context.Context, id int64, amount decimal.Decimal, newCategory string) ([]allocation.Record, error) {
	if amount.IsNegative() {
		return nil, allocation.ErrNegativeAmount
	}

	var key, display string
	if strings.TrimSpace(newCategory) != "" {
		var err error
		key, display, err = allocation.NormalizeCategory(newCategory)
		if err != nil {
			return nil, err
		}
	} else if newCategory != "" {
		// Whitespace-only rename is as invalid as a whitespace-only add
		return nil, allocation.ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := -1
	for i := range s.records {
		if s.records[i].ID == id {
			target = i
			continue
		}
		if key != "" && recordKey(s.records[i]) == key {
			return nil, allocation.ErrDuplicateCategory
		}
	}
	if target == -1 {
		return nil, allocation.ErrRecordNotFound{RecordID: id}
	}

	next := make([]allocation.Record, len(s.records))
	copy(next, s.records)
	next[target].Amount = amount
	if display != "" {
		next[target].Category = display
	}

	s.commitLocked(allocation.NormalizeShares(next), s.nextID)
	return s.snapshotLocked(), nil
}

// CurrentTotal sums all current amounts. Pure read.
func (s *Store) CurrentTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return allocation.TotalAmount(s.records)
}

// Snapshot returns an immutable copy of the current record set, Investments
// first.
func (s *Store) Snapshot() []allocation.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// commitLocked makes records the current state and schedules exactly one
// asynchronous durable write of the full set. Callers hold the write lock.
func (s *Store) commitLocked(records []allocation.Record, nextID int64) {
	s.records = records
	s.nextID = nextID
	s.persisted = true
	s.writer.Enqueue(s.ownerID, s.snapshotLocked())
}

func (s *Store) snapshotLocked() []allocation.Record {
	out := make([]allocation.Record, len(s.records))
	copy(out, s.records)
	return out
}

// recordKey resolves a stored record's comparison key. Stored categories are
// already canonical display forms, so lower-casing is sufficient.
func recordKey(r allocation.Record) string {
	return strings.ToLower(r.Category)
}

func maxID(records []allocation.Record) int64 {
	var max int64
	for _, r := range records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}
