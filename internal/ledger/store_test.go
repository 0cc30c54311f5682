package ledger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sharevest-expense-ledger/internal/config"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeSnapshotRepo records saves in order and can stall or fail them, which
// makes the asynchronous pipeline deterministic under test.
type fakeSnapshotRepo struct {
	mu          sync.Mutex
	loadRecords []allocation.Record
	loadErr     error
	loadCalls   int
	saves       [][]allocation.Record
	saveErrs    []error       // consumed per save, nil entries succeed
	gate        chan struct{} // when set, the first save blocks until the gate closes
	started     chan struct{} // closed once the gated save has begun
	gateUsed    bool
}

func (f *fakeSnapshotRepo) Load(ctx context.Context, ownerID uuid.UUID) ([]allocation.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]allocation.Record, len(f.loadRecords))
	copy(out, f.loadRecords)
	return out, nil
}

func (f *fakeSnapshotRepo) Save(ctx context.Context, ownerID uuid.UUID, records []allocation.Record) error {
	f.mu.Lock()
	gate := f.gate
	blocked := gate != nil && !f.gateUsed
	if blocked {
		f.gateUsed = true
	}
	f.mu.Unlock()

	if blocked {
		if f.started != nil {
			close(f.started)
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]allocation.Record, len(records))
	copy(snapshot, records)
	f.saves = append(f.saves, snapshot)
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		return err
	}
	return nil
}

func (f *fakeSnapshotRepo) savedSets() [][]allocation.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]allocation.Record, len(f.saves))
	copy(out, f.saves)
	return out
}

func newTestWriter(t *testing.T, repo allocation.SnapshotRepository) *SnapshotWriter {
	t.Helper()
	w, err := NewSnapshotWriter(newTestLogger(), repo, nil, &config.WriterConfig{PoolSize: 2, QueueDepth: 8})
	require.NoError(t, err)
	return w
}

func amt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("AdoptsLoadedSnapshot", func(t *testing.T) {
		repo := &fakeSnapshotRepo{loadRecords: []allocation.Record{
			{ID: 2, OwnerID: ownerID, Category: "Food", Amount: amt(300)},
			{ID: 5, OwnerID: ownerID, Category: "Investments", Amount: amt(700)},
		}}
		writer := newTestWriter(t, repo)
		defer writer.Close()
		store := NewStore(newTestLogger(), repo, writer, ownerID)

		require.NoError(t, store.Initialize(ctx))

		snap := store.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, "Investments", snap[0].Category)
		assert.Equal(t, 70, snap[0].Percentage)
		assert.Equal(t, 30, snap[1].Percentage)
	})

	t.Run("NotFoundStartsEmpty", func(t *testing.T) {
		repo := &fakeSnapshotRepo{loadErr: allocation.ErrSnapshotNotFound{OwnerID: ownerID}}
		writer := newTestWriter(t, repo)
		defer writer.Close()
		store := NewStore(newTestLogger(), repo, writer, ownerID)

		require.NoError(t, store.Initialize(ctx))
		assert.Empty(t, store.Snapshot())
		assert.True(t, store.CurrentTotal().IsZero())
	})

	t.Run("Idempotent", func(t *testing.T) {
		repo := &fakeSnapshotRepo{loadRecords: []allocation.Record{
			{ID: 1, OwnerID: ownerID, Category: "Food", Amount: amt(100)},
		}}
		writer := newTestWriter(t, repo)
		defer writer.Close()
		store := NewStore(newTestLogger(), repo, writer, ownerID)

		require.NoError(t, store.Initialize(ctx))
		require.NoError(t, store.Initialize(ctx))
		assert.Equal(t, 1, repo.loadCalls)
	})

	t.Run("LoadFailurePropagates", func(t *testing.T) {
		repo := &fakeSnapshotRepo{loadErr: errors.New("connection refused")}
		writer := newTestWriter(t, repo)
		defer writer.Close()
		store := NewStore(newTestLogger(), repo, writer, ownerID)

		err := store.Initialize(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize allocation store")
	})
}

func TestStore_AddOrMerge(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	newEmptyStore := func(t *testing.T) (*Store, *fakeSnapshotRepo, *SnapshotWriter) {
		repo := &fakeSnapshotRepo{loadErr: allocation.ErrSnapshotNotFound{}}
		writer := newTestWriter(t, repo)
		store := NewStore(newTestLogger(), repo, writer, ownerID)
		require.NoError(t, store.Initialize(ctx))
		return store, repo, writer
	}

	t.Run("MergesCaseInsensitively", func(t *testing.T) {
		store, repo, writer := newEmptyStore(t)

		_, err := store.AddOrMerge(ctx, "Food", amt(100))
		require.NoError(t, err)
		snap, err := store.AddOrMerge(ctx, "food", amt(50))
		require.NoError(t, err)

		require.Len(t, snap, 1)
		assert.Equal(t, "Food", snap[0].Category)
		assert.True(t, snap[0].Amount.Equal(amt(150)))
		assert.Equal(t, 100, snap[0].Percentage)

		writer.Close()
		saves := repo.savedSets()
		require.Len(t, saves, 2, "each mutation triggers exactly one write")
		assert.True(t, saves[1][0].Amount.Equal(amt(150)))
	})

	t.Run("OrderingAndShares", func(t *testing.T) {
		store, _, writer := newEmptyStore(t)
		defer writer.Close()

		_, err := store.AddOrMerge(ctx, "Investments", amt(200))
		require.NoError(t, err)
		_, err = store.AddOrMerge(ctx, "Housing", amt(300))
		require.NoError(t, err)
		snap, err := store.AddOrMerge(ctx, "Food", amt(500))
		require.NoError(t, err)

		require.Len(t, snap, 3)
		assert.Equal(t, []string{"Investments", "Housing", "Food"},
			[]string{snap[0].Category, snap[1].Category, snap[2].Category})
		assert.Equal(t, []int{20, 30, 50},
			[]int{snap[0].Percentage, snap[1].Percentage, snap[2].Percentage})
	})

	t.Run("AssignsMonotonicIDs", func(t *testing.T) {
		store, _, writer := newEmptyStore(t)
		defer writer.Close()

		snap, err := store.AddOrMerge(ctx, "Food", amt(10))
		require.NoError(t, err)
		assert.Equal(t, int64(1), snap[0].ID)

		snap, err = store.AddOrMerge(ctx, "Travel", amt(10))
		require.NoError(t, err)
		require.Len(t, snap, 2)
		assert.Equal(t, int64(2), snap[1].ID)

		// A merge must not consume an id
		snap, err = store.AddOrMerge(ctx, "FOOD", amt(10))
		require.NoError(t, err)
		snap, err = store.AddOrMerge(ctx, "Gifts", amt(10))
		require.NoError(t, err)
		require.Len(t, snap, 3)
		assert.Equal(t, int64(3), snap[2].ID)
	})

	t.Run("RejectsInvalidInputWithoutMutation", func(t *testing.T) {
		store, repo, writer := newEmptyStore(t)

		_, err := store.AddOrMerge(ctx, "   ", amt(10))
		assert.ErrorIs(t, err, allocation.ErrEmptyCategory)

		_, err = store.AddOrMerge(ctx, "Food", amt(-1))
		assert.ErrorIs(t, err, allocation.ErrNegativeAmount)

		assert.Empty(t, store.Snapshot())
		writer.Close()
		assert.Empty(t, repo.savedSets(), "failed validation must not trigger a write")
	})

	t.Run("ZeroTotalYieldsZeroShares", func(t *testing.T) {
		store, _, writer := newEmptyStore(t)
		defer writer.Close()

		_, err := store.AddOrMerge(ctx, "Food", amt(0))
		require.NoError(t, err)
		snap, err := store.AddOrMerge(ctx, "Travel", amt(0))
		require.NoError(t, err)

		for _, r := range snap {
			assert.Equal(t, 0, r.Percentage)
		}
	})
}

func TestStore_Edit(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	newSeededStore := func(t *testing.T) (*Store, *fakeSnapshotRepo, *SnapshotWriter) {
		repo := &fakeSnapshotRepo{loadRecords: []allocation.Record{
			{ID: 1, OwnerID: ownerID, Category: "Investments", Amount: amt(200)},
			{ID: 2, OwnerID: ownerID, Category: "Food", Amount: amt(300)},
		}}
		writer := newTestWriter(t, repo)
		store := NewStore(newTestLogger(), repo, writer, ownerID)
		require.NoError(t, store.Initialize(ctx))
		return store, repo, writer
	}

	t.Run("ChangesAmountAndRecomputesShares", func(t *testing.T) {
		store, _, writer := newSeededStore(t)
		defer writer.Close()

		snap, err := store.Edit(ctx, 2, amt(200), "")
		require.NoError(t, err)

		require.Len(t, snap, 2)
		assert.True(t, snap[1].Amount.Equal(amt(200)))
		assert.Equal(t, 50, snap[0].Percentage)
		assert.Equal(t, 50, snap[1].Percentage)
	})

	t.Run("RenamesCategory", func(t *testing.T) {
		store, _, writer := newSeededStore(t)
		defer writer.Close()

		snap, err := store.Edit(ctx, 2, amt(300), "  weekly   groceries ")
		require.NoError(t, err)
		assert.Equal(t, "Weekly Groceries", snap[1].Category)
		assert.Equal(t, int64(2), snap[1].ID, "rename keeps the record id")
	})

	t.Run("UnknownIDLeavesSetUnchanged", func(t *testing.T) {
		store, repo, writer := newSeededStore(t)

		before := store.Snapshot()
		_, err := store.Edit(ctx, 99, amt(10), "")
		assert.ErrorIs(t, err, allocation.ErrRecordNotFound{RecordID: 99})
		assert.Equal(t, before, store.Snapshot())

		writer.Close()
		assert.Empty(t, repo.savedSets())
	})

	t.Run("RejectsDuplicateRename", func(t *testing.T) {
		store, _, writer := newSeededStore(t)
		defer writer.Close()

		_, err := store.Edit(ctx, 2, amt(300), "investments")
		assert.ErrorIs(t, err, allocation.ErrDuplicateCategory)
	})

	t.Run("RejectsNegativeAmount", func(t *testing.T) {
		store, _, writer := newSeededStore(t)
		defer writer.Close()

		_, err := store.Edit(ctx, 2, amt(-5), "")
		assert.ErrorIs(t, err, allocation.ErrNegativeAmount)
	})
}

func TestStore_Seed(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	amounts := SeedAmounts{
		Investment: amt(100),
		Housing:    amt(300),
		Food:       amt(400),
		Saving:     amt(200),
	}

	t.Run("SeedsEmptyLedger", func(t *testing.T) {
		repo := &fakeSnapshotRepo{loadErr: allocation.ErrSnapshotNotFound{}}
		writer := newTestWriter(t, repo)
		store := NewStore(newTestLogger(), repo, writer, ownerID)
		require.NoError(t, store.Initialize(ctx))

		snap, err := store.Seed(ctx, amounts)
		require.NoError(t, err)
		require.Len(t, snap, 4)
		assert.Equal(t, "Investments", snap[0].Category)
		assert.Equal(t, 10, snap[0].Percentage)
		assert.True(t, store.CurrentTotal().Equal(amt(1000)))

		// Second seed attempt must fail even before the write lands
		_, err = store.Seed(ctx, amounts)
		assert.ErrorIs(t, err, ErrAlreadySeeded{OwnerID: ownerID})

		writer.Close()
		require.Len(t, repo.savedSets(), 1)
	})

	t.Run("RefusesWhenSnapshotExisted", func(t *testing.T) {
		repo := &fakeSnapshotRepo{loadRecords: []allocation.Record{
			{ID: 1, OwnerID: ownerID, Category: "Food", Amount: amt(50)},
		}}
		writer := newTestWriter(t, repo)
		defer writer.Close()
		store := NewStore(newTestLogger(), repo, writer, ownerID)
		require.NoError(t, store.Initialize(ctx))

		_, err := store.Seed(ctx, amounts)
		assert.ErrorIs(t, err, ErrAlreadySeeded{})
	})

	t.Run("RefusesWhenEmptySnapshotExisted", func(t *testing.T) {
		// An existing-but-empty durable set is not the same as never-saved
		repo := &fakeSnapshotRepo{}
		writer := newTestWriter(t, repo)
		defer writer.Close()
		store := NewStore(newTestLogger(), repo, writer, ownerID)
		require.NoError(t, store.Initialize(ctx))

		_, err := store.Seed(ctx, amounts)
		assert.ErrorIs(t, err, ErrAlreadySeeded{})
	})
}

func TestStore_CurrentTotal(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	repo := &fakeSnapshotRepo{loadErr: allocation.ErrSnapshotNotFound{}}
	writer := newTestWriter(t, repo)
	defer writer.Close()
	store := NewStore(newTestLogger(), repo, writer, ownerID)
	require.NoError(t, store.Initialize(ctx))

	_, err := store.AddOrMerge(ctx, "Food", decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	_, err = store.AddOrMerge(ctx, "Travel", decimal.RequireFromString("4.25"))
	require.NoError(t, err)

	assert.True(t, store.CurrentTotal().Equal(decimal.RequireFromString("14.75")))
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	repo := &fakeSnapshotRepo{loadErr: allocation.ErrSnapshotNotFound{}}
	writer := newTestWriter(t, repo)
	defer writer.Close()
	store := NewStore(newTestLogger(), repo, writer, ownerID)
	require.NoError(t, store.Initialize(ctx))

	_, err := store.AddOrMerge(ctx, "Food", amt(100))
	require.NoError(t, err)

	snap := store.Snapshot()
	snap[0].Amount = amt(999)
	snap[0].Category = "Tampered"

	fresh := store.Snapshot()
	assert.Equal(t, "Food", fresh[0].Category)
	assert.True(t, fresh[0].Amount.Equal(amt(100)))
}
