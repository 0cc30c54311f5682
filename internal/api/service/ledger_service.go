package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/sharevest-expense-ledger/internal/ledger"
)

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	registry *ledger.Registry
}

// NewLedgerService creates a new ledger service backed by the store registry
func NewLedgerService(registry *ledger.Registry) LedgerService {
	return &LedgerServiceImpl{
		registry: registry,
	}
}

// Onboard seeds a new owner's ledger from the onboarding amounts
func (s *LedgerServiceImpl) Onboard(ctx context.Context, ownerID uuid.UUID, amounts ledger.SeedAmounts) ([]allocation.Record, error) {
	store, err := s.registry.StoreFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return store.Seed(ctx, amounts)
}

// AddAllocation records an amount under a category, merging on a duplicate
func (s *LedgerServiceImpl) AddAllocation(ctx context.Context, ownerID uuid.UUID, category string, amount decimal.Decimal) ([]allocation.Record, error) {
	store, err := s.registry.StoreFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return store.AddOrMerge(ctx, category, amount)
}

// EditAllocation overwrites an existing record's amount and category
func (s *LedgerServiceImpl) EditAllocation(ctx context.Context, ownerID uuid.UUID, recordID int64, amount decimal.Decimal, newCategory string) ([]allocation.Record, error) {
	store, err := s.registry.StoreFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return store.Edit(ctx, recordID, amount, newCategory)
}

// GetAllocations returns the owner's current record set
func (s *LedgerServiceImpl) GetAllocations(ctx context.Context, ownerID uuid.UUID) ([]allocation.Record, error) {
	store, err := s.registry.StoreFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return store.Snapshot(), nil
}

// GetTotal returns the sum of the owner's allocation amounts
func (s *LedgerServiceImpl) GetTotal(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	store, err := s.registry.StoreFor(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	return store.CurrentTotal(), nil
}
