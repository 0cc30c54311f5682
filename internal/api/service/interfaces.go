package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/sharevest-expense-ledger/internal/ledger"
)

// LedgerService defines the operations the HTTP layer exposes over an
// owner's allocation ledger
type LedgerService interface {
	// Onboard seeds a new owner's ledger from the four onboarding amounts
	// Returns ErrAlreadySeeded if the owner already has allocation state
	Onboard(ctx context.Context, ownerID uuid.UUID, amounts ledger.SeedAmounts) ([]allocation.Record, error)

	// AddAllocation records an amount under a category, merging into an
	// existing record when the category already exists
	AddAllocation(ctx context.Context, ownerID uuid.UUID, category string, amount decimal.Decimal) ([]allocation.Record, error)

	// EditAllocation overwrites a record's amount and, when newCategory is
	// non-empty, its category
	// Returns ErrRecordNotFound if no record has the given id
	EditAllocation(ctx context.Context, ownerID uuid.UUID, recordID int64, amount decimal.Decimal, newCategory string) ([]allocation.Record, error)

	// GetAllocations returns the owner's current record set in display order
	GetAllocations(ctx context.Context, ownerID uuid.UUID) ([]allocation.Record, error)

	// GetTotal returns the sum of the owner's allocation amounts
	GetTotal(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}
