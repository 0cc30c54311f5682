package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
)

// SeedAmounts carries the four monthly amounts collected during onboarding.
type SeedAmounts struct {
	Investment decimal.Decimal
	Housing    decimal.Decimal
	Food       decimal.Decimal
	Saving     decimal.Decimal
}

// SeedRecords derives the initial record set for an owner from onboarding
// amounts: exactly four records with ids 1 through 4 and normalized shares.
// Seeding happens at most once per owner, only when no durable snapshot
// exists; persisting the result is the caller's job.
func SeedRecords(ownerID uuid.UUID, amounts SeedAmounts) ([]allocation.Record, error) {
	seeds := []struct {
		category string
		amount   decimal.Decimal
	}{
		{allocation.InvestmentsCategory, amounts.Investment},
		{"Housing", amounts.Housing},
		{"Food", amounts.Food},
		{"Savings", amounts.Saving},
	}

	records := make([]allocation.Record, 0, len(seeds))
	for i, s := range seeds {
		r, err := allocation.NewRecord(int64(i+1), ownerID, s.category, s.amount)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return allocation.NormalizeShares(records), nil
}
