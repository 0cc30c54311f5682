package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRecords(t *testing.T) {
	ownerID := uuid.New()

	t.Run("BuildsFourRecordsWithFixedIDs", func(t *testing.T) {
		records, err := SeedRecords(ownerID, SeedAmounts{
			Investment: decimal.NewFromInt(100),
			Housing:    decimal.NewFromInt(300),
			Food:       decimal.NewFromInt(400),
			Saving:     decimal.NewFromInt(200),
		})
		require.NoError(t, err)
		require.Len(t, records, 4)

		assert.Equal(t, []string{"Investments", "Housing", "Food", "Savings"},
			[]string{records[0].Category, records[1].Category, records[2].Category, records[3].Category})
		for i, r := range records {
			assert.Equal(t, int64(i+1), r.ID)
			assert.Equal(t, ownerID, r.OwnerID)
		}
		assert.Equal(t, []int{10, 30, 40, 20},
			[]int{records[0].Percentage, records[1].Percentage, records[2].Percentage, records[3].Percentage})
	})

	t.Run("ZeroAmountsAreAccepted", func(t *testing.T) {
		records, err := SeedRecords(ownerID, SeedAmounts{})
		require.NoError(t, err)
		require.Len(t, records, 4)
		for _, r := range records {
			assert.Equal(t, 0, r.Percentage)
		}
	})

	t.Run("RejectsNegativeAmount", func(t *testing.T) {
		_, err := SeedRecords(ownerID, SeedAmounts{Housing: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, allocation.ErrNegativeAmount)
	})
}
