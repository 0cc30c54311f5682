// Package allocation defines the expense allocation ledger domain: per-owner
// category records with amounts and derived percentage shares.
package allocation

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common validation errors
var (
	ErrEmptyCategory     = errors.New("category cannot be empty")
	ErrNegativeAmount    = errors.New("amount must be zero or positive")
	ErrDuplicateCategory = errors.New("another record already uses this category")
)

// Record is a single allocation category for an owner. Percentage is derived
// from the full record set and recomputed on every mutation; it is never set
// directly by callers.
type Record struct {
	ID         int64           `json:"id"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage int             `json:"percentage"`
}

// NewRecord creates a record with a normalized display category. The caller is
// responsible for id uniqueness within the owner's set.
func NewRecord(id int64, ownerID uuid.UUID, category string, amount decimal.Decimal) (Record, error) {
	_, display, err := NormalizeCategory(category)
	if err != nil {
		return Record{}, err
	}
	if amount.IsNegative() {
		return Record{}, ErrNegativeAmount
	}

	return Record{
		ID:       id,
		OwnerID:  ownerID,
		Category: display,
		Amount:   amount,
	}, nil
}

// ErrRecordNotFound indicates an edit targeting an id missing from the set
type ErrRecordNotFound struct {
	RecordID int64
}

func (e ErrRecordNotFound) Error() string {
	return "allocation record not found: id " + formatID(e.RecordID)
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	// A zero target id matches any ErrRecordNotFound
	if t.RecordID == 0 {
		return true
	}
	return e.RecordID == t.RecordID
}

// ErrSnapshotNotFound indicates no durable snapshot exists for an owner.
// Distinct from an existing-but-empty set.
type ErrSnapshotNotFound struct {
	OwnerID uuid.UUID
}

func (e ErrSnapshotNotFound) Error() string {
	return "allocation snapshot not found for owner: " + e.OwnerID.String()
}

// Is implements the errors.Is interface for ErrSnapshotNotFound
func (e ErrSnapshotNotFound) Is(target error) bool {
	t, ok := target.(ErrSnapshotNotFound)
	if !ok {
		return false
	}
	if t.OwnerID == uuid.Nil {
		return true
	}
	return e.OwnerID == t.OwnerID
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
