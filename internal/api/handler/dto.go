package handler

import "github.com/shopspring/decimal"

// OnboardingRequest carries the four monthly amounts collected when an owner
// signs up. All four must be present; zero is a valid amount.
type OnboardingRequest struct {
	Investment *decimal.Decimal `json:"investment" binding:"required"`
	Housing    *decimal.Decimal `json:"housing" binding:"required"`
	Food       *decimal.Decimal `json:"food" binding:"required"`
	Saving     *decimal.Decimal `json:"saving" binding:"required"`
}

// AddAllocationRequest represents a request to record an amount under a category
type AddAllocationRequest struct {
	Category string          `json:"category" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// EditAllocationRequest represents a request to overwrite an existing record.
// An empty category keeps the record's current one.
type EditAllocationRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
}

// AllocationResponse represents one allocation record in API responses
type AllocationResponse struct {
	ID         int64  `json:"id"`
	Category   string `json:"category"`
	Amount     string `json:"amount"`
	Percentage int    `json:"percentage"`
}

// SnapshotResponse represents an owner's full allocation set in API responses
type SnapshotResponse struct {
	Allocations []AllocationResponse `json:"allocations"`
	Total       string               `json:"total"`
}

// TotalResponse represents the sum of an owner's allocation amounts
type TotalResponse struct {
	Total string `json:"total"`
}

// ChartSegmentResponse represents one slice of the allocation chart
type ChartSegmentResponse struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	Percentage int    `json:"percentage"`
	ColorHint  string `json:"color_hint"`
	TextColor  string `json:"text_color"`
}

// ChartResponse represents the allocation chart for an owner
type ChartResponse struct {
	Segments []ChartSegmentResponse `json:"segments"`
	Total    string                 `json:"total"`
}

// CategoriesResponse lists the category labels offered as suggestions
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
