package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sharevest-expense-ledger/internal/api/service"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/sharevest-expense-ledger/internal/ledger"
)

// AllocationHandler handles HTTP requests for allocation operations
type AllocationHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(logger *slog.Logger, ledgerService service.LedgerService) *AllocationHandler {
	return &AllocationHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Onboard seeds a new owner's ledger from the onboarding amounts, returning
// 409 when the owner already has allocation state
func (h *AllocationHandler) Onboard(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	records, err := h.ledgerService.Onboard(c.Request.Context(), ownerID, ledger.SeedAmounts{
		Investment: *req.Investment,
		Housing:    *req.Housing,
		Food:       *req.Food,
		Saving:     *req.Saving,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrAlreadySeeded{}) {
			h.logger.Warn("Onboarding attempt for an owner with existing allocations", "owner_id", ownerID.String())
			RespondConflict(c, "Owner already has allocations")
			return
		}
		if h.respondValidation(c, err) {
			return
		}
		h.logger.Error("Failed to onboard owner", "owner_id", ownerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapSnapshotToResponse(records))
}

// Add records an amount under a category. Amounts for a category the owner
// already uses are merged onto the existing record.
func (h *AllocationHandler) Add(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req AddAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	records, err := h.ledgerService.AddAllocation(c.Request.Context(), ownerID, req.Category, req.Amount)
	if err != nil {
		if h.respondValidation(c, err) {
			return
		}
		h.logger.Error("Failed to add allocation", "owner_id", ownerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapSnapshotToResponse(records))
}

// Edit overwrites an existing record's amount and, optionally, its category,
// returning 404 when the record id is unknown
func (h *AllocationHandler) Edit(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	idParam := c.Param("id")
	recordID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.logger.Error("Invalid record ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid record ID")
		return
	}

	var req EditAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	records, err := h.ledgerService.EditAllocation(c.Request.Context(), ownerID, recordID, req.Amount, req.Category)
	if err != nil {
		var notFound allocation.ErrRecordNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Allocation record not found")
			return
		}
		if h.respondValidation(c, err) {
			return
		}
		h.logger.Error("Failed to edit allocation", "owner_id", ownerID.String(), "record_id", recordID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSnapshotToResponse(records))
}

// List returns the owner's current allocation set in display order
func (h *AllocationHandler) List(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	records, err := h.ledgerService.GetAllocations(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to get allocations", "owner_id", ownerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSnapshotToResponse(records))
}

// Total returns the sum of the owner's allocation amounts
func (h *AllocationHandler) Total(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	total, err := h.ledgerService.GetTotal(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to get allocation total", "owner_id", ownerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, TotalResponse{Total: total.StringFixed(2)})
}

// Chart returns the owner's allocations as chart segments with display colors
func (h *AllocationHandler) Chart(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	records, err := h.ledgerService.GetAllocations(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to get allocations for chart", "owner_id", ownerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	segments := make([]ChartSegmentResponse, 0, len(records))
	for _, r := range records {
		color := allocation.ColorHint(r.Category)
		segments = append(segments, ChartSegmentResponse{
			Label:      r.Category,
			Value:      r.Amount.String(),
			Percentage: r.Percentage,
			ColorHint:  color,
			TextColor:  allocation.TextColor(color),
		})
	}

	RespondOK(c, ChartResponse{
		Segments: segments,
		Total:    allocation.TotalAmount(records).StringFixed(2),
	})
}

// Categories lists the category labels offered as suggestions during entry
func (h *AllocationHandler) Categories(c *gin.Context) {
	RespondOK(c, CategoriesResponse{Categories: allocation.SuggestedCategories})
}

// ownerID parses the owner id path parameter, answering 400 on failure
func (h *AllocationHandler) ownerID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("ownerId")
	ownerID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid owner ID", "owner_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid owner ID")
		return uuid.Nil, false
	}
	return ownerID, true
}

// respondValidation maps domain validation failures to client errors. Returns
// false when the error is not a validation failure.
func (h *AllocationHandler) respondValidation(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, allocation.ErrEmptyCategory):
		RespondBadRequest(c, "Category must not be empty")
	case errors.Is(err, allocation.ErrNegativeAmount):
		RespondBadRequest(c, "Amount must not be negative")
	case errors.Is(err, allocation.ErrDuplicateCategory):
		RespondConflict(c, "Another record already uses this category")
	default:
		return false
	}
	return true
}

// mapSnapshotToResponse maps a record set to the snapshot response DTO
func mapSnapshotToResponse(records []allocation.Record) SnapshotResponse {
	allocations := make([]AllocationResponse, 0, len(records))
	for _, r := range records {
		allocations = append(allocations, AllocationResponse{
			ID:         r.ID,
			Category:   r.Category,
			Amount:     r.Amount.String(),
			Percentage: r.Percentage,
		})
	}
	return SnapshotResponse{
		Allocations: allocations,
		Total:       allocation.TotalAmount(records).StringFixed(2),
	}
}
