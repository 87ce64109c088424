package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	treasuryapp "github.com/obrafin/backend/internal/application/treasury"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/domain/treasury"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
	"github.com/obrafin/backend/internal/interfaces/http/middleware"
)

// CashboxHandler exposes cashbox sessions over HTTP
type CashboxHandler struct {
	cashboxes *treasuryapp.CashboxService
}

// NewCashboxHandler creates a new CashboxHandler
func NewCashboxHandler(cashboxes *treasuryapp.CashboxService) *CashboxHandler {
	return &CashboxHandler{cashboxes: cashboxes}
}

// Open handles POST /api/v1/cashboxes
func (h *CashboxHandler) Open(c *gin.Context) {
	var req dto.OpenCashboxRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.ActorFrom(c)
	box, err := h.cashboxes.Open(c.Request.Context(), actor.ID, treasury.Balances{
		ARS: toDecimal(req.OpeningARS),
		USD: toDecimal(req.OpeningUSD),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(box))
}

// Get handles GET /api/v1/cashboxes/:id
func (h *CashboxHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	box, err := h.cashboxes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}

// ListMine handles GET /api/v1/cashboxes
func (h *CashboxHandler) ListMine(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	boxes, err := h.cashboxes.ListByUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(boxes))
}

// RegisterMovement handles POST /api/v1/cashboxes/:id/movements
func (h *CashboxHandler) RegisterMovement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.RegisterMovementRequest
	if !bindJSON(c, &req) {
		return
	}

	expenseID, err := parseUUIDPtr(req.ExpenseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed expense_id"))
		return
	}
	incomeID, err := parseUUIDPtr(req.IncomeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed income_id"))
		return
	}

	actor := middleware.ActorFrom(c)
	movement, err := h.cashboxes.RegisterMovement(c.Request.Context(), treasuryapp.RegisterMovementRequest{
		CashboxID:   id,
		Type:        treasury.MovementType(req.Type),
		Amount:      toDecimal(req.Amount),
		Currency:    valueobject.Currency(req.Currency),
		Description: req.Description,
		ExpenseID:   expenseID,
		IncomeID:    incomeID,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(movement))
}

// ListMovements handles GET /api/v1/cashboxes/:id/movements
func (h *CashboxHandler) ListMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	movements, err := h.cashboxes.ListMovements(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(movements))
}

// Refill handles POST /api/v1/cashboxes/:id/refill
func (h *CashboxHandler) Refill(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.RefillCashboxRequest
	if !bindJSON(c, &req) {
		return
	}

	box, err := h.cashboxes.Refill(c.Request.Context(), id,
		valueobject.Currency(req.Currency), toDecimal(req.Amount), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}

// Close handles POST /api/v1/cashboxes/:id/close
func (h *CashboxHandler) Close(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CloseCashboxRequest
	if !bindJSON(c, &req) {
		return
	}

	box, err := h.cashboxes.Close(c.Request.Context(), id, treasury.Balances{
		ARS: toDecimal(req.ClosingARS),
		USD: toDecimal(req.ClosingUSD),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}

// Reopen handles POST /api/v1/cashboxes/:id/reopen
func (h *CashboxHandler) Reopen(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	box, err := h.cashboxes.Reopen(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}

// Adjust handles POST /api/v1/cashboxes/:id/adjust
func (h *CashboxHandler) Adjust(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AdjustCashboxRequest
	if !bindJSON(c, &req) {
		return
	}

	box, err := h.cashboxes.ManualAdjustment(c.Request.Context(), id,
		valueobject.Currency(req.Currency), toDecimal(req.Amount), req.Reason, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}

// ApproveDifference handles POST /api/v1/cashboxes/:id/difference/approve
func (h *CashboxHandler) ApproveDifference(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	box, err := h.cashboxes.ApproveDifference(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}

// RejectDifference handles POST /api/v1/cashboxes/:id/difference/reject
func (h *CashboxHandler) RejectDifference(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	box, err := h.cashboxes.RejectDifference(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(box))
}
