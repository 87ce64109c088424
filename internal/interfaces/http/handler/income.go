package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/obrafin/backend/internal/application/finance"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
	"github.com/obrafin/backend/internal/interfaces/http/middleware"
)

// IncomeHandler exposes income registration and validation over HTTP
type IncomeHandler struct {
	incomes *financeapp.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomes *financeapp.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomes: incomes}
}

// Create handles POST /api/v1/incomes
func (h *IncomeHandler) Create(c *gin.Context) {
	var req dto.CreateIncomeRequest
	if !bindJSON(c, &req) {
		return
	}

	workID, err := uuid.Parse(req.WorkID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed work_id"))
		return
	}
	receiptDate, err := time.Parse("2006-01-02", req.ReceiptDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed receipt_date"))
		return
	}

	actor := middleware.ActorFrom(c)
	income, err := h.incomes.Create(c.Request.Context(), financeapp.CreateIncomeRequest{
		WorkID:      workID,
		Amount:      toDecimal(req.Amount),
		Currency:    valueobject.Currency(req.Currency),
		ReceiptDate: receiptDate,
		Description: req.Description,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(income))
}

// Get handles GET /api/v1/incomes/:id
func (h *IncomeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	income, err := h.incomes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(income))
}

// ListByWork handles GET /api/v1/works/:id/incomes
func (h *IncomeHandler) ListByWork(c *gin.Context) {
	workID, ok := pathID(c)
	if !ok {
		return
	}
	incomes, err := h.incomes.ListByWork(c.Request.Context(), workID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(incomes))
}

// Validate handles POST /api/v1/incomes/:id/validate
func (h *IncomeHandler) Validate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	income, err := h.incomes.Validate(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(income))
}

// Annul handles POST /api/v1/incomes/:id/annul
func (h *IncomeHandler) Annul(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	income, err := h.incomes.Annul(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(income))
}
