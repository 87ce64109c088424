package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/obrafin/backend/internal/application/finance"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
	"github.com/obrafin/backend/internal/interfaces/http/middleware"
)

// ExpenseHandler exposes the expense lifecycle over HTTP
type ExpenseHandler struct {
	expenses *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Create handles POST /api/v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	workID, err := uuid.Parse(req.WorkID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed work_id"))
		return
	}
	supplierID, err := parseUUIDPtr(req.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed supplier_id"))
		return
	}
	purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed purchase_date"))
		return
	}

	actor := middleware.ActorFrom(c)
	expense, err := h.expenses.Create(c.Request.Context(), financeapp.CreateExpenseRequest{
		WorkID:         workID,
		SupplierID:     supplierID,
		Amount:         toDecimal(req.Amount),
		Currency:       valueobject.Currency(req.Currency),
		DocumentType:   finance.DocumentType(req.DocumentType),
		DocumentNumber: req.DocumentNumber,
		PurchaseDate:   purchaseDate,
		Description:    req.Description,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(expense))
}

// Get handles GET /api/v1/expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	expense, err := h.expenses.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(expense))
}

// List handles GET /api/v1/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, err.Error()))
		return
	}

	filter := finance.ExpenseFilter{
		Filter: shared.Filter{
			Search:   listReq.Search,
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if state := c.Query("state"); state != "" {
		s := finance.ExpenseState(state)
		filter.State = &s
	}
	if workID, err := uuid.Parse(c.Query("work_id")); err == nil {
		filter.WorkID = &workID
	}
	if supplierID, err := uuid.Parse(c.Query("supplier_id")); err == nil {
		filter.SupplierID = &supplierID
	}

	expenses, total, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(expenses, total, filter.Page, filter.PageSize))
}

// Transition handles POST /api/v1/expenses/:id/transition
func (h *ExpenseHandler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.TransitionExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenses.Validate(c.Request.Context(), id,
		finance.ExpenseState(req.Target), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(expense))
}

// Reject handles POST /api/v1/expenses/:id/reject
func (h *ExpenseHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.RejectExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenses.Reject(c.Request.Context(), id, req.Reason, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(expense))
}
