package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	accountingapp "github.com/obrafin/backend/internal/application/accounting"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
	"github.com/obrafin/backend/internal/interfaces/http/middleware"
)

// AccountingHandler exposes the accounting ledger and month closing over HTTP
type AccountingHandler struct {
	projector *accountingapp.ProjectionService
	months    *accountingapp.MonthService
}

// NewAccountingHandler creates a new AccountingHandler
func NewAccountingHandler(projector *accountingapp.ProjectionService, months *accountingapp.MonthService) *AccountingHandler {
	return &AccountingHandler{projector: projector, months: months}
}

func periodParams(c *gin.Context) (int, int, bool) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed month parameter"))
		return 0, 0, false
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed year parameter"))
		return 0, 0, false
	}
	return month, year, true
}

// ListPeriod handles GET /api/v1/accounting/records?month=&year=
func (h *AccountingHandler) ListPeriod(c *gin.Context) {
	month, year, ok := periodParams(c)
	if !ok {
		return
	}
	records, err := h.projector.ListPeriod(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(records))
}

// PeriodStatus handles GET /api/v1/accounting/months/status?month=&year=
func (h *AccountingHandler) PeriodStatus(c *gin.Context) {
	month, year, ok := periodParams(c)
	if !ok {
		return
	}
	status, err := h.months.PeriodStatus(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"month": month, "year": year, "status": status}))
}

// CloseMonth handles POST /api/v1/accounting/months/close
func (h *AccountingHandler) CloseMonth(c *gin.Context) {
	var req dto.PeriodRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.ActorFrom(c)
	if err := h.months.CloseMonth(c.Request.Context(), req.Month, req.Year, actor.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"month": req.Month, "year": req.Year, "status": "CLOSED"}))
}

// ReopenMonth handles POST /api/v1/accounting/months/reopen
func (h *AccountingHandler) ReopenMonth(c *gin.Context) {
	var req dto.PeriodRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.ActorFrom(c)
	if err := h.months.ReopenMonth(c.Request.Context(), req.Month, req.Year, actor.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"month": req.Month, "year": req.Year, "status": "OPEN"}))
}
