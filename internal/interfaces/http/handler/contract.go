package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/obrafin/backend/internal/application/contract"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
	"github.com/obrafin/backend/internal/interfaces/http/middleware"
)

// ContractHandler exposes the contract ledger over HTTP
type ContractHandler struct {
	ledger *contractapp.LedgerService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(ledger *contractapp.LedgerService) *ContractHandler {
	return &ContractHandler{ledger: ledger}
}

// Create handles POST /api/v1/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req dto.CreateContractRequest
	if !bindJSON(c, &req) {
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed supplier_id"))
		return
	}
	workID, err := uuid.Parse(req.WorkID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed work_id"))
		return
	}

	actor := middleware.ActorFrom(c)
	created, err := h.ledger.Create(c.Request.Context(), supplierID, workID,
		req.Description, toDecimal(req.AmountTotal), valueobject.Currency(req.Currency), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(created))
}

// Get handles GET /api/v1/contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contractEntity, err := h.ledger.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(contractEntity))
}

// List handles GET /api/v1/contracts
func (h *ContractHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, err.Error()))
		return
	}

	filter := contract.Filter{
		Filter: shared.Filter{
			Search:   listReq.Search,
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if supplierID, err := uuid.Parse(c.Query("supplier_id")); err == nil {
		filter.SupplierID = &supplierID
	}
	if workID, err := uuid.Parse(c.Query("work_id")); err == nil {
		filter.WorkID = &workID
	}
	if status := c.Query("status"); status != "" {
		s := contract.Status(status)
		filter.Status = &s
	}

	contracts, total, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(contracts, total, filter.Page, filter.PageSize))
}

// UpdateExecuted handles PUT /api/v1/contracts/:id/executed
func (h *ContractHandler) UpdateExecuted(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateExecutedRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.ledger.UpdateAmountExecuted(c.Request.Context(), id, toDecimal(req.AmountExecuted), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(updated))
}

// Unblock handles POST /api/v1/contracts/:id/unblock
func (h *ContractHandler) Unblock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	actor := middleware.ActorFrom(c)
	unblocked, err := h.ledger.Unblock(c.Request.Context(), id, actor.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(unblocked))
}
