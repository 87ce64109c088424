package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
)

// AlertHandler exposes alert queries and acknowledgement over HTTP
type AlertHandler struct {
	alerts *alertapp.Service
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alerts *alertapp.Service) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListUnread handles GET /api/v1/alerts
func (h *AlertHandler) ListUnread(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	unread, err := h.alerts.ListUnread(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(unread))
}

// MarkRead handles POST /api/v1/alerts/:id/read
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	a, err := h.alerts.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(a))
}
