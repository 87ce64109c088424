package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// respondError translates an error into the standard envelope. Domain errors
// carry their own code and status; everything else is an internal error.
func respondError(c *gin.Context, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		c.JSON(dto.HTTPStatusForCode(de.Code), dto.NewErrorResponse(de.Code, de.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL", "Internal server error"))
}

// bindJSON binds the request body and answers 400 on failure
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, err.Error()))
		return false
	}
	return true
}

// pathID parses the :id path parameter and answers 400 on failure
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeBadRequest, "Malformed id parameter"))
		return uuid.Nil, false
	}
	return id, true
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// parseUUIDPtr parses an optional UUID string
func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
