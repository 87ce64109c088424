package dto

import (
	"net/http"

	"github.com/obrafin/backend/internal/domain/shared"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes. Business
// rule violations answer 422; malformed input answers 400.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeForbidden:           http.StatusForbidden,
	shared.CodeVersionConflict:     http.StatusConflict,
	shared.CodeBadRequest:          http.StatusBadRequest,
	shared.CodeInvalidAmount:       http.StatusBadRequest,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeInsufficientBalance: http.StatusUnprocessableEntity,
	shared.CodeDuplicateInvoice:    http.StatusUnprocessableEntity,
	shared.CodeMonthClosed:         http.StatusUnprocessableEntity,
}

// HTTPStatusForCode returns the HTTP status code for a domain error code.
// Unknown codes answer 500.
func HTTPStatusForCode(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
