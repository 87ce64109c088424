package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error codes shared across bounded contexts. Every operation failure maps to
// one of the three families: NOT_FOUND, FORBIDDEN or a BAD_REQUEST variant.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInvalidState        = "INVALID_STATE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeDuplicateInvoice    = "DUPLICATE_INVOICE"
	CodeMonthClosed         = "MONTH_CLOSED"
	CodeVersionConflict     = "VERSION_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrForbidden           = NewDomainError(CodeForbidden, "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError(CodeInsufficientBalance, "Insufficient contract balance available")
)

// IsNotFound reports whether err is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == CodeNotFound
}

// IsForbidden reports whether err is a FORBIDDEN domain error
func IsForbidden(err error) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == CodeForbidden
}

// BadRequestCodes lists every code treated as a precondition violation
var BadRequestCodes = map[string]struct{}{
	CodeBadRequest:          {},
	CodeInvalidState:        {},
	CodeInvalidAmount:       {},
	CodeInsufficientBalance: {},
	CodeDuplicateInvoice:    {},
	CodeMonthClosed:         {},
}
