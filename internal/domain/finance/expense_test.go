package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpense(t *testing.T) *Expense {
	t.Helper()
	supplierID := uuid.New()
	e, err := NewExpense(
		uuid.New(), &supplierID,
		valueobject.NewMoneyARS(decimal.NewFromInt(10000)),
		DocumentTypeInvoiceA, "0001-00001234", time.Now(), "cement",
	)
	require.NoError(t, err)
	return e
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	return de.Code
}

func TestNewExpense(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		e := newTestExpense(t)
		assert.Equal(t, ExpenseStatePending, e.State)
		assert.Equal(t, 1, e.Version)
		assert.False(t, e.PostClosure)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), nil, valueobject.NewMoneyARS(decimal.Zero),
			DocumentTypeTicket, "T-1", time.Now(), "")
		assert.Equal(t, shared.CodeInvalidAmount, domainCode(t, err))
	})

	t.Run("rejects unknown document type", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), nil, valueobject.NewMoneyARS(decimal.NewFromInt(1)),
			DocumentType("RECEIPT"), "R-1", time.Now(), "")
		assert.Equal(t, shared.CodeBadRequest, domainCode(t, err))
	})

	t.Run("requires document number except for VAL", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), nil, valueobject.NewMoneyARS(decimal.NewFromInt(1)),
			DocumentTypeInvoiceA, "", time.Now(), "")
		assert.Equal(t, shared.CodeBadRequest, domainCode(t, err))

		e, err := NewExpense(uuid.New(), nil, valueobject.NewMoneyARS(decimal.NewFromInt(1)),
			DocumentTypeVAL, "", time.Now(), "")
		require.NoError(t, err)
		assert.Empty(t, e.DocumentNumber)
	})
}

func TestExpenseTransitions(t *testing.T) {
	actor := uuid.New()

	t.Run("pending to validated records actor", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.TransitionTo(ExpenseStateValidated, actor))

		assert.Equal(t, ExpenseStateValidated, e.State)
		require.NotNil(t, e.ValidatedBy)
		assert.Equal(t, actor, *e.ValidatedBy)
		assert.NotNil(t, e.ValidatedAt)
	})

	t.Run("validated round trips through observed", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.TransitionTo(ExpenseStateValidated, actor))
		require.NoError(t, e.TransitionTo(ExpenseStateObserved, actor))
		require.NoError(t, e.TransitionTo(ExpenseStateValidated, actor))
		assert.Equal(t, ExpenseStateValidated, e.State)
	})

	t.Run("pending cannot jump to rejected via transition", func(t *testing.T) {
		e := newTestExpense(t)
		err := e.TransitionTo(ExpenseStateRejected, actor)
		assert.Equal(t, shared.CodeInvalidState, domainCode(t, err))
	})

	t.Run("terminal states admit nothing", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.TransitionTo(ExpenseStateAnnulled, actor))

		err := e.TransitionTo(ExpenseStateValidated, actor)
		assert.Equal(t, shared.CodeInvalidState, domainCode(t, err))
	})

	t.Run("unknown target state", func(t *testing.T) {
		e := newTestExpense(t)
		err := e.TransitionTo(ExpenseState("DRAFT"), actor)
		assert.Equal(t, shared.CodeBadRequest, domainCode(t, err))
	})
}

func TestExpenseReject(t *testing.T) {
	actor := uuid.New()

	t.Run("requires a reason", func(t *testing.T) {
		e := newTestExpense(t)
		err := e.Reject(actor, "")
		assert.Equal(t, shared.CodeBadRequest, domainCode(t, err))
	})

	t.Run("records actor and reason", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Reject(actor, "wrong supplier"))

		assert.Equal(t, ExpenseStateRejected, e.State)
		assert.Equal(t, "wrong supplier", e.RejectionReason)
		require.NotNil(t, e.RejectedBy)
		assert.Equal(t, actor, *e.RejectedBy)
	})

	t.Run("cannot reject twice", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.Reject(actor, "dup"))
		err := e.Reject(actor, "again")
		assert.Equal(t, shared.CodeInvalidState, domainCode(t, err))
	})

	t.Run("validated expense can be rejected", func(t *testing.T) {
		e := newTestExpense(t)
		require.NoError(t, e.TransitionTo(ExpenseStateValidated, actor))
		require.NoError(t, e.Reject(actor, "audit finding"))
		assert.Equal(t, ExpenseStateRejected, e.State)
	})
}
