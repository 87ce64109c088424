package finance

import (
	"testing"

	"github.com/obrafin/backend/internal/domain/worksite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTaxes_RegisteredInvoiceA(t *testing.T) {
	amount := decimal.NewFromInt(100000)

	taxes := CalculateTaxes(amount, worksite.FiscalConditionRegistered, DocumentTypeInvoiceA)

	assert.True(t, decimal.NewFromInt(3000).Equal(taxes.VATPerception), "VAT perception: %s", taxes.VATPerception)
	assert.True(t, decimal.NewFromInt(1000).Equal(taxes.VATWithholding), "VAT withholding: %s", taxes.VATWithholding)
	assert.True(t, decimal.NewFromInt(2500).Equal(taxes.IIBBPerception), "IIBB perception: %s", taxes.IIBBPerception)
	assert.True(t, decimal.NewFromInt(2000).Equal(taxes.IncomeTaxWithholding), "income tax withholding: %s", taxes.IncomeTaxWithholding)
	assert.True(t, decimal.NewFromInt(8500).Equal(taxes.Total()))
}

func TestCalculateTaxes_RegisteredInvoiceB(t *testing.T) {
	taxes := CalculateTaxes(decimal.NewFromInt(10000), worksite.FiscalConditionRegistered, DocumentTypeInvoiceB)

	assert.True(t, taxes.VATPerception.IsZero())
	assert.True(t, taxes.VATWithholding.IsZero())
	assert.True(t, decimal.NewFromInt(250).Equal(taxes.IIBBPerception))
	assert.True(t, taxes.IncomeTaxWithholding.IsZero())
}

func TestCalculateTaxes_MonotributoInvoiceC(t *testing.T) {
	taxes := CalculateTaxes(decimal.NewFromInt(10000), worksite.FiscalConditionMonotributo, DocumentTypeInvoiceC)

	assert.True(t, decimal.NewFromInt(150).Equal(taxes.IIBBPerception))
	assert.True(t, taxes.VATPerception.IsZero())
	assert.True(t, taxes.VATWithholding.IsZero())
	assert.True(t, taxes.IncomeTaxWithholding.IsZero())
}

func TestCalculateTaxes_NoRateCombinations(t *testing.T) {
	amount := decimal.NewFromInt(50000)

	cases := []struct {
		name      string
		condition worksite.FiscalCondition
		docType   DocumentType
	}{
		{"exempt supplier invoice A", worksite.FiscalConditionExempt, DocumentTypeInvoiceA},
		{"registered ticket", worksite.FiscalConditionRegistered, DocumentTypeTicket},
		{"registered VAL voucher", worksite.FiscalConditionRegistered, DocumentTypeVAL},
		{"monotributo invoice A", worksite.FiscalConditionMonotributo, DocumentTypeInvoiceA},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			taxes := CalculateTaxes(amount, tc.condition, tc.docType)
			assert.True(t, taxes.IsZero())
		})
	}
}

func TestCalculateTaxes_Rounding(t *testing.T) {
	// 333.33 * 3% = 9.9999, rounds to 10.00
	taxes := CalculateTaxes(decimal.RequireFromString("333.33"), worksite.FiscalConditionRegistered, DocumentTypeInvoiceA)

	assert.True(t, decimal.RequireFromString("10.00").Equal(taxes.VATPerception), "got %s", taxes.VATPerception)
	assert.Equal(t, int32(-2), taxes.VATPerception.Exponent())
}

func TestCalculateTaxes_NonPositiveAmount(t *testing.T) {
	taxes := CalculateTaxes(decimal.Zero, worksite.FiscalConditionRegistered, DocumentTypeInvoiceA)
	assert.True(t, taxes.IsZero())

	taxes = CalculateTaxes(decimal.NewFromInt(-100), worksite.FiscalConditionRegistered, DocumentTypeInvoiceA)
	assert.True(t, taxes.IsZero())
}

func TestCalculateTaxes_Deterministic(t *testing.T) {
	amount := decimal.RequireFromString("98765.43")

	first := CalculateTaxes(amount, worksite.FiscalConditionRegistered, DocumentTypeInvoiceA)
	second := CalculateTaxes(amount, worksite.FiscalConditionRegistered, DocumentTypeInvoiceA)

	assert.True(t, first.Total().Equal(second.Total()))
	assert.True(t, first.VATPerception.Equal(second.VATPerception))
}
