package finance

import (
	"github.com/obrafin/backend/internal/domain/worksite"
	"github.com/shopspring/decimal"
)

// TaxBreakdown holds the perception and withholding amounts computed for a
// document at purchase time. All values are non-negative and rounded to
// two decimal places.
type TaxBreakdown struct {
	VATPerception        decimal.Decimal `json:"vat_perception"`
	VATWithholding       decimal.Decimal `json:"vat_withholding"`
	IIBBPerception       decimal.Decimal `json:"iibb_perception"`
	IncomeTaxWithholding decimal.Decimal `json:"income_tax_withholding"`
}

// IsZero reports whether no tax applies
func (t TaxBreakdown) IsZero() bool {
	return t.VATPerception.IsZero() && t.VATWithholding.IsZero() &&
		t.IIBBPerception.IsZero() && t.IncomeTaxWithholding.IsZero()
}

// Total returns the sum of all perception and withholding amounts
func (t TaxBreakdown) Total() decimal.Decimal {
	return t.VATPerception.Add(t.VATWithholding).Add(t.IIBBPerception).Add(t.IncomeTaxWithholding)
}

type taxRates struct {
	vatPerception        decimal.Decimal
	vatWithholding       decimal.Decimal
	iibbPerception       decimal.Decimal
	incomeTaxWithholding decimal.Decimal
}

func rate(pct string) decimal.Decimal {
	d, err := decimal.NewFromString(pct)
	if err != nil {
		panic("invalid tax rate literal: " + pct)
	}
	return d.Div(decimal.NewFromInt(100))
}

type rateKey struct {
	condition    worksite.FiscalCondition
	documentType DocumentType
}

// rateTable drives the whole engine. VAL vouchers and tickets never carry
// taxes; exempt suppliers pay none; the simplified regime only suffers the
// gross-income perception on its invoices.
var rateTable = map[rateKey]taxRates{
	{worksite.FiscalConditionRegistered, DocumentTypeInvoiceA}: {
		vatPerception:        rate("3"),
		vatWithholding:       rate("1"),
		iibbPerception:       rate("2.5"),
		incomeTaxWithholding: rate("2"),
	},
	{worksite.FiscalConditionRegistered, DocumentTypeInvoiceB}: {
		iibbPerception: rate("2.5"),
	},
	{worksite.FiscalConditionMonotributo, DocumentTypeInvoiceC}: {
		iibbPerception: rate("1.5"),
	},
}

// CalculateTaxes computes the perception and withholding amounts for an
// expense from the supplier's fiscal condition and the document type. The
// function is pure and deterministic: equal inputs always yield equal
// outputs.
func CalculateTaxes(amount decimal.Decimal, condition worksite.FiscalCondition, documentType DocumentType) TaxBreakdown {
	if amount.LessThanOrEqual(decimal.Zero) {
		return TaxBreakdown{
			VATPerception:        decimal.Zero,
			VATWithholding:       decimal.Zero,
			IIBBPerception:       decimal.Zero,
			IncomeTaxWithholding: decimal.Zero,
		}
	}

	rates, ok := rateTable[rateKey{condition, documentType}]
	if !ok {
		return TaxBreakdown{
			VATPerception:        decimal.Zero,
			VATWithholding:       decimal.Zero,
			IIBBPerception:       decimal.Zero,
			IncomeTaxWithholding: decimal.Zero,
		}
	}

	return TaxBreakdown{
		VATPerception:        amount.Mul(rates.vatPerception).Round(2),
		VATWithholding:       amount.Mul(rates.vatWithholding).Round(2),
		IIBBPerception:       amount.Mul(rates.iibbPerception).Round(2),
		IncomeTaxWithholding: amount.Mul(rates.incomeTaxWithholding).Round(2),
	}
}
