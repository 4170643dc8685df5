package billing

import (
	"strings"

	"github.com/adboardhq/adboard/internal/domain/invoice"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// ResolveGSTMode picks the tax presentation from the company's and the
// client's GST state codes. Same state (or a client with no recorded code)
// bills intra-state with two half-rate components; a differing code bills
// inter-state with one full-rate component. Codes are compared after
// trimming and case folding.
func ResolveGSTMode(companyStateCode, clientStateCode string) types.GSTMode {
	company := strings.ToUpper(strings.TrimSpace(companyStateCode))
	client := strings.ToUpper(strings.TrimSpace(clientStateCode))
	if client == "" || client == company {
		return types.GSTModeDualTax
	}
	return types.GSTModeSingleTax
}

// SplitDualTax splits a total tax amount into the two half-rate components.
// The first component is round(total/2, 2) and the second is the remainder,
// so any single-unit rounding residue lands in the first component and the
// two always sum exactly to the total.
func SplitDualTax(totalTax decimal.Decimal) (first, second decimal.Decimal) {
	first = RoundMoney(totalTax.Div(decimal.NewFromInt(2)))
	second = totalTax.Sub(first)
	return first, second
}

// BuildTaxBreakup assembles the invoice tax breakup for an already computed
// tax amount. Dual mode yields CGST + SGST summing exactly to the total;
// single mode yields IGST equal to the total.
func BuildTaxBreakup(mode types.GSTMode, ratePercent, taxAmount decimal.Decimal) invoice.TaxBreakup {
	breakup := invoice.TaxBreakup{
		Mode:        mode,
		RatePercent: ratePercent,
		TotalTax:    taxAmount,
	}
	if mode == types.GSTModeDualTax {
		breakup.CGST, breakup.SGST = SplitDualTax(taxAmount)
	} else {
		breakup.IGST = taxAmount
	}
	return breakup
}
