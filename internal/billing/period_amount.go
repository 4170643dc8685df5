package billing

import (
	"github.com/shopspring/decimal"
)

// PeriodAmount is the money breakdown for one billing period of a monthly
// invoice run.
type PeriodAmount struct {
	BaseRent       decimal.Decimal `json:"base_rent"`
	PrintingCharge decimal.Decimal `json:"printing_charge"`
	MountingCharge decimal.Decimal `json:"mounting_charge"`
	SubTotal       decimal.Decimal `json:"sub_total"`
	DiscountShare  decimal.Decimal `json:"discount_share"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// PeriodChargeOptions controls whether the campaign's one-time charges are
// folded into this period. The orchestrator includes them only on the first
// period that has not yet billed them.
type PeriodChargeOptions struct {
	IncludePrinting bool
	IncludeMounting bool
}

// CalculatePeriodAmount prices one billing period from the campaign totals.
// Base rent is the monthly display rent scaled by the period's pro-rata
// factor. The campaign discount is apportioned across periods by factor
// weight, capped so a period's discount share never exceeds its subtotal.
// The total is floored at zero.
func CalculatePeriodAmount(period BillingPeriod, totals *CampaignTotals, opts PeriodChargeOptions) PeriodAmount {
	amount := PeriodAmount{
		BaseRent: RoundMoney(totals.MonthlyDisplayRent.Mul(period.ProRataFactor)),
	}
	if opts.IncludePrinting {
		amount.PrintingCharge = totals.PrintingCost
	}
	if opts.IncludeMounting {
		amount.MountingCharge = totals.MountingCost
	}
	amount.SubTotal = amount.BaseRent.Add(amount.PrintingCharge).Add(amount.MountingCharge)

	factorSum := SumFactors(totals.Periods)
	if totals.DiscountAmount.IsPositive() && factorSum.IsPositive() {
		share := RoundMoney(totals.DiscountAmount.Mul(period.ProRataFactor).Div(factorSum))
		amount.DiscountShare = ClampAmount(share, decimal.Zero, amount.SubTotal)
	}

	amount.TaxableAmount = amount.SubTotal.Sub(amount.DiscountShare)
	amount.TaxAmount = RoundMoney(amount.TaxableAmount.Mul(totals.TaxRatePercent).Div(decimal.NewFromInt(100)))
	amount.Total = MaxZero(amount.TaxableAmount.Add(amount.TaxAmount))
	return amount
}
