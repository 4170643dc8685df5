package asset

import (
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// Pricing is the explicit per-asset pricing record. All optional fields are
// named and resolved once at the data boundary via Resolve; downstream
// billing code only ever sees a ResolvedPricing.
type Pricing struct {
	NegotiatedMonthlyRate *decimal.Decimal         `json:"negotiated_monthly_rate,omitempty"`
	CardRate              *decimal.Decimal         `json:"card_rate,omitempty"`
	DailyRate             *decimal.Decimal         `json:"daily_rate,omitempty"`
	BillingMode           types.AssetBillingMode   `json:"billing_mode"`
	PrintingCharge        decimal.Decimal          `json:"printing_charge"`
	MountingCharge        decimal.Decimal          `json:"mounting_charge"`
	MountingRatePerSqft   decimal.Decimal          `json:"mounting_rate_per_sqft"`
	MountingChargeMode    types.MountingChargeMode `json:"mounting_charge_mode"`
}

// ResolvedPricing carries the effective rates after defaulting.
// MountingUnavailable marks a per-area mounting charge that cannot be
// computed because the asset has no recorded area; that single charge is
// excluded from aggregates while everything else proceeds.
type ResolvedPricing struct {
	MonthlyRate         decimal.Decimal
	DailyRate           decimal.Decimal
	BillingMode         types.AssetBillingMode
	PrintingCharge      decimal.Decimal
	MountingCharge      decimal.Decimal
	MountingUnavailable bool
}

// Resolve applies the rate defaulting rules:
// monthly = negotiated ?? card ?? 0; daily = explicit ?? monthly/30;
// mounting = fixed amount, or rate*area for per-area mode.
func (p Pricing) Resolve(areaSqft *decimal.Decimal) ResolvedPricing {
	monthly := decimal.Zero
	if p.NegotiatedMonthlyRate != nil {
		monthly = *p.NegotiatedMonthlyRate
	} else if p.CardRate != nil {
		monthly = *p.CardRate
	}

	daily := monthly.Div(decimal.NewFromInt(types.ReferenceMonthDays))
	if p.DailyRate != nil {
		daily = *p.DailyRate
	}

	mode := p.BillingMode
	if mode == "" {
		mode = types.AssetBillingModeProrata30
	}

	resolved := ResolvedPricing{
		MonthlyRate:    monthly,
		DailyRate:      daily,
		BillingMode:    mode,
		PrintingCharge: p.PrintingCharge,
	}

	switch p.MountingChargeMode {
	case types.MountingChargeModePerArea:
		if areaSqft == nil || areaSqft.LessThanOrEqual(decimal.Zero) {
			resolved.MountingUnavailable = true
		} else {
			resolved.MountingCharge = p.MountingRatePerSqft.Mul(*areaSqft)
		}
	default:
		resolved.MountingCharge = p.MountingCharge
	}

	return resolved
}

func (p Pricing) Validate() error {
	if err := p.BillingMode.Validate(); err != nil && p.BillingMode != "" {
		return err
	}
	if p.MountingChargeMode != "" {
		if err := p.MountingChargeMode.Validate(); err != nil {
			return err
		}
	}
	return nil
}
