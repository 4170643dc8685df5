package billing

import (
	"time"

	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// AssetMonthChargeOptions controls the per-asset month billing pass.
// RebillOneTimeCharges is the explicit administrative override that lets an
// already billed printing or mounting charge be raised again.
type AssetMonthChargeOptions struct {
	IncludeOneTimeCharges bool
	RebillOneTimeCharges  bool
}

// AssetMonthCharge is the billing result for one asset in one target month.
// Overlaps reports whether the asset's billing window intersects the month
// at all; AlreadyInvoiced reports the ledger state for the month.
type AssetMonthCharge struct {
	AssetID  string         `json:"asset_id"`
	SiteName string         `json:"site_name,omitempty"`
	MonthKey types.MonthKey `json:"month_key"`

	Overlaps        bool `json:"overlaps"`
	AlreadyInvoiced bool `json:"already_invoiced"`

	BillStart    time.Time `json:"bill_start"`
	BillEnd      time.Time `json:"bill_end"`
	BillableDays int       `json:"billable_days"`
	DaysInMonth  int       `json:"days_in_month"`

	MonthlyRate    decimal.Decimal `json:"monthly_rate"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	RentAmount     decimal.Decimal `json:"rent_amount"`
	PrintingCharge decimal.Decimal `json:"printing_charge"`
	MountingCharge decimal.Decimal `json:"mounting_charge"`

	UnavailableCharges []UnavailableCharge `json:"unavailable_charges,omitempty"`
}

// SubTotal is rent plus whatever one-time charges this pass included.
func (c AssetMonthCharge) SubTotal() decimal.Decimal {
	return c.RentAmount.Add(c.PrintingCharge).Add(c.MountingCharge)
}

// CalculateAssetMonthCharge bills one asset for one target month. The
// billable range is the intersection of the asset's billing window (booking
// window clamped inside the campaign bounds) with the calendar month. Rent
// follows the asset's billing mode: PRORATA_30 bills rate*days/30 capped at
// the monthly rate, with a full calendar month billing exactly the rate;
// FULL_MONTH bills the full rate on any overlap; DAILY bills rate per
// billable day.
//
// One-time charges are included only when the ledger has not billed them
// yet, unless the rebill override is set. A per-area mounting charge with no
// recorded area is skipped and reported, never fatal.
func CalculateAssetMonthCharge(a *asset.CampaignAsset, campaignStart, campaignEnd time.Time, monthKey types.MonthKey, opts AssetMonthChargeOptions) AssetMonthCharge {
	charge := AssetMonthCharge{
		AssetID:         a.ID,
		SiteName:        a.SiteName,
		MonthKey:        monthKey,
		AlreadyInvoiced: a.InvoicedMonths.Contains(monthKey),
		DaysInMonth:     monthKey.DaysInMonth(),
		RentAmount:      decimal.Zero,
		PrintingCharge:  decimal.Zero,
		MountingCharge:  decimal.Zero,
	}

	windowStart, windowEnd := a.BillingWindow(campaignStart, campaignEnd)
	monthStart, monthEnd := monthKey.Bounds()

	billStart := truncateToDay(windowStart)
	if monthStart.After(billStart) {
		billStart = monthStart
	}
	billEnd := truncateToDay(windowEnd)
	if monthEnd.Before(billEnd) {
		billEnd = monthEnd
	}
	if billEnd.Before(billStart) {
		return charge
	}

	charge.Overlaps = true
	charge.BillStart = billStart
	charge.BillEnd = billEnd
	charge.BillableDays = daysInclusive(billStart, billEnd)

	pricing := a.Pricing.Resolve(a.AreaSqft)
	charge.MonthlyRate = pricing.MonthlyRate
	charge.DailyRate = pricing.DailyRate

	fullMonth := billStart.Equal(monthStart) && billEnd.Equal(monthEnd)
	days := decimal.NewFromInt(int64(charge.BillableDays))

	switch pricing.BillingMode {
	case types.AssetBillingModeDaily:
		charge.RentAmount = RoundMoney(pricing.DailyRate.Mul(days))
	case types.AssetBillingModeFullMonth:
		charge.RentAmount = RoundMoney(pricing.MonthlyRate)
	default:
		if fullMonth {
			charge.RentAmount = RoundMoney(pricing.MonthlyRate)
		} else {
			rent := pricing.MonthlyRate.Mul(days).Div(decimal.NewFromInt(types.ReferenceMonthDays))
			if rent.GreaterThan(pricing.MonthlyRate) {
				rent = pricing.MonthlyRate
			}
			charge.RentAmount = RoundMoney(rent)
		}
	}

	if !opts.IncludeOneTimeCharges {
		return charge
	}

	if !a.PrintingBilled || opts.RebillOneTimeCharges {
		charge.PrintingCharge = RoundMoney(pricing.PrintingCharge)
	}
	if !a.MountingBilled || opts.RebillOneTimeCharges {
		if pricing.MountingUnavailable {
			charge.UnavailableCharges = append(charge.UnavailableCharges, UnavailableCharge{
				AssetID:    a.ID,
				SiteName:   a.SiteName,
				ChargeType: types.ChargeTypeMounting,
				Reason:     "per-area mounting charge requires a recorded asset area",
			})
		} else {
			charge.MountingCharge = RoundMoney(pricing.MountingCharge)
		}
	}

	return charge
}
