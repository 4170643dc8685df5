package billing

import (
	"time"

	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/domain/campaign"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// UnavailableCharge records a charge that was excluded from an aggregate
// because its inputs were incomplete. Callers surface these as warnings
// instead of failing the whole computation.
type UnavailableCharge struct {
	AssetID    string           `json:"asset_id"`
	SiteName   string           `json:"site_name,omitempty"`
	ChargeType types.ChargeType `json:"charge_type"`
	Reason     string           `json:"reason"`
}

// CampaignTotals is the single source of truth for every campaign money
// figure. Both the preview endpoints and all three invoice flows read from
// it; no caller recomputes a total independently.
type CampaignTotals struct {
	DisplayCost    decimal.Decimal `json:"display_cost"`
	PrintingCost   decimal.Decimal `json:"printing_cost"`
	MountingCost   decimal.Decimal `json:"mounting_cost"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`

	// MonthlyDisplayRent is the sum of the assets' monthly-equivalent rates,
	// used by the period amount calculator as the full-month rent base.
	MonthlyDisplayRent decimal.Decimal `json:"monthly_display_rent"`

	TotalDurationDays int             `json:"total_duration_days"`
	TotalMonths       int             `json:"total_months"`
	AssetCount        int             `json:"asset_count"`
	Periods           []BillingPeriod `json:"periods"`

	UnavailableCharges []UnavailableCharge `json:"unavailable_charges,omitempty"`
}

// AssetCampaignRent prices one asset's rent across the whole campaign, using
// its billing mode over the asset's effective billing window.
func AssetCampaignRent(a *asset.CampaignAsset, campaignStart, campaignEnd time.Time) decimal.Decimal {
	windowStart, windowEnd := a.BillingWindow(campaignStart, campaignEnd)
	return assetDisplayRent(a.Pricing.Resolve(a.AreaSqft), windowStart, windowEnd)
}

// assetDisplayRent prices one asset's billing window using its billing mode
// under the 30-day reference month convention.
func assetDisplayRent(pricing asset.ResolvedPricing, windowStart, windowEnd time.Time) decimal.Decimal {
	spans := monthSpans(windowStart, windowEnd)
	if len(spans) == 0 {
		return decimal.Zero
	}

	switch pricing.BillingMode {
	case types.AssetBillingModeDaily:
		days := daysInclusive(truncateToDay(windowStart), truncateToDay(windowEnd))
		return RoundMoney(pricing.DailyRate.Mul(decimal.NewFromInt(int64(days))))
	case types.AssetBillingModeFullMonth:
		// Any overlap with a calendar month bills the full monthly rate.
		return RoundMoney(pricing.MonthlyRate.Mul(decimal.NewFromInt(int64(len(spans)))))
	default:
		rent := decimal.Zero
		for _, span := range spans {
			rent = rent.Add(pricing.MonthlyRate.Mul(proRataFactor(span)))
		}
		return RoundMoney(rent)
	}
}

// CalculateCampaignTotals aggregates every money figure for a campaign over
// its assets. discountOverride, when set, replaces the campaign's stored
// manual discount for this computation only; either way the applied discount
// is clamped into [0, gross]. now only affects period current-month flags.
func CalculateCampaignTotals(c *campaign.Campaign, assets []*asset.CampaignAsset, discountOverride *decimal.Decimal, now time.Time) (*CampaignTotals, error) {
	if c == nil {
		return nil, ierr.NewError("campaign is required").
			Mark(ierr.ErrValidation)
	}

	periods, err := CalculateBillingPeriods(c.StartDate, c.EndDate, c.BillingCycle, now)
	if err != nil {
		return nil, err
	}

	totals := &CampaignTotals{
		TaxRatePercent:    c.TaxRatePercent,
		TotalDurationDays: c.DurationDays(),
		TotalMonths:       len(monthSpans(c.StartDate, c.EndDate)),
		AssetCount:        len(assets),
		Periods:           periods,
		DisplayCost:       decimal.Zero,
		PrintingCost:      decimal.Zero,
		MountingCost:      decimal.Zero,
	}

	monthlyRent := decimal.Zero
	for _, a := range assets {
		pricing := a.Pricing.Resolve(a.AreaSqft)
		windowStart, windowEnd := a.BillingWindow(c.StartDate, c.EndDate)

		totals.DisplayCost = totals.DisplayCost.Add(assetDisplayRent(pricing, windowStart, windowEnd))
		totals.PrintingCost = totals.PrintingCost.Add(RoundMoney(pricing.PrintingCharge))

		if pricing.MountingUnavailable {
			totals.UnavailableCharges = append(totals.UnavailableCharges, UnavailableCharge{
				AssetID:    a.ID,
				SiteName:   a.SiteName,
				ChargeType: types.ChargeTypeMounting,
				Reason:     "per-area mounting charge requires a recorded asset area",
			})
		} else {
			totals.MountingCost = totals.MountingCost.Add(RoundMoney(pricing.MountingCharge))
		}

		if pricing.BillingMode == types.AssetBillingModeDaily {
			monthlyRent = monthlyRent.Add(pricing.DailyRate.Mul(decimal.NewFromInt(types.ReferenceMonthDays)))
		} else {
			monthlyRent = monthlyRent.Add(pricing.MonthlyRate)
		}
	}
	totals.MonthlyDisplayRent = RoundMoney(monthlyRent)

	totals.GrossAmount = totals.DisplayCost.Add(totals.PrintingCost).Add(totals.MountingCost)

	discount := c.ManualDiscountAmount
	if discountOverride != nil {
		discount = *discountOverride
	}
	totals.DiscountAmount = RoundMoney(ClampAmount(discount, decimal.Zero, totals.GrossAmount))

	totals.TaxableAmount = totals.GrossAmount.Sub(totals.DiscountAmount)
	totals.TaxAmount = RoundMoney(totals.TaxableAmount.Mul(c.TaxRatePercent).Div(decimal.NewFromInt(100)))
	totals.GrandTotal = MaxZero(totals.TaxableAmount.Add(totals.TaxAmount))

	return totals, nil
}
