package billing

import (
	"testing"
	"time"

	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/domain/campaign"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestCampaign(start, end time.Time) *campaign.Campaign {
	return &campaign.Campaign{
		ID:             "camp_test",
		ClientID:       "clnt_test",
		Name:           "Metro Station Takeover",
		StartDate:      start,
		EndDate:        end,
		TaxRatePercent: dec("18"),
		BillingCycle:   types.BillingCycleMonthly,
	}
}

func newTestAsset(monthlyRate string) *asset.CampaignAsset {
	return &asset.CampaignAsset{
		ID:         "ast_test",
		CampaignID: "camp_test",
		SiteCode:   "ST-MUM01",
		SiteName:   "Western Express Highway Hoarding",
		Pricing: asset.Pricing{
			NegotiatedMonthlyRate: decPtr(monthlyRate),
			BillingMode:           types.AssetBillingModeProrata30,
		},
	}
}

func TestCalculateCampaignTotals_TwoAndAHalfMonths(t *testing.T) {
	// Jan 15 to Mar 10 at 30000/month: 17 days + full February + 10 days.
	c := newTestCampaign(date(2024, 1, 15), date(2024, 3, 10))
	assets := []*asset.CampaignAsset{newTestAsset("30000")}

	totals, err := CalculateCampaignTotals(c, assets, nil, date(2024, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, "57000", totals.DisplayCost.String())
	assert.Equal(t, "57000", totals.GrossAmount.String())
	assert.Equal(t, "57000", totals.TaxableAmount.String())
	assert.Equal(t, "10260", totals.TaxAmount.String())
	assert.Equal(t, "67260", totals.GrandTotal.String())
	assert.Equal(t, "30000", totals.MonthlyDisplayRent.String())
	assert.Equal(t, 56, totals.TotalDurationDays)
	assert.Equal(t, 3, totals.TotalMonths)
	assert.Equal(t, 1, totals.AssetCount)
	require.Len(t, totals.Periods, 3)
	assert.Empty(t, totals.UnavailableCharges)
}

func TestCalculateCampaignTotals_OneTimeCharges(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	a := newTestAsset("30000")
	a.Pricing.PrintingCharge = dec("5000")
	a.Pricing.MountingCharge = dec("2500")

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 4, 1))
	require.NoError(t, err)

	assert.Equal(t, "30000", totals.DisplayCost.String())
	assert.Equal(t, "5000", totals.PrintingCost.String())
	assert.Equal(t, "2500", totals.MountingCost.String())
	assert.Equal(t, "37500", totals.GrossAmount.String())
	assert.Equal(t, "44250", totals.GrandTotal.String())
}

func TestCalculateCampaignTotals_DiscountClamped(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	c.ManualDiscountAmount = dec("50000")

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{newTestAsset("30000")}, nil, date(2024, 4, 1))
	require.NoError(t, err)

	// Discount exceeding gross is clamped; totals never go negative.
	assert.Equal(t, "30000", totals.DiscountAmount.String())
	assert.Equal(t, "0", totals.TaxableAmount.String())
	assert.Equal(t, "0", totals.TaxAmount.String())
	assert.Equal(t, "0", totals.GrandTotal.String())
}

func TestCalculateCampaignTotals_DiscountOverride(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	c.ManualDiscountAmount = dec("1000")

	override := dec("3000")
	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{newTestAsset("30000")}, &override, date(2024, 4, 1))
	require.NoError(t, err)

	assert.Equal(t, "3000", totals.DiscountAmount.String())
	assert.Equal(t, "27000", totals.TaxableAmount.String())
}

func TestCalculateCampaignTotals_CardRateFallback(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	a := newTestAsset("30000")
	a.Pricing.NegotiatedMonthlyRate = nil
	a.Pricing.CardRate = decPtr("45000")

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, "45000", totals.DisplayCost.String())
}

func TestCalculateCampaignTotals_MountingUnavailable(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	a := newTestAsset("30000")
	a.Pricing.MountingChargeMode = types.MountingChargeModePerArea
	a.Pricing.MountingRatePerSqft = dec("12")

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 4, 1))
	require.NoError(t, err)

	// Missing area excludes the mounting charge but the rest proceeds.
	assert.Equal(t, "0", totals.MountingCost.String())
	assert.Equal(t, "30000", totals.GrossAmount.String())
	require.Len(t, totals.UnavailableCharges, 1)
	assert.Equal(t, types.ChargeTypeMounting, totals.UnavailableCharges[0].ChargeType)
	assert.Equal(t, "ast_test", totals.UnavailableCharges[0].AssetID)
}

func TestCalculateCampaignTotals_PerAreaMounting(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	a := newTestAsset("30000")
	a.AreaSqft = decPtr("400")
	a.Pricing.MountingChargeMode = types.MountingChargeModePerArea
	a.Pricing.MountingRatePerSqft = dec("12.50")

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, "5000", totals.MountingCost.String())
	assert.Empty(t, totals.UnavailableCharges)
}

func TestCalculateCampaignTotals_DailyMode(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 10))
	a := newTestAsset("30000")
	a.Pricing.BillingMode = types.AssetBillingModeDaily
	a.Pricing.DailyRate = decPtr("1200")

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, "12000", totals.DisplayCost.String())
	// Daily assets contribute dailyRate*30 to the monthly rent base.
	assert.Equal(t, "36000", totals.MonthlyDisplayRent.String())
}

func TestCalculateCampaignTotals_FullMonthMode(t *testing.T) {
	// Mar 25 to Apr 5 touches two months; FULL_MONTH bills both in full.
	c := newTestCampaign(date(2024, 3, 25), date(2024, 4, 5))
	a := newTestAsset("30000")
	a.Pricing.BillingMode = types.AssetBillingModeFullMonth

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 3, 25))
	require.NoError(t, err)
	assert.Equal(t, "60000", totals.DisplayCost.String())
}

func TestCalculateCampaignTotals_AssetBookingWindow(t *testing.T) {
	c := newTestCampaign(date(2024, 1, 1), date(2024, 3, 31))
	a := newTestAsset("30000")
	bookingStart := date(2024, 2, 1)
	bookingEnd := date(2024, 2, 29)
	a.BookingStart = &bookingStart
	a.BookingEnd = &bookingEnd

	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 1, 1))
	require.NoError(t, err)
	// Only the asset's booked month bills rent.
	assert.Equal(t, "30000", totals.DisplayCost.String())
}

func TestCalculateCampaignTotals_NoAssets(t *testing.T) {
	c := newTestCampaign(date(2024, 1, 15), date(2024, 3, 10))

	totals, err := CalculateCampaignTotals(c, nil, nil, date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "0", totals.GrossAmount.String())
	assert.Equal(t, "0", totals.GrandTotal.String())
	assert.Equal(t, 0, totals.AssetCount)
}
