package billing

import (
	"testing"

	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePeriodAmount_TwoAndAHalfMonths(t *testing.T) {
	c := newTestCampaign(date(2024, 1, 15), date(2024, 3, 10))
	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{newTestAsset("30000")}, nil, date(2024, 1, 15))
	require.NoError(t, err)
	require.Len(t, totals.Periods, 3)

	jan := CalculatePeriodAmount(totals.Periods[0], totals, PeriodChargeOptions{})
	assert.Equal(t, "17000", jan.BaseRent.String())
	assert.Equal(t, "17000", jan.SubTotal.String())
	assert.Equal(t, "3060", jan.TaxAmount.String())
	assert.Equal(t, "20060", jan.Total.String())

	feb := CalculatePeriodAmount(totals.Periods[1], totals, PeriodChargeOptions{})
	assert.Equal(t, "30000", feb.BaseRent.String())
	assert.Equal(t, "35400", feb.Total.String())

	mar := CalculatePeriodAmount(totals.Periods[2], totals, PeriodChargeOptions{})
	assert.Equal(t, "10000", mar.BaseRent.String())
	assert.Equal(t, "11800", mar.Total.String())

	// Period base rents reassemble the campaign display cost.
	sum := jan.BaseRent.Add(feb.BaseRent).Add(mar.BaseRent)
	assert.Equal(t, totals.DisplayCost.String(), sum.String())
}

func TestCalculatePeriodAmount_OneTimeChargesOnFirstPeriodOnly(t *testing.T) {
	c := newTestCampaign(date(2024, 1, 15), date(2024, 3, 10))
	a := newTestAsset("30000")
	a.Pricing.PrintingCharge = dec("5000")
	a.Pricing.MountingCharge = dec("2500")
	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 1, 15))
	require.NoError(t, err)

	first := CalculatePeriodAmount(totals.Periods[0], totals, PeriodChargeOptions{IncludePrinting: true, IncludeMounting: true})
	assert.Equal(t, "5000", first.PrintingCharge.String())
	assert.Equal(t, "2500", first.MountingCharge.String())
	assert.Equal(t, "24500", first.SubTotal.String())

	later := CalculatePeriodAmount(totals.Periods[1], totals, PeriodChargeOptions{})
	assert.True(t, later.PrintingCharge.IsZero())
	assert.True(t, later.MountingCharge.IsZero())
}

func TestCalculatePeriodAmount_DiscountApportionedByFactorWeight(t *testing.T) {
	c := newTestCampaign(date(2024, 1, 15), date(2024, 3, 10))
	c.ManualDiscountAmount = dec("5700")
	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{newTestAsset("30000")}, nil, date(2024, 1, 15))
	require.NoError(t, err)

	// Factor sum is 1.9; shares are 5700 * factor / 1.9.
	jan := CalculatePeriodAmount(totals.Periods[0], totals, PeriodChargeOptions{})
	assert.Equal(t, "1700", jan.DiscountShare.String())
	assert.Equal(t, "15300", jan.TaxableAmount.String())

	feb := CalculatePeriodAmount(totals.Periods[1], totals, PeriodChargeOptions{})
	assert.Equal(t, "3000", feb.DiscountShare.String())

	mar := CalculatePeriodAmount(totals.Periods[2], totals, PeriodChargeOptions{})
	assert.Equal(t, "1000", mar.DiscountShare.String())
}

func TestCalculatePeriodAmount_DiscountShareCappedAtSubTotal(t *testing.T) {
	c := newTestCampaign(date(2024, 1, 15), date(2024, 3, 10))
	a := newTestAsset("30000")
	a.Pricing.PrintingCharge = dec("25000")
	c.ManualDiscountAmount = dec("80000")
	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{a}, nil, date(2024, 1, 15))
	require.NoError(t, err)

	// A heavy discount concentrated on a short period cannot push it negative.
	mar := CalculatePeriodAmount(totals.Periods[2], totals, PeriodChargeOptions{})
	assert.True(t, mar.DiscountShare.LessThanOrEqual(mar.SubTotal))
	assert.False(t, mar.TaxableAmount.IsNegative())
	assert.False(t, mar.Total.IsNegative())
}

func TestCalculatePeriodAmount_ZeroDiscount(t *testing.T) {
	c := newTestCampaign(date(2024, 4, 1), date(2024, 4, 30))
	totals, err := CalculateCampaignTotals(c, []*asset.CampaignAsset{newTestAsset("30000")}, nil, date(2024, 4, 1))
	require.NoError(t, err)

	amount := CalculatePeriodAmount(totals.Periods[0], totals, PeriodChargeOptions{})
	assert.True(t, amount.DiscountShare.IsZero())
	assert.Equal(t, amount.SubTotal.String(), amount.TaxableAmount.String())
}
