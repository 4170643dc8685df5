package billing

import (
	"testing"

	"github.com/adboardhq/adboard/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCalculateAssetMonthCharge_Prorata(t *testing.T) {
	a := newTestAsset("30000")
	campStart, campEnd := date(2024, 1, 15), date(2024, 3, 10)

	jan := CalculateAssetMonthCharge(a, campStart, campEnd, types.MonthKey("2024-01"), AssetMonthChargeOptions{})
	assert.True(t, jan.Overlaps)
	assert.Equal(t, date(2024, 1, 15), jan.BillStart)
	assert.Equal(t, date(2024, 1, 31), jan.BillEnd)
	assert.Equal(t, 17, jan.BillableDays)
	assert.Equal(t, 31, jan.DaysInMonth)
	assert.Equal(t, "17000", jan.RentAmount.String())

	feb := CalculateAssetMonthCharge(a, campStart, campEnd, types.MonthKey("2024-02"), AssetMonthChargeOptions{})
	assert.Equal(t, 29, feb.BillableDays)
	assert.Equal(t, "30000", feb.RentAmount.String(), "full calendar month bills exactly the monthly rate")

	mar := CalculateAssetMonthCharge(a, campStart, campEnd, types.MonthKey("2024-03"), AssetMonthChargeOptions{})
	assert.Equal(t, 10, mar.BillableDays)
	assert.Equal(t, "10000", mar.RentAmount.String())
}

func TestCalculateAssetMonthCharge_NoOverlap(t *testing.T) {
	a := newTestAsset("30000")

	charge := CalculateAssetMonthCharge(a, date(2024, 1, 15), date(2024, 3, 10), types.MonthKey("2024-06"), AssetMonthChargeOptions{})
	assert.False(t, charge.Overlaps)
	assert.True(t, charge.RentAmount.IsZero())
	assert.True(t, charge.SubTotal().IsZero())
}

func TestCalculateAssetMonthCharge_ProrataCappedAtMonthlyRate(t *testing.T) {
	// A full 31-day January would price at rate*31/30 without the cap.
	a := newTestAsset("30000")
	bookingStart := date(2024, 1, 1)
	bookingEnd := date(2024, 1, 30)
	a.BookingStart = &bookingStart
	a.BookingEnd = &bookingEnd

	charge := CalculateAssetMonthCharge(a, date(2024, 1, 1), date(2024, 1, 31), types.MonthKey("2024-01"), AssetMonthChargeOptions{})
	assert.Equal(t, 30, charge.BillableDays)
	assert.Equal(t, "30000", charge.RentAmount.String())
}

func TestCalculateAssetMonthCharge_FullMonthMode(t *testing.T) {
	a := newTestAsset("30000")
	a.Pricing.BillingMode = types.AssetBillingModeFullMonth

	charge := CalculateAssetMonthCharge(a, date(2024, 3, 25), date(2024, 4, 5), types.MonthKey("2024-04"), AssetMonthChargeOptions{})
	assert.Equal(t, 5, charge.BillableDays)
	assert.Equal(t, "30000", charge.RentAmount.String(), "any overlap bills the full monthly rate")
}

func TestCalculateAssetMonthCharge_DailyMode(t *testing.T) {
	a := newTestAsset("30000")
	a.Pricing.BillingMode = types.AssetBillingModeDaily
	a.Pricing.DailyRate = decPtr("1500")

	charge := CalculateAssetMonthCharge(a, date(2024, 4, 1), date(2024, 4, 12), types.MonthKey("2024-04"), AssetMonthChargeOptions{})
	assert.Equal(t, 12, charge.BillableDays)
	assert.Equal(t, "18000", charge.RentAmount.String())
}

func TestCalculateAssetMonthCharge_OneTimeCharges(t *testing.T) {
	a := newTestAsset("30000")
	a.Pricing.PrintingCharge = dec("5000")
	a.Pricing.MountingCharge = dec("2500")

	opts := AssetMonthChargeOptions{IncludeOneTimeCharges: true}
	charge := CalculateAssetMonthCharge(a, date(2024, 2, 1), date(2024, 2, 29), types.MonthKey("2024-02"), opts)
	assert.Equal(t, "5000", charge.PrintingCharge.String())
	assert.Equal(t, "2500", charge.MountingCharge.String())
	assert.Equal(t, "37500", charge.SubTotal().String())
}

func TestCalculateAssetMonthCharge_BilledChargesSkipped(t *testing.T) {
	a := newTestAsset("30000")
	a.Pricing.PrintingCharge = dec("5000")
	a.Pricing.MountingCharge = dec("2500")
	a.PrintingBilled = true
	a.MountingBilled = true

	opts := AssetMonthChargeOptions{IncludeOneTimeCharges: true}
	charge := CalculateAssetMonthCharge(a, date(2024, 2, 1), date(2024, 2, 29), types.MonthKey("2024-02"), opts)
	assert.True(t, charge.PrintingCharge.IsZero())
	assert.True(t, charge.MountingCharge.IsZero())

	// The explicit override re-raises both charges.
	opts.RebillOneTimeCharges = true
	charge = CalculateAssetMonthCharge(a, date(2024, 2, 1), date(2024, 2, 29), types.MonthKey("2024-02"), opts)
	assert.Equal(t, "5000", charge.PrintingCharge.String())
	assert.Equal(t, "2500", charge.MountingCharge.String())
}

func TestCalculateAssetMonthCharge_MountingUnavailable(t *testing.T) {
	a := newTestAsset("30000")
	a.Pricing.MountingChargeMode = types.MountingChargeModePerArea
	a.Pricing.MountingRatePerSqft = dec("12")

	opts := AssetMonthChargeOptions{IncludeOneTimeCharges: true}
	charge := CalculateAssetMonthCharge(a, date(2024, 2, 1), date(2024, 2, 29), types.MonthKey("2024-02"), opts)
	assert.True(t, charge.MountingCharge.IsZero())
	assert.Len(t, charge.UnavailableCharges, 1)
	assert.Equal(t, types.ChargeTypeMounting, charge.UnavailableCharges[0].ChargeType)
	assert.Equal(t, "30000", charge.RentAmount.String(), "rent still bills when one charge is unavailable")
}

func TestCalculateAssetMonthCharge_AlreadyInvoiced(t *testing.T) {
	a := newTestAsset("30000")
	a.InvoicedMonths = a.InvoicedMonths.Add(types.MonthKey("2024-02"))

	charge := CalculateAssetMonthCharge(a, date(2024, 1, 15), date(2024, 3, 10), types.MonthKey("2024-02"), AssetMonthChargeOptions{})
	assert.True(t, charge.AlreadyInvoiced)

	charge = CalculateAssetMonthCharge(a, date(2024, 1, 15), date(2024, 3, 10), types.MonthKey("2024-03"), AssetMonthChargeOptions{})
	assert.False(t, charge.AlreadyInvoiced)
}
