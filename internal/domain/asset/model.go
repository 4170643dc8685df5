package asset

import (
	"time"

	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// CampaignAsset is one booked advertising site within a campaign. It carries
// its own booking window (defaulting to the campaign bounds), its pricing
// record, and the billing ledger fields that guard against double billing.
type CampaignAsset struct {
	ID         string           `json:"id"`
	CampaignID string           `json:"campaign_id"`
	SiteCode   string           `json:"site_code"`
	SiteName   string           `json:"site_name"`
	Location   string           `json:"location,omitempty"`
	AreaSqft   *decimal.Decimal `json:"area_sqft,omitempty"`

	// Booking window; nil bounds default to the campaign bounds.
	BookingStart *time.Time `json:"booking_start,omitempty"`
	BookingEnd   *time.Time `json:"booking_end,omitempty"`

	Pricing Pricing `json:"pricing"`

	// Billing ledger fields. InvoicedMonths records which month keys have
	// already been invoiced for this asset; the billed flags record whether
	// the one-time charges have been raised. Mutations are monotonic unless
	// an explicit administrative override is used.
	InvoicedMonths types.MonthKeySet `json:"invoiced_months"`
	PrintingBilled bool              `json:"printing_billed"`
	MountingBilled bool              `json:"mounting_billed"`

	types.BaseModel
}

func (a *CampaignAsset) Validate() error {
	if a.CampaignID == "" {
		return ierr.NewError("campaign id is required").
			WithHint("An asset must belong to a campaign").
			Mark(ierr.ErrValidation)
	}
	if a.SiteName == "" {
		return ierr.NewError("site name is required").
			WithHint("Please provide a site name").
			Mark(ierr.ErrValidation)
	}
	if a.BookingStart != nil && a.BookingEnd != nil && a.BookingEnd.Before(*a.BookingStart) {
		return ierr.NewError("invalid booking window").
			WithHint("Booking end date must not be before start date").
			Mark(ierr.ErrValidation)
	}
	if a.Pricing.NegotiatedMonthlyRate != nil && a.Pricing.NegotiatedMonthlyRate.IsNegative() {
		return ierr.NewError("invalid negotiated rate").
			WithHint("Rates must be non negative").
			Mark(ierr.ErrValidation)
	}
	if a.Pricing.CardRate != nil && a.Pricing.CardRate.IsNegative() {
		return ierr.NewError("invalid card rate").
			WithHint("Rates must be non negative").
			Mark(ierr.ErrValidation)
	}
	if a.Pricing.DailyRate != nil && a.Pricing.DailyRate.IsNegative() {
		return ierr.NewError("invalid daily rate").
			WithHint("Rates must be non negative").
			Mark(ierr.ErrValidation)
	}
	return a.Pricing.Validate()
}

// BillingWindow returns the asset's effective billing window: its booking
// window defaulted to and clamped inside the campaign bounds.
func (a *CampaignAsset) BillingWindow(campaignStart, campaignEnd time.Time) (start, end time.Time) {
	start = campaignStart
	end = campaignEnd
	if a.BookingStart != nil && a.BookingStart.After(start) {
		start = *a.BookingStart
	}
	if a.BookingEnd != nil && a.BookingEnd.Before(end) {
		end = *a.BookingEnd
	}
	return start, end
}

// IsChargeBilled reports the ledger state for a one-time charge.
func (a *CampaignAsset) IsChargeBilled(chargeType types.ChargeType) bool {
	switch chargeType {
	case types.ChargeTypePrinting:
		return a.PrintingBilled
	case types.ChargeTypeMounting:
		return a.MountingBilled
	default:
		return false
	}
}

// SetChargeBilled updates the ledger flag for a one-time charge.
func (a *CampaignAsset) SetChargeBilled(chargeType types.ChargeType, billed bool) {
	switch chargeType {
	case types.ChargeTypePrinting:
		a.PrintingBilled = billed
	case types.ChargeTypeMounting:
		a.MountingBilled = billed
	}
}
