package campaign

import (
	"strings"
	"time"

	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// Campaign represents one advertising booking for a client: a date range
// over a set of assets, with a tax rate and an optional manual discount.
type Campaign struct {
	ID                   string             `json:"id"`
	ClientID             string             `json:"client_id"`
	Name                 string             `json:"name"`
	StartDate            time.Time          `json:"start_date"`
	EndDate              time.Time          `json:"end_date"`
	TaxRatePercent       decimal.Decimal    `json:"tax_rate_percent"`
	BillingCycle         types.BillingCycle `json:"billing_cycle"`
	ManualDiscountAmount decimal.Decimal    `json:"manual_discount_amount"`
	ManualDiscountReason string             `json:"manual_discount_reason,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	types.BaseModel
}

func (c *Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ierr.NewError("campaign name is required").
			WithHint("Please provide a campaign name").
			Mark(ierr.ErrValidation)
	}
	if c.ClientID == "" {
		return ierr.NewError("client id is required").
			WithHint("A campaign must belong to a client").
			Mark(ierr.ErrValidation)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return ierr.NewError("campaign dates are required").
			WithHint("Please provide campaign start and end dates").
			Mark(ierr.ErrValidation)
	}
	if c.EndDate.Before(c.StartDate) {
		return ierr.NewError("invalid campaign dates").
			WithHint("Campaign end date must not be before start date").
			Mark(ierr.ErrValidation)
	}
	if c.TaxRatePercent.IsNegative() {
		return ierr.NewError("invalid tax rate").
			WithHint("Tax rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	if c.ManualDiscountAmount.IsNegative() {
		return ierr.NewError("invalid discount").
			WithHint("Discount amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	if err := c.BillingCycle.Validate(); err != nil {
		return err
	}
	return nil
}

// DurationDays returns the campaign length in days, both bounds inclusive.
func (c *Campaign) DurationDays() int {
	return int(c.EndDate.Sub(c.StartDate).Hours()/24) + 1
}
