package dto

import (
	"context"
	"time"

	"github.com/adboardhq/adboard/internal/billing"
	"github.com/adboardhq/adboard/internal/domain/campaign"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/adboardhq/adboard/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateCampaignRequest struct {
	ClientID             string             `json:"client_id" validate:"required"`
	Name                 string             `json:"name" validate:"required"`
	StartDate            time.Time          `json:"start_date" validate:"required"`
	EndDate              time.Time          `json:"end_date" validate:"required"`
	TaxRatePercent       decimal.Decimal    `json:"tax_rate_percent"`
	BillingCycle         types.BillingCycle `json:"billing_cycle" validate:"required"`
	ManualDiscountAmount decimal.Decimal    `json:"manual_discount_amount"`
	ManualDiscountReason string             `json:"manual_discount_reason,omitempty"`
	Notes                string             `json:"notes,omitempty"`
}

func (r *CreateCampaignRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingCycle.Validate()
}

func (r *CreateCampaignRequest) ToCampaign(ctx context.Context) *campaign.Campaign {
	return &campaign.Campaign{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CAMPAIGN),
		ClientID:             r.ClientID,
		Name:                 r.Name,
		StartDate:            r.StartDate.UTC(),
		EndDate:              r.EndDate.UTC(),
		TaxRatePercent:       r.TaxRatePercent,
		BillingCycle:         r.BillingCycle,
		ManualDiscountAmount: r.ManualDiscountAmount,
		ManualDiscountReason: r.ManualDiscountReason,
		Notes:                r.Notes,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
}

type UpdateCampaignRequest struct {
	Name           *string             `json:"name,omitempty"`
	StartDate      *time.Time          `json:"start_date,omitempty"`
	EndDate        *time.Time          `json:"end_date,omitempty"`
	TaxRatePercent *decimal.Decimal    `json:"tax_rate_percent,omitempty"`
	BillingCycle   *types.BillingCycle `json:"billing_cycle,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
}

func (r *UpdateCampaignRequest) Validate() error {
	if r.BillingCycle != nil {
		if err := r.BillingCycle.Validate(); err != nil {
			return err
		}
	}
	return validator.ValidateRequest(r)
}

func (r *UpdateCampaignRequest) Apply(c *campaign.Campaign) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.StartDate != nil {
		c.StartDate = r.StartDate.UTC()
	}
	if r.EndDate != nil {
		c.EndDate = r.EndDate.UTC()
	}
	if r.TaxRatePercent != nil {
		c.TaxRatePercent = *r.TaxRatePercent
	}
	if r.BillingCycle != nil {
		c.BillingCycle = *r.BillingCycle
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
}

// UpdateDiscountRequest sets the campaign's manual discount. The service
// clamps the amount into [0, gross] before persisting.
type UpdateDiscountRequest struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Reason         string          `json:"reason,omitempty"`
}

func (r *UpdateDiscountRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CampaignResponse struct {
	*campaign.Campaign
}

func NewCampaignResponse(c *campaign.Campaign) *CampaignResponse {
	return &CampaignResponse{Campaign: c}
}

type ListCampaignsResponse struct {
	Items []*CampaignResponse `json:"items"`
	Total int                 `json:"total"`
}

// PreviewTotalsRequest optionally overrides the stored manual discount for
// a what-if computation; nothing is persisted.
type PreviewTotalsRequest struct {
	DiscountOverride *decimal.Decimal `json:"discount_override,omitempty"`
}

func (r *PreviewTotalsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PeriodPreview pairs one billing period with its computed amounts.
type PeriodPreview struct {
	billing.BillingPeriod
	Amount billing.PeriodAmount `json:"amount"`
}

// CampaignTotalsResponse is the preview payload: the campaign totals plus
// the per-period breakdown.
type CampaignTotalsResponse struct {
	*billing.CampaignTotals
	PeriodAmounts []PeriodPreview `json:"period_amounts"`
}
