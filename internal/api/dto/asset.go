package dto

import (
	"context"
	"time"

	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/adboardhq/adboard/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateAssetRequest struct {
	SiteCode     string           `json:"site_code,omitempty"`
	SiteName     string           `json:"site_name" validate:"required"`
	Location     string           `json:"location,omitempty"`
	AreaSqft     *decimal.Decimal `json:"area_sqft,omitempty"`
	BookingStart *time.Time       `json:"booking_start,omitempty"`
	BookingEnd   *time.Time       `json:"booking_end,omitempty"`

	NegotiatedMonthlyRate *decimal.Decimal         `json:"negotiated_monthly_rate,omitempty"`
	CardRate              *decimal.Decimal         `json:"card_rate,omitempty"`
	DailyRate             *decimal.Decimal         `json:"daily_rate,omitempty"`
	BillingMode           types.AssetBillingMode   `json:"billing_mode,omitempty"`
	PrintingCharge        decimal.Decimal          `json:"printing_charge"`
	MountingCharge        decimal.Decimal          `json:"mounting_charge"`
	MountingRatePerSqft   decimal.Decimal          `json:"mounting_rate_per_sqft"`
	MountingChargeMode    types.MountingChargeMode `json:"mounting_charge_mode,omitempty"`
}

func (r *CreateAssetRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingMode != "" {
		if err := r.BillingMode.Validate(); err != nil {
			return err
		}
	}
	if r.MountingChargeMode != "" {
		if err := r.MountingChargeMode.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *CreateAssetRequest) ToAsset(ctx context.Context, campaignID string) *asset.CampaignAsset {
	siteCode := r.SiteCode
	if siteCode == "" {
		siteCode = types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_SITE)
	}

	return &asset.CampaignAsset{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CAMPAIGN_ASSET),
		CampaignID:   campaignID,
		SiteCode:     siteCode,
		SiteName:     r.SiteName,
		Location:     r.Location,
		AreaSqft:     r.AreaSqft,
		BookingStart: r.BookingStart,
		BookingEnd:   r.BookingEnd,
		Pricing: asset.Pricing{
			NegotiatedMonthlyRate: r.NegotiatedMonthlyRate,
			CardRate:              r.CardRate,
			DailyRate:             r.DailyRate,
			BillingMode:           r.BillingMode,
			PrintingCharge:        r.PrintingCharge,
			MountingCharge:        r.MountingCharge,
			MountingRatePerSqft:   r.MountingRatePerSqft,
			MountingChargeMode:    r.MountingChargeMode,
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type UpdateAssetRequest struct {
	SiteCode     *string          `json:"site_code,omitempty"`
	SiteName     *string          `json:"site_name,omitempty"`
	Location     *string          `json:"location,omitempty"`
	AreaSqft     *decimal.Decimal `json:"area_sqft,omitempty"`
	BookingStart *time.Time       `json:"booking_start,omitempty"`
	BookingEnd   *time.Time       `json:"booking_end,omitempty"`

	NegotiatedMonthlyRate *decimal.Decimal          `json:"negotiated_monthly_rate,omitempty"`
	CardRate              *decimal.Decimal          `json:"card_rate,omitempty"`
	DailyRate             *decimal.Decimal          `json:"daily_rate,omitempty"`
	BillingMode           *types.AssetBillingMode   `json:"billing_mode,omitempty"`
	PrintingCharge        *decimal.Decimal          `json:"printing_charge,omitempty"`
	MountingCharge        *decimal.Decimal          `json:"mounting_charge,omitempty"`
	MountingRatePerSqft   *decimal.Decimal          `json:"mounting_rate_per_sqft,omitempty"`
	MountingChargeMode    *types.MountingChargeMode `json:"mounting_charge_mode,omitempty"`
}

func (r *UpdateAssetRequest) Validate() error {
	if r.BillingMode != nil {
		if err := r.BillingMode.Validate(); err != nil {
			return err
		}
	}
	if r.MountingChargeMode != nil {
		if err := r.MountingChargeMode.Validate(); err != nil {
			return err
		}
	}
	return validator.ValidateRequest(r)
}

func (r *UpdateAssetRequest) Apply(a *asset.CampaignAsset) {
	if r.SiteCode != nil {
		a.SiteCode = *r.SiteCode
	}
	if r.SiteName != nil {
		a.SiteName = *r.SiteName
	}
	if r.Location != nil {
		a.Location = *r.Location
	}
	if r.AreaSqft != nil {
		a.AreaSqft = r.AreaSqft
	}
	if r.BookingStart != nil {
		a.BookingStart = r.BookingStart
	}
	if r.BookingEnd != nil {
		a.BookingEnd = r.BookingEnd
	}
	if r.NegotiatedMonthlyRate != nil {
		a.Pricing.NegotiatedMonthlyRate = r.NegotiatedMonthlyRate
	}
	if r.CardRate != nil {
		a.Pricing.CardRate = r.CardRate
	}
	if r.DailyRate != nil {
		a.Pricing.DailyRate = r.DailyRate
	}
	if r.BillingMode != nil {
		a.Pricing.BillingMode = *r.BillingMode
	}
	if r.PrintingCharge != nil {
		a.Pricing.PrintingCharge = *r.PrintingCharge
	}
	if r.MountingCharge != nil {
		a.Pricing.MountingCharge = *r.MountingCharge
	}
	if r.MountingRatePerSqft != nil {
		a.Pricing.MountingRatePerSqft = *r.MountingRatePerSqft
	}
	if r.MountingChargeMode != nil {
		a.Pricing.MountingChargeMode = *r.MountingChargeMode
	}
}

type AssetResponse struct {
	*asset.CampaignAsset
}

func NewAssetResponse(a *asset.CampaignAsset) *AssetResponse {
	return &AssetResponse{CampaignAsset: a}
}

type ListAssetsResponse struct {
	Items []*AssetResponse `json:"items"`
	Total int              `json:"total"`
}

// LedgerOverrideRequest is the explicit administrative override for the
// billing ledger: unmark an invoiced month or reset a one-time charge flag.
// Every use is logged with the operator identity.
type LedgerOverrideRequest struct {
	MonthKey   *types.MonthKey   `json:"month_key,omitempty"`
	ChargeType *types.ChargeType `json:"charge_type,omitempty"`
	Reason     string            `json:"reason" validate:"required"`
}

func (r *LedgerOverrideRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.MonthKey != nil {
		if err := r.MonthKey.Validate(); err != nil {
			return err
		}
	}
	if r.ChargeType != nil {
		if err := r.ChargeType.Validate(); err != nil {
			return err
		}
	}
	return nil
}
