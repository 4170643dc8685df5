package service

import (
	"context"
	"time"

	"github.com/adboardhq/adboard/internal/api/dto"
	"github.com/adboardhq/adboard/internal/billing"
	"github.com/adboardhq/adboard/internal/cache"
	"github.com/adboardhq/adboard/internal/domain/asset"
	domainCampaign "github.com/adboardhq/adboard/internal/domain/campaign"
	"github.com/shopspring/decimal"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignResponse, error)
	GetCampaign(ctx context.Context, id string) (*dto.CampaignResponse, error)
	UpdateCampaign(ctx context.Context, id string, req *dto.UpdateCampaignRequest) (*dto.CampaignResponse, error)
	ListCampaigns(ctx context.Context) (*dto.ListCampaignsResponse, error)
	ListCampaignsByClient(ctx context.Context, clientID string) (*dto.ListCampaignsResponse, error)

	// UpdateDiscount sets the campaign's manual discount, clamped into
	// [0, gross], and invalidates the cached totals.
	UpdateDiscount(ctx context.Context, id string, req *dto.UpdateDiscountRequest) (*dto.CampaignResponse, error)

	// PreviewTotals computes the campaign totals and per-period amounts
	// without persisting anything.
	PreviewTotals(ctx context.Context, id string, req *dto.PreviewTotalsRequest) (*dto.CampaignTotalsResponse, error)
}

type campaignService struct {
	ServiceParams
}

func NewCampaignService(params ServiceParams) CampaignService {
	return &campaignService{ServiceParams: params}
}

func (s *campaignService) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The client must exist before a campaign can bill against it.
	if _, err := s.ClientRepo.Get(ctx, req.ClientID); err != nil {
		return nil, err
	}

	c := req.ToCampaign(ctx)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Infow("created campaign",
		"campaign_id", c.ID,
		"client_id", c.ClientID,
		"start_date", c.StartDate,
		"end_date", c.EndDate,
		"billing_cycle", c.BillingCycle,
	)
	return dto.NewCampaignResponse(c), nil
}

func (s *campaignService) GetCampaign(ctx context.Context, id string) (*dto.CampaignResponse, error) {
	c, err := s.CampaignRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCampaignResponse(c), nil
}

func (s *campaignService) UpdateCampaign(ctx context.Context, id string, req *dto.UpdateCampaignRequest) (*dto.CampaignResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.Touch(ctx)
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.invalidateTotalsCache(ctx, c.ID)
	return dto.NewCampaignResponse(c), nil
}

func (s *campaignService) ListCampaigns(ctx context.Context) (*dto.ListCampaignsResponse, error) {
	campaigns, err := s.CampaignRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return campaignsToListResponse(campaigns), nil
}

func (s *campaignService) ListCampaignsByClient(ctx context.Context, clientID string) (*dto.ListCampaignsResponse, error) {
	campaigns, err := s.CampaignRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return campaignsToListResponse(campaigns), nil
}

func campaignsToListResponse(campaigns []*domainCampaign.Campaign) *dto.ListCampaignsResponse {
	items := make([]*dto.CampaignResponse, len(campaigns))
	for i, c := range campaigns {
		items[i] = dto.NewCampaignResponse(c)
	}
	return &dto.ListCampaignsResponse{Items: items, Total: len(items)}
}

func (s *campaignService) UpdateDiscount(ctx context.Context, id string, req *dto.UpdateDiscountRequest) (*dto.CampaignResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assets, err := s.AssetRepo.ListByCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	totals, err := billing.CalculateCampaignTotals(c, assets, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	applied := billing.ClampAmount(req.DiscountAmount, decimal.Zero, totals.GrossAmount)
	if !applied.Equal(req.DiscountAmount) {
		s.Logger.Warnw("discount clamped to gross amount",
			"campaign_id", id,
			"requested", req.DiscountAmount,
			"applied", applied,
		)
	}

	c.ManualDiscountAmount = billing.RoundMoney(applied)
	c.ManualDiscountReason = req.Reason
	c.Touch(ctx)
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.invalidateTotalsCache(ctx, id)
	return dto.NewCampaignResponse(c), nil
}

func (s *campaignService) PreviewTotals(ctx context.Context, id string, req *dto.PreviewTotalsRequest) (*dto.CampaignTotalsResponse, error) {
	if req == nil {
		req = &dto.PreviewTotalsRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheKey := s.totalsCacheKey(c, req.DiscountOverride)
	if cached, found := s.Cache.Get(ctx, cacheKey); found {
		if resp, ok := cached.(*dto.CampaignTotalsResponse); ok {
			return resp, nil
		}
	}

	assets, err := s.AssetRepo.ListByCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	totals, err := billing.CalculateCampaignTotals(c, assets, req.DiscountOverride, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	resp := &dto.CampaignTotalsResponse{
		CampaignTotals: totals,
		PeriodAmounts:  buildPeriodPreviews(totals, assets),
	}
	s.Cache.Set(ctx, cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

// buildPeriodPreviews attaches the one-time charges to the first period
// that has not billed them yet, mirroring the monthly generation flow.
func buildPeriodPreviews(totals *billing.CampaignTotals, assets []*asset.CampaignAsset) []dto.PeriodPreview {
	pendingPrinting, pendingMounting := pendingOneTimeCharges(assets)
	scoped := *totals
	scoped.PrintingCost = pendingPrinting
	scoped.MountingCost = pendingMounting

	previews := make([]dto.PeriodPreview, 0, len(totals.Periods))
	chargesAttached := false
	for _, period := range totals.Periods {
		opts := billing.PeriodChargeOptions{}
		if !chargesAttached {
			opts.IncludePrinting = pendingPrinting.IsPositive()
			opts.IncludeMounting = pendingMounting.IsPositive()
			chargesAttached = true
		}
		previews = append(previews, dto.PeriodPreview{
			BillingPeriod: period,
			Amount:        billing.CalculatePeriodAmount(period, &scoped, opts),
		})
	}
	return previews
}

// pendingOneTimeCharges sums the one-time charges that the ledger has not
// billed yet. Unavailable per-area mounting charges contribute nothing.
func pendingOneTimeCharges(assets []*asset.CampaignAsset) (printing, mounting decimal.Decimal) {
	printing, mounting = decimal.Zero, decimal.Zero
	for _, a := range assets {
		pricing := a.Pricing.Resolve(a.AreaSqft)
		if !a.PrintingBilled {
			printing = printing.Add(billing.RoundMoney(pricing.PrintingCharge))
		}
		if !a.MountingBilled && !pricing.MountingUnavailable {
			mounting = mounting.Add(billing.RoundMoney(pricing.MountingCharge))
		}
	}
	return printing, mounting
}

func (s *campaignService) totalsCacheKey(c *domainCampaign.Campaign, override *decimal.Decimal) string {
	overridePart := "stored"
	if override != nil {
		overridePart = override.String()
	}
	return cache.Key(cache.PrefixCampaignTotals, c.ID, c.UpdatedAt.UTC().Format(time.RFC3339Nano), overridePart)
}

func (s *campaignService) invalidateTotalsCache(ctx context.Context, campaignID string) {
	s.Cache.DeleteByPrefix(ctx, cache.Key(cache.PrefixCampaignTotals, campaignID))
}
