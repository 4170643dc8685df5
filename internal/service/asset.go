package service

import (
	"context"

	"github.com/adboardhq/adboard/internal/api/dto"
	"github.com/adboardhq/adboard/internal/cache"
)

type AssetService interface {
	CreateAsset(ctx context.Context, campaignID string, req *dto.CreateAssetRequest) (*dto.AssetResponse, error)
	GetAsset(ctx context.Context, id string) (*dto.AssetResponse, error)
	UpdateAsset(ctx context.Context, id string, req *dto.UpdateAssetRequest) (*dto.AssetResponse, error)
	ListAssetsByCampaign(ctx context.Context, campaignID string) (*dto.ListAssetsResponse, error)
}

type assetService struct {
	ServiceParams
}

func NewAssetService(params ServiceParams) AssetService {
	return &assetService{ServiceParams: params}
}

func (s *assetService) CreateAsset(ctx context.Context, campaignID string, req *dto.CreateAssetRequest) (*dto.AssetResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CampaignRepo.Get(ctx, campaignID); err != nil {
		return nil, err
	}

	a := req.ToAsset(ctx, campaignID)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.AssetRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.Cache.DeleteByPrefix(ctx, cache.Key(cache.PrefixCampaignTotals, campaignID))
	s.Logger.Infow("created campaign asset",
		"asset_id", a.ID,
		"campaign_id", campaignID,
		"site_code", a.SiteCode,
	)
	return dto.NewAssetResponse(a), nil
}

func (s *assetService) GetAsset(ctx context.Context, id string) (*dto.AssetResponse, error) {
	a, err := s.AssetRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewAssetResponse(a), nil
}

func (s *assetService) UpdateAsset(ctx context.Context, id string, req *dto.UpdateAssetRequest) (*dto.AssetResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.AssetRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(a)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.AssetRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.Cache.DeleteByPrefix(ctx, cache.Key(cache.PrefixCampaignTotals, a.CampaignID))
	return dto.NewAssetResponse(a), nil
}

func (s *assetService) ListAssetsByCampaign(ctx context.Context, campaignID string) (*dto.ListAssetsResponse, error) {
	assets, err := s.AssetRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AssetResponse, len(assets))
	for i, a := range assets {
		items[i] = dto.NewAssetResponse(a)
	}
	return &dto.ListAssetsResponse{Items: items, Total: len(items)}, nil
}
