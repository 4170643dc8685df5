package asset

import (
	"context"
)

// Repository defines the interface for campaign asset persistence operations.
// The billing ledger fields live on the asset record, so ledger updates go
// through Update here.
type Repository interface {
	Create(ctx context.Context, asset *CampaignAsset) error
	Get(ctx context.Context, id string) (*CampaignAsset, error)
	Update(ctx context.Context, asset *CampaignAsset) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*CampaignAsset, error)
}
