package testutil

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/asset"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/samber/lo"
)

// InMemoryAssetStore implements asset.Repository
type InMemoryAssetStore struct {
	*InMemoryStore[*asset.CampaignAsset]
}

func NewInMemoryAssetStore() *InMemoryAssetStore {
	return &InMemoryAssetStore{
		InMemoryStore: NewInMemoryStore[*asset.CampaignAsset](),
	}
}

func copyAsset(a *asset.CampaignAsset) *asset.CampaignAsset {
	if a == nil {
		return nil
	}
	out := *a
	out.InvoicedMonths = append(types.MonthKeySet{}, a.InvoicedMonths...)
	return &out
}

func (s *InMemoryAssetStore) Create(ctx context.Context, a *asset.CampaignAsset) error {
	if err := s.InMemoryStore.Create(ctx, a.ID, copyAsset(a)); err != nil {
		return ierr.WithError(err).
			WithHint("An asset with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryAssetStore) Get(ctx context.Context, id string) (*asset.CampaignAsset, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || a.TenantID != types.GetTenantID(ctx) || a.Status == types.StatusDeleted {
		return nil, ierr.NewError("asset not found").
			WithHintf("Asset with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyAsset(a), nil
}

func (s *InMemoryAssetStore) Update(ctx context.Context, a *asset.CampaignAsset) error {
	if err := s.InMemoryStore.Update(ctx, a.ID, copyAsset(a)); err != nil {
		return ierr.NewError("asset not found").
			WithHintf("Asset with ID %s was not found", a.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryAssetStore) ListByCampaign(ctx context.Context, campaignID string) ([]*asset.CampaignAsset, error) {
	filterFn := func(ctx context.Context, a *asset.CampaignAsset, _ interface{}) bool {
		return a.CampaignID == campaignID &&
			a.TenantID == types.GetTenantID(ctx) &&
			a.Status != types.StatusDeleted
	}
	sortFn := func(i, j *asset.CampaignAsset) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		return i.CreatedAt.Before(j.CreatedAt)
	}

	assets, err := s.InMemoryStore.List(ctx, nil, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(assets, func(a *asset.CampaignAsset, _ int) *asset.CampaignAsset {
		return copyAsset(a)
	}), nil
}
