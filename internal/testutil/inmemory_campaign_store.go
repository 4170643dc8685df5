package testutil

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/campaign"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/samber/lo"
)

// InMemoryCampaignStore implements campaign.Repository
type InMemoryCampaignStore struct {
	*InMemoryStore[*campaign.Campaign]
}

func NewInMemoryCampaignStore() *InMemoryCampaignStore {
	return &InMemoryCampaignStore{
		InMemoryStore: NewInMemoryStore[*campaign.Campaign](),
	}
}

func copyCampaign(c *campaign.Campaign) *campaign.Campaign {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func (s *InMemoryCampaignStore) Create(ctx context.Context, c *campaign.Campaign) error {
	if err := s.InMemoryStore.Create(ctx, c.ID, copyCampaign(c)); err != nil {
		return ierr.WithError(err).
			WithHint("A campaign with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCampaignStore) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || c.TenantID != types.GetTenantID(ctx) || c.Status == types.StatusDeleted {
		return nil, ierr.NewError("campaign not found").
			WithHintf("Campaign with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyCampaign(c), nil
}

func (s *InMemoryCampaignStore) Update(ctx context.Context, c *campaign.Campaign) error {
	if err := s.InMemoryStore.Update(ctx, c.ID, copyCampaign(c)); err != nil {
		return ierr.NewError("campaign not found").
			WithHintf("Campaign with ID %s was not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryCampaignStore) List(ctx context.Context) ([]*campaign.Campaign, error) {
	return s.list(ctx, func(c *campaign.Campaign) bool { return true })
}

func (s *InMemoryCampaignStore) ListByClient(ctx context.Context, clientID string) ([]*campaign.Campaign, error) {
	return s.list(ctx, func(c *campaign.Campaign) bool { return c.ClientID == clientID })
}

func (s *InMemoryCampaignStore) list(ctx context.Context, match func(*campaign.Campaign) bool) ([]*campaign.Campaign, error) {
	filterFn := func(ctx context.Context, c *campaign.Campaign, _ interface{}) bool {
		return c.TenantID == types.GetTenantID(ctx) && c.Status != types.StatusDeleted && match(c)
	}
	sortFn := func(i, j *campaign.Campaign) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}

	campaigns, err := s.InMemoryStore.List(ctx, nil, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(campaigns, func(c *campaign.Campaign, _ int) *campaign.Campaign {
		return copyCampaign(c)
	}), nil
}
