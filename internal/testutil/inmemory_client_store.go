package testutil

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/client"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/samber/lo"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	*InMemoryStore[*client.Client]
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{
		InMemoryStore: NewInMemoryStore[*client.Client](),
	}
}

func copyClient(c *client.Client) *client.Client {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	if err := s.InMemoryStore.Create(ctx, c.ID, copyClient(c)); err != nil {
		return ierr.WithError(err).
			WithHint("A client with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || c.TenantID != types.GetTenantID(ctx) || c.Status == types.StatusDeleted {
		return nil, ierr.NewError("client not found").
			WithHintf("Client with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyClient(c), nil
}

func (s *InMemoryClientStore) Update(ctx context.Context, c *client.Client) error {
	if err := s.InMemoryStore.Update(ctx, c.ID, copyClient(c)); err != nil {
		return ierr.NewError("client not found").
			WithHintf("Client with ID %s was not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryClientStore) List(ctx context.Context) ([]*client.Client, error) {
	filterFn := func(ctx context.Context, c *client.Client, _ interface{}) bool {
		return c.TenantID == types.GetTenantID(ctx) && c.Status != types.StatusDeleted
	}
	sortFn := func(i, j *client.Client) bool {
		return i.CreatedAt.After(j.CreatedAt)
	}

	clients, err := s.InMemoryStore.List(ctx, nil, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(clients, func(c *client.Client, _ int) *client.Client {
		return copyClient(c)
	}), nil
}
