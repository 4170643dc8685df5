package campaign

import (
	"context"
)

// Repository defines the interface for campaign persistence operations
type Repository interface {
	Create(ctx context.Context, campaign *Campaign) error
	Get(ctx context.Context, id string) (*Campaign, error)
	Update(ctx context.Context, campaign *Campaign) error
	List(ctx context.Context) ([]*Campaign, error)
	ListByClient(ctx context.Context, clientID string) ([]*Campaign, error)
}
