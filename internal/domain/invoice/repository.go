package invoice

import (
	"context"

	"github.com/adboardhq/adboard/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// CreateWithLineItems persists the invoice and its line items as one unit.
	// A unique constraint on (tenant, campaign, month, split type) over
	// non-cancelled invoices is enforced here; violations surface as
	// ErrAlreadyExists-marked errors.
	CreateWithLineItems(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID including its line items
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice (status, payment fields, notes)
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// GetByCampaignMonth returns the non-cancelled invoice for
	// (campaign, month, split type), or ErrInvoiceNotFound. A nil month key
	// matches whole-campaign (single split) invoices.
	GetByCampaignMonth(ctx context.Context, campaignID string, monthKey *types.MonthKey, splitType types.InvoiceSplitType) (*Invoice, error)

	// NextInvoiceNumber issues the next invoice number from the tenant's
	// monthly sequence, e.g. INV-202403-00017.
	NextInvoiceNumber(ctx context.Context) (string, error)
}
