package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adboardhq/adboard/internal/domain/invoice"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository. It enforces the same
// partial uniqueness the database index provides: at most one non-cancelled
// invoice per (tenant, campaign, month, split type).
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	mu       sync.Mutex
	counters map[string]int
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		counters:      make(map[string]int),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.LineItems = lo.Map(inv.LineItems, func(item *invoice.LineItem, _ int) *invoice.LineItem {
		copied := *item
		return &copied
	})
	return &out
}

func monthKeyOrEmpty(key *types.MonthKey) string {
	if key == nil {
		return ""
	}
	return key.String()
}

func (s *InMemoryInvoiceStore) findConflicting(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	filterFn := func(ctx context.Context, existing *invoice.Invoice, _ interface{}) bool {
		return existing.TenantID == inv.TenantID &&
			existing.CampaignID == inv.CampaignID &&
			existing.SplitType == inv.SplitType &&
			monthKeyOrEmpty(existing.MonthKey) == monthKeyOrEmpty(inv.MonthKey) &&
			existing.Status != types.StatusDeleted &&
			!existing.InvoiceStatus.IsCancelled() &&
			!existing.NeedsReview
	}
	matches, err := s.InMemoryStore.List(ctx, nil, filterFn, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (s *InMemoryInvoiceStore) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Needs-review invoices live outside the uniqueness guard, mirroring
	// the partial index predicate.
	if !inv.NeedsReview {
		existing, err := s.findConflicting(ctx, inv)
		if err != nil {
			return err
		}
		if existing != nil {
			return ierr.WithError(invoice.ErrInvoiceAlreadyExists).
				WithHintf("A non-cancelled invoice already exists for campaign %s", inv.CampaignID).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHint("An invoice with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || inv.TenantID != types.GetTenantID(ctx) || inv.Status == types.StatusDeleted {
		return nil, ierr.WithError(invoice.ErrInvoiceNotFound).
			WithHintf("Invoice with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(invoice.ErrInvoiceNotFound).
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv.TenantID != types.GetTenantID(ctx) || inv.Status == types.StatusDeleted {
		return false
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if f.CampaignID != "" && inv.CampaignID != f.CampaignID {
		return false
	}
	if f.ClientID != "" && inv.ClientID != f.ClientID {
		return false
	}
	if f.SplitType != "" && inv.SplitType != f.SplitType {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.MonthKey != "" && monthKeyOrEmpty(inv.MonthKey) != f.MonthKey.String() {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID > j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) GetByCampaignMonth(ctx context.Context, campaignID string, monthKey *types.MonthKey, splitType types.InvoiceSplitType) (*invoice.Invoice, error) {
	probe := &invoice.Invoice{
		CampaignID: campaignID,
		MonthKey:   monthKey,
		SplitType:  splitType,
		BaseModel:  types.BaseModel{TenantID: types.GetTenantID(ctx)},
	}
	existing, err := s.findConflicting(ctx, probe)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ierr.WithError(invoice.ErrInvoiceNotFound).
			WithHintf("No active invoice found for campaign %s", campaignID).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(existing), nil
}

func (s *InMemoryInvoiceStore) NextInvoiceNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	period := time.Now().UTC().Format("200601")
	key := types.GetTenantID(ctx) + ":" + period
	s.counters[key]++
	return fmt.Sprintf("INV-%s-%05d", period, s.counters[key]), nil
}
