package types

import (
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/samber/lo"
)

// InvoiceSplitType identifies which generation flow produced an invoice.
// At most one non-cancelled invoice may exist per
// (campaign, month, split type) — the central double-billing guard.
type InvoiceSplitType string

const (
	// InvoiceSplitTypeSingle is one invoice covering the whole campaign
	InvoiceSplitTypeSingle InvoiceSplitType = "SINGLE"
	// InvoiceSplitTypeMonthly is one invoice per billing period of the campaign grid
	InvoiceSplitTypeMonthly InvoiceSplitType = "MONTHLY"
	// InvoiceSplitTypeAsset is a per-asset overlap invoice for one calendar month
	InvoiceSplitTypeAsset InvoiceSplitType = "ASSET"
)

func (t InvoiceSplitType) String() string {
	return string(t)
}

func (t InvoiceSplitType) Validate() error {
	allowed := []InvoiceSplitType{
		InvoiceSplitTypeSingle,
		InvoiceSplitTypeMonthly,
		InvoiceSplitTypeAsset,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice split type").
			WithHint("Please provide a valid invoice split type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsCancelled reports whether the invoice no longer counts towards the
// duplicate-invoice guard.
func (s InvoiceStatus) IsCancelled() bool {
	return s == InvoiceStatusCancelled
}

// CanRecordPayment reports whether a payment may be recorded against an
// invoice in this status.
func (s InvoiceStatus) CanRecordPayment() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusDraft:
		return true
	default:
		return false
	}
}
