package dto

import (
	"time"

	"github.com/adboardhq/adboard/internal/billing"
	"github.com/adboardhq/adboard/internal/domain/invoice"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/adboardhq/adboard/internal/validator"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceOptions are shared by all three generation flows.
type GenerateInvoiceOptions struct {
	// ForceOverride proceeds past an advisory conflict; the resulting invoice
	// is flagged NeedsReview and the override is logged.
	ForceOverride bool `json:"force_override,omitempty"`

	// DiscountOverride replaces the campaign's stored manual discount for
	// this generation only.
	DiscountOverride *decimal.Decimal `json:"discount_override,omitempty"`

	Notes string `json:"notes,omitempty"`
}

type GenerateSingleInvoiceRequest struct {
	GenerateInvoiceOptions
}

func (r *GenerateSingleInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type GenerateMonthlyInvoicesRequest struct {
	GenerateInvoiceOptions

	// MonthKey restricts the batch to one month; empty generates every
	// pending month in the campaign's period grid.
	MonthKey types.MonthKey `json:"month_key,omitempty"`
}

func (r *GenerateMonthlyInvoicesRequest) Validate() error {
	if r.MonthKey != "" {
		if err := r.MonthKey.Validate(); err != nil {
			return err
		}
	}
	return validator.ValidateRequest(r)
}

type GenerateAssetInvoiceRequest struct {
	GenerateInvoiceOptions

	MonthKey types.MonthKey `json:"month_key" validate:"required"`

	// AssetIDs restricts the invoice to a subset of the campaign's assets;
	// empty bills every asset overlapping the month.
	AssetIDs []string `json:"asset_ids,omitempty"`

	IncludeOneTimeCharges bool `json:"include_one_time_charges,omitempty"`

	// RebillOneTimeCharges re-raises already billed one-time charges.
	RebillOneTimeCharges bool `json:"rebill_one_time_charges,omitempty"`
}

func (r *GenerateAssetInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.MonthKey.Validate()
}

type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// GenerateInvoicesResponse is the batch generation outcome. Warnings carry
// non-fatal degradations (skipped charges, ledger update failures).
type GenerateInvoicesResponse struct {
	Invoices []*InvoiceResponse          `json:"invoices"`
	Skipped  []SkippedMonth              `json:"skipped,omitempty"`
	Warnings []string                    `json:"warnings,omitempty"`
	Excluded []billing.UnavailableCharge `json:"excluded_charges,omitempty"`
}

// SkippedMonth records one month the batch left alone and why.
type SkippedMonth struct {
	MonthKey types.MonthKey `json:"month_key"`
	Reason   string         `json:"reason"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	PaidAt *time.Time      `json:"paid_at,omitempty"`
	Notes  string          `json:"notes,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return nil
}

type CancelInvoiceRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (r *CancelInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}
