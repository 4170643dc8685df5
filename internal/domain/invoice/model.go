package invoice

import (
	"time"

	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// TaxBreakup is the resolved tax presentation on an invoice: either two
// equal half-rate components (CGST + SGST) for intra-state billing or one
// full-rate component (IGST) for inter-state billing. The components always
// sum exactly to TotalTax.
type TaxBreakup struct {
	Mode        types.GSTMode   `json:"mode"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	TotalTax    decimal.Decimal `json:"total_tax"`
}

// Invoice represents the invoice domain model. For a given
// (campaign, month, split type) at most one non-cancelled invoice may exist.
type Invoice struct {
	ID            string                 `json:"id"`
	InvoiceNumber string                 `json:"invoice_number"`
	CampaignID    string                 `json:"campaign_id"`
	ClientID      string                 `json:"client_id"`
	SplitType     types.InvoiceSplitType `json:"split_type"`
	MonthKey      *types.MonthKey        `json:"month_key,omitempty"`
	PeriodStart   time.Time              `json:"period_start"`
	PeriodEnd     time.Time              `json:"period_end"`

	SubTotal       decimal.Decimal `json:"sub_total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxBreakup     TaxBreakup      `json:"tax_breakup"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	BalanceDue     decimal.Decimal `json:"balance_due"`

	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`

	// NeedsReview marks invoices generated with a conflict override; these
	// require manual reconciliation by an operator.
	NeedsReview bool   `json:"needs_review"`
	Notes       string `json:"notes,omitempty"`

	LineItems []*LineItem `json:"line_items,omitempty"`
	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.SubTotal.IsNegative() {
		return NewValidationError("sub_total", "must be non negative")
	}
	if i.DiscountAmount.IsNegative() {
		return NewValidationError("discount_amount", "must be non negative")
	}
	if i.DiscountAmount.GreaterThan(i.SubTotal) {
		return NewValidationError("discount_amount", "must not exceed sub_total")
	}
	if !i.TaxableAmount.Equal(i.SubTotal.Sub(i.DiscountAmount)) {
		return NewValidationError("taxable_amount", "must equal sub_total - discount_amount")
	}
	if !i.Total.Equal(i.TaxableAmount.Add(i.TaxBreakup.TotalTax)) {
		return NewValidationError("total", "must equal taxable_amount + total_tax")
	}
	if i.AmountPaid.IsNegative() {
		return NewValidationError("amount_paid", "must be non negative")
	}
	if i.AmountPaid.GreaterThan(i.Total) {
		return NewValidationError("amount_paid", "must be less than or equal to total")
	}
	if !i.AmountPaid.Add(i.BalanceDue).Equal(i.Total) {
		return NewValidationError("balance_due", "must equal total - amount_paid")
	}
	if i.PeriodEnd.Before(i.PeriodStart) {
		return NewValidationError("period_end", "must be after period_start")
	}
	if err := i.SplitType.Validate(); err != nil {
		return err
	}
	if i.SplitType != types.InvoiceSplitTypeSingle && i.MonthKey == nil {
		return NewValidationError("month_key", "must be set for monthly and asset invoices")
	}
	switch i.TaxBreakup.Mode {
	case types.GSTModeDualTax:
		if !i.TaxBreakup.CGST.Add(i.TaxBreakup.SGST).Equal(i.TaxBreakup.TotalTax) {
			return NewValidationError("tax_breakup", "cgst + sgst must equal total_tax")
		}
	case types.GSTModeSingleTax:
		if !i.TaxBreakup.IGST.Equal(i.TaxBreakup.TotalTax) {
			return NewValidationError("tax_breakup", "igst must equal total_tax")
		}
	}

	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// GetRemainingAmount returns the unpaid balance.
func (i *Invoice) GetRemainingAmount() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}
