package invoice

import (
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one line on an invoice. Created atomically with its parent
// invoice and never mutated independently.
type LineItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	AssetID     *string         `json:"asset_id,omitempty"`
	Description string          `json:"description"`
	SACCode     string          `json:"sac_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	types.BaseModel
}

// SAC codes attached to line items for tax reporting.
const (
	SACCodeAdvertisingSpace = "998366"
	SACCodeOtherServices    = "998599"
)

func (li *LineItem) Validate() error {
	if li.Description == "" {
		return NewValidationError("description", "must not be empty")
	}
	if li.Quantity.IsNegative() {
		return NewValidationError("quantity", "must be non negative")
	}
	if li.Amount.IsNegative() {
		return NewValidationError("amount", "must be non negative")
	}
	return nil
}
