package types

// Default pagination values
const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 200
)

// InvoiceFilter narrows invoice list queries.
type InvoiceFilter struct {
	CampaignID    string           `form:"campaign_id" json:"campaign_id,omitempty"`
	ClientID      string           `form:"client_id" json:"client_id,omitempty"`
	SplitType     InvoiceSplitType `form:"split_type" json:"split_type,omitempty"`
	InvoiceStatus []InvoiceStatus  `form:"invoice_status" json:"invoice_status,omitempty"`
	MonthKey      MonthKey         `form:"month_key" json:"month_key,omitempty"`
	Limit         *int             `form:"limit" json:"limit,omitempty"`
	Offset        *int             `form:"offset" json:"offset,omitempty"`
}

// NewNoLimitInvoiceFilter returns a filter that matches everything.
func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{}
}

func (f *InvoiceFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FilterDefaultLimit
	}
	if *f.Limit > FilterMaxLimit {
		return FilterMaxLimit
	}
	return *f.Limit
}

func (f *InvoiceFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// IsUnlimited reports whether pagination should be skipped entirely.
func (f *InvoiceFilter) IsUnlimited() bool {
	return f == nil || (f.Limit == nil && f.Offset == nil)
}

func (f *InvoiceFilter) Validate() error {
	if f.SplitType != "" {
		if err := f.SplitType.Validate(); err != nil {
			return err
		}
	}
	for _, status := range f.InvoiceStatus {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	if f.MonthKey != "" {
		if err := f.MonthKey.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PaginationResponse echoes the applied pagination back to the caller.
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
