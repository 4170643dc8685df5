package client

import (
	"strings"

	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
)

// Client represents an advertiser billed by the operator.
// GSTStateCode is the client's tax jurisdiction; comparing it against the
// company's own code selects the dual-tax vs single-tax invoice presentation.
type Client struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	GSTIN          string `json:"gstin,omitempty"`
	GSTStateCode   string `json:"gst_state_code,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
	ContactName    string `json:"contact_name,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	types.BaseModel
}

func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ierr.NewError("client name is required").
			WithHint("Please provide a client name").
			Mark(ierr.ErrValidation)
	}
	return nil
}
