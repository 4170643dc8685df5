package dto

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/client"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/adboardhq/adboard/internal/validator"
)

type CreateClientRequest struct {
	Name           string `json:"name" validate:"required"`
	GSTIN          string `json:"gstin,omitempty"`
	GSTStateCode   string `json:"gst_state_code,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
	ContactName    string `json:"contact_name,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone   string `json:"contact_phone,omitempty"`
}

func (r *CreateClientRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateClientRequest) ToClient(ctx context.Context) *client.Client {
	return &client.Client{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT),
		Name:           r.Name,
		GSTIN:          r.GSTIN,
		GSTStateCode:   r.GSTStateCode,
		BillingAddress: r.BillingAddress,
		ContactName:    r.ContactName,
		ContactEmail:   r.ContactEmail,
		ContactPhone:   r.ContactPhone,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type UpdateClientRequest struct {
	Name           *string `json:"name,omitempty"`
	GSTIN          *string `json:"gstin,omitempty"`
	GSTStateCode   *string `json:"gst_state_code,omitempty"`
	BillingAddress *string `json:"billing_address,omitempty"`
	ContactName    *string `json:"contact_name,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone   *string `json:"contact_phone,omitempty"`
}

func (r *UpdateClientRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Apply copies the set fields onto the client.
func (r *UpdateClientRequest) Apply(c *client.Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.GSTIN != nil {
		c.GSTIN = *r.GSTIN
	}
	if r.GSTStateCode != nil {
		c.GSTStateCode = *r.GSTStateCode
	}
	if r.BillingAddress != nil {
		c.BillingAddress = *r.BillingAddress
	}
	if r.ContactName != nil {
		c.ContactName = *r.ContactName
	}
	if r.ContactEmail != nil {
		c.ContactEmail = *r.ContactEmail
	}
	if r.ContactPhone != nil {
		c.ContactPhone = *r.ContactPhone
	}
}

type ClientResponse struct {
	*client.Client
}

func NewClientResponse(c *client.Client) *ClientResponse {
	return &ClientResponse{Client: c}
}

type ListClientsResponse struct {
	Items []*ClientResponse `json:"items"`
	Total int               `json:"total"`
}
