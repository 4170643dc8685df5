package postgres

import (
	"context"

	domainClient "github.com/adboardhq/adboard/internal/domain/client"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/postgres"
	"github.com/adboardhq/adboard/internal/types"
)

type clientRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewClientRepository(client *postgres.Client, log *logger.Logger) domainClient.Repository {
	return &clientRepository{client: client, logger: log}
}

type clientRow struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	GSTIN          string `db:"gstin"`
	GSTStateCode   string `db:"gst_state_code"`
	BillingAddress string `db:"billing_address"`
	ContactName    string `db:"contact_name"`
	ContactEmail   string `db:"contact_email"`
	ContactPhone   string `db:"contact_phone"`
	types.BaseModel
}

func clientToRow(c *domainClient.Client) *clientRow {
	return &clientRow{
		ID:             c.ID,
		Name:           c.Name,
		GSTIN:          c.GSTIN,
		GSTStateCode:   c.GSTStateCode,
		BillingAddress: c.BillingAddress,
		ContactName:    c.ContactName,
		ContactEmail:   c.ContactEmail,
		ContactPhone:   c.ContactPhone,
		BaseModel:      c.BaseModel,
	}
}

func (r *clientRow) toDomain() *domainClient.Client {
	return &domainClient.Client{
		ID:             r.ID,
		Name:           r.Name,
		GSTIN:          r.GSTIN,
		GSTStateCode:   r.GSTStateCode,
		BillingAddress: r.BillingAddress,
		ContactName:    r.ContactName,
		ContactEmail:   r.ContactEmail,
		ContactPhone:   r.ContactPhone,
		BaseModel:      r.BaseModel,
	}
}

const clientColumns = `id, name, gstin, gst_state_code, billing_address,
	contact_name, contact_email, contact_phone,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *clientRepository) Create(ctx context.Context, c *domainClient.Client) error {
	r.logger.Debugw("creating client", "client_id", c.ID, "tenant_id", c.TenantID)

	query := `INSERT INTO clients (` + clientColumns + `) VALUES (
		:id, :name, :gstin, :gst_state_code, :billing_address,
		:contact_name, :contact_email, :contact_phone,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.DB().NamedExecContext(ctx, query, clientToRow(c))
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A client with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create client").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id string) (*domainClient.Client, error) {
	var row clientRow
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	err := r.client.DB().GetContext(ctx, &row, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("client not found").
				WithHintf("Client with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get client").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *clientRepository) Update(ctx context.Context, c *domainClient.Client) error {
	query := `UPDATE clients SET
		name = :name, gstin = :gstin, gst_state_code = :gst_state_code,
		billing_address = :billing_address, contact_name = :contact_name,
		contact_email = :contact_email, contact_phone = :contact_phone,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.client.DB().NamedExecContext(ctx, query, clientToRow(c))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update client").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewError("client not found").
			WithHintf("Client with ID %s was not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domainClient.Client, error) {
	var rows []clientRow
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE tenant_id = $1 AND status != $2 ORDER BY created_at DESC`

	err := r.client.DB().SelectContext(ctx, &rows, query, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list clients").
			Mark(ierr.ErrDatabase)
	}

	clients := make([]*domainClient.Client, len(rows))
	for i := range rows {
		clients[i] = rows[i].toDomain()
	}
	return clients, nil
}
