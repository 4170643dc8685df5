package postgres

import (
	"context"
	"time"

	domainCampaign "github.com/adboardhq/adboard/internal/domain/campaign"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/postgres"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

type campaignRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewCampaignRepository(client *postgres.Client, log *logger.Logger) domainCampaign.Repository {
	return &campaignRepository{client: client, logger: log}
}

type campaignRow struct {
	ID                   string             `db:"id"`
	ClientID             string             `db:"client_id"`
	Name                 string             `db:"name"`
	StartDate            time.Time          `db:"start_date"`
	EndDate              time.Time          `db:"end_date"`
	TaxRatePercent       decimal.Decimal    `db:"tax_rate_percent"`
	BillingCycle         types.BillingCycle `db:"billing_cycle"`
	ManualDiscountAmount decimal.Decimal    `db:"manual_discount_amount"`
	ManualDiscountReason string             `db:"manual_discount_reason"`
	Notes                string             `db:"notes"`
	types.BaseModel
}

func campaignToRow(c *domainCampaign.Campaign) *campaignRow {
	return &campaignRow{
		ID:                   c.ID,
		ClientID:             c.ClientID,
		Name:                 c.Name,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		TaxRatePercent:       c.TaxRatePercent,
		BillingCycle:         c.BillingCycle,
		ManualDiscountAmount: c.ManualDiscountAmount,
		ManualDiscountReason: c.ManualDiscountReason,
		Notes:                c.Notes,
		BaseModel:            c.BaseModel,
	}
}

func (r *campaignRow) toDomain() *domainCampaign.Campaign {
	return &domainCampaign.Campaign{
		ID:                   r.ID,
		ClientID:             r.ClientID,
		Name:                 r.Name,
		StartDate:            r.StartDate.UTC(),
		EndDate:              r.EndDate.UTC(),
		TaxRatePercent:       r.TaxRatePercent,
		BillingCycle:         r.BillingCycle,
		ManualDiscountAmount: r.ManualDiscountAmount,
		ManualDiscountReason: r.ManualDiscountReason,
		Notes:                r.Notes,
		BaseModel:            r.BaseModel,
	}
}

const campaignColumns = `id, client_id, name, start_date, end_date,
	tax_rate_percent, billing_cycle, manual_discount_amount,
	manual_discount_reason, notes,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *campaignRepository) Create(ctx context.Context, c *domainCampaign.Campaign) error {
	r.logger.Debugw("creating campaign", "campaign_id", c.ID, "client_id", c.ClientID)

	query := `INSERT INTO campaigns (` + campaignColumns + `) VALUES (
		:id, :client_id, :name, :start_date, :end_date,
		:tax_rate_percent, :billing_cycle, :manual_discount_amount,
		:manual_discount_reason, :notes,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.DB().NamedExecContext(ctx, query, campaignToRow(c))
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A campaign with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create campaign").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *campaignRepository) Get(ctx context.Context, id string) (*domainCampaign.Campaign, error) {
	var row campaignRow
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	err := r.client.DB().GetContext(ctx, &row, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("campaign not found").
				WithHintf("Campaign with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get campaign").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *campaignRepository) Update(ctx context.Context, c *domainCampaign.Campaign) error {
	query := `UPDATE campaigns SET
		name = :name, start_date = :start_date, end_date = :end_date,
		tax_rate_percent = :tax_rate_percent, billing_cycle = :billing_cycle,
		manual_discount_amount = :manual_discount_amount,
		manual_discount_reason = :manual_discount_reason, notes = :notes,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.client.DB().NamedExecContext(ctx, query, campaignToRow(c))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update campaign").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewError("campaign not found").
			WithHintf("Campaign with ID %s was not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *campaignRepository) List(ctx context.Context) ([]*domainCampaign.Campaign, error) {
	var rows []campaignRow
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE tenant_id = $1 AND status != $2 ORDER BY created_at DESC`

	err := r.client.DB().SelectContext(ctx, &rows, query, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list campaigns").
			Mark(ierr.ErrDatabase)
	}
	return campaignRowsToDomain(rows), nil
}

func (r *campaignRepository) ListByClient(ctx context.Context, clientID string) ([]*domainCampaign.Campaign, error) {
	var rows []campaignRow
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE client_id = $1 AND tenant_id = $2 AND status != $3 ORDER BY created_at DESC`

	err := r.client.DB().SelectContext(ctx, &rows, query, clientID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list campaigns for client").
			Mark(ierr.ErrDatabase)
	}
	return campaignRowsToDomain(rows), nil
}

func campaignRowsToDomain(rows []campaignRow) []*domainCampaign.Campaign {
	campaigns := make([]*domainCampaign.Campaign, len(rows))
	for i := range rows {
		campaigns[i] = rows[i].toDomain()
	}
	return campaigns
}
