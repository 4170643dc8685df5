package postgres

import (
	"context"
	"database/sql"
	"time"

	domainAsset "github.com/adboardhq/adboard/internal/domain/asset"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/postgres"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

type assetRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewAssetRepository(client *postgres.Client, log *logger.Logger) domainAsset.Repository {
	return &assetRepository{client: client, logger: log}
}

// assetRow flattens the pricing record and the ledger into jsonb columns;
// the billed flags stay as plain columns so they can be queried directly.
type assetRow struct {
	ID             string              `db:"id"`
	CampaignID     string              `db:"campaign_id"`
	SiteCode       string              `db:"site_code"`
	SiteName       string              `db:"site_name"`
	Location       string              `db:"location"`
	AreaSqft       decimal.NullDecimal `db:"area_sqft"`
	BookingStart   sql.NullTime        `db:"booking_start"`
	BookingEnd     sql.NullTime        `db:"booking_end"`
	Pricing        []byte              `db:"pricing"`
	InvoicedMonths []byte              `db:"invoiced_months"`
	PrintingBilled bool                `db:"printing_billed"`
	MountingBilled bool                `db:"mounting_billed"`
	types.BaseModel
}

func assetToRow(a *domainAsset.CampaignAsset) (*assetRow, error) {
	pricing, err := marshalJSONB(a.Pricing)
	if err != nil {
		return nil, err
	}
	months, err := marshalJSONB(a.InvoicedMonths)
	if err != nil {
		return nil, err
	}

	row := &assetRow{
		ID:             a.ID,
		CampaignID:     a.CampaignID,
		SiteCode:       a.SiteCode,
		SiteName:       a.SiteName,
		Location:       a.Location,
		Pricing:        pricing,
		InvoicedMonths: months,
		PrintingBilled: a.PrintingBilled,
		MountingBilled: a.MountingBilled,
		BaseModel:      a.BaseModel,
	}
	if a.AreaSqft != nil {
		row.AreaSqft = decimal.NullDecimal{Decimal: *a.AreaSqft, Valid: true}
	}
	if a.BookingStart != nil {
		row.BookingStart = sql.NullTime{Time: *a.BookingStart, Valid: true}
	}
	if a.BookingEnd != nil {
		row.BookingEnd = sql.NullTime{Time: *a.BookingEnd, Valid: true}
	}
	return row, nil
}

func (r *assetRow) toDomain() (*domainAsset.CampaignAsset, error) {
	a := &domainAsset.CampaignAsset{
		ID:             r.ID,
		CampaignID:     r.CampaignID,
		SiteCode:       r.SiteCode,
		SiteName:       r.SiteName,
		Location:       r.Location,
		PrintingBilled: r.PrintingBilled,
		MountingBilled: r.MountingBilled,
		BaseModel:      r.BaseModel,
	}
	if err := unmarshalJSONB(r.Pricing, &a.Pricing); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(r.InvoicedMonths, &a.InvoicedMonths); err != nil {
		return nil, err
	}
	if r.AreaSqft.Valid {
		area := r.AreaSqft.Decimal
		a.AreaSqft = &area
	}
	if r.BookingStart.Valid {
		start := r.BookingStart.Time.UTC()
		a.BookingStart = &start
	}
	if r.BookingEnd.Valid {
		end := r.BookingEnd.Time.UTC()
		a.BookingEnd = &end
	}
	return a, nil
}

const assetColumns = `id, campaign_id, site_code, site_name, location,
	area_sqft, booking_start, booking_end, pricing, invoiced_months,
	printing_billed, mounting_billed,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *assetRepository) Create(ctx context.Context, a *domainAsset.CampaignAsset) error {
	r.logger.Debugw("creating campaign asset", "asset_id", a.ID, "campaign_id", a.CampaignID)

	row, err := assetToRow(a)
	if err != nil {
		return err
	}

	query := `INSERT INTO campaign_assets (` + assetColumns + `) VALUES (
		:id, :campaign_id, :site_code, :site_name, :location,
		:area_sqft, :booking_start, :booking_end, :pricing, :invoiced_months,
		:printing_billed, :mounting_billed,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := r.client.DB().NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An asset with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create campaign asset").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *assetRepository) Get(ctx context.Context, id string) (*domainAsset.CampaignAsset, error) {
	var row assetRow
	query := `SELECT ` + assetColumns + ` FROM campaign_assets
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	err := r.client.DB().GetContext(ctx, &row, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("asset not found").
				WithHintf("Asset with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get campaign asset").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain()
}

// Update persists the full asset record including its ledger fields. The
// updated_at guard implements optimistic concurrency for ledger writes.
func (r *assetRepository) Update(ctx context.Context, a *domainAsset.CampaignAsset) error {
	row, err := assetToRow(a)
	if err != nil {
		return err
	}
	previousUpdatedAt := row.UpdatedAt
	row.UpdatedAt = time.Now().UTC()

	query := `UPDATE campaign_assets SET
		site_code = :site_code, site_name = :site_name, location = :location,
		area_sqft = :area_sqft, booking_start = :booking_start, booking_end = :booking_end,
		pricing = :pricing, invoiced_months = :invoiced_months,
		printing_billed = :printing_billed, mounting_billed = :mounting_billed,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id AND updated_at = :previous_updated_at`

	result, err := r.client.DB().NamedExecContext(ctx, query, map[string]any{
		"id": row.ID, "tenant_id": row.TenantID,
		"site_code": row.SiteCode, "site_name": row.SiteName, "location": row.Location,
		"area_sqft": row.AreaSqft, "booking_start": row.BookingStart, "booking_end": row.BookingEnd,
		"pricing": row.Pricing, "invoiced_months": row.InvoicedMonths,
		"printing_billed": row.PrintingBilled, "mounting_billed": row.MountingBilled,
		"status": row.Status, "updated_at": row.UpdatedAt, "updated_by": row.UpdatedBy,
		"previous_updated_at": previousUpdatedAt,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update campaign asset").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewError("asset not found or concurrently modified").
			WithHintf("Asset with ID %s was not found or was modified by another request", a.ID).
			Mark(ierr.ErrNotFound)
	}
	a.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *assetRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*domainAsset.CampaignAsset, error) {
	var rows []assetRow
	query := `SELECT ` + assetColumns + ` FROM campaign_assets
		WHERE campaign_id = $1 AND tenant_id = $2 AND status != $3 ORDER BY created_at ASC`

	err := r.client.DB().SelectContext(ctx, &rows, query, campaignID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list campaign assets").
			Mark(ierr.ErrDatabase)
	}

	assets := make([]*domainAsset.CampaignAsset, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}
