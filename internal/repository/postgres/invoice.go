package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domainInvoice "github.com/adboardhq/adboard/internal/domain/invoice"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/postgres"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type invoiceRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewInvoiceRepository(client *postgres.Client, log *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{client: client, logger: log}
}

type invoiceRow struct {
	ID            string         `db:"id"`
	InvoiceNumber string         `db:"invoice_number"`
	CampaignID    string         `db:"campaign_id"`
	ClientID      string         `db:"client_id"`
	SplitType     string         `db:"split_type"`
	MonthKey      sql.NullString `db:"month_key"`
	PeriodStart   time.Time      `db:"period_start"`
	PeriodEnd     time.Time      `db:"period_end"`

	SubTotal       decimal.Decimal `db:"sub_total"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	TaxableAmount  decimal.Decimal `db:"taxable_amount"`
	GSTMode        string          `db:"gst_mode"`
	TaxRatePercent decimal.Decimal `db:"tax_rate_percent"`
	CGST           decimal.Decimal `db:"cgst"`
	SGST           decimal.Decimal `db:"sgst"`
	IGST           decimal.Decimal `db:"igst"`
	TotalTax       decimal.Decimal `db:"total_tax"`
	Total          decimal.Decimal `db:"total"`
	AmountPaid     decimal.Decimal `db:"amount_paid"`
	BalanceDue     decimal.Decimal `db:"balance_due"`

	InvoiceStatus string       `db:"invoice_status"`
	DueDate       sql.NullTime `db:"due_date"`
	PaidAt        sql.NullTime `db:"paid_at"`
	CancelledAt   sql.NullTime `db:"cancelled_at"`
	NeedsReview   bool         `db:"needs_review"`
	Notes         string       `db:"notes"`
	types.BaseModel
}

func invoiceToRow(inv *domainInvoice.Invoice) *invoiceRow {
	row := &invoiceRow{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		CampaignID:     inv.CampaignID,
		ClientID:       inv.ClientID,
		SplitType:      string(inv.SplitType),
		PeriodStart:    inv.PeriodStart,
		PeriodEnd:      inv.PeriodEnd,
		SubTotal:       inv.SubTotal,
		DiscountAmount: inv.DiscountAmount,
		TaxableAmount:  inv.TaxableAmount,
		GSTMode:        string(inv.TaxBreakup.Mode),
		TaxRatePercent: inv.TaxBreakup.RatePercent,
		CGST:           inv.TaxBreakup.CGST,
		SGST:           inv.TaxBreakup.SGST,
		IGST:           inv.TaxBreakup.IGST,
		TotalTax:       inv.TaxBreakup.TotalTax,
		Total:          inv.Total,
		AmountPaid:     inv.AmountPaid,
		BalanceDue:     inv.BalanceDue,
		InvoiceStatus:  string(inv.InvoiceStatus),
		NeedsReview:    inv.NeedsReview,
		Notes:          inv.Notes,
		BaseModel:      inv.BaseModel,
	}
	if inv.MonthKey != nil {
		row.MonthKey = sql.NullString{String: inv.MonthKey.String(), Valid: true}
	}
	if inv.DueDate != nil {
		row.DueDate = sql.NullTime{Time: *inv.DueDate, Valid: true}
	}
	if inv.PaidAt != nil {
		row.PaidAt = sql.NullTime{Time: *inv.PaidAt, Valid: true}
	}
	if inv.CancelledAt != nil {
		row.CancelledAt = sql.NullTime{Time: *inv.CancelledAt, Valid: true}
	}
	return row
}

func (r *invoiceRow) toDomain() *domainInvoice.Invoice {
	inv := &domainInvoice.Invoice{
		ID:             r.ID,
		InvoiceNumber:  r.InvoiceNumber,
		CampaignID:     r.CampaignID,
		ClientID:       r.ClientID,
		SplitType:      types.InvoiceSplitType(r.SplitType),
		PeriodStart:    r.PeriodStart.UTC(),
		PeriodEnd:      r.PeriodEnd.UTC(),
		SubTotal:       r.SubTotal,
		DiscountAmount: r.DiscountAmount,
		TaxableAmount:  r.TaxableAmount,
		TaxBreakup: domainInvoice.TaxBreakup{
			Mode:        types.GSTMode(r.GSTMode),
			RatePercent: r.TaxRatePercent,
			CGST:        r.CGST,
			SGST:        r.SGST,
			IGST:        r.IGST,
			TotalTax:    r.TotalTax,
		},
		Total:         r.Total,
		AmountPaid:    r.AmountPaid,
		BalanceDue:    r.BalanceDue,
		InvoiceStatus: types.InvoiceStatus(r.InvoiceStatus),
		NeedsReview:   r.NeedsReview,
		Notes:         r.Notes,
		BaseModel:     r.BaseModel,
	}
	if r.MonthKey.Valid {
		key := types.MonthKey(r.MonthKey.String)
		inv.MonthKey = &key
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		inv.DueDate = &due
	}
	if r.PaidAt.Valid {
		paid := r.PaidAt.Time.UTC()
		inv.PaidAt = &paid
	}
	if r.CancelledAt.Valid {
		cancelled := r.CancelledAt.Time.UTC()
		inv.CancelledAt = &cancelled
	}
	return inv
}

type lineItemRow struct {
	ID          string          `db:"id"`
	InvoiceID   string          `db:"invoice_id"`
	AssetID     sql.NullString  `db:"asset_id"`
	Description string          `db:"description"`
	SACCode     string          `db:"sac_code"`
	Quantity    decimal.Decimal `db:"quantity"`
	Rate        decimal.Decimal `db:"rate"`
	Amount      decimal.Decimal `db:"amount"`
	types.BaseModel
}

func lineItemToRow(item *domainInvoice.LineItem) *lineItemRow {
	row := &lineItemRow{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Description: item.Description,
		SACCode:     item.SACCode,
		Quantity:    item.Quantity,
		Rate:        item.Rate,
		Amount:      item.Amount,
		BaseModel:   item.BaseModel,
	}
	if item.AssetID != nil {
		row.AssetID = sql.NullString{String: *item.AssetID, Valid: true}
	}
	return row
}

func (r *lineItemRow) toDomain() *domainInvoice.LineItem {
	item := &domainInvoice.LineItem{
		ID:          r.ID,
		InvoiceID:   r.InvoiceID,
		Description: r.Description,
		SACCode:     r.SACCode,
		Quantity:    r.Quantity,
		Rate:        r.Rate,
		Amount:      r.Amount,
		BaseModel:   r.BaseModel,
	}
	if r.AssetID.Valid {
		assetID := r.AssetID.String
		item.AssetID = &assetID
	}
	return item
}

const invoiceColumns = `id, invoice_number, campaign_id, client_id, split_type,
	month_key, period_start, period_end,
	sub_total, discount_amount, taxable_amount,
	gst_mode, tax_rate_percent, cgst, sgst, igst, total_tax,
	total, amount_paid, balance_due,
	invoice_status, due_date, paid_at, cancelled_at, needs_review, notes,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const lineItemColumns = `id, invoice_id, asset_id, description, sac_code,
	quantity, rate, amount,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

// CreateWithLineItems persists the invoice and its line items atomically.
// The partial unique index on (tenant, campaign, month, split type) over
// non-cancelled invoices closes the duplicate-generation race at the
// database level; a violation surfaces as ErrAlreadyExists.
func (r *invoiceRepository) CreateWithLineItems(ctx context.Context, inv *domainInvoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"campaign_id", inv.CampaignID,
		"split_type", inv.SplitType,
	)

	return r.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		invoiceQuery := `INSERT INTO invoices (` + invoiceColumns + `) VALUES (
			:id, :invoice_number, :campaign_id, :client_id, :split_type,
			:month_key, :period_start, :period_end,
			:sub_total, :discount_amount, :taxable_amount,
			:gst_mode, :tax_rate_percent, :cgst, :sgst, :igst, :total_tax,
			:total, :amount_paid, :balance_due,
			:invoice_status, :due_date, :paid_at, :cancelled_at, :needs_review, :notes,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

		if _, err := tx.NamedExecContext(ctx, invoiceQuery, invoiceToRow(inv)); err != nil {
			if isUniqueViolation(err) {
				return ierr.WithError(domainInvoice.ErrInvoiceAlreadyExists).
					WithHintf("A non-cancelled invoice already exists for campaign %s", inv.CampaignID).
					WithReportableDetails(map[string]any{
						"campaign_id": inv.CampaignID,
						"split_type":  inv.SplitType,
						"month_key":   inv.MonthKey,
					}).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create invoice").
				Mark(ierr.ErrDatabase)
		}

		itemQuery := `INSERT INTO invoice_line_items (` + lineItemColumns + `) VALUES (
			:id, :invoice_id, :asset_id, :description, :sac_code,
			:quantity, :rate, :amount,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

		for _, item := range inv.LineItems {
			if _, err := tx.NamedExecContext(ctx, itemQuery, lineItemToRow(item)); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create invoice line item").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	var row invoiceRow
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	err := r.client.DB().GetContext(ctx, &row, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(domainInvoice.ErrInvoiceNotFound).
				WithHintf("Invoice with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	inv := row.toDomain()
	items, err := r.lineItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (r *invoiceRepository) lineItems(ctx context.Context, invoiceID string) ([]*domainInvoice.LineItem, error) {
	var rows []lineItemRow
	query := `SELECT ` + lineItemColumns + ` FROM invoice_line_items
		WHERE invoice_id = $1 AND tenant_id = $2 ORDER BY created_at ASC, id ASC`

	err := r.client.DB().SelectContext(ctx, &rows, query, invoiceID, types.GetTenantID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice line items").
			Mark(ierr.ErrDatabase)
	}

	items := make([]*domainInvoice.LineItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toDomain()
	}
	return items, nil
}

// Update persists mutable invoice fields. Line items are immutable after
// creation and are not touched here.
func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	query := `UPDATE invoices SET
		invoice_status = :invoice_status, amount_paid = :amount_paid,
		balance_due = :balance_due, due_date = :due_date, paid_at = :paid_at,
		cancelled_at = :cancelled_at, needs_review = :needs_review, notes = :notes,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	row := invoiceToRow(inv)
	row.UpdatedAt = time.Now().UTC()

	result, err := r.client.DB().NamedExecContext(ctx, query, row)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.WithError(domainInvoice.ErrInvoiceNotFound).
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	inv.UpdatedAt = row.UpdatedAt
	return nil
}

func buildInvoiceFilter(ctx context.Context, filter *types.InvoiceFilter) (string, []any) {
	conditions := []string{"tenant_id = ?", "status != ?"}
	args := []any{types.GetTenantID(ctx), types.StatusDeleted}

	if filter != nil {
		if filter.CampaignID != "" {
			conditions = append(conditions, "campaign_id = ?")
			args = append(args, filter.CampaignID)
		}
		if filter.ClientID != "" {
			conditions = append(conditions, "client_id = ?")
			args = append(args, filter.ClientID)
		}
		if filter.SplitType != "" {
			conditions = append(conditions, "split_type = ?")
			args = append(args, string(filter.SplitType))
		}
		if len(filter.InvoiceStatus) > 0 {
			placeholders := make([]string, len(filter.InvoiceStatus))
			for i, status := range filter.InvoiceStatus {
				placeholders[i] = "?"
				args = append(args, string(status))
			}
			conditions = append(conditions, fmt.Sprintf("invoice_status IN (%s)", strings.Join(placeholders, ", ")))
		}
		if filter.MonthKey != "" {
			conditions = append(conditions, "month_key = ?")
			args = append(args, filter.MonthKey.String())
		}
	}

	return strings.Join(conditions, " AND "), args
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	where, args := buildInvoiceFilter(ctx, filter)
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where + ` ORDER BY created_at DESC`
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	var rows []invoiceRow
	err := r.client.DB().SelectContext(ctx, &rows, r.client.DB().Rebind(query), args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*domainInvoice.Invoice, len(rows))
	for i := range rows {
		invoices[i] = rows[i].toDomain()
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, args := buildInvoiceFilter(ctx, filter)
	query := `SELECT COUNT(*) FROM invoices WHERE ` + where

	var count int
	err := r.client.DB().GetContext(ctx, &count, r.client.DB().Rebind(query), args...)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) GetByCampaignMonth(ctx context.Context, campaignID string, monthKey *types.MonthKey, splitType types.InvoiceSplitType) (*domainInvoice.Invoice, error) {
	conditions := []string{
		"campaign_id = $1", "split_type = $2", "tenant_id = $3",
		"status != $4", "invoice_status != $5", "needs_review = false",
	}
	args := []any{campaignID, string(splitType), types.GetTenantID(ctx), types.StatusDeleted, string(types.InvoiceStatusCancelled)}
	if monthKey != nil {
		conditions = append(conditions, "month_key = $6")
		args = append(args, monthKey.String())
	} else {
		conditions = append(conditions, "month_key IS NULL")
	}

	var row invoiceRow
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + strings.Join(conditions, " AND ")

	err := r.client.DB().GetContext(ctx, &row, query, args...)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(domainInvoice.ErrInvoiceNotFound).
				WithHintf("No active invoice found for campaign %s", campaignID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up invoice by campaign and month").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

// NextInvoiceNumber issues the next number from the tenant's monthly
// sequence, e.g. INV-202403-00017. The upsert keeps concurrent issuers from
// reusing a number.
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	period := time.Now().UTC().Format("200601")

	var counter int
	query := `INSERT INTO invoice_number_sequences (tenant_id, period, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, period)
		DO UPDATE SET counter = invoice_number_sequences.counter + 1
		RETURNING counter`

	err := r.client.DB().GetContext(ctx, &counter, query, types.GetTenantID(ctx), period)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to issue invoice number").
			Mark(ierr.ErrDatabase)
	}
	return fmt.Sprintf("INV-%s-%05d", period, counter), nil
}
