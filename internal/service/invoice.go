package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adboardhq/adboard/internal/api/dto"
	"github.com/adboardhq/adboard/internal/billing"
	"github.com/adboardhq/adboard/internal/domain/asset"
	domainCampaign "github.com/adboardhq/adboard/internal/domain/campaign"
	domainClient "github.com/adboardhq/adboard/internal/domain/client"
	domainInvoice "github.com/adboardhq/adboard/internal/domain/invoice"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/notification"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
)

// InvoiceService owns the three generation flows plus the invoice lifecycle
// operations. All arithmetic is delegated to internal/billing; all billed
// state goes through the ledger. Each flow runs
// Validating -> ConflictCheck -> Assembling -> Persisting -> LedgerUpdating;
// the database unique index has the last word on conflicts, and a ledger
// failure after persist degrades to a warning, never a rollback.
type InvoiceService interface {
	GenerateSingleInvoice(ctx context.Context, campaignID string, req *dto.GenerateSingleInvoiceRequest) (*dto.GenerateInvoicesResponse, error)
	GenerateMonthlyInvoices(ctx context.Context, campaignID string, req *dto.GenerateMonthlyInvoicesRequest) (*dto.GenerateInvoicesResponse, error)
	GenerateAssetInvoice(ctx context.Context, campaignID string, req *dto.GenerateAssetInvoiceRequest) (*dto.GenerateInvoicesResponse, error)

	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	CancelInvoice(ctx context.Context, id string, req *dto.CancelInvoiceRequest) (*dto.InvoiceResponse, error)
	RecordPayment(ctx context.Context, id string, req *dto.RecordPaymentRequest) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	ledger LedgerService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		ledger:        NewLedgerService(params),
	}
}

// billingContext carries everything a generation flow needs, loaded once.
type billingContext struct {
	campaign *domainCampaign.Campaign
	client   *domainClient.Client
	assets   []*asset.CampaignAsset
	totals   *billing.CampaignTotals
	gstMode  types.GSTMode
}

func (s *invoiceService) loadBillingContext(ctx context.Context, campaignID string, discountOverride *decimal.Decimal) (*billingContext, error) {
	c, err := s.CampaignRepo.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	cl, err := s.ClientRepo.Get(ctx, c.ClientID)
	if err != nil {
		return nil, err
	}

	assets, err := s.AssetRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, ierr.NewError("campaign has no assets").
			WithHint("Add at least one asset to the campaign before generating invoices").
			Mark(ierr.ErrValidation)
	}

	totals, err := billing.CalculateCampaignTotals(c, assets, discountOverride, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &billingContext{
		campaign: c,
		client:   cl,
		assets:   assets,
		totals:   totals,
		gstMode:  billing.ResolveGSTMode(s.Config.Billing.CompanyGSTStateCode, cl.GSTStateCode),
	}, nil
}

// checkConflict looks up the advisory uniqueness guard for
// (campaign, month, split type). Without the override a hit is an error
// naming the existing invoice; with it, generation proceeds flagged for
// review.
func (s *invoiceService) checkConflict(ctx context.Context, campaignID string, monthKey *types.MonthKey, splitType types.InvoiceSplitType, force bool) (needsReview bool, err error) {
	existing, err := s.InvoiceRepo.GetByCampaignMonth(ctx, campaignID, monthKey, splitType)
	if err != nil {
		if ierr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if !force {
		return false, ierr.WithError(domainInvoice.ErrInvoiceAlreadyExists).
			WithHintf("Invoice %s already covers this billing scope", existing.InvoiceNumber).
			WithReportableDetails(map[string]any{
				"existing_invoice_id":     existing.ID,
				"existing_invoice_number": existing.InvoiceNumber,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	s.Logger.Warnw("invoice conflict overridden by operator",
		"campaign_id", campaignID,
		"month_key", monthKey,
		"split_type", splitType,
		"existing_invoice", existing.InvoiceNumber,
		"operator", types.GetUserID(ctx),
	)
	return true, nil
}

type invoiceAmounts struct {
	subTotal decimal.Decimal
	discount decimal.Decimal
}

// assembleInvoice builds the invoice skeleton around already-rounded
// amounts and line items.
func (s *invoiceService) assembleInvoice(ctx context.Context, bc *billingContext, splitType types.InvoiceSplitType, monthKey *types.MonthKey, periodStart, periodEnd time.Time, amounts invoiceAmounts, items []*domainInvoice.LineItem, needsReview bool, notes string) (*domainInvoice.Invoice, error) {
	number, err := s.InvoiceRepo.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	discount := billing.ClampAmount(amounts.discount, decimal.Zero, amounts.subTotal)
	taxable := amounts.subTotal.Sub(discount)
	taxAmount := billing.RoundMoney(taxable.Mul(bc.campaign.TaxRatePercent).Div(decimal.NewFromInt(100)))
	total := billing.MaxZero(taxable.Add(taxAmount))

	dueDate := time.Now().UTC().AddDate(0, 0, s.Config.Billing.InvoiceDueDays)

	inv := &domainInvoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:  number,
		CampaignID:     bc.campaign.ID,
		ClientID:       bc.client.ID,
		SplitType:      splitType,
		MonthKey:       monthKey,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		SubTotal:       amounts.subTotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxBreakup:     billing.BuildTaxBreakup(bc.gstMode, bc.campaign.TaxRatePercent, taxAmount),
		Total:          total,
		AmountPaid:     decimal.Zero,
		BalanceDue:     total,
		InvoiceStatus:  types.InvoiceStatusDraft,
		DueDate:        &dueDate,
		NeedsReview:    needsReview,
		Notes:          notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	for _, item := range items {
		item.InvoiceID = inv.ID
	}
	inv.LineItems = items

	if err := inv.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Assembled invoice failed validation").
			Mark(ierr.ErrSystem)
	}
	return inv, nil
}

func (s *invoiceService) newLineItem(ctx context.Context, assetID *string, description, sacCode string, quantity, rate, amount decimal.Decimal) *domainInvoice.LineItem {
	return &domainInvoice.LineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		AssetID:     assetID,
		Description: description,
		SACCode:     sacCode,
		Quantity:    quantity,
		Rate:        rate,
		Amount:      amount,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// ledgerUpdate is the post-persist ledger work for one asset.
type ledgerUpdate struct {
	assetID      string
	monthKeys    []types.MonthKey
	billPrinting bool
	billMounting bool
}

// applyLedgerUpdates fans the per-asset ledger writes out concurrently.
// Order does not matter and failures are non-fatal: the invoice is already
// persisted, so a failed write becomes a warning for the operator.
func (s *invoiceService) applyLedgerUpdates(ctx context.Context, updates []ledgerUpdate) []string {
	var (
		mu       sync.Mutex
		warnings []string
	)
	var wg conc.WaitGroup
	for _, update := range updates {
		wg.Go(func() {
			var errs []error
			for _, monthKey := range update.monthKeys {
				if err := s.ledger.MarkMonthInvoiced(ctx, update.assetID, monthKey); err != nil {
					errs = append(errs, err)
				}
			}
			if update.billPrinting {
				if err := s.ledger.MarkChargeBilled(ctx, update.assetID, types.ChargeTypePrinting); err != nil {
					errs = append(errs, err)
				}
			}
			if update.billMounting {
				if err := s.ledger.MarkChargeBilled(ctx, update.assetID, types.ChargeTypeMounting); err != nil {
					errs = append(errs, err)
				}
			}

			for _, err := range errs {
				s.Logger.Warnw("ledger update failed after invoice persist",
					"asset_id", update.assetID,
					"error", err,
				)
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("ledger update failed for asset %s: %v", update.assetID, err))
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return warnings
}

func (s *invoiceService) notifyGenerated(ctx context.Context, inv *domainInvoice.Invoice) {
	s.Notifier.Notify(ctx, notification.Event{
		Type:       notification.EventInvoiceGenerated,
		CampaignID: inv.CampaignID,
		InvoiceID:  inv.ID,
		MonthKey:   monthKeyString(inv.MonthKey),
		Message:    fmt.Sprintf("invoice %s generated for %s", inv.InvoiceNumber, inv.Total.StringFixed(2)),
	})
}

func (s *invoiceService) notifyFailed(ctx context.Context, campaignID string, monthKey *types.MonthKey, err error) {
	s.Notifier.Notify(ctx, notification.Event{
		Type:       notification.EventInvoiceGenerationFailed,
		CampaignID: campaignID,
		MonthKey:   monthKeyString(monthKey),
		Message:    err.Error(),
	})
}

func monthKeyString(key *types.MonthKey) string {
	if key == nil {
		return ""
	}
	return key.String()
}

// GenerateSingleInvoice raises one whole-campaign invoice. Rent is billed
// per asset over its billing window; one-time charges ride along unless the
// ledger already billed them.
func (s *invoiceService) GenerateSingleInvoice(ctx context.Context, campaignID string, req *dto.GenerateSingleInvoiceRequest) (*dto.GenerateInvoicesResponse, error) {
	if req == nil {
		req = &dto.GenerateSingleInvoiceRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bc, err := s.loadBillingContext(ctx, campaignID, req.DiscountOverride)
	if err != nil {
		return nil, err
	}

	needsReview, err := s.checkConflict(ctx, campaignID, nil, types.InvoiceSplitTypeSingle, req.ForceOverride)
	if err != nil {
		return nil, err
	}

	var (
		items    []*domainInvoice.LineItem
		excluded []billing.UnavailableCharge
		subTotal = decimal.Zero
	)
	for _, a := range bc.assets {
		a := a
		pricing := a.Pricing.Resolve(a.AreaSqft)
		rent := billing.AssetCampaignRent(a, bc.campaign.StartDate, bc.campaign.EndDate)
		if rent.IsPositive() {
			items = append(items, s.newLineItem(ctx, &a.ID,
				fmt.Sprintf("Display rent: %s", a.SiteName),
				domainInvoice.SACCodeAdvertisingSpace,
				decimal.NewFromInt(1), rent, rent))
			subTotal = subTotal.Add(rent)
		}

		if !a.PrintingBilled && pricing.PrintingCharge.IsPositive() {
			charge := billing.RoundMoney(pricing.PrintingCharge)
			items = append(items, s.newLineItem(ctx, &a.ID,
				fmt.Sprintf("Printing charges: %s", a.SiteName),
				domainInvoice.SACCodeOtherServices,
				decimal.NewFromInt(1), charge, charge))
			subTotal = subTotal.Add(charge)
		}
		if !a.MountingBilled {
			if pricing.MountingUnavailable {
				excluded = append(excluded, billing.UnavailableCharge{
					AssetID:    a.ID,
					SiteName:   a.SiteName,
					ChargeType: types.ChargeTypeMounting,
					Reason:     "per-area mounting charge requires a recorded asset area",
				})
			} else if pricing.MountingCharge.IsPositive() {
				charge := billing.RoundMoney(pricing.MountingCharge)
				items = append(items, s.newLineItem(ctx, &a.ID,
					fmt.Sprintf("Mounting charges: %s", a.SiteName),
					domainInvoice.SACCodeOtherServices,
					decimal.NewFromInt(1), charge, charge))
				subTotal = subTotal.Add(charge)
			}
		}
	}

	inv, err := s.assembleInvoice(ctx, bc,
		types.InvoiceSplitTypeSingle, nil,
		bc.campaign.StartDate, bc.campaign.EndDate,
		invoiceAmounts{subTotal: subTotal, discount: bc.totals.DiscountAmount},
		items, needsReview, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.CreateWithLineItems(ctx, inv); err != nil {
		s.notifyFailed(ctx, campaignID, nil, err)
		return nil, err
	}

	updates := make([]ledgerUpdate, 0, len(bc.assets))
	for _, a := range bc.assets {
		pricing := a.Pricing.Resolve(a.AreaSqft)
		update := ledgerUpdate{
			assetID:      a.ID,
			billPrinting: !a.PrintingBilled && pricing.PrintingCharge.IsPositive(),
			billMounting: !a.MountingBilled && !pricing.MountingUnavailable && pricing.MountingCharge.IsPositive(),
		}
		for _, period := range bc.totals.Periods {
			charge := billing.CalculateAssetMonthCharge(a, bc.campaign.StartDate, bc.campaign.EndDate, period.MonthKey, billing.AssetMonthChargeOptions{})
			if charge.Overlaps {
				update.monthKeys = append(update.monthKeys, period.MonthKey)
			}
		}
		updates = append(updates, update)
	}
	warnings := s.applyLedgerUpdates(ctx, updates)

	s.notifyGenerated(ctx, inv)
	s.Logger.Infow("generated single invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"campaign_id", campaignID,
		"total", inv.Total,
	)

	return &dto.GenerateInvoicesResponse{
		Invoices: []*dto.InvoiceResponse{dto.NewInvoiceResponse(inv)},
		Warnings: warnings,
		Excluded: excluded,
	}, nil
}

// GenerateMonthlyInvoices raises one invoice per billing period, skipping
// months that already carry a non-cancelled invoice. One-time charges ride
// on the first month generated in this batch.
func (s *invoiceService) GenerateMonthlyInvoices(ctx context.Context, campaignID string, req *dto.GenerateMonthlyInvoicesRequest) (*dto.GenerateInvoicesResponse, error) {
	if req == nil {
		req = &dto.GenerateMonthlyInvoicesRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bc, err := s.loadBillingContext(ctx, campaignID, req.DiscountOverride)
	if err != nil {
		return nil, err
	}

	periods := bc.totals.Periods
	if req.MonthKey != "" {
		var matched []billing.BillingPeriod
		for _, period := range periods {
			if period.MonthKey == req.MonthKey {
				matched = append(matched, period)
			}
		}
		if len(matched) == 0 {
			return nil, ierr.NewError("month outside campaign range").
				WithHintf("Month %s is not part of the campaign's billing periods", req.MonthKey).
				Mark(ierr.ErrValidation)
		}
		periods = matched
	}

	pendingPrinting, pendingMounting := pendingOneTimeCharges(bc.assets)
	resp := &dto.GenerateInvoicesResponse{}
	resp.Excluded = mountingExclusions(bc.assets)

	for _, period := range periods {
		monthKey := period.MonthKey

		needsReview, err := s.checkConflict(ctx, campaignID, &monthKey, types.InvoiceSplitTypeMonthly, req.ForceOverride)
		if err != nil {
			if ierr.IsAlreadyExists(err) {
				resp.Skipped = append(resp.Skipped, dto.SkippedMonth{
					MonthKey: monthKey,
					Reason:   "a non-cancelled invoice already exists for this month",
				})
				continue
			}
			return nil, err
		}

		if !req.ForceOverride && s.monthFullyLedgered(bc, period) {
			resp.Skipped = append(resp.Skipped, dto.SkippedMonth{
				MonthKey: monthKey,
				Reason:   "every overlapping asset already has this month in its ledger",
			})
			continue
		}

		opts := billing.PeriodChargeOptions{
			IncludePrinting: pendingPrinting.IsPositive(),
			IncludeMounting: pendingMounting.IsPositive(),
		}
		scoped := *bc.totals
		scoped.PrintingCost = pendingPrinting
		scoped.MountingCost = pendingMounting
		amount := billing.CalculatePeriodAmount(period, &scoped, opts)

		var items []*domainInvoice.LineItem
		items = append(items, s.newLineItem(ctx, nil,
			fmt.Sprintf("Display rent %s (%d days)", monthKey, period.Days),
			domainInvoice.SACCodeAdvertisingSpace,
			decimal.NewFromInt(1), amount.BaseRent, amount.BaseRent))
		if opts.IncludePrinting {
			items = append(items, s.newLineItem(ctx, nil,
				"Printing charges",
				domainInvoice.SACCodeOtherServices,
				decimal.NewFromInt(1), amount.PrintingCharge, amount.PrintingCharge))
		}
		if opts.IncludeMounting {
			items = append(items, s.newLineItem(ctx, nil,
				"Mounting charges",
				domainInvoice.SACCodeOtherServices,
				decimal.NewFromInt(1), amount.MountingCharge, amount.MountingCharge))
		}

		inv, err := s.assembleInvoice(ctx, bc,
			types.InvoiceSplitTypeMonthly, &monthKey,
			period.Start, period.End,
			invoiceAmounts{subTotal: amount.SubTotal, discount: amount.DiscountShare},
			items, needsReview, req.Notes)
		if err != nil {
			return nil, err
		}

		if err := s.InvoiceRepo.CreateWithLineItems(ctx, inv); err != nil {
			if ierr.IsAlreadyExists(err) {
				// Lost a race with a concurrent generation; the unique index
				// is the last word.
				resp.Skipped = append(resp.Skipped, dto.SkippedMonth{
					MonthKey: monthKey,
					Reason:   "a concurrent generation created this month's invoice first",
				})
				continue
			}
			s.notifyFailed(ctx, campaignID, &monthKey, err)
			return nil, err
		}

		updates := s.monthLedgerUpdates(bc, period, opts.IncludePrinting, opts.IncludeMounting)
		resp.Warnings = append(resp.Warnings, s.applyLedgerUpdates(ctx, updates)...)

		if opts.IncludePrinting {
			pendingPrinting = decimal.Zero
		}
		if opts.IncludeMounting {
			pendingMounting = decimal.Zero
		}

		s.notifyGenerated(ctx, inv)
		resp.Invoices = append(resp.Invoices, dto.NewInvoiceResponse(inv))
	}

	s.Logger.Infow("monthly invoice generation finished",
		"campaign_id", campaignID,
		"created", len(resp.Invoices),
		"skipped", len(resp.Skipped),
	)
	return resp, nil
}

// monthFullyLedgered reports whether every asset overlapping the period has
// the month recorded as invoiced already.
func (s *invoiceService) monthFullyLedgered(bc *billingContext, period billing.BillingPeriod) bool {
	sawOverlap := false
	for _, a := range bc.assets {
		charge := billing.CalculateAssetMonthCharge(a, bc.campaign.StartDate, bc.campaign.EndDate, period.MonthKey, billing.AssetMonthChargeOptions{})
		if !charge.Overlaps {
			continue
		}
		sawOverlap = true
		if !charge.AlreadyInvoiced {
			return false
		}
	}
	return sawOverlap
}

func (s *invoiceService) monthLedgerUpdates(bc *billingContext, period billing.BillingPeriod, billPrinting, billMounting bool) []ledgerUpdate {
	var updates []ledgerUpdate
	for _, a := range bc.assets {
		charge := billing.CalculateAssetMonthCharge(a, bc.campaign.StartDate, bc.campaign.EndDate, period.MonthKey, billing.AssetMonthChargeOptions{})
		if !charge.Overlaps {
			continue
		}
		pricing := a.Pricing.Resolve(a.AreaSqft)
		updates = append(updates, ledgerUpdate{
			assetID:      a.ID,
			monthKeys:    []types.MonthKey{period.MonthKey},
			billPrinting: billPrinting && !a.PrintingBilled && pricing.PrintingCharge.IsPositive(),
			billMounting: billMounting && !a.MountingBilled && !pricing.MountingUnavailable && pricing.MountingCharge.IsPositive(),
		})
	}
	return updates
}

func mountingExclusions(assets []*asset.CampaignAsset) []billing.UnavailableCharge {
	var excluded []billing.UnavailableCharge
	for _, a := range assets {
		if a.MountingBilled {
			continue
		}
		if a.Pricing.Resolve(a.AreaSqft).MountingUnavailable {
			excluded = append(excluded, billing.UnavailableCharge{
				AssetID:    a.ID,
				SiteName:   a.SiteName,
				ChargeType: types.ChargeTypeMounting,
				Reason:     "per-area mounting charge requires a recorded asset area",
			})
		}
	}
	return excluded
}

// GenerateAssetInvoice raises one invoice for a target month billing each
// selected asset by its overlap with that month. Assets whose ledger
// already records the month are skipped with a warning rather than failing
// the batch.
func (s *invoiceService) GenerateAssetInvoice(ctx context.Context, campaignID string, req *dto.GenerateAssetInvoiceRequest) (*dto.GenerateInvoicesResponse, error) {
	if req == nil {
		return nil, ierr.NewError("request body is required").
			WithHint("Provide a month key for asset invoice generation").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bc, err := s.loadBillingContext(ctx, campaignID, req.DiscountOverride)
	if err != nil {
		return nil, err
	}

	selected := bc.assets
	if len(req.AssetIDs) > 0 {
		byID := make(map[string]*asset.CampaignAsset, len(bc.assets))
		for _, a := range bc.assets {
			byID[a.ID] = a
		}
		selected = selected[:0:0]
		for _, id := range req.AssetIDs {
			a, ok := byID[id]
			if !ok {
				return nil, ierr.NewError("asset does not belong to campaign").
					WithHintf("Asset %s was not found on this campaign", id).
					Mark(ierr.ErrValidation)
			}
			selected = append(selected, a)
		}
	}

	needsReview, err := s.checkConflict(ctx, campaignID, &req.MonthKey, types.InvoiceSplitTypeAsset, req.ForceOverride)
	if err != nil {
		return nil, err
	}

	chargeOpts := billing.AssetMonthChargeOptions{
		IncludeOneTimeCharges: req.IncludeOneTimeCharges,
		RebillOneTimeCharges:  req.RebillOneTimeCharges,
	}
	if req.RebillOneTimeCharges {
		s.Logger.Warnw("one-time charge rebill override in use",
			"campaign_id", campaignID,
			"month_key", req.MonthKey,
			"operator", types.GetUserID(ctx),
		)
	}

	resp := &dto.GenerateInvoicesResponse{}
	var (
		items    []*domainInvoice.LineItem
		updates  []ledgerUpdate
		subTotal = decimal.Zero
	)
	for _, a := range selected {
		a := a
		charge := billing.CalculateAssetMonthCharge(a, bc.campaign.StartDate, bc.campaign.EndDate, req.MonthKey, chargeOpts)
		if !charge.Overlaps {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("asset %s does not overlap %s", a.SiteName, req.MonthKey))
			continue
		}
		if charge.AlreadyInvoiced && !req.ForceOverride {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("asset %s already invoiced for %s", a.SiteName, req.MonthKey))
			continue
		}
		resp.Excluded = append(resp.Excluded, charge.UnavailableCharges...)

		if charge.RentAmount.IsPositive() {
			items = append(items, s.newLineItem(ctx, &a.ID,
				fmt.Sprintf("Display rent: %s %s (%d days)", a.SiteName, req.MonthKey, charge.BillableDays),
				domainInvoice.SACCodeAdvertisingSpace,
				decimal.NewFromInt(1), charge.RentAmount, charge.RentAmount))
			subTotal = subTotal.Add(charge.RentAmount)
		}
		if charge.PrintingCharge.IsPositive() {
			items = append(items, s.newLineItem(ctx, &a.ID,
				fmt.Sprintf("Printing charges: %s", a.SiteName),
				domainInvoice.SACCodeOtherServices,
				decimal.NewFromInt(1), charge.PrintingCharge, charge.PrintingCharge))
			subTotal = subTotal.Add(charge.PrintingCharge)
		}
		if charge.MountingCharge.IsPositive() {
			items = append(items, s.newLineItem(ctx, &a.ID,
				fmt.Sprintf("Mounting charges: %s", a.SiteName),
				domainInvoice.SACCodeOtherServices,
				decimal.NewFromInt(1), charge.MountingCharge, charge.MountingCharge))
			subTotal = subTotal.Add(charge.MountingCharge)
		}

		updates = append(updates, ledgerUpdate{
			assetID:      a.ID,
			monthKeys:    []types.MonthKey{req.MonthKey},
			billPrinting: charge.PrintingCharge.IsPositive(),
			billMounting: charge.MountingCharge.IsPositive(),
		})
	}

	if len(items) == 0 {
		return nil, ierr.NewError("nothing to bill").
			WithHintf("No billable asset overlaps %s", req.MonthKey).
			Mark(ierr.ErrValidation)
	}

	// The campaign-level discount belongs to the campaign flows; the asset
	// flow only applies an explicitly provided override.
	discount := decimal.Zero
	if req.DiscountOverride != nil {
		discount = *req.DiscountOverride
	}

	monthStart, monthEnd := req.MonthKey.Bounds()
	monthKey := req.MonthKey
	inv, err := s.assembleInvoice(ctx, bc,
		types.InvoiceSplitTypeAsset, &monthKey,
		monthStart, monthEnd,
		invoiceAmounts{subTotal: subTotal, discount: billing.RoundMoney(discount)},
		items, needsReview, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.CreateWithLineItems(ctx, inv); err != nil {
		s.notifyFailed(ctx, campaignID, &monthKey, err)
		return nil, err
	}

	resp.Warnings = append(resp.Warnings, s.applyLedgerUpdates(ctx, updates)...)
	resp.Invoices = []*dto.InvoiceResponse{dto.NewInvoiceResponse(inv)}

	s.notifyGenerated(ctx, inv)
	s.Logger.Infow("generated asset invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"campaign_id", campaignID,
		"month_key", monthKey,
		"total", inv.Total,
	)
	return resp, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = dto.NewInvoiceResponse(inv)
	}
	return &dto.ListInvoicesResponse{
		Items: items,
		Pagination: types.PaginationResponse{
			Total:  total,
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
		},
	}, nil
}

// CancelInvoice marks the invoice cancelled, which releases its slot in the
// uniqueness guard. Ledger entries are not unwound automatically; that is
// the administrative override's job.
func (s *invoiceService) CancelInvoice(ctx context.Context, id string, req *dto.CancelInvoiceRequest) (*dto.InvoiceResponse, error) {
	if req == nil {
		req = &dto.CancelInvoiceRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus.IsCancelled() {
		return nil, ierr.WithError(domainInvoice.ErrInvoiceAlreadyCancelled).
			WithHintf("Invoice %s is already cancelled", inv.InvoiceNumber).
			Mark(ierr.ErrInvalidOperation)
	}
	if inv.InvoiceStatus == types.InvoiceStatusPaid {
		return nil, ierr.NewError("cannot cancel a paid invoice").
			WithHint("Paid invoices require a credit adjustment instead of cancellation").
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusCancelled
	inv.CancelledAt = &now
	if req.Reason != "" {
		inv.Notes = appendNote(inv.Notes, "cancelled: "+req.Reason)
	}

	inv.Touch(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"reason", req.Reason,
		"operator", types.GetUserID(ctx),
	)
	return dto.NewInvoiceResponse(inv), nil
}

// RecordPayment applies a payment to the invoice and moves it to PAID or
// PARTIALLY_PAID accordingly.
func (s *invoiceService) RecordPayment(ctx context.Context, id string, req *dto.RecordPaymentRequest) (*dto.InvoiceResponse, error) {
	if req == nil {
		return nil, ierr.NewError("request body is required").
			WithHint("Provide a payment amount").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, ierr.NewError("invalid payment amount").
			WithHint("Payment amount must be positive").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.InvoiceStatus.CanRecordPayment() {
		return nil, ierr.NewError("invoice cannot accept payments").
			WithHintf("Invoice %s is %s", inv.InvoiceNumber, inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	remaining := inv.GetRemainingAmount()
	if req.Amount.GreaterThan(remaining) {
		return nil, ierr.NewError("payment exceeds balance due").
			WithHintf("Balance due on invoice %s is %s", inv.InvoiceNumber, remaining.StringFixed(2)).
			Mark(ierr.ErrValidation)
	}

	inv.AmountPaid = inv.AmountPaid.Add(req.Amount)
	inv.BalanceDue = inv.Total.Sub(inv.AmountPaid)
	if req.Notes != "" {
		inv.Notes = appendNote(inv.Notes, req.Notes)
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	if inv.BalanceDue.IsZero() {
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaidAt = &paidAt
	} else {
		inv.InvoiceStatus = types.InvoiceStatusPartiallyPaid
	}

	inv.Touch(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded invoice payment",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"amount", req.Amount,
		"balance_due", inv.BalanceDue,
		"status", inv.InvoiceStatus,
	)
	return dto.NewInvoiceResponse(inv), nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
