package service

import (
	"sync"
	"testing"
	"time"

	"github.com/adboardhq/adboard/internal/api/dto"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/notification"
	"github.com/adboardhq/adboard/internal/testutil"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	invoiceService  InvoiceService
	campaignService CampaignService
	assetService    AssetService
	ledgerService   LedgerService

	testData struct {
		clientID   string
		campaignID string
		assetID    string
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		ClientRepo:   s.GetStores().ClientRepo,
		CampaignRepo: s.GetStores().CampaignRepo,
		AssetRepo:    s.GetStores().AssetRepo,
		InvoiceRepo:  s.GetStores().InvoiceRepo,
		Notifier:     s.GetNotifier(),
		Cache:        s.GetCache(),
	}
	s.invoiceService = NewInvoiceService(params)
	s.campaignService = NewCampaignService(params)
	s.assetService = NewAssetService(params)
	s.ledgerService = NewLedgerService(params)

	s.setupTestData()
}

// setupTestData seeds the canonical scenario: a campaign running
// 2024-01-15 to 2024-03-10 with one hoarding negotiated at 30000/month and
// an 18% tax rate. The client shares the company's state code, so tax
// resolves to the dual split.
func (s *InvoiceServiceSuite) setupTestData() {
	clientService := NewClientService(ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		ClientRepo: s.GetStores().ClientRepo,
	})

	clientResp, err := clientService.CreateClient(s.GetContext(), &dto.CreateClientRequest{
		Name:         "Acme Beverages",
		GSTStateCode: s.GetConfig().Billing.CompanyGSTStateCode,
	})
	s.Require().NoError(err)
	s.testData.clientID = clientResp.ID

	campaignResp, err := s.campaignService.CreateCampaign(s.GetContext(), &dto.CreateCampaignRequest{
		ClientID:       s.testData.clientID,
		Name:           "Summer Launch",
		StartDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		TaxRatePercent: decimal.NewFromInt(18),
		BillingCycle:   types.BillingCycleMonthly,
	})
	s.Require().NoError(err)
	s.testData.campaignID = campaignResp.ID

	rate := decimal.NewFromInt(30000)
	assetResp, err := s.assetService.CreateAsset(s.GetContext(), s.testData.campaignID, &dto.CreateAssetRequest{
		SiteName:              "MG Road Hoarding",
		NegotiatedMonthlyRate: &rate,
	})
	s.Require().NoError(err)
	s.testData.assetID = assetResp.ID
}

func (s *InvoiceServiceSuite) addAssetWithCharges(printing, mounting int64) string {
	rate := decimal.NewFromInt(30000)
	resp, err := s.assetService.CreateAsset(s.GetContext(), s.testData.campaignID, &dto.CreateAssetRequest{
		SiteName:              "Airport Road Hoarding",
		NegotiatedMonthlyRate: &rate,
		PrintingCharge:        decimal.NewFromInt(printing),
		MountingCharge:        decimal.NewFromInt(mounting),
		MountingChargeMode:    types.MountingChargeModeFixed,
	})
	s.Require().NoError(err)
	return resp.ID
}

func (s *InvoiceServiceSuite) TestGenerateSingleInvoice() {
	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 1)

	inv := resp.Invoices[0]
	s.Equal(types.InvoiceSplitTypeSingle, inv.SplitType)
	s.Nil(inv.MonthKey)
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.False(inv.NeedsReview)
	s.NotEmpty(inv.InvoiceNumber)

	// 17/30 + 1 + 10/30 months at 30000.
	s.Equal("57000", inv.SubTotal.String())
	s.Equal("57000", inv.TaxableAmount.String())
	s.Equal("10260", inv.TaxBreakup.TotalTax.String())
	s.Equal(types.GSTModeDualTax, inv.TaxBreakup.Mode)
	s.Equal("5130", inv.TaxBreakup.CGST.String())
	s.Equal("5130", inv.TaxBreakup.SGST.String())
	s.Equal("67260", inv.Total.String())
	s.Equal("67260", inv.BalanceDue.String())

	s.Require().Len(inv.LineItems, 1)
	s.Equal("57000", inv.LineItems[0].Amount.String())
	s.Require().NotNil(inv.LineItems[0].AssetID)
	s.Equal(s.testData.assetID, *inv.LineItems[0].AssetID)
}

func (s *InvoiceServiceSuite) TestGenerateSingleInvoiceMarksLedger() {
	_, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	for _, key := range []types.MonthKey{"2024-01", "2024-02", "2024-03"} {
		invoiced, err := s.ledgerService.HasInvoicedMonth(s.GetContext(), s.testData.assetID, key)
		s.Require().NoError(err)
		s.True(invoiced, "month %s should be marked", key)
	}

	events := s.GetNotifier().Events()
	s.Require().Len(events, 1)
	s.Equal(notification.EventInvoiceGenerated, events[0].Type)
	s.Equal(s.testData.campaignID, events[0].CampaignID)
}

func (s *InvoiceServiceSuite) TestGenerateSingleInvoiceRejectsDuplicate() {
	_, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	_, err = s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *InvoiceServiceSuite) TestGenerateSingleInvoiceForceOverride() {
	_, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{
		GenerateInvoiceOptions: dto.GenerateInvoiceOptions{ForceOverride: true},
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 1)
	s.True(resp.Invoices[0].NeedsReview)
}

func (s *InvoiceServiceSuite) TestGenerateSingleInvoiceIncludesOneTimeCharges() {
	chargedAssetID := s.addAssetWithCharges(2000, 1500)

	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	inv := resp.Invoices[0]
	// Two rent lines plus printing and mounting for the second asset.
	s.Require().Len(inv.LineItems, 4)
	s.Equal("117500", inv.SubTotal.String())

	billed, err := s.ledgerService.IsChargeBilled(s.GetContext(), chargedAssetID, types.ChargeTypePrinting)
	s.Require().NoError(err)
	s.True(billed)
	billed, err = s.ledgerService.IsChargeBilled(s.GetContext(), chargedAssetID, types.ChargeTypeMounting)
	s.Require().NoError(err)
	s.True(billed)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoices() {
	resp, err := s.invoiceService.GenerateMonthlyInvoices(s.GetContext(), s.testData.campaignID, &dto.GenerateMonthlyInvoicesRequest{})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 3)
	s.Empty(resp.Skipped)

	subTotals := []string{"17000", "30000", "10000"}
	monthKeys := []types.MonthKey{"2024-01", "2024-02", "2024-03"}
	for i, inv := range resp.Invoices {
		s.Equal(types.InvoiceSplitTypeMonthly, inv.SplitType)
		s.Require().NotNil(inv.MonthKey)
		s.Equal(monthKeys[i], *inv.MonthKey)
		s.Equal(subTotals[i], inv.SubTotal.String())
	}

	for _, key := range monthKeys {
		invoiced, err := s.ledgerService.HasInvoicedMonth(s.GetContext(), s.testData.assetID, key)
		s.Require().NoError(err)
		s.True(invoiced)
	}
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoicesApportionsDiscount() {
	_, err := s.campaignService.UpdateDiscount(s.GetContext(), s.testData.campaignID, &dto.UpdateDiscountRequest{
		DiscountAmount: decimal.NewFromInt(5700),
		Reason:         "negotiated rebate",
	})
	s.Require().NoError(err)

	resp, err := s.invoiceService.GenerateMonthlyInvoices(s.GetContext(), s.testData.campaignID, &dto.GenerateMonthlyInvoicesRequest{})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 3)

	discounts := []string{"1700", "3000", "1000"}
	for i, inv := range resp.Invoices {
		s.Equal(discounts[i], inv.DiscountAmount.String())
	}

	// January: 17000 - 1700 = 15300 taxable, 18% tax.
	jan := resp.Invoices[0]
	s.Equal("15300", jan.TaxableAmount.String())
	s.Equal("2754", jan.TaxBreakup.TotalTax.String())
	s.Equal("18054", jan.Total.String())
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoicesAttachesChargesToFirstMonth() {
	s.addAssetWithCharges(2000, 1500)

	resp, err := s.invoiceService.GenerateMonthlyInvoices(s.GetContext(), s.testData.campaignID, &dto.GenerateMonthlyInvoicesRequest{})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 3)

	// January carries both assets' rent plus the one-time charges.
	s.Equal("37500", resp.Invoices[0].SubTotal.String())
	s.Equal("60000", resp.Invoices[1].SubTotal.String())
	s.Equal("20000", resp.Invoices[2].SubTotal.String())
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoicesSkipsExistingMonths() {
	_, err := s.invoiceService.GenerateMonthlyInvoices(s.GetContext(), s.testData.campaignID, &dto.GenerateMonthlyInvoicesRequest{
		MonthKey: "2024-02",
	})
	s.Require().NoError(err)

	resp, err := s.invoiceService.GenerateMonthlyInvoices(s.GetContext(), s.testData.campaignID, &dto.GenerateMonthlyInvoicesRequest{})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 2)
	s.Require().Len(resp.Skipped, 1)
	s.Equal(types.MonthKey("2024-02"), resp.Skipped[0].MonthKey)
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoicesRejectsMonthOutsideRange() {
	_, err := s.invoiceService.GenerateMonthlyInvoices(s.GetContext(), s.testData.campaignID, &dto.GenerateMonthlyInvoicesRequest{
		MonthKey: "2024-06",
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGenerateAssetInvoice() {
	resp, err := s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-02",
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 1)

	inv := resp.Invoices[0]
	s.Equal(types.InvoiceSplitTypeAsset, inv.SplitType)
	s.Equal("30000", inv.SubTotal.String())
	s.Equal("5400", inv.TaxBreakup.TotalTax.String())
	s.Equal("35400", inv.Total.String())

	invoiced, err := s.ledgerService.HasInvoicedMonth(s.GetContext(), s.testData.assetID, "2024-02")
	s.Require().NoError(err)
	s.True(invoiced)
}

func (s *InvoiceServiceSuite) TestGenerateAssetInvoicePartialMonth() {
	resp, err := s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-03",
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 1)

	// 10 billable days of March at 30000/month.
	s.Equal("10000", resp.Invoices[0].SubTotal.String())
}

func (s *InvoiceServiceSuite) TestGenerateAssetInvoiceSkipsLedgeredAssets() {
	_, err := s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-02",
	})
	s.Require().NoError(err)

	// Cancel the first invoice to release the conflict slot; the ledger
	// still records the month for the asset.
	invoices, err := s.invoiceService.ListInvoices(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(invoices.Items, 1)
	_, err = s.invoiceService.CancelInvoice(s.GetContext(), invoices.Items[0].ID, &dto.CancelInvoiceRequest{Reason: "rebill"})
	s.Require().NoError(err)

	_, err = s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-02",
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err), "all assets ledgered should leave nothing to bill")
}

func (s *InvoiceServiceSuite) TestGenerateAssetInvoiceUnknownAsset() {
	_, err := s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-02",
		AssetIDs: []string{"asset_does_not_exist"},
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGenerateAssetInvoiceIgnoresCampaignDiscount() {
	_, err := s.campaignService.UpdateDiscount(s.GetContext(), s.testData.campaignID, &dto.UpdateDiscountRequest{
		DiscountAmount: decimal.NewFromInt(5000),
	})
	s.Require().NoError(err)

	resp, err := s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-02",
	})
	s.Require().NoError(err)
	s.True(resp.Invoices[0].DiscountAmount.IsZero())
}

func (s *InvoiceServiceSuite) TestConcurrentSingleGeneration() {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if ierr.IsAlreadyExists(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(1, conflicts)
}

func (s *InvoiceServiceSuite) TestCancelInvoice() {
	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)
	invoiceID := resp.Invoices[0].ID

	cancelled, err := s.invoiceService.CancelInvoice(s.GetContext(), invoiceID, &dto.CancelInvoiceRequest{Reason: "client dispute"})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusCancelled, cancelled.InvoiceStatus)
	s.NotNil(cancelled.CancelledAt)

	_, err = s.invoiceService.CancelInvoice(s.GetContext(), invoiceID, &dto.CancelInvoiceRequest{})
	s.Require().Error(err)

	// Cancelling releases the uniqueness slot.
	_, err = s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)
}

func (s *InvoiceServiceSuite) TestRecordPayment() {
	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)
	invoiceID := resp.Invoices[0].ID

	partial, err := s.invoiceService.RecordPayment(s.GetContext(), invoiceID, &dto.RecordPaymentRequest{
		Amount: decimal.NewFromInt(30000),
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPartiallyPaid, partial.InvoiceStatus)
	s.Equal("37260", partial.BalanceDue.String())
	s.Nil(partial.PaidAt)

	paid, err := s.invoiceService.RecordPayment(s.GetContext(), invoiceID, &dto.RecordPaymentRequest{
		Amount: decimal.NewFromInt(37260),
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.InvoiceStatus)
	s.True(paid.BalanceDue.IsZero())
	s.NotNil(paid.PaidAt)
}

func (s *InvoiceServiceSuite) TestRecordPaymentRejectsOverpayment() {
	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	_, err = s.invoiceService.RecordPayment(s.GetContext(), resp.Invoices[0].ID, &dto.RecordPaymentRequest{
		Amount: decimal.NewFromInt(100000),
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestRecordPaymentRejectsCancelledInvoice() {
	resp, err := s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)
	invoiceID := resp.Invoices[0].ID

	_, err = s.invoiceService.CancelInvoice(s.GetContext(), invoiceID, &dto.CancelInvoiceRequest{})
	s.Require().NoError(err)

	_, err = s.invoiceService.RecordPayment(s.GetContext(), invoiceID, &dto.RecordPaymentRequest{
		Amount: decimal.NewFromInt(100),
	})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesFiltersBySplitType() {
	// The asset invoice goes first: once the single invoice has marked every
	// month in the ledger there is nothing left for the asset flow to bill.
	_, err := s.invoiceService.GenerateAssetInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateAssetInvoiceRequest{
		MonthKey: "2024-02",
	})
	s.Require().NoError(err)
	_, err = s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	resp, err := s.invoiceService.ListInvoices(s.GetContext(), &types.InvoiceFilter{
		SplitType: types.InvoiceSplitTypeAsset,
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal(1, resp.Pagination.Total)
	s.Equal(types.InvoiceSplitTypeAsset, resp.Items[0].SplitType)
}

func (s *InvoiceServiceSuite) TestPreviewTotalsRefreshAfterGeneration() {
	s.addAssetWithCharges(2000, 1500)

	before, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.Require().Len(before.PeriodAmounts, 3)
	s.Equal("2000", before.PeriodAmounts[0].Amount.PrintingCharge.String())
	s.Equal("1500", before.PeriodAmounts[0].Amount.MountingCharge.String())

	_, err = s.invoiceService.GenerateSingleInvoice(s.GetContext(), s.testData.campaignID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().NoError(err)

	// Generation billed the one-time charges, so a fresh preview must not
	// keep serving them as pending from the cache.
	after, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.True(after.PeriodAmounts[0].Amount.PrintingCharge.IsZero())
	s.True(after.PeriodAmounts[0].Amount.MountingCharge.IsZero())
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceEmptyCampaign() {
	campaignResp, err := s.campaignService.CreateCampaign(s.GetContext(), &dto.CreateCampaignRequest{
		ClientID:       s.testData.clientID,
		Name:           "Empty",
		StartDate:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		TaxRatePercent: decimal.NewFromInt(18),
		BillingCycle:   types.BillingCycleMonthly,
	})
	s.Require().NoError(err)

	_, err = s.invoiceService.GenerateSingleInvoice(s.GetContext(), campaignResp.ID, &dto.GenerateSingleInvoiceRequest{})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}
