package service

import (
	"testing"
	"time"

	"github.com/adboardhq/adboard/internal/api/dto"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/testutil"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	ledgerService   LedgerService
	campaignService CampaignService

	testData struct {
		campaignID string
		assetID    string
	}
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
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
	s.ledgerService = NewLedgerService(params)
	s.campaignService = NewCampaignService(params)

	clientService := NewClientService(params)
	clientResp, err := clientService.CreateClient(s.GetContext(), &dto.CreateClientRequest{Name: "Acme Beverages"})
	s.Require().NoError(err)

	campaignResp, err := s.campaignService.CreateCampaign(s.GetContext(), &dto.CreateCampaignRequest{
		ClientID:     clientResp.ID,
		Name:         "Summer Launch",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Require().NoError(err)
	s.testData.campaignID = campaignResp.ID

	rate := decimal.NewFromInt(10000)
	assetService := NewAssetService(params)
	assetResp, err := assetService.CreateAsset(s.GetContext(), campaignResp.ID, &dto.CreateAssetRequest{
		SiteName:              "MG Road Hoarding",
		NegotiatedMonthlyRate: &rate,
		PrintingCharge:        decimal.NewFromInt(2000),
	})
	s.Require().NoError(err)
	s.testData.assetID = assetResp.ID
}

func (s *LedgerServiceSuite) TestMarkMonthInvoicedIsIdempotent() {
	invoiced, err := s.ledgerService.HasInvoicedMonth(s.GetContext(), s.testData.assetID, "2024-01")
	s.Require().NoError(err)
	s.False(invoiced)

	s.Require().NoError(s.ledgerService.MarkMonthInvoiced(s.GetContext(), s.testData.assetID, "2024-01"))
	s.Require().NoError(s.ledgerService.MarkMonthInvoiced(s.GetContext(), s.testData.assetID, "2024-01"))

	invoiced, err = s.ledgerService.HasInvoicedMonth(s.GetContext(), s.testData.assetID, "2024-01")
	s.Require().NoError(err)
	s.True(invoiced)

	a, err := s.GetStores().AssetRepo.Get(s.GetContext(), s.testData.assetID)
	s.Require().NoError(err)
	s.Len(a.InvoicedMonths, 1)
}

func (s *LedgerServiceSuite) TestMarkChargeBilledIsIdempotent() {
	billed, err := s.ledgerService.IsChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting)
	s.Require().NoError(err)
	s.False(billed)

	s.Require().NoError(s.ledgerService.MarkChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting))
	s.Require().NoError(s.ledgerService.MarkChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting))

	billed, err = s.ledgerService.IsChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting)
	s.Require().NoError(err)
	s.True(billed)
}

func (s *LedgerServiceSuite) TestMarkChargeBilledRejectsUnknownType() {
	err := s.ledgerService.MarkChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeType("ELECTRICITY"))
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceSuite) TestOverrideUnmarksMonth() {
	s.Require().NoError(s.ledgerService.MarkMonthInvoiced(s.GetContext(), s.testData.assetID, "2024-02"))

	monthKey := types.MonthKey("2024-02")
	err := s.ledgerService.Override(s.GetContext(), s.testData.assetID, &dto.LedgerOverrideRequest{
		MonthKey: &monthKey,
		Reason:   "invoice cancelled, month must be rebillable",
	})
	s.Require().NoError(err)

	invoiced, err := s.ledgerService.HasInvoicedMonth(s.GetContext(), s.testData.assetID, "2024-02")
	s.Require().NoError(err)
	s.False(invoiced)
}

func (s *LedgerServiceSuite) TestOverrideUnmarksCharge() {
	s.Require().NoError(s.ledgerService.MarkChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting))

	chargeType := types.ChargeTypePrinting
	err := s.ledgerService.Override(s.GetContext(), s.testData.assetID, &dto.LedgerOverrideRequest{
		ChargeType: &chargeType,
		Reason:     "printing rebilled on corrected invoice",
	})
	s.Require().NoError(err)

	billed, err := s.ledgerService.IsChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting)
	s.Require().NoError(err)
	s.False(billed)
}

func (s *LedgerServiceSuite) TestMarkChargeBilledRefreshesTotalsPreview() {
	before, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.Require().NotEmpty(before.PeriodAmounts)
	s.Equal("2000", before.PeriodAmounts[0].Amount.PrintingCharge.String())

	s.Require().NoError(s.ledgerService.MarkChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting))

	after, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.True(after.PeriodAmounts[0].Amount.PrintingCharge.IsZero())
}

func (s *LedgerServiceSuite) TestOverrideRefreshesTotalsPreview() {
	s.Require().NoError(s.ledgerService.MarkChargeBilled(s.GetContext(), s.testData.assetID, types.ChargeTypePrinting))

	billed, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.True(billed.PeriodAmounts[0].Amount.PrintingCharge.IsZero())

	chargeType := types.ChargeTypePrinting
	s.Require().NoError(s.ledgerService.Override(s.GetContext(), s.testData.assetID, &dto.LedgerOverrideRequest{
		ChargeType: &chargeType,
		Reason:     "printing must be rebilled on the corrected invoice",
	}))

	after, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.Equal("2000", after.PeriodAmounts[0].Amount.PrintingCharge.String())
}

func (s *LedgerServiceSuite) TestOverrideRequiresTarget() {
	err := s.ledgerService.Override(s.GetContext(), s.testData.assetID, &dto.LedgerOverrideRequest{
		Reason: "no target given",
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceSuite) TestOverrideRequiresReason() {
	monthKey := types.MonthKey("2024-01")
	err := s.ledgerService.Override(s.GetContext(), s.testData.assetID, &dto.LedgerOverrideRequest{
		MonthKey: &monthKey,
	})
	s.Require().Error(err)
}
