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

type CampaignServiceSuite struct {
	testutil.BaseServiceTestSuite
	campaignService CampaignService
	assetService    AssetService

	testData struct {
		clientID   string
		campaignID string
		assetID    string
	}
}

func TestCampaignService(t *testing.T) {
	suite.Run(t, new(CampaignServiceSuite))
}

func (s *CampaignServiceSuite) SetupTest() {
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
	s.campaignService = NewCampaignService(params)
	s.assetService = NewAssetService(params)

	clientService := NewClientService(params)
	clientResp, err := clientService.CreateClient(s.GetContext(), &dto.CreateClientRequest{
		Name: "Acme Beverages",
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

func (s *CampaignServiceSuite) TestCreateCampaignRequiresClient() {
	_, err := s.campaignService.CreateCampaign(s.GetContext(), &dto.CreateCampaignRequest{
		ClientID:     "client_does_not_exist",
		Name:         "Orphan",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CampaignServiceSuite) TestPreviewTotals() {
	resp, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)

	s.Equal("57000", resp.DisplayCost.String())
	s.Equal("57000", resp.GrossAmount.String())
	s.Equal("10260", resp.TaxAmount.String())
	s.Equal("67260", resp.GrandTotal.String())
	s.Equal("30000", resp.MonthlyDisplayRent.String())
	s.Equal(3, resp.TotalMonths)
	s.Equal(1, resp.AssetCount)

	s.Require().Len(resp.PeriodAmounts, 3)
	s.Equal("17000", resp.PeriodAmounts[0].Amount.BaseRent.String())
	s.Equal("30000", resp.PeriodAmounts[1].Amount.BaseRent.String())
	s.Equal("10000", resp.PeriodAmounts[2].Amount.BaseRent.String())
}

func (s *CampaignServiceSuite) TestPreviewTotalsWithDiscountOverride() {
	override := decimal.NewFromInt(5700)
	resp, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, &dto.PreviewTotalsRequest{
		DiscountOverride: &override,
	})
	s.Require().NoError(err)
	s.Equal("5700", resp.DiscountAmount.String())
	s.Equal("51300", resp.TaxableAmount.String())

	// The override is a what-if; the stored campaign is untouched.
	campaignResp, err := s.campaignService.GetCampaign(s.GetContext(), s.testData.campaignID)
	s.Require().NoError(err)
	s.True(campaignResp.ManualDiscountAmount.IsZero())
}

func (s *CampaignServiceSuite) TestPreviewTotalsCaching() {
	first, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.Equal("57000", first.DisplayCost.String())

	// A second identical preview is served from cache.
	again, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.Equal(first.DisplayCost.String(), again.DisplayCost.String())

	// An asset change through the service invalidates the cached totals.
	newRate := decimal.NewFromInt(60000)
	_, err = s.assetService.UpdateAsset(s.GetContext(), s.testData.assetID, &dto.UpdateAssetRequest{
		NegotiatedMonthlyRate: &newRate,
	})
	s.Require().NoError(err)

	updated, err := s.campaignService.PreviewTotals(s.GetContext(), s.testData.campaignID, nil)
	s.Require().NoError(err)
	s.Equal("114000", updated.DisplayCost.String())
}

func (s *CampaignServiceSuite) TestUpdateDiscount() {
	resp, err := s.campaignService.UpdateDiscount(s.GetContext(), s.testData.campaignID, &dto.UpdateDiscountRequest{
		DiscountAmount: decimal.NewFromInt(5000),
		Reason:         "volume deal",
	})
	s.Require().NoError(err)
	s.Equal("5000", resp.ManualDiscountAmount.String())
	s.Equal("volume deal", resp.ManualDiscountReason)
}

func (s *CampaignServiceSuite) TestUpdateDiscountClampsToGross() {
	resp, err := s.campaignService.UpdateDiscount(s.GetContext(), s.testData.campaignID, &dto.UpdateDiscountRequest{
		DiscountAmount: decimal.NewFromInt(999999),
	})
	s.Require().NoError(err)
	s.Equal("57000", resp.ManualDiscountAmount.String())

	resp, err = s.campaignService.UpdateDiscount(s.GetContext(), s.testData.campaignID, &dto.UpdateDiscountRequest{
		DiscountAmount: decimal.NewFromInt(-100),
	})
	s.Require().NoError(err)
	s.True(resp.ManualDiscountAmount.IsZero())
}

func (s *CampaignServiceSuite) TestListCampaignsByClient() {
	_, err := s.campaignService.CreateCampaign(s.GetContext(), &dto.CreateCampaignRequest{
		ClientID:     s.testData.clientID,
		Name:         "Winter Launch",
		StartDate:    time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		BillingCycle: types.BillingCycleSingle,
	})
	s.Require().NoError(err)

	resp, err := s.campaignService.ListCampaignsByClient(s.GetContext(), s.testData.clientID)
	s.Require().NoError(err)
	s.Equal(2, resp.Total)
}
