package v1

import (
	"net/http"

	"github.com/adboardhq/adboard/internal/api/dto"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/service"
	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignService service.CampaignService
	logger          *logger.Logger
}

func NewCampaignHandler(campaignService service.CampaignService, logger *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		logger:          logger,
	}
}

// @Summary Create a new campaign
// @Description Creates a new campaign for a client
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param campaign body dto.CreateCampaignRequest true "Campaign request"
// @Success 201 {object} dto.CampaignResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.campaignService.CreateCampaign(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get a campaign by ID
// @Description Retrieves a campaign by ID
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.CampaignResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("campaign ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.campaignService.GetCampaign(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a campaign
// @Description Updates an existing campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param campaign body dto.UpdateCampaignRequest true "Campaign update request"
// @Success 200 {object} dto.CampaignResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("campaign ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.campaignService.UpdateCampaign(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List campaigns
// @Description Lists all campaigns for the tenant
// @Tags Campaigns
// @Accept json
// @Produce json
// @Success 200 {object} dto.ListCampaignsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	response, err := h.campaignService.ListCampaigns(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List campaigns by client
// @Description Lists all campaigns belonging to a client
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} dto.ListCampaignsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /clients/{id}/campaigns [get]
func (h *CampaignHandler) ListCampaignsByClient(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("client ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.campaignService.ListCampaignsByClient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update the campaign discount
// @Description Sets the campaign's manual discount, clamped into [0, gross amount]
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param discount body dto.UpdateDiscountRequest true "Discount request"
// @Success 200 {object} dto.CampaignResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns/{id}/discount [put]
func (h *CampaignHandler) UpdateDiscount(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("campaign ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.campaignService.UpdateDiscount(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Preview campaign totals
// @Description Computes the campaign totals and per-period amounts without persisting anything
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param preview body dto.PreviewTotalsRequest false "Preview options"
// @Success 200 {object} dto.CampaignTotalsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns/{id}/totals/preview [post]
func (h *CampaignHandler) PreviewTotals(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("campaign ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.PreviewTotalsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	response, err := h.campaignService.PreviewTotals(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
