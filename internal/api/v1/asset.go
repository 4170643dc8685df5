package v1

import (
	"net/http"

	"github.com/adboardhq/adboard/internal/api/dto"
	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/service"
	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	assetService  service.AssetService
	ledgerService service.LedgerService
	logger        *logger.Logger
}

func NewAssetHandler(assetService service.AssetService, ledgerService service.LedgerService, logger *logger.Logger) *AssetHandler {
	return &AssetHandler{
		assetService:  assetService,
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// @Summary Add an asset to a campaign
// @Description Adds a hoarding or display site to the campaign
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param asset body dto.CreateAssetRequest true "Asset request"
// @Success 201 {object} dto.AssetResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns/{id}/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	campaignID := c.Param("id")
	if campaignID == "" {
		c.Error(ierr.NewError("campaign ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.assetService.CreateAsset(c.Request.Context(), campaignID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get an asset by ID
// @Description Retrieves a campaign asset by ID
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} dto.AssetResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("asset ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.assetService.GetAsset(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update an asset
// @Description Updates an existing campaign asset
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Param asset body dto.UpdateAssetRequest true "Asset update request"
// @Success 200 {object} dto.AssetResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("asset ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.assetService.UpdateAsset(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List campaign assets
// @Description Lists all assets on a campaign
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.ListAssetsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /campaigns/{id}/assets [get]
func (h *AssetHandler) ListAssetsByCampaign(c *gin.Context) {
	campaignID := c.Param("id")
	if campaignID == "" {
		c.Error(ierr.NewError("campaign ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.assetService.ListAssetsByCampaign(c.Request.Context(), campaignID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Override the asset billing ledger
// @Description Unmarks an invoiced month or resets a one-time charge flag; requires a reason and is logged with the operator identity
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Param override body dto.LedgerOverrideRequest true "Ledger override request"
// @Success 204
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /assets/{id}/ledger/override [post]
func (h *AssetHandler) OverrideLedger(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("asset ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.LedgerOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.ledgerService.Override(c.Request.Context(), id, &req); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
