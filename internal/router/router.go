package router

import (
	"net/http"

	v1 "github.com/adboardhq/adboard/internal/api/v1"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every route handler the router mounts.
type Handlers struct {
	Client   *v1.ClientHandler
	Campaign *v1.CampaignHandler
	Asset    *v1.AssetHandler
	Invoice  *v1.InvoiceHandler
}

func SetupRouter(handlers Handlers, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestContextMiddleware)
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/v1")

	clients := api.Group("/clients")
	{
		clients.POST("", handlers.Client.CreateClient)
		clients.GET("", handlers.Client.ListClients)
		clients.GET("/:id", handlers.Client.GetClient)
		clients.PUT("/:id", handlers.Client.UpdateClient)
		clients.GET("/:id/campaigns", handlers.Campaign.ListCampaignsByClient)
	}

	campaigns := api.Group("/campaigns")
	{
		campaigns.POST("", handlers.Campaign.CreateCampaign)
		campaigns.GET("", handlers.Campaign.ListCampaigns)
		campaigns.GET("/:id", handlers.Campaign.GetCampaign)
		campaigns.PUT("/:id", handlers.Campaign.UpdateCampaign)
		campaigns.PUT("/:id/discount", handlers.Campaign.UpdateDiscount)
		campaigns.POST("/:id/totals/preview", handlers.Campaign.PreviewTotals)

		campaigns.POST("/:id/assets", handlers.Asset.CreateAsset)
		campaigns.GET("/:id/assets", handlers.Asset.ListAssetsByCampaign)

		campaigns.POST("/:id/invoices/single", handlers.Invoice.GenerateSingleInvoice)
		campaigns.POST("/:id/invoices/monthly", handlers.Invoice.GenerateMonthlyInvoices)
		campaigns.POST("/:id/invoices/assets", handlers.Invoice.GenerateAssetInvoice)
	}

	assets := api.Group("/assets")
	{
		assets.GET("/:id", handlers.Asset.GetAsset)
		assets.PUT("/:id", handlers.Asset.UpdateAsset)
		assets.POST("/:id/ledger/override", handlers.Asset.OverrideLedger)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)
		invoices.POST("/:id/payments", handlers.Invoice.RecordPayment)
	}

	return router
}
