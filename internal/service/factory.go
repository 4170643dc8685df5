package service

import (
	"github.com/adboardhq/adboard/internal/cache"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/domain/campaign"
	"github.com/adboardhq/adboard/internal/domain/client"
	"github.com/adboardhq/adboard/internal/domain/invoice"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/notification"
	"github.com/adboardhq/adboard/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     *postgres.Client

	// Repositories
	ClientRepo   client.Repository
	CampaignRepo campaign.Repository
	AssetRepo    asset.Repository
	InvoiceRepo  invoice.Repository

	Notifier notification.Notifier
	Cache    cache.Cache
}
