package repository

import (
	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/domain/campaign"
	"github.com/adboardhq/adboard/internal/domain/client"
	"github.com/adboardhq/adboard/internal/domain/invoice"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/postgres"
	pgrepo "github.com/adboardhq/adboard/internal/repository/postgres"
)

// Repositories bundles every persistence interface behind one constructor.
type Repositories struct {
	Client   client.Repository
	Campaign campaign.Repository
	Asset    asset.Repository
	Invoice  invoice.Repository
}

func NewRepositories(db *postgres.Client, log *logger.Logger) *Repositories {
	return &Repositories{
		Client:   pgrepo.NewClientRepository(db, log),
		Campaign: pgrepo.NewCampaignRepository(db, log),
		Asset:    pgrepo.NewAssetRepository(db, log),
		Invoice:  pgrepo.NewInvoiceRepository(db, log),
	}
}
