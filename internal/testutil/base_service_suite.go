package testutil

import (
	"context"
	"time"

	"github.com/adboardhq/adboard/internal/cache"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/domain/asset"
	"github.com/adboardhq/adboard/internal/domain/campaign"
	"github.com/adboardhq/adboard/internal/domain/client"
	"github.com/adboardhq/adboard/internal/domain/invoice"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/adboardhq/adboard/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	ClientRepo   client.Repository
	CampaignRepo campaign.Repository
	AssetRepo    asset.Repository
	InvoiceRepo  invoice.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	stores   Stores
	notifier *RecordingNotifier
	cache    cache.Cache
	logger   *logger.Logger
	config   *config.Configuration
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxTenantID, types.DefaultTenantID)
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		ClientRepo:   NewInMemoryClientStore(),
		CampaignRepo: NewInMemoryCampaignStore(),
		AssetRepo:    NewInMemoryAssetStore(),
		InvoiceRepo:  NewInMemoryInvoiceStore(),
	}
	s.notifier = NewRecordingNotifier()
	s.cache = cache.NewInMemoryCache(true)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.ClientRepo.(*InMemoryClientStore).Clear()
	s.stores.CampaignRepo.(*InMemoryCampaignStore).Clear()
	s.stores.AssetRepo.(*InMemoryAssetStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.notifier.Clear()
	s.cache.Flush(s.ctx)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetNotifier returns the recording notifier
func (s *BaseServiceTestSuite) GetNotifier() *RecordingNotifier {
	return s.notifier
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
