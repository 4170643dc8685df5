package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/adboardhq/adboard/internal/api/v1"
	"github.com/adboardhq/adboard/internal/cache"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/notification"
	"github.com/adboardhq/adboard/internal/postgres"
	pubsubmemory "github.com/adboardhq/adboard/internal/pubsub/memory"
	"github.com/adboardhq/adboard/internal/repository"
	"github.com/adboardhq/adboard/internal/router"
	"github.com/adboardhq/adboard/internal/service"
	"github.com/adboardhq/adboard/internal/validator"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logr, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	validator.NewValidator()

	db, err := postgres.NewClient(cfg, logr)
	if err != nil {
		logr.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	repos := repository.NewRepositories(db, logr)

	ps := pubsubmemory.NewPubSub(logr)
	defer ps.Close()
	notifier := notification.NewNotifier(ps, cfg, logr)

	appCache := cache.NewInMemoryCache(cfg.Cache.Enabled)

	params := service.ServiceParams{
		Logger:       logr,
		Config:       cfg,
		DB:           db,
		ClientRepo:   repos.Client,
		CampaignRepo: repos.Campaign,
		AssetRepo:    repos.Asset,
		InvoiceRepo:  repos.Invoice,
		Notifier:     notifier,
		Cache:        appCache,
	}

	clientService := service.NewClientService(params)
	campaignService := service.NewCampaignService(params)
	assetService := service.NewAssetService(params)
	ledgerService := service.NewLedgerService(params)
	invoiceService := service.NewInvoiceService(params)

	engine := router.SetupRouter(router.Handlers{
		Client:   v1.NewClientHandler(clientService, logr),
		Campaign: v1.NewCampaignHandler(campaignService, logr),
		Asset:    v1.NewAssetHandler(assetService, ledgerService, logr),
		Invoice:  v1.NewInvoiceHandler(invoiceService, logr),
	}, logr)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: engine,
	}

	go func() {
		logr.Infow("starting server", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Infow("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logr.Errorw("forced shutdown", "error", err)
	}
}
