package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/controller"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/middleware"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/router"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/notification"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/postgres"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/config"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(ctx, cfg.BizDatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Println("initial migrations completed successfully")

	bizDB, err := postgres.Open(ctx, cfg.BizDatabaseDSN)
	if err != nil {
		log.Fatalf("open biz database: %v", err)
	}
	defer bizDB.Close()

	koreaDB, err := postgres.Open(ctx, cfg.KoreaDatabaseDSN)
	if err != nil {
		log.Fatalf("open korea database: %v", err)
	}
	defer koreaDB.Close()

	ledgerDB, err := postgres.Open(ctx, cfg.LedgerDatabaseDSN)
	if err != nil {
		log.Fatalf("open ledger database: %v", err)
	}
	defer ledgerDB.Close()

	canonicalAdapter := postgres.NewCanonicalAdapter(bizDB)
	regionalAdapter := postgres.NewRegionalAdapter(koreaDB)
	ledgerAdapter := postgres.NewLedgerAdapter(ledgerDB)

	refundLedgerRepo := postgres.NewRefundLedgerRepository(ledgerDB)
	intakeRepo := postgres.NewIntakeRepository(bizDB)
	encryptionService := postgres.NewEncryptionService(bizDB, cfg.EncryptionKey)

	rates := map[domain.Region]decimal.Decimal{}
	for region, rate := range cfg.ExchangeRates {
		rates[domain.Region(region)] = rate
	}
	taxService := services.NewTaxService(rates)

	reconcileService := services.NewReconcileService(
		[]repo_interfaces.SourceAdapter{canonicalAdapter, regionalAdapter, ledgerAdapter},
		services.NewNormalizer(taxService),
		services.NewDedupService(),
		services.NewEnrichService(intakeRepo),
	)

	worksClient := notification.NewWorksClient(cfg.WorksWebhookURL)

	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceCanonicalPayoutStore:    canonicalAdapter,
		domain.SourceRegionalWithdrawalStore: regionalAdapter,
		domain.SourceLegacyLedger:            ledgerAdapter,
	}
	approvalService := services.NewApprovalService(
		reconcileService,
		adapters,
		regionalAdapter,
		refundLedgerRepo,
		worksClient,
	)

	queryService := services.NewWithdrawalQueryService(reconcileService)
	aggregateService := services.NewAggregateService(reconcileService)
	auditService := services.NewAuditService(reconcileService, refundLedgerRepo, intakeRepo)
	exportService := services.NewExportService(reconcileService, encryptionService, taxService, worksClient)

	if _, err := reconcileService.Run(ctx); err != nil {
		log.Fatalf("initial reconciliation pass: %v", err)
	}

	mux := router.New(
		controller.NewWithdrawalController(approvalService, queryService),
		controller.NewReconcileController(reconcileService),
		controller.NewReportController(aggregateService, auditService, exportService, cfg.ExportPassphraseHash),
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("payout reconciler listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
