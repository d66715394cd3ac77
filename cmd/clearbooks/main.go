package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
	"github.com/clearbooks-io/clearbooks/internal/app"
	"github.com/clearbooks-io/clearbooks/internal/audit"
	"github.com/clearbooks-io/clearbooks/internal/balances"
	"github.com/clearbooks-io/clearbooks/internal/bankfeed"
	"github.com/clearbooks-io/clearbooks/internal/company"
	"github.com/clearbooks-io/clearbooks/internal/documents"
	"github.com/clearbooks-io/clearbooks/internal/ledger"
	"github.com/clearbooks-io/clearbooks/internal/platform/cache"
	"github.com/clearbooks-io/clearbooks/internal/platform/db"
	"github.com/clearbooks-io/clearbooks/internal/posting"
	"github.com/clearbooks-io/clearbooks/internal/rates"
	"github.com/clearbooks-io/clearbooks/internal/reports"
	"github.com/clearbooks-io/clearbooks/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.Connect(ctx, db.Config{
		DSN:      cfg.PGDSN,
		MaxConns: cfg.PGMaxConns,
		MinConns: cfg.PGMinConns,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Reports fall back to uncached builds when redis is down.
	var reportCache *reports.Cache
	redisClient, err := cache.Connect(ctx, cache.Config{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
	} else {
		reportCache = reports.NewCache(redisClient, cfg.ReportCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := audit.NewLogger(dbpool)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	documentsRepo := documents.NewRepository(dbpool)
	documentsService := documents.NewService(documentsRepo)
	documentsHandler := documents.NewHandler(logger, documentsService)

	balancesRepo := balances.NewRepository(dbpool)
	aggregator := balances.NewAggregator(balancesRepo)

	reportsService := reports.NewService(accountsService, aggregator, documentsRepo, reportCache)
	reportsService.FiscalYearStart = time.Month(cfg.FiscalYearStartMonth)
	reportsHandler := reports.NewHandler(logger, reportsService)

	feedProvider := bankfeed.NewHTTPProvider(cfg.BankFeedURL, http.DefaultClient)
	bankfeedRepo := bankfeed.NewRepository(dbpool)
	bankfeedService := bankfeed.NewService(bankfeedRepo, feedProvider, accountsService, logger)
	bankfeedHandler := bankfeed.NewHandler(logger, bankfeedService)

	companyService := company.NewService(company.NewRepository(dbpool))
	rateSource := rates.NewSource(dbpool)

	postingRepo := posting.NewRepository(dbpool)
	postingService := posting.NewService(
		postingRepo,
		accountsService,
		documentsRepo,
		rateSource,
		companyService,
		auditLogger,
		reportsService,
		bankfeedService,
	)
	postingHandler := posting.NewHandler(logger, postingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AccountsHandler:  accountsHandler,
		LedgerHandler:    ledgerHandler,
		DocumentsHandler: documentsHandler,
		PostingHandler:   postingHandler,
		ReportsHandler:   reportsHandler,
		BankFeedHandler:  bankfeedHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
