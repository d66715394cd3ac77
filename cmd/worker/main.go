package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

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

	pool, err := db.Connect(ctx, db.Config{
		DSN:      cfg.PGDSN,
		MaxConns: cfg.PGMaxConns,
		MinConns: cfg.PGMinConns,
	})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cache.Config{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := audit.NewLogger(pool)

	accountsService := accounts.NewService(accounts.NewRepository(pool))
	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger)
	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo)
	companyService := company.NewService(company.NewRepository(pool))
	rateSource := rates.NewSource(pool)

	aggregator := balances.NewAggregator(balances.NewRepository(pool))
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(accountsService, aggregator, documentsRepo, reportCache)

	feedProvider := bankfeed.NewHTTPProvider(cfg.BankFeedURL, http.DefaultClient)
	bankfeedService := bankfeed.NewService(bankfeed.NewRepository(pool), feedProvider, accountsService, logger)

	postingService := posting.NewService(
		posting.NewRepository(pool),
		accountsService,
		documentsRepo,
		rateSource,
		companyService,
		auditLogger,
		reportsService,
		bankfeedService,
	)

	generator := jobs.NewGenerator(documentsService, postingService, companyService, logger)
	sweep := jobs.NewIntegritySweep(ledgerService, companyService, logger)

	recurringTask, err := jobs.NewRecurringGenerateTask(jobs.RecurringGeneratePayload{})
	if err != nil {
		logger.Error("build recurring task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewLedgerIntegrityTask(jobs.LedgerIntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeRecurringGenerate, Handler: jobs.HandleRecurringGenerate(generator)},
			{Type: jobs.TaskTypeLedgerIntegrity, Handler: jobs.HandleLedgerIntegrity(sweep)},
			{Type: jobs.TaskTypeBankFeedSync, Handler: jobs.HandleBankFeedSync(bankfeedService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: recurringTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
