package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountingapp "github.com/obrafin/backend/internal/application/accounting"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	contractapp "github.com/obrafin/backend/internal/application/contract"
	financeapp "github.com/obrafin/backend/internal/application/finance"
	treasuryapp "github.com/obrafin/backend/internal/application/treasury"
	"github.com/obrafin/backend/internal/domain/worksite"
	"github.com/obrafin/backend/internal/infrastructure/cache"
	"github.com/obrafin/backend/internal/infrastructure/config"
	"github.com/obrafin/backend/internal/infrastructure/logger"
	"github.com/obrafin/backend/internal/infrastructure/persistence"
	httpiface "github.com/obrafin/backend/internal/interfaces/http"
	"github.com/obrafin/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Obrafin backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	incomeRepo := persistence.NewGormIncomeRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	cashboxRepo := persistence.NewGormCashboxRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)

	var workRepo worksite.WorkRepository = persistence.NewGormWorkRepository(db.DB)
	var supplierRepo worksite.SupplierRepository = persistence.NewGormSupplierRepository(db.DB)

	// Master-data cache is optional; the repositories degrade to the
	// database when Redis is unreachable.
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, master-data cache disabled", zap.Error(err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Error closing redis client", zap.Error(err))
				}
			}()
			workRepo = cache.NewCachedWorkRepository(workRepo, redisClient, cfg.Cache.TTL, log)
			supplierRepo = cache.NewCachedSupplierRepository(supplierRepo, redisClient, cfg.Cache.TTL, log)
			log.Info("Master-data cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
		}
	}

	// Application services
	emitter := alertapp.NewEmitter(alertRepo, log)
	alertService := alertapp.NewService(alertRepo, log)
	projectionService := accountingapp.NewProjectionService(db.DB, recordRepo, log)
	ledgerService := contractapp.NewLedgerService(db.DB, contractRepo, emitter, log)
	expenseService := financeapp.NewExpenseService(
		db.DB, expenseRepo, contractRepo, workRepo, supplierRepo,
		ledgerService, projectionService, emitter, log,
	)
	incomeService := financeapp.NewIncomeService(db.DB, incomeRepo, workRepo, projectionService, log)
	cashboxService := treasuryapp.NewCashboxService(db.DB, cashboxRepo, movementRepo, emitter, log)
	monthService := accountingapp.NewMonthService(
		db.DB, recordRepo, expenseRepo, cashboxRepo, contractRepo, emitter, log,
	)

	engine := httpiface.NewRouter(cfg, log, httpiface.Handlers{
		System:     handler.NewSystemHandler(db),
		Expense:    handler.NewExpenseHandler(expenseService),
		Income:     handler.NewIncomeHandler(incomeService),
		Contract:   handler.NewContractHandler(ledgerService),
		Cashbox:    handler.NewCashboxHandler(cashboxService),
		Accounting: handler.NewAccountingHandler(projectionService, monthService),
		Alert:      handler.NewAlertHandler(alertService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
