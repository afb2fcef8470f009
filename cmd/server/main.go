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

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/ledger-settlement/internal/adapter/http/controller"
	"github.com/api-sage/ledger-settlement/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-settlement/internal/adapter/http/router"
	"github.com/api-sage/ledger-settlement/internal/adapter/repository/postgres"
	"github.com/api-sage/ledger-settlement/internal/config"
	"github.com/api-sage/ledger-settlement/internal/logger"
	"github.com/api-sage/ledger-settlement/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(startupCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	store := postgres.NewLedger(db)
	accountService := services.NewAccountService(store)
	requestService := services.NewRequestService(store, accountService)
	ledgerService := services.NewLedgerService(store)

	if err := services.NewBankInitializer(accountService).Init(startupCtx); err != nil {
		log.Fatalf("initialize bank accounts: %v", err)
	}

	transactor := services.NewTransactor(store)
	coordinator := services.NewCoordinator(
		cfg.WorkerCount,
		cfg.PollInitialDelay,
		cfg.PollPeriod,
		cfg.ShutdownGrace,
		requestService,
		transactor,
	)
	transactor.Start()
	coordinator.Start()

	mux := router.New(
		controller.NewAccountController(accountService, ledgerService),
		controller.NewTransferRequestController(requestService),
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey),
	)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", logger.Fields{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		// Stop the intake surface first, then drain the settlement pipeline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		coordinator.Stop()
		transactor.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped", nil)
}
