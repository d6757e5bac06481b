package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/controller"
	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/router"
	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/p2p-debt-ledger/src/internal/config"
	"github.com/api-sage/p2p-debt-ledger/src/internal/usecase/services"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(migrateCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	debtRepo := postgres.NewDebtRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	userService := services.NewUserService(accountRepo, debtRepo)
	ledgerService := services.NewLedgerService(accountRepo, debtRepo, transactionRepo)

	userController := controller.NewUserController(userService)
	ledgerController := controller.NewLedgerController(ledgerService)
	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)

	mux := router.New(userController, ledgerController, authMiddleware)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("debt ledger listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
