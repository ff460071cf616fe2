package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mamgad/DVBLab/internal/adapter/http/controller"
	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
	"github.com/mamgad/DVBLab/internal/adapter/http/router"
	"github.com/mamgad/DVBLab/internal/adapter/repository/implementations"
	"github.com/mamgad/DVBLab/internal/config"
	"github.com/mamgad/DVBLab/internal/logger"
	"github.com/mamgad/DVBLab/internal/password"
	"github.com/mamgad/DVBLab/internal/seed"
	"github.com/mamgad/DVBLab/internal/token"
	"github.com/mamgad/DVBLab/internal/usecase"
	"github.com/mamgad/DVBLab/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := implementations.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := implementations.RunMigrations(ctx, db, migrations.FS, cfg.DatabaseDriver); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := implementations.NewUserRepository(db)
	transferRepo := implementations.NewTransferRepository(db)
	auditRepo := implementations.NewAuditRepository(db)

	hasher := password.NewHasher(cfg.BcryptCost, cfg.UnsafeMode)
	if cfg.UnsafeMode {
		logger.Info("unsafe mode enabled: legacy digests and unrestricted password resets are active", nil)
	}

	if cfg.SeedDemoData {
		if err := seed.Run(ctx, userRepo, transferRepo, hasher, time.Now().UTC()); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	auditService := usecase.NewAuditService(auditRepo)
	accountService := usecase.NewAccountService(userRepo, hasher, auditService, cfg.UnsafeMode)
	transferService := usecase.NewTransferService(transferRepo, auditService)

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := middleware.NewAuthenticator(issuer, userRepo)

	handler := router.New(
		authenticator,
		cfg.CORSAllowedOrigins,
		controller.NewAuthController(accountService, issuer),
		controller.NewProfileController(accountService),
		controller.NewTransferController(transferService),
	)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", logger.Fields{
			"addr":   cfg.ListenAddr,
			"driver": cfg.DatabaseDriver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
