// @title Rintintin API
// @version 1.0
// @description Marketplace de cuidadores de mascotas.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rintintin/internal/adapters/auth/jwt"
	pg "rintintin/internal/adapters/storage/postgres"
	"rintintin/internal/config"
	"rintintin/internal/platform/logger"
	"rintintin/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}

func run(cfg config.App, log logger.Logger) error {
	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET no configurado, usando el secreto de desarrollo", nil)
	}

	signer, err := jwt.NewSigner(jwt.Config{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL, Issuer: cfg.AppName})
	if err != nil {
		return err
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.DBAutoMigrate {
			if err := pg.Migrate(db); err != nil {
				return err
			}
		}
		log.Info("using postgres storage", nil)
	} else {
		log.Info("DB_DSN vacío, usando storage en memoria", nil)
	}

	h, err := router.NewRouter(router.Options{
		Config: cfg,
		Logger: log,
		Tokens: signer,
		DB:     db,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
