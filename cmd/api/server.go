package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"moneymigo/internal/api/handlers"
	mw "moneymigo/internal/api/middlewares"
	"moneymigo/internal/api/routers"
	"moneymigo/internal/config"
	"moneymigo/internal/repositories/sqlconnect"
	"moneymigo/pkg/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		utils.Logger.Fatal("Config load failed: ", err)
	}

	utils.InitLogger(cfg.Env, cfg.LogLevel, cfg.LogFile)
	if !envLoaded {
		utils.Logger.Warn("No .env file found, using system environment variables")
	}

	if cfg.MigrateOnStart {
		if err := sqlconnect.RunMigrations(cfg.DB); err != nil {
			utils.Logger.Fatal("DB migration failed: ", err)
		}
	}

	if err := sqlconnect.ConnectDb(cfg.DB); err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}
	defer sqlconnect.Close()

	handlers.QueryTimeout = cfg.QueryTimeout

	router := routers.MainRouter()
	secureMux := mw.ApplyMiddlewares(router,
		mw.Recoverer,
		mw.RequestLogger,
		mw.Cors(cfg.CORSOrigins),
		mw.SecurityHeaders,
	)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: secureMux,
	}
	if cfg.TLSEnabled() {
		server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.WithFields(logrus.Fields{"addr": server.Addr, "tls": cfg.TLSEnabled(), "env": cfg.Env}).Info("Server is running")
		if cfg.TLSEnabled() {
			errCh <- server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Error starting the server: ", err)
		}
	case <-ctx.Done():
		utils.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			utils.Logger.WithError(err).Error("Graceful shutdown failed")
		}
	}
}
