package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nexustechhub/mdts/internal/config"
	"github.com/nexustechhub/mdts/internal/database"
	mdtsHttp "github.com/nexustechhub/mdts/internal/http"
	locationHandler "github.com/nexustechhub/mdts/internal/http/location"
	productHandler "github.com/nexustechhub/mdts/internal/http/product"
	transferHandler "github.com/nexustechhub/mdts/internal/http/transfer"
	"github.com/nexustechhub/mdts/internal/location"
	locationStore "github.com/nexustechhub/mdts/internal/location/store"
	"github.com/nexustechhub/mdts/internal/product"
	productStore "github.com/nexustechhub/mdts/internal/product/store"
	"github.com/nexustechhub/mdts/internal/transfer"
	transferStore "github.com/nexustechhub/mdts/internal/transfer/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	secret, err := cfg.APISecret()
	if err != nil {
		slog.Error("invalid auth config", "error", err)
		os.Exit(1)
	}

	if secret == "" {
		slog.Warn("AUTH_DISABLED is set, API requests are not authenticated")
	}

	var (
		locationService = location.NewService(locationStore.New(db))
		productService  = product.NewService(productStore.New(db))
		transferService = transfer.NewService(transferStore.New(db), locationService)
	)

	var (
		transferH = transferHandler.NewHandler(transferService, cfg.Transfers.DefaultPerPage, cfg.Transfers.MaxPerPage)
		productH  = productHandler.NewHandler(productService)
		locationH = locationHandler.NewHandler(locationService)
	)

	router := mdtsHttp.New(mdtsHttp.Options{
		JWTSecret:      secret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, transferH, productH, locationH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
