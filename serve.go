package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"placement-stats/api"
	"placement-stats/config"
	"placement-stats/fetcher"
	"placement-stats/services"
	"placement-stats/storage"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve placement statistics over HTTP",
	Long: `Starts the statistics API. Placements are read from PostgreSQL (as written by
the batch pipeline) or straight from the placements API, depending on STATS_SOURCE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.HTTPPort = servePort
	}

	gin.SetMode(cfg.GinMode)

	var source storage.PlacementSource
	switch cfg.StatsSource {
	case config.SourceAPI:
		source = services.NewUpstreamSource(fetcher.New(cfg, logger), services.NewCleaner(logger))
		logger.Info("Serving statistics from the placements API at %s", cfg.APIBaseURL)
	default:
		store, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			return err
		}
		defer store.Close()
		source = store
		logger.Info("Serving statistics from PostgreSQL")
	}

	cache := services.NewReportCache(cfg.CacheTTL())
	router := api.NewRouter(source, services.NewInsightService(logger), cache, logger, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("Server listening on :%s", cfg.HTTPPort)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error: %v", err)
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error: %v", err)
		return err
	}
	hits, misses := cache.Stats()
	logger.Info("Server stopped (report cache: %d hits, %d misses)", hits, misses)
	return nil
}
