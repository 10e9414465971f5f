// Package main provides the entry point for the JOSAA preference HTTP
// service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JARAWA/JOSAA-preference/internal/api"
	"github.com/JARAWA/JOSAA-preference/internal/config"
	"github.com/JARAWA/JOSAA-preference/internal/dataset"
	"github.com/JARAWA/JOSAA-preference/internal/logger"
	"github.com/JARAWA/JOSAA-preference/internal/predictor"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLogger  *logrus.Logger
	store      *dataset.Store
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve JOSAA admission-preference predictions over HTTP",
	Long:  `Loads the JOSAA cutoff dataset and serves ranked college/branch preference lists with admission-probability estimates.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return fmt.Errorf("failed to setup service: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadAndValidate(configFile)
	if err != nil {
		return err
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLogger.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Info("Starting JOSAA preference service")

	store = dataset.NewStore(buildSource(), cfg.CacheTTL(), appLogger)
	return nil
}

func buildSource() dataset.Source {
	if cfg.Dataset.URL != "" {
		clientCfg := dataset.DefaultHTTPClientConfig()
		clientCfg.Timeout = time.Duration(cfg.Dataset.HTTPTimeoutSeconds) * time.Second
		clientCfg.MaxRetries = cfg.Dataset.MaxRetries
		clientCfg.RateLimit = cfg.Dataset.RateLimitPerSecond
		client := dataset.NewRateLimitedClient(clientCfg, appLogger)
		return dataset.NewRemoteSource(client, cfg.Dataset.URL, appLogger)
	}
	return dataset.NewFileSource(cfg.Dataset.Path)
}

func runServer() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer store.Close()

	pipeline := predictor.NewPipeline(predictor.SelectionPolicy(cfg.Pipeline.Selection), appLogger)
	server := api.NewServer(cfg, appLogger, store, pipeline)

	// Warm the dataset cache; the service still starts if the source is down
	// and reports not-ready until a refresh succeeds.
	if _, err := store.Refresh(ctx); err != nil {
		appLogger.WithError(err).Warn("Initial dataset load failed")
	} else {
		server.SetReady(true)
	}

	if cfg.Dataset.RefreshSchedule != "" {
		if err := store.StartAutoRefresh(cfg.Dataset.RefreshSchedule); err != nil {
			appLogger.WithError(err).Fatal("Failed to schedule dataset refresh")
		}
	}

	if err := server.Start(ctx); err != nil {
		appLogger.WithError(err).Fatal("Server exited with error")
	}
	appLogger.Info("Server stopped")
}
