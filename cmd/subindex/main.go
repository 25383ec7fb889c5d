package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goran-ethernal/subindex/internal/api"
	"github.com/goran-ethernal/subindex/internal/codec"
	"github.com/goran-ethernal/subindex/internal/common"
	"github.com/goran-ethernal/subindex/internal/config"
	"github.com/goran-ethernal/subindex/internal/db"
	"github.com/goran-ethernal/subindex/internal/decoder"
	"github.com/goran-ethernal/subindex/internal/filter"
	"github.com/goran-ethernal/subindex/internal/ingest"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/metrics"
	"github.com/goran-ethernal/subindex/internal/migrations"
	"github.com/goran-ethernal/subindex/internal/source"
	"github.com/goran-ethernal/subindex/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	pkgconfig "github.com/goran-ethernal/subindex/pkg/config"
)

const version = "1.0.0"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "subindex",
	Short: "subindex - finalized block indexer",
	Long: `subindex follows a chain's finalized blocks through a light-client
gateway, decodes their extrinsics and events, and maintains a portable
SQLite index that stays gap-free from the configured start block. A
read-only HTTP API serves the indexed blocks.`,
	Version: version,
	RunE:    runIndexer,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration file JSON schema",
	Long:  `Print the JSON Schema of the configuration file, suitable for editor validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := pkgconfig.Schema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(schemaCmd)
}

func runIndexer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logCfg logger.LoggingConfig
	if cfg.Logging != nil {
		logCfg = cfg.Logging
	}
	log := logger.NewComponentLoggerFromConfig(common.ComponentIngester, logCfg)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Shutting down gracefully...")
		cancel()
	}()

	// Initialize metrics server if enabled
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics, log)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(context.Background()); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	// Run migrations
	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg.DB.Path); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database
	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	// Initialize maintenance coordinator
	dbMaintenance := db.NewMaintenanceCoordinator(
		cfg.DB.Path,
		database,
		cfg.DB.Maintenance,
		logger.NewComponentLoggerFromConfig(common.ComponentMaintenance, logCfg),
	)
	if err := dbMaintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start database maintenance: %w", err)
	}
	defer func() {
		if err := dbMaintenance.Stop(); err != nil {
			log.Warnf("Failed to stop database maintenance: %v", err)
		}
	}()

	// Initialize block store
	blockStore := store.NewBlockStore(database,
		dbMaintenance,
		logger.NewComponentLoggerFromConfig(common.ComponentBlockStore, logCfg),
	)

	logStartupHead(ctx, blockStore, log, cfg.Chain.Name)

	// Initialize sync collaborator client
	client := source.NewClient(cfg.Source,
		logger.NewComponentLoggerFromConfig(common.ComponentSource, logCfg),
	)

	log.Info("Fetching runtime metadata...")
	meta, err := client.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch runtime metadata: %w", err)
	}
	log.Infof("Runtime metadata loaded: spec version %d, %d pallets", meta.SpecVersion, len(meta.Pallets))

	// Initialize decoder with the exclusion filter
	dec := decoder.New(codec.NewMetadataCodec(meta), filter.New(cfg.Exclude))

	// Initialize ingester
	ingester := ingest.New(client, dec, blockStore, cfg.Chain.StartBlock,
		logger.NewComponentLoggerFromConfig(common.ComponentIngester, logCfg),
	)

	g, gctx := errgroup.WithContext(ctx)

	// Start API server if enabled
	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, blockStore, ingester, cfg.Chain.Name,
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, logCfg),
		)
		g.Go(func() error {
			return apiServer.Start(gctx)
		})
	}

	// Start ingestion
	log.Infof("Starting ingestion for chain %q from block %d", cfg.Chain.Name, cfg.Chain.StartBlock)
	g.Go(func() error {
		return ingester.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("indexer failed: %w", err)
	}

	log.Info("subindex stopped successfully")
	return nil
}

// logStartupHead reports where the index left off, so restarts make the
// catch-up range visible up front.
func logStartupHead(ctx context.Context, blockStore *store.BlockStore, log *logger.Logger, chain string) {
	head, err := blockStore.GetHead(ctx)
	if errors.Is(err, store.ErrNotFound) {
		log.Infof("Empty index for chain %q; starting fresh", chain)
		return
	}
	if err != nil {
		log.Warnf("Failed to read stored head: %v", err)
		return
	}

	log.Infof("Latest indexed block: %d (%s)", head.Number, head.Hash.Hex())
}
