package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"skillcred/backend/cache"
	"skillcred/backend/catalog"
	"skillcred/backend/config"
	"skillcred/backend/database"
	"skillcred/backend/utils"
)

var rootCmd = &cobra.Command{
	Use:   "skillcred",
	Short: "Skill assessment and credentialing engine",
	Long:  "skillcred serves timed skill tests, grades attempts and keeps an upgrade-only badge ledger per user and skill.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Load environment from this file before reading config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(tokenCmd)
}

// runtime holds the shared resources every command starts from.
type runtime struct {
	cfg     *config.Config
	logger  *log.Logger
	db      *gorm.DB
	gateway *database.Gateway
	store   cache.Store
	catalog *catalog.Catalog
}

func loadConfig(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if err := config.LoadEnvFile(path); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat})
	return cfg, logger, nil
}

// bootstrap opens the store and the catalog cache.
func bootstrap(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	var opts []database.Option
	if cfg.DBAppRole != "" {
		opts = append(opts, database.WithRole(cfg.DBAppRole))
	}
	gw := database.NewGateway(db, opts...)

	store, err := cache.New(ctx, cfg.RedisURL, logger)
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		gateway: gw,
		store:   store,
		catalog: catalog.New(gw, store, logger, cfg.ListTestsTTL, cfg.GetTestTTL),
	}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Printf("close cache: %v", err)
	}
	if err := database.Close(r.db); err != nil {
		r.logger.Printf("close database: %v", err)
	}
}
