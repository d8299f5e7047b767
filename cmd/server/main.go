package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ougirez/zstats/internal/pkg/config"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/ougirez/zstats/internal/pkg/store/memstore"
	"github.com/ougirez/zstats/internal/pkg/store/xpgx"
	"github.com/ougirez/zstats/internal/service/importer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	inMemory   bool
)

var rootCmd = &cobra.Command{
	Use:           "zstats",
	Short:         "Zambian provincial statistics backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.Init(viper.GetString(constants.ViperLogLevelKey), viper.GetBool(constants.ViperLogDevelKey)); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use the in-memory store instead of postgres")
	rootCmd.PersistentFlags().String("dsn", "", "postgres connection string")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag(constants.ViperDatabaseDSNKey, rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindPFlag(constants.ViperLogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, importCmd, migrateCmd, tokenCmd)
}

// openStore connects to postgres, or returns an empty in-memory store when
// --memory is set. The returned func releases the connection.
func openStore(ctx context.Context) (store.Store, func(), error) {
	if inMemory {
		logger.Warn(ctx, "using in-memory store, data is lost on exit")
		return memstore.NewStore(), func() {}, nil
	}

	dsn := viper.GetString(constants.ViperDatabaseDSNKey)
	if dsn == "" {
		return nil, nil, fmt.Errorf("%s is not configured", constants.ViperDatabaseDSNKey)
	}

	pool, err := xpgx.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	return store.NewStore(pool), pool.Close, nil
}

func newImporter(st store.Store) *importer.Service {
	cfg := config.LoadImporter(viper.GetViper())
	return importer.NewService(st, importer.Config{
		CDFURL:         cfg.CDFURL,
		CropRankingURL: cfg.CropRankingURL,
		CDFProvinces:   cfg.CDFProvinces,
		CDFYear:        cfg.CDFYear,
		MaxRetries:     cfg.MaxRetries,
	}, importer.WithRetryInterval(time.Second))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
