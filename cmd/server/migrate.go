package main

import (
	"fmt"

	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/ougirez/zstats/internal/pkg/store/xpgx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dsn := viper.GetString(constants.ViperDatabaseDSNKey)
		if dsn == "" {
			return fmt.Errorf("%s is not configured", constants.ViperDatabaseDSNKey)
		}

		pool, err := xpgx.NewPool(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err = store.Migrate(ctx, pool); err != nil {
			return err
		}

		logger.Info(ctx, "schema is up to date")
		return nil
	},
}
