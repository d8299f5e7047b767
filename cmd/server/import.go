package main

import (
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run every configured importer once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		results, err := newImporter(st).ImportAll(ctx)
		if err != nil {
			return err
		}

		for _, r := range results {
			logger.Infof(ctx, "imported %s: %d records, total %s", r.Dataset, r.Records, r.Total.String())
		}
		return nil
	},
}
