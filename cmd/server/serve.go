package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ougirez/zstats/internal/api"
	"github.com/ougirez/zstats/internal/pkg/config"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/ougirez/zstats/internal/pkg/storage"
	"github.com/ougirez/zstats/internal/service/importer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().String("cron", "", "re-import schedule, e.g. \"@daily\"")

	_ = viper.BindPFlag(constants.ViperServerAddrKey, serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(constants.ViperImportCronKey, serveCmd.Flags().Lookup("cron"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	files := storage.NewOS(viper.GetString(constants.ViperStorageRootKey), viper.GetString(constants.ViperStorageURLKey))
	imports := newImporter(st)

	svc, err := api.NewAPIService(api.Config{
		CORSOrigins:    viper.GetStringSlice(constants.ViperCORSOriginsKey),
		RequestTimeout: viper.GetDuration(constants.ViperRequestTimeout),
		LogLevel:       viper.GetString(constants.ViperLogLevelKey),
		Domains:        config.LoadDomains(viper.GetViper()),
	}, st, files, imports)
	if err != nil {
		return err
	}

	if schedule := viper.GetString(constants.ViperImportCronKey); schedule != "" {
		scheduler, err := importer.NewScheduler(imports, schedule, time.Hour)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Infof(ctx, "scheduled imports: %s", schedule)
	}

	addr := viper.GetString(constants.ViperServerAddrKey)
	errCh := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "listening on %s", addr)
		errCh <- svc.Serve(addr)
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return svc.Shutdown(shutdownCtx)
}
