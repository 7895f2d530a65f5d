package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/go-petr/market-ledger/cmd/httpserver"
	"github.com/go-petr/market-ledger/internal/middleware"
	"github.com/go-petr/market-ledger/pkg/configpkg"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http api",
	Long: `Serve loads the last snapshot, serves the http api and saves a snapshot
every SNAPSHOT_INTERVAL. A final snapshot is saved on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := configpkg.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if config.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must be positive, got %s", config.SnapshotInterval)
	}

	logger := middleware.CreateLogger(config)

	if config.Environement != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithContext(ctx)

	store, err := httpserver.NewStore(ctx, config)
	if err != nil {
		return err
	}

	server, err := httpserver.New(ctx, logger, config, store, httpserver.NewPublisher(config, logger))
	if err != nil {
		store.Close()
		return err
	}
	defer server.Close()

	saved := make(chan error, 1)
	go func() {
		saved <- server.Snapshots.Run(ctx, config.SnapshotInterval)
	}()

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("cannot shutdown server")
		}
	}()

	logger.Info().Str("address", config.ServerAddress).Msg("MARKET LEDGER SERVER HAS STARTED")

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("cannot start server")
	} else {
		err = nil
	}

	stop()

	return errors.Join(err, <-saved)
}
