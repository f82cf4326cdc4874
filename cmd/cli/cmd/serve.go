// Package cmd - serve command
package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"price-list/api"
	"price-list/internal/config"
	"price-list/internal/logging"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pricing API over HTTP",
	Long: `Start the HTTP API. The price book is loaded once at startup and
reloaded on SIGHUP; a reload that fails keeps the previous price book.

Endpoints:
  POST /compute
  GET  /price-lists
  GET  /price-lists/{id}
  GET  /health
  GET  /version`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.Named("api")

	c, err := loadCatalog()
	if err != nil {
		return err
	}

	server := api.NewServer(c, api.Options{
		Version:     Version,
		DefaultList: cfg.Pricing.DefaultList,
		Places:      cfg.Pricing.DisplayPlaces,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reloadOnHangup(ctx, server, logger)

	return server.Run(ctx, &http.Server{
		Addr:         pick(serveAddr, cfg.Server.Addr),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}, cfg.Server.ShutdownTimeout())
}

func reloadOnHangup(ctx context.Context, server *api.Server, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			c, err := loadCatalog()
			if err != nil {
				logger.Error("price book reload failed, keeping previous", zap.Error(err))
				continue
			}
			server.SetCatalog(c)
			logger.Info("price book reloaded")
		}
	}
}
