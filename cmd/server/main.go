// Package main - Entry point for the price-list API server
// Configuration comes from the config file and PRICELIST_* variables only,
// which suits containers better than the CLI's flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"price-list/adapters/hcl"
	"price-list/api"
	"price-list/internal/config"
	"price-list/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "config file")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.LoadWithEnv(cfgPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	c, err := hcl.NewLoader(logging.Named("loader")).Load(cfg.Pricing.Catalog...)
	if err != nil {
		return err
	}

	server := api.NewServer(c, api.Options{
		Version:     version,
		DefaultList: cfg.Pricing.DefaultList,
		Places:      cfg.Pricing.DisplayPlaces,
		Logger:      logging.Named("api"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("price-list server starting", zap.String("version", version), zap.String("addr", cfg.Server.Addr))
	return server.Run(ctx, &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}, cfg.Server.ShutdownTimeout())
}
