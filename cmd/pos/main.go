// Package main provides the pos binary, the cashier's terminal client of
// the catalog service.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/grocerypos/backend/internal/infrastructure/catalogclient"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/grocerypos/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	Version = "0.1.0"
	appName = "pos"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand
type options struct {
	catalogURL string
	logLevel   string
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Grocery point of sale",
		Long: `pos is the cashier's client of the catalog service.

It provides:
- an interactive register with up to five open tabs
- product listing and filtering
- printable barcode labels`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.catalogURL, "catalog-url", "", "Catalog service URL (default: pos.catalog_url)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		shellCmd(opts),
		productsCmd(opts),
		barcodeCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// env is what every subcommand starts from
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	client *catalogclient.Client
}

func setup(opts *options) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.catalogURL != "" {
		cfg.POS.CatalogURL = opts.catalogURL
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	// stdout belongs to the register screen
	logCfg := logger.FromConfig(cfg.Log)
	if out := strings.ToLower(logCfg.Output); out == "" || out == "stdout" {
		logCfg.Output = "stderr"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := catalogclient.New(cfg.POS.CatalogURL,
		catalogclient.WithTimeout(cfg.POS.RequestTimeout),
		catalogclient.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log, client: client}, nil
}
