package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	appcheckout "github.com/grocerypos/backend/internal/application/checkout"
	"github.com/grocerypos/backend/internal/infrastructure/event"
	"github.com/grocerypos/backend/internal/infrastructure/logger"
	"github.com/grocerypos/backend/internal/infrastructure/persistence"
	"github.com/grocerypos/backend/internal/infrastructure/printing"
	"github.com/grocerypos/backend/internal/infrastructure/scheduler"
	"github.com/grocerypos/backend/internal/infrastructure/storage"
	"github.com/grocerypos/backend/internal/interfaces/cli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const receiptCleanupJob = "receipt-cleanup"

func shellCmd(opts *options) *cobra.Command {
	var noPrinter, local bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive register",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			term := cli.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			bus := event.NewInMemoryEventBus(e.log)
			controllerOpts := []appcheckout.ControllerOption{
				appcheckout.WithConfirmer(term.Confirmer()),
				appcheckout.WithEventBus(bus),
				appcheckout.WithLogger(e.log),
			}

			if !noPrinter {
				printer, err := printing.NewReceiptPrinterFromConfig(e.cfg.Receipt, e.log)
				if err != nil {
					return fmt.Errorf("init receipt printer: %w", err)
				}
				defer printer.Close()
				controllerOpts = append(controllerOpts, appcheckout.WithReceiptPrinter(printer))

				if e.cfg.Receipt.Retention > 0 {
					sched, err := startReceiptCleanup(printer, e.cfg.Receipt.CleanupSchedule, e.cfg.Receipt.Retention, e.log)
					if err != nil {
						return err
					}
					defer func() {
						stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
						defer cancel()
						_ = sched.Stop(stopCtx)
					}()
				}
			}

			var gateway appcheckout.CatalogGateway = e.client
			source := e.client.BaseURL()
			if local {
				gw, closeDB, err := localGateway(ctx, e)
				if err != nil {
					return err
				}
				defer closeDB()
				gateway, source = gw, "local database "+e.cfg.Database.Driver
			}

			controller := appcheckout.NewController(gateway, controllerOpts...)
			e.log.Info("Register started", zap.String("catalog", source))

			term.Printf("Grocery POS %s - type 'help' for commands\n", Version)
			return cli.NewShell(controller, term,
				cli.WithShellLogger(e.log),
				cli.WithCatalogURL(source),
			).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&noPrinter, "no-printer", false, "Disable receipt printing")
	cmd.Flags().BoolVar(&local, "local", false, "Use the catalog database and image storage directly instead of the HTTP API")
	return cmd
}

// localGateway serves the register from the catalog's own database and
// image storage, for a register on the same machine as the data
func localGateway(ctx context.Context, e *env) (*appcheckout.ServiceGateway, func(), error) {
	gormLog := logger.NewGormLogger(e.log, logger.MapGormLogLevel(e.cfg.Log.Level))
	db, err := persistence.NewDatabase(&e.cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			e.log.Error("Error closing database", zap.Error(err))
		}
	}

	imageStore, err := storage.NewImageStore(ctx, &e.cfg.Storage, e.log)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("init image storage: %w", err)
	}

	products := appcatalog.NewProductService(
		persistence.NewGormProductRepository(db.DB),
		appcatalog.WithServiceLogger(e.log),
	)
	images := appcatalog.NewImageService(imageStore, appcatalog.ImageServiceConfig{
		MaxSize: e.cfg.Storage.MaxUploadSize,
	}, e.log)
	return appcheckout.NewServiceGateway(products, images), closeDB, nil
}

func startReceiptCleanup(printer *printing.ReceiptPrinter, spec string, retention time.Duration, log *zap.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.NewScheduler(scheduler.DefaultSchedulerConfig(), log)
	if err := sched.AddJob(receiptCleanupJob, spec, printer.CleanupTask(retention)); err != nil {
		return nil, fmt.Errorf("schedule receipt cleanup: %w", err)
	}
	sched.Start()
	return sched, nil
}

func productsCmd(opts *options) *cobra.Command {
	var filter appcatalog.ProductListFilter

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			products, err := e.client.SearchProducts(cmd.Context(), filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBARCODE\tNAME\tCATEGORY\tPRICE")
			for _, p := range products {
				barcode := p.BarcodeValue()
				if barcode == "" {
					barcode = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, barcode, p.Name, p.Category, p.PriceMoney().Format())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d products\n", len(products))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Category, "category", "", "Only this category")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Name or barcode contains")
	return cmd
}

func barcodeCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "barcode ID",
		Short: "Save a product's barcode label as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			png, err := e.client.BarcodeLabel(cmd.Context(), id)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("barcode_%d.png", id)
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("write label: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Label written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: barcode_<id>.png)")
	return cmd
}
