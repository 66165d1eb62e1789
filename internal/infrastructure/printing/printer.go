package printing

import (
	"context"
	"fmt"
	"time"

	appcheckout "github.com/grocerypos/backend/internal/application/checkout"
	"github.com/grocerypos/backend/internal/domain/checkout"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/grocerypos/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReceiptPrinter renders a paid tab's receipt and writes it to storage
type ReceiptPrinter struct {
	renderer Renderer
	storage  Storage
	store    StoreInfo
	logger   *zap.Logger
}

// PrinterOption configures a ReceiptPrinter
type PrinterOption func(*ReceiptPrinter)

// WithPrinterLogger sets the logger
func WithPrinterLogger(logger *zap.Logger) PrinterOption {
	return func(p *ReceiptPrinter) {
		p.logger = logger
	}
}

// NewReceiptPrinter creates a printer
func NewReceiptPrinter(renderer Renderer, storage Storage, store StoreInfo, opts ...PrinterOption) *ReceiptPrinter {
	p := &ReceiptPrinter{
		renderer: renderer,
		storage:  storage,
		store:    store,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PrintReceipt renders the receipt and returns the stored file path
func (p *ReceiptPrinter) PrintReceipt(ctx context.Context, receipt *checkout.Receipt) (path string, err error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.print")
	defer func() { telemetry.EndSpan(span, err) }()

	doc, err := NewReceiptDocument(receipt, p.store)
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		attribute.String("receipt.number", doc.Number),
		attribute.Int("receipt.items", doc.ItemCount),
	)

	result, err := p.renderer.Render(ctx, doc)
	if err != nil {
		p.logger.Error("failed to render receipt", zap.String("receipt", doc.Number), zap.Error(err))
		return "", err
	}

	stored, err := p.storage.Store(ctx, &StoreRequest{
		Name:      "receipt_" + doc.Number,
		Extension: result.Extension,
		Data:      result.Data,
		IssuedAt:  doc.IssuedAt,
	})
	if err != nil {
		return "", err
	}

	p.logger.Info("receipt printed",
		zap.String("receipt", doc.Number),
		zap.String("tab", doc.TabName),
		zap.String("total", doc.Total.StringFixed(2)),
		zap.String("path", stored.FullPath))

	return stored.FullPath, nil
}

// NewRenderer picks the renderer named by cfg.Renderer
func NewRenderer(cfg config.ReceiptConfig, logger *zap.Logger) (Renderer, error) {
	switch cfg.Renderer {
	case config.RendererGoPDF, "":
		return NewGoPDFRenderer(&GoPDFConfig{FontPath: cfg.FontPath, Logger: logger})
	case config.RendererChromedp:
		return NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: cfg.PrintTimeout,
			RemoteURL:      cfg.ChromeRemoteURL,
			NoSandbox:      true,
			Logger:         logger,
		})
	case config.RendererText:
		return NewTextRenderer(0), nil
	default:
		return nil, fmt.Errorf("unsupported receipt renderer: %s", cfg.Renderer)
	}
}

// NewReceiptPrinterFromConfig wires renderer and file storage from settings
func NewReceiptPrinterFromConfig(cfg config.ReceiptConfig, logger *zap.Logger) (*ReceiptPrinter, error) {
	renderer, err := NewRenderer(cfg, logger)
	if err != nil {
		return nil, err
	}
	storage, err := NewFileStorage(&FileStorageConfig{BasePath: cfg.OutputDir, Logger: logger})
	if err != nil {
		_ = renderer.Close()
		return nil, err
	}
	return NewReceiptPrinter(renderer, storage, StoreInfoFromConfig(cfg), WithPrinterLogger(logger)), nil
}

// CleanupTask returns a job that prunes stored receipts older than retention
func (p *ReceiptPrinter) CleanupTask(retention time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		deleted, err := p.storage.CleanupOlderThan(ctx, retention)
		if err != nil {
			return err
		}
		if deleted > 0 {
			p.logger.Info("old receipts pruned", zap.Int("deleted", deleted), zap.Duration("retention", retention))
		}
		return nil
	}
}

// Close releases the renderer
func (p *ReceiptPrinter) Close() error {
	return p.renderer.Close()
}

var _ appcheckout.ReceiptPrinter = (*ReceiptPrinter)(nil)
