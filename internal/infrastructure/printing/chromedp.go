package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0

	// Roll paper has no fixed length; a tall page keeps a receipt on one sheet
	rollPageHeightMM = 3000.0
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// RemoteURL is the DevTools URL of a running Chrome (optional).
	// If empty, chromedp launches a headless browser
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Scale for rendering (default: 1.0)
	Scale float64
	// Margins around the receipt (default: DefaultMargins)
	Margins *Margins
	// Engine renders the receipt HTML (default: NewTemplateEngine)
	Engine *TemplateEngine
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpRenderer renders the HTML receipt to PDF using Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	engine      *TemplateEngine
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a new chromedp-based receipt renderer
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}
	if config.Margins == nil {
		m := DefaultMargins()
		config.Margins = &m
	}

	engine := config.Engine
	if engine == nil {
		engine = NewTemplateEngine()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{
		config: config,
		engine: engine,
		logger: logger,
	}
	r.initAllocator()

	return r, nil
}

// initAllocator creates either a remote or a local exec allocator
func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render prints the receipt HTML to a single-page PDF
func (r *ChromedpRenderer) Render(ctx context.Context, doc *ReceiptDocument) (*RenderResult, error) {
	html, err := r.engine.RenderReceipt(ctx, doc)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// tie the browser tab to the caller's deadline
	go func() {
		<-ctx.Done()
		browserCancel()
	}()

	params := r.buildPrintParams()
	var pdfData []byte

	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithScale(params.scale).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("receipt rendering timed out after %v", r.config.DefaultTimeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "receipt rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}

	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	duration := time.Since(start)
	r.logger.Info("receipt rendered",
		zap.String("renderer", "chromedp"),
		zap.String("receipt", doc.Number),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", duration))

	return &RenderResult{
		Data:           pdfData,
		ContentType:    "application/pdf",
		Extension:      ".pdf",
		RenderDuration: duration,
	}, nil
}

// printParams holds the page setup in inches, which Chrome expects
type printParams struct {
	paperWidth   float64
	paperHeight  float64
	marginTop    float64
	marginRight  float64
	marginBottom float64
	marginLeft   float64
	scale        float64
}

func (r *ChromedpRenderer) buildPrintParams() *printParams {
	m := r.config.Margins
	return &printParams{
		paperWidth:   mmToInches(PaperWidthMM),
		paperHeight:  mmToInches(rollPageHeightMM),
		marginTop:    mmToInches(m.Top),
		marginRight:  mmToInches(m.Right),
		marginBottom: mmToInches(m.Bottom),
		marginLeft:   mmToInches(m.Left),
		scale:        r.config.Scale,
	}
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ Renderer = (*ChromedpRenderer)(nil)
