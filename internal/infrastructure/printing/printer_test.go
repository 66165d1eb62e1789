package printing

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingRenderer struct{ closed bool }

func (f *failingRenderer) Render(context.Context, *ReceiptDocument) (*RenderResult, error) {
	return nil, NewRenderError(ErrCodeRenderFailed, "boom", nil)
}

func (f *failingRenderer) Close() error {
	f.closed = true
	return nil
}

func TestReceiptPrinter_PrintReceipt(t *testing.T) {
	storage := newTestStorage(t)
	p := NewReceiptPrinter(NewTextRenderer(0), storage, sampleStore(), WithPrinterLogger(zap.NewNop()))

	path, err := p.PrintReceipt(context.Background(), sampleReceipt())
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "receipt_20261017-153012-2.txt"))
	assert.True(t, strings.HasPrefix(path, storage.BasePath()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jasmine Rice 5kg")
	assert.Contains(t, string(data), "฿97.00")
}

func TestReceiptPrinter_Errors(t *testing.T) {
	storage := newTestStorage(t)

	t.Run("nil receipt", func(t *testing.T) {
		p := NewReceiptPrinter(NewTextRenderer(0), storage, sampleStore())
		_, err := p.PrintReceipt(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("renderer failure is returned", func(t *testing.T) {
		r := &failingRenderer{}
		p := NewReceiptPrinter(r, storage, sampleStore())

		_, err := p.PrintReceipt(context.Background(), sampleReceipt())
		var re *RenderError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, ErrCodeRenderFailed, re.Code)

		require.NoError(t, p.Close())
		assert.True(t, r.closed)
	})
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		renderer string
		want     any
	}{
		{config.RendererGoPDF, &GoPDFRenderer{}},
		{"", &GoPDFRenderer{}},
		{config.RendererChromedp, &ChromedpRenderer{}},
		{config.RendererText, &TextRenderer{}},
	}
	for _, tt := range tests {
		t.Run(tt.renderer, func(t *testing.T) {
			r, err := NewRenderer(config.ReceiptConfig{Renderer: tt.renderer}, zap.NewNop())
			require.NoError(t, err)
			defer r.Close()
			assert.IsType(t, tt.want, r)
		})
	}

	_, err := NewRenderer(config.ReceiptConfig{Renderer: "laser"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported receipt renderer")
}

func TestNewReceiptPrinterFromConfig(t *testing.T) {
	dir := t.TempDir()
	p, err := NewReceiptPrinterFromConfig(config.ReceiptConfig{
		StoreName: "Corner Shop",
		Renderer:  config.RendererGoPDF,
		OutputDir: dir,
	}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	path, err := p.PrintReceipt(context.Background(), sampleReceipt())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestReceiptPrinter_CleanupTask(t *testing.T) {
	storage := newTestStorage(t)
	p := NewReceiptPrinter(NewTextRenderer(0), storage, sampleStore())

	path, err := p.PrintReceipt(context.Background(), sampleReceipt())
	require.NoError(t, err)

	require.NoError(t, p.CleanupTask(time.Hour)(context.Background()))
	assert.FileExists(t, path)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, p.CleanupTask(24*time.Hour)(context.Background()))
	assert.NoFileExists(t, path)
}
