package printing

import (
	"bytes"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"
)

const (
	qrCodeSize = 256

	// Label size in pixels, about 50x25mm at 200dpi
	LabelWidth  = 400
	LabelHeight = 200
)

// QRCodePNG encodes content as a square QR code PNG of size pixels
func QRCodePNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeEncodeFailed, "QR code content is empty", nil)
	}
	data, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to create QR code", err)
	}
	return data, nil
}

// BarcodeLabelPNG encodes code as a Code 128 barcode scaled to width x height
func BarcodeLabelPNG(code string, width, height int) ([]byte, error) {
	if strings.TrimSpace(code) == "" {
		return nil, NewRenderError(ErrCodeEncodeFailed, "barcode content is empty", nil)
	}

	bc, err := code128.Encode(code)
	if err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to encode barcode", err)
	}

	// barcode.Scale cannot shrink below the symbol's module count
	if width < bc.Bounds().Dx() {
		width = bc.Bounds().Dx()
	}
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to scale barcode", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to encode barcode as PNG", err)
	}
	return buf.Bytes(), nil
}
