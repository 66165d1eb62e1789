// Package printing renders checkout receipts and product barcode labels.
//
// Three receipt renderers are available:
//   - GoPDFRenderer draws an 80mm roll receipt with gofpdf
//   - ChromedpRenderer prints the HTML receipt through headless Chrome
//   - TextRenderer produces a fixed-width plain text receipt
//
// ReceiptPrinter ties a renderer to a FileStorage and satisfies the
// register's receipt port.
//
// Example usage:
//
//	renderer, err := NewRenderer(cfg.Receipt, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	store, err := NewFileStorage(&FileStorageConfig{BasePath: cfg.Receipt.OutputDir})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	printer := NewReceiptPrinter(renderer, store, StoreInfoFromConfig(cfg.Receipt))
//	path, err := printer.PrintReceipt(ctx, receipt)
package printing
