package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	appcheckout "github.com/grocerypos/backend/internal/application/checkout"
)

var productFieldKeys = map[string]bool{
	"name":     true,
	"price":    true,
	"category": true,
	"barcode":  true,
	"image":    true,
	"file":     true,
}

// product handles "product add ..." and "product edit <id> ..."
func (s *Shell) product(ctx context.Context, args []string) {
	if len(args) == 0 {
		s.term.Printf("usage: product add key=value ... | product edit <id> key=value ...\n")
		return
	}

	var (
		id     int64
		fields []string
	)
	switch strings.ToLower(args[0]) {
	case "add", "new":
		fields = args[1:]
	case "edit":
		var ok bool
		if id, ok = s.productID(args[1:]); !ok {
			return
		}
		fields = args[2:]
	default:
		s.term.Printf("! unknown product command: %s\n", args[0])
		return
	}

	values, err := parseFields(fields)
	if err != nil {
		s.term.Printf("! %s\n", err)
		return
	}
	form := appcheckout.ProductForm{
		Name:     values["name"],
		Price:    values["price"],
		Category: values["category"],
		Barcode:  values["barcode"],
		Image:    values["image"],
	}
	if file := values["file"]; file != nil {
		upload, closeFn, err := openImage(*file)
		if err != nil {
			s.term.Printf("! %s\n", err)
			return
		}
		defer closeFn()
		form.Upload = upload
	}

	var v appcheckout.View
	if id == 0 {
		v, err = s.controller.CreateProduct(ctx, form)
	} else {
		v, err = s.controller.UpdateProduct(ctx, id, form)
	}
	s.render(v, err, true)
}

// parseFields reads key=value pairs. A value runs until the next known
// key, so names may contain spaces: name=Jasmine Rice 5kg price=189
func parseFields(tokens []string) (map[string]*string, error) {
	values := make(map[string]*string)
	var current string
	for _, tok := range tokens {
		if key, value, ok := strings.Cut(tok, "="); ok && productFieldKeys[strings.ToLower(key)] {
			current = strings.ToLower(key)
			v := value
			values[current] = &v
			continue
		}
		if current == "" {
			return nil, fmt.Errorf("expected key=value, got %q", tok)
		}
		*values[current] += " " + tok
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no fields given")
	}
	return values, nil
}

// openImage opens a local image for upload. The returned func closes it
func openImage(path string) (*appcatalog.UploadImageRequest, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return &appcatalog.UploadImageRequest{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Size:        info.Size(),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
