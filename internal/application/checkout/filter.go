package checkout

import (
	"sort"
	"strings"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/catalog"
)

// ProductFilter is the product grid filter: a category and a free-text term
type ProductFilter struct {
	Category string
	Search   string
}

// Matches reports whether p passes both the category and the search term.
// The search term matches the name case-insensitively or any part of
// the barcode
func (f ProductFilter) Matches(p *catalog.Product) bool {
	if c := strings.TrimSpace(f.Category); c != "" && c != appcatalog.AllCategories && p.Category != c {
		return false
	}
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
		return true
	}
	return p.HasBarcode() && strings.Contains(p.BarcodeValue(), term)
}

// Apply returns the products that match, keeping their order
func (f ProductFilter) Apply(products []*catalog.Product) []*catalog.Product {
	out := make([]*catalog.Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories in alphabetical order, led by
// the all-categories entry
func Categories(products []*catalog.Product) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		names = append(names, p.Category)
	}
	sort.Strings(names)
	return append([]string{appcatalog.AllCategories}, names...)
}
