package checkout

import (
	"testing"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, id int64, name, price string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.RequireFromString(price), "Food")
	require.NoError(t, err)
	p.ID = id
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
