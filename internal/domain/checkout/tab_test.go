package checkout

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTab_AddItem(t *testing.T) {
	a := newTestProduct(t, 1, "Product A", "100.00")
	b := newTestProduct(t, 2, "Product B", "50.00")

	t.Run("appends new line with quantity one", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))

		lines := tab.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, int64(1), lines[0].ProductID)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.True(t, tab.TotalDue().Equal(dec("100")))
	})

	t.Run("repeat add increments quantity", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))
		require.NoError(t, tab.AddItem(b))
		require.NoError(t, tab.AddItem(a))

		lines := tab.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, 2, tab.Quantity(1))
		assert.Equal(t, 1, tab.Quantity(2))
		assert.Equal(t, 3, tab.ItemCount())
		assert.True(t, tab.TotalDue().Equal(dec("250")))
	})

	t.Run("captures price at first add", func(t *testing.T) {
		tab := newTab(1)
		p := newTestProduct(t, 9, "Eggs", "4.50")
		require.NoError(t, tab.AddItem(p))
		p.Price = dec("5.00")
		require.NoError(t, tab.AddItem(p))

		assert.True(t, tab.TotalDue().Equal(dec("9.00")))
	})

	t.Run("nil product is rejected", func(t *testing.T) {
		tab := newTab(1)
		assert.ErrorIs(t, tab.AddItem(nil), ErrNilProduct)
		assert.True(t, tab.IsEmpty())
	})
}

func TestTab_AdjustQuantity(t *testing.T) {
	a := newTestProduct(t, 1, "Product A", "100.00")

	t.Run("increments and decrements", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))

		tab.AdjustQuantity(1, 2)
		assert.Equal(t, 3, tab.Quantity(1))
		assert.True(t, tab.TotalDue().Equal(dec("300")))

		tab.AdjustQuantity(1, -1)
		assert.Equal(t, 2, tab.Quantity(1))
	})

	t.Run("removing full quantity drops the line", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))
		require.NoError(t, tab.AddItem(a))

		tab.AdjustQuantity(1, -2)
		assert.True(t, tab.IsEmpty())
		assert.True(t, tab.TotalDue().IsZero())

		tab.AdjustQuantity(1, -1)
		assert.True(t, tab.IsEmpty())
		assert.True(t, tab.TotalDue().IsZero())
	})

	t.Run("overshooting below zero removes instead of clamping", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))

		tab.AdjustQuantity(1, -5)
		assert.Equal(t, 0, tab.Quantity(1))
		assert.Empty(t, tab.Lines())
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))

		tab.AdjustQuantity(99, 1)
		assert.Equal(t, 1, tab.ItemCount())
		assert.True(t, tab.TotalDue().Equal(dec("100")))
	})
}

func TestTab_Clear(t *testing.T) {
	a := newTestProduct(t, 1, "Product A", "100.00")

	t.Run("empty cart clears without asking", func(t *testing.T) {
		tab := newTab(1)
		asked := false
		err := tab.Clear(ConfirmFunc(func(string) bool {
			asked = true
			return false
		}))
		require.NoError(t, err)
		assert.False(t, asked)
	})

	t.Run("declined confirmation keeps items", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))

		err := tab.Clear(NeverConfirm)
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.Equal(t, 1, tab.ItemCount())
	})

	t.Run("nil confirmer counts as decline", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))
		assert.ErrorIs(t, tab.Clear(nil), ErrNotConfirmed)
	})

	t.Run("confirmed clear resets total", func(t *testing.T) {
		tab := newTab(1)
		require.NoError(t, tab.AddItem(a))

		require.NoError(t, tab.Clear(AlwaysConfirm))
		assert.True(t, tab.IsEmpty())
		assert.True(t, tab.TotalDue().IsZero())
	})
}

func TestTab_LinesIsACopy(t *testing.T) {
	tab := newTab(1)
	require.NoError(t, tab.AddItem(newTestProduct(t, 1, "A", "10")))

	lines := tab.Lines()
	lines[0].Quantity = 50

	assert.Equal(t, 1, tab.Quantity(1))
}

func TestTab_TotalMatchesLinesForRandomSequences(t *testing.T) {
	products := []string{"0.25", "1.00", "12.50", "19.99", "100.00", "0.01"}
	rng := rand.New(rand.NewSource(20240611))

	for run := 0; run < 200; run++ {
		tab := newTab(1)
		for step := 0; step < 40; step++ {
			idx := rng.Intn(len(products))
			id := int64(idx + 1)
			if rng.Intn(3) == 0 {
				tab.AdjustQuantity(id, rng.Intn(7)-4)
			} else {
				require.NoError(t, tab.AddItem(newTestProduct(t, id, "P", products[idx])))
			}

			want := decimal.Zero
			for _, l := range tab.Lines() {
				require.GreaterOrEqual(t, l.Quantity, 1)
				want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
			require.True(t, want.Equal(tab.TotalDue()), "run %d step %d: want %s got %s", run, step, want, tab.TotalDue())
		}
	}
}
