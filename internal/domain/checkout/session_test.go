package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession()

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.ActiveIndex())
	assert.Equal(t, 1, s.Active().ID)
	assert.Equal(t, "#1", s.Active().Name)
	assert.True(t, s.Active().IsEmpty())
	assert.True(t, s.CanAddTab())
}

func TestSession_CreateTab(t *testing.T) {
	t.Run("new tab becomes active", func(t *testing.T) {
		s := NewSession()
		assert.True(t, s.CreateTab())
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, 1, s.ActiveIndex())
		assert.Equal(t, "#2", s.Active().Name)
	})

	t.Run("sixth tab is a no-op", func(t *testing.T) {
		s := NewSession()
		for i := 0; i < 4; i++ {
			require.True(t, s.CreateTab())
		}
		require.Equal(t, MaxTabs, s.Len())
		require.NoError(t, s.SwitchActive(2))

		assert.False(t, s.CreateTab())
		assert.Equal(t, MaxTabs, s.Len())
		assert.Equal(t, 2, s.ActiveIndex())
		assert.False(t, s.CanAddTab())
	})

	t.Run("ids are never reused", func(t *testing.T) {
		s := NewSession()
		s.CreateTab()
		s.CreateTab()
		require.NoError(t, s.CloseTab(2, AlwaysConfirm))
		s.CreateTab()

		ids := []int{}
		for _, tab := range s.Tabs() {
			ids = append(ids, tab.ID)
		}
		assert.Equal(t, []int{1, 2, 4}, ids)
		assert.Equal(t, "#4", s.Active().Name)
	})
}

func TestSession_SwitchActive(t *testing.T) {
	s := NewSession()
	s.CreateTab()
	s.CreateTab()

	require.NoError(t, s.SwitchActive(0))
	assert.Equal(t, 0, s.ActiveIndex())

	require.NoError(t, s.SwitchActive(0))
	assert.Equal(t, 0, s.ActiveIndex())

	assert.ErrorIs(t, s.SwitchActive(3), ErrTabOutOfRange)
	assert.ErrorIs(t, s.SwitchActive(-1), ErrTabOutOfRange)
	assert.Equal(t, 0, s.ActiveIndex())
}

func TestSession_CloseTab(t *testing.T) {
	p := newTestProduct(t, 1, "Milk", "25")

	t.Run("last tab cannot be closed", func(t *testing.T) {
		s := NewSession()
		assert.ErrorIs(t, s.CloseTab(0, AlwaysConfirm), ErrLastTab)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("out of range index", func(t *testing.T) {
		s := NewSession()
		s.CreateTab()
		assert.ErrorIs(t, s.CloseTab(5, AlwaysConfirm), ErrTabOutOfRange)
	})

	t.Run("tab with items needs confirmation", func(t *testing.T) {
		s := NewSession()
		s.CreateTab()
		require.NoError(t, s.Tabs()[0].AddItem(p))

		var prompt string
		err := s.CloseTab(0, ConfirmFunc(func(msg string) bool {
			prompt = msg
			return false
		}))
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.Contains(t, prompt, "#1")
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, 1, s.ActiveIndex())

		require.NoError(t, s.CloseTab(0, AlwaysConfirm))
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, "#2", s.Active().Name)
	})

	t.Run("empty tab closes without asking", func(t *testing.T) {
		s := NewSession()
		s.CreateTab()
		require.NoError(t, s.CloseTab(1, NeverConfirm))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("active index adjustments", func(t *testing.T) {
		tests := []struct {
			name       string
			active     int
			close      int
			wantActive int
			wantName   string
		}{
			{"closing active last tab clamps", 4, 4, 3, "#4"},
			{"closing before active shifts left", 3, 1, 2, "#4"},
			{"closing after active keeps index", 1, 3, 1, "#2"},
			{"closing active middle tab selects next", 2, 2, 2, "#4"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := NewSession()
				for i := 0; i < 4; i++ {
					s.CreateTab()
				}
				require.NoError(t, s.SwitchActive(tt.active))

				require.NoError(t, s.CloseTab(tt.close, AlwaysConfirm))
				assert.Equal(t, tt.wantActive, s.ActiveIndex())
				assert.Equal(t, tt.wantName, s.Active().Name)
			})
		}
	})
}

func TestSession_PurgeProduct(t *testing.T) {
	milk := newTestProduct(t, 1, "Milk", "25")
	bread := newTestProduct(t, 2, "Bread", "40")

	s := NewSession()
	require.NoError(t, s.Active().AddItem(milk))
	require.NoError(t, s.Active().AddItem(bread))
	s.CreateTab()
	require.NoError(t, s.Active().AddItem(milk))
	require.NoError(t, s.Active().AddItem(milk))
	s.CreateTab()
	require.NoError(t, s.Active().AddItem(bread))

	affected := s.PurgeProduct(1)
	assert.Equal(t, 2, affected)

	tabs := s.Tabs()
	assert.True(t, tabs[0].TotalDue().Equal(dec("40")))
	assert.True(t, tabs[1].IsEmpty())
	assert.True(t, tabs[1].TotalDue().IsZero())
	assert.True(t, tabs[2].TotalDue().Equal(dec("40")))
}

func TestSession_Checkout(t *testing.T) {
	productA := newTestProduct(t, 1, "Product A", "100.00")
	productB := newTestProduct(t, 2, "Product B", "50.00")
	now := time.Date(2024, 6, 11, 10, 30, 0, 0, time.UTC)

	newCart := func(t *testing.T) *Session {
		s := NewSession()
		require.NoError(t, s.Active().AddItem(productA))
		require.NoError(t, s.Active().AddItem(productA))
		require.NoError(t, s.Active().AddItem(productB))
		return s
	}

	t.Run("cart totals", func(t *testing.T) {
		s := newCart(t)
		totals := s.Active().Totals().Rounded()
		assert.Equal(t, "250.00", totals.Total.StringFixed(2))
		assert.Equal(t, "16.36", totals.Tax.StringFixed(2))
		assert.Equal(t, "233.64", totals.Subtotal.StringFixed(2))
	})

	t.Run("insufficient cash is rejected without state change", func(t *testing.T) {
		s := newCart(t)

		q := Quote(s.Active().TotalDue(), "200")
		assert.Equal(t, PaymentStateInsufficient, q.State)
		assert.False(t, q.CanConfirm)

		r, err := s.ConfirmPayment(dec("200"), now)
		assert.ErrorIs(t, err, ErrInsufficientCash)
		assert.Nil(t, r)
		assert.Nil(t, s.PendingReceipt())
		assert.True(t, s.Active().TotalDue().Equal(dec("250")))
		assert.Equal(t, 3, s.Active().ItemCount())
	})

	t.Run("paid tab is cleared when receipt completes", func(t *testing.T) {
		s := newCart(t)

		r, err := s.ConfirmPayment(dec("300"), now)
		require.NoError(t, err)
		require.NotNil(t, r)

		assert.Equal(t, "50.00", r.Change.StringFixed(2))
		assert.Equal(t, "250.00", r.Total.StringFixed(2))
		assert.Equal(t, "16.36", r.Tax.Round(2).StringFixed(2))
		assert.Equal(t, "233.64", r.Subtotal.Round(2).StringFixed(2))
		assert.Equal(t, "300", r.Cash.String())
		assert.Equal(t, now, r.IssuedAt)
		assert.Equal(t, "#1", r.TabName)
		require.Len(t, r.Lines, 2)
		assert.Equal(t, "Product A", r.Lines[0].Name)
		assert.Equal(t, 2, r.Lines[0].Quantity)
		assert.Equal(t, "200.00", r.Lines[0].LineTotal.StringFixed(2))
		assert.Equal(t, 3, r.ItemCount())

		// cart is kept until the receipt is dismissed or printed
		assert.Equal(t, 3, s.Active().ItemCount())
		_, err = s.ConfirmPayment(dec("300"), now)
		assert.ErrorIs(t, err, ErrReceiptPending)

		done, err := s.CompleteReceipt()
		require.NoError(t, err)
		assert.Same(t, r, done)
		assert.True(t, s.Active().IsEmpty())
		assert.True(t, s.Active().TotalDue().IsZero())
		assert.Nil(t, s.PendingReceipt())
	})

	t.Run("receipt clears its own tab after switching", func(t *testing.T) {
		s := newCart(t)
		_, err := s.ConfirmPayment(dec("250"), now)
		require.NoError(t, err)

		s.CreateTab()
		require.NoError(t, s.Active().AddItem(productB))

		_, err = s.CompleteReceipt()
		require.NoError(t, err)
		assert.True(t, s.Tabs()[0].IsEmpty())
		assert.Equal(t, 1, s.Tabs()[1].ItemCount())
	})

	t.Run("empty cart cannot be paid", func(t *testing.T) {
		s := NewSession()
		_, err := s.ConfirmPayment(dec("100"), now)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("completing without receipt fails", func(t *testing.T) {
		s := NewSession()
		_, err := s.CompleteReceipt()
		assert.ErrorIs(t, err, ErrNoReceipt)
	})
}
