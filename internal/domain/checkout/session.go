package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxTabs is the maximum number of tabs open at once
const MaxTabs = 5

// Session holds every open tab of one cash register. It always has at
// least one tab and exactly one of them is active
type Session struct {
	tabs    []*Tab
	active  int
	lastID  int
	receipt *Receipt
}

// NewSession creates a session with a single empty tab
func NewSession() *Session {
	s := &Session{}
	s.tabs = append(s.tabs, s.allocateTab())
	return s
}

// Tabs returns the open tabs in display order
func (s *Session) Tabs() []*Tab {
	out := make([]*Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// Len returns the number of open tabs
func (s *Session) Len() int {
	return len(s.tabs)
}

// ActiveIndex returns the index of the active tab
func (s *Session) ActiveIndex() int {
	return s.active
}

// Active returns the active tab
func (s *Session) Active() *Tab {
	return s.tabs[s.active]
}

// CanAddTab reports whether another tab may be opened
func (s *Session) CanAddTab() bool {
	return len(s.tabs) < MaxTabs
}

// CreateTab opens a new empty tab and makes it active. It does nothing
// and returns false when MaxTabs are already open
func (s *Session) CreateTab() bool {
	if !s.CanAddTab() {
		return false
	}
	s.tabs = append(s.tabs, s.allocateTab())
	s.active = len(s.tabs) - 1
	return true
}

// SwitchActive makes the tab at index active
func (s *Session) SwitchActive(index int) error {
	if index < 0 || index >= len(s.tabs) {
		return ErrTabOutOfRange
	}
	s.active = index
	return nil
}

// CloseTab removes the tab at index. The last tab cannot be closed and a
// tab holding items is only closed when c confirms
func (s *Session) CloseTab(index int, c Confirmer) error {
	if index < 0 || index >= len(s.tabs) {
		return ErrTabOutOfRange
	}
	if len(s.tabs) <= 1 {
		return ErrLastTab
	}
	tab := s.tabs[index]
	if !tab.IsEmpty() && !confirmed(c, fmt.Sprintf("Tab %s still has items in the cart. Close it?", tab.Name)) {
		return ErrNotConfirmed
	}

	s.tabs = append(s.tabs[:index], s.tabs[index+1:]...)

	if s.active >= len(s.tabs) {
		s.active = len(s.tabs) - 1
	} else if s.active > index {
		s.active--
	}
	return nil
}

// PurgeProduct removes a product from every tab and returns how many
// tabs were affected
func (s *Session) PurgeProduct(productID int64) int {
	n := 0
	for _, t := range s.tabs {
		if t.RemoveProduct(productID) {
			n++
		}
	}
	return n
}

// PendingReceipt returns the receipt awaiting dismissal, if any
func (s *Session) PendingReceipt() *Receipt {
	return s.receipt
}

// ConfirmPayment takes cash for the active tab and issues a receipt.
// On any error the session is left untouched
func (s *Session) ConfirmPayment(cash decimal.Decimal, now time.Time) (*Receipt, error) {
	if s.receipt != nil {
		return nil, ErrReceiptPending
	}
	tab := s.Active()
	if tab.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if cash.LessThan(tab.TotalDue()) {
		return nil, ErrInsufficientCash
	}

	s.receipt = newReceipt(tab, cash, now)
	return s.receipt, nil
}

// CompleteReceipt closes the pending receipt and empties the tab it was
// issued for. Dismissing and printing both end here
func (s *Session) CompleteReceipt() (*Receipt, error) {
	r := s.receipt
	if r == nil {
		return nil, ErrNoReceipt
	}
	for _, t := range s.tabs {
		if t.ID == r.TabID {
			t.reset()
			break
		}
	}
	s.receipt = nil
	return r, nil
}

func (s *Session) allocateTab() *Tab {
	s.lastID++
	return newTab(s.lastID)
}
