package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentState describes what the payment dialog shows for the cash typed so far
type PaymentState string

const (
	// PaymentStateNone means no usable amount was entered yet
	PaymentStateNone PaymentState = "none"
	// PaymentStateInsufficient means the cash does not cover the amount due
	PaymentStateInsufficient PaymentState = "insufficient"
	// PaymentStateSufficient means the cash covers the amount due
	PaymentStateSufficient PaymentState = "sufficient"
)

// PaymentQuote is the live result of comparing cash against the amount due
type PaymentQuote struct {
	State      PaymentState
	Due        decimal.Decimal
	Cash       decimal.Decimal
	Change     decimal.Decimal
	CanConfirm bool
}

// ParseCash parses a cashier-entered amount. Thousands separators and
// surrounding spaces are accepted
func ParseCash(input string) (decimal.Decimal, bool) {
	input = strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	if input == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Quote evaluates cash input against the amount due. Empty, zero,
// negative or unparseable input shows nothing and does not block
// confirmation; only a positive amount below the due blocks it
func Quote(due decimal.Decimal, input string) PaymentQuote {
	q := PaymentQuote{
		State:      PaymentStateNone,
		Due:        due,
		Cash:       decimal.Zero,
		Change:     decimal.Zero,
		CanConfirm: true,
	}

	cash, ok := ParseCash(input)
	if !ok || !cash.IsPositive() {
		return q
	}

	q.Cash = cash
	if cash.LessThan(due) {
		q.State = PaymentStateInsufficient
		q.CanConfirm = false
		return q
	}

	q.State = PaymentStateSufficient
	q.Change = cash.Sub(due)
	return q
}
