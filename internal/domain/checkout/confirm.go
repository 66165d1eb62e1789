package checkout

// Confirmer asks the cashier to approve a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function into a Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// AlwaysConfirm approves every prompt
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// NeverConfirm declines every prompt
var NeverConfirm Confirmer = ConfirmFunc(func(string) bool { return false })

func confirmed(c Confirmer, prompt string) bool {
	if c == nil {
		return false
	}
	return c.Confirm(prompt)
}
