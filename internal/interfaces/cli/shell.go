package cli

import (
	"context"
	"strconv"
	"strings"

	appcheckout "github.com/grocerypos/backend/internal/application/checkout"
	"github.com/grocerypos/backend/internal/domain/checkout"
	"github.com/grocerypos/backend/internal/infrastructure/catalogclient"
	"go.uber.org/zap"
)

// DefaultPrompt is printed before each command
const DefaultPrompt = "pos> "

// Shell reads cashier commands and drives a checkout controller
type Shell struct {
	controller *appcheckout.Controller
	term       *Terminal
	logger     *zap.Logger
	prompt     string
	catalogURL string
}

// ShellOption configures a Shell
type ShellOption func(*Shell)

// WithShellLogger sets the logger
func WithShellLogger(logger *zap.Logger) ShellOption {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithPrompt replaces DefaultPrompt
func WithPrompt(prompt string) ShellOption {
	return func(s *Shell) {
		s.prompt = prompt
	}
}

// WithCatalogURL names the catalog service in the connection banner
func WithCatalogURL(url string) ShellOption {
	return func(s *Shell) {
		s.catalogURL = url
	}
}

// NewShell creates a shell. The controller should confirm through the
// same terminal, see Terminal.Confirmer
func NewShell(controller *appcheckout.Controller, term *Terminal, opts ...ShellOption) *Shell {
	s := &Shell{
		controller: controller,
		term:       term,
		logger:     zap.NewNop(),
		prompt:     DefaultPrompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loads the catalog and processes commands until quit, end of input
// or ctx is cancelled
func (s *Shell) Run(ctx context.Context) error {
	v, err := s.controller.Refresh(ctx)
	if err != nil {
		s.logger.Warn("initial catalog load failed", zap.Error(err))
	}
	s.render(v, err, false)

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, ok := s.term.ReadLine(s.prompt)
		if !ok {
			return nil
		}
		if s.Execute(ctx, line) {
			return nil
		}
	}
}

// Execute runs one command line and prints the result. It returns true
// when the cashier asked to quit. A line that is not a command is
// treated as cash while the payment dialog is open and as a scan
// otherwise
func (s *Shell) Execute(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	var (
		v            appcheckout.View
		err          error
		showProducts bool
	)

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		RenderHelp(s.term.Out())
		return false
	case "show", "cart":
		v = s.controller.View()
	case "list", "products":
		v = s.controller.View()
		showProducts = true
	case "refresh":
		v, err = s.controller.Refresh(ctx)
		showProducts = true
	case "category":
		current := s.controller.View().Filter
		v = s.controller.Filter(rest, current.Search)
		showProducts = true
	case "search":
		current := s.controller.View().Filter
		v = s.controller.Filter(current.Category, rest)
		showProducts = true
	case "scan":
		v, err = s.controller.Scan(ctx, rest)
	case "add", "inc", "dec", "delete":
		id, ok := s.productID(args)
		if !ok {
			return false
		}
		switch cmd {
		case "add":
			v, err = s.controller.Add(id)
		case "inc":
			v, err = s.controller.Adjust(id, 1)
		case "dec":
			v, err = s.controller.Adjust(id, -1)
		case "delete":
			v, err = s.controller.DeleteProduct(ctx, id)
		}
	case "clear":
		v, err = s.controller.ClearCart()
	case "tab":
		s.tab(args)
		return false
	case "product":
		s.product(ctx, args)
		return false
	case "upload":
		if rest == "" {
			s.term.Printf("! file required\n")
			return false
		}
		upload, closeFn, openErr := openImage(rest)
		if openErr != nil {
			s.term.Printf("! %s\n", openErr)
			return false
		}
		v, err = s.controller.UploadImage(ctx, upload)
		closeFn()
	case "pay", "cash":
		v, err = s.controller.QuotePayment(rest)
	case "confirm":
		input := rest
		if input == "" {
			if p := s.controller.View().Payment; p != nil {
				input = p.Input
			}
		}
		v, err = s.controller.ConfirmPayment(input)
	case "cancel":
		v = s.controller.CancelPayment()
	case "dismiss", "done":
		v, err = s.controller.DismissReceipt()
	case "print":
		v, err = s.controller.PrintReceipt(ctx)
	default:
		if s.controller.View().Payment != nil {
			if _, ok := checkout.ParseCash(line); ok {
				v, err = s.controller.QuotePayment(line)
				break
			}
		}
		v, err = s.controller.Scan(ctx, line)
	}

	s.render(v, err, showProducts)
	return false
}

func (s *Shell) tab(args []string) {
	if len(args) == 0 {
		s.term.Printf("usage: tab new | tab <n> | tab close <n>\n")
		return
	}

	var (
		v   appcheckout.View
		err error
	)
	switch strings.ToLower(args[0]) {
	case "new", "+":
		v, err = s.controller.NewTab()
	case "close":
		n, ok := s.tabNumber(args[1:])
		if !ok {
			return
		}
		v, err = s.controller.CloseTab(n - 1)
	default:
		n, ok := s.tabNumber(args)
		if !ok {
			return
		}
		v, err = s.controller.SwitchTab(n - 1)
	}
	s.render(v, err, false)
}

func (s *Shell) tabNumber(args []string) (int, bool) {
	if len(args) == 0 {
		s.term.Printf("! tab number required\n")
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		s.term.Printf("! invalid tab number: %s\n", args[0])
		return 0, false
	}
	return n, true
}

func (s *Shell) productID(args []string) (int64, bool) {
	if len(args) == 0 {
		s.term.Printf("! product id required\n")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		s.term.Printf("! invalid product id: %s\n", args[0])
		return 0, false
	}
	return id, true
}

func (s *Shell) render(v appcheckout.View, err error, showProducts bool) {
	if err != nil {
		s.logger.Debug("command failed", zap.Error(err))
	}
	if showProducts {
		RenderProducts(s.term.Out(), v)
		if v.Notice != "" {
			s.term.Printf("! %s\n", v.Notice)
		}
	} else {
		RenderView(s.term.Out(), v)
	}
	if catalogclient.IsUnavailable(err) {
		RenderUnavailable(s.term.Out(), s.catalogURL)
	}
}
