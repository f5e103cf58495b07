package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Prompter is the dialog surface of last resort. Confirmations block on a
// yes/no question; alerts are only logged.
type Prompter struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger

	// AssumeYes answers every confirmation with yes without prompting.
	AssumeYes bool

	interactive bool
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer, logger *slog.Logger) *Prompter {
	if logger == nil {
		logger = slog.Default()
	}
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		logger:      logger,
		interactive: interactive,
	}
}

// Open implements Opener.
func (p *Prompter) Open(req Request) {
	if req.Kind != KindConfirm {
		p.Alert(req)
		return
	}
	if err := p.Confirm(req); err != nil && err != ErrCancelled {
		p.logger.Error("confirm action failed", "title", req.Title, "err", err)
	}
}

// Alert logs req without waiting for acknowledgement.
func (p *Prompter) Alert(req Request) {
	req.Kind = KindAlert
	req = req.withDefaults()

	level := slog.LevelInfo
	switch req.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	p.logger.Log(context.Background(), level, req.Message, "title", req.Title)
	if req.OnClose != nil {
		req.OnClose()
	}
}

// Confirm asks the question in req and runs its action on yes, waiting for a
// deferred result. A no answer, or a closed input, returns ErrCancelled.
func (p *Prompter) Confirm(req Request) error {
	req.Kind = KindConfirm
	req = req.withDefaults()

	p.mu.Lock()
	ok, err := p.ask(req)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if !ok {
		if req.OnCancel != nil {
			req.OnCancel()
		}
		return ErrCancelled
	}

	if req.Action != nil {
		if err := req.Action().Wait(); err != nil {
			return err
		}
	}
	if req.OnResolved != nil {
		req.OnResolved()
	}
	return nil
}

func (p *Prompter) ask(req Request) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	if !p.interactive {
		// No terminal to ask on: answer no.
		return false, nil
	}

	fmt.Fprintf(p.out, "%s: %s [y/N] ", req.Title, req.Message)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
