package confirm

import (
	"log/slog"
	"os"
)

// Opener is what screens and grids use to show dialogs.
type Opener interface {
	Open(req Request)
}

var (
	_ Opener = (*Controller)(nil)
	_ Opener = (*Prompter)(nil)
)

// Use returns o, or a Prompter on the process's stdin/stderr when o is nil.
func Use(o Opener) Opener {
	if o != nil {
		if c, ok := o.(*Controller); !ok || c != nil {
			return o
		}
	}
	return NewPrompter(os.Stdin, os.Stderr, slog.Default())
}
