package ui

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// UI provides styled terminal output. Reports (status, tables) go to out;
// progress, command frames and errors go to errOut so out stays clean when
// the relayed build output is redirected.
type UI struct {
	out    io.Writer
	errOut io.Writer

	outTTY bool
	errTTY bool

	renderer    *lipgloss.Renderer
	errRenderer *lipgloss.Renderer

	now        func() time.Time
	frameStart time.Time
}

// New creates a UI that writes to out and errOut.
// TTY detection is performed on each writer separately.
func New(out, errOut io.Writer) *UI {
	return &UI{
		out:         out,
		errOut:      errOut,
		outTTY:      isTerminal(out),
		errTTY:      isTerminal(errOut),
		renderer:    lipgloss.NewRenderer(out),
		errRenderer: lipgloss.NewRenderer(errOut),
		now:         time.Now,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// IsTTY reports whether the report output is a terminal.
func (u *UI) IsTTY() bool {
	return u.outTTY
}
