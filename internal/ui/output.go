package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header prints a section header: "==> msg" in bold blue.
func (u *UI) Header(msg string) {
	u.line("==> "+msg, u.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("4")))
}

// Success prints a success message to errOut: "  ✓ msg" in green (TTY) or
// "  ok msg" (non-TTY).
func (u *UI) Success(msg string) {
	if u.errTTY {
		u.errLine("  ✓ "+msg, u.errRenderer.NewStyle().Foreground(lipgloss.Color("2")))
		return
	}
	u.errLine("  ok "+msg, lipgloss.Style{})
}

// Keyval prints a label-value pair: "  label   value" with bold fixed-width label.
func (u *UI) Keyval(key, value string) {
	padded := fmt.Sprintf("%-12s", key)
	if u.outTTY {
		padded = u.renderer.NewStyle().Bold(true).Render(padded)
	}
	u.printf("  %s%s\n", padded, value)
}

// Dim prints dimmed text.
func (u *UI) Dim(msg string) {
	u.line(msg, u.renderer.NewStyle().Faint(true))
}

// Progress prints a dimmed progress message to errOut.
func (u *UI) Progress(msg string) {
	u.errLine(msg, u.errRenderer.NewStyle().Faint(true))
}

// Warn prints "warning: msg" to errOut.
func (u *UI) Warn(msg string) {
	u.prefixed("warning:", lipgloss.Color("3"), msg)
}

// Error prints an error message: "error: msg" to errOut.
// Only the "error:" prefix is styled to prevent lipgloss from mangling
// multi-line message bodies.
func (u *UI) Error(msg string) {
	u.prefixed("error:", lipgloss.Color("1"), msg)
}

func (u *UI) prefixed(prefix string, color lipgloss.Color, msg string) {
	if u.errTTY {
		prefix = u.errRenderer.NewStyle().Foreground(color).Render(prefix)
	}
	_, _ = fmt.Fprintf(u.errOut, "%s %s\n", prefix, msg)
}

// StatusColor colors a container status: green when running, red when the
// container is dead or being removed, yellow otherwise.
func (u *UI) StatusColor(status string) string {
	if !u.outTTY {
		return status
	}
	color := lipgloss.Color("3")
	switch strings.ToLower(status) {
	case "running":
		color = lipgloss.Color("2")
	case "dead", "removing":
		color = lipgloss.Color("1")
	}
	return u.renderer.NewStyle().Foreground(color).Render(status)
}

// Table prints a column-aligned table with bold headers. Cell widths are
// measured without ANSI sequences so colored cells stay aligned.
func (u *UI) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	u.line(joinRow(headers, widths), u.renderer.NewStyle().Bold(true))
	for _, row := range rows {
		u.println(joinRow(row, widths))
	}
}

// joinRow pads each cell to its column width. The last column is not padded.
func joinRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		if i < len(widths) && i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
	}
	return b.String()
}

// line writes msg to out, styled only when out is a terminal.
func (u *UI) line(msg string, style lipgloss.Style) {
	if u.outTTY {
		msg = style.Render(msg)
	}
	u.println(msg)
}

// errLine writes msg to errOut, styled only when errOut is a terminal.
func (u *UI) errLine(msg string, style lipgloss.Style) {
	if u.errTTY {
		msg = style.Render(msg)
	}
	_, _ = fmt.Fprintln(u.errOut, msg)
}

// println writes a line to out, discarding errors (not recoverable in CLI output).
func (u *UI) println(msg string) {
	_, _ = fmt.Fprintln(u.out, msg)
}

// printf writes formatted output to out, discarding errors.
func (u *UI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(u.out, format, args...)
}
