package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

// Printer writes themed CLI output. Color is used only when Out is a
// terminal, unless forced.
type Printer struct {
	Out, Err io.Writer
	Theme    Theme
	color    bool
}

// NewPrinter writes to stdout/stderr with the named theme.
func NewPrinter(theme string) *Printer {
	t := ThemeNamed(theme)
	return &Printer{Out: os.Stdout, Err: os.Stderr, Theme: t, color: !t.NoColor && isTTY(os.Stdout)}
}

// NewPlainPrinter writes without color to out and errOut (tests, pipes).
func NewPlainPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut, Theme: ThemeNamed("classic")}
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// C wraps s in color when color output is on.
func (p *Printer) C(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + reset
}

func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.Out, p.C(p.Theme.Success, p.Theme.SymOK+" "+msg))
}

func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.Err, p.C(p.Theme.Error, p.Theme.SymFail+" "+msg))
}

func (p *Printer) Muted(msg string) {
	fmt.Fprintln(p.Out, p.C(p.Theme.Muted, msg))
}

func (p *Printer) Println(a ...any) { fmt.Fprintln(p.Out, a...) }

func (p *Printer) Printf(format string, a ...any) { fmt.Fprintf(p.Out, format, a...) }

// Hint prints a faint line to the error stream.
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.Err, p.C(p.Theme.Muted, msg))
}

// ProgressBar renders done/total as a bar with a percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel draws a framed box.
func (p *Printer) Panel(lines []string) {
	t := p.Theme
	maxw := 0
	for _, ln := range lines {
		if w := len([]rune(stripANSI(ln))); w > maxw {
			maxw = w
		}
	}
	pad := func(s string) string {
		if vis := len([]rune(stripANSI(s))); vis < maxw {
			s += strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	fmt.Fprintln(p.Out, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(p.Out, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(p.Out, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

// TodoLine renders one todo as "#id box title [due] - description".
func (p *Printer) TodoLine(t model.Todo) string {
	th := p.Theme
	box := p.C(th.Muted, th.BoxUnchecked)
	title := t.Title
	switch t.Status {
	case model.StatusCompleted:
		box = p.C(th.Success, th.BoxChecked)
		title = p.C(th.Muted, title)
	case model.StatusInProgress:
		box = p.C(th.Progress, th.BoxProgress)
	}
	line := fmt.Sprintf("%s %s %s", p.C(th.Accent, fmt.Sprintf("#%-4d", t.ID)), box, title)
	if t.DueDate != nil {
		line += " " + p.C(th.Pending, "due "+t.DueDate.Format("2006-01-02"))
	}
	if t.Description != "" {
		line += p.C(th.Muted, " - "+t.Description)
	}
	return line
}
