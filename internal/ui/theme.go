package ui

import "strings"

const (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"
	fgCyan   = "\033[36m"
)

// Theme bundles palette, symbols and box borders for CLI output.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending, Progress string

	BoxUnchecked, BoxChecked, BoxProgress  string
	CornerTL, CornerTR, CornerBL, CornerBR string
	H, V                                   string
	SymOK, SymFail                         string

	// NoColor disables escape codes regardless of the terminal.
	NoColor bool
}

// ThemeNamed returns classic, neon or mono. Unknown names get classic.
func ThemeNamed(name string) Theme {
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:  "neon",
			Title: "\033[95m", Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m", Progress: fgCyan,
			BoxUnchecked: "◻", BoxChecked: "◼", BoxProgress: "◧",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymOK: "✔", SymFail: "✖",
		}
	case "mono":
		return Theme{
			Name:         "mono",
			BoxUnchecked: "[ ]", BoxChecked: "[x]", BoxProgress: "[~]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymOK: "ok", SymFail: "error:",
			NoColor: true,
		}
	default:
		return Theme{
			Name:  "classic",
			Title: bold, Muted: fgGray, Accent: fgBlue,
			Success: fgGreen, Error: fgRed, Pending: fgYellow, Progress: fgCyan,
			BoxUnchecked: "☐", BoxChecked: "☑", BoxProgress: "◐",
			CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
			H: "─", V: "│",
			SymOK: "✔", SymFail: "✖",
		}
	}
}
