package stats

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	colorReset          = "\x1b[0m"
	colorRed            = "\x1b[31m"
	colorYellow         = "\x1b[33m"
	colorGreen          = "\x1b[32m"
	terminalWidthBackup = 80
)

func accuracyColor(acc float64) string {
	switch {
	case acc < 0.5:
		return colorRed
	case acc < 0.8:
		return colorYellow
	default:
		return colorGreen
	}
}

// TerminalWidth returns the stdout width, or 80 when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
