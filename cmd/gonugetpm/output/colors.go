package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var (
	ColorSuccess = color.New(color.FgGreen)
	ColorError   = color.New(color.FgRed)
	ColorWarning = color.New(color.FgYellow)
	ColorInfo    = color.New(color.FgCyan)
	ColorHeader  = color.New(color.Bold, color.FgWhite)
	ColorInstall = color.New(color.FgGreen)
	ColorRemove  = color.New(color.FgRed)
)

// IsColorEnabled reports whether stdout is a real terminal, NO_COLOR isn't
// set, and TERM isn't "dumb" — go-isatty replaces the teacher's manual
// os.ModeCharDevice check so Windows ConPTY sessions are detected too.
func IsColorEnabled() bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if term := os.Getenv("TERM"); term == "dumb" {
		return false
	}
	return true
}

// ColorableStdout wraps os.Stdout so ANSI escapes render correctly on
// legacy Windows consoles; a no-op passthrough everywhere else.
func ColorableStdout() io.Writer {
	return colorable.NewColorableStdout()
}

// ColorableStderr is ColorableStdout's stderr counterpart.
func ColorableStderr() io.Writer {
	return colorable.NewColorableStderr()
}

func DisableColors() {
	color.NoColor = true
}

func EnableColors() {
	color.NoColor = false
}
