package repl

import (
	"fmt"

	"github.com/fatih/color"
)

// Success prints a green success diagnostic, or plain text when cfg.NoColor
// is set, matching the original shell's print_success macro.
func Success(cfg Config, format string, args ...any) {
	printDiagnostic(cfg, color.FgGreen, format, args...)
}

// Error prints a red error diagnostic, or plain text when cfg.NoColor is
// set, matching the original shell's print_error macro.
func Error(cfg Config, format string, args ...any) {
	printDiagnostic(cfg, color.FgRed, format, args...)
}

// Log prints a magenta diagnostic, matching the original shell's log macro,
// used for conditions that should never be reachable in practice.
func Log(cfg Config, format string, args ...any) {
	printDiagnostic(cfg, color.FgMagenta, format, args...)
}

func printDiagnostic(cfg Config, attr color.Attribute, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if cfg.NoColor {
		fmt.Fprintln(cfg.Out, msg)
		return
	}
	c := color.New(attr)
	c.Fprintln(cfg.Out, msg)
}
