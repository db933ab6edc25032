// Package repl implements the interactive shell: meta-commands (".exit",
// ".print", ".btree"), the tiny insert/select statement language, and the
// colorized success/error/log diagnostics the original shell prints.
package repl

import "io"

// Config carries the REPL's runtime options explicitly, rather than through
// a package-level mutable flag: NoColor disables ANSI diagnostics (wired to
// the "--no-color" CLI flag), and Out/In let tests and the real binary
// supply different streams.
type Config struct {
	NoColor bool
	Out     io.Writer
	In      io.Reader
}
