package repl

import (
	"strings"

	"meinsql/table"
)

// HandleMetaCommand dispatches a line beginning with ".". ".exit" reports
// MetaCommandSuccess with exit=true so the caller can flush and terminate;
// ".print" and ".btree" write their diagnostics to cfg.Out directly.
func HandleMetaCommand(cfg Config, line string, tbl *table.Table) (result MetaCommandResult, exit bool) {
	switch {
	case strings.HasPrefix(line, ".exit"):
		return MetaCommandSuccess, true
	case strings.HasPrefix(line, ".print"):
		cfg.Out.Write([]byte("constants:\n"))
		table.WriteConstants(cfg.Out)
		return MetaCommandSuccess, false
	case strings.HasPrefix(line, ".btree"):
		if err := tbl.WriteTree(cfg.Out); err != nil {
			Error(cfg, "failed to print tree: %v", err)
		}
		return MetaCommandSuccess, false
	default:
		return MetaCommandUnrecognizedCommand, false
	}
}
