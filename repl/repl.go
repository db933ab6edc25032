package repl

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"meinsql/table"
)

// Run drives the interactive loop: read a line, dispatch meta-commands
// starting with ".", otherwise prepare and execute a Statement. It returns
// when the user issues ".exit" or the input stream is closed (EOF), and
// returns an error when a statement fails to execute for a reason other than
// a duplicate key.
func Run(cfg Config, tbl *table.Table) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "db > ",
		HistoryFile: "",
		Stdin:       io.NopCloser(cfg.In),
		Stdout:      cfg.Out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			result, exit := HandleMetaCommand(cfg, line, tbl)
			if exit {
				Success(cfg, "exiting")
				return nil
			}
			if result == MetaCommandUnrecognizedCommand {
				Error(cfg, "unrecognized meta-command: %s", line)
			}
			continue
		}

		var stmt Statement
		switch PrepareStatement(line, &stmt) {
		case PrepareSuccess:
		case PrepareUnrecognizedStatement:
			Error(cfg, "unrecognized command: %s", line)
			continue
		case PrepareSyntaxError:
			Error(cfg, "incorrect syntax for valid command: %s", line)
			continue
		case PrepareStringTooLong:
			Error(cfg, "string too long for command: %s", line)
			continue
		}

		switch ExecuteStatement(cfg, &stmt, tbl) {
		case ExecuteSuccess:
			Success(cfg, "executed")
		case ExecuteDuplicateKey:
			Error(cfg, "failed to execute statement: duplicate key: %d", stmt.RowToInsert.ID)
		case ExecuteTableFull:
			Error(cfg, "failed to execute statement: undocumented")
		case ExecuteFailure:
			Error(cfg, "failed to execute statement: undocumented")
			return errors.New("repl: statement execution failed")
		}
	}
}
