package repl

import (
	"fmt"
	"strconv"
	"strings"

	"meinsql/table"
)

// MetaCommandResult is the outcome of dispatching a "." command.
type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandUnrecognizedCommand
)

// PrepareResult is the outcome of parsing a line into a Statement.
type PrepareResult int

const (
	PrepareSuccess PrepareResult = iota
	PrepareUnrecognizedStatement
	PrepareSyntaxError
	PrepareStringTooLong
)

// ExecuteResult is the outcome of running a prepared Statement against the
// table. EXECUTE_TABLE_FULL no longer occurs now that the engine splits
// pages instead of rejecting inserts, but the value is kept (and never
// returned) so callers pattern-matching on every original case still
// compile against one shared type.
type ExecuteResult int

const (
	ExecuteTableFull ExecuteResult = iota
	ExecuteSuccess
	ExecuteFailure
	ExecuteDuplicateKey
)

// StatementType distinguishes the two statement shapes the shell accepts.
type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

// Statement is a parsed insert or select ready for execution.
type Statement struct {
	Type        StatementType
	RowToInsert table.Row
}

// PrepareStatement parses line into stmt, dispatching on its leading
// keyword.
func PrepareStatement(line string, stmt *Statement) PrepareResult {
	switch {
	case strings.HasPrefix(line, "insert"):
		stmt.Type = StatementInsert
		return prepareInsert(line, stmt)
	case strings.HasPrefix(line, "select"):
		stmt.Type = StatementSelect
		return PrepareSuccess
	default:
		return PrepareUnrecognizedStatement
	}
}

// prepareInsert parses "insert <id> <username> <email>", rejecting missing
// fields as a syntax error and over-length text fields separately, matching
// the original shell's prepare_insert.
func prepareInsert(line string, stmt *Statement) PrepareResult {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return PrepareSyntaxError
	}
	idField, username, email := fields[1], fields[2], fields[3]

	id, err := strconv.ParseUint(idField, 10, 32)
	if err != nil {
		return PrepareSyntaxError
	}
	if len(username) > table.MaxUsernameLen || len(email) > table.MaxEmailLen {
		return PrepareStringTooLong
	}

	stmt.RowToInsert = table.Row{ID: uint32(id), Username: username, Email: email}
	return PrepareSuccess
}

// ExecuteStatement runs stmt against tbl, writing select output to cfg.Out.
func ExecuteStatement(cfg Config, stmt *Statement, tbl *table.Table) ExecuteResult {
	switch stmt.Type {
	case StatementInsert:
		return executeInsert(stmt, tbl)
	case StatementSelect:
		return executeSelect(cfg, tbl)
	default:
		Log(cfg, "unreachable statement type %d", stmt.Type)
		return ExecuteFailure
	}
}

func executeInsert(stmt *Statement, tbl *table.Table) ExecuteResult {
	err := tbl.Insert(stmt.RowToInsert.ID, stmt.RowToInsert)
	switch {
	case err == nil:
		return ExecuteSuccess
	case err == table.ErrDuplicateKey:
		return ExecuteDuplicateKey
	default:
		return ExecuteFailure
	}
}

func executeSelect(cfg Config, tbl *table.Table) ExecuteResult {
	rows, err := tbl.SelectAll()
	if err != nil {
		return ExecuteFailure
	}
	for _, row := range rows {
		fmt.Fprintf(cfg.Out, "%d %s %s\n", row.ID, row.Username, row.Email)
	}
	return ExecuteSuccess
}
