package repl

import (
	"path/filepath"
	"strings"
	"testing"

	"meinsql/table"
)

func openTestTable(t *testing.T) *table.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	tbl, err := table.Open(path)
	if err != nil {
		t.Fatalf("table.Open: %v", err)
	}
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestHandleMetaCommandExit(t *testing.T) {
	tbl := openTestTable(t)
	var out strings.Builder
	cfg := Config{NoColor: true, Out: &out}

	result, exit := HandleMetaCommand(cfg, ".exit", tbl)
	if result != MetaCommandSuccess || !exit {
		t.Errorf("HandleMetaCommand(.exit) = (%v, %v); want (MetaCommandSuccess, true)", result, exit)
	}
}

func TestHandleMetaCommandPrint(t *testing.T) {
	tbl := openTestTable(t)
	var out strings.Builder
	cfg := Config{NoColor: true, Out: &out}

	result, exit := HandleMetaCommand(cfg, ".print", tbl)
	if result != MetaCommandSuccess || exit {
		t.Fatalf("HandleMetaCommand(.print) = (%v, %v)", result, exit)
	}
	if !strings.Contains(out.String(), "ROW_SIZE") {
		t.Errorf("output missing constants dump: %q", out.String())
	}
}

func TestHandleMetaCommandBtree(t *testing.T) {
	tbl := openTestTable(t)
	var out strings.Builder
	cfg := Config{NoColor: true, Out: &out}

	result, exit := HandleMetaCommand(cfg, ".btree", tbl)
	if result != MetaCommandSuccess || exit {
		t.Fatalf("HandleMetaCommand(.btree) = (%v, %v)", result, exit)
	}
	if !strings.Contains(out.String(), "leaf;") {
		t.Errorf("output missing tree dump: %q", out.String())
	}
}

func TestHandleMetaCommandUnrecognized(t *testing.T) {
	tbl := openTestTable(t)
	var out strings.Builder
	cfg := Config{NoColor: true, Out: &out}

	result, exit := HandleMetaCommand(cfg, ".bogus", tbl)
	if result != MetaCommandUnrecognizedCommand || exit {
		t.Errorf("HandleMetaCommand(.bogus) = (%v, %v)", result, exit)
	}
}
