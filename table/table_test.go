package table

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meinsql/pager"
)

func openTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func mustInsert(t *testing.T, tbl *Table, id uint32) {
	t.Helper()
	row := Row{ID: id, Username: "user", Email: "user@example.com"}
	if err := tbl.Insert(id, row); err != nil {
		t.Fatalf("Insert(%d): %v", id, err)
	}
}

func TestEmptyDatabaseIsSinglePageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Size() != pager.PageSize {
		t.Errorf("file size = %d; want %d", fi.Size(), pager.PageSize)
	}
}

func TestInsertAndSelectSortedOrder(t *testing.T) {
	tbl := openTestTable(t)
	ids := []uint32{5, 1, 9, 3, 7, 2, 8, 4, 6}
	for _, id := range ids {
		mustInsert(t, tbl, id)
	}
	rows, err := tbl.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != len(ids) {
		t.Fatalf("got %d rows; want %d", len(rows), len(ids))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].ID >= rows[i].ID {
			t.Fatalf("rows not sorted at index %d: %d >= %d", i, rows[i-1].ID, rows[i].ID)
		}
	}
}

func TestDuplicateKeyRejectedWithoutMutation(t *testing.T) {
	tbl := openTestTable(t)
	mustInsert(t, tbl, 1)
	mustInsert(t, tbl, 2)

	err := tbl.Insert(1, Row{ID: 1, Username: "other", Email: "other@example.com"})
	if err != ErrDuplicateKey {
		t.Fatalf("Insert duplicate: got %v; want ErrDuplicateKey", err)
	}

	rows, err := tbl.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows after rejected duplicate; want 2", len(rows))
	}
	if rows[0].Username != "user" {
		t.Errorf("original row at key 1 was mutated: %+v", rows[0])
	}
}

func TestInsertRejectsOversizedFields(t *testing.T) {
	tbl := openTestTable(t)
	long := make([]byte, MaxUsernameLen+1)
	for i := range long {
		long[i] = 'z'
	}
	err := tbl.Insert(1, Row{ID: 1, Username: string(long), Email: "a@b.com"})
	if err == nil {
		t.Fatal("expected error inserting oversized username")
	}
	rows, err := tbl.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rejected insert should not have added a row, got %d", len(rows))
	}
}

func TestLeafSplitBoundary(t *testing.T) {
	tbl := openTestTable(t)
	for id := uint32(1); id <= LeafNodeMaxCells+1; id++ {
		mustInsert(t, tbl, id)
	}
	rows, err := tbl.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != LeafNodeMaxCells+1 {
		t.Fatalf("got %d rows; want %d", len(rows), LeafNodeMaxCells+1)
	}

	page, err := tbl.Pager.Get(tbl.RootPageNum())
	if err != nil {
		t.Fatalf("Get root: %v", err)
	}
	if NodeType(page.Data[nodeTypeOffset]) != NodeInternal {
		t.Fatal("root should have become internal after exceeding LeafNodeMaxCells")
	}
	validateTree(t, tbl)
}

func TestManyInsertsForceMultiLevelSplits(t *testing.T) {
	tbl := openTestTable(t)
	const n = 400
	ids := rand.New(rand.NewSource(1)).Perm(n)
	for _, id := range ids {
		mustInsert(t, tbl, uint32(id)+1)
	}

	rows, err := tbl.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != n {
		t.Fatalf("got %d rows; want %d", len(rows), n)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].ID >= rows[i].ID {
			t.Fatalf("rows not sorted at index %d", i)
		}
	}
	validateTree(t, tbl)
}

func TestFindLocatesInsertedKeyAndInsertionPoint(t *testing.T) {
	tbl := openTestTable(t)
	for _, id := range []uint32{10, 20, 30} {
		mustInsert(t, tbl, id)
	}

	cur, err := tbl.Find(20)
	if err != nil {
		t.Fatalf("Find(20): %v", err)
	}
	row, err := cur.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if row.ID != 20 {
		t.Errorf("Find(20) returned row ID %d; want 20", row.ID)
	}

	cur, err = tbl.Find(15)
	if err != nil {
		t.Fatalf("Find(15): %v", err)
	}
	key, err := cur.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if key != 20 {
		t.Errorf("Find(15) insertion point key = %d; want 20 (first key >= 15)", key)
	}
}

func TestReopenPreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for id := uint32(1); id <= 50; id++ {
		mustInsert(t, tbl, id)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tbl2, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	defer tbl2.Close()
	rows, err := tbl2.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll after reopen: %v", err)
	}
	if len(rows) != 50 {
		t.Fatalf("got %d rows after reopen; want 50", len(rows))
	}
	validateTree(t, tbl2)
}

func TestWriteTreeAndConstantsDoNotError(t *testing.T) {
	tbl := openTestTable(t)
	for id := uint32(1); id <= 30; id++ {
		mustInsert(t, tbl, id)
	}
	var buf strings.Builder
	if err := tbl.WriteTree(&buf); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("WriteTree produced no output")
	}
	WriteConstants(&buf)
}
