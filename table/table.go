package table

import (
	"fmt"
	"io"
	"strings"

	"meinsql/pager"
)

// Table is the on-disk database façade: a Pager plus the B+-tree built on
// top of it (spec §2, §4.6). There is exactly one table per file.
type Table struct {
	Pager *pager.Pager
	tree  *BTree
}

// Open opens (creating if necessary) the database file at path and prepares
// its B+-tree, initializing an empty root leaf for a brand-new file.
func Open(path string) (*Table, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	tree, err := newBTree(p)
	if err != nil {
		return nil, err
	}
	return &Table{Pager: p, tree: tree}, nil
}

// OpenWithPager wraps an already-opened Pager as a Table (exposed for tests
// that want control over the underlying file without going through the
// path-based Open).
func OpenWithPager(p *pager.Pager) (*Table, error) {
	tree, err := newBTree(p)
	if err != nil {
		return nil, err
	}
	return &Table{Pager: p, tree: tree}, nil
}

// Close flushes every resident page and closes the underlying file.
func (t *Table) Close() error {
	if err := t.Pager.Close(); err != nil {
		return fmt.Errorf("table: close: %w", err)
	}
	return nil
}

// Insert adds a row under key. It returns ErrDuplicateKey, leaving the table
// unmodified, if key already exists.
func (t *Table) Insert(key uint32, row Row) error {
	return t.tree.Insert(key, row)
}

// Find returns a cursor positioned at key, or at its would-be insertion
// point if absent.
func (t *Table) Find(key uint32) (*Cursor, error) {
	return t.tree.Find(key)
}

// Start returns a cursor positioned at the first row in key order.
func (t *Table) Start() (*Cursor, error) {
	return t.tree.Start()
}

// RootPageNum returns the page number of the tree's root (always 0).
func (t *Table) RootPageNum() uint32 {
	return t.tree.RootPageNum()
}

// SelectAll returns every row in key order, for the REPL's "select" statement.
func (t *Table) SelectAll() ([]Row, error) {
	cur, err := t.Start()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for !cur.EndOfTable {
		row, err := cur.Value()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if err := cur.Advance(); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// WriteTree writes a recursive dump of the tree's structure to w for the
// ".btree" meta-command: every page announces its own number, root-ness,
// type and key count, then an internal page's lines interleave each routing
// key with its child subtree before descending into the rightmost child,
// while a leaf page simply lists its keys.
func (t *Table) WriteTree(w io.Writer) error {
	return t.tree.printTree(w, t.tree.RootPageNum(), 0)
}

func (bt *BTree) printTree(w io.Writer, pageNum uint32, indentLevel int) error {
	typ, page, err := bt.nodeType(pageNum)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "page %d/%d; ", pageNum, pager.TableMaxPages)
	if (node{&page.Data}).IsRoot() {
		io.WriteString(w, "root; ")
	}
	switch typ {
	case NodeInternal:
		in := AsInternal(&page.Data)
		fmt.Fprintf(w, "internal; %d/%d keys\n", in.NumKeys(), InternalNodeMaxKeys)
		for i := uint32(0); i < in.NumKeys(); i++ {
			writeIndent(w, indentLevel+1)
			fmt.Fprintf(w, "+ key %d; ", in.CellKey(i))
			if err := bt.printTree(w, in.CellChild(i), indentLevel+1); err != nil {
				return err
			}
		}
		writeIndent(w, indentLevel+1)
		io.WriteString(w, "+ ")
		return bt.printTree(w, in.LastChild(), indentLevel+1)
	case NodeLeaf:
		leaf := AsLeaf(&page.Data)
		fmt.Fprintf(w, "leaf; %d/%d keys\n", leaf.NumCells(), LeafNodeMaxCells)
		for i := uint32(0); i < leaf.NumCells(); i++ {
			writeIndent(w, indentLevel+1)
			fmt.Fprintf(w, "- key %d\n", leaf.Key(i))
		}
	}
	return nil
}

func writeIndent(w io.Writer, level int) {
	io.WriteString(w, strings.Repeat("  ", level))
}

// WriteConstants writes the ".print" meta-command's dump of the engine's
// compile-time layout constants, matching the original implementation's
// print_constants diagnostic.
func WriteConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", commonHeaderSize)
	fmt.Fprintf(w, "INTERNAL_NODE_MAX_KEYS: %d\n", InternalNodeMaxKeys)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", leafCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", leafSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", LeafNodeMaxCells)
}
