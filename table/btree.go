// Package table implements the paged B+-tree storage engine: row
// serialization, typed node accessors over pager-owned page buffers, the
// B+-tree search/insert/split algorithms, the leaf cursor, and the
// table/database façade described in spec §2-4.
package table

import (
	"errors"
	"fmt"
	"sort"

	"meinsql/pager"
)

// ErrDuplicateKey is returned by Insert when the key already exists in the
// tree. Per spec §7, this is a recoverable execution error: the tree is left
// unmodified.
var ErrDuplicateKey = errors.New("table: duplicate key")

// rootPageNum is fixed for the lifetime of the database file (spec §3
// invariant 1): page 0 is always the root.
const rootPageNum uint32 = 0

// BTree is the disk-resident B+-tree engine. It owns no state beyond the
// pager and is safe to rebuild from an open Pager at any time — all durable
// state (root page number, node contents) lives in the file itself.
type BTree struct {
	pager *pager.Pager
}

// newBTree wraps an already-opened Pager as a B+-tree, initializing page 0
// as an empty leaf root if the file is brand new.
func newBTree(p *pager.Pager) (*BTree, error) {
	bt := &BTree{pager: p}
	if p.NumPages() == 0 {
		page, err := p.Get(rootPageNum)
		if err != nil {
			return nil, fmt.Errorf("table: initializing root: %w", err)
		}
		root := AsLeaf(&page.Data)
		root.InitializeLeaf()
		root.SetIsRoot(true)
		page.Dirty = true
	}
	return bt, nil
}

func (bt *BTree) nodeType(pageNum uint32) (NodeType, *pager.Page, error) {
	page, err := bt.pager.Get(pageNum)
	if err != nil {
		return 0, nil, err
	}
	return NodeType(page.Data[nodeTypeOffset]), page, nil
}

// maxKeyOf returns the largest key stored in the subtree rooted at pageNum
// (spec §4.3 get_node_max_key): the last cell's key for a leaf, or a
// recursive descent into last_child for an internal node.
func (bt *BTree) maxKeyOf(pageNum uint32) (uint32, error) {
	typ, page, err := bt.nodeType(pageNum)
	if err != nil {
		return 0, err
	}
	if typ == NodeLeaf {
		return AsLeaf(&page.Data).MaxKey(), nil
	}
	return bt.maxKeyOf(AsInternal(&page.Data).LastChild())
}

func internalFindChildIndex(in InternalNode, key uint32) uint32 {
	numKeys := in.NumKeys()
	idx := sort.Search(int(numKeys), func(i int) bool { return in.CellKey(uint32(i)) >= key })
	return uint32(idx)
}

// findLeaf descends from pageNum to the leaf that should contain key,
// returning its page number and the cell index where key is found or where
// it should be inserted (spec §4.4 find_leaf / leaf_find).
func (bt *BTree) findLeaf(pageNum, key uint32) (leafPage uint32, cellNum uint32, err error) {
	typ, page, err := bt.nodeType(pageNum)
	if err != nil {
		return 0, 0, err
	}
	if typ == NodeInternal {
		in := AsInternal(&page.Data)
		idx := internalFindChildIndex(in, key)
		return bt.findLeaf(in.Child(idx), key)
	}
	leaf := AsLeaf(&page.Data)
	numCells := leaf.NumCells()
	idx := sort.Search(int(numCells), func(i int) bool { return leaf.Key(uint32(i)) >= key })
	return pageNum, uint32(idx), nil
}

// Find locates key and returns a cursor positioned at the matching cell, or
// at the insertion point if key is absent (spec §4.6 table_find).
func (bt *BTree) Find(key uint32) (*Cursor, error) {
	pageNum, cellNum, err := bt.findLeaf(rootPageNum, key)
	if err != nil {
		return nil, err
	}
	return &Cursor{bt: bt, PageNum: pageNum, CellNum: cellNum}, nil
}

// Insert adds key and row to the tree. It fails with ErrDuplicateKey,
// leaving the tree unmodified, if key is already present (spec §4.4, §8).
func (bt *BTree) Insert(key uint32, row Row) error {
	leafPageNum, cellNum, err := bt.findLeaf(rootPageNum, key)
	if err != nil {
		return err
	}
	page, err := bt.pager.Get(leafPageNum)
	if err != nil {
		return err
	}
	leaf := AsLeaf(&page.Data)
	if cellNum < leaf.NumCells() && leaf.Key(cellNum) == key {
		return ErrDuplicateKey
	}
	return bt.leafInsert(leafPageNum, cellNum, key, row)
}

// leafInsert writes (key, row) at cellNum in the leaf at leafPageNum,
// shifting cells right in place, or splits the leaf if it is already full
// (spec §4.4 Leaf insert / Leaf split-and-insert).
func (bt *BTree) leafInsert(leafPageNum, cellNum, key uint32, row Row) error {
	page, err := bt.pager.Get(leafPageNum)
	if err != nil {
		return err
	}
	leaf := AsLeaf(&page.Data)
	numCells := leaf.NumCells()

	if numCells >= LeafNodeMaxCells {
		return bt.leafSplitAndInsert(leafPageNum, cellNum, key, row)
	}

	for i := numCells; i > cellNum; i-- {
		leaf.CopyCell(i, i-1)
	}
	var rowBuf [RowSize]byte
	if err := SerializeRow(row, rowBuf[:]); err != nil {
		return err
	}
	leaf.WriteCell(cellNum, key, rowBuf[:])
	leaf.SetNumCells(numCells + 1)
	page.Dirty = true

	// Appending past the previous last cell always raises the leaf's max
	// key; the parent's routing key for this leaf must follow (spec §4.4).
	if cellNum == numCells && numCells > 0 && !leaf.IsRoot() {
		oldMax := leaf.Key(numCells - 1)
		if err := bt.updateInternalNodeKey(leaf.Parent(), oldMax, key); err != nil {
			return err
		}
	}
	return nil
}

// leafSplitAndInsert implements spec §4.4 Leaf split-and-insert: the
// LEAF_NODE_MAX_CELLS+1 items (existing cells plus the inserted one) are
// distributed across old (left) and a freshly allocated new (right)
// sibling, walking from the highest virtual index down to 0 so that writes
// into the still-being-read "old" node never clobber a cell before it is
// read (see DESIGN.md).
func (bt *BTree) leafSplitAndInsert(oldPageNum, cellNum, key uint32, row Row) error {
	oldPage, err := bt.pager.Get(oldPageNum)
	if err != nil {
		return err
	}
	old := AsLeaf(&oldPage.Data)
	oldMaxKeyBeforeSplit := old.Key(LeafNodeMaxCells - 1)
	wasRoot := old.IsRoot()
	oldParent := old.Parent()

	newPageNum := bt.pager.UnusedPageNum()
	newPage, err := bt.pager.Get(newPageNum)
	if err != nil {
		return err
	}
	newLeaf := AsLeaf(&newPage.Data)
	newLeaf.InitializeLeaf()
	newLeaf.SetParent(oldParent)
	newLeaf.SetNextLeaf(old.NextLeaf())
	old.SetNextLeaf(newPageNum)
	oldPage.Dirty = true
	newPage.Dirty = true

	var rowBuf [RowSize]byte
	if err := SerializeRow(row, rowBuf[:]); err != nil {
		return err
	}

	const left = leafLeftSplitCount
	for i := int(LeafNodeMaxCells); i >= 0; i-- {
		var srcKey uint32
		var srcVal []byte
		switch {
		case uint32(i) == cellNum:
			srcKey, srcVal = key, rowBuf[:]
		case uint32(i) < cellNum:
			srcKey, srcVal = old.Key(uint32(i)), old.Value(uint32(i))
		default:
			srcKey, srcVal = old.Key(uint32(i-1)), old.Value(uint32(i-1))
		}
		if uint32(i) >= left {
			newLeaf.WriteCell(uint32(i)-left, srcKey, srcVal)
		} else {
			old.WriteCell(uint32(i), srcKey, srcVal)
		}
	}
	old.SetNumCells(leafLeftSplitCount)
	newLeaf.SetNumCells(leafRightSplitCount)

	if wasRoot {
		_, err := bt.createNewRoot(newPageNum)
		return err
	}

	newMax, err := bt.maxKeyOf(oldPageNum)
	if err != nil {
		return err
	}
	if err := bt.updateInternalNodeKey(oldParent, oldMaxKeyBeforeSplit, newMax); err != nil {
		return err
	}
	return bt.internalInsert(oldParent, newPageNum)
}

// createNewRoot implements spec §4.4 Root replacement. The root page number
// never changes: the current root's bytes move to a freshly allocated page
// L, and the root page is rebuilt in place as a 1-key internal node routing
// between L and newChildPageNum. It returns L's page number so callers that
// were operating on "the old root" can keep working with its relocated
// bytes.
func (bt *BTree) createNewRoot(newChildPageNum uint32) (uint32, error) {
	rootPage, err := bt.pager.Get(rootPageNum)
	if err != nil {
		return 0, err
	}

	lPageNum := bt.pager.UnusedPageNum()
	lPage, err := bt.pager.Get(lPageNum)
	if err != nil {
		return 0, err
	}
	lPage.Data = rootPage.Data
	lPage.Dirty = true
	lView := node{&lPage.Data}
	lView.SetIsRoot(false)

	lMaxKey, err := bt.maxKeyOf(lPageNum)
	if err != nil {
		return 0, err
	}

	for i := range rootPage.Data {
		rootPage.Data[i] = 0
	}
	root := AsInternal(&rootPage.Data)
	root.SetNodeType(NodeInternal)
	root.SetIsRoot(true)
	root.SetNumKeys(1)
	root.SetCell(0, InternalCell{Child: lPageNum, Key: lMaxKey})
	root.SetLastChild(newChildPageNum)
	rootPage.Dirty = true

	if err := bt.setParent(lPageNum, rootPageNum); err != nil {
		return 0, err
	}
	if err := bt.setParent(newChildPageNum, rootPageNum); err != nil {
		return 0, err
	}

	if lView.NodeType() == NodeInternal {
		lInternal := AsInternal(&lPage.Data)
		for i := uint32(0); i < lInternal.NumKeys(); i++ {
			if err := bt.setParent(lInternal.CellChild(i), lPageNum); err != nil {
				return 0, err
			}
		}
		if lInternal.LastChild() != InvalidPageNum {
			if err := bt.setParent(lInternal.LastChild(), lPageNum); err != nil {
				return 0, err
			}
		}
	}
	return lPageNum, nil
}

func (bt *BTree) setParent(pageNum, parentPageNum uint32) error {
	page, err := bt.pager.Get(pageNum)
	if err != nil {
		return err
	}
	node{&page.Data}.SetParent(parentPageNum)
	page.Dirty = true
	return nil
}

// updateInternalNodeKey implements spec §4.4 Internal key update: it
// locates the cell whose key equals oldKey and overwrites it with newKey.
// The rightmost child (LastChild) has no key entry, so when oldKey is greater
// than every key in the node the node is left unchanged.
func (bt *BTree) updateInternalNodeKey(pageNum, oldKey, newKey uint32) error {
	page, err := bt.pager.Get(pageNum)
	if err != nil {
		return err
	}
	in := AsInternal(&page.Data)
	idx := sort.Search(int(in.NumKeys()), func(i int) bool { return in.CellKey(uint32(i)) >= oldKey })
	if uint32(idx) >= in.NumKeys() {
		return nil
	}
	if in.CellKey(uint32(idx)) != oldKey {
		return fmt.Errorf("table: updateInternalNodeKey: key %d not found on page %d", oldKey, pageNum)
	}
	in.SetCellKey(uint32(idx), newKey)
	page.Dirty = true
	return nil
}

// internalInsert implements spec §4.4 Internal insert: it routes childPageNum
// into the internal node at parentPageNum, splitting that node first if it
// is already full.
func (bt *BTree) internalInsert(parentPageNum, childPageNum uint32) error {
	page, err := bt.pager.Get(parentPageNum)
	if err != nil {
		return err
	}
	parent := AsInternal(&page.Data)

	if parent.LastChild() == InvalidPageNum {
		parent.SetLastChild(childPageNum)
		page.Dirty = true
		return bt.setParent(childPageNum, parentPageNum)
	}

	childKey, err := bt.maxKeyOf(childPageNum)
	if err != nil {
		return err
	}

	if parent.NumKeys() >= InternalNodeMaxKeys {
		return bt.internalSplitAndInsert(parentPageNum, childPageNum, childKey)
	}

	parentMaxKey, err := bt.maxKeyOf(parentPageNum)
	if err != nil {
		return err
	}
	if childKey > parentMaxKey {
		oldLast := parent.LastChild()
		oldLastKey, err := bt.maxKeyOf(oldLast)
		if err != nil {
			return err
		}
		parent.SetCell(parent.NumKeys(), InternalCell{Child: oldLast, Key: oldLastKey})
		parent.SetLastChild(childPageNum)
	} else {
		idx := internalFindChildIndex(parent, childKey)
		for i := parent.NumKeys(); i > idx; i-- {
			parent.CopyCell(i, i-1)
		}
		parent.SetCell(idx, InternalCell{Child: childPageNum, Key: childKey})
	}
	parent.SetNumKeys(parent.NumKeys() + 1)
	page.Dirty = true
	return bt.setParent(childPageNum, parentPageNum)
}

// internalSplitAndInsert implements spec §4.4 Internal split-and-insert.
// oldPageNum names the full internal node; insertChildPageNum/insertKey is
// the cell that triggered the split and still needs a home once the node
// has been divided.
func (bt *BTree) internalSplitAndInsert(oldPageNum, insertChildPageNum, insertKey uint32) error {
	oldPage, err := bt.pager.Get(oldPageNum)
	if err != nil {
		return err
	}
	old := AsInternal(&oldPage.Data)
	oldMaxKeyBeforeSplit, err := bt.maxKeyOf(oldPageNum)
	if err != nil {
		return err
	}
	wasRoot := old.IsRoot()

	newSiblingPageNum := bt.pager.UnusedPageNum()
	newSiblingPage, err := bt.pager.Get(newSiblingPageNum)
	if err != nil {
		return err
	}
	newSibling := AsInternal(&newSiblingPage.Data)
	newSibling.InitializeInternal()
	newSiblingPage.Dirty = true

	if wasRoot {
		relocated, err := bt.createNewRoot(newSiblingPageNum)
		if err != nil {
			return err
		}
		oldPageNum = relocated
		oldPage, err = bt.pager.Get(oldPageNum)
		if err != nil {
			return err
		}
		old = AsInternal(&oldPage.Data)
	} else if insertKey > oldMaxKeyBeforeSplit {
		// The pending child already holds the upper keys split off old's
		// rightmost child, so old's routing key in its parent is insertKey.
		oldMaxKeyBeforeSplit = insertKey
	}

	const half = InternalNodeMaxKeys / 2
	if err := bt.internalInsert(newSiblingPageNum, old.LastChild()); err != nil {
		return err
	}
	for i := InternalNodeMaxKeys - 1; i > half; i-- {
		if err := bt.internalInsert(newSiblingPageNum, old.CellChild(uint32(i))); err != nil {
			return err
		}
	}

	promoted := old.CellChild(uint32(half))
	old.SetLastChild(promoted)
	old.SetNumKeys(uint32(half))
	oldPage.Dirty = true

	oldNewMax, err := bt.maxKeyOf(oldPageNum)
	if err != nil {
		return err
	}
	if insertKey <= oldNewMax {
		if err := bt.internalInsert(oldPageNum, insertChildPageNum); err != nil {
			return err
		}
	} else {
		if err := bt.internalInsert(newSiblingPageNum, insertChildPageNum); err != nil {
			return err
		}
	}

	grandparentPageNum := old.Parent()
	finalOldMax, err := bt.maxKeyOf(oldPageNum)
	if err != nil {
		return err
	}
	if err := bt.updateInternalNodeKey(grandparentPageNum, oldMaxKeyBeforeSplit, finalOldMax); err != nil {
		return err
	}
	if !wasRoot {
		return bt.internalInsert(grandparentPageNum, newSiblingPageNum)
	}
	return nil
}

// firstLeaf descends to the leftmost leaf of the tree.
func (bt *BTree) firstLeaf() (uint32, error) {
	pageNum := uint32(rootPageNum)
	for {
		typ, page, err := bt.nodeType(pageNum)
		if err != nil {
			return 0, err
		}
		if typ == NodeLeaf {
			return pageNum, nil
		}
		in := AsInternal(&page.Data)
		pageNum = in.Child(0)
	}
}

// Start returns a cursor positioned at the first row in key order (spec §4.6).
func (bt *BTree) Start() (*Cursor, error) {
	pageNum, err := bt.firstLeaf()
	if err != nil {
		return nil, err
	}
	page, err := bt.pager.Get(pageNum)
	if err != nil {
		return nil, err
	}
	leaf := AsLeaf(&page.Data)
	return &Cursor{bt: bt, PageNum: pageNum, CellNum: 0, EndOfTable: leaf.NumCells() == 0}, nil
}

// RootPageNum returns the page number of the tree's root (always 0).
func (bt *BTree) RootPageNum() uint32 { return rootPageNum }
