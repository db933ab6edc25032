package table

import (
	"encoding/binary"

	"meinsql/pager"
)

// node is the common-header view shared by LeafNode and InternalNode: a
// typed window over a raw page buffer. It never copies the buffer, so its
// lifetime is bounded by the page staying resident in the pager's cache
// (spec §5) — callers must not retain a node past the operation that
// produced it.
type node struct {
	buf *[pager.PageSize]byte
}

func (n node) NodeType() NodeType { return NodeType(n.buf[nodeTypeOffset]) }

func (n node) SetNodeType(t NodeType) { n.buf[nodeTypeOffset] = byte(t) }

func (n node) IsRoot() bool { return n.buf[isRootOffset] != 0 }

func (n node) SetIsRoot(v bool) {
	if v {
		n.buf[isRootOffset] = 1
	} else {
		n.buf[isRootOffset] = 0
	}
}

func (n node) Parent() uint32 {
	return binary.LittleEndian.Uint32(n.buf[parentOffset : parentOffset+parentSize])
}

func (n node) SetParent(pageNum uint32) {
	binary.LittleEndian.PutUint32(n.buf[parentOffset:parentOffset+parentSize], pageNum)
}

// LeafNode is a typed view over a page holding serialized rows.
type LeafNode struct{ node }

// AsLeaf wraps a page buffer as a leaf node view without validating the
// node-type byte; callers that don't already know the type should check
// NodeType() first (see BTree.nodeType).
func AsLeaf(buf *[pager.PageSize]byte) LeafNode { return LeafNode{node{buf}} }

// InitializeLeaf zeroes the page and writes an empty, non-root leaf header.
func (n LeafNode) InitializeLeaf() {
	for i := range n.buf {
		n.buf[i] = 0
	}
	n.SetNodeType(NodeLeaf)
	n.SetIsRoot(false)
	n.SetNumCells(0)
	n.SetNextLeaf(0)
}

func (n LeafNode) NumCells() uint32 {
	return binary.LittleEndian.Uint32(n.buf[leafNumCellsOffset : leafNumCellsOffset+leafNumCellsSize])
}

func (n LeafNode) SetNumCells(v uint32) {
	binary.LittleEndian.PutUint32(n.buf[leafNumCellsOffset:leafNumCellsOffset+leafNumCellsSize], v)
}

// NextLeaf is the page number of the right sibling in key order, or 0 if
// this is the rightmost leaf (spec §3 invariant 6).
func (n LeafNode) NextLeaf() uint32 {
	return binary.LittleEndian.Uint32(n.buf[leafNextLeafOffset : leafNextLeafOffset+leafNextLeafSize])
}

func (n LeafNode) SetNextLeaf(v uint32) {
	binary.LittleEndian.PutUint32(n.buf[leafNextLeafOffset:leafNextLeafOffset+leafNextLeafSize], v)
}

func (n LeafNode) cellOffset(cellNum uint32) uint32 {
	return LeafNodeHeaderSize + cellNum*leafCellSize
}

// Key returns the key stored at cellNum. cellNum must be < NumCells().
func (n LeafNode) Key(cellNum uint32) uint32 {
	off := n.cellOffset(cellNum)
	return binary.LittleEndian.Uint32(n.buf[off : off+leafKeySize])
}

func (n LeafNode) SetKey(cellNum uint32, key uint32) {
	off := n.cellOffset(cellNum)
	binary.LittleEndian.PutUint32(n.buf[off:off+leafKeySize], key)
}

// Value returns a mutable view into the serialized row bytes of cellNum.
func (n LeafNode) Value(cellNum uint32) []byte {
	off := n.cellOffset(cellNum) + leafKeySize
	return n.buf[off : off+RowSize]
}

// CopyCell copies the (key, value) pair at src onto dst, within the same
// page. Used by leaf split and by the in-place right-shift on ordinary
// insert.
func (n LeafNode) CopyCell(dst, src uint32) {
	srcOff, dstOff := n.cellOffset(src), n.cellOffset(dst)
	copy(n.buf[dstOff:dstOff+leafCellSize], n.buf[srcOff:srcOff+leafCellSize])
}

// WriteCell writes a (key, value) pair at cellNum.
func (n LeafNode) WriteCell(cellNum, key uint32, value []byte) {
	n.SetKey(cellNum, key)
	copy(n.Value(cellNum), value)
}

// MaxKey returns the largest key stored in this leaf.
func (n LeafNode) MaxKey() uint32 { return n.Key(n.NumCells() - 1) }

// InternalCell is one (child page, routing key) pair in an internal node.
type InternalCell struct {
	Child uint32
	Key   uint32
}

// InternalNode is a typed view over a page holding routing cells and a
// rightmost child pointer.
type InternalNode struct{ node }

// AsInternal wraps a page buffer as an internal node view.
func AsInternal(buf *[pager.PageSize]byte) InternalNode { return InternalNode{node{buf}} }

// InitializeInternal zeroes the page and writes an empty, non-root internal
// header with an unset (InvalidPageNum) rightmost child.
func (n InternalNode) InitializeInternal() {
	for i := range n.buf {
		n.buf[i] = 0
	}
	n.SetNodeType(NodeInternal)
	n.SetIsRoot(false)
	n.SetNumKeys(0)
	n.SetLastChild(InvalidPageNum)
}

func (n InternalNode) NumKeys() uint32 {
	return binary.LittleEndian.Uint32(n.buf[internalNumKeysOffset : internalNumKeysOffset+internalNumKeysSize])
}

func (n InternalNode) SetNumKeys(v uint32) {
	binary.LittleEndian.PutUint32(n.buf[internalNumKeysOffset:internalNumKeysOffset+internalNumKeysSize], v)
}

func (n InternalNode) LastChild() uint32 {
	return binary.LittleEndian.Uint32(n.buf[internalLastChildOff : internalLastChildOff+internalLastChildSize])
}

func (n InternalNode) SetLastChild(pageNum uint32) {
	binary.LittleEndian.PutUint32(n.buf[internalLastChildOff:internalLastChildOff+internalLastChildSize], pageNum)
}

func (n InternalNode) cellOffset(cellNum uint32) uint32 {
	return internalHeaderSize + cellNum*internalCellSize
}

func (n InternalNode) CellChild(cellNum uint32) uint32 {
	off := n.cellOffset(cellNum)
	return binary.LittleEndian.Uint32(n.buf[off : off+internalChildSize])
}

func (n InternalNode) SetCellChild(cellNum, child uint32) {
	off := n.cellOffset(cellNum)
	binary.LittleEndian.PutUint32(n.buf[off:off+internalChildSize], child)
}

func (n InternalNode) CellKey(cellNum uint32) uint32 {
	off := n.cellOffset(cellNum) + internalChildSize
	return binary.LittleEndian.Uint32(n.buf[off : off+internalKeySize])
}

func (n InternalNode) SetCellKey(cellNum, key uint32) {
	off := n.cellOffset(cellNum) + internalChildSize
	binary.LittleEndian.PutUint32(n.buf[off:off+internalKeySize], key)
}

func (n InternalNode) SetCell(cellNum uint32, cell InternalCell) {
	n.SetCellChild(cellNum, cell.Child)
	n.SetCellKey(cellNum, cell.Key)
}

// CopyCell copies cell src onto cell dst within the same page.
func (n InternalNode) CopyCell(dst, src uint32) {
	srcOff, dstOff := n.cellOffset(src), n.cellOffset(dst)
	copy(n.buf[dstOff:dstOff+internalCellSize], n.buf[srcOff:srcOff+internalCellSize])
}

// Child returns the page number of the i-th child. i == NumKeys() returns
// LastChild(); i > NumKeys() is a caller bug (spec §4.3).
func (n InternalNode) Child(i uint32) uint32 {
	numKeys := n.NumKeys()
	if i > numKeys {
		panic("table: internal node child index out of range")
	}
	if i == numKeys {
		return n.LastChild()
	}
	return n.CellChild(i)
}
