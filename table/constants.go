package table

import "meinsql/pager"

// Every node begins with a common header: is_root (1 byte), type (1 byte),
// parent page number (4 bytes). See spec §3 Node.
const (
	isRootOffset     = 0
	isRootSize       = 1
	nodeTypeOffset   = isRootOffset + isRootSize
	nodeTypeSize     = 1
	parentOffset     = nodeTypeOffset + nodeTypeSize
	parentSize       = 4
	commonHeaderSize = nodeTypeSize + isRootSize + parentSize
)

// NodeType discriminates a page between an internal node and a leaf.
type NodeType uint8

const (
	NodeInternal NodeType = 0
	NodeLeaf     NodeType = 1
)

// InvalidPageNum sentinels an unset child pointer (re-exported for callers
// that only import package table).
const InvalidPageNum = pager.InvalidPageNum

// Leaf node header: common header + num_cells (4) + next_leaf (4).
const (
	leafNumCellsOffset = commonHeaderSize
	leafNumCellsSize   = 4
	leafNextLeafOffset = leafNumCellsOffset + leafNumCellsSize
	leafNextLeafSize   = 4
	LeafNodeHeaderSize = leafNextLeafOffset + leafNextLeafSize

	leafKeySize  = 4
	leafCellSize = leafKeySize + RowSize

	leafSpaceForCells = pager.PageSize - LeafNodeHeaderSize
	// LeafNodeMaxCells is how many (key, row) cells fit in one page.
	LeafNodeMaxCells = leafSpaceForCells / leafCellSize

	// leafRightSplitCount/leafLeftSplitCount are how a full leaf plus the
	// newly inserted cell (LeafNodeMaxCells+1 items total) divide across the
	// old (left) and new (right) sibling on split; see spec §4.4 Leaf
	// split-and-insert.
	leafRightSplitCount = (LeafNodeMaxCells + 1) / 2
	leafLeftSplitCount  = (LeafNodeMaxCells + 1) - leafRightSplitCount
)

// Internal node header: common header + num_keys (4) + last_child (4).
const (
	internalNumKeysOffset = commonHeaderSize
	internalNumKeysSize   = 4
	internalLastChildOff  = internalNumKeysOffset + internalNumKeysSize
	internalLastChildSize = 4
	internalHeaderSize    = internalLastChildOff + internalLastChildSize

	internalChildSize = 4
	internalKeySize   = 4
	internalCellSize  = internalChildSize + internalKeySize

	internalSpaceForCellsProd = pager.PageSize - internalHeaderSize
	internalNodeMaxKeysProd   = internalSpaceForCellsProd / internalCellSize

	// InternalNodeMaxKeys is deliberately small rather than the
	// page-capacity-derived internalNodeMaxKeysProd (510): spec §3 calls for
	// "a small constant, e.g. 3, to exercise splits" in this design, since a
	// production-sized fanout would make internal splits effectively
	// unreachable in any realistically sized database. See DESIGN.md.
	InternalNodeMaxKeys = 3
)
