package table

// Cursor tracks a position within a leaf's cells and follows the next_leaf
// chain across page boundaries, giving callers an ordered, forward-only scan
// over the whole table (spec §4.5).
type Cursor struct {
	bt *BTree

	PageNum uint32
	CellNum uint32

	// EndOfTable is set once Advance walks past the last cell of the
	// rightmost leaf.
	EndOfTable bool
}

// Value deserializes the row at the cursor's current position.
func (c *Cursor) Value() (Row, error) {
	page, err := c.bt.pager.Get(c.PageNum)
	if err != nil {
		return Row{}, err
	}
	leaf := AsLeaf(&page.Data)
	return DeserializeRow(leaf.Value(c.CellNum))
}

// Key returns the key at the cursor's current position.
func (c *Cursor) Key() (uint32, error) {
	page, err := c.bt.pager.Get(c.PageNum)
	if err != nil {
		return 0, err
	}
	return AsLeaf(&page.Data).Key(c.CellNum), nil
}

// Advance moves the cursor to the next cell in key order, crossing into the
// right sibling leaf via next_leaf when the current leaf is exhausted, and
// setting EndOfTable once the rightmost leaf's last cell has been passed
// (spec §3 invariant 6, §4.5).
func (c *Cursor) Advance() error {
	page, err := c.bt.pager.Get(c.PageNum)
	if err != nil {
		return err
	}
	leaf := AsLeaf(&page.Data)
	c.CellNum++
	if c.CellNum >= leaf.NumCells() {
		next := leaf.NextLeaf()
		if next == 0 {
			c.EndOfTable = true
			return nil
		}
		c.PageNum = next
		c.CellNum = 0
	}
	return nil
}
