package app

// Cursor points at the displayed question. It never wraps.
type Cursor struct {
	index  int
	count  int
	frozen bool
}

func NewCursor(count int) *Cursor {
	return &Cursor{count: count}
}

// Next moves forward and reports whether it moved.
func (c *Cursor) Next() bool {
	if c.frozen || c.index >= c.count-1 {
		return false
	}
	c.index++
	return true
}

// Previous moves back and reports whether it moved.
func (c *Cursor) Previous() bool {
	if c.frozen || c.index <= 0 {
		return false
	}
	c.index--
	return true
}

func (c *Cursor) Index() int { return c.index }

func (c *Cursor) Count() int { return c.count }

// Freeze stops all further movement.
func (c *Cursor) Freeze() { c.frozen = true }
