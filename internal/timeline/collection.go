package timeline

// collection is the working ordered keyed collection. It is replaced
// wholesale on every update; there is no partial mutation API.
//
// Producer order is oldest first. Display order is the reverse: the
// viewport shows the newest item at its leading edge.
type collection struct {
	items []Item
	index map[string]int
}

func (c *collection) set(items []Item) {
	c.items = make([]Item, 0, len(items))
	c.index = make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		// Keys are unique by contract; keep the first occurrence if a
		// producer ever violates that.
		if _, dup := c.index[it.ID]; dup {
			continue
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
}

func (c *collection) len() int {
	return len(c.items)
}

func (c *collection) byID(id string) (Item, bool) {
	if c.index == nil {
		return Item{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// findEvent returns the first item (in producer order) whose underlying
// event identifier matches.
func (c *collection) findEvent(eventID string) (Item, bool) {
	if eventID == "" {
		return Item{}, false
	}
	for _, it := range c.items {
		if it.EventID == eventID {
			return it, true
		}
	}
	return Item{}, false
}

// displayOrder returns item IDs newest first.
func (c *collection) displayOrder() []string {
	out := make([]string, 0, len(c.items))
	for i := len(c.items) - 1; i >= 0; i-- {
		out = append(out, c.items[i].ID)
	}
	return out
}
