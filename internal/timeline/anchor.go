package timeline

// anchor records one item's on-screen frame immediately before a mutation
// so the item can be pinned to the same position afterwards. It lives for
// a single apply-cycle.
type anchor struct {
	itemID string
	frame  Frame
}

// captureAnchor picks the first visible non-decorative row, top to bottom.
// Returns nil when the viewport shows no such row.
func captureAnchor(surface Surface) *anchor {
	for _, row := range surface.VisibleRows() {
		if row.Decorative {
			continue
		}
		return &anchor{itemID: row.ID, frame: row.Frame}
	}
	return nil
}

// restoreAnchor repositions the viewport so the anchored item's trailing
// edge lands where it was recorded. If the item disappeared from the
// collection, the restore is silently skipped.
func restoreAnchor(surface Surface, coll *collection, a anchor) {
	if _, ok := coll.byID(a.itemID); !ok {
		return
	}
	surface.ScrollTo(a.itemID, AlignLeading, false)
	for _, row := range surface.VisibleRows() {
		if row.ID != a.itemID {
			continue
		}
		if delta := row.Frame.Bottom() - a.frame.Bottom(); delta != 0 {
			surface.AdjustOffset(delta)
		}
		return
	}
}
