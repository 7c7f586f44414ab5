package chattui

import (
	"github.com/parleychat/parley/internal/timeline"
)

// typingSlotID identifies the fixed decorative slot the surface always
// renders at the newest edge, independent of the collection.
const typingSlotID = "typing-slot"

// renderFunc renders one timeline item into content lines at a width.
type renderFunc func(id string, width int) []string

type surfaceRow struct {
	id         string
	decorative bool
	top        int
	height     int
}

// timelineSurface lays the applied snapshot out as terminal lines and
// implements timeline.Surface over that layout. Content coordinates put
// line 0 at the newest edge; the viewport offset scrolls toward older
// content.
type timelineSurface struct {
	width  int
	height int
	offset int

	order      []string
	decorative map[string]bool
	render     renderFunc
	typingLine func(width int) string

	rows          []surfaceRow
	lines         []string
	contentHeight int

	lastAnimated bool
}

func newTimelineSurface(render renderFunc, typingLine func(width int) string) *timelineSurface {
	return &timelineSurface{
		render:     render,
		typingLine: typingLine,
		decorative: make(map[string]bool),
	}
}

func (s *timelineSurface) setSize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width = width
	s.height = height
	s.relayout()
}

// setDecorative tells the surface which collection items are decorative,
// so it can mark their rows for the engine.
func (s *timelineSurface) setDecorative(ids map[string]bool) {
	s.decorative = ids
}

// ApplySnapshot implements timeline.Surface.
func (s *timelineSurface) ApplySnapshot(order []string, animated bool) {
	s.order = append([]string(nil), order...)
	s.lastAnimated = animated
	s.relayout()
}

// ScrollTo implements timeline.Surface.
func (s *timelineSurface) ScrollTo(id string, align timeline.Align, _ bool) {
	for _, row := range s.rows {
		if row.id != id {
			continue
		}
		target := row.top
		if align == timeline.AlignCenter {
			target = row.top + row.height/2 - s.height/2
		} else if len(s.order) > 0 && id == s.order[0] {
			// Leading-aligning the newest item also reveals the
			// decorative slot above it.
			target = 0
		}
		s.offset = s.clampOffset(target)
		return
	}
}

// AdjustOffset implements timeline.Surface.
func (s *timelineSurface) AdjustOffset(delta int) {
	s.offset = s.clampOffset(s.offset + delta)
}

// VisibleRows implements timeline.Surface.
func (s *timelineSurface) VisibleRows() []timeline.Row {
	out := make([]timeline.Row, 0, 16)
	lo, hi := s.offset, s.offset+s.height
	for _, row := range s.rows {
		if row.top+row.height <= lo || row.top >= hi {
			continue
		}
		out = append(out, timeline.Row{
			ID:         row.id,
			Decorative: row.decorative,
			Frame:      timeline.Frame{Top: row.top - s.offset, Height: row.height},
		})
	}
	return out
}

// Metrics implements timeline.Surface.
func (s *timelineSurface) Metrics() timeline.Metrics {
	return timeline.Metrics{
		Offset:         s.offset,
		ContentHeight:  s.contentHeight,
		ViewportHeight: s.height,
	}
}

// scrollBy shifts the offset by delta rows; reports whether it moved.
func (s *timelineSurface) scrollBy(delta int) bool {
	next := s.clampOffset(s.offset + delta)
	if next == s.offset {
		return false
	}
	s.offset = next
	return true
}

// contentLines returns the full laid-out content for the viewport.
func (s *timelineSurface) contentLines() []string {
	return s.lines
}

func (s *timelineSurface) relayout() {
	s.rows = s.rows[:0]
	s.lines = s.lines[:0]

	if s.width <= 0 {
		s.contentHeight = 0
		return
	}

	// Fixed decorative slot, always present, exactly one line.
	s.lines = append(s.lines, s.typingLine(s.width))
	s.rows = append(s.rows, surfaceRow{id: typingSlotID, decorative: true, top: 0, height: 1})

	top := 1
	for _, id := range s.order {
		rendered := s.render(id, s.width)
		if len(rendered) == 0 {
			continue
		}
		s.rows = append(s.rows, surfaceRow{
			id:         id,
			decorative: s.decorative[id],
			top:        top,
			height:     len(rendered),
		})
		s.lines = append(s.lines, rendered...)
		top += len(rendered)
	}
	s.contentHeight = top
	s.offset = s.clampOffset(s.offset)
}

func (s *timelineSurface) clampOffset(offset int) int {
	max := s.contentHeight - s.height
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
