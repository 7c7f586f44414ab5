package chattui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/timeline"
)

func newTestSurface(width, height int) *timelineSurface {
	render := func(id string, _ int) []string {
		return []string{id + " line 1", id + " line 2"}
	}
	typing := func(_ int) string { return "live" }
	s := newTimelineSurface(render, typing)
	s.setSize(width, height)
	return s
}

func TestSurfaceLayoutWithTypingSlot(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"b", "a"}, false)

	m := s.Metrics()
	require.Equal(t, 0, m.Offset)
	require.Equal(t, 5, m.ContentHeight, "one slot line plus two items of two lines")
	require.Equal(t, 4, m.ViewportHeight)

	rows := s.VisibleRows()
	require.Len(t, rows, 3)
	require.Equal(t, timeline.Row{ID: typingSlotID, Decorative: true, Frame: timeline.Frame{Top: 0, Height: 1}}, rows[0])
	require.Equal(t, timeline.Row{ID: "b", Frame: timeline.Frame{Top: 1, Height: 2}}, rows[1])
	require.Equal(t, timeline.Row{ID: "a", Frame: timeline.Frame{Top: 3, Height: 2}}, rows[2])

	require.Equal(t, "live", s.contentLines()[0])
	require.Len(t, s.contentLines(), 5)
}

func TestSurfaceVisibleRowsAfterScroll(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"d", "c", "b", "a"}, false)

	require.True(t, s.scrollBy(3))
	require.Equal(t, 3, s.Metrics().Offset)

	rows := s.VisibleRows()
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	require.Equal(t, []string{"c", "b"}, ids, "slot and d scrolled off the leading edge, a below the viewport")
	require.Equal(t, timeline.Frame{Top: 0, Height: 2}, rows[0].Frame)
}

func TestSurfaceScrollByClampsAndReportsMovement(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"b", "a"}, false)

	require.True(t, s.scrollBy(100))
	require.Equal(t, 1, s.Metrics().Offset, "clamped to content height minus viewport")
	require.False(t, s.scrollBy(1), "already at the clamp")
	require.True(t, s.scrollBy(-1))
	require.False(t, s.scrollBy(-1))
}

func TestSurfaceScrollToNewestRevealsSlot(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"d", "c", "b", "a"}, false)
	s.scrollBy(5)

	s.ScrollTo("d", timeline.AlignLeading, false)
	require.Equal(t, 0, s.Metrics().Offset, "the newest item drags the slot above it into view")
}

func TestSurfaceScrollToAlignments(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"d", "c", "b", "a"}, false)

	s.ScrollTo("b", timeline.AlignLeading, false)
	require.Equal(t, 5, s.Metrics().Offset)

	s.ScrollTo("c", timeline.AlignCenter, false)
	require.Equal(t, 2, s.Metrics().Offset)

	before := s.Metrics().Offset
	s.ScrollTo("nope", timeline.AlignLeading, false)
	require.Equal(t, before, s.Metrics().Offset, "unknown ids are a no-op")
}

func TestSurfaceAdjustOffsetClamps(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"d", "c", "b", "a"}, false)

	s.AdjustOffset(2)
	require.Equal(t, 2, s.Metrics().Offset)
	s.AdjustOffset(-100)
	require.Equal(t, 0, s.Metrics().Offset)
	s.AdjustOffset(100)
	require.Equal(t, 5, s.Metrics().Offset)
}

func TestSurfaceDecorativeRowsAreMarked(t *testing.T) {
	s := newTestSurface(20, 10)
	s.setDecorative(map[string]bool{"spin": true})
	s.ApplySnapshot([]string{"spin", "a"}, false)

	rows := s.VisibleRows()
	require.True(t, rows[0].Decorative, "typing slot")
	require.True(t, rows[1].Decorative, "collection spinner")
	require.False(t, rows[2].Decorative)
}

func TestSurfaceShrinkingContentClampsOffset(t *testing.T) {
	s := newTestSurface(20, 4)
	s.ApplySnapshot([]string{"d", "c", "b", "a"}, false)
	s.scrollBy(5)

	s.ApplySnapshot([]string{"a"}, false)
	require.Equal(t, 0, s.Metrics().Offset)
}

func TestSurfaceWithoutSizeRendersNothing(t *testing.T) {
	s := newTimelineSurface(
		func(id string, _ int) []string { return []string{id} },
		func(_ int) string { return "" },
	)
	s.ApplySnapshot([]string{"a"}, false)

	require.Empty(t, s.VisibleRows())
	require.Zero(t, s.Metrics().ContentHeight)

	// The applied order survives a later resize.
	s.setSize(20, 4)
	require.Len(t, s.VisibleRows(), 2)
}
