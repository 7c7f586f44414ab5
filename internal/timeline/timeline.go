// Package timeline implements the view synchronization engine behind the
// room view: it keeps an ordered keyed collection of timeline items, diffs
// it against the last rendered state, preserves the reader's scroll anchor
// across mutations, gates bidirectional pagination, and reports the newest
// visible item for read receipts.
//
// The engine performs no I/O. It talks to the rendering layer through
// Surface and signals the host through Sink. All methods must be called
// from a single goroutine (the TUI update loop).
package timeline

// Kind tags a timeline item. Decorative kinds are excluded from scroll
// anchoring and read-receipt selection.
type Kind int

const (
	KindMessage Kind = iota
	KindPaginationSpinner
	KindTypingIndicator
)

// Decorative reports whether the kind is a non-content row.
func (k Kind) Decorative() bool {
	return k != KindMessage
}

// Item is one entry of the timeline collection. Items are opaque to the
// engine beyond their identifier, event identifier, and kind; they are
// replaced wholesale on update, never mutated in place.
type Item struct {
	// ID is the stable, timeline-unique item identifier.
	ID string
	// EventID is the underlying event identifier used for permalinks and
	// read receipts. Empty for decorative items.
	EventID string
	Kind    Kind
}

// Direction selects one of the two pagination directions.
type Direction int

const (
	// Backward loads older content.
	Backward Direction = iota
	// Forward loads newer content.
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// PaginationState is the externally-owned per-direction pagination state.
type PaginationState int

const (
	PaginationIdle PaginationState = iota
	Paginating
	PaginationEnded
)

// Align selects where ScrollTo places the target row in the viewport.
type Align int

const (
	// AlignLeading scrolls the row to the viewport's leading (top) edge.
	AlignLeading Align = iota
	// AlignCenter centers the row in the viewport.
	AlignCenter
)

// Frame is a row's vertical extent in viewport coordinates, measured in
// rows. Top may be negative for rows partially scrolled off the leading
// edge.
type Frame struct {
	Top    int
	Height int
}

// Bottom returns the frame's trailing edge.
func (f Frame) Bottom() int {
	return f.Top + f.Height
}

// Row is one currently rendered row, as reported by the surface.
// Decorative covers both decorative collection items and the surface's own
// fixed typing-indicator slot, which is not part of the collection.
type Row struct {
	ID         string
	Decorative bool
	Frame      Frame
}

// Metrics is the surface's current scroll geometry. Offset zero is the
// newest-content edge; larger offsets scroll toward older content.
type Metrics struct {
	Offset         int
	ContentHeight  int
	ViewportHeight int
}

// Surface is the rendering side of the engine. Implementations apply
// snapshots and reposition the viewport; they must not call back into the
// engine from within these methods.
type Surface interface {
	// ApplySnapshot replaces the main section with the given display
	// order (newest first). The surface keeps its fixed decorative slot
	// regardless of the order's contents.
	ApplySnapshot(order []string, animated bool)
	// ScrollTo repositions the viewport so the identified row sits at
	// the requested alignment. Unknown identifiers are a no-op.
	ScrollTo(id string, align Align, animated bool)
	// AdjustOffset shifts the viewport offset by delta rows.
	AdjustOffset(delta int)
	// VisibleRows returns the currently visible rows in
	// viewport-top-to-bottom order.
	VisibleRows() []Row
	Metrics() Metrics
}

// Sink receives the engine's outbound signals. Pagination requests are
// fire-and-forget; the data source is responsible for ignoring requests
// while it is already paginating.
type Sink interface {
	PaginateBackward()
	PaginateForward()
	ReadReceiptCandidate(eventID string)
	ScrolledToBottomChanged(atBottom bool)
}
