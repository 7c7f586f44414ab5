package timeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/parleychat/parley/internal/logging"
)

// Controller orchestrates the apply-cycle: it decides when a collection
// update may touch the view, whether the change animates, how the scroll
// position is preserved, and which outbound signals fire.
//
// The cycle is Idle -> Deferred (update arrived mid-drag) -> Applying ->
// Idle. A deferred update always reflects the latest collection, since the
// working collection is simply replaced on every push.
type Controller struct {
	surface Surface
	sink    Sink
	log     zerolog.Logger

	coll     collection
	rendered []string

	live     bool
	dragging bool
	deferred bool

	focusEventID string
	focusPending bool

	back PaginationState
	fwd  PaginationState

	pager *paginator

	atNewest    bool
	lastReceipt string
}

// Option configures a Controller.
type Option func(*Controller)

// WithThrottleWindow overrides the pagination check coalescing window.
func WithThrottleWindow(d time.Duration) Option {
	return func(c *Controller) {
		c.pager = newPaginator(d)
	}
}

// WithLogger overrides the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// New creates a controller bound to a surface and a sink. The timeline
// starts in live mode, scrolled to the newest edge.
func New(surface Surface, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		surface:  surface,
		sink:     sink,
		log:      logging.Component("timeline"),
		live:     true,
		atNewest: true,
		pager:    newPaginator(defaultThrottleWindow),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Live reports whether the timeline is anchored to real-time content.
func (c *Controller) Live() bool {
	return c.live
}

// HasDeferredUpdate reports whether an update is queued behind an active
// scroll gesture.
func (c *Controller) HasDeferredUpdate() bool {
	return c.deferred
}

// SetCollection replaces the working collection. In historical mode an
// active scroll gesture defers the visual apply until the gesture settles;
// the collection itself is replaced immediately, so the deferred apply
// uses the latest data.
func (c *Controller) SetCollection(items []Item) {
	c.coll.set(items)
	if !c.live && c.dragging {
		c.deferred = true
		c.log.Debug().Int("items", c.coll.len()).Msg("update deferred: scroll gesture active")
		return
	}
	c.applyCycle()
}

// SetLive switches between live (anchored to newest content) and
// historical mode. Entering live mode scrolls back to the newest edge.
func (c *Controller) SetLive(live bool) {
	if c.live == live {
		return
	}
	c.live = live
	c.log.Debug().Bool("live", live).Msg("mode switched")
	if live && len(c.rendered) > 0 {
		c.surface.ScrollTo(c.rendered[0], AlignLeading, true)
		c.syncNewestEdge()
		c.emitReadReceipt()
	}
}

// FocusEvent requests that the item carrying the given event identifier be
// scrolled to the viewport center. If the event is not loaded yet the
// request stays pending and is retried on every apply-cycle until the item
// appears. A newer request supersedes an older one.
func (c *Controller) FocusEvent(eventID string) {
	if eventID == "" {
		c.focusEventID = ""
		c.focusPending = false
		return
	}
	c.focusEventID = eventID
	c.focusPending = true
	c.tryFocusScroll()
}

// SetPaginationState records a directional state change and immediately
// re-checks eligibility: the scroll position may already satisfy the
// trigger for a direction that just returned to idle.
func (c *Controller) SetPaginationState(dir Direction, state PaginationState) {
	if dir == Forward {
		c.fwd = state
	} else {
		c.back = state
	}
	c.evaluatePagination()
}

// OffsetChanged handles a viewport offset change. Pagination checks are
// coalesced over the throttle window; the newest-edge signal is evaluated
// on every event so it never lags.
func (c *Controller) OffsetChanged() {
	c.syncNewestEdge()
	if !c.pager.allowScrollCheck() {
		return
	}
	c.evaluatePagination()
}

// DragBegan marks the start of a user scroll gesture.
func (c *Controller) DragBegan() {
	c.dragging = true
}

// DragEnded marks the end of the touch phase of a gesture. When the view
// keeps decelerating the gesture is still considered active until
// DecelerationEnded.
func (c *Controller) DragEnded(willDecelerate bool) {
	if willDecelerate {
		return
	}
	c.settle()
}

// DecelerationEnded marks the end of scroll deceleration.
func (c *Controller) DecelerationEnded() {
	c.settle()
}

// ProgrammaticScrollEnded marks the end of an engine- or host-initiated
// scroll animation.
func (c *Controller) ProgrammaticScrollEnded() {
	c.syncNewestEdge()
	c.emitReadReceipt()
}

// AppResumed re-checks visibility after the app returns to the foreground.
func (c *Controller) AppResumed() {
	c.emitReadReceipt()
}

// applyCycle runs one diff -> mutate -> reposition -> notify pass against
// the current collection.
func (c *Controller) applyCycle() {
	next := c.coll.displayOrder()
	d := diffOrders(c.rendered, next)
	if d.identical {
		c.log.Debug().Msg("update identical: skipped")
		return
	}

	animated := c.live && d.topChanged

	var anch *anchor
	if !c.live && d.topChanged {
		anch = captureAnchor(c.surface)
	}

	c.surface.ApplySnapshot(next, animated)
	c.rendered = next
	c.log.Debug().
		Int("items", len(next)).
		Bool("animated", animated).
		Bool("top_changed", d.topChanged).
		Msg("snapshot applied")

	switch {
	case c.live && d.topChanged && len(next) > 0:
		c.surface.ScrollTo(next[0], AlignLeading, animated)
	case c.focusPending:
		// A pending focus request takes priority over anchor
		// restoration; if its item is still missing, fall back to the
		// anchor and retry the focus on a later cycle.
		if !c.tryFocusScroll() && anch != nil {
			restoreAnchor(c.surface, &c.coll, *anch)
		}
	case anch != nil:
		restoreAnchor(c.surface, &c.coll, *anch)
	}

	c.emitReadReceipt()

	// An emptied timeline is a signal to fetch, not an error.
	if c.coll.len() == 0 && c.back == PaginationIdle {
		c.sink.PaginateBackward()
	}

	c.syncNewestEdge()
}

// settle ends the active gesture and flushes a deferred update.
func (c *Controller) settle() {
	c.dragging = false
	if c.deferred {
		c.deferred = false
		c.applyCycle()
	}
	c.syncNewestEdge()
	c.emitReadReceipt()
}

func (c *Controller) tryFocusScroll() bool {
	it, ok := c.coll.findEvent(c.focusEventID)
	if !ok {
		return false
	}
	c.surface.ScrollTo(it.ID, AlignCenter, true)
	c.focusPending = false
	c.syncNewestEdge()
	return true
}

func (c *Controller) evaluatePagination() {
	// A deferred update means a re-layout is imminent; don't race it.
	if c.deferred {
		return
	}
	backReq, fwdReq := evalPagination(c.surface.Metrics(), c.back, c.fwd, c.live)
	if backReq {
		c.log.Debug().Msg("requesting backward pagination")
		c.sink.PaginateBackward()
	}
	if fwdReq {
		c.log.Debug().Msg("requesting forward pagination")
		c.sink.PaginateForward()
	}
}

// emitReadReceipt reports the newest visible non-decorative item, once per
// distinct candidate.
func (c *Controller) emitReadReceipt() {
	for _, row := range c.surface.VisibleRows() {
		if row.Decorative {
			continue
		}
		it, ok := c.coll.byID(row.ID)
		if !ok || it.Kind.Decorative() || it.EventID == "" {
			continue
		}
		if it.EventID != c.lastReceipt {
			c.lastReceipt = it.EventID
			c.sink.ReadReceiptCandidate(it.EventID)
		}
		return
	}
}

// syncNewestEdge emits scrolledToBottomChanged on actual transitions only.
func (c *Controller) syncNewestEdge() {
	at := c.surface.Metrics().Offset <= 0
	if at != c.atNewest {
		c.atNewest = at
		c.sink.ScrolledToBottomChanged(at)
	}
}
