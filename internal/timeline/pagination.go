package timeline

import (
	"time"

	"golang.org/x/time/rate"
)

// defaultThrottleWindow coalesces bursts of scroll events into a single
// pagination eligibility check.
const defaultThrottleWindow = 100 * time.Millisecond

// paginator throttles scroll-driven pagination checks. Checks triggered by
// a pagination-state change bypass the limiter entirely: a direction
// returning to idle must be able to fire while the window is still closed.
type paginator struct {
	limiter *rate.Limiter
}

func newPaginator(window time.Duration) *paginator {
	if window <= 0 {
		window = defaultThrottleWindow
	}
	return &paginator{limiter: rate.NewLimiter(rate.Every(window), 1)}
}

// allowScrollCheck reports whether a scroll-driven check may run now.
func (p *paginator) allowScrollCheck() bool {
	return p.limiter.Allow()
}

// evalPagination is the pure eligibility function. Backward triggers while
// still two screens away from the historical end to hide load latency;
// forward only matters when detached from the live edge.
func evalPagination(m Metrics, back, fwd PaginationState, live bool) (backReq, fwdReq bool) {
	if back == PaginationIdle && m.Offset > m.ContentHeight-2*m.ViewportHeight {
		backReq = true
	}
	if !live && fwd == PaginationIdle && m.Offset < m.ViewportHeight {
		fwdReq = true
	}
	return backReq, fwdReq
}
