package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvalPagination(t *testing.T) {
	metrics := func(offset int) Metrics {
		return Metrics{Offset: offset, ContentHeight: 100, ViewportHeight: 10}
	}

	tests := []struct {
		name     string
		m        Metrics
		back     PaginationState
		fwd      PaginationState
		live     bool
		wantBack bool
		wantFwd  bool
	}{
		{"mid history triggers nothing", metrics(50), PaginationIdle, PaginationIdle, false, false, false},
		{"near historical end", metrics(85), PaginationIdle, PaginationIdle, false, true, false},
		{"historical end but already paginating", metrics(85), Paginating, PaginationIdle, false, false, false},
		{"historical end but exhausted", metrics(85), PaginationEnded, PaginationIdle, false, false, false},
		{"near newest edge detached", metrics(5), PaginationIdle, PaginationIdle, false, false, true},
		{"near newest edge live", metrics(5), PaginationIdle, PaginationIdle, true, false, false},
		{"newest edge while forward paginating", metrics(5), PaginationIdle, Paginating, false, false, false},
		{"short content triggers backward", Metrics{Offset: 0, ContentHeight: 5, ViewportHeight: 10}, PaginationIdle, PaginationEnded, false, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			back, fwd := evalPagination(tc.m, tc.back, tc.fwd, tc.live)
			require.Equal(t, tc.wantBack, back, "backward")
			require.Equal(t, tc.wantFwd, fwd, "forward")
		})
	}
}

func TestPaginatorCoalescesWithinWindow(t *testing.T) {
	p := newPaginator(50 * time.Millisecond)

	require.True(t, p.allowScrollCheck())
	for i := 0; i < 5; i++ {
		require.False(t, p.allowScrollCheck())
	}

	time.Sleep(60 * time.Millisecond)
	require.True(t, p.allowScrollCheck())
}

func TestPaginatorDefaultsWindow(t *testing.T) {
	p := newPaginator(0)
	require.NotNil(t, p.limiter)
	require.True(t, p.allowScrollCheck())
}
