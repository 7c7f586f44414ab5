// Package data mediates between the message store and the room view: it
// owns the loaded window of a room's history, the two directional
// pagination states, and the merge rules for pages and live arrivals.
package data

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/logging"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/timeline"
)

// RoomSession holds the contiguous window of one room's history currently
// loaded for display. The window is kept in ascending sequence order
// (oldest first), which is the timeline collection's producer order.
//
// The session owns the PaginationState for both directions; the timeline
// engine only observes it. Pagination requests arriving while a direction
// is not idle are ignored here, as the engine expects.
type RoomSession struct {
	st       *store.Store
	roomID   string
	pageSize int
	log      zerolog.Logger

	window []chat.Message
	back   timeline.PaginationState
	fwd    timeline.PaginationState
}

// NewRoomSession creates a session for roomID loading pageSize messages
// per request.
func NewRoomSession(st *store.Store, roomID string, pageSize int) *RoomSession {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &RoomSession{
		st:       st,
		roomID:   roomID,
		pageSize: pageSize,
		log:      logging.WithRoom(roomID),
		back:     timeline.PaginationIdle,
		fwd:      timeline.PaginationEnded,
	}
}

// RoomID returns the session's room.
func (s *RoomSession) RoomID() string {
	return s.roomID
}

// Messages returns the loaded window in producer order (oldest first).
func (s *RoomSession) Messages() []chat.Message {
	return s.window
}

// State returns the pagination state for one direction.
func (s *RoomSession) State(dir timeline.Direction) timeline.PaginationState {
	if dir == timeline.Forward {
		return s.fwd
	}
	return s.back
}

// AtLiveEdge reports whether the window extends to the newest stored
// message, i.e. live arrivals may be appended directly.
func (s *RoomSession) AtLiveEdge() bool {
	return s.fwd == timeline.PaginationEnded
}

// LoadInitial loads the most recent page. The window starts at the live
// edge, so forward pagination begins exhausted.
func (s *RoomSession) LoadInitial(ctx context.Context) error {
	msgs, hasOlder, err := s.st.Recent(ctx, s.roomID, s.pageSize)
	if err != nil {
		return fmt.Errorf("load initial page: %w", err)
	}
	s.window = msgs
	s.fwd = timeline.PaginationEnded
	s.back = timeline.PaginationIdle
	if !hasOlder {
		s.back = timeline.PaginationEnded
	}
	s.log.Debug().Int("messages", len(msgs)).Bool("has_older", hasOlder).Msg("initial page loaded")
	return nil
}

// Begin transitions a direction from idle to paginating and returns the
// cursor the fetch should use. Returns ok=false when the direction is
// already paginating or exhausted, or (for backward) when nothing is
// loaded to anchor a cursor on.
func (s *RoomSession) Begin(dir timeline.Direction) (cursor int64, ok bool) {
	if s.State(dir) != timeline.PaginationIdle {
		return 0, false
	}
	if len(s.window) == 0 {
		// An empty window has no cursor; reload from the live edge.
		if dir == timeline.Forward {
			return 0, false
		}
		s.back = timeline.Paginating
		return 0, true
	}
	if dir == timeline.Forward {
		s.fwd = timeline.Paginating
		return s.window[len(s.window)-1].Seq, true
	}
	s.back = timeline.Paginating
	return s.window[0].Seq, true
}

// Fetch performs the page read for a direction. Pure read, safe to run
// off the update loop.
func (s *RoomSession) Fetch(ctx context.Context, dir timeline.Direction, cursor int64) ([]chat.Message, bool, error) {
	if dir == timeline.Forward {
		return s.st.PageAfter(ctx, s.roomID, cursor, s.pageSize)
	}
	if cursor == 0 {
		return s.st.Recent(ctx, s.roomID, s.pageSize)
	}
	return s.st.PageBefore(ctx, s.roomID, cursor, s.pageSize)
}

// Complete merges a fetched page and settles the direction's state. On
// error the direction returns to idle so a later check can retry.
func (s *RoomSession) Complete(dir timeline.Direction, page []chat.Message, hasMore bool, err error) {
	if err != nil {
		s.log.Warn().Err(err).Str("direction", dir.String()).Msg("pagination failed")
		s.setState(dir, timeline.PaginationIdle)
		return
	}

	if dir == timeline.Forward {
		s.window = append(s.window, page...)
		s.fwd = timeline.PaginationIdle
		if !hasMore {
			s.fwd = timeline.PaginationEnded
		}
	} else {
		if len(s.window) == 0 {
			// Empty-window recovery reloads the newest page.
			s.window = page
			s.fwd = timeline.PaginationEnded
		} else {
			s.window = append(append([]chat.Message(nil), page...), s.window...)
		}
		s.back = timeline.PaginationIdle
		if !hasMore {
			s.back = timeline.PaginationEnded
		}
	}
	s.log.Debug().
		Str("direction", dir.String()).
		Int("page", len(page)).
		Int("window", len(s.window)).
		Bool("has_more", hasMore).
		Msg("page merged")
}

func (s *RoomSession) setState(dir timeline.Direction, state timeline.PaginationState) {
	if dir == timeline.Forward {
		s.fwd = state
	} else {
		s.back = state
	}
}

// ApplyLive appends a live arrival when the window reaches the newest
// edge. Arrivals for detached windows are dropped; forward pagination
// will pick them up instead.
func (s *RoomSession) ApplyLive(msg chat.Message) bool {
	if msg.RoomID != s.roomID || !s.AtLiveEdge() {
		return false
	}
	if n := len(s.window); n > 0 && msg.Seq <= s.window[n-1].Seq {
		return false
	}
	s.window = append(s.window, msg)
	return true
}
