package chattui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/chattui/data"
	"github.com/parleychat/parley/internal/chattui/styles"
	"github.com/parleychat/parley/internal/logging"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/timeline"
)

const (
	spinnerBackwardID = "spinner:backward"
	spinnerForwardID  = "spinner:forward"

	// scrollSettleDelay stands in for drag-end/deceleration-end: the
	// gesture is considered settled this long after the last scroll key.
	scrollSettleDelay = 200 * time.Millisecond
)

type roomIncomingMsg struct {
	msg chat.Message
}

type beginPaginateMsg struct {
	dir timeline.Direction
}

type pageLoadedMsg struct {
	dir     timeline.Direction
	page    []chat.Message
	hasMore bool
	err     error
}

type scrollSettledMsg struct {
	gen int
}

type receiptSavedMsg struct {
	err error
}

type sendResultMsg struct {
	err error
}

// roomView renders one room's timeline and drives the synchronization
// engine. It implements timeline.Sink; engine callbacks only queue
// bubbletea commands, which Update dispatches after the engine returns.
type roomView struct {
	st      *store.Store
	session *data.RoomSession
	sender  string
	theme   styles.Theme
	log     zerolog.Logger

	engine  *timeline.Controller
	surface *timelineSurface
	vp      viewport.Model
	spin    spinner.Model

	composer textinput.Model
	jump     textinput.Model

	msgs map[string]chat.Message

	subCh     <-chan chat.Message
	subCancel func()

	queued []tea.Cmd

	scrolling bool
	scrollGen int

	composing bool
	jumping   bool

	atBottom    bool
	lastReceipt string
	lastErr     error
}

func newRoomView(st *store.Store, session *data.RoomSession, sender string, theme styles.Theme, throttle time.Duration) *roomView {
	v := &roomView{
		st:       st,
		session:  session,
		sender:   sender,
		theme:    theme,
		log:      logging.WithRoom(session.RoomID()),
		msgs:     make(map[string]chat.Message),
		atBottom: true,
	}

	v.surface = newTimelineSurface(v.renderItem, v.typingLine)
	v.engine = timeline.New(v.surface, v, timeline.WithThrottleWindow(throttle))
	v.vp = viewport.New(0, 0)

	v.spin = spinner.New()
	v.spin.Spinner = spinner.Dot
	v.spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Accent))

	v.composer = textinput.New()
	v.composer.Placeholder = "message"
	v.composer.CharLimit = 4000

	v.jump = textinput.New()
	v.jump.Placeholder = "event id"

	if ev, err := st.ReadReceipt(context.Background(), session.RoomID()); err == nil {
		v.lastReceipt = ev
	}
	if err := session.LoadInitial(context.Background()); err != nil {
		v.lastErr = err
		v.log.Error().Err(err).Msg("initial load failed")
	}

	return v
}

func (v *roomView) Init() tea.Cmd {
	if v.subCh == nil {
		ch, cancel := v.st.Subscribe(v.session.RoomID())
		v.subCh = ch
		v.subCancel = cancel
	}
	v.pushCollection()
	v.engine.SetPaginationState(timeline.Backward, v.session.State(timeline.Backward))
	v.engine.SetPaginationState(timeline.Forward, v.session.State(timeline.Forward))
	return tea.Batch(v.drain(), v.waitForMessageCmd())
}

func (v *roomView) Close() {
	if v.subCancel != nil {
		v.subCancel()
		v.subCancel = nil
	}
	v.subCh = nil
}

// capturingInput reports whether a text input owns the keyboard.
func (v *roomView) capturingInput() bool {
	return v.composing || v.jumping
}

// timeline.Sink implementation. These run inside engine calls; they must
// not call back into the engine.

func (v *roomView) PaginateBackward() {
	v.enqueue(func() tea.Msg { return beginPaginateMsg{dir: timeline.Backward} })
}

func (v *roomView) PaginateForward() {
	v.enqueue(func() tea.Msg { return beginPaginateMsg{dir: timeline.Forward} })
}

func (v *roomView) ReadReceiptCandidate(eventID string) {
	v.lastReceipt = eventID
	roomID := v.session.RoomID()
	st := v.st
	v.enqueue(func() tea.Msg {
		return receiptSavedMsg{err: st.SaveReadReceipt(context.Background(), roomID, eventID)}
	})
}

func (v *roomView) ScrolledToBottomChanged(atBottom bool) {
	v.atBottom = atBottom
}

func (v *roomView) enqueue(cmd tea.Cmd) {
	v.queued = append(v.queued, cmd)
}

func (v *roomView) drain() tea.Cmd {
	if len(v.queued) == 0 {
		return nil
	}
	cmds := v.queued
	v.queued = nil
	return tea.Batch(cmds...)
}

func (v *roomView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case roomIncomingMsg:
		if v.session.ApplyLive(typed.msg) {
			v.pushCollection()
		}
		return tea.Batch(v.waitForMessageCmd(), v.drain())

	case beginPaginateMsg:
		return v.beginPaginate(typed.dir)

	case pageLoadedMsg:
		v.session.Complete(typed.dir, typed.page, typed.hasMore, typed.err)
		if typed.err != nil {
			v.lastErr = typed.err
		}
		v.engine.SetPaginationState(typed.dir, v.session.State(typed.dir))
		v.pushCollection()
		return v.drain()

	case scrollSettledMsg:
		if typed.gen == v.scrollGen && v.scrolling {
			v.scrolling = false
			v.engine.DragEnded(false)
		}
		return v.drain()

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(typed)
		if v.paginating() {
			return cmd
		}
		return nil

	case receiptSavedMsg:
		if typed.err != nil {
			v.log.Warn().Err(typed.err).Msg("read receipt save failed")
		}
		return nil

	case sendResultMsg:
		if typed.err != nil {
			v.lastErr = typed.err
			v.log.Error().Err(typed.err).Msg("send failed")
		}
		return nil

	case tea.FocusMsg:
		v.engine.AppResumed()
		return v.drain()

	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *roomView) beginPaginate(dir timeline.Direction) tea.Cmd {
	cursor, ok := v.session.Begin(dir)
	if !ok {
		return v.drain()
	}
	v.engine.SetPaginationState(dir, timeline.Paginating)
	v.pushCollection()
	session := v.session
	fetch := func() tea.Msg {
		page, hasMore, err := session.Fetch(context.Background(), dir, cursor)
		return pageLoadedMsg{dir: dir, page: page, hasMore: hasMore, err: err}
	}
	return tea.Batch(fetch, v.spin.Tick, v.drain())
}

func (v *roomView) paginating() bool {
	return v.session.State(timeline.Backward) == timeline.Paginating ||
		v.session.State(timeline.Forward) == timeline.Paginating
}

// pushCollection rebuilds the timeline collection from the session window
// plus directional loading spinners, and hands it to the engine.
func (v *roomView) pushCollection() {
	window := v.session.Messages()
	items := make([]timeline.Item, 0, len(window)+2)
	decorative := make(map[string]bool, 2)
	msgs := make(map[string]chat.Message, len(window))

	// Producer order is oldest first, so the backward spinner sits at
	// the front and the forward spinner at the back.
	if v.session.State(timeline.Backward) == timeline.Paginating {
		items = append(items, timeline.Item{ID: spinnerBackwardID, Kind: timeline.KindPaginationSpinner})
		decorative[spinnerBackwardID] = true
	}
	for _, m := range window {
		items = append(items, timeline.Item{ID: m.ID, EventID: m.EventID, Kind: timeline.KindMessage})
		msgs[m.ID] = m
	}
	if v.session.State(timeline.Forward) == timeline.Paginating {
		items = append(items, timeline.Item{ID: spinnerForwardID, Kind: timeline.KindPaginationSpinner})
		decorative[spinnerForwardID] = true
	}

	v.msgs = msgs
	v.surface.setDecorative(decorative)
	v.engine.SetCollection(items)
}

func (v *roomView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.composing {
		return v.handleComposerKey(msg)
	}
	if v.jumping {
		return v.handleJumpKey(msg)
	}

	switch msg.String() {
	case "i", "enter":
		v.composing = true
		return v.composer.Focus()
	case "g":
		v.jumping = true
		v.jump.SetValue("")
		return v.jump.Focus()
	case "G", "home":
		v.engine.SetLive(true)
		return v.drain()
	case "L":
		v.engine.SetLive(!v.engine.Live())
		return v.drain()
	case "k", "up":
		return v.scroll(-1)
	case "j", "down":
		return v.scroll(1)
	case "pgup":
		return v.scroll(-v.pageStep())
	case "pgdown":
		return v.scroll(v.pageStep())
	case "ctrl+u":
		return v.scroll(-v.pageStep() / 2)
	case "ctrl+d":
		return v.scroll(v.pageStep() / 2)
	}
	return nil
}

func (v *roomView) handleComposerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		v.composing = false
		v.composer.Blur()
		return nil
	case tea.KeyEnter:
		body := strings.TrimSpace(v.composer.Value())
		v.composer.SetValue("")
		v.composing = false
		v.composer.Blur()
		if body == "" {
			return nil
		}
		return v.sendCmd(body)
	}
	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return cmd
}

func (v *roomView) handleJumpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		v.jumping = false
		v.jump.Blur()
		return nil
	case tea.KeyEnter:
		eventID := strings.TrimSpace(v.jump.Value())
		v.jumping = false
		v.jump.Blur()
		if eventID == "" {
			return nil
		}
		// A permalink jump pins the view to a historical point.
		v.engine.SetLive(false)
		v.engine.FocusEvent(eventID)
		v.engine.ProgrammaticScrollEnded()
		return v.drain()
	}
	var cmd tea.Cmd
	v.jump, cmd = v.jump.Update(msg)
	return cmd
}

// scroll applies a key-driven scroll step. A burst of steps counts as one
// gesture: the first begins the drag, a settle timer ends it.
func (v *roomView) scroll(delta int) tea.Cmd {
	if !v.scrolling {
		v.scrolling = true
		v.engine.DragBegan()
	}
	moved := v.surface.scrollBy(delta)

	// Leaving the newest edge detaches from live; returning reattaches.
	v.engine.SetLive(v.surface.Metrics().Offset <= 0)
	if moved {
		v.engine.OffsetChanged()
	}

	v.scrollGen++
	gen := v.scrollGen
	settle := tea.Tick(scrollSettleDelay, func(time.Time) tea.Msg {
		return scrollSettledMsg{gen: gen}
	})
	return tea.Batch(v.drain(), settle)
}

func (v *roomView) pageStep() int {
	return maxInt(1, v.vp.Height)
}

func (v *roomView) sendCmd(body string) tea.Cmd {
	msg := chat.NewMessage(v.session.RoomID(), v.sender, body)
	st := v.st
	return func() tea.Msg {
		return sendResultMsg{err: st.Append(context.Background(), &msg)}
	}
}

func (v *roomView) waitForMessageCmd() tea.Cmd {
	if v.subCh == nil {
		return nil
	}
	ch := v.subCh
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return roomIncomingMsg{msg: msg}
	}
}

func (v *roomView) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	contentH := maxInt(0, height-2)
	v.surface.setSize(width, contentH)
	v.vp.Width = width
	v.vp.Height = contentH
	v.vp.SetContent(strings.Join(v.surface.contentLines(), "\n"))
	v.vp.YOffset = v.surface.Metrics().Offset

	return lipgloss.JoinVertical(lipgloss.Left,
		v.vp.View(),
		v.statusLine(width),
		v.inputLine(width),
	)
}

func (v *roomView) statusLine(width int) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(v.theme.Base.Muted))
	parts := make([]string, 0, 4)

	if v.session.State(timeline.Backward) == timeline.Paginating {
		parts = append(parts, v.spin.View()+"older")
	} else if v.session.State(timeline.Backward) == timeline.PaginationEnded {
		parts = append(parts, "start of history")
	}
	if v.session.State(timeline.Forward) == timeline.Paginating {
		parts = append(parts, v.spin.View()+"newer")
	}
	if v.atBottom {
		parts = append(parts, "latest")
	}
	if v.lastReceipt != "" {
		parts = append(parts, "read "+truncate(v.lastReceipt, 14))
	}
	if v.lastErr != nil {
		parts = append(parts, "error: "+truncate(v.lastErr.Error(), 40))
	}
	return muted.Render(truncate(strings.Join(parts, "  ·  "), width))
}

func (v *roomView) inputLine(width int) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(v.theme.Base.Muted))
	switch {
	case v.composing:
		return truncate("> "+v.composer.View(), width)
	case v.jumping:
		return truncate(muted.Render("goto ")+v.jump.View(), width)
	default:
		return muted.Render(truncate("i compose · g goto event · G latest · j/k scroll · q quit", width))
	}
}

// renderItem produces the content lines for one timeline row.
func (v *roomView) renderItem(id string, width int) []string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(v.theme.Base.Muted))

	switch id {
	case spinnerBackwardID:
		return []string{muted.Render(truncate(v.spin.View()+"loading older messages", width))}
	case spinnerForwardID:
		return []string{muted.Render(truncate(v.spin.View()+"loading newer messages", width))}
	}

	msg, ok := v.msgs[id]
	if !ok {
		return []string{muted.Render("…")}
	}

	senderColor := v.theme.Message.Other
	if msg.Sender == v.sender {
		senderColor = v.theme.Message.Own
	}
	senderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(senderColor)).Bold(true)

	head := fmt.Sprintf("%s %s", msg.Time.Local().Format("15:04"), senderStyle.Render(msg.Sender))
	lines := []string{truncate(head, width)}
	for _, bl := range wrapText(msg.Body, maxInt(1, width-2)) {
		lines = append(lines, "  "+bl)
	}
	// Spacer between messages.
	lines = append(lines, "")
	return lines
}

// typingLine renders the fixed decorative slot at the newest edge.
func (v *roomView) typingLine(width int) string {
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color(v.theme.Chrome.LiveBadge)).Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(v.theme.Base.Muted))
	if v.engine != nil && v.engine.Live() {
		return badge.Render(truncate("● live", width))
	}
	return muted.Render(truncate("○ viewing history · G for latest", width))
}
