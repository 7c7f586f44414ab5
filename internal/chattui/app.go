// Package chattui implements the parley terminal UI: a single-room chat
// timeline backed by the view synchronization engine.
package chattui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parleychat/parley/internal/chattui/data"
	"github.com/parleychat/parley/internal/chattui/styles"
	"github.com/parleychat/parley/internal/store"
)

// Config configures the TUI.
type Config struct {
	RoomID         string
	Sender         string
	Theme          string
	PageSize       int
	ThrottleWindow time.Duration

	// Store is the opened message store; the caller keeps ownership.
	Store *store.Store
}

func (c Config) normalize() (Config, error) {
	c.RoomID = strings.TrimSpace(c.RoomID)
	c.Sender = strings.TrimSpace(c.Sender)
	if c.RoomID == "" {
		return Config{}, fmt.Errorf("room required")
	}
	if c.Sender == "" {
		c.Sender = "me"
	}
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if strings.TrimSpace(c.Theme) == "" {
		c.Theme = "default"
	}
	if _, ok := styles.Themes[c.Theme]; !ok {
		return Config{}, fmt.Errorf("invalid theme %q", c.Theme)
	}
	if c.Store == nil {
		return Config{}, fmt.Errorf("store required")
	}
	return c, nil
}

// Model is the root bubbletea model.
type Model struct {
	cfg   Config
	theme styles.Theme
	room  *roomView

	width    int
	height   int
	showHelp bool
}

// NewModel builds the root model and loads the room's initial page.
func NewModel(cfg Config) (*Model, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	theme := styles.Lookup(normalized.Theme)
	session := data.NewRoomSession(normalized.Store, normalized.RoomID, normalized.PageSize)
	room := newRoomView(normalized.Store, session, normalized.Sender, theme, normalized.ThrottleWindow)

	return &Model{
		cfg:   normalized,
		theme: theme,
		room:  room,
	}, nil
}

// Run launches the TUI and blocks until it exits.
func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	_, err = program.Run()
	return err
}

// Close releases the room's live subscription.
func (m *Model) Close() {
	if m.room != nil {
		m.room.Close()
	}
}

func (m *Model) Init() tea.Cmd {
	return m.room.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case tea.KeyMsg:
		if !m.room.capturingInput() {
			switch typed.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "?":
				m.showHelp = !m.showHelp
				return m, nil
			}
		} else if typed.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, m.room.Update(msg)
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	body := m.room.View(m.width, contentHeight)
	if m.showHelp {
		body = m.renderHelp(m.width, contentHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Chrome.Header)).Bold(true)
	return style.Render(truncate("parley · #"+m.cfg.RoomID, maxInt(0, m.width)))
}

func (m *Model) renderFooter() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Chrome.Footer))
	return style.Render(truncate("? help · q quit", maxInt(0, m.width)))
}

func (m *Model) renderHelp(width, height int) string {
	lines := []string{
		"parley keys",
		"",
		"  j / down      scroll toward older messages",
		"  k / up        scroll toward newer messages",
		"  pgup/pgdown   page",
		"  ctrl+u/d      half page",
		"  G / home      jump to latest and follow live",
		"  L             toggle live / historical mode",
		"  g             jump to an event by id",
		"  i / enter     compose a message",
		"  ?             toggle this help",
		"  q             quit",
	}
	block := strings.Join(lines, "\n")
	return lipgloss.NewStyle().
		Width(maxInt(0, width)).
		Height(maxInt(0, height)).
		Render(block)
}
