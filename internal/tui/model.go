// Package tui is the terminal host of the history view: it feeds bubbletea
// input into a historyview.Engine and paints its frames.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/historyview"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/pointer"
	"github.com/tOgg1/scrollback/internal/store"
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/tui/styles"
)

const (
	headerRows = 1
	footerRows = 1
	wheelStep  = 3
)

// Options configure a Model.
type Options struct {
	Config  *config.Config
	History *History
	// Repo deletes messages; nil makes the view read-only.
	Repo *store.MessageRepository
	// State remembers the scroll position between runs; nil disables it.
	State *config.StateStore
	// Database keys the remembered position.
	Database string
	// Clipboard receives copied text, clipboard.WriteAll when nil.
	Clipboard func(string) error
	Now       func() time.Time
}

type tickMsg struct {
	timer historyview.Timer
	gen   uint64
	at    time.Time
}

type deletedMsg struct {
	ids []timeline.ItemID
	err error
}

type copiedMsg struct {
	chars int
	err   error
}

// Model is the bubbletea model of the history view.
type Model struct {
	cfg     *config.Config
	engine  *historyview.Engine
	history *History
	repo    *store.MessageRepository
	state   *config.StateStore
	restore *config.ViewState

	database  string
	clipboard func(string) error
	now       func() time.Time
	logger    zerolog.Logger

	styles *styles.Styles
	keys   KeyMap
	help   help.Model

	width  int
	height int
	top    int
	placed bool
	status string

	lastPress   time.Time
	lastPressAt timeline.Point
	clicks      int
}

// New builds a model over a loaded history.
func New(opts Options) (*Model, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.History == nil || opts.History.Live == nil {
		return nil, errors.New("history is required")
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := opts.History
	engineOpts := []historyview.Option{
		historyview.WithGroups(h.Groups),
		historyview.WithPublisher(h.Publisher),
		historyview.WithLogger(logging.Component("historyview")),
		historyview.WithClock(opts.Now),
	}
	if h.Migrated != nil {
		engineOpts = append(engineOpts, historyview.WithMigrated(h.Migrated))
	}

	m := &Model{
		cfg:       opts.Config,
		engine:    historyview.New(opts.Config, h.Live, engineOpts...),
		history:   h,
		repo:      opts.Repo,
		state:     opts.State,
		database:  opts.Database,
		clipboard: opts.Clipboard,
		now:       opts.Now,
		logger:    logging.Component("tui"),
		styles:    styles.New(styles.ThemeByName(opts.Config.TUI.Theme)),
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
	if m.state != nil {
		vs, err := m.state.Load()
		if err != nil {
			// Non-fatal: start at the newest message instead.
			m.logger.Warn().Err(err).Msg("failed to load view state")
		} else if vs.Matches(m.database) {
			m.restore = vs
		}
	}
	return m, nil
}

// Run starts the program and saves the scroll position on exit.
func Run(opts Options) error {
	model, err := New(opts)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return err
	}
	return model.SaveState()
}

// Close releases the engine subscription.
func (m *Model) Close() {
	m.engine.Close()
}

// Engine exposes the underlying engine.
func (m *Model) Engine() *historyview.Engine { return m.engine }

// Top is the scroll offset of the body.
func (m *Model) Top() int { return m.top }

// Status is the footer message.
func (m *Model) Status() string { return m.status }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.BlurMsg:
		return m, m.apply(m.engine.Handle(historyview.FocusLost{}))
	case tickMsg:
		return m, m.apply(m.engine.Handle(historyview.Tick{Timer: msg.timer, Gen: msg.gen, At: msg.at}))
	case deletedMsg:
		return m, m.handleDeleted(msg)
	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("copied %d characters", msg.chars)
		}
	}
	return m, nil
}

func (m *Model) bodyHeight() int {
	return max(m.height-headerRows-footerRows, 0)
}

func (m *Model) resize(width, height int) tea.Cmd {
	id, offset, anchored := m.anchor()
	m.width, m.height = width, height
	m.help.Width = width
	fx := m.engine.Handle(historyview.Resize{Width: width})

	top := m.top
	switch {
	case !m.placed:
		m.placed = true
		top = m.initialTop()
	case anchored && m.engine.ItemTop(id) >= 0:
		top = m.engine.ItemTop(id) + offset
	}
	return tea.Batch(m.apply(fx), m.scrollTo(top))
}

// initialTop restores the remembered anchor, or shows the newest messages.
func (m *Model) initialTop() int {
	if m.restore != nil {
		if y := m.engine.ItemTop(timeline.ItemID(m.restore.AnchorID)); y >= 0 {
			return y + m.restore.AnchorOffset
		}
	}
	return m.engine.Height()
}

// anchor is the item at the top of the body and how far it is scrolled past.
func (m *Model) anchor() (timeline.ItemID, int, bool) {
	if !m.placed {
		return 0, 0, false
	}
	it := m.engine.ItemAt(timeline.Point{Y: m.top})
	if it == nil {
		return 0, 0, false
	}
	return it.ID, m.top - m.engine.ItemTop(it.ID), true
}

func (m *Model) scrollTo(top int) tea.Cmd {
	top = min(max(top, 0), max(m.engine.Height()-m.bodyHeight(), 0))
	m.top = top
	return m.apply(m.engine.Handle(historyview.Scroll{Top: top, Height: m.bodyHeight()}))
}

// apply turns engine effects into commands.
func (m *Model) apply(fx historyview.Effects) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(fx.Schedule)+1)
	for _, s := range fx.Schedule {
		cmds = append(cmds, tick(s))
	}
	if fx.SelectionChanged {
		m.status = m.selectionStatus()
	}
	if fx.Activated != nil {
		link := logging.RedactURL(fx.Activated.URL)
		m.logger.Info().Str("url", link).Msg("link activated")
		m.status = "link " + link
	}
	if len(fx.StartDrag) > 0 {
		m.status = fmt.Sprintf("dragging %d messages", len(fx.StartDrag))
	}
	if fx.ScrollBy != 0 {
		cmds = append(cmds, m.scrollTo(m.top+fx.ScrollBy))
	}
	return tea.Batch(cmds...)
}

func tick(s historyview.Scheduled) tea.Cmd {
	return tea.Tick(s.After, func(at time.Time) tea.Msg {
		return tickMsg{timer: s.Timer, gen: s.Gen, at: at}
	})
}

func (m *Model) selectionStatus() string {
	st := m.engine.SelectionState()
	switch {
	case st.TextSelected:
		return "text selected"
	case st.Count > 0:
		return fmt.Sprintf("%d selected, %d deletable", st.Count, st.CanDeleteCount)
	default:
		return ""
	}
}

func buttonOf(b tea.MouseButton) (pointer.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return pointer.ButtonLeft, true
	case tea.MouseButtonRight:
		return pointer.ButtonRight, true
	case tea.MouseButtonMiddle:
		return pointer.ButtonMiddle, true
	default:
		return 0, false
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.scrollTo(m.top - wheelStep)
	case tea.MouseButtonWheelDown:
		return m.scrollTo(m.top + wheelStep)
	}

	p := timeline.Point{X: msg.X, Y: msg.Y - headerRows}
	now := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		button, ok := buttonOf(msg.Button)
		if !ok || p.Y < 0 || p.Y >= m.bodyHeight() {
			return nil
		}
		if button == pointer.ButtonLeft && m.clicks == 1 && p == m.lastPressAt &&
			now.Sub(m.lastPress) <= m.cfg.Engine.DoubleClickInterval {
			m.clicks = 2
			m.lastPress = now
			return m.apply(m.engine.Handle(historyview.MouseDoubleClick{Point: p, At: now}))
		}
		if button == pointer.ButtonLeft {
			m.clicks = 1
			m.lastPress, m.lastPressAt = now, p
		}
		return m.apply(m.engine.Handle(historyview.MousePress{Point: p, Button: button, At: now}))
	case tea.MouseActionMotion:
		return m.apply(m.engine.Handle(historyview.MouseMove{Point: p}))
	case tea.MouseActionRelease:
		// Legacy mouse encodings do not say which button went up.
		button, ok := buttonOf(msg.Button)
		if !ok {
			button = pointer.ButtonLeft
		}
		return m.apply(m.engine.Handle(historyview.MouseRelease{Point: p, Button: button}))
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	page := max(m.bodyHeight()-1, 1)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Copy):
		text := m.engine.SelectedText()
		if text == "" {
			if msg.String() == "ctrl+c" {
				return tea.Quit
			}
			m.status = "nothing selected"
			return nil
		}
		write := m.clipboard
		return func() tea.Msg {
			return copiedMsg{chars: len([]rune(text)), err: write(text)}
		}
	case key.Matches(msg, m.keys.Cancel):
		return m.apply(m.engine.Handle(historyview.KeyCancel{}))
	case key.Matches(msg, m.keys.Choose):
		fx := m.engine.SetChooseMode(!m.engine.ChooseMode())
		if m.engine.ChooseMode() {
			m.status = "choose mode: click messages to select them"
		} else {
			m.status = ""
		}
		return m.apply(fx)
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.LineUp):
		return m.scrollTo(m.top - 1)
	case key.Matches(msg, m.keys.LineDown):
		return m.scrollTo(m.top + 1)
	case key.Matches(msg, m.keys.PageUp):
		return m.scrollTo(m.top - page)
	case key.Matches(msg, m.keys.PageDown):
		return m.scrollTo(m.top + page)
	case key.Matches(msg, m.keys.Home):
		return m.scrollTo(0)
	case key.Matches(msg, m.keys.End):
		return m.scrollTo(m.engine.Height())
	}
	return nil
}

// deleteSelected removes the deletable part of the selection from the store.
// The timelines follow once the store confirms.
func (m *Model) deleteSelected() tea.Cmd {
	var ids []int64
	for _, id := range m.engine.SelectedItems() {
		if it := m.engine.Item(id); it != nil && it.CanDelete() {
			ids = append(ids, int64(id))
		}
	}
	switch {
	case len(ids) == 0:
		m.status = "nothing to delete"
		return nil
	case m.repo == nil:
		m.status = "history is read-only"
		return nil
	}
	repo := m.repo
	return func() tea.Msg {
		deleted, err := repo.DeleteMany(context.Background(), ids...)
		out := make([]timeline.ItemID, len(deleted))
		for i, id := range deleted {
			out[i] = timeline.ItemID(id)
		}
		return deletedMsg{ids: out, err: err}
	}
}

func (m *Model) handleDeleted(msg deletedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error().Err(msg.err).Msg("failed to delete messages")
		m.status = "delete failed: " + msg.err.Error()
		return nil
	}
	m.history.Remove(msg.ids)
	cmd := m.apply(m.engine.Pending())
	m.status = fmt.Sprintf("deleted %d messages", len(msg.ids))
	return tea.Batch(cmd, m.scrollTo(m.top))
}

// SaveState remembers the top-of-body anchor for the next run.
func (m *Model) SaveState() error {
	if m.state == nil {
		return nil
	}
	id, offset, ok := m.anchor()
	if !ok {
		return nil
	}
	vs := &config.ViewState{}
	vs.SetAnchor(m.database, int64(id), offset)
	if err := m.state.Save(vs); err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}
