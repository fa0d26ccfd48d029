package dashboard

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/ccdash/internal/feed"
	"github.com/rileyhilliard/ccdash/internal/poll"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: no graphs, stacked panels
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: small graphs, stacked panels
	LayoutCompact
	// LayoutStandard is for terminals 120-160 columns: roster beside the agent panel
	LayoutStandard
	// LayoutWide is for terminals 160+ columns: wider roster with metric bars
	LayoutWide
)

// Width breakpoints for layout modes
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
	BreakpointWide     = 160
)

// Height breakpoints for layout adjustments
const (
	HeightMinimal  = 24
	HeightStandard = 40
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 4 * time.Second

// clockInterval redraws relative times in the header.
const clockInterval = time.Second

// Controller is the part of the scheduler the dashboard drives.
type Controller interface {
	Select(agentID string) uint64
	ClearSelection()
	Selected() (string, uint64)
	TogglePause() bool
	RefreshNow()
}

// Options configures a Model.
type Options struct {
	ServerURL     string
	HistoryRange  string
	ToastDuration time.Duration
	Keys          *KeyMap
	Now           func() time.Time
}

// Model is the Bubble Tea model for the fleet dashboard.
type Model struct {
	ctrl    Controller
	session *Session
	keys    KeyMap
	now     func() time.Time

	serverURL     string
	historyRange  string
	toastDuration time.Duration

	cursor   int
	width    int
	height   int
	quitting bool
	showHelp bool

	// Live feed viewport
	feedViewport  viewport.Model
	viewportReady bool
}

// toastExpiredMsg removes a toast once its display time is over.
type toastExpiredMsg struct {
	id int
}

// clockTickMsg keeps "updated Ns ago" current.
type clockTickMsg time.Time

// NewModel creates a dashboard model driving ctrl and rendering session.
func NewModel(ctrl Controller, session *Session, opts Options) Model {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	if opts.HistoryRange == "" {
		opts.HistoryRange = "30m"
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return Model{
		ctrl:          ctrl,
		session:       session,
		keys:          keys,
		now:           now,
		serverURL:     opts.ServerURL,
		historyRange:  opts.HistoryRange,
		toastDuration: opts.ToastDuration,
	}
}

// Init starts the header clock.
func (m Model) Init() tea.Cmd {
	return m.clockCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		w := m.feedWidth()
		if !m.viewportReady {
			m.feedViewport = viewport.New(w, feed.DefaultFeedSize)
			m.viewportReady = true
		} else {
			m.feedViewport.Width = w
		}
		m.refreshFeedViewport()

	case clockTickMsg:
		return m, m.clockCmd()

	case toastExpiredMsg:
		m.session.DismissToast(msg.id)

	case poll.RosterLoaded:
		id := m.cursorID()
		toasts := m.session.Apply(msg)
		m.follow(id)
		return m, m.toastCmds(toasts)

	case poll.HistoryLoaded:
		toasts := m.session.Apply(msg)
		m.refreshFeedViewport()
		return m, m.toastCmds(toasts)

	case poll.PollTick, poll.ServerInfoLoaded:
		return m, m.toastCmds(m.session.Apply(msg))
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Session returns the underlying view-model.
func (m Model) Session() *Session {
	return m.session
}

// Cursor returns the highlighted roster row index.
func (m Model) Cursor() int {
	return m.cursor
}

// LayoutMode returns the layout for the current terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

func (m Model) clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// toastCmds schedules expiry for each toast.
func (m Model) toastCmds(toasts []Toast) tea.Cmd {
	if len(toasts) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(toasts))
	for _, t := range toasts {
		id := t.ID
		cmds = append(cmds, tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	return tea.Batch(cmds...)
}

// cursorID returns the agent under the cursor, or "".
func (m Model) cursorID() string {
	rows := m.session.Rows()
	if m.cursor >= 0 && m.cursor < len(rows) {
		return rows[m.cursor].ID()
	}
	return ""
}

// follow keeps the cursor on agentID after the rows change, clamping when
// the agent is gone.
func (m *Model) follow(agentID string) {
	rows := m.session.Rows()
	if agentID != "" {
		if i := IndexOf(rows, agentID); i >= 0 {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refreshFeedViewport() {
	if !m.viewportReady {
		return
	}
	m.feedViewport.SetContent(m.renderFeedLines(m.feedViewport.Width))
	m.feedViewport.GotoTop()
}

// Relay forwards scheduler events into a Bubble Tea program. Events sent
// before Attach are dropped.
type Relay struct {
	mu      sync.RWMutex
	program *tea.Program
}

// Attach sets the receiving program.
func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
}

// Send delivers ev. It satisfies poll.Sink.
func (r *Relay) Send(ev poll.Event) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(ev)
	}
}
