package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/ccdash/internal/feed"
)

// KeyMap holds the dashboard key bindings.
type KeyMap struct {
	Quit         key.Binding
	Up           key.Binding
	Down         key.Binding
	First        key.Binding
	Last         key.Binding
	Select       key.Binding
	Clear        key.Binding
	ToggleCPU    key.Binding
	ToggleMemory key.Binding
	ToggleDisk   key.Binding
	Pause        key.Binding
	Refresh      key.Binding
	Sort         key.Binding
	Help         key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q / Ctrl+C", "Quit")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up / k", "Previous device")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down / j", "Next device")),
		First:        key.NewBinding(key.WithKeys("home"), key.WithHelp("Home", "First device")),
		Last:         key.NewBinding(key.WithKeys("end"), key.WithHelp("End", "Last device")),
		Select:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Show device history")),
		Clear:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Clear selection / close")),
		ToggleCPU:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Toggle CPU series")),
		ToggleMemory: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Toggle memory series")),
		ToggleDisk:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Toggle disk series")),
		Pause:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Pause / resume auto refresh")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh now")),
		Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Cycle sort order")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle this help")),
	}
}

// helpSection is one titled group in the help overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{"Devices", []key.Binding{k.Up, k.Down, k.First, k.Last, k.Select, k.Clear, k.Sort}},
		{"Chart", []key.Binding{k.ToggleCPU, k.ToggleMemory, k.ToggleDisk}},
		{"General", []key.Binding{k.Refresh, k.Pause, k.Help, k.Quit}},
	}
}

// HandleKeyMsg processes keyboard input.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	// If help is showing, Esc closes it
	if m.showHelp && key.Matches(msg, m.keys.Clear) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.RefreshNow()
		return true, nil

	case key.Matches(msg, m.keys.Pause):
		paused := m.ctrl.TogglePause()
		return true, m.toastCmds(m.session.Apply(RefreshToggled{Paused: paused}))

	case key.Matches(msg, m.keys.Sort):
		id := m.cursorID()
		m.session.CycleSort()
		m.follow(id)
		return true, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return true, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.session.Rows())-1 {
			m.cursor++
		}
		return true, nil

	case key.Matches(msg, m.keys.First):
		m.cursor = 0
		return true, nil

	case key.Matches(msg, m.keys.Last):
		if n := len(m.session.Rows()); n > 0 {
			m.cursor = n - 1
		}
		return true, nil

	case key.Matches(msg, m.keys.Select):
		id := m.cursorID()
		if id == "" {
			return true, nil
		}
		gen := m.ctrl.Select(id)
		m.session.Apply(AgentSelected{AgentID: id, Generation: gen})
		m.refreshFeedViewport()
		return true, nil

	case key.Matches(msg, m.keys.Clear):
		if selected, _ := m.session.Selected(); selected != "" {
			m.ctrl.ClearSelection()
			_, gen := m.ctrl.Selected()
			m.session.Apply(SelectionCleared{Generation: gen})
			m.refreshFeedViewport()
		}
		return true, nil

	case key.Matches(msg, m.keys.ToggleCPU):
		m.session.ToggleSeries(feed.SeriesCPU)
		return true, nil

	case key.Matches(msg, m.keys.ToggleMemory):
		m.session.ToggleSeries(feed.SeriesMemory)
		return true, nil

	case key.Matches(msg, m.keys.ToggleDisk):
		m.session.ToggleSeries(feed.SeriesDisk)
		return true, nil
	}

	return false, nil
}
