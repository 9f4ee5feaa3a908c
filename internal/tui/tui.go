// Package tui renders the recording options dialog in a terminal: a
// bottom-anchored, full-width panel with three toggle rows and two buttons.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/petems/screenrecord/internal/dialog"
	"github.com/petems/screenrecord/internal/options"
	"github.com/petems/screenrecord/internal/resources"
	"github.com/rs/zerolog"
)

// errorLinger is how long an error stays on screen before the dialog exits.
const errorLinger = 2 * time.Second

// Controller is the part of the dialog the terminal UI drives.
type Controller interface {
	Open(ctx context.Context, surface dialog.Surface) error
	Toggle(o options.Option, on bool)
	Start()
	Cancel()
}

const (
	rowStart = len(options.All)
	rowCount = len(options.All) + 2
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Start  key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j", "tab")),
	Select: key.NewBinding(key.WithKeys(" ", "enter")),
	Start:  key.NewBinding(key.WithKeys("s")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
}

type (
	showMsg  struct{ values options.Values }
	errorMsg struct{ text string }
	closeMsg struct{}
)

// Model is the bubbletea model for the dialog.
type Model struct {
	ctrl    Controller
	strings *resources.Strings

	values  options.Values
	cursor  int
	started bool
	errText string
	closing bool

	width  int
	height int
}

func NewModel(ctrl Controller, strs *resources.Strings) Model {
	return Model{ctrl: ctrl, strings: strs}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case showMsg:
		m.values = msg.values
		return m, nil
	case errorMsg:
		m.errText = msg.text
		return m, nil
	case closeMsg:
		m.closing = true
		if m.errText != "" {
			return m, tea.Tick(errorLinger, func(time.Time) tea.Msg { return tea.Quit() })
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if m.closing {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		return m, m.call(m.ctrl.Cancel)
	case key.Matches(msg, keys.Up):
		m.cursor = (m.cursor + rowCount - 1) % rowCount
	case key.Matches(msg, keys.Down):
		m.cursor = (m.cursor + 1) % rowCount
	case key.Matches(msg, keys.Start):
		return m.start()
	case key.Matches(msg, keys.Select):
		switch {
		case m.cursor < rowStart:
			o := options.All[m.cursor]
			on := !m.values.Get(o)
			m.values = m.values.With(o, on)
			return m, m.call(func() { m.ctrl.Toggle(o, on) })
		case m.cursor == rowStart:
			return m.start()
		default:
			return m, m.call(m.ctrl.Cancel)
		}
	}
	return m, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	if m.started {
		return m, nil
	}
	m.started = true
	return m, m.call(m.ctrl.Start)
}

// call runs fn off the update loop so the dialog can render back into it.
func (m Model) call(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.NormalBorder())
	disabledStyle = buttonStyle.Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.strings.Get(resources.Title)))
	b.WriteString("\n\n")

	for i, o := range options.All {
		box := "[ ]"
		if m.values.Get(o) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, m.strings.Get(resources.OptionLabel(o)))
		if m.cursor == i {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	startStyle := buttonStyle
	if m.started {
		startStyle = disabledStyle
	}
	start := startStyle.Render(m.strings.Get(resources.StartLabel))
	cancel := buttonStyle.Render(m.strings.Get(resources.CancelLabel))
	if m.cursor == rowStart && !m.started {
		start = startStyle.BorderForeground(lipgloss.Color("212")).Render(m.strings.Get(resources.StartLabel))
	}
	if m.cursor == rowStart+1 {
		cancel = buttonStyle.BorderForeground(lipgloss.Color("212")).Render(m.strings.Get(resources.CancelLabel))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cancel, " ", start))

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errText))
	}

	panel := b.String()
	if m.width > 0 {
		panel = panelStyle.Width(m.width - panelStyle.GetHorizontalBorderSize()).Render(panel)
	} else {
		panel = panelStyle.Render(panel)
	}
	if m.height > 0 {
		return lipgloss.PlaceVertical(m.height, lipgloss.Bottom, panel)
	}
	return panel
}

// surface forwards dialog callbacks into the program in order.
type surface struct {
	msgs chan tea.Msg
}

func (s *surface) Show(v options.Values)    { s.msgs <- showMsg{values: v} }
func (s *surface) ShowError(message string) { s.msgs <- errorMsg{text: message} }
func (s *surface) Close()                   { s.msgs <- closeMsg{} }

// Run opens the dialog in the terminal and blocks until it closes.
func Run(ctx context.Context, ctrl Controller, strs *resources.Strings, log zerolog.Logger) error {
	p := tea.NewProgram(NewModel(ctrl, strs), tea.WithAltScreen(), tea.WithContext(ctx))

	s := &surface{msgs: make(chan tea.Msg, 16)}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case msg := <-s.msgs:
				p.Send(msg)
			case <-stop:
				return
			}
		}
	}()

	if err := ctrl.Open(ctx, s); err != nil {
		return err
	}

	_, err := p.Run()
	// Leaving the program early (ctrl+c, signal) still ends the dialog.
	ctrl.Cancel()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		log.Debug().Msg("Terminal dialog interrupted")
		return nil
	}
	return err
}
