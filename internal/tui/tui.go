// Package tui is an interactive terminal front end for the autofill widget.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/NazishAyoob/AutoCompleteInput/internal/cli"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/selection"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// resultsTop is the screen row of the first dropdown entry: the header and the input come first.
const resultsTop = 2

// StateMsg carries a widget state change into the program.
type StateMsg struct {
	State autofill.State
}

// CommitMsg carries a committed candidate into the program.
type CommitMsg struct {
	Candidate dataset.Candidate
}

// Model is the bubbletea model wrapping one widget.
type Model struct {
	widget *autofill.Widget
	events chan tea.Msg
	done   chan struct{}

	input     textinput.Model
	styles    cli.Styles
	state     autofill.State
	committed *dataset.Candidate
	focused   bool
	width     int
}

// New builds the widget and a focused input.
func New(opts autofill.Options) (Model, error) {
	m := Model{
		events:  make(chan tea.Msg, 16),
		done:    make(chan struct{}),
		styles:  cli.NewStyles(os.Stdout),
		state:   autofill.State{HighlightedIndex: -1},
		focused: true,
	}

	w, err := autofill.New(opts, autofill.ListenerFuncs{
		OnStateChanged: func(s autofill.State) {
			m.post(StateMsg{State: s})
		},
		OnSelectionCommitted: func(c dataset.Candidate) {
			m.post(CommitMsg{Candidate: c})
		},
	})
	if err != nil {
		return Model{}, err
	}
	m.widget = w

	ti := textinput.New()
	ti.Placeholder = "Search topics..."
	ti.Prompt = "> "
	ti.PromptStyle = m.styles.Cursor
	ti.CharLimit = 120
	ti.Focus()
	m.input = ti
	return m, nil
}

func (m Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	case <-m.done:
	}
}

// waitForEvent delivers the next widget message to the program.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.done:
			return nil
		}
	}
}

// Close stops the widget and releases a pending waitForEvent.
func (m Model) Close() {
	m.widget.Close()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = msg.State
		return m, m.waitForEvent()

	case CommitMsg:
		c := msg.Candidate
		m.committed = &c
		m.input.SetValue(c.Name)
		m.input.CursorEnd()
		return m, m.waitForEvent()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.Y - resultsTop)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			return m, m.toggleFocus()
		case "up", "down", "enter", "esc":
			if m.focused {
				m.widget.KeyPressed(keyFor(msg.Type))
			}
			return m, nil
		}
	}

	if !m.focused {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.widget.TextChanged(after)
	}
	return m, cmd
}

func keyFor(t tea.KeyType) selection.Key {
	switch t {
	case tea.KeyUp:
		return selection.ArrowUp
	case tea.KeyDown:
		return selection.ArrowDown
	case tea.KeyEnter:
		return selection.Enter
	default:
		return selection.Escape
	}
}

func (m *Model) toggleFocus() tea.Cmd {
	m.focused = !m.focused
	if m.focused {
		m.widget.Focused()
		return m.input.Focus()
	}
	m.input.Blur()
	m.widget.Blurred()
	return nil
}

func (m Model) click(row int) {
	if !m.state.IsOpen || row < 0 || row >= len(m.state.Results) {
		return
	}
	if err := m.widget.ItemClicked(m.state.Results[row].ID); err != nil {
		log.Debug("Click ignored", "row", row, "err", err)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Muted.Render("autofill  tab focus/blur  ↑/↓ enter esc  ctrl+c quit"))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if m.state.IsOpen {
		for i, c := range m.state.Results {
			marker := "  "
			if i == m.state.HighlightedIndex {
				marker = m.styles.Cursor.Render("▸ ")
			}
			b.WriteString(marker)
			b.WriteString(m.styles.Name(c.Name, m.state.SettledQuery, i == m.state.HighlightedIndex))
			b.WriteByte('\n')
		}
	} else if m.committed != nil {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("selected #%d %s", m.committed.ID, m.committed.Name)))
		b.WriteByte('\n')
	}

	stats := m.widget.Stats()
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("cache %d/%d  hits %d  misses %d",
		stats["entries"], stats["capacity"], stats["hits"], stats["misses"])))
	return b.String()
}

// Run starts the program on the alternate screen with mouse support.
func Run(opts autofill.Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
