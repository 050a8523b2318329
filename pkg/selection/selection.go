/*
Package selection tracks dropdown visibility and the highlighted row of an
autofill input.

The Machine has two states. Closed is the initial state; Open always holds a
non-empty result list. Navigation and commit events received while Closed
are ignored rather than reported as errors, since they routinely arrive from
loosely synchronized UI event delivery.

	Closed --QueryResolved(non-empty)--> Open(-1)
	Open   --ArrowDown/ArrowUp---------> Open(clamped index)
	Open   --Enter(index>=0)/Click-----> Closed (commit)
	Open   --Escape/Dismiss------------> Closed
	Closed --Focus(results non-empty)--> Open

Machine has no timers; the blur grace period is scheduled by its owner, which
calls Dismiss when it elapses.
*/
package selection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
)

// Key is a decoded navigation key.
type Key int

const (
	ArrowDown Key = iota + 1
	ArrowUp
	Enter
	Escape
)

var keyNames = map[Key]string{
	ArrowDown: "ArrowDown",
	ArrowUp:   "ArrowUp",
	Enter:     "Enter",
	Escape:    "Escape",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// ParseKey accepts the DOM key names plus the short forms used by terminals.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrowdown", "down":
		return ArrowDown, nil
	case "arrowup", "up":
		return ArrowUp, nil
	case "enter", "return":
		return Enter, nil
	case "escape", "esc":
		return Escape, nil
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// State is a snapshot of the dropdown.
type State struct {
	IsOpen           bool
	HighlightedIndex int
	Results          []dataset.Candidate
	SettledQuery     string
}

// Highlighted returns the highlighted candidate, if any.
func (s State) Highlighted() (dataset.Candidate, bool) {
	if s.HighlightedIndex < 0 || s.HighlightedIndex >= len(s.Results) {
		return dataset.Candidate{}, false
	}
	return s.Results[s.HighlightedIndex], true
}

// Outcome reports what an event did.
type Outcome struct {
	Changed   bool
	Committed *dataset.Candidate
}

// Machine is the selection state machine. It is not safe for concurrent use.
type Machine struct {
	state State
}

// NewMachine returns a Machine in the Closed state.
func NewMachine() *Machine {
	return &Machine{state: State{HighlightedIndex: -1}}
}

// State returns a snapshot. The Results slice is shared and must not be modified.
func (m *Machine) State() State {
	return m.state
}

// QueryResolved installs the results for a newly settled query. A non-empty
// list opens the dropdown with nothing highlighted; an empty one closes it.
func (m *Machine) QueryResolved(query string, results []dataset.Candidate) Outcome {
	m.state = State{
		IsOpen:           len(results) > 0,
		HighlightedIndex: -1,
		Results:          results,
		SettledQuery:     query,
	}
	return Outcome{Changed: true}
}

// Key applies a navigation key.
func (m *Machine) Key(k Key) Outcome {
	if !m.state.IsOpen {
		return Outcome{}
	}

	switch k {
	case ArrowDown:
		return m.moveTo(min(m.state.HighlightedIndex+1, len(m.state.Results)-1))
	case ArrowUp:
		return m.moveTo(max(m.state.HighlightedIndex-1, -1))
	case Enter:
		c, ok := m.state.Highlighted()
		if !ok {
			return Outcome{}
		}
		return m.commit(c)
	case Escape:
		m.close()
		return Outcome{Changed: true}
	}
	return Outcome{}
}

// Click commits c regardless of the highlighted row.
func (m *Machine) Click(c dataset.Candidate) Outcome {
	if !m.state.IsOpen {
		return Outcome{}
	}
	return m.commit(c)
}

// Dismiss closes the dropdown without committing; used when the blur grace period ends.
func (m *Machine) Dismiss() Outcome {
	if !m.state.IsOpen {
		return Outcome{}
	}
	m.close()
	return Outcome{Changed: true}
}

// Focus reopens the dropdown when the current query still has results,
// keeping whatever row was highlighted.
func (m *Machine) Focus() Outcome {
	if m.state.IsOpen || len(m.state.Results) == 0 {
		return Outcome{}
	}
	m.state.IsOpen = true
	return Outcome{Changed: true}
}

func (m *Machine) moveTo(i int) Outcome {
	if i == m.state.HighlightedIndex {
		return Outcome{}
	}
	m.state.HighlightedIndex = i
	return Outcome{Changed: true}
}

func (m *Machine) commit(c dataset.Candidate) Outcome {
	m.close()
	return Outcome{Changed: true, Committed: &c}
}

func (m *Machine) close() {
	m.state.IsOpen = false
	m.state.HighlightedIndex = -1
}

// Clone returns a copy of s that shares no memory with the machine.
func (s State) Clone() State {
	s.Results = slices.Clone(s.Results)
	return s
}
