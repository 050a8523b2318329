/*
Package autofill wires the query-resolution pipeline of an autocomplete input:

	TextChanged -> Debouncer -> settled query -> Resolver (LRU cache, Matcher) -> selection.Machine -> Listener

A Widget consumes already-decoded logical events from a presentation layer
(text changed, key pressed, item clicked, focused, blurred) and reports back
through a Listener. It owns two timers: the debounce timer and the blur grace
timer. A commit cancels a pending blur close so that a pointer click on a
result is not pre-empted by the blur that preceded it.

Every event, whether it comes from a caller or from a timer, is applied
through one in-order queue. Listener callbacks run outside the widget's lock,
one at a time and in event order, and may call back into the Widget; such
calls are queued behind the event being delivered.

	w, err := autofill.New(autofill.DefaultOptions(), autofill.ListenerFuncs{
		OnStateChanged: func(s autofill.State) { render(s) },
		OnSelectionCommitted: func(c dataset.Candidate) { input.SetValue(c.Name) },
	})
	defer w.Close()
	w.TextChanged("redux")
*/
package autofill

import (
	"fmt"
	"sync"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/clock"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/debounce"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/resolve"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/selection"
	"github.com/charmbracelet/log"
)

// State is the snapshot handed to listeners.
type State = selection.State

// Listener receives the widget's outputs.
type Listener interface {
	StateChanged(State)
	SelectionCommitted(dataset.Candidate)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnStateChanged       func(State)
	OnSelectionCommitted func(dataset.Candidate)
}

func (f ListenerFuncs) StateChanged(s State) {
	if f.OnStateChanged != nil {
		f.OnStateChanged(s)
	}
}

func (f ListenerFuncs) SelectionCommitted(c dataset.Candidate) {
	if f.OnSelectionCommitted != nil {
		f.OnSelectionCommitted(c)
	}
}

// event mutates the widget under w.mu and returns what to tell the listener.
type event func(w *Widget) []notice

type notice struct {
	state     *State
	committed *dataset.Candidate
}

// Widget is the autocomplete core. It is safe for concurrent use.
type Widget struct {
	data      *dataset.Dataset
	resolver  *resolve.Resolver
	debouncer *debounce.Debouncer[string]
	clock     clock.Clock
	blurGrace time.Duration
	listener  Listener

	mu       sync.Mutex
	machine  *selection.Machine
	blur     clock.Timer
	blurGen  uint64
	queue    []event
	draining bool
	closed   bool
}

// New validates opts and builds a Widget. listener may be nil.
func New(opts Options, listener Listener) (*Widget, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	data := opts.Candidates
	if data == nil {
		var err error
		if data, err = dataset.New(dataset.Sample()); err != nil {
			return nil, err
		}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	if listener == nil {
		listener = ListenerFuncs{}
	}

	resolver, err := resolve.New(opts.newMatcher(data.Items()), opts.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	w := &Widget{
		data:      data,
		resolver:  resolver,
		clock:     clk,
		blurGrace: opts.BlurGrace,
		listener:  listener,
		machine:   selection.NewMachine(),
	}
	w.debouncer, err = debounce.New(opts.DebounceDelay, w.settle, debounce.WithClock(clk))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	log.Debug("Autofill widget ready",
		"candidates", data.Len(),
		"debounce", opts.DebounceDelay,
		"cache", opts.CacheCapacity,
		"blurGrace", opts.BlurGrace,
		"matcher", opts.Matcher)
	return w, nil
}

// TextChanged feeds the current input text. The query settles after the debounce delay.
func (w *Widget) TextChanged(text string) {
	w.debouncer.Push(text)
}

// Settle resolves any text still waiting in the debouncer right away.
func (w *Widget) Settle() {
	w.debouncer.Flush()
}

// KeyPressed applies a navigation key. Keys that make no sense in the current
// state are ignored.
func (w *Widget) KeyPressed(k selection.Key) {
	w.dispatch(func(w *Widget) []notice {
		return w.apply(w.machine.Key(k), "key", k)
	})
}

// ItemClicked commits the candidate with the given id. An unknown id returns
// ErrCandidateNotFound and changes nothing.
func (w *Widget) ItemClicked(id int) error {
	c, ok := w.data.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrCandidateNotFound, id)
	}
	if w.isClosed() {
		return ErrClosed
	}
	w.dispatch(func(w *Widget) []notice {
		return w.apply(w.machine.Click(c), "click", c.ID)
	})
	return nil
}

// Focused reopens the dropdown if the settled query still has results.
func (w *Widget) Focused() {
	w.dispatch(func(w *Widget) []notice {
		return w.apply(w.machine.Focus(), "focus", nil)
	})
}

// Blurred closes the dropdown once the blur grace period passes, unless a
// commit happens first.
func (w *Widget) Blurred() {
	w.dispatch(func(w *Widget) []notice {
		w.cancelBlur()
		if w.blurGrace == 0 {
			return w.apply(w.machine.Dismiss(), "blur", nil)
		}
		gen := w.blurGen
		w.blur = w.clock.AfterFunc(w.blurGrace, func() {
			w.dispatch(func(w *Widget) []notice {
				if gen != w.blurGen {
					return nil
				}
				w.blur = nil
				return w.apply(w.machine.Dismiss(), "blur", nil)
			})
		})
		return nil
	})
}

// State returns a copy of the current selection state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.State().Clone()
}

// Dataset returns the searchable candidates.
func (w *Widget) Dataset() *dataset.Dataset {
	return w.data
}

// Stats reports cache and matcher counters.
func (w *Widget) Stats() map[string]int {
	stats := w.resolver.Stats()
	stats["candidates"] = w.data.Len()
	return stats
}

// Close cancels both timers. No listener callback starts after Close returns.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.queue = nil
	w.cancelBlur()
	w.mu.Unlock()

	w.debouncer.Close()
	log.Debug("Autofill widget closed")
}

// settle is the debouncer's emit callback.
func (w *Widget) settle(query string) {
	w.dispatch(func(w *Widget) []notice {
		results := w.resolver.Resolve(query)
		w.machine.QueryResolved(query, results)
		log.Debug("Query settled", "query", query, "results", len(results))
		s := w.machine.State().Clone()
		return []notice{{state: &s}}
	})
}

// apply turns a machine outcome into notices. A commit cancels the pending blur close.
func (w *Widget) apply(out selection.Outcome, what string, arg any) []notice {
	if !out.Changed {
		log.Debug("Ignored event", "event", what, "arg", arg, "open", w.machine.State().IsOpen)
		return nil
	}

	var notices []notice
	if out.Committed != nil {
		w.cancelBlur()
		notices = append(notices, notice{committed: out.Committed})
		log.Debug("Selection committed", "id", out.Committed.ID, "name", out.Committed.Name)
	}
	s := w.machine.State().Clone()
	return append(notices, notice{state: &s})
}

func (w *Widget) cancelBlur() {
	w.blurGen++
	if w.blur != nil {
		w.blur.Stop()
		w.blur = nil
	}
}

// dispatch queues ev and, unless another goroutine is already draining,
// applies queued events in order until the queue is empty.
func (w *Widget) dispatch(ev event) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, ev)
	if w.draining {
		w.mu.Unlock()
		return
	}

	w.draining = true
	for len(w.queue) > 0 && !w.closed {
		next := w.queue[0]
		w.queue = w.queue[1:]
		notices := next(w)

		w.mu.Unlock()
		w.deliver(notices)
		w.mu.Lock()
	}
	w.draining = false
	w.mu.Unlock()
}

func (w *Widget) deliver(notices []notice) {
	for _, n := range notices {
		if w.isClosed() {
			return
		}
		switch {
		case n.committed != nil:
			w.listener.SelectionCommitted(*n.committed)
		case n.state != nil:
			w.listener.StateChanged(*n.state)
		}
	}
}

func (w *Widget) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
