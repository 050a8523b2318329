package autofill

import (
	"sync"
	"testing"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/clock"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects listener output.
type recorder struct {
	mu        sync.Mutex
	states    []State
	committed []dataset.Candidate
	order     []string
}

func (r *recorder) StateChanged(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
	r.order = append(r.order, "state")
}

func (r *recorder) SelectionCommitted(c dataset.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, c)
	r.order = append(r.order, "commit")
}

func (r *recorder) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return State{HighlightedIndex: -1}
	}
	return r.states[len(r.states)-1]
}

func (r *recorder) stateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func newWidget(t *testing.T, mutate func(*Options)) (*Widget, *clock.Fake, *recorder) {
	t.Helper()
	fake := clock.NewFake()
	opts := DefaultOptions()
	opts.Clock = fake
	if mutate != nil {
		mutate(&opts)
	}
	rec := &recorder{}
	w, err := New(opts, rec)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w, fake, rec
}

func typeText(w *Widget, text string) {
	for i := 1; i <= len(text); i++ {
		w.TextChanged(text[:i])
	}
}

func resultNames(s State) []string {
	out := make([]string, 0, len(s.Results))
	for _, c := range s.Results {
		out = append(out, c.Name)
	}
	return out
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero capacity", func(o *Options) { o.CacheCapacity = 0 }},
		{"negative capacity", func(o *Options) { o.CacheCapacity = -3 }},
		{"negative debounce", func(o *Options) { o.DebounceDelay = -time.Millisecond }},
		{"negative blur grace", func(o *Options) { o.BlurGrace = -time.Millisecond }},
		{"unknown matcher", func(o *Options) { o.Matcher = "fuzzy" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			_, err := New(opts, nil)
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 300*time.Millisecond, opts.DebounceDelay)
	assert.Equal(t, 10, opts.CacheCapacity)
	assert.Equal(t, 150*time.Millisecond, opts.BlurGrace)
	assert.NoError(t, opts.Validate())
}

// Typing "redux" and waiting past the delay opens the dropdown on the Redux
// entries, in dataset order, with nothing highlighted.
func TestTypingReduxEndToEnd(t *testing.T) {
	for _, kind := range []MatcherKind{MatcherScan, MatcherIndex} {
		t.Run(string(kind), func(t *testing.T) {
			w, fake, rec := newWidget(t, func(o *Options) { o.Matcher = kind })

			typeText(w, "redux")
			fake.Advance(299 * time.Millisecond)
			assert.Equal(t, 0, rec.stateCount(), "settled before the debounce delay")

			fake.Advance(time.Millisecond)
			require.Equal(t, 1, rec.stateCount(), "intermediate prefixes must not settle")

			s := rec.last()
			assert.True(t, s.IsOpen)
			assert.Equal(t, -1, s.HighlightedIndex)
			assert.Equal(t, "redux", s.SettledQuery)
			assert.Equal(t, []string{
				"Redux Toolkit",
				"Redux Middleware",
				"Redux Thunk",
				"Redux Saga",
				"Redux vs Context API",
				"Redux Tutorial",
				"Redux Best Practices",
				"Redux Performance Optimization",
				"Redux Interview Questions",
				"Redux Roadmap",
			}, resultNames(s))
			assert.Equal(t, s, w.State())
		})
	}
}

func TestNoMatchesKeepsClosed(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("zzz")
	fake.Advance(time.Second)

	s := rec.last()
	assert.False(t, s.IsOpen)
	assert.Empty(t, s.Results)
	assert.Equal(t, "zzz", w.State().SettledQuery)
}

func TestClearingInputCloses(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("node")
	fake.Advance(time.Second)
	require.True(t, rec.last().IsOpen)

	w.TextChanged("")
	fake.Advance(time.Second)
	assert.False(t, rec.last().IsOpen)
	assert.Equal(t, -1, rec.last().HighlightedIndex)
}

func TestRepeatedQueryHitsCache(t *testing.T) {
	w, fake, _ := newWidget(t, nil)

	w.TextChanged("react")
	fake.Advance(time.Second)
	w.TextChanged("REACT")
	fake.Advance(time.Second)

	stats := w.Stats()
	assert.Equal(t, 1, stats["matcherRuns"])
	assert.Equal(t, 1, stats["hits"])
	assert.Equal(t, 60, stats["candidates"])
}

func TestKeyboardCommit(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("saga")
	fake.Advance(time.Second)
	require.Equal(t, []string{"Redux Saga"}, resultNames(rec.last()))

	w.KeyPressed(selection.Enter) // nothing highlighted yet
	assert.Empty(t, rec.committed)

	w.KeyPressed(selection.ArrowDown)
	assert.Equal(t, 0, w.State().HighlightedIndex)
	w.KeyPressed(selection.Enter)

	require.Len(t, rec.committed, 1)
	assert.Equal(t, 44, rec.committed[0].ID)
	assert.False(t, w.State().IsOpen)
	assert.Equal(t, []string{"state", "state", "commit", "state"}, rec.order)
}

func TestKeysWhileClosedAreIgnored(t *testing.T) {
	w, _, rec := newWidget(t, nil)

	for _, k := range []selection.Key{selection.ArrowDown, selection.ArrowUp, selection.Enter, selection.Escape} {
		w.KeyPressed(k)
	}
	assert.Equal(t, 0, rec.stateCount())
	assert.Empty(t, rec.committed)
}

func TestItemClicked(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("tailwind")
	fake.Advance(time.Second)
	require.True(t, rec.last().IsOpen)

	require.NoError(t, w.ItemClicked(55))
	require.Len(t, rec.committed, 1)
	assert.Equal(t, "Tailwind CSS Dark Mode", rec.committed[0].Name)
	assert.False(t, w.State().IsOpen)
}

func TestItemClickedUnknownID(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("tailwind")
	fake.Advance(time.Second)
	before := w.State()
	count := rec.stateCount()

	err := w.ItemClicked(1234)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
	assert.Empty(t, rec.committed)
	assert.Equal(t, before, w.State())
	assert.Equal(t, count, rec.stateCount())
}

func TestBlurClosesAfterGrace(t *testing.T) {
	w, fake, _ := newWidget(t, nil)

	w.TextChanged("node")
	fake.Advance(time.Second)
	w.KeyPressed(selection.ArrowDown)

	w.Blurred()
	fake.Advance(149 * time.Millisecond)
	assert.True(t, w.State().IsOpen)

	fake.Advance(time.Millisecond)
	assert.False(t, w.State().IsOpen)
	assert.Equal(t, -1, w.State().HighlightedIndex)

	// Focus brings the same results back.
	w.Focused()
	assert.True(t, w.State().IsOpen)
	assert.Len(t, w.State().Results, 10)
}

// A click landing inside the grace period commits, and the pending close never fires.
func TestClickDuringBlurGraceCommits(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("node")
	fake.Advance(time.Second)

	w.Blurred()
	fake.Advance(100 * time.Millisecond)
	require.NoError(t, w.ItemClicked(32))
	require.Len(t, rec.committed, 1)
	assert.Equal(t, "Node.js Event Loop", rec.committed[0].Name)
	assert.Equal(t, 0, fake.Pending())

	count := rec.stateCount()
	fake.Advance(time.Second)
	assert.Equal(t, count, rec.stateCount())
}

func TestZeroBlurGraceClosesImmediately(t *testing.T) {
	w, fake, _ := newWidget(t, func(o *Options) { o.BlurGrace = 0 })

	w.TextChanged("node")
	fake.Advance(time.Second)
	w.Blurred()
	assert.False(t, w.State().IsOpen)
}

func TestRepeatedBlurKeepsOneTimer(t *testing.T) {
	w, fake, _ := newWidget(t, nil)

	w.TextChanged("node")
	fake.Advance(time.Second)
	w.Blurred()
	w.Blurred()
	w.Blurred()
	assert.Equal(t, 1, fake.Pending())
}

func TestCloseCancelsTimers(t *testing.T) {
	w, fake, rec := newWidget(t, nil)

	w.TextChanged("node")
	fake.Advance(time.Second)
	count := rec.stateCount()

	w.Blurred()
	w.TextChanged("react")
	w.Close()

	fake.Advance(time.Second)
	assert.Equal(t, count, rec.stateCount())
	assert.Equal(t, 0, fake.Pending())

	w.KeyPressed(selection.ArrowDown)
	w.Focused()
	assert.ErrorIs(t, w.ItemClicked(1), ErrClosed)
	assert.Equal(t, count, rec.stateCount())
	w.Close()
}

// Listeners may call back into the widget; the nested event runs after the
// current one is delivered.
func TestReentrantListener(t *testing.T) {
	fake := clock.NewFake()
	opts := DefaultOptions()
	opts.Clock = fake

	var (
		w      *Widget
		events []string
	)
	w, err := New(opts, ListenerFuncs{
		OnStateChanged: func(s State) {
			events = append(events, "state")
			if s.IsOpen && s.HighlightedIndex == -1 {
				w.KeyPressed(selection.ArrowDown)
			}
		},
		OnSelectionCommitted: func(dataset.Candidate) {
			events = append(events, "commit")
		},
	})
	require.NoError(t, err)
	defer w.Close()

	w.TextChanged("saga")
	fake.Advance(time.Second)

	assert.Equal(t, 0, w.State().HighlightedIndex)
	assert.Equal(t, []string{"state", "state"}, events)
}

func TestSettleFlushesPendingText(t *testing.T) {
	w, _, rec := newWidget(t, nil)

	w.TextChanged("thunk")
	w.Settle()
	assert.Equal(t, []string{"Redux Thunk"}, resultNames(rec.last()))
}

func TestCustomDataset(t *testing.T) {
	data, err := dataset.New([]dataset.Candidate{{ID: 1, Name: "Go Channels"}, {ID: 2, Name: "Go Generics"}})
	require.NoError(t, err)

	w, fake, rec := newWidget(t, func(o *Options) { o.Candidates = data })
	w.TextChanged("gen")
	fake.Advance(time.Second)
	assert.Equal(t, []string{"Go Generics"}, resultNames(rec.last()))
	assert.Same(t, data, w.Dataset())
}

// Real timers: nothing fires after Close, and no goroutine outlives the test.
func TestRealClockClose(t *testing.T) {
	opts := DefaultOptions()
	opts.DebounceDelay = 5 * time.Millisecond
	opts.BlurGrace = 5 * time.Millisecond

	settled := make(chan State, 4)
	w, err := New(opts, ListenerFuncs{OnStateChanged: func(s State) { settled <- s }})
	require.NoError(t, err)

	w.TextChanged("react")
	select {
	case s := <-settled:
		assert.Len(t, s.Results, 11)
	case <-time.After(2 * time.Second):
		t.Fatal("query never settled")
	}

	w.Blurred()
	w.TextChanged("node")
	w.Close()

	select {
	case s := <-settled:
		t.Fatalf("listener fired after Close: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}
