//go:build test

package autofill

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/clock"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/selection"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var typingPatterns = [][]string{
	{"r", "re", "rea", "reac", "react"},
	{"n", "no", "nod", "node"},
	{"r", "re", "red", "redu", "redux"},
	{"t", "ty", "typ", "type", "types", "typesc", "typescript"},
	{"t", "ta", "tai", "tail", "tailw", "tailwind"},
	{"n", "ne", "nex", "next"},
	{"p", "pe", "per", "perf", "performance"},
	{"i", "in", "int", "inte", "inter", "interview"},
}

// heapDelta reports live heap growth across fn, after forcing GC on both sides.
func heapDelta(fn func()) int64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	fn()
	runtime.GC()
	runtime.ReadMemStats(&after)
	return int64(after.HeapAlloc) - int64(before.HeapAlloc)
}

func TestMemoryBoundedByCache(t *testing.T) {
	for _, sessions := range []int{100, 1000, 5000} {
		t.Run(fmt.Sprintf("sessions_%d", sessions), func(t *testing.T) {
			fake := clock.NewFake()
			opts := DefaultOptions()
			opts.Clock = fake
			w, err := New(opts, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer w.Close()

			baselineGoroutines := runtime.NumGoroutine()
			delta := heapDelta(func() {
				for i := 0; i < sessions; i++ {
					for _, text := range typingPatterns[i%len(typingPatterns)] {
						w.TextChanged(text)
					}
					fake.Advance(opts.DebounceDelay)
					w.KeyPressed(selection.ArrowDown)
					w.KeyPressed(selection.Enter)
				}
			})

			stats := w.Stats()
			t.Logf("sessions=%d heap_delta=%d entries=%d hits=%d misses=%d goroutine_delta=%d",
				sessions, delta, stats["entries"], stats["hits"], stats["misses"],
				runtime.NumGoroutine()-baselineGoroutines)

			if stats["entries"] > opts.CacheCapacity {
				t.Errorf("cache holds %d entries, capacity %d", stats["entries"], opts.CacheCapacity)
			}
			if delta > 1<<20 {
				t.Errorf("heap grew by %d bytes", delta)
			}
			if fake.Pending() != 0 {
				t.Errorf("%d timers still pending", fake.Pending())
			}
		})
	}
}

func TestMemoryConcurrentWidgets(t *testing.T) {
	baselineGoroutines := runtime.NumGoroutine()

	delta := heapDelta(func() {
		var wg sync.WaitGroup
		for worker := 0; worker < 8; worker++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				opts := DefaultOptions()
				opts.DebounceDelay = time.Millisecond
				w, err := New(opts, nil)
				if err != nil {
					t.Error(err)
					return
				}
				defer w.Close()
				for i := 0; i < 200; i++ {
					for _, text := range typingPatterns[(worker+i)%len(typingPatterns)] {
						w.TextChanged(text)
					}
					w.Settle()
				}
			}(worker)
		}
		wg.Wait()
	})

	// stopped real timers may take a moment to unwind
	time.Sleep(20 * time.Millisecond)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	t.Logf("heap_delta=%d goroutine_delta=%d", delta, goroutineDelta)
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}
