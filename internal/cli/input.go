// Package cli is a line-based debug front end for the autofill widget.
package cli

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/selection"
	"github.com/charmbracelet/log"
)

// InputHandler feeds stdin lines to a widget. Plain lines are typed text;
// lines starting with ':' are commands:
//
//	:down :up :enter :esc   navigation keys
//	:click ID               pointer commit
//	:focus :blur            focus changes
//	:stats                  cache counters
//	:state                  print the current dropdown
type InputHandler struct {
	widget  *autofill.Widget
	printer *Printer
	in      io.Reader
	// sync settles each line immediately instead of waiting for the debounce delay.
	sync bool
}

// NewInputHandler creates the widget with a listener that prints to out.
func NewInputHandler(opts autofill.Options, sync bool, in io.Reader, out io.Writer) (*InputHandler, error) {
	h := &InputHandler{
		printer: NewPrinter(out),
		in:      in,
		sync:    sync,
	}
	w, err := autofill.New(opts, autofill.ListenerFuncs{
		OnStateChanged:       h.printer.State,
		OnSelectionCommitted: h.printer.Committed,
	})
	if err != nil {
		return nil, err
	}
	h.widget = w
	return h, nil
}

// Start reads lines until EOF, then closes the widget.
func (h *InputHandler) Start() error {
	defer h.widget.Close()

	h.printer.Banner(h.widget.Dataset().Len(), h.sync)
	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			h.handleInput(line)
		}
		if errors.Is(err, io.EOF) {
			h.widget.Settle()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	if !strings.HasPrefix(line, ":") {
		log.Debug("Text changed", "text", line)
		h.widget.TextChanged(line)
		if h.sync {
			h.widget.Settle()
		}
		return
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	switch cmd {
	case "click":
		id, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			log.Errorf("Invalid candidate id: %q", arg)
			return
		}
		if err := h.widget.ItemClicked(id); err != nil {
			log.Errorf("Click failed: %v", err)
		}
	case "focus":
		h.widget.Focused()
	case "blur":
		h.widget.Blurred()
	case "stats":
		h.printer.Stats(h.widget.Stats())
	case "state":
		h.printer.State(h.widget.State())
	case "clear":
		h.widget.TextChanged("")
		if h.sync {
			h.widget.Settle()
		}
	default:
		k, err := selection.ParseKey(cmd)
		if err != nil {
			log.Errorf("Unknown command %q", line)
			return
		}
		h.widget.KeyPressed(k)
	}
}

// Printer writes widget output through a charm logger.
type Printer struct {
	out    *log.Logger
	styles Styles
}

// NewPrinter styles output for w's color profile.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    log.NewWithOptions(w, log.Options{ReportTimestamp: false}),
		styles: NewStyles(w),
	}
}

func (p *Printer) Banner(candidates int, sync bool) {
	p.out.Print("autofill CLI [DBG]")
	p.out.Print("type to search, :down :up :enter :esc :click ID :focus :blur :stats (Ctrl+D to exit)",
		"candidates", candidates, "sync", sync)
}

// State prints the dropdown, marking the highlighted row.
func (p *Printer) State(s autofill.State) {
	if !s.IsOpen {
		p.out.Printf("[closed] query=%q results=%d", s.SettledQuery, len(s.Results))
		return
	}
	p.out.Printf("[open] query=%q results=%d", s.SettledQuery, len(s.Results))
	for i, c := range s.Results {
		marker := "  "
		if i == s.HighlightedIndex {
			marker = p.styles.Cursor.Render("> ")
		}
		p.out.Printf("%s%2d. %s", marker, c.ID, p.styles.Name(c.Name, s.SettledQuery, i == s.HighlightedIndex))
	}
}

func (p *Printer) Committed(c dataset.Candidate) {
	p.out.Print("selected", "id", c.ID, "name", c.Name)
}

func (p *Printer) Stats(stats map[string]int) {
	p.out.Print("stats",
		"entries", stats["entries"],
		"capacity", stats["capacity"],
		"hits", stats["hits"],
		"misses", stats["misses"],
		"evictions", stats["evictions"],
		"matcherRuns", stats["matcherRuns"])
}
