/*
Package server exposes an autofill.Widget over stdin/stdout IPC.

One widget lives per server process. A front end forwards its input events
as requests and renders the state messages it gets back. The stream is either
JSON lines or a raw msgpack stream; both use the same short field names.

# IPC

Every request carries an ID and an event name:

	{"id": "1", "e": "text", "t": "red"}
	{"id": "2", "e": "key", "k": "ArrowDown"}
	{"id": "3", "e": "click", "c": 44}
	{"id": "4", "e": "focus"}
	{"id": "5", "e": "blur"}
	{"id": "6", "e": "flush"}
	{"id": "7", "e": "state"}
	{"id": "8", "e": "stats"}

Each request is answered with an ack, written after any messages the event
produced synchronously:

	{"m": "ack", "id": "2"}
	{"m": "ack", "id": "3", "err": "autofill: candidate not found: id 99", "code": 404}

State changes arrive whenever the widget reports them, including after the
debounce and blur timers fire. Results carry highlight segments against the
settled query:

	{"m": "state", "o": true, "i": -1, "q": "saga", "r": [{"id": 44, "n": "Redux Saga", "s": [...]}]}

Commits arrive as select messages, always before the state change that closes
the dropdown:

	{"m": "select", "c": 44, "n": "Redux Saga"}
*/
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/match"
	"github.com/vmihailenco/msgpack/v5"
)

// Event names accepted in Request.Event.
const (
	EventText  = "text"
	EventKey   = "key"
	EventClick = "click"
	EventFocus = "focus"
	EventBlur  = "blur"
	EventFlush = "flush"
	EventState = "state"
	EventStats = "stats"
)

// Message kinds written by the server.
const (
	KindReady  = "ready"
	KindAck    = "ack"
	KindState  = "state"
	KindSelect = "select"
	KindStats  = "stats"
)

// ErrMalformedRequest marks a request that could not be decoded. The stream
// stays usable after it for line-based codecs.
var ErrMalformedRequest = errors.New("server: malformed request")

// ErrUnknownCodec is returned for codec names other than json and msgpack.
var ErrUnknownCodec = errors.New("server: unknown codec")

// Request is one input event from the front end.
type Request struct {
	ID        string `json:"id" msgpack:"id"`
	Event     string `json:"e" msgpack:"e"`
	Text      string `json:"t,omitempty" msgpack:"t,omitempty"`
	Key       string `json:"k,omitempty" msgpack:"k,omitempty"`
	Candidate int    `json:"c,omitempty" msgpack:"c,omitempty"`
}

// Ready is written once before any request is read.
type Ready struct {
	Kind       string `json:"m" msgpack:"m"`
	Candidates int    `json:"n" msgpack:"n"`
	Codec      string `json:"codec" msgpack:"codec"`
}

// Ack answers a request. Code follows HTTP conventions when Error is set.
type Ack struct {
	Kind  string `json:"m" msgpack:"m"`
	ID    string `json:"id" msgpack:"id"`
	Error string `json:"err,omitempty" msgpack:"err,omitempty"`
	Code  int    `json:"code,omitempty" msgpack:"code,omitempty"`
}

// Result is one dropdown row.
type Result struct {
	ID       int             `json:"id" msgpack:"id"`
	Name     string          `json:"n" msgpack:"n"`
	Segments []match.Segment `json:"s" msgpack:"s"`
}

// StateMessage mirrors autofill.State. ID is set only when answering a state request.
type StateMessage struct {
	Kind    string   `json:"m" msgpack:"m"`
	ID      string   `json:"id,omitempty" msgpack:"id,omitempty"`
	Open    bool     `json:"o" msgpack:"o"`
	Index   int      `json:"i" msgpack:"i"`
	Query   string   `json:"q" msgpack:"q"`
	Results []Result `json:"r" msgpack:"r"`
}

// SelectMessage reports a committed candidate.
type SelectMessage struct {
	Kind string `json:"m" msgpack:"m"`
	ID   int    `json:"c" msgpack:"c"`
	Name string `json:"n" msgpack:"n"`
}

// StatsMessage answers a stats request.
type StatsMessage struct {
	Kind  string         `json:"m" msgpack:"m"`
	ID    string         `json:"id" msgpack:"id"`
	Stats map[string]int `json:"s" msgpack:"s"`
}

// NewStateMessage renders s for the wire, highlighting each result against the settled query.
func NewStateMessage(id string, s autofill.State) StateMessage {
	results := make([]Result, 0, len(s.Results))
	for _, c := range s.Results {
		results = append(results, Result{
			ID:       c.ID,
			Name:     c.Name,
			Segments: match.Highlight(c.Name, s.SettledQuery),
		})
	}
	return StateMessage{
		Kind:    KindState,
		ID:      id,
		Open:    s.IsOpen,
		Index:   s.HighlightedIndex,
		Query:   s.SettledQuery,
		Results: results,
	}
}

// Codec frames requests and messages on the IPC stream.
type Codec interface {
	Name() string
	// Read decodes the next request. It returns io.EOF at the end of the stream.
	Read(*Request) error
	Write(v any) error
}

// NewCodec returns the codec called name ("json" or "msgpack").
func NewCodec(name string, r io.Reader, w io.Writer) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return newJSONCodec(r, w), nil
	case "msgpack":
		return newMsgpackCodec(r, w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

const maxLineSize = 1 << 20

type jsonCodec struct {
	scanner *bufio.Scanner
	w       *bufio.Writer
}

func newJSONCodec(r io.Reader, w io.Writer) *jsonCodec {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &jsonCodec{scanner: scanner, w: bufio.NewWriter(w)}
}

func (c *jsonCodec) Name() string { return "json" }

func (c *jsonCodec) Read(req *Request) error {
	for c.scanner.Scan() {
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		*req = Request{}
		if err := json.Unmarshal([]byte(line), req); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return nil
	}
	if err := c.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (c *jsonCodec) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := c.w.Write(data); err != nil {
		return err
	}
	return c.w.Flush()
}

type msgpackCodec struct {
	dec *msgpack.Decoder
	enc *msgpack.Encoder
	w   *bufio.Writer
}

func newMsgpackCodec(r io.Reader, w io.Writer) *msgpackCodec {
	bw := bufio.NewWriter(w)
	return &msgpackCodec{
		dec: msgpack.NewDecoder(bufio.NewReader(r)),
		enc: msgpack.NewEncoder(bw),
		w:   bw,
	}
}

func (c *msgpackCodec) Name() string { return "msgpack" }

func (c *msgpackCodec) Read(req *Request) error {
	*req = Request{}
	err := c.dec.Decode(req)
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return err
}

func (c *msgpackCodec) Write(v any) error {
	if err := c.enc.Encode(v); err != nil {
		return err
	}
	return c.w.Flush()
}
