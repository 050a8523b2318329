package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/NazishAyoob/AutoCompleteInput/internal/logger"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/selection"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options configures a Server.
type Options struct {
	Widget autofill.Options
	Codec  string
	// MaxRequestsPerSecond throttles request handling. Zero disables the limit.
	MaxRequestsPerSecond int
	Burst                int
}

// Server handles the IPC for one autofill widget.
type Server struct {
	codec   Codec
	widget  *autofill.Widget
	limiter *rate.Limiter
	log     *log.Logger

	out        chan any
	writerDone chan struct{}
	requests   atomic.Int64
}

// NewServer builds the widget and codec. Messages are read from r and written to w.
func NewServer(opts Options, r io.Reader, w io.Writer) (*Server, error) {
	codec, err := NewCodec(opts.Codec, r, w)
	if err != nil {
		return nil, err
	}

	s := &Server{
		codec:      codec,
		log:        logger.New("ipc"),
		out:        make(chan any, 64),
		writerDone: make(chan struct{}),
	}
	if opts.MaxRequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), max(opts.Burst, 1))
	}

	s.widget, err = autofill.New(opts.Widget, autofill.ListenerFuncs{
		OnStateChanged: func(st autofill.State) {
			s.send(NewStateMessage("", st))
		},
		OnSelectionCommitted: func(c dataset.Candidate) {
			s.send(SelectMessage{Kind: KindSelect, ID: c.ID, Name: c.Name})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create widget: %w", err)
	}
	return s, nil
}

// Widget returns the served widget.
func (s *Server) Widget() *autofill.Widget {
	return s.widget
}

// Serve runs until the input stream ends, a stream error occurs, or ctx is
// cancelled. The widget is closed on return.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Debug("Starting server", "codec", s.codec.Name())

	s.send(Ready{Kind: KindReady, Candidates: s.widget.Dataset().Len(), Codec: s.codec.Name()})

	g, ctx := errgroup.WithContext(ctx)
	readerDone := make(chan struct{})

	g.Go(func() error {
		defer close(readerDone)
		defer s.widget.Close()
		return s.readLoop(ctx)
	})
	g.Go(func() error {
		defer close(s.writerDone)
		return s.writeLoop(ctx, readerDone)
	})

	err := g.Wait()
	s.log.Debug("Server stopped", "requests", s.requests.Load(), "err", err)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) readLoop(ctx context.Context) error {
	for {
		var req Request
		err := s.codec.Read(&req)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrMalformedRequest):
			s.log.Errorf("Unmarshaling request: %v", err)
			s.send(Ack{Kind: KindAck, Error: err.Error(), Code: 400})
			continue
		case err != nil:
			return fmt.Errorf("reading request: %w", err)
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.requests.Add(1)
		s.handle(req)
	}
}

// writeLoop writes queued messages. Once the reader is done it drains what is
// already queued and returns.
func (s *Server) writeLoop(ctx context.Context, readerDone <-chan struct{}) error {
	for {
		select {
		case msg := <-s.out:
			if err := s.codec.Write(msg); err != nil {
				return fmt.Errorf("writing message: %w", err)
			}
		case <-readerDone:
			for {
				select {
				case msg := <-s.out:
					if err := s.codec.Write(msg); err != nil {
						return fmt.Errorf("writing message: %w", err)
					}
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// send queues msg for the writer. It drops msg once the writer has stopped.
func (s *Server) send(msg any) {
	select {
	case s.out <- msg:
	case <-s.writerDone:
	}
}

func (s *Server) handle(req Request) {
	s.log.Debug("Request", "id", req.ID, "event", req.Event)

	switch req.Event {
	case EventText:
		s.widget.TextChanged(req.Text)
	case EventKey:
		k, err := selection.ParseKey(req.Key)
		if err != nil {
			s.sendError(req.ID, err, 400)
			return
		}
		s.widget.KeyPressed(k)
	case EventClick:
		if err := s.widget.ItemClicked(req.Candidate); err != nil {
			code := 500
			if errors.Is(err, autofill.ErrCandidateNotFound) {
				code = 404
			}
			s.sendError(req.ID, err, code)
			return
		}
	case EventFocus:
		s.widget.Focused()
	case EventBlur:
		s.widget.Blurred()
	case EventFlush:
		s.widget.Settle()
	case EventState:
		s.send(NewStateMessage(req.ID, s.widget.State()))
		return
	case EventStats:
		stats := s.widget.Stats()
		stats["requests"] = int(s.requests.Load())
		s.send(StatsMessage{Kind: KindStats, ID: req.ID, Stats: stats})
		return
	default:
		s.sendError(req.ID, fmt.Errorf("unknown event %q", req.Event), 400)
		return
	}
	s.send(Ack{Kind: KindAck, ID: req.ID})
}

func (s *Server) sendError(id string, err error, code int) {
	s.log.Debug("Request failed", "id", id, "err", err)
	s.send(Ack{Kind: KindAck, ID: id, Error: err.Error(), Code: code})
}
