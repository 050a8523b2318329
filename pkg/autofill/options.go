package autofill

import (
	"errors"
	"fmt"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/clock"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/match"
)

const (
	DefaultDebounceDelay = 300 * time.Millisecond
	DefaultCacheCapacity = 10
	DefaultBlurGrace     = 150 * time.Millisecond
)

// MatcherKind selects the Matcher implementation.
type MatcherKind string

const (
	MatcherScan  MatcherKind = "scan"
	MatcherIndex MatcherKind = "index"
)

var (
	ErrInvalidOption     = errors.New("autofill: invalid option")
	ErrCandidateNotFound = errors.New("autofill: candidate not found")
	ErrClosed            = errors.New("autofill: widget closed")
)

// Options are fixed at construction.
type Options struct {
	// DebounceDelay is the quiet period before typed text becomes the settled query.
	DebounceDelay time.Duration
	// CacheCapacity is the number of distinct queries kept in the result cache.
	CacheCapacity int
	// BlurGrace delays closing on blur so an in-flight click can still commit.
	BlurGrace time.Duration
	// Candidates is the searchable dataset. Nil means the built-in sample.
	Candidates *dataset.Dataset
	Matcher    MatcherKind
	// Clock drives both timers. Nil means wall time.
	Clock clock.Clock
}

// DefaultOptions returns the stock configuration over the sample dataset.
func DefaultOptions() Options {
	return Options{
		DebounceDelay: DefaultDebounceDelay,
		CacheCapacity: DefaultCacheCapacity,
		BlurGrace:     DefaultBlurGrace,
		Matcher:       MatcherScan,
	}
}

// Validate rejects settings that cannot be honored. Nothing is clamped.
func (o Options) Validate() error {
	if o.CacheCapacity <= 0 {
		return fmt.Errorf("%w: cache capacity %d must be positive", ErrInvalidOption, o.CacheCapacity)
	}
	if o.DebounceDelay < 0 {
		return fmt.Errorf("%w: debounce delay %v must not be negative", ErrInvalidOption, o.DebounceDelay)
	}
	if o.BlurGrace < 0 {
		return fmt.Errorf("%w: blur grace %v must not be negative", ErrInvalidOption, o.BlurGrace)
	}
	switch o.Matcher {
	case "", MatcherScan, MatcherIndex:
	default:
		return fmt.Errorf("%w: unknown matcher %q", ErrInvalidOption, o.Matcher)
	}
	return nil
}

func (o Options) newMatcher(items []dataset.Candidate) match.Matcher {
	if o.Matcher == MatcherIndex {
		return match.NewIndex(items)
	}
	return match.NewScanner(items)
}
