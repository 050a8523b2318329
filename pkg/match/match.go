/*
Package match filters candidates by case-insensitive substring and splits
names into highlight segments.

Case folding is rune-by-rune unicode.ToLower, so a folded string has the same
number of runes as its source and match positions map straight back onto the
original text. The query is always literal text; no pattern syntax is
interpreted.

Two Matcher implementations share the same semantics: Scanner walks the
dataset for every query, Index answers from a patricia trie holding every
suffix of every folded name.
*/
package match

import (
	"strings"
	"unicode"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
)

// Matcher returns the candidates whose name contains query, in dataset order.
type Matcher interface {
	Match(query string) []dataset.Candidate
}

// Segment is a run of a name that either matched the query or did not.
// Start and End are byte offsets into the original name.
type Segment struct {
	Text    string `json:"text" msgpack:"t"`
	Start   int    `json:"start" msgpack:"s"`
	End     int    `json:"end" msgpack:"e"`
	Matched bool   `json:"matched" msgpack:"m"`
}

// Fold lower-cases s rune by rune.
func Fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// IsBlank reports whether query is the "no query" value: empty or only whitespace.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Match filters candidates down to those containing query, keeping their order.
// A blank query matches nothing.
func Match(candidates []dataset.Candidate, query string) []dataset.Candidate {
	if IsBlank(query) {
		return []dataset.Candidate{}
	}
	needle := Fold(query)

	results := []dataset.Candidate{}
	for _, c := range candidates {
		if strings.Contains(Fold(c.Name), needle) {
			results = append(results, c)
		}
	}
	return results
}

// Highlight splits name into alternating unmatched and matched segments.
// Every non-overlapping occurrence of query is marked, scanning left to right.
// Empty segments are not emitted. A blank query yields the whole name as one
// unmatched segment.
func Highlight(name, query string) []Segment {
	if name == "" {
		return []Segment{}
	}
	if IsBlank(query) {
		return []Segment{{Text: name, Start: 0, End: len(name)}}
	}

	// offsets[i] is the byte offset of rune i in name; offsets[len] == len(name).
	var (
		folded  []rune
		offsets []int
	)
	for i, r := range name {
		folded = append(folded, unicode.ToLower(r))
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(name))
	needle := []rune(Fold(query))

	var segments []Segment
	emit := func(from, to int, matched bool) {
		if from == to {
			return
		}
		start, end := offsets[from], offsets[to]
		segments = append(segments, Segment{Text: name[start:end], Start: start, End: end, Matched: matched})
	}

	last := 0
	for i := 0; i+len(needle) <= len(folded); {
		if runesEqual(folded[i:i+len(needle)], needle) {
			emit(last, i, false)
			emit(i, i+len(needle), true)
			i += len(needle)
			last = i
			continue
		}
		i++
	}
	emit(last, len(folded), false)
	return segments
}

// Scanner matches by walking the candidate list on every call.
type Scanner struct {
	candidates []dataset.Candidate
}

// NewScanner returns a Matcher over candidates.
func NewScanner(candidates []dataset.Candidate) *Scanner {
	return &Scanner{candidates: candidates}
}

func (s *Scanner) Match(query string) []dataset.Candidate {
	return Match(s.candidates, query)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
