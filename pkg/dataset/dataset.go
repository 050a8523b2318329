// Package dataset holds the fixed, ordered list of candidates an autofill input searches.
package dataset

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateID is returned when two candidates share an ID.
	ErrDuplicateID = errors.New("dataset: duplicate candidate id")
	// ErrNotFound is returned by Lookup callers for an unknown ID.
	ErrNotFound = errors.New("dataset: candidate not found")
)

// Candidate is one selectable item.
type Candidate struct {
	ID   int    `json:"id" toml:"id" msgpack:"id"`
	Name string `json:"name" toml:"name" msgpack:"name"`
}

// Dataset is an immutable, order-preserving candidate list indexed by ID.
type Dataset struct {
	items []Candidate
	byID  map[int]int
}

// New copies items into a Dataset. IDs must be unique.
func New(items []Candidate) (*Dataset, error) {
	d := &Dataset{
		items: slices.Clone(items),
		byID:  make(map[int]int, len(items)),
	}
	for i, c := range d.items {
		if prev, ok := d.byID[c.ID]; ok {
			return nil, fmt.Errorf("%w: %d (%q and %q)", ErrDuplicateID, c.ID, d.items[prev].Name, c.Name)
		}
		d.byID[c.ID] = i
	}
	return d, nil
}

// Items returns the candidates in dataset order. The slice must not be modified.
func (d *Dataset) Items() []Candidate {
	return d.items
}

func (d *Dataset) Len() int {
	return len(d.items)
}

// Lookup finds a candidate by ID.
func (d *Dataset) Lookup(id int) (Candidate, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return d.items[i], true
}

// Position returns the dataset index of id, or -1.
func (d *Dataset) Position(id int) int {
	if i, ok := d.byID[id]; ok {
		return i
	}
	return -1
}
