package match

import (
	"unicode/utf8"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/dataset"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index is a suffix index over folded candidate names. A query is a substring
// of a name iff it is a prefix of one of the name's suffixes, so a subtree
// visit under the folded query finds every matching candidate.
type Index struct {
	candidates []dataset.Candidate
	trie       *patricia.Trie
	suffixes   int
}

// NewIndex builds the suffix trie for candidates.
func NewIndex(candidates []dataset.Candidate) *Index {
	idx := &Index{
		candidates: candidates,
		trie:       patricia.NewTrie(),
	}

	for pos, c := range candidates {
		name := Fold(c.Name)
		for i := 0; i < len(name); {
			idx.insert(patricia.Prefix(name[i:]), pos)
			_, size := utf8.DecodeRuneInString(name[i:])
			i += size
		}
	}

	log.Debugf("Indexed %d candidates (%d suffixes)", len(candidates), idx.suffixes)
	return idx
}

// insert records that the candidate at pos owns suffix key. Several names can
// share a suffix, so each trie item is the list of owning positions.
func (idx *Index) insert(key patricia.Prefix, pos int) {
	idx.suffixes++
	if owners, ok := idx.trie.Get(key).([]int); ok {
		if owners[len(owners)-1] != pos {
			idx.trie.Set(key, append(owners, pos))
		}
		return
	}
	idx.trie.Set(key, []int{pos})
}

func (idx *Index) Match(query string) []dataset.Candidate {
	if IsBlank(query) {
		return []dataset.Candidate{}
	}

	hit := make([]bool, len(idx.candidates))
	err := idx.trie.VisitSubtree(patricia.Prefix(Fold(query)), func(_ patricia.Prefix, item patricia.Item) error {
		owners, ok := item.([]int)
		if !ok {
			return nil
		}
		for _, pos := range owners {
			hit[pos] = true
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting suffix trie: %v", err)
		return []dataset.Candidate{}
	}

	results := []dataset.Candidate{}
	for pos, ok := range hit {
		if ok {
			results = append(results, idx.candidates[pos])
		}
	}
	return results
}

// Stats reports the index size.
func (idx *Index) Stats() map[string]int {
	return map[string]int{
		"candidates": len(idx.candidates),
		"suffixes":   idx.suffixes,
	}
}
