package indexing

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/dirmem/dirmem/filesystem/common"
	"github.com/ZanzyTHEbar/dirmem/dirmem/trees"

	roaring "github.com/RoaringBitmap/roaring"
)

// Candidate is a directory that a query can be matched against.
type Candidate struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	FullPath    string `json:"full_path"`
}

// CandidatesFromTree lists every directory of root in depth-first
// pre-order, root first.
func CandidatesFromTree(root trees.Node) []Candidate {
	entries := trees.FlattenDirectories(root)
	candidates := make([]Candidate, len(entries))
	for i, entry := range entries {
		candidates[i] = Candidate{
			Path:        entry.Path,
			Description: entry.Description,
			FullPath:    entry.FullPath,
		}
	}
	return candidates
}

// Tokenize lower-cases text and splits it on whitespace into a word set.
func Tokenize(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// WordIndex maps each word to the bitmap of candidate ordinals containing it.
type WordIndex struct {
	words map[string]*roaring.Bitmap
	size  int
}

// NewWordIndex indexes the words of "Path Description" for every candidate.
func NewWordIndex(candidates []Candidate) *WordIndex {
	idx := &WordIndex{
		words: make(map[string]*roaring.Bitmap),
		size:  len(candidates),
	}
	for i, c := range candidates {
		for word := range Tokenize(c.Path + " " + c.Description) {
			bm, ok := idx.words[word]
			if !ok {
				bm = roaring.New()
				idx.words[word] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return idx
}

// Scores returns, per candidate ordinal, how many distinct query words the
// candidate contains.
func (idx *WordIndex) Scores(query string) []int {
	scores := make([]int, idx.size)
	for word := range Tokenize(query) {
		bm, ok := idx.words[word]
		if !ok {
			continue
		}
		for _, ordinal := range bm.ToArray() {
			scores[ordinal]++
		}
	}
	return scores
}

// BestMatch returns the candidate sharing the most words with query.
// Ties go to the earliest candidate. ErrNotFound is returned when there are
// no candidates or none shares a word with the query.
func BestMatch(candidates []Candidate, query string) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, fmt.Errorf("%w: no directories to match against", common.ErrNotFound)
	}

	scores := NewWordIndex(candidates).Scores(query)

	best, bestScore := -1, 0
	for i, score := range scores {
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Candidate{}, fmt.Errorf("%w: no relevant directory for %q", common.ErrNotFound, query)
	}
	return candidates[best], nil
}
