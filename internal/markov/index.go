package markov

import (
	"math/rand"
	"strings"
)

// Index is the corpus index: tokenized lines grouped by source, plus an
// inverted map from every word to all the locations where it occurs. The
// index is built once per reload and is immutable to readers afterwards;
// AddSource must never run concurrently with queries against the same
// Index. Build a fresh one and swap instead.
type Index struct {
	sources [][][]string
	locs    map[string][]Location
	lines   int
	tokens  int
}

// NewIndex returns an empty corpus index.
func NewIndex() *Index {
	return &Index{locs: make(map[string][]Location)}
}

// AddSource tokenizes each line on whitespace, appends the result as a new
// source and rebuilds the inverted index over all sources. Cost is linear
// in the total token count, which is fine for something that runs once per
// reload rather than per query.
func (ix *Index) AddSource(lines []string) {
	source := make([][]string, len(lines))
	for i, line := range lines {
		source[i] = strings.Fields(line)
	}
	ix.sources = append(ix.sources, source)
	ix.rebuild()
}

func (ix *Index) rebuild() {
	locs := make(map[string][]Location)
	lines, tokens := 0, 0
	for s, source := range ix.sources {
		lines += len(source)
		for l, line := range source {
			tokens += len(line)
			for i, word := range line {
				locs[word] = append(locs[word], Location{Source: s, Line: l, Index: i, line: line})
			}
		}
	}
	ix.locs = locs
	ix.lines = lines
	ix.tokens = tokens
}

// Completions returns every observed continuation of prefix, keyed by the
// continuation token (End for line-final occurrences), each aggregated into
// a single gram whose count is the number of occurrences. Only locations of
// prefix's first word are scanned, not the whole corpus.
func (ix *Index) Completions(prefix []Token) map[Token]NGram {
	completions := make(map[Token]NGram)
	if len(prefix) == 0 || prefix[0].IsEnd() {
		return completions
	}
	for _, loc := range ix.locs[prefix[0].Value()] {
		compl, ok := loc.NextWord(prefix)
		if !ok {
			continue
		}
		fresh := FromLocation(len(prefix)+1, loc)
		if seen, ok := completions[compl]; ok {
			completions[compl] = seen.Merge(fresh)
		} else {
			completions[compl] = fresh
		}
	}
	return completions
}

// NormalizedCompletions returns the completions of prefix as relative
// frequencies summing to 1, or an empty map when there are none.
func (ix *Index) NormalizedCompletions(prefix []Token) map[Token]float64 {
	completions := ix.Completions(prefix)
	sum := 0.0
	for _, g := range completions {
		sum += g.Count
	}
	freqs := make(map[Token]float64, len(completions))
	if sum <= 0 {
		return freqs
	}
	for tok, g := range completions {
		freqs[tok] = g.Count / sum
	}
	return freqs
}

// StartGram returns the n-gram opening a line picked uniformly across all
// sources, one vote per line. Its count is replaced by the probability of
// that pick, 1/total_line_count. ok is false for an empty corpus.
func (ix *Index) StartGram(n int, rng *rand.Rand) (NGram, bool) {
	if ix.lines == 0 {
		return NGram{}, false
	}
	pick := rng.Intn(ix.lines)
	for s, source := range ix.sources {
		if pick >= len(source) {
			pick -= len(source)
			continue
		}
		loc := Location{Source: s, Line: pick, Index: 0, line: source[pick]}
		return FromLocation(n, loc).WithCount(1 / float64(ix.lines)), true
	}
	return NGram{}, false
}

// NGramsMatching returns a count-1 gram for every location where the given
// tokens occur verbatim, End matching only the position just past a line's
// tail.
func (ix *Index) NGramsMatching(words []Token) []NGram {
	if len(words) == 0 || words[0].IsEnd() {
		return nil
	}
	var matches []NGram
	for _, loc := range ix.locs[words[0].Value()] {
		if loc.Matches(words) {
			matches = append(matches, FromLocation(len(words), loc))
		}
	}
	return matches
}

// NextLineStart returns the location of the first token of the line after
// loc's line within the same source. ok is false on the source's final
// line.
func (ix *Index) NextLineStart(loc Location) (Location, bool) {
	source := ix.sources[loc.Source]
	next := loc.Line + 1
	if next >= len(source) {
		return Location{}, false
	}
	return Location{Source: loc.Source, Line: next, Index: 0, line: source[next]}, true
}

// IndexStats describes the size of the corpus behind an index.
type IndexStats struct {
	Sources    int `json:"sources"`
	Lines      int `json:"lines"`
	Tokens     int `json:"tokens"`
	Vocabulary int `json:"vocabulary"`
}

// Stats returns size statistics for the corpus behind the index.
func (ix *Index) Stats() IndexStats {
	return IndexStats{
		Sources:    len(ix.sources),
		Lines:      ix.lines,
		Tokens:     ix.tokens,
		Vocabulary: len(ix.locs),
	}
}
