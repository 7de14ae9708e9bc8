package markov

// NGram is a run of consecutive tokens observed in the corpus: the tokens
// themselves, how often the run was seen (or, once a sampler has drawn it,
// the probability it was drawn with) and a representative location.
type NGram struct {
	Words []Token
	Count float64
	Loc   Location
}

// FromLocation materializes the n-gram of up to n tokens starting at loc.
// A single End stands in for the position just past the end of the line, so
// a gram reaching the line's tail ends in End and grams never extend onto
// the next line.
func FromLocation(n int, loc Location) NGram {
	words := make([]Token, 0, n)
	for i := 0; i < n; i++ {
		idx := loc.Index + i
		if idx < len(loc.line) {
			words = append(words, Word(loc.line[idx]))
			continue
		}
		words = append(words, End)
		break
	}
	return NGram{Words: words, Count: 1, Loc: loc}
}

// Merge combines two observations of the same word run. Counts add up and
// the representative location follows the larger count, ties going to
// other. Together with the zero gram this is nearly a monoid, which is all
// the completion aggregation needs.
func (g NGram) Merge(other NGram) NGram {
	if g.Count > other.Count {
		return NGram{Words: g.Words, Count: g.Count + other.Count, Loc: g.Loc}
	}
	return NGram{Words: other.Words, Count: g.Count + other.Count, Loc: other.Loc}
}

// Completion returns the final token, the one the gram's prefix was
// completed with.
func (g NGram) Completion() Token {
	return g.Words[len(g.Words)-1]
}

// WithCount returns a copy of the gram with its count replaced. Used when a
// raw tally is reinterpreted as a probability.
func (g NGram) WithCount(count float64) NGram {
	g.Count = count
	return g
}
