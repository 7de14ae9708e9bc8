package markov

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// FallbackPhrase is what SampleBest falls back to when every trial comes
// back empty.
const FallbackPhrase = "LOOK BEHIND YOU A THREE-HEADED MONKEY"

// Sampler draws pseudo-random, locally grammatical text from a corpus
// index: per-token sampling with order fallback, anti-repetition weighting,
// best-of-several selection and question answering. A Sampler keeps no
// state between calls; all randomness comes from the injected source, which
// makes runs reproducible under a seeded generator.
type Sampler struct {
	n      int
	index  *Index
	rng    *rand.Rand
	logger *zap.Logger
}

// NewSampler wraps an index snapshot with a sampler of the given primary
// order. Orders below 2 are a contract violation and rejected here, at the
// boundary, rather than deep inside the sampling loop.
func NewSampler(n int, index *Index, rng *rand.Rand, logger *zap.Logger) (*Sampler, error) {
	if n < 2 {
		return nil, fmt.Errorf("sampler order must be at least 2, got %d", n)
	}
	return &Sampler{n: n, index: index, rng: rng, logger: logger}, nil
}

// Order returns the sampler's primary n-gram order.
func (s *Sampler) Order() int {
	return s.n
}

// Sample draws one random completion of prefix. With tryEnd set, a line end
// wins outright whenever it is available, so a sequence that has reached
// its target length cannot keep growing past an obvious stopping point.
// disfavor maps tokens to penalty fractions in [0,1]; a penalized token's
// weight is scaled by (1 - penalty). The returned gram's count carries the
// probability it was drawn with. ok is false when prefix has no completion.
func (s *Sampler) Sample(prefix []Token, tryEnd bool, disfavor map[Token]float64) (NGram, bool) {
	completions := s.index.Completions(prefix)
	if tryEnd {
		if g, ok := completions[End]; ok {
			return g.WithCount(1), true
		}
	}

	tokens := make([]Token, 0, len(completions))
	for tok := range completions {
		tokens = append(tokens, tok)
	}
	// map iteration order is random; fix it so the draw depends only on
	// the injected randomness
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].less(tokens[j]) })

	tok, p, ok := WeightedRandomItem(s.rng, tokens, func(t Token) float64 {
		return completions[t].Count * (1 - disfavor[t])
	})
	if !ok {
		return NGram{}, false
	}
	return completions[tok].WithCount(p), true
}

// SampleMany extends start one token at a time, up to roughly maxLen
// tokens. An empty start is seeded from a random line-opening gram so
// unprompted generation always begins at a real line boundary.
//
// Each step first computes disfavor penalties from the context one order
// above the primary, approximating what the most specific continuation
// would have been, then tries prefix lengths n-1 down to 1 until one yields
// a completion. The walk stops at a line end, at a dead end, or after
// 5*maxLen steps; the cap bounds the work even on corpora where line ends
// are rare or absent. Returns the generated tokens and the ordered grams
// consumed along the way.
func (s *Sampler) SampleMany(start string, maxLen int) ([]Token, []NGram, error) {
	if maxLen <= 0 {
		return nil, nil, fmt.Errorf("maxLen must be positive, got %d", maxLen)
	}

	n := s.n
	if n > maxLen-1 {
		n = maxLen - 1
	}
	if n < 2 {
		n = 2
	}

	startTokens := Words(strings.Fields(start))
	var ngrams []NGram
	var compls []Token
	if len(startTokens) == 0 {
		g, ok := s.index.StartGram(n, s.rng)
		if !ok {
			// empty corpus: nothing to seed from
			return nil, nil, nil
		}
		ngrams = append(ngrams, g)
		compls = append(compls, g.Words...)
	}

	for i := 0; i < 5*maxLen; i++ {
		text := make([]Token, 0, len(startTokens)+len(compls))
		text = append(text, startTokens...)
		text = append(text, compls...)

		disfavor := map[Token]float64{}
		if len(text) >= n {
			disfavor = s.index.NormalizedCompletions(Suffix(n, text))
		}

		var gram NGram
		sampled := false
		for k := n - 1; k >= 1; k-- {
			if g, ok := s.Sample(Suffix(k, text), i >= maxLen, disfavor); ok {
				gram, sampled = g, true
				break
			}
		}
		if !sampled {
			break
		}
		ngrams = append(ngrams, gram)
		if gram.Completion().IsEnd() {
			break
		}
		compls = append(compls, gram.Completion())
	}

	s.logger.Debug("Sampled token sequence",
		zap.Int("max_len", maxLen),
		zap.Int("length", len(compls)),
		zap.Int("ngrams", len(ngrams)),
	)
	return compls, ngrams, nil
}

// SampleBest runs SampleMany the given number of times and keeps the trial
// whose length lands closest to maxLen, earlier trials winning ties. Trials
// that consumed no grams at all are discarded; when every trial is empty a
// fixed fallback phrase is returned with no provenance. A non-empty start
// is prepended to the returned text.
func (s *Sampler) SampleBest(start string, maxLen, times int) (string, []NGram, error) {
	if times < 1 {
		times = 1
	}

	var bestTokens []Token
	var bestNGrams []NGram
	bestDist := -1
	for i := 0; i < times; i++ {
		compls, ngrams, err := s.SampleMany(start, maxLen)
		if err != nil {
			return "", nil, err
		}
		if len(ngrams) == 0 {
			continue
		}
		dist := len(compls) - maxLen
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestTokens, bestNGrams, bestDist = compls, ngrams, dist
		}
	}

	text := FallbackPhrase
	if bestDist >= 0 {
		text = Text(bestTokens)
	}
	if start != "" {
		text = strings.TrimSpace(start + " " + text)
	}
	if bestDist < 0 {
		return text, nil, nil
	}
	return text, bestNGrams, nil
}

// SampleAnswer answers a question by locating a phrase of it in the corpus
// and continuing from the start of the following line. The question's
// trailing tokens (with End appended, so line-final phrases match) are
// looked up at lengths from one above the primary order down to minPrefix;
// the first length with matches wins and one match is picked uniformly. The
// anchor skips blank lines, so the continuation always starts on a real
// word. ok is false when no length matches, or when nothing but blank lines
// follows the picked match within its source. The returned provenance
// prepends the matched gram and the anchor gram to the continuation's own.
func (s *Sampler) SampleAnswer(question string, maxLen, times, minPrefix int) (string, []NGram, bool, error) {
	if maxLen <= 0 {
		return "", nil, false, fmt.Errorf("maxLen must be positive, got %d", maxLen)
	}
	if minPrefix < 1 {
		minPrefix = 1
	}

	words := append(Words(strings.Fields(question)), End)
	var matches []NGram
	for l := s.n + 1; l >= minPrefix; l-- {
		if found := s.index.NGramsMatching(Suffix(l, words)); len(found) > 0 {
			matches = found
			break
		}
	}
	if len(matches) == 0 {
		return "", nil, false, nil
	}

	matched := matches[s.rng.Intn(len(matches))].WithCount(1 / float64(len(matches)))
	anchorLoc, ok := s.index.NextLineStart(matched.Loc)
	// a blank line has no word to anchor on and would turn the answer into
	// an unrelated reseed
	for ok && len(anchorLoc.line) == 0 {
		anchorLoc, ok = s.index.NextLineStart(anchorLoc)
	}
	if !ok {
		return "", nil, false, nil
	}
	anchor := FromLocation(s.n, anchorLoc)

	text, ngrams, err := s.SampleBest(Text(anchor.Words), maxLen, times)
	if err != nil {
		return "", nil, false, err
	}

	provenance := make([]NGram, 0, len(ngrams)+2)
	provenance = append(provenance, matched, anchor)
	provenance = append(provenance, ngrams...)
	return text, provenance, true, nil
}
