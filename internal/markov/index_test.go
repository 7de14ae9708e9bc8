package markov

import (
	"math"
	"math/rand"
	"testing"
)

func foxIndex() *Index {
	ix := NewIndex()
	ix.AddSource([]string{"fox fox fox. fox fox"})
	return ix
}

func TestCompletions_FoxCorpus(t *testing.T) {
	ix := foxIndex()

	cases := []struct {
		prefix []Token
		want   map[Token]float64
	}{
		{Words([]string{"fox"}), map[Token]float64{Word("fox"): 2, Word("fox."): 1, End: 1}},
		{Words([]string{"fox", "fox"}), map[Token]float64{Word("fox."): 1, End: 1}},
		{Words([]string{"fox.", "fox"}), map[Token]float64{Word("fox"): 1}},
		{Words([]string{"fox.", "fox", "fox"}), map[Token]float64{End: 1}},
	}

	for _, tc := range cases {
		got := ix.Completions(tc.prefix)
		if len(got) != len(tc.want) {
			t.Fatalf("Completions(%v): got %d completions, want %d", tc.prefix, len(got), len(tc.want))
		}
		for tok, count := range tc.want {
			g, ok := got[tok]
			if !ok {
				t.Fatalf("Completions(%v): missing completion %v", tc.prefix, tok)
			}
			if g.Count != count {
				t.Errorf("Completions(%v)[%v]: count %v, want %v", tc.prefix, tok, g.Count, count)
			}
			if g.Completion() != tok {
				t.Errorf("Completions(%v)[%v]: gram ends in %v", tc.prefix, tok, g.Completion())
			}
		}
	}
}

func TestCompletions_CountsMatchOccurrences(t *testing.T) {
	ix := foxIndex()

	total := 0.0
	for _, g := range ix.Completions([]Token{Word("fox")}) {
		total += g.Count
	}
	// "fox" occurs four times, each followed by some token (End included)
	if total != 4 {
		t.Fatalf("Expected completion counts to sum to 4, got %v", total)
	}
}

func TestNormalizedCompletions(t *testing.T) {
	ix := foxIndex()

	freqs := ix.NormalizedCompletions([]Token{Word("fox")})
	sum := 0.0
	for _, f := range freqs {
		sum += f
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("Expected frequencies to sum to 1, got %v", sum)
	}
	if freqs[Word("fox")] != 0.5 {
		t.Errorf("Expected freq 0.5 for 'fox', got %v", freqs[Word("fox")])
	}

	if got := ix.NormalizedCompletions([]Token{Word("wolf")}); len(got) != 0 {
		t.Fatalf("Expected empty map for unknown prefix, got %v", got)
	}
}

func TestStartGram_SingleLine(t *testing.T) {
	ix := foxIndex()
	rng := rand.New(rand.NewSource(1))

	g, ok := ix.StartGram(3, rng)
	if !ok {
		t.Fatal("Expected a start gram from a non-empty corpus")
	}
	want := Words([]string{"fox", "fox", "fox."})
	if len(g.Words) != len(want) {
		t.Fatalf("Start gram has %d words, want %d", len(g.Words), len(want))
	}
	for i, tok := range want {
		if g.Words[i] != tok {
			t.Errorf("Start gram word %d: got %v, want %v", i, g.Words[i], tok)
		}
	}
	if g.Count != 1.0 {
		t.Errorf("Expected count 1/1 for a single-line corpus, got %v", g.Count)
	}
}

func TestStartGram_EmptyCorpus(t *testing.T) {
	ix := NewIndex()
	rng := rand.New(rand.NewSource(1))

	if _, ok := ix.StartGram(3, rng); ok {
		t.Fatal("Expected no start gram from an empty corpus")
	}
}

func TestStartGram_UniformPerLine(t *testing.T) {
	ix := NewIndex()
	ix.AddSource([]string{"aaa aaa aaa aaa aaa aaa aaa aaa", "bbb"})
	rng := rand.New(rand.NewSource(42))

	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		g, ok := ix.StartGram(2, rng)
		if !ok {
			t.Fatal("Expected a start gram")
		}
		counts[g.Words[0].Value()]++
		if g.Count != 0.5 {
			t.Fatalf("Expected pick probability 1/2, got %v", g.Count)
		}
	}
	// one vote per line, not per token: the long line must not dominate
	ratio := float64(counts["aaa"]) / 2000
	if ratio < 0.45 || ratio > 0.55 {
		t.Fatalf("Expected roughly uniform line picks, got ratio %v", ratio)
	}
}

func TestNGramsMatching(t *testing.T) {
	ix := NewIndex()
	ix.AddSource([]string{"what do you say?", "i say hello"})

	matches := ix.NGramsMatching(append(Words([]string{"do", "you", "say?"}), End))
	if len(matches) != 1 {
		t.Fatalf("Expected exactly one match, got %d", len(matches))
	}
	if matches[0].Loc.Line != 0 || matches[0].Loc.Index != 1 {
		t.Errorf("Unexpected match location: %+v", matches[0].Loc)
	}

	if got := ix.NGramsMatching(Words([]string{"say?", "i"})); len(got) != 0 {
		t.Fatalf("Grams must not cross line boundaries, got %v", got)
	}
	if got := ix.NGramsMatching(Words([]string{"zebra"})); len(got) != 0 {
		t.Fatalf("Expected no matches for unknown word, got %v", got)
	}
}

func TestNextLineStart(t *testing.T) {
	ix := NewIndex()
	ix.AddSource([]string{"first line", "second line"})

	matches := ix.NGramsMatching(Words([]string{"first"}))
	if len(matches) != 1 {
		t.Fatalf("Expected one match, got %d", len(matches))
	}
	loc, ok := ix.NextLineStart(matches[0].Loc)
	if !ok {
		t.Fatal("Expected a following line")
	}
	if loc.Word() != "second" {
		t.Errorf("Expected next line to start with 'second', got %q", loc.Word())
	}

	last := ix.NGramsMatching(Words([]string{"second"}))
	if _, ok := ix.NextLineStart(last[0].Loc); ok {
		t.Fatal("Expected no line after the source's final line")
	}
}

func TestIndexStats(t *testing.T) {
	ix := NewIndex()
	ix.AddSource([]string{"a b c", "a b"})
	ix.AddSource([]string{"d"})

	stats := ix.Stats()
	if stats.Sources != 2 || stats.Lines != 3 || stats.Tokens != 6 || stats.Vocabulary != 4 {
		t.Fatalf("Unexpected stats: %+v", stats)
	}
}
