package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"babble-go/internal/config"
	"babble-go/pkg/metrics"

	"go.uber.org/zap"
)

// Shared across tests; prometheus collectors can only register once per
// binary.
var testMetrics = metrics.New()

type stubFetcher struct {
	lines map[string][]string
}

func (f *stubFetcher) FetchLines(ctx context.Context, url string) ([]string, error) {
	lines, ok := f.lines[url]
	if !ok {
		return nil, fmt.Errorf("unknown source %s", url)
	}
	return lines, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Babble: config.BabbleConfig{
			Order:               2,
			ContextWindow:       5,
			MaxLen:              10,
			Times:               3,
			AnswerProbability:   1.0,
			AnswerCooldownHours: 24,
		},
	}
}

func newTestService(t *testing.T, fetcher SourceFetcher, urls ...string) *BabbleService {
	t.Helper()
	store := newTestStore(t)
	for _, url := range urls {
		if err := store.AddSource(url); err != nil {
			t.Fatalf("AddSource(%s): %v", url, err)
		}
	}
	rng := rand.New(rand.NewSource(1))
	return NewBabbleService(testConfig(), store, fetcher, testMetrics, rng, zap.NewNop())
}

func TestReload_ReportsFailedSources(t *testing.T) {
	fetcher := &stubFetcher{lines: map[string][]string{
		"http://good": {"the quick brown fox jumps over the lazy dog"},
	}}
	svc := newTestService(t, fetcher, "http://good", "http://broken")

	messages, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected one failure message, got %v", messages)
	}
	if messages[0] != "Couldn't retrieve babble source: http://broken" {
		t.Errorf("unexpected failure message %q", messages[0])
	}

	if stats := svc.Stats(); stats.Lines != 1 {
		t.Errorf("expected the good source to load anyway, got %+v", stats)
	}
}

func TestBabble_GeneratesFromCorpus(t *testing.T) {
	fetcher := &stubFetcher{lines: map[string][]string{
		"http://corpus": {
			"the quick brown fox jumps over the lazy dog",
			"the lazy dog sleeps all day",
		},
	}}
	svc := newTestService(t, fetcher, "http://corpus")
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	text, err := svc.Babble("")
	if err != nil {
		t.Fatalf("Babble: %v", err)
	}
	if text == "" {
		t.Error("expected non-empty babble")
	}

	if ctx := svc.Context(); !strings.Contains(ctx, "average n=") {
		t.Errorf("expected provenance to render after babbling, got %q", ctx)
	}
}

func TestBabble_BeforeReload(t *testing.T) {
	svc := newTestService(t, &stubFetcher{})
	if _, err := svc.Babble(""); err == nil {
		t.Error("expected error when the corpus is not loaded")
	}
}

func TestAsk_RebuffsNonQuestions(t *testing.T) {
	svc := newTestService(t, &stubFetcher{})

	for _, input := range []string{"", "hello there", "  \t "} {
		text, err := svc.Ask(input)
		if err != nil {
			t.Fatalf("Ask(%q): %v", input, err)
		}
		if text != notAQuestionReply {
			t.Errorf("Ask(%q) = %q, expected the non-question reply", input, text)
		}
	}
}

func TestAutoAnswer_Gates(t *testing.T) {
	fetcher := &stubFetcher{lines: map[string][]string{
		"http://corpus": {
			"what do you say to that?",
			"i say hello to everyone",
			"the quick brown fox jumps",
		},
	}}
	svc := newTestService(t, fetcher, "http://corpus")
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	for _, input := range []string{"", "not a question", "!reload now?"} {
		if _, ok, err := svc.AutoAnswer(input); err != nil || ok {
			t.Errorf("AutoAnswer(%q) = ok=%v err=%v, expected gated", input, ok, err)
		}
	}

	text, ok, err := svc.AutoAnswer("what do you say to that?")
	if err != nil {
		t.Fatalf("AutoAnswer: %v", err)
	}
	if !ok || text == "" {
		t.Fatalf("expected an answer, got ok=%v text=%q", ok, text)
	}

	// The answer just given started the cooldown window.
	if _, ok, err := svc.AutoAnswer("what do you say to that?"); err != nil || ok {
		t.Errorf("expected cooldown to gate the second answer, got ok=%v err=%v", ok, err)
	}
}

func TestAddAndRemoveSourceReload(t *testing.T) {
	fetcher := &stubFetcher{lines: map[string][]string{
		"http://one": {"alpha beta gamma delta"},
		"http://two": {"epsilon zeta eta theta"},
	}}
	svc := newTestService(t, fetcher, "http://one")
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if _, err := svc.AddSource(context.Background(), "http://two"); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if stats := svc.Stats(); stats.Sources != 2 {
		t.Errorf("expected 2 sources after add, got %+v", stats)
	}

	if _, err := svc.RemoveSource(context.Background(), 0); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}
	sources, err := svc.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 1 || sources[0] != "http://two" {
		t.Errorf("expected [http://two], got %v", sources)
	}
}
