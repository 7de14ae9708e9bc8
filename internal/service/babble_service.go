package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"babble-go/internal/config"
	"babble-go/internal/markov"
	"babble-go/pkg/metrics"

	"go.uber.org/zap"
)

const (
	// minimum question-suffix length for explicit /ask requests
	askMinPrefix = 2
	// autonomous replies demand a longer match before butting in
	autoAnswerMinPrefix = 3

	notAQuestionReply = "That's not a question, stupid."
)

// BabbleService wires the markov engine to its collaborators: source
// fetching, state persistence and the gating applied to autonomous
// answers. Reload builds a fresh index and sampler and swaps them in under
// the lock, so queries only ever see a fully built index and a live one is
// never mutated. Generation calls are serialized by the same lock, which
// also keeps the shared random source single-threaded.
type BabbleService struct {
	cfg     *config.Config
	store   *Store
	fetcher SourceFetcher
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu         sync.Mutex
	rng        *rand.Rand
	index      *markov.Index
	sampler    *markov.Sampler
	lastNGrams []markov.NGram
}

// NewBabbleService creates the service. Call Reload before querying.
func NewBabbleService(cfg *config.Config, store *Store, fetcher SourceFetcher, m *metrics.Metrics, rng *rand.Rand, logger *zap.Logger) *BabbleService {
	return &BabbleService{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		metrics: m,
		rng:     rng,
		logger:  logger,
	}
}

// Reload fetches every configured source and rebuilds the corpus index
// from scratch. Per-source fetch failures come back as informational
// messages; the rest of the corpus still loads.
func (b *BabbleService) Reload(ctx context.Context) ([]string, error) {
	urls, err := b.store.Sources()
	if err != nil {
		b.metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	index := markov.NewIndex()
	var failures []string
	for _, url := range urls {
		lines, err := b.fetcher.FetchLines(ctx, url)
		if err != nil {
			b.logger.Warn("Failed to retrieve babble source",
				zap.String("url", url),
				zap.Error(err),
			)
			failures = append(failures, "Couldn't retrieve babble source: "+url)
			continue
		}
		index.AddSource(lines)
	}

	b.mu.Lock()
	sampler, err := markov.NewSampler(b.cfg.Babble.Order, index, b.rng, b.logger)
	if err != nil {
		b.mu.Unlock()
		b.metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return failures, err
	}
	b.index = index
	b.sampler = sampler
	b.lastNGrams = nil
	b.mu.Unlock()

	stats := index.Stats()
	b.logger.Info("Corpus reloaded",
		zap.Int("sources", stats.Sources),
		zap.Int("lines", stats.Lines),
		zap.Int("tokens", stats.Tokens),
		zap.Int("vocabulary", stats.Vocabulary),
		zap.Int("failed_sources", len(failures)),
	)
	b.metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	b.metrics.CorpusLines.Set(float64(stats.Lines))
	b.metrics.CorpusTokens.Set(float64(stats.Tokens))
	return failures, nil
}

// Babble generates random text, optionally completing the given start. The
// target length is rolled anew on every call.
func (b *BabbleService) Babble(start string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sampler == nil {
		return "", fmt.Errorf("corpus not loaded yet")
	}

	maxLen := b.rng.Intn(b.cfg.Babble.MaxLen) + 1
	text, ngrams, err := b.sampler.SampleBest(start, maxLen, b.cfg.Babble.Times)
	if err != nil {
		b.metrics.GenerationsTotal.WithLabelValues("babble", "error").Inc()
		return "", err
	}
	b.lastNGrams = ngrams

	b.metrics.GenerationsTotal.WithLabelValues("babble", "ok").Inc()
	b.metrics.GenerationLength.Observe(float64(len(strings.Fields(text))))
	return text, nil
}

// Ask answers a question from the corpus. Non-questions are rebuffed; when
// no corpus phrase matches, it babbles something noncommittal instead.
func (b *BabbleService) Ask(question string) (string, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" || !strings.HasSuffix(trimmed, "?") {
		return notAQuestionReply, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sampler == nil {
		return "", fmt.Errorf("corpus not loaded yet")
	}

	maxLen := b.rng.Intn(b.cfg.Babble.MaxLen) + 1
	text, ngrams, ok, err := b.sampler.SampleAnswer(trimmed, maxLen, b.cfg.Babble.Times, askMinPrefix)
	if err != nil {
		b.metrics.GenerationsTotal.WithLabelValues("ask", "error").Inc()
		return "", err
	}
	if ok {
		b.lastNGrams = ngrams
		b.metrics.GenerationsTotal.WithLabelValues("ask", "ok").Inc()
		b.metrics.GenerationLength.Observe(float64(len(strings.Fields(text))))
		return text, nil
	}

	text, ngrams, err = b.sampler.SampleBest("", b.rng.Intn(b.cfg.Babble.MaxLen)+1, b.cfg.Babble.Times)
	if err != nil {
		b.metrics.GenerationsTotal.WithLabelValues("ask", "error").Inc()
		return "", err
	}
	b.lastNGrams = ngrams
	b.metrics.GenerationsTotal.WithLabelValues("ask", "fallback").Inc()
	return "Uhm. " + text, nil
}

// AutoAnswer decides whether to answer an ambient message on its own:
// only questions, never commands, at most one answer per cooldown window,
// and even then only with the configured probability. ok is false when a
// gate held the reply back.
func (b *BabbleService) AutoAnswer(message string) (string, bool, error) {
	body := strings.TrimSpace(message)
	if body == "" || strings.HasPrefix(body, "!") || !strings.HasSuffix(body, "?") {
		return "", false, nil
	}

	last, recorded, err := b.store.LastAnswer()
	if err != nil {
		return "", false, err
	}
	cooldown := time.Duration(b.cfg.Babble.AnswerCooldownHours * float64(time.Hour))
	if recorded && time.Since(last) < cooldown {
		b.metrics.AnswersGatedTotal.WithLabelValues("cooldown").Inc()
		return "", false, nil
	}

	b.mu.Lock()
	if b.sampler == nil {
		b.mu.Unlock()
		return "", false, nil
	}
	if b.rng.Float64() > b.cfg.Babble.AnswerProbability {
		b.mu.Unlock()
		b.metrics.AnswersGatedTotal.WithLabelValues("probability").Inc()
		return "", false, nil
	}

	maxLen := b.rng.Intn(b.cfg.Babble.MaxLen) + 1
	text, ngrams, ok, err := b.sampler.SampleAnswer(body, maxLen, b.cfg.Babble.Times, autoAnswerMinPrefix)
	if err != nil || !ok {
		b.mu.Unlock()
		if err == nil {
			b.metrics.AnswersGatedTotal.WithLabelValues("no_match").Inc()
		}
		return "", false, err
	}
	b.lastNGrams = ngrams
	b.mu.Unlock()

	if err := b.store.SetLastAnswer(time.Now()); err != nil {
		b.logger.Warn("Failed to persist answer timestamp", zap.Error(err))
	}
	b.metrics.GenerationsTotal.WithLabelValues("auto_answer", "ok").Inc()
	return text, true, nil
}

// Context renders where the n-grams of the last generation came from.
func (b *BabbleService) Context() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return markov.RenderContext(b.lastNGrams, b.cfg.Babble.ContextWindow)
}

// Sources lists the configured source URLs.
func (b *BabbleService) Sources() ([]string, error) {
	return b.store.Sources()
}

// AddSource appends a source URL and reloads the corpus.
func (b *BabbleService) AddSource(ctx context.Context, url string) ([]string, error) {
	if err := b.store.AddSource(url); err != nil {
		return nil, err
	}
	return b.Reload(ctx)
}

// RemoveSource deletes the index-th source and reloads the corpus.
func (b *BabbleService) RemoveSource(ctx context.Context, index int) ([]string, error) {
	if err := b.store.RemoveSource(index); err != nil {
		return nil, err
	}
	return b.Reload(ctx)
}

// Stats returns size statistics of the currently loaded corpus.
func (b *BabbleService) Stats() markov.IndexStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index == nil {
		return markov.IndexStats{}
	}
	return b.index.Stats()
}
