package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SeedSourcesOnlyWhenEmpty(t *testing.T) {
	store := newTestStore(t)

	if err := store.SeedSources([]string{"http://a", "http://b"}); err != nil {
		t.Fatalf("SeedSources: %v", err)
	}
	if err := store.SeedSources([]string{"http://c"}); err != nil {
		t.Fatalf("SeedSources (second): %v", err)
	}

	urls, err := store.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(urls) != 2 || urls[0] != "http://a" || urls[1] != "http://b" {
		t.Errorf("expected seeded sources to survive a reseed, got %v", urls)
	}
}

func TestStore_AddAndRemoveSource(t *testing.T) {
	store := newTestStore(t)

	for _, url := range []string{"http://a", "http://b", "http://c"} {
		if err := store.AddSource(url); err != nil {
			t.Fatalf("AddSource(%s): %v", url, err)
		}
	}

	if err := store.RemoveSource(1); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}

	urls, err := store.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(urls) != 2 || urls[0] != "http://a" || urls[1] != "http://c" {
		t.Errorf("expected [http://a http://c], got %v", urls)
	}
}

func TestStore_RemoveSourceOutOfRange(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddSource("http://a"); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if err := store.RemoveSource(5); err == nil {
		t.Error("expected error removing out-of-range index")
	}
	if err := store.RemoveSource(-1); err == nil {
		t.Error("expected error removing negative index")
	}
}

func TestStore_LastAnswerRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if _, recorded, err := store.LastAnswer(); err != nil || recorded {
		t.Fatalf("expected no recorded answer, got recorded=%v err=%v", recorded, err)
	}

	when := time.Unix(1724900000, 0)
	if err := store.SetLastAnswer(when); err != nil {
		t.Fatalf("SetLastAnswer: %v", err)
	}

	got, recorded, err := store.LastAnswer()
	if err != nil {
		t.Fatalf("LastAnswer: %v", err)
	}
	if !recorded {
		t.Fatal("expected a recorded answer")
	}
	if !got.Equal(when) {
		t.Errorf("expected %v, got %v", when, got)
	}

	later := when.Add(time.Hour)
	if err := store.SetLastAnswer(later); err != nil {
		t.Fatalf("SetLastAnswer (update): %v", err)
	}
	got, _, err = store.LastAnswer()
	if err != nil {
		t.Fatalf("LastAnswer: %v", err)
	}
	if !got.Equal(later) {
		t.Errorf("expected updated timestamp %v, got %v", later, got)
	}
}
