package frontier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/domaincrawl/internal/model"
)

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	records []model.URLRecord
	failAdd bool
}

func (s *memStore) URLs(context.Context) ([]model.URLRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.URLRecord(nil), s.records...), nil
}

func (s *memStore) AddURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAdd {
		return errors.New("disk full")
	}
	for _, r := range s.records {
		if r.URL == url {
			return nil
		}
	}
	s.records = append(s.records, model.URLRecord{URL: url, AddedAt: time.Now()})
	return nil
}

func (s *memStore) CompleteURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].URL == url {
			s.records[i].Completed = true
		}
	}
	return nil
}

func (s *memStore) ResetURLs(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("seeds queued in order", func(t *testing.T) {
		t.Parallel()

		f, err := Open(context.Background(), []string{"http://a", "http://b", "http://a"}, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Pending() != 2 {
			t.Errorf("Pending = %d, want 2", f.Pending())
		}
		u, ok, err := f.Next(context.Background())
		if err != nil || !ok || u != "http://a" {
			t.Errorf("Next = (%q, %v, %v), want http://a", u, ok, err)
		}
	})

	t.Run("no seeds and empty store", func(t *testing.T) {
		t.Parallel()

		_, err := Open(context.Background(), nil, WithStore(&memStore{}), WithLogger(quietLogger()))
		if !errors.Is(err, ErrNoSeeds) {
			t.Errorf("error = %v, want ErrNoSeeds", err)
		}
	})

	t.Run("resumes unfinished urls and ignores seeds", func(t *testing.T) {
		t.Parallel()

		store := &memStore{records: []model.URLRecord{
			{URL: "http://done", Completed: true},
			{URL: "http://todo"},
		}}
		f, err := Open(context.Background(), []string{"http://seed"}, WithStore(store), WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Pending() != 1 || f.Known() != 2 {
			t.Errorf("Pending = %d Known = %d, want 1 and 2", f.Pending(), f.Known())
		}
		if err := f.Add(context.Background(), "http://done"); err != nil {
			t.Fatal(err)
		}
		if f.Pending() != 1 {
			t.Error("completed url should not be re-queued")
		}
	})

	t.Run("restart discards stored state", func(t *testing.T) {
		t.Parallel()

		store := &memStore{records: []model.URLRecord{{URL: "http://old"}}}
		f, err := Open(context.Background(), []string{"http://seed"},
			WithStore(store), WithRestart(true), WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		u, _, _ := f.Next(context.Background())
		if u != "http://seed" {
			t.Errorf("Next = %q, want http://seed", u)
		}
		if f.Known() != 1 {
			t.Errorf("Known = %d, want 1", f.Known())
		}
	})
}

func TestFrontierLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("exhausted only when nothing is in flight", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := &memStore{}
		f, err := Open(ctx, []string{"http://a"}, WithStore(store), WithLogger(quietLogger()))
		if err != nil {
			t.Fatal(err)
		}

		u, ok, _ := f.Next(ctx)
		if !ok || u != "http://a" {
			t.Fatalf("Next = (%q, %v)", u, ok)
		}

		result := make(chan string, 1)
		go func() {
			next, ok, _ := f.Next(ctx)
			if !ok {
				next = "<exhausted>"
			}
			result <- next
		}()

		select {
		case got := <-result:
			t.Fatalf("Next returned %q while a URL was in flight", got)
		case <-time.After(50 * time.Millisecond):
		}

		if err := f.Add(ctx, "http://b"); err != nil {
			t.Fatal(err)
		}
		if got := <-result; got != "http://b" {
			t.Errorf("blocked Next = %q, want http://b", got)
		}

		if err := f.MarkComplete(ctx, "http://a"); err != nil {
			t.Fatal(err)
		}
		if err := f.MarkComplete(ctx, "http://b"); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := f.Next(ctx); ok {
			t.Error("frontier should be exhausted")
		}

		records, _ := store.URLs(ctx)
		if len(records) != 2 || !records[0].Completed || !records[1].Completed {
			t.Errorf("stored records = %+v, want two completed", records)
		}
	})

	t.Run("completion wakes waiters", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		f, err := Open(ctx, []string{"http://a"}, WithLogger(quietLogger()))
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := f.Next(ctx); err != nil {
			t.Fatal(err)
		}

		done := make(chan bool, 1)
		go func() {
			_, ok, _ := f.Next(ctx)
			done <- ok
		}()

		time.Sleep(10 * time.Millisecond)
		if err := f.MarkComplete(ctx, "http://a"); err != nil {
			t.Fatal(err)
		}
		if ok := <-done; ok {
			t.Error("Next after last completion should report exhaustion")
		}
	})

	t.Run("waiting next honours cancellation", func(t *testing.T) {
		t.Parallel()

		f, err := Open(context.Background(), []string{"http://a"}, WithLogger(quietLogger()))
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := f.Next(context.Background()); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, ok, err := f.Next(ctx)
		if ok || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Next = (%v, %v), want deadline exceeded", ok, err)
		}
	})

	t.Run("store failure leaves url unknown", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := &memStore{}
		f, err := Open(ctx, []string{"http://a"}, WithStore(store), WithLogger(quietLogger()))
		if err != nil {
			t.Fatal(err)
		}

		store.mu.Lock()
		store.failAdd = true
		store.mu.Unlock()

		if err := f.Add(ctx, "http://b"); err == nil {
			t.Fatal("expected error from failing store")
		}
		if f.Known() != 1 || f.Pending() != 1 {
			t.Errorf("Known = %d Pending = %d, want 1 and 1", f.Known(), f.Pending())
		}
	})
}
