package frontier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/domaincrawl/internal/model"
)

// ErrNoSeeds is returned by Open when there is nothing to resume and no
// seed URLs were given.
var ErrNoSeeds = errors.New("frontier has no seed URLs")

// Store persists frontier state.
type Store interface {
	// URLs returns every stored URL in insertion order.
	URLs(ctx context.Context) ([]model.URLRecord, error)

	// AddURL stores url as pending. Storing a known URL is a no-op.
	AddURL(ctx context.Context, url string) error

	// CompleteURL marks url as completed.
	CompleteURL(ctx context.Context, url string) error

	// ResetURLs removes all stored URLs.
	ResetURLs(ctx context.Context) error
}

// Frontier is a concurrency-safe crawl queue.
type Frontier struct {
	mu       sync.Mutex
	pending  []string
	known    map[string]struct{}
	inFlight map[string]struct{}

	// changed is closed and replaced whenever pending or inFlight shrink
	// or grow, waking blocked Next calls.
	changed chan struct{}

	store  Store
	logger *slog.Logger
}

// Option configures a Frontier.
type Option func(*openConfig)

type openConfig struct {
	store   Store
	restart bool
	logger  *slog.Logger
}

// WithStore persists the frontier in s.
func WithStore(s Store) Option {
	return func(c *openConfig) {
		c.store = s
	}
}

// WithRestart discards stored state and starts again from the seeds.
func WithRestart(restart bool) Option {
	return func(c *openConfig) {
		c.restart = restart
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *openConfig) {
		c.logger = logger
	}
}

// Open creates a Frontier.
//
// With a store holding unfinished URLs, those URLs are queued and seeds are
// ignored. With an empty store (or none, or a restart) the seeds are queued.
func Open(ctx context.Context, seeds []string, opts ...Option) (*Frontier, error) {
	cfg := openConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	f := &Frontier{
		known:    make(map[string]struct{}),
		inFlight: make(map[string]struct{}),
		changed:  make(chan struct{}),
		store:    cfg.store,
		logger:   cfg.logger,
	}

	if f.store != nil {
		if cfg.restart {
			if err := f.store.ResetURLs(ctx); err != nil {
				return nil, fmt.Errorf("failed to reset frontier: %w", err)
			}
		}

		records, err := f.store.URLs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load frontier: %w", err)
		}
		if len(records) > 0 {
			for _, r := range records {
				f.known[r.URL] = struct{}{}
				if !r.Completed {
					f.pending = append(f.pending, r.URL)
				}
			}
			f.logger.Info("resuming crawl",
				"known", len(records),
				"pending", len(f.pending),
			)
			return f, nil
		}
	}

	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	for _, s := range seeds {
		if err := f.Add(ctx, s); err != nil {
			return nil, err
		}
	}
	f.logger.Info("starting crawl from seeds", "seeds", len(seeds))
	return f, nil
}

// Next removes the oldest pending URL and marks it in flight.
//
// When nothing is pending but URLs are in flight, Next waits until one of
// them completes or a new URL is added. It returns ok == false once the
// frontier is exhausted, and ctx.Err() if ctx ends while waiting.
func (f *Frontier) Next(ctx context.Context) (string, bool, error) {
	for {
		f.mu.Lock()
		if len(f.pending) > 0 {
			u := f.pending[0]
			f.pending[0] = ""
			f.pending = f.pending[1:]
			f.inFlight[u] = struct{}{}
			f.mu.Unlock()
			return u, true, nil
		}
		if len(f.inFlight) == 0 {
			f.mu.Unlock()
			return "", false, nil
		}
		wait := f.changed
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-wait:
		}
	}
}

// Add queues url unless it has been added before.
func (f *Frontier) Add(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.known[url]; ok {
		return nil
	}
	if f.store != nil {
		if err := f.store.AddURL(ctx, url); err != nil {
			return fmt.Errorf("failed to store url %s: %w", url, err)
		}
	}
	f.known[url] = struct{}{}
	f.pending = append(f.pending, url)
	f.broadcast()
	return nil
}

// MarkComplete records that url has been processed.
func (f *Frontier) MarkComplete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.inFlight, url)
	f.broadcast()

	if f.store != nil {
		if err := f.store.CompleteURL(ctx, url); err != nil {
			return fmt.Errorf("failed to complete url %s: %w", url, err)
		}
	}
	return nil
}

// Pending returns the number of queued URLs.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// InFlight returns the number of URLs handed out and not yet completed.
func (f *Frontier) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inFlight)
}

// Known returns the number of distinct URLs ever added.
func (f *Frontier) Known() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.known)
}

// broadcast wakes all waiters. The caller must hold f.mu.
func (f *Frontier) broadcast() {
	close(f.changed)
	f.changed = make(chan struct{})
}
