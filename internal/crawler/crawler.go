package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of workers used when none is configured.
const DefaultWorkers = 1

// DefaultDelay is the politeness delay used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// Crawler runs a pool of Workers.
type Crawler struct {
	frontier  Frontier
	fetcher   Fetcher
	processor Processor

	workers int
	delay   time.Duration
	logger  *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithDelay sets the politeness delay each worker observes after a page.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler.
func New(frontier Frontier, fetcher Fetcher, processor Processor, opts ...Option) *Crawler {
	c := &Crawler{
		frontier:  frontier,
		fetcher:   fetcher,
		processor: processor,
		workers:   DefaultWorkers,
		delay:     DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run starts the workers and waits for all of them to stop.
//
// A worker whose frontier fails stops alone; the others keep going. The
// returned error joins those failures, or is the context error when the
// crawl was cancelled. The tally covers every worker either way.
func (c *Crawler) Run(ctx context.Context) (Tally, error) {
	c.logger.Info("starting crawl",
		"workers", c.workers,
		"delay", c.delay,
	)
	start := time.Now()

	var (
		mu     sync.Mutex
		total  Tally
		failed []error
	)

	// Worker failures are collected rather than returned so that one
	// failing worker does not cancel the rest.
	var g errgroup.Group
	for i := 1; i <= c.workers; i++ {
		w := NewWorker(i, c.frontier, c.fetcher, c.processor, c.delay, c.logger)
		g.Go(func() error {
			tally, err := w.Run(ctx)

			mu.Lock()
			defer mu.Unlock()
			total = total.Add(tally)
			if err != nil && !isCancellation(err) {
				c.logger.Error("worker failed", "error", err)
				failed = append(failed, err)
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors to the group

	c.logger.Info("crawl finished",
		"fetched", total.Fetched,
		"failed", total.Failed,
		"links_queued", total.LinksQueued,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		return total, err
	}
	return total, errors.Join(failed...)
}
