package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/domaincrawl/internal/model"
)

// Frontier hands out URLs to crawl and accepts newly found ones.
type Frontier interface {
	// Next returns the next URL. ok is false once the frontier is exhausted.
	Next(ctx context.Context) (url string, ok bool, err error)

	// Add queues a URL.
	Add(ctx context.Context, url string) error

	// MarkComplete records that a URL returned by Next has been processed.
	MarkComplete(ctx context.Context, url string) error
}

// Fetcher downloads a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchResult, error)
}

// Processor turns a fetched page into links to queue.
type Processor interface {
	Process(ctx context.Context, pageURL string, res *model.FetchResult) []string
}

// Tally counts what a worker did.
type Tally struct {
	// Fetched is the number of URLs taken from the frontier and fetched.
	Fetched int

	// Failed is the number of fetches that did not return status 200.
	Failed int

	// LinksQueued is the number of links handed to the frontier.
	LinksQueued int
}

// Add returns the sum of two tallies.
func (t Tally) Add(o Tally) Tally {
	return Tally{
		Fetched:     t.Fetched + o.Fetched,
		Failed:      t.Failed + o.Failed,
		LinksQueued: t.LinksQueued + o.LinksQueued,
	}
}

// Worker is one crawl loop.
type Worker struct {
	id        int
	frontier  Frontier
	fetcher   Fetcher
	processor Processor
	delay     time.Duration
	logger    *slog.Logger
}

// NewWorker creates a Worker. delay is the pause after every page.
func NewWorker(id int, frontier Frontier, fetcher Fetcher, processor Processor, delay time.Duration, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		id:        id,
		frontier:  frontier,
		fetcher:   fetcher,
		processor: processor,
		delay:     delay,
		logger:    logger.With("worker", id),
	}
}

// Run crawls until the frontier is exhausted or ctx is cancelled.
//
// It returns nil when the frontier is exhausted, ctx.Err() on cancellation,
// and a wrapped error when the frontier fails to hand out a URL.
func (w *Worker) Run(ctx context.Context) (Tally, error) {
	var tally Tally
	start := time.Now()

	defer func() {
		w.logger.Info("worker stopped",
			"fetched", tally.Fetched,
			"failed", tally.Failed,
			"links_queued", tally.LinksQueued,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		pageURL, ok, err := w.frontier.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return tally, ctx.Err()
			}
			return tally, fmt.Errorf("worker %d: %w", w.id, err)
		}
		if !ok {
			w.logger.Info("frontier is empty, stopping worker")
			return tally, nil
		}

		res, err := w.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return tally, ctx.Err()
			}
			res = &model.FetchResult{ErrorDetail: err.Error()}
		}
		tally.Fetched++
		if !res.OK() {
			tally.Failed++
		}

		w.logger.Info("downloaded",
			"url", pageURL,
			"status", res.Status,
			"error", res.ErrorDetail,
		)

		links := w.processor.Process(ctx, pageURL, res)
		for _, link := range links {
			if err := w.frontier.Add(ctx, link); err != nil {
				w.logger.Warn("failed to queue link", "url", link, "error", err)
				continue
			}
			tally.LinksQueued++
		}

		if err := w.frontier.MarkComplete(ctx, pageURL); err != nil {
			w.logger.Warn("failed to mark url complete", "url", pageURL, "error", err)
		}

		if err := sleep(ctx, w.delay); err != nil {
			return tally, err
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isCancellation reports whether err comes from context cancellation.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
