package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/domaincrawl/internal/dedup"
	"github.com/nao1215/domaincrawl/internal/extract"
	"github.com/nao1215/domaincrawl/internal/model"
	"github.com/nao1215/domaincrawl/internal/stats"
	"github.com/nao1215/domaincrawl/internal/urlfilter"
)

const (
	// DefaultMinWords is the smallest token count a page may have to be
	// considered for statistics.
	DefaultMinWords = 10

	// DefaultMaxWords is the largest token count a page may have to be
	// considered for statistics.
	DefaultMaxWords = 100000
)

// PageSink receives every accepted page.
// Implementations must be safe for concurrent use.
type PageSink interface {
	RecordPage(ctx context.Context, page *model.Page) error
}

// Extractor turns a page body into links and tokens.
// *extract.Extractor is the implementation used by the crawler.
type Extractor interface {
	Extract(baseURL string, body []byte, contentType string) (*extract.Result, error)
}

// Pipeline processes fetched pages against the shared crawl state.
type Pipeline struct {
	// mu guards engine, stats and fetched.
	mu sync.Mutex

	validator *urlfilter.Validator
	extractor Extractor
	engine    *dedup.Engine
	stats     *stats.Aggregator

	// fetched holds page URLs whose content has already been processed.
	fetched map[string]struct{}

	sinks []PageSink

	minWords int
	maxWords int

	logger *slog.Logger
	now    func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// WithEngine replaces the default dedup engine.
func WithEngine(e *dedup.Engine) Option {
	return func(p *Pipeline) {
		p.engine = e
	}
}

// WithAggregator replaces the default statistics aggregator.
func WithAggregator(a *stats.Aggregator) Option {
	return func(p *Pipeline) {
		p.stats = a
	}
}

// WithWordBounds sets the inclusive token-count range of pages that count
// towards statistics. Non-positive values keep the defaults.
func WithWordBounds(minWords, maxWords int) Option {
	return func(p *Pipeline) {
		if minWords > 0 {
			p.minWords = minWords
		}
		if maxWords > 0 {
			p.maxWords = maxWords
		}
	}
}

// WithPageSink adds a receiver for accepted pages.
func WithPageSink(sink PageSink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// New creates a Pipeline that filters links with validator.
func New(validator *urlfilter.Validator, opts ...Option) *Pipeline {
	p := &Pipeline{
		validator: validator,
		fetched:   make(map[string]struct{}),
		minWords:  DefaultMinWords,
		maxWords:  DefaultMaxWords,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.extractor == nil {
		p.extractor = extract.New(extract.WithLogger(p.logger))
	}
	if p.engine == nil {
		p.engine = dedup.NewEngine()
	}
	if p.stats == nil {
		p.stats = stats.New()
	}

	return p
}

// Process handles one fetched page and returns the links that should be
// added to the frontier.
//
// pageURL is the URL the page was requested as. Links are returned for any
// page with a 200 status even when its content is rejected by the word
// bounds or the duplicate checks, or is truncated by the fetcher's body
// cap. A truncated body never counts towards statistics. A document that
// cannot be parsed and a panic raised while processing both yield no links.
func (p *Pipeline) Process(ctx context.Context, pageURL string, res *model.FetchResult) (links []string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("page processing panicked",
				"url", pageURL,
				"panic", fmt.Sprint(r),
			)
			links = nil
		}
	}()

	if !p.beginPage(pageURL) {
		p.logger.Debug("page already processed", "url", pageURL)
		return nil
	}

	if !res.OK() {
		status, detail := 0, "no result"
		if res != nil {
			status, detail = res.Status, res.ErrorDetail
		}
		p.logger.Warn("page not processed",
			"url", pageURL,
			"status", status,
			"error", detail,
		)
		return nil
	}

	base := res.FinalURL
	if base == "" {
		base = pageURL
	}

	result, err := p.extractor.Extract(base, res.Body, res.ContentType)
	if err != nil {
		p.logger.Warn("extraction failed", "url", pageURL, "error", err)
		return nil
	}

	links = p.filterLinks(result.Links)

	if res.Truncated {
		p.logger.Warn("page body truncated, content not counted",
			"url", pageURL,
			"bytes", len(res.Body),
		)
		return links
	}

	wordCount := result.WordCount()
	if wordCount < p.minWords || wordCount > p.maxWords {
		p.logger.Debug("page outside word bounds",
			"url", pageURL,
			"words", wordCount,
			"min", p.minWords,
			"max", p.maxWords,
		)
		return links
	}

	page, verdict := p.evaluate(pageURL, result)
	if page == nil {
		p.logger.Debug("duplicate content", "url", pageURL, "verdict", verdict.String())
		return links
	}

	p.logger.Info("page accepted",
		"url", pageURL,
		"seq", page.Seq,
		"words", page.WordCount,
	)
	for _, sink := range p.sinks {
		if err := sink.RecordPage(ctx, page); err != nil {
			p.logger.Warn("failed to record page", "url", pageURL, "error", err)
		}
	}

	return links
}

// Report returns a snapshot of the statistics.
func (p *Pipeline) Report(topN int) *model.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.Snapshot(topN)
}

// beginPage observes the page URL, counts its subdomain on first sight and
// marks the page as fetched. It returns false if the page was processed
// before.
func (p *Pipeline) beginPage(pageURL string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.fetched[pageURL]; ok {
		return false
	}
	p.fetched[pageURL] = struct{}{}

	if p.stats.Observe(pageURL) {
		p.countIfValid(pageURL)
	}
	return true
}

// filterLinks keeps first-seen valid links and counts their subdomains.
func (p *Pipeline) filterLinks(candidates []string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, link := range candidates {
		if !p.stats.Observe(link) {
			continue
		}
		if p.countIfValid(link) {
			out = append(out, link)
		}
	}
	return out
}

// countIfValid validates rawURL and increments its subdomain count when valid.
// The caller must hold p.mu.
func (p *Pipeline) countIfValid(rawURL string) bool {
	valid, err := p.validator.IsValid(rawURL)
	if err != nil {
		p.logger.Debug("invalid url", "url", rawURL, "error", err)
		return false
	}
	if !valid {
		return false
	}

	host, err := urlfilter.Host(rawURL)
	if err != nil {
		return false
	}
	p.stats.CountSubdomain(host)
	return true
}

// evaluate runs the duplicate checks and, for unique content, updates the
// statistics. It returns a nil page for duplicates.
func (p *Pipeline) evaluate(pageURL string, result *extract.Result) (*model.Page, dedup.Verdict) {
	p.mu.Lock()
	defer p.mu.Unlock()

	verdict := p.engine.Check(result.Text, result.Tokens)
	if verdict != dedup.Unique {
		return nil, verdict
	}

	page := &model.Page{
		Seq:        p.stats.Accept(pageURL, result.Tokens),
		URL:        pageURL,
		Text:       result.Text,
		WordCount:  result.WordCount(),
		AcceptedAt: p.now(),
	}
	page.ComputeHash()
	return page, verdict
}
