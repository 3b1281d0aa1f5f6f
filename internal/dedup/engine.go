package dedup

// Verdict is the outcome of a duplicate check.
type Verdict int

const (
	// Unique means the page was not a duplicate and has been cached.
	Unique Verdict = iota
	// ExactDuplicate means the page text is already cached.
	ExactDuplicate
	// NearDuplicate means the page's tokens overlap a cached page by at least the threshold.
	NearDuplicate
)

// String returns the verdict name used in logs.
func (v Verdict) String() string {
	switch v {
	case Unique:
		return "unique"
	case ExactDuplicate:
		return "exact-duplicate"
	case NearDuplicate:
		return "near-duplicate"
	default:
		return "unknown"
	}
}

// Engine runs the exact stage and then the near-duplicate stage.
type Engine struct {
	texts     *TextCache
	tokens    *TokenCache
	threshold float64
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	textCapacity  int
	tokenCapacity int
	threshold     float64
}

// WithTextCapacity sets the exact-match cache capacity.
func WithTextCapacity(n int) Option {
	return func(c *engineConfig) {
		c.textCapacity = n
	}
}

// WithTokenCapacity sets the near-duplicate cache capacity.
func WithTokenCapacity(n int) Option {
	return func(c *engineConfig) {
		c.tokenCapacity = n
	}
}

// WithThreshold sets the near-duplicate overlap threshold.
// Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(c *engineConfig) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// NewEngine creates an Engine with empty caches.
func NewEngine(opts ...Option) *Engine {
	cfg := engineConfig{
		textCapacity:  DefaultCapacity,
		tokenCapacity: DefaultCapacity,
		threshold:     DefaultThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{
		texts:     NewTextCache(cfg.textCapacity),
		tokens:    NewTokenCache(cfg.tokenCapacity),
		threshold: cfg.threshold,
	}
}

// Check classifies a page and updates the caches.
//
// The text is inserted into the exact cache whenever it is new, even if the
// page then turns out to be a near duplicate. The token histogram is cached
// only for Unique pages.
func (e *Engine) Check(text string, tokens []string) Verdict {
	if !e.texts.Add(text) {
		return ExactDuplicate
	}

	freq := Frequencies(tokens)
	if e.tokens.NearDuplicate(freq, e.threshold) {
		return NearDuplicate
	}
	e.tokens.Add(freq)

	return Unique
}

// Threshold returns the configured overlap threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}
