package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/domaincrawl/internal/urlfilter"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "domaincrawl"

	// DefaultWorkers is the number of concurrent crawl workers.
	DefaultWorkers = 1

	// DefaultPolitenessDelay is the pause each worker takes after every page.
	DefaultPolitenessDelay = 500 * time.Millisecond

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "domaincrawl/1.0 (+https://github.com/nao1215/domaincrawl)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultMaxRedirects is the redirect limit per fetch.
	DefaultMaxRedirects = 10

	// DefaultMinWords and DefaultMaxWords bound the token count of pages
	// that count towards statistics.
	DefaultMinWords = 10
	DefaultMaxWords = 100000

	// DefaultCacheSize is the capacity of each duplicate-detection cache.
	DefaultCacheSize = 100

	// DefaultSimilarityThreshold is the near-duplicate overlap threshold.
	DefaultSimilarityThreshold = 0.9

	// DefaultTopWords is the length of the most-common-words list.
	DefaultTopWords = 50

	// DefaultReportFile is the plain text report written at the end of a crawl.
	DefaultReportFile = "pages.txt"

	// DefaultReportFormat is the format of the report file.
	DefaultReportFormat = "text"

	// DefaultPageLogFile is the verbose per-page log.
	DefaultPageLogFile = "urlcontents.txt"

	// DefaultPageLogSeparator ends each record of the page log.
	DefaultPageLogSeparator = "=== END OF PAGE ==="
)

// DefaultSeeds are the crawl start points.
var DefaultSeeds = []string{
	"https://www.ics.uci.edu",
	"https://www.cs.uci.edu",
	"https://www.informatics.uci.edu",
	"https://www.stat.uci.edu",
}

// Config holds all configuration options for domaincrawl.
// It is populated from defaults, then the YAML file, then CLI flags, and is
// passed through the application rather than held in global state.
type Config struct {
	// Seeds are the URLs a fresh crawl starts from.
	Seeds []string

	// Workers is the number of concurrent crawl workers.
	Workers int

	// PolitenessDelay is the pause each worker takes after every page.
	PolitenessDelay time.Duration

	// Restart discards stored frontier state and starts from the seeds.
	Restart bool

	// Timeout bounds a single fetch including redirects.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the number of response body bytes read per page.
	MaxBodySize int64

	// MaxRedirects is the redirect limit per fetch.
	MaxRedirects int

	// ProxyAddress routes fetches through a SOCKS5 proxy ("host:port").
	// Empty means direct connections.
	ProxyAddress string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// Domains are the allowed domains and their optional path prefixes.
	Domains []urlfilter.Domain

	// Traps are path substrings that mark crawler traps.
	Traps []string

	// DeniedExtensions are file extensions that are never crawled.
	DeniedExtensions []string

	// IgnorePatterns are glob patterns of URL paths that are never crawled.
	IgnorePatterns []string

	// StopWords are excluded from the word histogram.
	StopWords []string

	// MinWords and MaxWords bound the token count of pages that count
	// towards statistics.
	MinWords int
	MaxWords int

	// TextCacheSize and TokenCacheSize are the duplicate cache capacities.
	TextCacheSize  int
	TokenCacheSize int

	// SimilarityThreshold is the near-duplicate overlap threshold in (0, 1].
	SimilarityThreshold float64

	// TopWords is the length of the most-common-words list.
	TopWords int

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/domaincrawl on Linux).
	DBDir string

	// ReportFile is the path of the report written at the end of a crawl.
	ReportFile string

	// ReportFormat is text, markdown or json.
	ReportFormat string

	// AppendReport appends to ReportFile instead of overwriting it.
	AppendReport bool

	// PrintReport also writes the report to standard output.
	PrintReport bool

	// PageLogFile is the verbose per-page log. Empty disables it.
	PageLogFile string

	// AppendPageLog appends to PageLogFile instead of overwriting it.
	AppendPageLog bool

	// PageLogSeparator ends each page log record.
	PageLogSeparator string

	// Verbose enables debug-level logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the YAML file the configuration was loaded from.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Seeds:               append([]string(nil), DefaultSeeds...),
		Workers:             DefaultWorkers,
		PolitenessDelay:     DefaultPolitenessDelay,
		Timeout:             DefaultTimeout,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
		MaxRedirects:        DefaultMaxRedirects,
		Domains:             append([]urlfilter.Domain(nil), urlfilter.DefaultDomains...),
		Traps:               append([]string(nil), urlfilter.DefaultTraps...),
		DeniedExtensions:    append([]string(nil), urlfilter.DefaultDeniedExtensions...),
		MinWords:            DefaultMinWords,
		MaxWords:            DefaultMaxWords,
		TextCacheSize:       DefaultCacheSize,
		TokenCacheSize:      DefaultCacheSize,
		SimilarityThreshold: DefaultSimilarityThreshold,
		TopWords:            DefaultTopWords,
		DBDir:               XDGDataDir(),
		ReportFile:          DefaultReportFile,
		ReportFormat:        DefaultReportFormat,
		PageLogFile:         DefaultPageLogFile,
		PageLogSeparator:    DefaultPageLogSeparator,
	}
}

// XDGDataDir returns the XDG data directory for domaincrawl.
// On Linux: ~/.local/share/domaincrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for domaincrawl.
// On Linux: ~/.config/domaincrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	for _, s := range c.Seeds {
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidSeed, s)
		}
	}

	if len(c.Domains) == 0 {
		return ErrNoDomains
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.PolitenessDelay < 0 {
		return ErrInvalidPolitenessDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.MinWords < 0 || c.MaxWords <= 0 || c.MinWords > c.MaxWords {
		return ErrInvalidWordBounds
	}

	if c.TextCacheSize <= 0 || c.TokenCacheSize <= 0 {
		return ErrInvalidCacheSize
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}

	if c.TopWords <= 0 {
		return ErrInvalidTopWords
	}

	if c.ReportFile == "" {
		return ErrNoReportFile
	}

	return nil
}
