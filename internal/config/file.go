package config

import (
	"time"

	"github.com/nao1215/domaincrawl/internal/urlfilter"
)

// File represents the structure of the YAML configuration file.
// Zero values leave the corresponding setting unchanged.
type File struct {
	// Seeds are the URLs a fresh crawl starts from.
	Seeds []string `yaml:"seeds,omitempty"`

	Crawl   CrawlSection   `yaml:"crawl,omitempty"`
	Fetch   FetchSection   `yaml:"fetch,omitempty"`
	Filter  FilterSection  `yaml:"filter,omitempty"`
	Content ContentSection `yaml:"content,omitempty"`
	Dedup   DedupSection   `yaml:"dedup,omitempty"`
	Output  OutputSection  `yaml:"output,omitempty"`
}

// CrawlSection configures the worker pool.
type CrawlSection struct {
	Workers int           `yaml:"workers,omitempty"`
	Delay   time.Duration `yaml:"delay,omitempty"`
}

// FetchSection configures HTTP fetching.
type FetchSection struct {
	Timeout      time.Duration     `yaml:"timeout,omitempty"`
	UserAgent    string            `yaml:"userAgent,omitempty"`
	MaxBodySize  int64             `yaml:"maxBodySize,omitempty"`
	MaxRedirects int               `yaml:"maxRedirects,omitempty"`
	Proxy        string            `yaml:"proxy,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
}

// FilterSection configures which URLs are crawled.
type FilterSection struct {
	Domains          []urlfilter.Domain `yaml:"domains,omitempty"`
	Traps            []string           `yaml:"traps,omitempty"`
	DeniedExtensions []string           `yaml:"deniedExtensions,omitempty"`
	IgnorePatterns   []string           `yaml:"ignorePatterns,omitempty"`
}

// ContentSection configures which pages count towards statistics.
type ContentSection struct {
	MinWords  int      `yaml:"minWords,omitempty"`
	MaxWords  int      `yaml:"maxWords,omitempty"`
	StopWords []string `yaml:"stopWords,omitempty"`
	TopWords  int      `yaml:"topWords,omitempty"`
}

// DedupSection configures duplicate detection.
type DedupSection struct {
	TextCacheSize  int     `yaml:"textCacheSize,omitempty"`
	TokenCacheSize int     `yaml:"tokenCacheSize,omitempty"`
	Threshold      float64 `yaml:"threshold,omitempty"`
}

// OutputSection configures where results go.
type OutputSection struct {
	DBDir            string `yaml:"dbDir,omitempty"`
	Report           string `yaml:"report,omitempty"`
	ReportFormat     string `yaml:"reportFormat,omitempty"`
	AppendReport     bool   `yaml:"appendReport,omitempty"`
	Print            bool   `yaml:"print,omitempty"`
	PageLog          string `yaml:"pageLog,omitempty"`
	AppendPageLog    bool   `yaml:"appendPageLog,omitempty"`
	PageLogSeparator string `yaml:"pageLogSeparator,omitempty"`
}

// Apply copies every non-zero setting of f into c.
func (f *File) Apply(c *Config) {
	setStrings(&c.Seeds, f.Seeds)

	setInt(&c.Workers, f.Crawl.Workers)
	if f.Crawl.Delay > 0 {
		c.PolitenessDelay = f.Crawl.Delay
	}

	if f.Fetch.Timeout > 0 {
		c.Timeout = f.Fetch.Timeout
	}
	setString(&c.UserAgent, f.Fetch.UserAgent)
	if f.Fetch.MaxBodySize != 0 {
		c.MaxBodySize = f.Fetch.MaxBodySize
	}
	setInt(&c.MaxRedirects, f.Fetch.MaxRedirects)
	setString(&c.ProxyAddress, f.Fetch.Proxy)
	if len(f.Fetch.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Fetch.Headers))
		}
		for k, v := range f.Fetch.Headers {
			c.Headers[k] = v
		}
	}

	if len(f.Filter.Domains) > 0 {
		c.Domains = f.Filter.Domains
	}
	setStrings(&c.Traps, f.Filter.Traps)
	setStrings(&c.DeniedExtensions, f.Filter.DeniedExtensions)
	setStrings(&c.IgnorePatterns, f.Filter.IgnorePatterns)

	setInt(&c.MinWords, f.Content.MinWords)
	setInt(&c.MaxWords, f.Content.MaxWords)
	setStrings(&c.StopWords, f.Content.StopWords)
	setInt(&c.TopWords, f.Content.TopWords)

	setInt(&c.TextCacheSize, f.Dedup.TextCacheSize)
	setInt(&c.TokenCacheSize, f.Dedup.TokenCacheSize)
	if f.Dedup.Threshold != 0 {
		c.SimilarityThreshold = f.Dedup.Threshold
	}

	setString(&c.DBDir, f.Output.DBDir)
	setString(&c.ReportFile, f.Output.Report)
	setString(&c.ReportFormat, f.Output.ReportFormat)
	c.AppendReport = c.AppendReport || f.Output.AppendReport
	c.PrintReport = c.PrintReport || f.Output.Print
	setString(&c.PageLogFile, f.Output.PageLog)
	c.AppendPageLog = c.AppendPageLog || f.Output.AppendPageLog
	setString(&c.PageLogSeparator, f.Output.PageLogSeparator)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setStrings(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = v
	}
}
