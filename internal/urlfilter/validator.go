package urlfilter

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Domain is one entry of the allow-list.
type Domain struct {
	// Name is matched as a substring of the URL's network location,
	// so "cs.uci.edu" also admits "www.cs.uci.edu".
	Name string `yaml:"name"`

	// PathPrefix, when set, is required at the start of the URL path for
	// hosts matching Name. Such URLs are rejected even though the host matches.
	PathPrefix string `yaml:"pathPrefix,omitempty"`
}

// DefaultDomains is the allow-list of the UCI information and computer
// sciences crawl.
var DefaultDomains = []Domain{
	{Name: "ics.uci.edu"},
	{Name: "cs.uci.edu"},
	{Name: "informatics.uci.edu"},
	{Name: "stat.uci.edu"},
	{Name: "today.uci.edu", PathPrefix: "/department/information_computer_sciences/"},
}

// DefaultTraps are path substrings that lead into calendar and archive traps.
// The wiki query script generates an unbounded number of revision and
// export views of the same page.
var DefaultTraps = []string{
	"calendar",
	"/month",
	"/day",
	"/events",
	"/doku.php",
}

// DefaultDeniedExtensions are file extensions that never hold crawlable HTML.
var DefaultDeniedExtensions = []string{
	"css", "js", "bmp", "gif", "jpeg", "jpg", "ico",
	"png", "tif", "tiff", "mid", "mp2", "mp3", "mp4",
	"wav", "avi", "mov", "mpeg", "ram", "m4v", "mkv", "ogg", "ogv", "pdf",
	"ps", "eps", "tex", "ppt", "pptx", "doc", "docx", "xls", "xlsx", "names",
	"data", "dat", "exe", "bz2", "tar", "msi", "bin", "7z", "psd", "dmg", "iso",
	"epub", "dll", "cnf", "tgz", "sha1",
	"thmx", "mso", "arff", "rtf", "jar", "csv",
	"rm", "smil", "wmv", "swf", "wma", "zip", "rar", "gz",
}

// Validator decides whether a URL may be crawled.
// It is immutable after construction and safe for concurrent use.
type Validator struct {
	domains    []Domain
	traps      []string
	extensions map[string]struct{}
	ignore     []glob.Glob
	patterns   []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithDomains replaces the domain allow-list.
func WithDomains(domains []Domain) Option {
	return func(v *Validator) {
		v.domains = domains
	}
}

// WithTraps replaces the trap path substrings.
func WithTraps(traps []string) Option {
	return func(v *Validator) {
		v.traps = traps
	}
}

// WithDeniedExtensions replaces the extension denylist.
// Extensions are given without the leading dot and matched case-insensitively.
func WithDeniedExtensions(exts []string) Option {
	return func(v *Validator) {
		v.extensions = extensionSet(exts)
	}
}

// WithIgnorePatterns adds glob patterns matched against the URL path,
// e.g. "/~*/private/**" or "**/print". Patterns are compiled by NewValidator.
func WithIgnorePatterns(patterns []string) Option {
	return func(v *Validator) {
		v.patterns = patterns
	}
}

// NewValidator creates a Validator with the default allow-list, traps, and
// extension denylist, modified by opts.
func NewValidator(opts ...Option) (*Validator, error) {
	v := &Validator{
		domains:    DefaultDomains,
		traps:      DefaultTraps,
		extensions: extensionSet(DefaultDeniedExtensions),
	}

	for _, opt := range opts {
		opt(v)
	}

	for _, p := range v.patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		v.ignore = append(v.ignore, g)
	}

	return v, nil
}

// IsValid reports whether rawURL should be crawled.
// A URL that cannot be parsed yields false and an error wrapping ErrMalformedURL.
func (v *Validator) IsValid(rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}

	if !v.allowedHost(u.Host, u.Path) {
		return false, nil
	}

	for _, trap := range v.traps {
		if strings.Contains(u.Path, trap) {
			return false, nil
		}
	}

	if v.deniedExtension(u.Path) {
		return false, nil
	}

	for _, g := range v.ignore {
		if g.Match(u.Path) {
			return false, nil
		}
	}

	return true, nil
}

// allowedHost applies the allow-list. A prefixed domain whose path does not
// start with its prefix rejects the URL outright, before other domains are tried.
func (v *Validator) allowedHost(host, urlPath string) bool {
	for _, d := range v.domains {
		if d.PathPrefix != "" && strings.Contains(host, d.Name) && !strings.HasPrefix(urlPath, d.PathPrefix) {
			return false
		}
	}

	for _, d := range v.domains {
		if strings.Contains(host, d.Name) {
			return true
		}
	}
	return false
}

func (v *Validator) deniedExtension(urlPath string) bool {
	ext := path.Ext(strings.ToLower(urlPath))
	if ext == "" {
		return false
	}
	_, denied := v.extensions[strings.TrimPrefix(ext, ".")]
	return denied
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return set
}
