// Package extract turns a fetched HTML document into outbound links and a
// cleaned token stream.
package extract

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/domaincrawl/internal/urlfilter"
)

// ErrParse is returned when the document as a whole cannot be parsed.
var ErrParse = errors.New("failed to parse document")

// hiddenSelector matches elements whose text is not part of the page content.
const hiddenSelector = "script, style, noscript, header, footer"

// Result is the output of a single extraction.
type Result struct {
	// Links are the normalized href targets of every anchor, in document order.
	// Duplicates are kept; deduplication is the caller's concern.
	Links []string

	// Text is the visible text with whitespace collapsed to single spaces.
	Text string

	// Tokens is Text lowercased and split on whitespace.
	Tokens []string
}

// WordCount returns the number of tokens.
func (r *Result) WordCount() int {
	return len(r.Tokens)
}

// Extractor extracts links and text from HTML.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used to report skipped anchors.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract parses body as HTML and returns its links, text and tokens.
//
// baseURL is the URL the document was served from; relative hrefs are
// resolved against it. contentType is the response Content-Type header and
// is used only to pick a character decoder.
//
// An anchor whose href cannot be normalized is skipped. A document that
// cannot be read at all yields an error wrapping ErrParse.
func (e *Extractor) Extract(baseURL string, body []byte, contentType string) (*Result, error) {
	return e.ExtractReader(baseURL, bytes.NewReader(body), contentType)
}

// ExtractReader is Extract for a document read from r. A read error from r
// is a parse failure.
func (e *Extractor) ExtractReader(baseURL string, r io.Reader, contentType string) (*Result, error) {
	decoded, err := decode(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	result := &Result{
		Links: e.links(doc, baseURL),
	}

	doc.Find(hiddenSelector).Remove()

	result.Text = visibleText(doc.Selection)
	if result.Text != "" {
		result.Tokens = strings.Fields(cases.Lower(language.Und).String(result.Text))
	}

	return result, nil
}

// links collects every anchor href, normalized against baseURL.
func (e *Extractor) links(doc *goquery.Document, baseURL string) []string {
	links := make([]string, 0)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}

		link, err := urlfilter.Normalize(baseURL, href)
		if err != nil {
			e.logger.Debug("skipping anchor", "page", baseURL, "href", href, "error", err)
			return
		}
		links = append(links, link)
	})
	return links
}

// visibleText joins every non-blank text node with a single space.
func visibleText(sel *goquery.Selection) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}

// decode wraps r in a reader that converts it to UTF-8.
// Unknown or undetectable encodings fall back to the raw bytes; an error is
// returned only when r itself fails while the encoding is sniffed.
func decode(r io.Reader, contentType string) (io.Reader, error) {
	// charset.NewReader consumes up to 1024 bytes to sniff the encoding.
	sniffed := bufio.NewReaderSize(r, 1024)
	if _, err := sniffed.Peek(1024); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	decoded, err := charset.NewReader(sniffed, contentType)
	if err != nil {
		return sniffed, nil
	}
	return decoded, nil
}
