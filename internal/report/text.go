package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/domaincrawl/internal/model"
)

// TextWriter outputs the plain text crawl summary.
//
// Sections appear in a fixed order: unique page count, longest page, most
// common words, per-subdomain counts, and the enumerated unique URLs.
type TextWriter struct {
	baseWriter

	// topWords is the word-list length announced in the section header.
	topWords int
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithTopWords sets the word-list length announced in the header.
func WithTopWords(n int) TextWriterOption {
	return func(w *TextWriter) {
		if n > 0 {
			w.topWords = n
		}
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		topWords:   model.DefaultTopWords,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *TextWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Number of Unique Pages Found: %d\n\n", report.UniquePages)

	if report.Longest != nil {
		fmt.Fprintf(&sb, "Longest Page: %s (%d words)\n\n", report.Longest.URL, report.Longest.WordCount)
	} else {
		sb.WriteString("Longest Page: none\n\n")
	}

	fmt.Fprintf(&sb, "Top %d Most Common Words:\n", w.topWords)
	for _, wc := range report.TopWords {
		fmt.Fprintf(&sb, "%s: %d\n", wc.Word, wc.Count)
	}
	sb.WriteString("\n")

	sb.WriteString("Number of Unique Valid URLs Found for Each Subdomain:\n")
	for _, s := range report.Subdomains {
		fmt.Fprintf(&sb, "%s %d\n", s.Host, s.Count)
	}
	sb.WriteString("\n")

	sb.WriteString("The unique pages found were:\n")
	for i, u := range report.UniqueURLs {
		fmt.Fprintf(&sb, "URL #%d: %s\n", i+1, u)
	}

	return io.WriteString(w.output, sb.String())
}
