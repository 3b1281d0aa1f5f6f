package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/domaincrawl/internal/model"
)

// ErrUnknownFormat is returned for an unsupported report format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// Format names a report output format.
type Format string

const (
	// FormatText is the plain text summary.
	FormatText Format = "text"
	// FormatMarkdown is a Markdown document.
	FormatMarkdown Format = "markdown"
	// FormatJSON is the JSON encoding of the report.
	FormatJSON Format = "json"
)

// ParseFormat converts a user-supplied name to a Format.
// "md" is accepted as an alias of markdown and "txt" of text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// NewWriter returns a Writer for format that outputs to out.
// topWords is the length of the word list announced by text and Markdown
// output; version is embedded in JSON output.
func NewWriter(format Format, out io.Writer, topWords int, version string) (Writer, error) {
	switch format {
	case FormatText:
		return NewTextWriter(out, WithTopWords(topWords)), nil
	case FormatMarkdown:
		return NewMarkdownWriter(out), nil
	case FormatJSON:
		return NewVersionedJSONWriter(out, version, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile renders report into the file at path. The file is appended to
// when appendMode is true and truncated otherwise.
func WriteFile(path string, appendMode bool, newWriter func(io.Writer) (Writer, error), report *model.Report) error {
	f, err := openOutput(path, appendMode)
	if err != nil {
		return err
	}

	writer, err := newWriter(f)
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := writer.Write(report); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return f.Close()
}

// openOutput opens path for writing in append or truncate mode.
func openOutput(path string, appendMode bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0600) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// MultiWriter writes to multiple Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written and stops on the first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
