package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nao1215/domaincrawl/internal/model"
)

// DefaultSeparator ends each record of the page log.
const DefaultSeparator = "=== END OF PAGE ==="

// PageLog writes accepted pages to the verbose page log.
//
// Each record is a "URL #n: <url>" line, the cleaned page text, a blank
// line, and the separator line. PageLog is safe for concurrent use.
type PageLog struct {
	mu        sync.Mutex
	out       io.Writer
	closer    io.Closer
	separator string
}

// NewPageLog creates a PageLog writing to out.
// An empty separator uses DefaultSeparator.
func NewPageLog(out io.Writer, separator string) *PageLog {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &PageLog{out: out, separator: separator}
}

// OpenPageLog opens the page log file at path, appending when appendMode is
// true and truncating otherwise.
func OpenPageLog(path string, appendMode bool, separator string) (*PageLog, error) {
	f, err := openOutput(path, appendMode)
	if err != nil {
		return nil, err
	}
	l := NewPageLog(f, separator)
	l.closer = f
	return l, nil
}

// RecordPage appends one record.
func (l *PageLog) RecordPage(_ context.Context, page *model.Page) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := fmt.Fprintf(l.out, "URL #%d: %s\n%s\n\n%s\n", page.Seq, page.URL, page.Text, l.separator)
	if err != nil {
		return fmt.Errorf("failed to write page log: %w", err)
	}
	return nil
}

// Close closes the underlying file if PageLog opened it.
func (l *PageLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
