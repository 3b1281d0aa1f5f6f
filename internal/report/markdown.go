package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/domaincrawl/internal/model"
)

// maxChartSlices caps the subdomain pie chart; the rest are grouped as "other".
const maxChartSlices = 8

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeTopWords(md, report)
	w.writeSubdomains(md, report)
	w.writeURLs(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Crawl Report")
	md.PlainText("")

	longest := "-"
	if report.Longest != nil {
		longest = fmt.Sprintf("%s (%d words)", report.Longest.URL, report.Longest.WordCount)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Unique Pages", strconv.Itoa(report.UniquePages)},
			{"Accepted Pages", strconv.Itoa(report.AcceptedPages)},
			{"Longest Page", longest},
		},
	})
	md.PlainText("")

	if report.AcceptedPages == 0 {
		md.Note("No page content was accepted; word statistics are empty.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeTopWords(md *markdown.Markdown, report *model.Report) {
	md.H2("Most Common Words")
	md.PlainText("")

	if len(report.TopWords) == 0 {
		md.PlainText("No words recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.TopWords))
	for i, wc := range report.TopWords {
		rows[i] = []string{strconv.Itoa(i + 1), wc.Word, strconv.Itoa(wc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSubdomains(md *markdown.Markdown, report *model.Report) {
	md.H2("Subdomains")
	md.PlainText("")
	md.PlainText("Counts are unique valid URLs observed per host.")
	md.PlainText("")

	if len(report.Subdomains) == 0 {
		md.PlainText("No subdomains recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Subdomains))
	for i, s := range report.Subdomains {
		rows[i] = []string{"`" + s.Host + "`", strconv.Itoa(s.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Host", "URLs"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report.Subdomains)
}

// writePieChart writes a mermaid pie chart of the largest subdomains.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, subdomains []model.SubdomainCount) {
	ranked := append([]model.SubdomainCount(nil), subdomains...)
	sortByCountDesc(ranked)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("URLs per Subdomain"),
		piechart.WithShowData(true),
	)

	other := 0
	for i, s := range ranked {
		if i < maxChartSlices {
			chart.LabelAndIntValue(s.Host, uint64(s.Count)) //nolint:gosec // counts are non-negative
			continue
		}
		other += s.Count
	}
	if other > 0 {
		chart.LabelAndIntValue("other", uint64(other)) //nolint:gosec // counts are non-negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeURLs(md *markdown.Markdown, report *model.Report) {
	md.H2("Unique Pages")
	md.PlainText("")

	if len(report.UniqueURLs) == 0 {
		md.PlainText("No pages found.")
		md.PlainText("")
		return
	}

	var sb strings.Builder
	for i, u := range report.UniqueURLs {
		fmt.Fprintf(&sb, "URL #%d: %s\n", i+1, u)
	}
	md.Details(fmt.Sprintf("%d URLs", len(report.UniqueURLs)), sb.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [domaincrawl](https://github.com/nao1215/domaincrawl)*")
}

// sortByCountDesc orders subdomains by count, keeping host order for ties.
func sortByCountDesc(s []model.SubdomainCount) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Count > s[j-1].Count; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
