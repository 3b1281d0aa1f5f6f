package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaincrawl/internal/config"
	"github.com/nao1215/domaincrawl/internal/database"
	"github.com/nao1215/domaincrawl/internal/model"
	"github.com/nao1215/domaincrawl/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show reports stored by previous crawls",
		Long: `Report re-renders a report saved in the database by 'domaincrawl crawl'.

Without flags the latest report is printed as text.

Examples:
  # Latest report as Markdown
  domaincrawl report --format markdown

  # A specific report written to a file
  domaincrawl report --id 3 -o report.json --format json

  # List stored reports
  domaincrawl report --list

  # List accepted pages with word counts and content hashes
  domaincrawl report --pages

  # Show how the latest report differs from report 2
  domaincrawl report --compare 2`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().Int64P("id", "i", 0, "Report ID (default: latest)")
	cmd.Flags().StringP("format", "f", string(report.FormatText), "Output format: text, markdown or json")
	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolP("list", "l", false, "List stored reports")
	cmd.Flags().BoolP("pages", "p", false, "List the accepted pages of the last crawl")
	cmd.Flags().Int64("compare", 0, "Compare the selected report with this earlier report ID")
	cmd.Flags().Int("top", config.DefaultTopWords, "Number of words announced in text output")
	cmd.Flags().String("db-dir", "", "Database directory (default: configured or XDG data directory)")

	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return err
		}
	}

	// Validate flags before opening the database.
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	compareID, err := cmd.Flags().GetInt64("compare")
	if err != nil {
		return err
	}
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	pages, err := cmd.Flags().GetBool("pages")
	if err != nil {
		return err
	}
	topWords, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database (run 'domaincrawl crawl' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if list {
		return listReports(ctx, db, out)
	}
	if pages {
		return listPages(ctx, db, out)
	}

	rep, err := loadReport(ctx, db, id)
	if err != nil {
		return err
	}

	if compareID != 0 {
		previous, err := db.ReportByID(ctx, compareID)
		if err != nil {
			return fmt.Errorf("failed to load report %d: %w", compareID, err)
		}
		writeComparison(out, compareReports(previous, rep))
		return nil
	}

	if outputPath != "" {
		newWriter := func(w io.Writer) (report.Writer, error) {
			return writerFor(format, w, topWords)
		}
		if err := report.WriteFile(outputPath, false, newWriter, rep); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", outputPath)
		return nil
	}

	writer, err := writerFor(format, out, topWords)
	if err != nil {
		return err
	}
	_, err = writer.Write(rep)
	return err
}

// loadReport returns the report with id, or the latest one when id is zero.
func loadReport(ctx context.Context, db *database.CrawlDB, id int64) (*model.Report, error) {
	var (
		rep *model.Report
		err error
	)
	if id == 0 {
		rep, err = db.LatestReport(ctx)
	} else {
		rep, err = db.ReportByID(ctx, id)
	}
	if errors.Is(err, database.ErrNotFound) {
		if id == 0 {
			return nil, errors.New("no reports stored yet (run 'domaincrawl crawl' first)")
		}
		return nil, fmt.Errorf("report %d not found (use --list to see stored reports)", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return rep, nil
}

func listReports(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	history, err := db.ReportHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintln(out, "No reports stored yet.")
		fmt.Fprintln(out, "\nUse 'domaincrawl crawl' to crawl and save a report.")
		return nil
	}

	fmt.Fprintf(out, "Stored reports (%d):\n\n", len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %12s  %14s\n", "ID", "Date", "Unique Pages", "Accepted Pages")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 58))
	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %12d  %14d\n",
			meta.ID,
			meta.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			meta.UniquePages,
			meta.AcceptedPages,
		)
	}
	return nil
}

func listPages(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	pages, err := db.Pages(ctx)
	if err != nil {
		return err
	}

	if len(pages) == 0 {
		fmt.Fprintln(out, "No accepted pages stored.")
		return nil
	}

	fmt.Fprintf(out, "Accepted pages (%d):\n\n", len(pages))
	for _, p := range pages {
		hash := p.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(out, "  #%-5d %7d words  %s  %s\n", p.Seq, p.WordCount, hash, p.URL)
	}
	return nil
}

// comparison is the difference between two reports.
type comparison struct {
	previous, current *model.Report

	// newHosts are hosts counted only in the current report.
	newHosts []string
	// hostDeltas are count changes of hosts present in both reports.
	hostDeltas map[string]int
}

func compareReports(previous, current *model.Report) *comparison {
	c := &comparison{
		previous:   previous,
		current:    current,
		hostDeltas: make(map[string]int),
	}

	before := make(map[string]int, len(previous.Subdomains))
	for _, s := range previous.Subdomains {
		before[s.Host] = s.Count
	}
	for _, s := range current.Subdomains {
		prev, ok := before[s.Host]
		if !ok {
			c.newHosts = append(c.newHosts, s.Host)
			continue
		}
		if s.Count != prev {
			c.hostDeltas[s.Host] = s.Count - prev
		}
	}
	return c
}

func writeComparison(out io.Writer, c *comparison) {
	fmt.Fprintf(out, "Previous report: %s\n", c.previous.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current report:  %s\n\n", c.current.GeneratedAt.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(out, "  %-16s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Fprintf(out, "  %-16s  %-10d  %-10d  %-10s\n", "Unique pages",
		c.previous.UniquePages, c.current.UniquePages, formatDelta(c.current.UniquePages-c.previous.UniquePages))
	fmt.Fprintf(out, "  %-16s  %-10d  %-10d  %-10s\n", "Accepted pages",
		c.previous.AcceptedPages, c.current.AcceptedPages, formatDelta(c.current.AcceptedPages-c.previous.AcceptedPages))
	fmt.Fprintf(out, "  %-16s  %-10d  %-10d  %-10s\n", "Subdomains",
		len(c.previous.Subdomains), len(c.current.Subdomains), formatDelta(len(c.current.Subdomains)-len(c.previous.Subdomains)))

	if len(c.newHosts) > 0 {
		fmt.Fprintf(out, "\nNew subdomains (%d):\n", len(c.newHosts))
		for _, h := range c.newHosts {
			fmt.Fprintf(out, "  [+] %s\n", h)
		}
	}

	if len(c.hostDeltas) > 0 {
		fmt.Fprintf(out, "\nChanged subdomains (%d):\n", len(c.hostDeltas))
		for _, s := range c.current.Subdomains {
			if d, ok := c.hostDeltas[s.Host]; ok {
				fmt.Fprintf(out, "  %s %s\n", s.Host, formatDelta(d))
			}
		}
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
