package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaincrawl/internal/config"
	"github.com/nao1215/domaincrawl/internal/crawler"
	"github.com/nao1215/domaincrawl/internal/database"
	"github.com/nao1215/domaincrawl/internal/dedup"
	"github.com/nao1215/domaincrawl/internal/extract"
	"github.com/nao1215/domaincrawl/internal/fetch"
	"github.com/nao1215/domaincrawl/internal/frontier"
	"github.com/nao1215/domaincrawl/internal/model"
	"github.com/nao1215/domaincrawl/internal/pipeline"
	"github.com/nao1215/domaincrawl/internal/report"
	"github.com/nao1215/domaincrawl/internal/stats"
	"github.com/nao1215/domaincrawl/internal/urlfilter"
)

var (
	_ frontier.Store    = (*database.CrawlDB)(nil)
	_ pipeline.PageSink = (*database.CrawlDB)(nil)
	_ pipeline.PageSink = (*report.PageLog)(nil)
	_ crawler.Frontier  = (*frontier.Frontier)(nil)
	_ crawler.Fetcher   = (*fetch.Client)(nil)
	_ crawler.Processor = (*pipeline.Pipeline)(nil)
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the allowed domains and write a report",
		Long: `Crawl fetches pages starting from the seed URLs, follows links that stay
inside the allowed domains, and skips exact and near-duplicate pages.

The crawl stops when no URL is left or on Ctrl-C. In both cases the
report is written and stored in the database. Unfinished URLs are picked
up by the next run unless --restart is given.

Examples:
  # Crawl the default UCI domains with one worker
  domaincrawl crawl

  # Four workers, one second between fetches per worker
  domaincrawl crawl --workers 4 --delay 1s

  # Start from a single seed and write a Markdown report
  domaincrawl crawl --seed https://www.ics.uci.edu -o report.md --format markdown

  # Route requests through a SOCKS5 caching proxy
  domaincrawl crawl --proxy 127.0.0.1:1080`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringSlice("seed", nil, "Seed URL (repeatable; replaces configured seeds)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of concurrent workers")
	cmd.Flags().DurationP("delay", "d", config.DefaultPolitenessDelay, "Pause per worker after each page")
	cmd.Flags().BoolP("restart", "r", false, "Discard saved crawl state and start from the seeds")

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port)")

	cmd.Flags().Int("min-words", config.DefaultMinWords, "Minimum words for a page to count")
	cmd.Flags().Int("max-words", config.DefaultMaxWords, "Maximum words for a page to count")
	cmd.Flags().Float64("threshold", config.DefaultSimilarityThreshold, "Near-duplicate token overlap threshold")
	cmd.Flags().Int("top", config.DefaultTopWords, "Number of most common words to report")

	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")
	cmd.Flags().StringP("output", "o", config.DefaultReportFile, "Report file path")
	cmd.Flags().StringP("format", "f", config.DefaultReportFormat, "Report format: text, markdown or json")
	cmd.Flags().Bool("append", false, "Append to the report file instead of overwriting it")
	cmd.Flags().Bool("print", false, "Also print the report to stdout")
	cmd.Flags().String("page-log", config.DefaultPageLogFile, "Per-page content log (empty disables it)")
	cmd.Flags().Bool("append-page-log", false, "Append to the page log instead of overwriting it")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig layers the configuration file and the flags the user set
// over the defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	flags := cmd.Flags()
	var errs []error
	set := func(name string, apply func() error) {
		if flags.Changed(name) {
			errs = append(errs, apply())
		}
	}

	set("seed", func() (err error) { cfg.Seeds, err = flags.GetStringSlice("seed"); return })
	set("workers", func() (err error) { cfg.Workers, err = flags.GetInt("workers"); return })
	set("delay", func() (err error) { cfg.PolitenessDelay, err = flags.GetDuration("delay"); return })
	set("restart", func() (err error) { cfg.Restart, err = flags.GetBool("restart"); return })
	set("timeout", func() (err error) { cfg.Timeout, err = flags.GetDuration("timeout"); return })
	set("user-agent", func() (err error) { cfg.UserAgent, err = flags.GetString("user-agent"); return })
	set("proxy", func() (err error) { cfg.ProxyAddress, err = flags.GetString("proxy"); return })
	set("min-words", func() (err error) { cfg.MinWords, err = flags.GetInt("min-words"); return })
	set("max-words", func() (err error) { cfg.MaxWords, err = flags.GetInt("max-words"); return })
	set("threshold", func() (err error) { cfg.SimilarityThreshold, err = flags.GetFloat64("threshold"); return })
	set("top", func() (err error) { cfg.TopWords, err = flags.GetInt("top"); return })
	set("db-dir", func() (err error) { cfg.DBDir, err = flags.GetString("db-dir"); return })
	set("output", func() (err error) { cfg.ReportFile, err = flags.GetString("output"); return })
	set("format", func() (err error) { cfg.ReportFormat, err = flags.GetString("format"); return })
	set("append", func() (err error) { cfg.AppendReport, err = flags.GetBool("append"); return })
	set("print", func() (err error) { cfg.PrintReport, err = flags.GetBool("print"); return })
	set("page-log", func() (err error) { cfg.PageLogFile, err = flags.GetString("page-log"); return })
	set("append-page-log", func() (err error) { cfg.AppendPageLog, err = flags.GetBool("append-page-log"); return })

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runCrawl wires the crawl components together, runs the workers until the
// frontier is exhausted or ctx is cancelled, and then writes the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	format, err := report.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return err
	}

	validator, err := urlfilter.NewValidator(
		urlfilter.WithDomains(cfg.Domains),
		urlfilter.WithTraps(cfg.Traps),
		urlfilter.WithDeniedExtensions(cfg.DeniedExtensions),
		urlfilter.WithIgnorePatterns(cfg.IgnorePatterns),
	)
	if err != nil {
		return fmt.Errorf("invalid URL filter: %w", err)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	statsOpts := []stats.Option{}
	if len(cfg.StopWords) > 0 {
		statsOpts = append(statsOpts, stats.WithStopWords(cfg.StopWords))
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithExtractor(extract.New(extract.WithLogger(logger))),
		pipeline.WithEngine(dedup.NewEngine(
			dedup.WithTextCapacity(cfg.TextCacheSize),
			dedup.WithTokenCapacity(cfg.TokenCacheSize),
			dedup.WithThreshold(cfg.SimilarityThreshold),
		)),
		pipeline.WithAggregator(stats.New(statsOpts...)),
		pipeline.WithWordBounds(cfg.MinWords, cfg.MaxWords),
		pipeline.WithPageSink(db),
	}

	if cfg.PageLogFile != "" {
		pageLog, err := report.OpenPageLog(cfg.PageLogFile, cfg.AppendPageLog, cfg.PageLogSeparator)
		if err != nil {
			return err
		}
		defer func() {
			if err := pageLog.Close(); err != nil {
				logger.Error("failed to close page log", "error", err)
			}
		}()
		pipelineOpts = append(pipelineOpts, pipeline.WithPageSink(pageLog))
	}

	p := pipeline.New(validator, pipelineOpts...)

	f, err := frontier.Open(ctx, cfg.Seeds,
		frontier.WithStore(db),
		frontier.WithRestart(cfg.Restart),
		frontier.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to open frontier: %w", err)
	}

	client, err := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithMaxRedirects(cfg.MaxRedirects),
		fetch.WithHeaders(cfg.Headers),
		fetch.WithProxy(cfg.ProxyAddress),
		fetch.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	c := crawler.New(f, client, p,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithDelay(cfg.PolitenessDelay),
		crawler.WithLogger(logger),
	)

	logger.Info("frontier ready", "known", f.Known(), "pending", f.Pending(), "restart", cfg.Restart)
	startTime := time.Now()

	tally, runErr := c.Run(ctx)
	interrupted := runErr != nil && ctx.Err() != nil

	// The report is flushed even after an interrupt, with a context that
	// is no longer cancelled.
	flushCtx := context.WithoutCancel(ctx)
	rep := p.Report(cfg.TopWords)
	if err := saveReport(flushCtx, cfg, format, db, rep, logger, out); err != nil {
		return errors.Join(runErr, err)
	}

	elapsed := time.Since(startTime).Round(time.Millisecond)
	fmt.Fprintf(out, "Fetched %d pages (%d failed) in %s\n", tally.Fetched, tally.Failed, elapsed)
	fmt.Fprintf(out, "Unique pages: %d, accepted: %d\n", rep.UniquePages, rep.AcceptedPages)
	fmt.Fprintf(out, "Report written to %s\n", cfg.ReportFile)

	if interrupted {
		fmt.Fprintf(out, "Crawl interrupted; %d URLs remain for the next run\n", f.Pending()+f.InFlight())
		return nil
	}
	return runErr
}

// saveReport writes the report file and stores the report in the database.
// With PrintReport set the report is copied to out as well.
func saveReport(ctx context.Context, cfg *config.Config, format report.Format, db *database.CrawlDB, rep *model.Report, logger *slog.Logger, out io.Writer) error {
	newWriter := func(w io.Writer) (report.Writer, error) {
		fileWriter, err := writerFor(format, w, cfg.TopWords)
		if err != nil || !cfg.PrintReport {
			return fileWriter, err
		}
		outWriter, err := writerFor(format, out, cfg.TopWords)
		if err != nil {
			return nil, err
		}
		return report.NewMultiWriter(fileWriter, outWriter), nil
	}
	if err := report.WriteFile(cfg.ReportFile, cfg.AppendReport, newWriter, rep); err != nil {
		return err
	}

	id, err := db.SaveReport(ctx, rep)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info("report saved", "id", id, "file", cfg.ReportFile)
	return nil
}

// writerFor returns the report writer for format, stamped with the
// binary's version.
func writerFor(format report.Format, w io.Writer, topWords int) (report.Writer, error) {
	return report.NewWriter(format, w, topWords, getVersion())
}
