package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/domaincrawl/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "domaincrawl.db"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CrawlDB provides SQLite-based storage for crawl state and reports.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	now func() time.Time
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	var dsn string
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Frontier state; rowid order is insertion order
	CREATE TABLE IF NOT EXISTS urls (
		url TEXT PRIMARY KEY,
		completed INTEGER NOT NULL DEFAULT 0,
		added_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_urls_completed ON urls(completed);

	-- Pages whose content was accepted
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		content_hash TEXT NOT NULL,
		accepted_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(content_hash);

	-- Final reports stored as JSON
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generated_at TEXT NOT NULL,
		unique_pages INTEGER NOT NULL,
		accepted_pages INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// AddURL stores url as pending. A URL that is already stored keeps its state.
func (cdb *CrawlDB) AddURL(ctx context.Context, url string) error {
	query := `INSERT INTO urls (url, completed, added_at) VALUES (?, 0, ?) ON CONFLICT(url) DO NOTHING`

	if _, err := cdb.db.ExecContext(ctx, query, url, formatTimestamp(cdb.now())); err != nil {
		return fmt.Errorf("failed to add url: %w", err)
	}
	return nil
}

// CompleteURL marks url as completed.
func (cdb *CrawlDB) CompleteURL(ctx context.Context, url string) error {
	if _, err := cdb.db.ExecContext(ctx, `UPDATE urls SET completed = 1 WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to complete url: %w", err)
	}
	return nil
}

// URLs returns every stored URL in insertion order.
func (cdb *CrawlDB) URLs(ctx context.Context) ([]model.URLRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT url, completed, added_at FROM urls ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var records []model.URLRecord
	for rows.Next() {
		var (
			r       model.URLRecord
			addedAt string
		)
		if err := rows.Scan(&r.URL, &r.Completed, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		r.AddedAt = parseTimestamp(addedAt)
		records = append(records, r)
	}

	return records, rows.Err()
}

// ResetURLs removes the frontier state and the accepted page records so a
// crawl can start again from its seeds. Stored reports are kept.
func (cdb *CrawlDB) ResetURLs(ctx context.Context) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM urls`, `DELETE FROM pages`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset crawl state: %w", err)
		}
	}
	return tx.Commit()
}

// RecordPage inserts or updates an accepted page.
func (cdb *CrawlDB) RecordPage(ctx context.Context, page *model.Page) error {
	query := `
	INSERT INTO pages (url, seq, word_count, content_hash, accepted_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		seq = excluded.seq,
		word_count = excluded.word_count,
		content_hash = excluded.content_hash,
		accepted_at = excluded.accepted_at
	`

	_, err := cdb.db.ExecContext(ctx, query,
		page.URL,
		page.Seq,
		page.WordCount,
		page.Hash,
		formatTimestamp(page.AcceptedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}
	return nil
}

// Pages returns all accepted pages ordered by acceptance sequence.
func (cdb *CrawlDB) Pages(ctx context.Context) ([]model.Page, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT seq, url, word_count, content_hash, accepted_at
	FROM pages
	ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var (
			p          model.Page
			acceptedAt string
		)
		if err := rows.Scan(&p.Seq, &p.URL, &p.WordCount, &p.Hash, &acceptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.AcceptedAt = parseTimestamp(acceptedAt)
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// SaveReport stores a crawl report and returns its ID.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO reports (generated_at, unique_pages, accepted_pages, report_json)
	VALUES (?, ?, ?, ?)
	`

	res, err := cdb.db.ExecContext(ctx, query,
		formatTimestamp(report.GeneratedAt),
		report.UniquePages,
		report.AcceptedPages,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}
	return id, nil
}

// LatestReport returns the most recently stored report.
// It returns ErrNotFound when no report has been stored.
func (cdb *CrawlDB) LatestReport(ctx context.Context) (*model.Report, error) {
	return cdb.queryReport(ctx, `SELECT report_json FROM reports ORDER BY id DESC LIMIT 1`)
}

// ReportByID returns the report with the given ID.
// It returns ErrNotFound when no such report exists.
func (cdb *CrawlDB) ReportByID(ctx context.Context, id int64) (*model.Report, error) {
	return cdb.queryReport(ctx, `SELECT report_json FROM reports WHERE id = ?`, id)
}

func (cdb *CrawlDB) queryReport(ctx context.Context, query string, args ...any) (*model.Report, error) {
	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ReportMetadata contains summary information about a stored report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time

	// UniquePages is the number of distinct URLs observed.
	UniquePages int

	// AcceptedPages is the number of pages whose content was accepted.
	AcceptedPages int
}

// ReportHistory returns metadata of all stored reports, newest first.
func (cdb *CrawlDB) ReportHistory(ctx context.Context) ([]ReportMetadata, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, generated_at, unique_pages, accepted_pages
	FROM reports
	ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var (
			meta        ReportMetadata
			generatedAt string
		)
		if err := rows.Scan(&meta.ID, &generatedAt, &meta.UniquePages, &meta.AcceptedPages); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.GeneratedAt = parseTimestamp(generatedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that may be stored.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s using the known formats and returns the zero
// time if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
