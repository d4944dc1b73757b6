package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver, registered as "sqlite"

	"quotes-hq/bff/pkg/audit"
)

// SQL driver names.
const (
	DriverSQLite  = "sqlite"
	DriverSQLite3 = "sqlite3"
)

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Driver is DriverSQLite (modernc.org/sqlite) or DriverSQLite3
	// (github.com/mattn/go-sqlite3).
	// Default: DriverSQLite
	Driver string

	// Path is the database file, or ":memory:".
	Path string

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait for a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStorage stores records in a SQLite database through either driver.
type SQLiteStorage struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, creating the file, its directory
// and the schema when missing.
func NewSQLiteStorage(cfg SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.Path == "" {
		return nil, audit.NewStorageError(cfg.Driver, "open", errors.New("path cannot be empty"))
	}
	if cfg.Driver != DriverSQLite && cfg.Driver != DriverSQLite3 {
		return nil, audit.NewStorageError(cfg.Driver, "open", fmt.Errorf("unknown driver %q", cfg.Driver))
	}

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, audit.NewStorageError(cfg.Driver, "mkdir", err)
			}
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, audit.NewStorageError(cfg.Driver, "open", err)
	}

	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: slog.Default().With("component", "audit.storage"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("audit storage initialized",
		"driver", cfg.Driver,
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError(s.config.Driver, "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return audit.NewStorageError(s.config.Driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return audit.NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store inserts a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_records (id, action, quote_id, author, quote, book, status, request_id, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Action, record.QuoteID, record.Author, record.Quote, record.Book,
		record.Status, record.RequestID, record.Created.UnixNano(),
	)
	if err != nil {
		return audit.NewStorageError(s.config.Driver, "store", err)
	}
	return nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns every record.
func (s *SQLiteStorage) List(ctx context.Context, limit int) ([]*audit.Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, quote_id, author, quote, book, status, request_id, created
		FROM audit_records
		ORDER BY created DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "list", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var (
			record    audit.Record
			quoteID   sql.NullInt64
			author    sql.NullString
			quote     sql.NullString
			book      sql.NullString
			requestID sql.NullString
			created   int64
		)
		if err := rows.Scan(&record.ID, &record.Action, &quoteID, &author, &quote, &book,
			&record.Status, &requestID, &created); err != nil {
			return nil, audit.NewStorageError(s.config.Driver, "scan", err)
		}
		record.QuoteID = int(quoteID.Int64)
		record.Author = author.String
		record.Quote = quote.String
		record.Book = book.String
		record.RequestID = requestID.String
		record.Created = time.Unix(0, created).UTC()
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "list", err)
	}

	return records, nil
}

// DeleteOlderThan removes records created before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_records WHERE created < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "delete", err)
	}
	return result.RowsAffected()
}

// Count returns the number of records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_records`).Scan(&count); err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "count", err)
	}
	return count, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
