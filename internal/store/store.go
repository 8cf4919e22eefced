package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// Drivers accepted by Open.
const (
	DriverPG       = "pg"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and tunes the database connection.
type Config struct {
	Driver         string
	DSN            string
	Debug          bool
	ConnectTimeout time.Duration
}

// Store persists documents and their page chunks.
type Store struct {
	db  *bun.DB
	log *slog.Logger
}

// Open connects to the configured database and waits for it to answer a ping.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	sqldb, dialect, err := openSQL(cfg)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, dialect)
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	s := &Store{db: db, log: log}
	if err := s.pingWithRetry(ctx, cfg.ConnectTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	log.Info("database connected", "driver", cfg.Driver)
	return s, nil
}

// New wraps an existing bun database.
func New(db *bun.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

func openSQL(cfg Config) (*sql.DB, schema.Dialect, error) {
	switch cfg.Driver {
	case DriverPG, "":
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))), pgdialect.New(), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return sqldb, pgdialect.New(), nil
	case DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One connection keeps an in-memory database alive and serializes writers.
		sqldb.SetMaxOpenConns(1)
		return sqldb, sqlitedialect.New(), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// pingWithRetry pings with exponential backoff for at most timeout.
func (s *Store) pingWithRetry(ctx context.Context, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	operation := func() error {
		err := s.Health(ctx)
		if err != nil {
			s.log.Warn("database ping failed", "error", err)
		}
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Document)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	if _, err := s.db.NewCreateTable().
		Model((*DocumentChunk)(nil)).
		IfNotExists().
		ForeignKey(`("document_id") REFERENCES "documents" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create document_chunks table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*DocumentChunk)(nil)).
		Index("document_chunks_document_page_idx").
		Unique().
		IfNotExists().
		Column("document_id", "page_number").
		Exec(ctx); err != nil {
		return fmt.Errorf("create chunk page index: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*Document)(nil)).
		Index("documents_slug_idx").
		IfNotExists().
		Column("slug").
		Exec(ctx); err != nil {
		return fmt.Errorf("create slug index: %w", err)
	}
	return nil
}

// CreateDocument writes doc and all of doc.Chunks in one transaction.
func (s *Store) CreateDocument(ctx context.Context, doc *Document) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(doc).Exec(ctx); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if len(doc.Chunks) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&doc.Chunks).Exec(ctx); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
}

// ListDocuments returns every document without chunks, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]*Document, error) {
	docs := []*Document{}
	err := s.db.NewSelect().
		Model(&docs).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// GetDocument returns a document with its chunks ordered by page number.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	doc := new(Document)
	err := s.db.NewSelect().
		Model(doc).
		Relation("Chunks", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("page_number ASC")
		}).
		Where("d.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// Health performs a single ping.
func (s *Store) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
