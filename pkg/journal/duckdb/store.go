package duckdb

import (
	"context"
	"database/sql"
	"flag"

	"github.com/ValerySidorin/styx/pkg/journal/record"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS journal (
    class      VARCHAR NOT NULL,
    identifier VARCHAR NOT NULL,
    url        VARCHAR NOT NULL,
    path       VARCHAR NOT NULL,
    kind       VARCHAR NOT NULL,
    status     INTEGER NOT NULL,
    error      VARCHAR NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_identifier ON journal (class, identifier);
`

type Config struct {
	Path string `yaml:"path"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Path, flagPrefix+"duckdb.path", "styx.duckdb", `DuckDB database file. Empty means in-memory.`)
}

type Store struct {
	db  *sql.DB
	log log.Logger
}

func NewStore(ctx context.Context, cfg Config, log log.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "duckdb journal store open")
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "duckdb journal store init schema")
	}

	return &Store{
		db:  db,
		log: log,
	}, nil
}

func (s *Store) Append(ctx context.Context, entries []record.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "duckdb journal store begin transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal (class, identifier, url, path, kind, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		s.rollback(tx)
		return errors.Wrap(err, "duckdb journal store prepare insert")
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Class, e.ID, e.URL, e.Path, e.Kind, e.Status, e.Error, e.CreatedAt); err != nil {
			s.rollback(tx)
			return errors.Wrap(err, "duckdb journal store insert entry")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "duckdb journal store commit transaction")
	}

	return nil
}

func (s *Store) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		_ = level.Error(s.log).Log("msg", "duckdb journal store rollback transaction", "err", err)
	}
}

func (s *Store) Dispose(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "duckdb journal store close")
	}

	return nil
}
