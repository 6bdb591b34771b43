package pg

import (
	"context"
	"flag"
	"fmt"

	"github.com/ValerySidorin/styx/pkg/journal/record"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type Config struct {
	Conn  string `yaml:"conn"`
	Table string `yaml:"table"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Conn, flagPrefix+"pg.conn", "", `Postgres connection string`)
	f.StringVar(&c.Table, flagPrefix+"pg.table", "journal", `Postgres table outcomes are appended to`)
}

type Store struct {
	cfg  Config
	log  log.Logger
	conn *pgx.Conn
}

func NewStore(ctx context.Context, cfg Config, log log.Logger) (*Store, error) {
	if cfg.Table == "" {
		cfg.Table = "journal"
	}

	conn, err := pgx.Connect(ctx, cfg.Conn)
	if err != nil {
		return nil, errors.Wrap(err, "pg journal store init conn")
	}

	q := fmt.Sprintf(`create table if not exists %s
	(class text not null, identifier text not null, url text not null, path text not null,
	kind text not null, status integer not null, error text not null, created_at timestamptz not null);`,
		pgx.Identifier{cfg.Table}.Sanitize())
	if _, err := conn.Exec(ctx, q); err != nil {
		_ = conn.Close(ctx)
		return nil, errors.Wrap(err, "pg journal store init table")
	}

	return &Store{
		cfg:  cfg,
		log:  log,
		conn: conn,
	}, nil
}

// Append inserts all entries in one transaction.
func (s *Store) Append(ctx context.Context, entries []record.Entry) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "pg journal store begin transaction")
	}

	q := fmt.Sprintf(`insert into %s(class, identifier, url, path, kind, status, error, created_at)
	values($1, $2, $3, $4, $5, $6, $7, $8);`, pgx.Identifier{s.cfg.Table}.Sanitize())

	for _, e := range entries {
		if _, err := tx.Exec(ctx, q, e.Class, e.ID, e.URL, e.Path, e.Kind, e.Status, e.Error, e.CreatedAt); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				_ = level.Error(s.log).Log("msg", "pg journal store rollback transaction", "err", rbErr)
			}
			return errors.Wrap(err, "pg journal store insert entry")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "pg journal store commit transaction")
	}

	return nil
}

func (s *Store) Dispose(ctx context.Context) error {
	if err := s.conn.Close(ctx); err != nil {
		return errors.Wrap(err, "pg journal store close connection")
	}

	return nil
}
