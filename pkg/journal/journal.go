// Package journal keeps a durable record of batch outcomes.
package journal

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ValerySidorin/styx/pkg/journal/duckdb"
	"github.com/ValerySidorin/styx/pkg/journal/pg"
	"github.com/ValerySidorin/styx/pkg/journal/record"
	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	StorePg     = "pg"
	StoreDuckDB = "duckdb"
)

type Config struct {
	Store       string `yaml:"store"`
	StoreConfig `yaml:",inline"`
}

type StoreConfig struct {
	Pg     pg.Config     `yaml:"pg"`
	DuckDB duckdb.Config `yaml:"duckdb"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	c.Pg.RegisterFlags(flagPrefix, f)
	c.DuckDB.RegisterFlags(flagPrefix, f)

	f.StringVar(&c.Store, flagPrefix+"store", "", `Store outcomes are journaled to. Supported values are: pg, duckdb. Empty disables the journal.`)
}

func (c *Config) Validate() error {
	switch c.Store {
	case "", StoreDuckDB:
		return nil
	case StorePg:
		if c.Pg.Conn == "" {
			return errors.New("journal pg connection string is empty")
		}
		return nil
	}

	return errors.New(fmt.Sprintf("invalid journal store: %q", c.Store))
}

type Store interface {
	Append(ctx context.Context, entries []record.Entry) error
	Dispose(ctx context.Context) error
}

func New(ctx context.Context, cfg Config, logger log.Logger) (Store, error) {
	logger = log.With(logger, "component", "journal", "store", cfg.Store)

	switch cfg.Store {
	case "":
		return nopStore{}, nil
	case StorePg:
		return pg.NewStore(ctx, cfg.Pg, logger)
	case StoreDuckDB:
		return duckdb.NewStore(ctx, cfg.DuckDB, logger)
	}

	return nil, errors.New(fmt.Sprintf("invalid journal store: %q", cfg.Store))
}

type nopStore struct{}

func (nopStore) Append(context.Context, []record.Entry) error { return nil }
func (nopStore) Dispose(context.Context) error                { return nil }

// Entries converts the outcomes of one batch into journal rows stamped with at.
func Entries(class string, outs []outcome.Outcome, at time.Time) []record.Entry {
	return lo.Map(outs, func(o outcome.Outcome, _ int) record.Entry {
		return record.New(class, o, at)
	})
}
