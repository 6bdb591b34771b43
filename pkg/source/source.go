// Package source loads dataset rows and narrows them down to the records a
// batch should process.
package source

import (
	"context"
	"flag"
	"fmt"

	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/ValerySidorin/styx/pkg/source/jsonl"
	"github.com/ValerySidorin/styx/pkg/source/parquet"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
)

const (
	TypeJSONL   = "jsonl"
	TypeParquet = "parquet"
)

type Config struct {
	Type          string              `yaml:"type"`
	Paths         flagext.StringSlice `yaml:"paths"`
	ScanLimit     int                 `yaml:"scan_limit"`
	Tags          flagext.StringSlice `yaml:"tags"`
	RequireAssets bool                `yaml:"require_assets"`
	MaxRecords    int                 `yaml:"max_records"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Type, flagPrefix+"type", TypeJSONL, `Dataset file format. Supported values are: jsonl, parquet.`)
	f.Var(&c.Paths, flagPrefix+"path", `Dataset file. May be repeated, files are read in order.`)
	f.IntVar(&c.ScanLimit, flagPrefix+"scan-limit", 0, `Maximum number of rows read before filtering. 0 means all rows.`)
	f.Var(&c.Tags, flagPrefix+"tag", `Keep only records carrying at least one of these tags. May be repeated.`)
	f.BoolVar(&c.RequireAssets, flagPrefix+"require-assets", false, `Drop records that reference no image.`)
	f.IntVar(&c.MaxRecords, flagPrefix+"max-records", 0, `Maximum number of records kept after filtering. 0 means no limit.`)
}

func (c *Config) Validate() error {
	if c.Type != TypeJSONL && c.Type != TypeParquet {
		return errors.New(fmt.Sprintf("invalid source type: %q", c.Type))
	}
	if len(c.Paths) == 0 {
		return errors.New("no source paths configured")
	}
	if c.ScanLimit < 0 || c.MaxRecords < 0 {
		return errors.New("source limits must not be negative")
	}
	return nil
}

type Source interface {
	Records(ctx context.Context) ([]record.Record, error)
	Close() error
}

// New opens the configured dataset files. The returned source applies the
// configured filters to everything it reads.
func New(class string, cfg Config, log log.Logger) (Source, error) {
	if _, err := record.New(class); err != nil {
		return nil, errors.Wrap(err, "source init")
	}

	var src Source
	switch cfg.Type {
	case TypeJSONL, "":
		src = jsonl.New(cfg.Paths, class, cfg.ScanLimit)
	case TypeParquet:
		s, err := parquet.New(cfg.Paths, class, cfg.ScanLimit)
		if err != nil {
			return nil, errors.Wrap(err, "source init")
		}
		src = s
	default:
		return nil, errors.New(fmt.Sprintf("invalid source type: %q", cfg.Type))
	}

	return &filtered{
		Source: src,
		cfg:    cfg,
		log:    log,
	}, nil
}

type filtered struct {
	Source

	cfg Config
	log log.Logger
}

func (f *filtered) Records(ctx context.Context) ([]record.Record, error) {
	recs, err := f.Source.Records(ctx)
	if err != nil {
		return nil, err
	}

	res := Filter(recs, f.cfg.Tags, f.cfg.RequireAssets, f.cfg.MaxRecords)
	_ = level.Info(f.log).Log("msg", "records loaded", "scanned", len(recs), "kept", len(res))

	return res, nil
}
