// Package styx wires the image fetcher together: it loads records from the
// configured dataset, fetches their images with a bounded worker pool and
// hands the outcomes to the optional journal, mirror and notification
// backends.
package styx

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ValerySidorin/styx/pkg/fetcher"
	"github.com/ValerySidorin/styx/pkg/journal"
	"github.com/ValerySidorin/styx/pkg/locator"
	"github.com/ValerySidorin/styx/pkg/objstore"
	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/ValerySidorin/styx/pkg/queue"
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/ValerySidorin/styx/pkg/runner"
	"github.com/ValerySidorin/styx/pkg/source"
	gklog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type Styx struct {
	cfg Config
	log gklog.Logger
	dir string

	source   source.Source
	runner   *runner.Runner
	pipeline runner.Pipeline

	journal journal.Store
	mirror  *objstore.Mirror
	pub     queue.Publisher
}

// New validates cfg, prepares the output directory and connects every
// configured backend. Any error here is fatal: nothing has been fetched yet.
func New(ctx context.Context, cfg Config, reg prometheus.Registerer, log gklog.Logger) (*Styx, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "styx validate config")
	}

	log = gklog.With(log, "class", cfg.Class)

	subdir, err := record.Subdir(cfg.Class)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(cfg.OutputDir, subdir)
	if err := ensureWritable(dir); err != nil {
		return nil, err
	}

	loc, err := locator.New(cfg.Class, cfg.Locator)
	if err != nil {
		return nil, errors.Wrap(err, "styx init locator")
	}

	f, err := fetcher.New(cfg.Fetcher, gklog.With(log, "component", "fetcher"))
	if err != nil {
		return nil, errors.Wrap(err, "styx init fetcher")
	}

	s := &Styx{
		cfg:      cfg,
		log:      log,
		dir:      dir,
		runner:   runner.New(cfg.Runner, reg, gklog.With(log, "component", "runner")),
		pipeline: runner.NewPipeline(loc, f, dir, cfg.Fetcher.Timeout),
	}

	if err := s.connect(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *Styx) connect(ctx context.Context) error {
	src, err := source.New(s.cfg.Class, s.cfg.Source, gklog.With(s.log, "component", "source"))
	if err != nil {
		return errors.Wrap(err, "styx init source")
	}
	s.source = src

	j, err := journal.New(ctx, s.cfg.Journal, s.log)
	if err != nil {
		return errors.Wrap(err, "styx connect to journal")
	}
	s.journal = j

	if s.cfg.ObjStore.Store != "" {
		w, err := objstore.NewWriter(ctx, s.cfg.ObjStore)
		if err != nil {
			return errors.Wrap(err, "styx connect to obj store")
		}
		s.mirror = objstore.NewMirror(w, s.cfg.Class, s.cfg.ObjStore.Concurrency, gklog.With(s.log, "component", "mirror"))
	}

	if s.cfg.Queue.Type != "" {
		pub, err := queue.NewPublisher(s.cfg.Queue, gklog.With(s.log, "component", "queue"))
		if err != nil {
			return errors.Wrap(err, "styx connect to queue")
		}
		s.pub = pub
	}

	return nil
}

// Dir is the directory images of the configured class are stored in.
func (s *Styx) Dir() string {
	return s.dir
}

// Run loads the configured dataset and processes it. Only loading errors are
// returned, per-record problems end up in the summary.
func (s *Styx) Run(ctx context.Context) (outcome.Summary, error) {
	recs, err := s.source.Records(ctx)
	if err != nil {
		return outcome.Summary{}, errors.Wrap(err, "styx load records")
	}

	return s.RunRecords(ctx, recs), nil
}

func (s *Styx) RunRecords(ctx context.Context, recs []record.Record) outcome.Summary {
	_ = level.Info(s.log).Log("msg", "downloading images", "records", len(recs), "dir", s.dir)

	outs := runner.Outcomes(s.runner.Run(ctx, recs, s.pipeline))
	summary := outcome.Summarize(outs)

	// Backends still get the outcomes of a cancelled batch.
	ctx = context.WithoutCancel(ctx)

	if err := s.journal.Append(ctx, journal.Entries(s.cfg.Class, outs, time.Now())); err != nil {
		_ = level.Error(s.log).Log("msg", "failed to journal outcomes", "err", err)
	}

	if s.mirror != nil {
		n, err := s.mirror.Upload(ctx, outs)
		if err != nil {
			_ = level.Error(s.log).Log("msg", "failed to mirror some images", "uploaded", n, "err", err)
		} else {
			_ = level.Info(s.log).Log("msg", "images mirrored", "uploaded", n)
		}
	}

	if s.pub != nil {
		n, err := queue.Notify(s.pub, s.cfg.Queue.Channel, s.cfg.Class, outs)
		if err != nil {
			_ = level.Error(s.log).Log("msg", "failed to notify downloaded images", "sent", n, "err", err)
		}
	}

	_ = level.Info(s.log).Log("msg", "batch finished",
		"downloaded", summary.Downloaded,
		"skipped_existing", summary.SkippedExisting,
		"skipped_no_asset", summary.SkippedNoAsset,
		"failed", summary.Failed,
		"total", summary.Total)

	return summary
}

// Close releases every backend. Errors are logged, the first one is returned.
func (s *Styx) Close(ctx context.Context) error {
	var first error
	keep := func(err error) {
		if err == nil {
			return
		}
		_ = level.Warn(s.log).Log("msg", "styx close", "err", err)
		if first == nil {
			first = err
		}
	}

	if s.source != nil {
		keep(s.source.Close())
	}
	if s.journal != nil {
		keep(s.journal.Dispose(ctx))
	}
	if s.pub != nil {
		keep(s.pub.Close())
	}

	return first
}

func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "styx create output directory")
	}

	f, err := os.CreateTemp(dir, ".styx-probe-*")
	if err != nil {
		return errors.Wrap(err, "styx output directory is not writable")
	}
	name := f.Name()
	_ = f.Close()

	if err := os.Remove(name); err != nil {
		return errors.Wrap(err, "styx remove write probe")
	}

	return nil
}
