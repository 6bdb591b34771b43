package runner

import (
	"context"
	"flag"
	"sync"
	"time"

	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/atomic"
)

const (
	DefaultConcurrency = 10
)

type Config struct {
	Concurrency      int           `yaml:"concurrency"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.IntVar(&c.Concurrency, flagPrefix+"concurrency", DefaultConcurrency, `Number of records processed in parallel.`)
	f.DurationVar(&c.ProgressInterval, flagPrefix+"progress-interval", 5*time.Second, `How often batch progress is logged. 0 disables progress logging.`)
}

func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.New("runner concurrency must be at least 1")
	}
	return nil
}

// Pipeline turns one record into its outcome. It runs entirely inside one
// worker.
type Pipeline func(ctx context.Context, rec record.Record) outcome.Outcome

// Result pairs an outcome with the position of its record in the input.
type Result struct {
	Index   int
	Outcome outcome.Outcome
}

type Runner struct {
	cfg     Config
	log     log.Logger
	metrics *metrics

	processed *atomic.Int64
}

func New(cfg Config, reg prometheus.Registerer, log log.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Runner{
		cfg:       cfg,
		log:       log,
		metrics:   newMetrics(reg),
		processed: atomic.NewInt64(0),
	}
}

// Run applies p to every record with at most cfg.Concurrency records in
// flight. Results come back in completion order. When ctx is cancelled no
// new records are started and the results of unstarted records are omitted,
// so the returned slice can be shorter than recs.
func (r *Runner) Run(ctx context.Context, recs []record.Record, p Pipeline) []Result {
	if len(recs) == 0 {
		return []Result{}
	}

	r.processed.Store(0)

	jobs := make(chan int)
	results := make(chan Result, len(recs))

	go func() {
		defer close(jobs)
		for i := range recs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	workers := lo.Min([]int{r.cfg.Concurrency, len(recs)})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results <- Result{Index: i, Outcome: r.process(ctx, recs[i], p)}
			}
		}()
	}

	stop := make(chan struct{})
	if r.cfg.ProgressInterval > 0 {
		go r.reportProgress(len(recs), stop)
	}

	wg.Wait()
	close(stop)
	close(results)

	res := make([]Result, 0, len(recs))
	for v := range results {
		res = append(res, v)
	}

	if omitted := len(recs) - len(res); omitted > 0 {
		_ = level.Warn(r.log).Log("msg", "batch cancelled, unstarted records omitted",
			"completed", len(res), "omitted", omitted, "err", ctx.Err())
	}

	return res
}

func (r *Runner) process(ctx context.Context, rec record.Record, p Pipeline) outcome.Outcome {
	r.metrics.inFlight.Inc()
	defer r.metrics.inFlight.Dec()

	start := time.Now()

	var o outcome.Outcome
	var pc panics.Catcher
	pc.Try(func() {
		o = p(ctx, rec)
	})
	if rp := pc.Recovered(); rp != nil {
		o = outcome.NewFailedTransport("", "", errors.Wrap(rp.AsError(), "runner pipeline panic")).
			WithID(identifier(rec))
	}

	r.metrics.duration.Observe(time.Since(start).Seconds())
	r.metrics.outcomes.WithLabelValues(o.Kind().String()).Inc()
	r.processed.Inc()

	r.logOutcome(o)

	return o
}

func (r *Runner) logOutcome(o outcome.Outcome) {
	switch {
	case o.Failed():
		_ = level.Warn(r.log).Log("msg", o.String(), "id", o.ID(), "url", o.URL(), "err", o.Err())
	case o.Kind() == outcome.Downloaded:
		_ = level.Debug(r.log).Log("msg", o.String(), "id", o.ID(), "path", o.Path(), "bytes", o.Bytes())
	default:
		_ = level.Debug(r.log).Log("msg", o.String(), "id", o.ID())
	}
}

func (r *Runner) reportProgress(total int, stop <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = level.Info(r.log).Log("msg", "batch progress", "processed", r.processed.Load(), "total", total)
		case <-stop:
			return
		}
	}
}

// Outcomes drops the indices of results.
func Outcomes(results []Result) []outcome.Outcome {
	return lo.Map(results, func(item Result, _ int) outcome.Outcome {
		return item.Outcome
	})
}

func identifier(rec record.Record) string {
	if rec == nil {
		return ""
	}
	return rec.Identifier()
}
