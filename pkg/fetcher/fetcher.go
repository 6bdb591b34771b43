// Package fetcher downloads a single image and persists it to disk.
//
// Every fetch first checks the destination: an existing file short-circuits
// into SkippedExisting without touching the network. Otherwise one GET is
// issued under the given timeout and a 200 body is written to a temporary
// file next to the destination, which is then linked into place. Any other
// status or transport problem is reported as an outcome, never returned as
// an error.
package fetcher

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/go-kit/log"
	"github.com/pkg/errors"
)

const (
	EngineHTTP = "http"
	EngineGrab = "grab"

	DefaultTimeout = 10 * time.Second
)

type Config struct {
	Engine     string        `yaml:"engine"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	BufferSize int           `yaml:"buffer_size"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Engine, flagPrefix+"engine", EngineHTTP, `Download engine. Supported values are: http, grab.`)
	f.DurationVar(&c.Timeout, flagPrefix+"timeout", DefaultTimeout, `Timeout of a single image request.`)
	f.StringVar(&c.UserAgent, flagPrefix+"user-agent", "styx/1.0", `User-Agent header sent with every request.`)
	f.IntVar(&c.BufferSize, flagPrefix+"buffer-size", 32*1024, `Copy buffer size of the grab engine.`)
}

func (c *Config) Validate() error {
	if c.Engine != EngineHTTP && c.Engine != EngineGrab {
		return errors.New(fmt.Sprintf("invalid fetcher engine: %q", c.Engine))
	}
	if c.Timeout <= 0 {
		return errors.New("fetcher timeout must be positive")
	}
	return nil
}

type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, timeout time.Duration) outcome.Outcome
}

func New(cfg Config, log log.Logger) (Fetcher, error) {
	switch cfg.Engine {
	case EngineHTTP, "":
		return NewHTTPFetcher(cfg, log), nil
	case EngineGrab:
		return NewGrabFetcher(cfg, log), nil
	}

	return nil, errors.New(fmt.Sprintf("invalid fetcher engine: %q", cfg.Engine))
}
