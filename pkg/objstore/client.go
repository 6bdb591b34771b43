package objstore

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/ValerySidorin/styx/pkg/objstore/minio"
	"github.com/pkg/errors"
)

const (
	StoreMinio = "minio"

	DefaultBucket = "styx"
)

type Config struct {
	Store       string       `yaml:"store"`
	Bucket      string       `yaml:"bucket"`
	Concurrency int          `yaml:"concurrency"`
	Minio       minio.Config `yaml:"minio"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Store, flagPrefix+"store", "", `Object storage downloaded images are mirrored to. Supported values are: minio. Empty disables mirroring.`)
	f.StringVar(&c.Bucket, flagPrefix+"bucket", DefaultBucket, `Bucket downloaded images are mirrored to.`)
	f.IntVar(&c.Concurrency, flagPrefix+"concurrency", 4, `Number of parallel uploads.`)
	c.Minio.RegisterFlags(flagPrefix, f)
}

func (c *Config) Validate() error {
	switch c.Store {
	case "":
		return nil
	case StoreMinio:
		if c.Bucket == "" {
			return errors.New("object storage bucket is empty")
		}
		if c.Minio.Endpoint == "" {
			return errors.New("minio endpoint is empty")
		}
		return nil
	}

	return errors.New(fmt.Sprintf("invalid object storage: %q", c.Store))
}

type Writer interface {
	Store(ctx context.Context, objName string, r io.Reader) error
	Exists(ctx context.Context, objName string) (bool, error)
}

func NewWriter(ctx context.Context, cfg Config) (Writer, error) {
	switch cfg.Store {
	case StoreMinio:
		return minio.NewWriter(ctx, cfg.Minio, cfg.Bucket)
	}

	return nil, errors.New(fmt.Sprintf("invalid store for writer: %q", cfg.Store))
}
