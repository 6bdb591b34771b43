package fetcher

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/cavaliergopher/grab/v3"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// GrabFetcher downloads through grab. Resuming is disabled so grab never
// issues the HEAD request and a fetch stays a single GET.
type GrabFetcher struct {
	grabClient *grab.Client
	log        log.Logger
}

func NewGrabFetcher(cfg Config, log log.Logger) *GrabFetcher {
	c := grab.NewClient()
	c.BufferSize = cfg.BufferSize
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	return &GrabFetcher{
		grabClient: c,
		log:        log,
	}
}

func (f *GrabFetcher) Fetch(ctx context.Context, url, dest string, timeout time.Duration) outcome.Outcome {
	found, err := exists(dest)
	if err != nil {
		return outcome.NewFailedTransport(url, dest, err)
	}
	if found {
		return outcome.NewSkippedExisting(url, dest)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// The reserved file only claims a unique name, grab truncates it.
	placeholder, err := reserve(dest)
	if err != nil {
		return outcome.NewFailedTransport(url, dest, err)
	}
	tmp := placeholder.Name()
	placeholder.Close()

	req, err := grab.NewRequest(tmp, url)
	if err != nil {
		os.Remove(tmp)
		return outcome.NewFailedTransport(url, dest, errors.Wrap(err, "fetcher create grab request"))
	}
	req.NoResume = true
	req = req.WithContext(ctx)

	resp := f.grabClient.Do(req)
	if err := resp.Err(); err != nil {
		os.Remove(tmp)

		var sce grab.StatusCodeError
		if errors.As(err, &sce) {
			return outcome.NewFailedHTTP(url, dest, int(sce))
		}
		return outcome.NewFailedTransport(url, dest, errors.Wrap(err, "fetcher grab"))
	}

	// grab accepts any 2xx.
	if resp.HTTPResponse != nil && resp.HTTPResponse.StatusCode != http.StatusOK {
		os.Remove(tmp)
		return outcome.NewFailedHTTP(url, dest, resp.HTTPResponse.StatusCode)
	}

	_ = level.Debug(f.log).Log("msg", "transferred", "url", url, "bytes", resp.BytesComplete(), "duration", resp.Duration())

	written, err := commit(tmp, dest)
	if err != nil {
		return outcome.NewFailedTransport(url, dest, err)
	}
	if !written {
		return outcome.NewSkippedExisting(url, dest)
	}

	return outcome.NewDownloaded(url, dest, resp.BytesComplete())
}
