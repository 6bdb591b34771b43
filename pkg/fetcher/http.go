package fetcher

import (
	"context"
	"net/http"
	"time"

	"github.com/ValerySidorin/styx/pkg/outcome"
	util_http "github.com/ValerySidorin/styx/pkg/util/http"
	util_log "github.com/ValerySidorin/styx/pkg/util/log"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// HTTPFetcher issues exactly one attempt per image: the retryable client is
// used for its transport setup and logging, with retries disabled.
type HTTPFetcher struct {
	httpClient *retryablehttp.Client
	userAgent  string
	log        log.Logger
}

func NewHTTPFetcher(cfg Config, log log.Logger) *HTTPFetcher {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = util_log.NewRetryableLogger(log)

	return &HTTPFetcher{
		httpClient: c,
		userAgent:  cfg.UserAgent,
		log:        log,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string, timeout time.Duration) outcome.Outcome {
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

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return outcome.NewFailedTransport(url, dest, errors.Wrap(err, "fetcher create request"))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return outcome.NewFailedTransport(url, dest, errors.Wrap(err, "fetcher get"))
	}
	defer resp.Body.Close()

	if err := util_http.EnsureOKStatusCode(resp); err != nil {
		_ = level.Debug(f.log).Log("msg", err.Error(), "url", url)
		return outcome.NewFailedHTTP(url, dest, resp.StatusCode)
	}

	tmp, n, err := writeTemp(dest, resp.Body)
	if err != nil {
		return outcome.NewFailedTransport(url, dest, err)
	}

	written, err := commit(tmp, dest)
	if err != nil {
		return outcome.NewFailedTransport(url, dest, err)
	}
	if !written {
		return outcome.NewSkippedExisting(url, dest)
	}

	return outcome.NewDownloaded(url, dest, n)
}
