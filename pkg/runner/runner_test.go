package runner

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ValerySidorin/styx/pkg/fetcher"
	"github.com/ValerySidorin/styx/pkg/locator"
	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// newImageStore serves every image with key "1" and rejects all others.
func newImageStore(t *testing.T) (*httptest.Server, *atomic.Int64) {
	hits := atomic.NewInt64(0)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Inc()
		if strings.HasSuffix(r.URL.Path, "/1.jpg") {
			_, _ = w.Write([]byte("image " + r.URL.Path))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(s.Close)

	return s, hits
}

// fixture has 10 records without images, 10 pointing at missing images and
// 30 fetchable ones.
func fixture() []record.Record {
	recs := make([]record.Record, 0, 50)
	for i := 0; i < 50; i++ {
		p := &record.Product{Code: fmt.Sprintf("%d", 3017620422000+i)}
		switch i % 5 {
		case 0:
		case 1:
			p.Images = []record.Descriptor{{Key: "9"}}
		default:
			p.Images = []record.Descriptor{{Key: "3"}, {Key: "1"}}
		}
		recs = append(recs, p)
	}
	return recs
}

func newPipeline(t *testing.T, baseURL, dir string) Pipeline {
	return NewPipeline(
		locator.NewPackaging(baseURL, "jpg"),
		fetcher.NewHTTPFetcher(fetcher.Config{}, log.NewNopLogger()),
		dir,
		time.Second,
	)
}

func TestRunSummaryIndependentOfConcurrency(t *testing.T) {
	srv, _ := newImageStore(t)
	want := outcome.Summary{Downloaded: 30, SkippedNoAsset: 10, Failed: 10, Total: 50}

	for _, c := range []int{1, 10, 100} {
		dir := t.TempDir()
		r := New(Config{Concurrency: c}, nil, log.NewNopLogger())

		res := r.Run(context.Background(), fixture(), newPipeline(t, srv.URL, dir))
		assert.Equal(t, want, outcome.Summarize(Outcomes(res)), fmt.Sprintf("concurrency %d", c))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 30)
	}
}

func TestRunResultsCorrespondToInput(t *testing.T) {
	recs := fixture()
	r := New(Config{Concurrency: 7}, nil, log.NewNopLogger())

	res := r.Run(context.Background(), recs, func(ctx context.Context, rec record.Record) outcome.Outcome {
		return outcome.NewSkippedNoAsset(rec.Identifier())
	})
	require.Len(t, res, len(recs))

	sort.Slice(res, func(i, j int) bool { return res[i].Index < res[j].Index })
	for i, v := range res {
		assert.Equal(t, i, v.Index)
		assert.Equal(t, recs[i].Identifier(), v.Outcome.ID())
	}
}

func TestRunSecondPassSkipsExisting(t *testing.T) {
	srv, hits := newImageStore(t)
	dir := t.TempDir()
	r := New(Config{Concurrency: 4}, nil, log.NewNopLogger())
	p := newPipeline(t, srv.URL, dir)

	_ = r.Run(context.Background(), fixture(), p)
	before := hits.Load()

	s := outcome.Summarize(Outcomes(r.Run(context.Background(), fixture(), p)))
	assert.Equal(t, 30, s.SkippedExisting)
	assert.Equal(t, 0, s.Downloaded)
	assert.Equal(t, int64(10), hits.Load()-before, "only previously failed records hit the network")
}

func TestRunRecoversPanics(t *testing.T) {
	recs := fixture()[:10]
	r := New(Config{Concurrency: 3}, nil, log.NewNopLogger())

	res := r.Run(context.Background(), recs, func(ctx context.Context, rec record.Record) outcome.Outcome {
		if rec.Identifier() == recs[4].Identifier() {
			panic("boom")
		}
		return outcome.NewDownloaded("", "", 1).WithID(rec.Identifier())
	})
	require.Len(t, res, len(recs))

	s := outcome.Summarize(Outcomes(res))
	assert.Equal(t, 9, s.Downloaded)
	assert.Equal(t, 1, s.Failed)

	for _, v := range res {
		if v.Index != 4 {
			continue
		}
		assert.Equal(t, outcome.FailedTransport, v.Outcome.Kind())
		assert.Equal(t, recs[4].Identifier(), v.Outcome.ID())
		assert.Contains(t, v.Outcome.Cause().Error(), "boom")
	}
}

func TestRunCancellationOmitsUnstartedRecords(t *testing.T) {
	recs := fixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := atomic.NewInt64(0)
	r := New(Config{Concurrency: 1}, nil, log.NewNopLogger())

	res := r.Run(ctx, recs, func(ctx context.Context, rec record.Record) outcome.Outcome {
		calls.Inc()
		cancel()
		return outcome.NewDownloaded("", "", 1).WithID(rec.Identifier())
	})

	assert.Len(t, res, 1)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 1, outcome.Summarize(Outcomes(res)).Total)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(Config{Concurrency: 4}, nil, log.NewNopLogger())
	res := r.Run(ctx, fixture(), func(ctx context.Context, rec record.Record) outcome.Outcome {
		t.Error("pipeline must not run")
		return outcome.Outcome{}
	})
	assert.Empty(t, res)
}

func TestRunEmpty(t *testing.T) {
	r := New(Config{}, nil, log.NewNopLogger())
	res := r.Run(context.Background(), nil, nil)
	assert.Empty(t, res)
	assert.Equal(t, outcome.Summary{}, outcome.Summarize(Outcomes(res)))
}

func TestPipelineNoAssetMakesNoRequest(t *testing.T) {
	srv, hits := newImageStore(t)
	dir := t.TempDir()
	p := newPipeline(t, srv.URL, dir)

	o := p(context.Background(), &record.Product{Code: "42", Images: []record.Descriptor{}})
	assert.Equal(t, outcome.SkippedNoAsset, o.Kind())
	assert.Equal(t, "42", o.ID())
	assert.Empty(t, o.URL())
	assert.Equal(t, int64(0), hits.Load())
}

func TestPipelineRejectsEscapingFileNames(t *testing.T) {
	srv, hits := newImageStore(t)
	root := t.TempDir()
	dir := filepath.Join(root, "images", "packaging")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	f := fetcher.NewHTTPFetcher(fetcher.Config{}, log.NewNopLogger())
	packaging := NewPipeline(locator.NewPackaging(srv.URL, "jpg"), f, dir, time.Second)
	direct := NewPipeline(locator.NewDirect("jpg"), f, dir, time.Second)

	tests := []struct {
		name string
		p    Pipeline
		rec  record.Record
	}{
		{"packaging parent", packaging, &record.Product{Code: "../../escaped", Images: []record.Descriptor{{Key: "1"}}}},
		{"packaging nested", packaging, &record.Product{Code: "12/34", Images: []record.Descriptor{{Key: "1"}}}},
		{"packaging backslash", packaging, &record.Product{Code: `..\escaped`, Images: []record.Descriptor{{Key: "1"}}}},
		{"direct parent", direct, &record.NutritionLabel{ImageID: "../escaped", Meta: record.NutritionMeta{ImageURL: srv.URL + "/labels/1.jpg"}}},
		{"direct absolute", direct, &record.NutritionLabel{ImageID: "/tmp/escaped", Meta: record.NutritionMeta{ImageURL: srv.URL + "/labels/1.jpg"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.p(context.Background(), tt.rec)
			assert.Equal(t, outcome.FailedTransport, o.Kind())
			assert.Equal(t, tt.rec.Identifier(), o.ID())
			assert.Empty(t, o.Path())
			assert.Contains(t, o.Cause().Error(), "unsafe file name")
		})
	}

	assert.Equal(t, int64(0), hits.Load())
	assert.NoFileExists(t, filepath.Join(root, "escaped.jpg"))
	assert.NoFileExists(t, filepath.Join(root, "images", "escaped.jpg"))
}

func TestPipelineAcceptsPlainIdentifier(t *testing.T) {
	srv, _ := newImageStore(t)
	dir := t.TempDir()

	o := newPipeline(t, srv.URL, dir)(context.Background(), &record.Product{Code: "..1", Images: []record.Descriptor{{Key: "1"}}})
	require.Equal(t, outcome.Downloaded, o.Kind(), o.String())
	assert.Equal(t, filepath.Join(dir, "..1.jpg"), o.Path())
}

func TestFailuresLogTaxonomyError(t *testing.T) {
	srv, _ := newImageStore(t)
	buf := &bytes.Buffer{}
	r := New(Config{Concurrency: 1}, nil, log.NewLogfmtLogger(log.NewSyncWriter(buf)))

	recs := []record.Record{
		&record.Product{Code: "7", Images: []record.Descriptor{{Key: "9"}}},
		&record.Product{Code: "../8", Images: []record.Descriptor{{Key: "1"}}},
	}
	r.Run(context.Background(), recs, newPipeline(t, srv.URL, t.TempDir()))

	out := buf.String()
	assert.Contains(t, out, `err="remote rejected: HTTP 404"`)
	assert.Contains(t, out, "transport fault: runner unsafe file name")
}

func TestPipelineRejectedStatus(t *testing.T) {
	srv, _ := newImageStore(t)
	dir := t.TempDir()
	r := New(Config{Concurrency: 2}, nil, log.NewNopLogger())

	rec := &record.Product{Code: "1234567890123", Images: []record.Descriptor{{Key: "2"}}}
	res := r.Run(context.Background(), []record.Record{rec}, newPipeline(t, srv.URL, dir))
	require.Len(t, res, 1)

	o := res[0].Outcome
	assert.Equal(t, outcome.FailedHTTP, o.Kind())
	assert.Equal(t, http.StatusNotFound, o.Status())
	assert.Equal(t, srv.URL+"/123/456/789/0123/2.jpg", o.URL())
	assert.Equal(t, 1, outcome.Summarize(Outcomes(res)).Failed)

	_, err := os.Stat(filepath.Join(dir, "1234567890123.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunMetrics(t *testing.T) {
	srv, _ := newImageStore(t)
	reg := prometheus.NewPedanticRegistry()
	r := New(Config{Concurrency: 5}, reg, log.NewNopLogger())

	_ = r.Run(context.Background(), fixture(), newPipeline(t, srv.URL, t.TempDir()))

	assert.Equal(t, float64(30), testutil.ToFloat64(r.metrics.outcomes.WithLabelValues("downloaded")))
	assert.Equal(t, float64(10), testutil.ToFloat64(r.metrics.outcomes.WithLabelValues("failed_http")))
	assert.Equal(t, float64(10), testutil.ToFloat64(r.metrics.outcomes.WithLabelValues("skipped_no_asset")))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.metrics.outcomes.WithLabelValues("failed_transport")))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.metrics.inFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(r.metrics.duration))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, (&Config{Concurrency: 1}).Validate())
	assert.Error(t, (&Config{Concurrency: 0}).Validate())
}
