package objstore

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/atomic"
)

// Mirror copies freshly downloaded images to object storage under
// <class>/<file name>.
type Mirror struct {
	w           Writer
	class       string
	concurrency int
	log         log.Logger
}

func NewMirror(w Writer, class string, concurrency int, log log.Logger) *Mirror {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Mirror{
		w:           w,
		class:       class,
		concurrency: concurrency,
		log:         log,
	}
}

// ObjectName is the object key of a local image file.
func (m *Mirror) ObjectName(file string) string {
	return path.Join(m.class, filepath.Base(file))
}

// Upload stores every Downloaded outcome that is not in the bucket yet and
// reports how many objects were written. A failed upload does not stop the
// others; all failures are returned together.
func (m *Mirror) Upload(ctx context.Context, outs []outcome.Outcome) (int, error) {
	uploaded := atomic.NewInt64(0)
	p := pool.New().WithErrors().WithMaxGoroutines(m.concurrency)

	downloaded := lo.Filter(outs, func(o outcome.Outcome, _ int) bool {
		return o.Kind() == outcome.Downloaded
	})

	for _, o := range downloaded {
		o := o
		p.Go(func() error {
			written, err := m.upload(ctx, o.Path())
			if err != nil {
				_ = level.Warn(m.log).Log("msg", "mirror upload failed", "id", o.ID(), "path", o.Path(), "err", err)
				return err
			}
			if written {
				uploaded.Inc()
			}
			return nil
		})
	}

	err := p.Wait()

	return int(uploaded.Load()), err
}

func (m *Mirror) upload(ctx context.Context, file string) (bool, error) {
	objName := m.ObjectName(file)

	found, err := m.w.Exists(ctx, objName)
	if err != nil {
		return false, errors.Wrap(err, "mirror check object")
	}
	if found {
		return false, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return false, errors.Wrap(err, "mirror open file")
	}
	defer f.Close()

	if err := m.w.Store(ctx, objName, f); err != nil {
		return false, errors.Wrap(err, "mirror store object")
	}

	return true, nil
}
