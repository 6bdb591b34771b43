package runner

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/ValerySidorin/styx/pkg/fetcher"
	"github.com/ValerySidorin/styx/pkg/locator"
	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/pkg/errors"
)

// NewPipeline composes locating and fetching: the asset of every record is
// stored as dir/<id>.<ext>. Records without an asset never reach the network,
// neither do records whose file name would leave dir.
func NewPipeline(loc locator.Locator, f fetcher.Fetcher, dir string, timeout time.Duration) Pipeline {
	return func(ctx context.Context, rec record.Record) outcome.Outcome {
		id := rec.Identifier()

		asset, ok := loc.Locate(rec)
		if !ok {
			return outcome.NewSkippedNoAsset(id)
		}

		name := asset.FileName()
		if !isPlainFileName(name) {
			return outcome.NewFailedTransport(asset.URL, "", errors.Errorf("runner unsafe file name %q", name)).WithID(id)
		}

		return f.Fetch(ctx, asset.URL, filepath.Join(dir, name), timeout).WithID(id)
	}
}

// isPlainFileName reports whether name is a single local path element.
func isPlainFileName(name string) bool {
	return filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}
