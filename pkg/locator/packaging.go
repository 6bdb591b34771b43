package locator

import (
	"strings"

	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/ValerySidorin/styx/pkg/selector"
	"github.com/ValerySidorin/styx/pkg/shard"
)

type Packaging struct {
	baseURL string
	ext     string
}

func NewPackaging(baseURL, ext string) *Packaging {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if ext == "" {
		ext = DefaultExtension
	}

	return &Packaging{
		baseURL: strings.TrimRight(baseURL, "/"),
		ext:     ext,
	}
}

// Build joins the base URL, the shard path and the descriptor key.
func (p *Packaging) Build(path shard.Path, key string) string {
	return p.baseURL + shard.Delimiter + path.String() + shard.Delimiter + key + "." + p.ext
}

func (p *Packaging) Locate(rec record.Record) (Asset, bool) {
	ref, ok := rec.(record.HasAssetReference)
	if !ok {
		return Asset{}, false
	}

	d, found := selector.Select(ref.Descriptors())
	if !found || d.Key == "" {
		return Asset{}, false
	}

	id := rec.Identifier()
	return Asset{
		ID:  id,
		URL: p.Build(shard.Resolve(id), d.Key),
		Ext: p.ext,
	}, true
}
