package locator

import (
	"net/url"
	"path"
	"strings"

	"github.com/ValerySidorin/styx/pkg/record"
)

type Direct struct {
	defaultExt string
}

func NewDirect(defaultExt string) *Direct {
	if defaultExt == "" {
		defaultExt = DefaultExtension
	}

	return &Direct{defaultExt: defaultExt}
}

func (d *Direct) Locate(rec record.Record) (Asset, bool) {
	ref, ok := rec.(record.HasDirectURL)
	if !ok {
		return Asset{}, false
	}

	u := ref.AssetURL()
	if u == "" {
		return Asset{}, false
	}

	return Asset{
		ID:  rec.Identifier(),
		URL: u,
		Ext: d.extension(u),
	}, true
}

// extension takes whatever follows the last dot of the final path segment.
// Query strings and fragments are ignored.
func (d *Direct) extension(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}

	base := path.Base(p)
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return d.defaultExt
	}

	return base[idx+1:]
}
