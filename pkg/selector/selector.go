package selector

import (
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/samber/lo"
)

// PreferredKey is the descriptor key of the product's front image.
const PreferredKey = "1"

// Select returns the descriptor keyed PreferredKey, or the first descriptor
// when there is none. It reports false for an empty list.
func Select(descs []record.Descriptor) (record.Descriptor, bool) {
	if len(descs) == 0 {
		return record.Descriptor{}, false
	}

	if d, found := lo.Find(descs, func(item record.Descriptor) bool {
		return item.Key == PreferredKey
	}); found {
		return d, true
	}

	return descs[0], true
}
