package source

import (
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/samber/lo"
)

// Filter keeps the records that carry any of tags and, if requireAssets is
// set, reference at least one image. Record classes without tags are not
// subject to tag filtering. At most limit records are kept, 0 means no limit.
func Filter(recs []record.Record, tags []string, requireAssets bool, limit int) []record.Record {
	res := lo.Filter(recs, func(rec record.Record, _ int) bool {
		return matchesTags(rec, tags) && (!requireAssets || hasAsset(rec))
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}

	return res
}

func matchesTags(rec record.Record, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	t, ok := rec.(record.HasTags)
	if !ok {
		return true
	}

	return lo.Some(t.Tags(), tags)
}

func hasAsset(rec record.Record) bool {
	switch r := rec.(type) {
	case record.HasAssetReference:
		return len(r.Descriptors()) > 0
	case record.HasDirectURL:
		return r.AssetURL() != ""
	}

	return false
}
