package flowcompile

import (
	"flowdeck/domain"
	"time"

	"github.com/patrickmn/go-cache"
)

var documentCache = cache.New(10*time.Minute, 1*time.Minute)

// CompileWithCache memoizes compiled documents. The cache key must change
// whenever the version graph changes (the callers derive it from the version
// id and its last update time); compilation is deterministic, so a hit is
// always byte-identical to a fresh run. Cached documents are shared and must
// be treated as read-only.
func CompileWithCache(cacheKey string, template domain.FlowTemplate, nodes []ScreenNode) *Document {
	if value, found := documentCache.Get(cacheKey); found {
		return value.(*Document)
	}
	doc := Compile(template, nodes)
	documentCache.Set(cacheKey, doc, cache.DefaultExpiration)
	return doc
}
