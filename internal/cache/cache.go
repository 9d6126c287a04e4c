package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
	"policyscraper/internal/model"
)

// ReportCache keeps finished session reports for a while so repeated
// requests for the same selection do not hit the origin again. Cached
// reports are never modified; responses are projected from them.
type ReportCache struct {
	store *gocache.Cache
}

// New returns a cache whose entries live for ttl. A non-positive ttl returns
// a disabled cache.
func New(ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		return &ReportCache{}
	}
	return &ReportCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *ReportCache) Enabled() bool {
	return c != nil && c.store != nil
}

// Key identifies a batch selection. Names are expected in request order.
// A full selection hashes to a short key.
func Key(names []string, includeMain bool) string {
	sum := xxhash.Sum64String(strings.Join(names, "\x1f"))
	return strconv.FormatBool(includeMain) + ":" + strconv.FormatUint(sum, 16)
}

func (c *ReportCache) Get(key string) (*model.SessionReport, bool) {
	if !c.Enabled() {
		return nil, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	r, ok := v.(*model.SessionReport)
	return r, ok
}

// Set stores report. Partial reports are not cached.
func (c *ReportCache) Set(key string, report *model.SessionReport) {
	if !c.Enabled() || report == nil || report.Partial {
		return
	}
	c.store.SetDefault(key, report)
}
