package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"policyscraper/internal/model"
)

func TestReportCache(t *testing.T) {
	c := New(time.Minute)
	assert.True(t, c.Enabled())

	key := Key([]string{"Spam", "Hateful Conduct"}, true)
	_, ok := c.Get(key)
	assert.False(t, ok)

	report := &model.SessionReport{TotalTargets: 3}
	c.Set(key, report)

	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Same(t, report, got)

	_, ok = c.Get(Key([]string{"Spam", "Hateful Conduct"}, false))
	assert.False(t, ok, "include_main is part of the key")
	_, ok = c.Get(Key([]string{"Hateful Conduct", "Spam"}, true))
	assert.False(t, ok, "order is part of the key")
}

func TestReportCacheSkipsPartialReports(t *testing.T) {
	c := New(time.Minute)
	key := Key(nil, true)

	c.Set(key, &model.SessionReport{Partial: true, Skipped: []string{"Spam"}})

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestReportCacheDisabled(t *testing.T) {
	for _, c := range []*ReportCache{New(0), New(-time.Second), nil} {
		assert.False(t, c.Enabled())
		c.Set("k", &model.SessionReport{})
		_, ok := c.Get("k")
		assert.False(t, ok)
	}
}

func TestReportCacheExpiry(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Set("k", &model.SessionReport{})

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
