package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"policyscraper/internal/fetch"
	"policyscraper/internal/model"
	"policyscraper/internal/registry"
)

const pageHTML = `<html><head><title>Policy</title></head><body><h1>Policy</h1><p>Policy rationale.</p></body></html>`

type fakePage struct {
	status int
	body   string
	err    error
}

// fakeFetcher serves canned pages and records every call.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]fakePage
	clock *fakeClock
	calls []fakeCall
}

type fakeCall struct {
	url    string
	sleeps int
	at     time.Time
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := fakeCall{url: url}
	if f.clock != nil {
		call.sleeps = len(f.clock.Sleeps())
		call.at = f.clock.Now()
	}
	f.calls = append(f.calls, call)

	page, ok := f.pages[url]
	if !ok {
		return &fetch.Response{StatusCode: 200, Body: pageHTML}, nil
	}
	if page.err != nil {
		return nil, page.err
	}
	return &fetch.Response{StatusCode: page.status, Body: page.body}, nil
}

func (f *fakeFetcher) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

// fakeClock advances instantly on Sleep.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func(n int)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	n := len(c.sleeps)
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

var (
	testMain     = model.Target{Name: "Main Page", URL: "https://example.com/standards/"}
	testSections = []model.Target{
		{Name: "Spam", URL: "https://example.com/standards/spam/"},
		{Name: "Hateful Conduct", URL: "https://example.com/standards/hateful-conduct/"},
		{Name: "Violent and Graphic Content", URL: "https://example.com/standards/violent-graphic-content/"},
	}
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	main := testMain
	reg, err := registry.New(&main, testSections)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return reg
}
