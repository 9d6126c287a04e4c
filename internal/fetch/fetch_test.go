package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"policyscraper/internal/model"
)

func TestClientFetch(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("<html><body><h1>OK</h1></body></html>"))
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := NewClient(WithUserAgent("test-agent/1.0"), WithHeader("Accept-Language", "en-GB"))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "OK", path: "/ok", wantStatus: 200, wantBody: "<h1>OK</h1>"},
		{name: "Redirect followed", path: "/moved", wantStatus: 200, wantBody: "<h1>OK</h1>"},
		{name: "Server error returned", path: "/fail", wantStatus: 500, wantBody: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Fetch(context.Background(), server.URL+tt.path)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(resp.Body, tt.wantBody) {
				t.Errorf("Body = %q, want it to contain %q", resp.Body, tt.wantBody)
			}
			if gotUA != "test-agent/1.0" || gotLang != "en-GB" {
				t.Errorf("headers = %q, %q", gotUA, gotLang)
			}
		})
	}
}

func TestClientFetchBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	resp, err := NewClient(WithMaxBodyBytes(10)).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(resp.Body) != 10 {
		t.Errorf("len(Body) = %d, want 10", len(resp.Body))
	}
}

func TestClientFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient().Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("Fetch() error = nil, want timeout")
	}
	if got := Classify(err); got != model.ETIMEOUT {
		t.Errorf("Classify(%v) = %q, want %q", err, got, model.ETIMEOUT)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "Deadline", err: context.DeadlineExceeded, expected: model.ETIMEOUT},
		{name: "Wrapped deadline", err: errors.Join(errors.New("get"), context.DeadlineExceeded), expected: model.ETIMEOUT},
		{name: "Refused", err: errors.New("connection refused"), expected: model.ENETWORK},
		{name: "Canceled", err: context.Canceled, expected: model.ENETWORK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClientFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient().Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("Fetch() error = nil, want network error")
	}
	if got := Classify(err); got != model.ENETWORK {
		t.Errorf("Classify(%v) = %q, want %q", err, got, model.ENETWORK)
	}
}
