package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F">Go Documentation</a>
  <div class="result__snippet">Official Go documentation and guides.</div>
</div>
<div class="result">
  <a class="result__a" href="https://pkg.go.dev/">pkg.go.dev</a>
  <div class="result__snippet">Package index.</div>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/three">Third</a>
</div>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(sampleResultsPage))
	require.NoError(t, err)

	hits := parseSearchResults(doc, 5)
	require.Len(t, hits, 3)

	assert.Equal(t, "Go Documentation", hits[0].Title)
	assert.Equal(t, "https://go.dev/doc/", hits[0].URL)
	assert.Equal(t, "Official Go documentation and guides.", hits[0].Snippet)

	assert.Equal(t, "pkg.go.dev", hits[1].Title)
	assert.Equal(t, "https://pkg.go.dev/", hits[1].URL)

	// A result without a snippet still counts.
	assert.Equal(t, "Third", hits[2].Title)
	assert.Empty(t, hits[2].Snippet)
}

func TestParseSearchResultsLimit(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(sampleResultsPage))
	require.NoError(t, err)

	hits := parseSearchResults(doc, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "Go Documentation", hits[0].Title)
}

func TestCleanResultURL(t *testing.T) {
	assert.Equal(t, "https://go.dev/", cleanResultURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F"))
	assert.Equal(t, "https://direct.example.com/", cleanResultURL("https://direct.example.com/"))
}

func TestWebSearchParseRejectsEmpty(t *testing.T) {
	ws := NewWebSearch(time.Second, 5)

	_, err := ws.ParseRaw("")
	assert.Error(t, err)

	args, err := ws.ParseRaw("golang context cancellation")
	require.NoError(t, err)
	assert.Equal(t, "golang context cancellation", args["query"])
}

func TestFetchURLReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello body"))
	}))
	defer srv.Close()

	fu := NewFetchURL(5*time.Second, 1024)
	res := fu.Execute(context.Background(), map[string]any{"url": srv.URL})
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Output, "HTTP 200")
	assert.Contains(t, res.Output, "hello body")
	assert.Equal(t, 200, res.Metadata["status"])
}

func TestFetchURLTruncatesLargeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	fu := NewFetchURL(5*time.Second, 100)
	res := fu.Execute(context.Background(), map[string]any{"url": srv.URL})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "body truncated at 100 bytes")
	assert.Equal(t, true, res.Metadata["truncated"])
}

func TestFetchURLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	fu := NewFetchURL(5*time.Second, 1024)
	res := fu.Execute(context.Background(), map[string]any{"url": srv.URL})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "HTTP 500")
}
