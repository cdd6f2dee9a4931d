package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calebhart/drift/internal/permission"
)

// FetchURLTool performs an HTTP GET and returns the response body, capped at
// a configured size.
type FetchURLTool struct {
	client      *http.Client
	maxBodySize int
}

type fetchURLArgs struct {
	URL string `mapstructure:"url"`
}

// NewFetchURL creates the fetch_url tool.
func NewFetchURL(timeout time.Duration, maxBodySize int) *FetchURLTool {
	return &FetchURLTool{
		client:      &http.Client{Timeout: timeout},
		maxBodySize: maxBodySize,
	}
}

func (t *FetchURLTool) Name() string { return "fetch_url" }

func (t *FetchURLTool) Description() string {
	return "Fetch a URL over HTTP and return the response body"
}

func (t *FetchURLTool) Capability() permission.Capability { return permission.CapabilityNetwork }

// ParseRaw treats the whole argument text as the URL.
func (t *FetchURLTool) ParseRaw(raw string) (map[string]any, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return nil, fmt.Errorf("fetch_url: %w (expected a URL)", errEmptyArgs)
	}
	return map[string]any{"url": url}, nil
}

func (t *FetchURLTool) Execute(ctx context.Context, args map[string]any) Result {
	var req fetchURLArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.URL == "" {
		return Fail("url is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Fail(fmt.Sprintf("invalid request for %s: %v", req.URL, err))
	}
	httpReq.Header.Set("User-Agent", "drift/1.0")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Fail(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(t.maxBodySize)+1))
	if err != nil {
		return Fail(fmt.Sprintf("cannot read response from %s: %v", req.URL, err))
	}

	truncated := false
	if len(body) > t.maxBodySize {
		body = body[:t.maxBodySize]
		truncated = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTTP %d %s\n\n", resp.StatusCode, resp.Header.Get("Content-Type"))
	b.Write(body)
	if truncated {
		fmt.Fprintf(&b, "\n... body truncated at %d bytes", t.maxBodySize)
	}

	res := Result{
		Success: resp.StatusCode < 400,
		Output:  b.String(),
		Metadata: map[string]any{
			"status":    resp.StatusCode,
			"truncated": truncated,
		},
	}
	if !res.Success {
		res.Error = fmt.Sprintf("server returned HTTP %d", resp.StatusCode)
	}
	return res
}
