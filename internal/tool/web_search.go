package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/calebhart/drift/internal/permission"
)

const searchEndpoint = "https://html.duckduckgo.com/html/"

// WebSearchTool queries DuckDuckGo's HTML endpoint and returns titles, links
// and snippets for the top results.
type WebSearchTool struct {
	client     *http.Client
	maxResults int
}

type webSearchArgs struct {
	Query string `mapstructure:"query"`
}

// searchHit is one parsed search result.
type searchHit struct {
	Title   string
	URL     string
	Snippet string
}

// NewWebSearch creates the web_search tool.
func NewWebSearch(timeout time.Duration, maxResults int) *WebSearchTool {
	return &WebSearchTool{
		client:     &http.Client{Timeout: timeout},
		maxResults: maxResults,
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web and return the top results"
}

func (t *WebSearchTool) Capability() permission.Capability { return permission.CapabilityNetwork }

// ParseRaw treats the whole argument text as the query.
func (t *WebSearchTool) ParseRaw(raw string) (map[string]any, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return nil, fmt.Errorf("web_search: %w (expected a search query)", errEmptyArgs)
	}
	return map[string]any{"query": query}, nil
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) Result {
	var req webSearchArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Query == "" {
		return Fail("query is required")
	}

	endpoint := searchEndpoint + "?q=" + url.QueryEscape(req.Query)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Fail(fmt.Sprintf("invalid request: %v", err))
	}
	httpReq.Header.Set("User-Agent", "drift/1.0")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Fail(fmt.Sprintf("search request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fail(fmt.Sprintf("search returned HTTP %d", resp.StatusCode))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Fail(fmt.Sprintf("cannot parse search results: %v", err))
	}

	hits := parseSearchResults(doc, t.maxResults)
	if len(hits) == 0 {
		return Ok("no results for " + req.Query)
	}

	var b strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, hit.Title, hit.URL)
		if hit.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", hit.Snippet)
		}
	}

	res := Ok(b.String())
	res.Metadata = map[string]any{"count": len(hits)}
	return res
}

// parseSearchResults walks the HTML tree collecting DuckDuckGo result
// anchors (class result__a) and their snippets (class result__snippet).
func parseSearchResults(doc *html.Node, limit int) []searchHit {
	var hits []searchHit
	var current *searchHit

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(hits) >= limit && current == nil {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if current != nil {
					hits = append(hits, *current)
				}
				current = &searchHit{
					Title: strings.TrimSpace(textContent(n)),
					URL:   cleanResultURL(attrValue(n, "href")),
				}
				return
			case hasClass(n, "result__snippet"):
				if current != nil {
					current.Snippet = strings.TrimSpace(textContent(n))
					hits = append(hits, *current)
					current = nil
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && (limit <= 0 || len(hits) < limit) {
		hits = append(hits, *current)
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// cleanResultURL unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=<target>).
func cleanResultURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
		return target
	}
	return raw
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attrValue(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
