package tool

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/calebhart/drift/internal/permission"
	"github.com/calebhart/drift/internal/tool/gitutil"
)

// maxScanLineBytes bounds the scanner token size so minified files do not
// abort the walk.
const maxScanLineBytes = 1 << 20

// SearchTextTool greps the workspace for a regular expression and returns
// matching lines in "path:line: text" form.
type SearchTextTool struct {
	workspaceRoot string
	ignorer       gitutil.Ignorer
	maxResults    int
}

type searchTextArgs struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
}

// NewSearchText creates the search_text tool rooted at workspaceRoot.
func NewSearchText(workspaceRoot string, ignorer gitutil.Ignorer, maxResults int) *SearchTextTool {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	if ignorer == nil {
		ignorer = gitutil.NoOpIgnorer{}
	}
	return &SearchTextTool{workspaceRoot: workspaceRoot, ignorer: ignorer, maxResults: maxResults}
}

func (t *SearchTextTool) Name() string { return "search_text" }

func (t *SearchTextTool) Description() string {
	return "Search workspace files for a regular expression"
}

func (t *SearchTextTool) Capability() permission.Capability { return permission.CapabilityNone }

// ParseRaw expects "pattern [path]".
func (t *SearchTextTool) ParseRaw(raw string) (map[string]any, error) {
	pattern, rest := splitFirstField(raw)
	if pattern == "" {
		return nil, fmt.Errorf("search_text: %w (expected: pattern [path])", errEmptyArgs)
	}
	args := map[string]any{"pattern": pattern}
	if rest != "" {
		args["path"] = rest
	}
	return args, nil
}

func (t *SearchTextTool) Execute(ctx context.Context, args map[string]any) Result {
	var req searchTextArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Pattern == "" {
		return Fail("pattern is required")
	}

	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		return Fail(fmt.Sprintf("invalid pattern %q: %v", req.Pattern, err))
	}

	searchRoot := t.workspaceRoot
	if req.Path != "" {
		searchRoot = resolveWorkspacePath(t.workspaceRoot, req.Path)
	}

	var hits []string
	truncated := false
	walkErr := filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(t.workspaceRoot, path)
		if relErr != nil {
			rel = path
		}
		if t.ignorer.ShouldIgnore(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		done, scanErr := t.scanFile(path, filepath.ToSlash(rel), re, &hits)
		if scanErr != nil {
			return nil
		}
		if done {
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return Fail(fmt.Sprintf("search failed: %v", walkErr))
	}

	var b strings.Builder
	if len(hits) == 0 {
		b.WriteString("no matches for " + req.Pattern)
	} else {
		b.WriteString(strings.Join(hits, "\n"))
		if truncated {
			fmt.Fprintf(&b, "\n... result limit reached (%d)", t.maxResults)
		}
	}

	res := Ok(b.String())
	res.Metadata = map[string]any{"count": len(hits), "truncated": truncated}
	return res
}

// scanFile appends matching lines to hits and reports whether the result
// limit was reached. Binary files (containing NUL in the first chunk) are
// skipped.
func (t *SearchTextTool) scanFile(path, rel string, re *regexp.Regexp, hits *[]string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	probe := make([]byte, 512)
	n, _ := f.Read(probe)
	if strings.ContainsRune(string(probe[:n]), '\x00') {
		return false, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return false, err
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxScanLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if re.MatchString(line) {
			*hits = append(*hits, fmt.Sprintf("%s:%d: %s", rel, lineNo, strings.TrimSpace(line)))
			if t.maxResults > 0 && len(*hits) >= t.maxResults {
				return true, nil
			}
		}
	}
	return false, scanner.Err()
}
