package tool

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calebhart/drift/internal/permission"
	"github.com/calebhart/drift/internal/tool/gitutil"
)

// FindFileTool walks the workspace looking for files whose name matches a
// glob pattern. Paths ignored by .gitignore are skipped.
type FindFileTool struct {
	workspaceRoot string
	ignorer       gitutil.Ignorer
	maxResults    int
}

type findFileArgs struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
}

// NewFindFile creates the find_file tool rooted at workspaceRoot.
func NewFindFile(workspaceRoot string, ignorer gitutil.Ignorer, maxResults int) *FindFileTool {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	if ignorer == nil {
		ignorer = gitutil.NoOpIgnorer{}
	}
	return &FindFileTool{workspaceRoot: workspaceRoot, ignorer: ignorer, maxResults: maxResults}
}

func (t *FindFileTool) Name() string { return "find_file" }

func (t *FindFileTool) Description() string {
	return "Find files in the workspace whose name matches a glob pattern"
}

func (t *FindFileTool) Capability() permission.Capability { return permission.CapabilityNone }

// ParseRaw expects "pattern [path]".
func (t *FindFileTool) ParseRaw(raw string) (map[string]any, error) {
	pattern, rest := splitFirstField(raw)
	if pattern == "" {
		return nil, fmt.Errorf("find_file: %w (expected: pattern [path])", errEmptyArgs)
	}
	args := map[string]any{"pattern": pattern}
	if rest != "" {
		args["path"] = rest
	}
	return args, nil
}

func (t *FindFileTool) Execute(ctx context.Context, args map[string]any) Result {
	var req findFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Pattern == "" {
		return Fail("pattern is required")
	}
	if _, err := filepath.Match(req.Pattern, ""); err != nil {
		return Fail(fmt.Sprintf("invalid pattern %q: %v", req.Pattern, err))
	}

	searchRoot := t.workspaceRoot
	if req.Path != "" {
		searchRoot = resolveWorkspacePath(t.workspaceRoot, req.Path)
	}

	var matches []string
	truncated := false
	err := filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
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

		if matched, _ := filepath.Match(req.Pattern, d.Name()); matched {
			matches = append(matches, filepath.ToSlash(rel))
			if t.maxResults > 0 && len(matches) >= t.maxResults {
				truncated = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return Fail(fmt.Sprintf("search failed: %v", err))
	}

	sort.Strings(matches)

	var b strings.Builder
	if len(matches) == 0 {
		b.WriteString("no files matched " + req.Pattern)
	} else {
		b.WriteString(strings.Join(matches, "\n"))
		if truncated {
			fmt.Fprintf(&b, "\n... result limit reached (%d)", t.maxResults)
		}
	}

	res := Ok(b.String())
	res.Metadata = map[string]any{"count": len(matches), "truncated": truncated}
	return res
}
