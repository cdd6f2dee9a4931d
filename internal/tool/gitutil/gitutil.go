// Package gitutil exposes gitignore-aware filtering for directory walks.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreReadError is returned when a .gitignore file exists but cannot be read.
type IgnoreReadError struct {
	Path  string
	Cause error
}

func (e *IgnoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}

func (e *IgnoreReadError) Unwrap() error { return e.Cause }

// Ignorer reports whether a workspace-relative path should be skipped.
type Ignorer interface {
	ShouldIgnore(relativePath string) bool
}

// IgnoreMatcher matches paths against the workspace root's .gitignore.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from the workspace root. A missing file
// is not an error; the returned matcher simply never ignores.
func NewIgnoreMatcher(workspaceRoot string) (*IgnoreMatcher, error) {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	ignorePath := filepath.Join(workspaceRoot, ".gitignore")

	content, err := os.ReadFile(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &IgnoreMatcher{matcher: nil}, nil
		}
		return nil, &IgnoreReadError{Path: ignorePath, Cause: err}
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore checks a workspace-relative path against the loaded patterns.
// The .git directory itself is always ignored.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string) bool {
	segments := splitPath(relativePath)
	if len(segments) > 0 && segments[0] == ".git" {
		return true
	}
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(segments, false)
}

// splitPath normalizes separators and drops empty and "." segments, which is
// the segment form go-git's matcher expects.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

// NoOpIgnorer never ignores anything. Used when gitignore filtering is
// disabled or fails to initialize.
type NoOpIgnorer struct{}

func (NoOpIgnorer) ShouldIgnore(string) bool { return false }
