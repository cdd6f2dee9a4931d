package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calebhart/drift/internal/permission"
)

// ReadFileTool reads a file and returns its content with line numbers, the
// same presentation the model sees from editor-style tooling.
type ReadFileTool struct {
	workspaceRoot string
	maxFileSize   int64
}

type readFileArgs struct {
	Path   string `mapstructure:"path"`
	Offset int    `mapstructure:"offset"`
	Limit  int    `mapstructure:"limit"`
}

// NewReadFile creates the read_file tool rooted at workspaceRoot.
func NewReadFile(workspaceRoot string, maxFileSize int64) *ReadFileTool {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	return &ReadFileTool{workspaceRoot: workspaceRoot, maxFileSize: maxFileSize}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read a file and return its content with line numbers"
}

func (t *ReadFileTool) Capability() permission.Capability { return permission.CapabilityNone }

// ParseRaw treats the whole argument text as the path.
func (t *ReadFileTool) ParseRaw(raw string) (map[string]any, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil, fmt.Errorf("read_file: %w (expected a path)", errEmptyArgs)
	}
	return map[string]any{"path": path}, nil
}

func (t *ReadFileTool) Execute(_ context.Context, args map[string]any) Result {
	var req readFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Path == "" {
		return Fail("path is required")
	}

	path := resolveWorkspacePath(t.workspaceRoot, req.Path)

	info, err := os.Stat(path)
	if err != nil {
		return Fail(fmt.Sprintf("cannot read %s: %v", req.Path, err))
	}
	if info.IsDir() {
		return Fail(fmt.Sprintf("%s is a directory", req.Path))
	}
	if t.maxFileSize > 0 && info.Size() > t.maxFileSize {
		return Fail(fmt.Sprintf("%s is too large (%d bytes, limit %d)", req.Path, info.Size(), t.maxFileSize))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Fail(fmt.Sprintf("cannot read %s: %v", req.Path, err))
	}

	probe := content
	if len(probe) > 512 {
		probe = probe[:512]
	}
	if strings.ContainsRune(string(probe), '\x00') {
		return Fail(fmt.Sprintf("%s appears to be a binary file", req.Path))
	}

	lines := strings.Split(string(content), "\n")
	// A trailing newline produces one empty phantom line; drop it.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	start := req.Offset
	if start < 0 {
		start = 0
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := len(lines)
	if req.Limit > 0 && start+req.Limit < end {
		end = start + req.Limit
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "%6d\t%s\n", i+1, lines[i])
	}

	res := Ok(b.String())
	res.Metadata = map[string]any{
		"path":        path,
		"total_lines": len(lines),
		"shown_lines": end - start,
	}
	return res
}

// resolveWorkspacePath makes a path absolute, interpreting relative paths
// against the workspace root.
func resolveWorkspacePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
