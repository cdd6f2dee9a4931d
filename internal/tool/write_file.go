package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calebhart/drift/internal/permission"
)

// WriteFileTool creates or overwrites a file, creating parent directories
// as needed.
type WriteFileTool struct {
	workspaceRoot string
}

type writeFileArgs struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

// NewWriteFile creates the write_file tool rooted at workspaceRoot.
func NewWriteFile(workspaceRoot string) *WriteFileTool {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	return &WriteFileTool{workspaceRoot: workspaceRoot}
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Create or overwrite a file with the given content"
}

func (t *WriteFileTool) Capability() permission.Capability { return permission.CapabilityFileWrite }

// ParseRaw splits the argument text into a path (first field) and content
// (the remainder).
func (t *WriteFileTool) ParseRaw(raw string) (map[string]any, error) {
	path, content := splitFirstField(raw)
	if path == "" {
		return nil, fmt.Errorf("write_file: %w (expected: path content)", errEmptyArgs)
	}
	return map[string]any{"path": path, "content": content}, nil
}

func (t *WriteFileTool) Execute(_ context.Context, args map[string]any) Result {
	var req writeFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Path == "" {
		return Fail("path is required")
	}

	path := resolveWorkspacePath(t.workspaceRoot, req.Path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Fail(fmt.Sprintf("cannot create parent directory for %s: %v", req.Path, err))
	}
	if err := os.WriteFile(path, []byte(req.Content), 0o644); err != nil {
		return Fail(fmt.Sprintf("cannot write %s: %v", req.Path, err))
	}

	res := Ok(fmt.Sprintf("wrote %d bytes to %s", len(req.Content), req.Path))
	res.Metadata = map[string]any{"path": path, "bytes": len(req.Content)}
	return res
}
