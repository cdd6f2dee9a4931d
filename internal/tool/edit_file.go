package tool

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/calebhart/drift/internal/permission"
)

// editSeparator splits old text from new text in the raw argument form.
const editSeparator = " => "

// EditFileTool replaces an exact text match inside an existing file. The
// match must be unique unless replace_all is set; an ambiguous match is an
// error rather than a guess.
type EditFileTool struct {
	workspaceRoot string
}

type editFileArgs struct {
	Path       string `mapstructure:"path"`
	OldText    string `mapstructure:"old_text"`
	NewText    string `mapstructure:"new_text"`
	ReplaceAll bool   `mapstructure:"replace_all"`
}

// NewEditFile creates the edit_file tool rooted at workspaceRoot.
func NewEditFile(workspaceRoot string) *EditFileTool {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	return &EditFileTool{workspaceRoot: workspaceRoot}
}

func (t *EditFileTool) Name() string { return "edit_file" }

func (t *EditFileTool) Description() string {
	return "Replace an exact text match in an existing file"
}

func (t *EditFileTool) Capability() permission.Capability { return permission.CapabilityFileWrite }

// ParseRaw expects "path old-text => new-text".
func (t *EditFileTool) ParseRaw(raw string) (map[string]any, error) {
	path, rest := splitFirstField(raw)
	if path == "" || rest == "" {
		return nil, fmt.Errorf("edit_file: %w (expected: path old-text => new-text)", errEmptyArgs)
	}
	oldText, newText, found := strings.Cut(rest, editSeparator)
	if !found {
		return nil, fmt.Errorf("edit_file: missing %q separator between old and new text", strings.TrimSpace(editSeparator))
	}
	if oldText == "" {
		return nil, fmt.Errorf("edit_file: old text must not be empty")
	}
	return map[string]any{
		"path":     path,
		"old_text": oldText,
		"new_text": newText,
	}, nil
}

func (t *EditFileTool) Execute(_ context.Context, args map[string]any) Result {
	var req editFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Path == "" {
		return Fail("path is required")
	}
	if req.OldText == "" {
		return Fail("old_text must not be empty")
	}

	path := resolveWorkspacePath(t.workspaceRoot, req.Path)

	content, err := os.ReadFile(path)
	if err != nil {
		return Fail(fmt.Sprintf("cannot read %s: %v", req.Path, err))
	}

	text := string(content)
	count := strings.Count(text, req.OldText)
	switch {
	case count == 0:
		return Fail(fmt.Sprintf("text not found in %s", req.Path))
	case count > 1 && !req.ReplaceAll:
		return Fail(fmt.Sprintf("text appears %d times in %s; provide more context to make the match unique", count, req.Path))
	}

	replacements := 1
	if req.ReplaceAll {
		replacements = count
	}
	updated := strings.Replace(text, req.OldText, req.NewText, replacements)

	info, err := os.Stat(path)
	if err != nil {
		return Fail(fmt.Sprintf("cannot stat %s: %v", req.Path, err))
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return Fail(fmt.Sprintf("cannot write %s: %v", req.Path, err))
	}

	res := Ok(fmt.Sprintf("replaced %d occurrence(s) in %s", replacements, req.Path))
	res.Metadata = map[string]any{"path": path, "replacements": replacements}
	return res
}
