package tool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/calebhart/drift/internal/permission"
	"github.com/calebhart/drift/internal/tool/shellexec"
)

// commandRunner is the slice of shellexec the tool needs.
type commandRunner interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*shellexec.Result, error)
}

// RunCommandTool executes a shell command in the workspace via `bash -c`.
type RunCommandTool struct {
	runner        commandRunner
	workspaceRoot string
	timeout       time.Duration
}

type runCommandArgs struct {
	Command string `mapstructure:"command"`
	Timeout int    `mapstructure:"timeout"`
}

// NewRunCommand creates the run_command tool. timeout is the default per
// command; an invocation may shorten but not extend it.
func NewRunCommand(runner commandRunner, workspaceRoot string, timeout time.Duration) *RunCommandTool {
	if runner == nil {
		panic("runner is required")
	}
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	return &RunCommandTool{runner: runner, workspaceRoot: workspaceRoot, timeout: timeout}
}

func (t *RunCommandTool) Name() string { return "run_command" }

func (t *RunCommandTool) Description() string {
	return "Run a shell command in the workspace and capture its output"
}

func (t *RunCommandTool) Capability() permission.Capability { return permission.CapabilityShell }

// ParseRaw treats the whole argument text as the command line.
func (t *RunCommandTool) ParseRaw(raw string) (map[string]any, error) {
	command := strings.TrimSpace(raw)
	if command == "" {
		return nil, fmt.Errorf("run_command: %w (expected a shell command)", errEmptyArgs)
	}
	return map[string]any{"command": command}, nil
}

func (t *RunCommandTool) Execute(ctx context.Context, args map[string]any) Result {
	var req runCommandArgs
	if err := decodeArgs(args, &req); err != nil {
		return Fail(fmt.Sprintf("invalid arguments: %v", err))
	}
	if req.Command == "" {
		return Fail("command is required")
	}

	timeout := t.timeout
	if req.Timeout > 0 {
		requested := time.Duration(req.Timeout) * time.Second
		if requested < timeout {
			timeout = requested
		}
	}

	res, err := t.runner.RunWithTimeout(ctx, []string{"bash", "-c", req.Command}, t.workspaceRoot, os.Environ(), timeout)
	if res == nil {
		return Fail(fmt.Sprintf("cannot start command: %v", err))
	}

	var b strings.Builder
	if res.Stdout != "" {
		b.WriteString(res.Stdout)
	}
	if res.Stderr != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("stderr:\n")
		b.WriteString(res.Stderr)
	}
	if res.Truncated {
		b.WriteString("\n... output truncated")
	}

	out := Result{
		Output: b.String(),
		Metadata: map[string]any{
			"exit_code": res.ExitCode,
			"truncated": res.Truncated,
		},
	}

	switch {
	case errors.Is(err, shellexec.ErrTimeout):
		out.Error = fmt.Sprintf("command timed out after %s", timeout)
	case err != nil && res.ExitCode != 0:
		out.Error = fmt.Sprintf("command exited with code %d", res.ExitCode)
	case err != nil:
		out.Error = err.Error()
	default:
		out.Success = true
	}
	return out
}
