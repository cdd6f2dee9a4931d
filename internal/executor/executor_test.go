package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebhart/drift/internal/extract"
	"github.com/calebhart/drift/internal/permission"
	"github.com/calebhart/drift/internal/security"
	"github.com/calebhart/drift/internal/tool"
)

// recordingTool captures whether Execute was reached.
type recordingTool struct {
	name       string
	capability permission.Capability
	executed   bool
	result     tool.Result
	panicWith  any
	blockUntil <-chan struct{}
}

func (r *recordingTool) Name() string                      { return r.name }
func (r *recordingTool) Description() string               { return "test tool" }
func (r *recordingTool) Capability() permission.Capability { return r.capability }

func (r *recordingTool) ParseRaw(raw string) (map[string]any, error) {
	args := map[string]any{}
	switch r.name {
	case "run_command":
		args["command"] = raw
	case "write_file":
		args["path"] = raw
	case "fetch_url":
		args["url"] = raw
	}
	return args, nil
}

func (r *recordingTool) Execute(ctx context.Context, _ map[string]any) tool.Result {
	r.executed = true
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	if r.blockUntil != nil {
		select {
		case <-ctx.Done():
			return tool.Fail("interrupted")
		case <-r.blockUntil:
		}
	}
	return r.result
}

// scriptedConfirmer returns a fixed decision and records calls.
type scriptedConfirmer struct {
	decision ConfirmDecision
	calls    int
}

func (s *scriptedConfirmer) Confirm(_ context.Context, _ ConfirmRequest) (ConfirmDecision, error) {
	s.calls++
	return s.decision, nil
}

func newTestDispatcher(t *testing.T, tools []tool.Tool, g *permission.Gate, c Confirmer, timeout time.Duration) *Dispatcher {
	t.Helper()
	v, err := security.NewValidator(security.DefaultPolicy())
	require.NoError(t, err)
	if g == nil {
		g = permission.NewGate()
	}
	if c == nil {
		c = &scriptedConfirmer{decision: ConfirmAllowOnce}
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return NewDispatcher(tool.NewRegistry(tools...), v, g, c, zap.NewNop(), timeout, t.TempDir())
}

func TestExecuteUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, nil, nil, nil, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "no_such_tool", Args: "x"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown tool")
}

func TestExecuteBlockedCommandNeverReachesTool(t *testing.T) {
	shell := &recordingTool{name: "run_command", capability: permission.CapabilityShell, result: tool.Ok("ran")}
	g := permission.NewGate()
	g.RecordGrant(permission.CapabilityShell, true)
	d := newTestDispatcher(t, []tool.Tool{shell}, g, nil, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "run_command", Args: "rm -rf /"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "blocked by security policy")
	assert.False(t, shell.executed, "tool must not run when policy blocks the command")
}

func TestExecuteDeniedPermissionNeverReachesTool(t *testing.T) {
	shell := &recordingTool{name: "run_command", capability: permission.CapabilityShell, result: tool.Ok("ran")}
	confirmer := &scriptedConfirmer{decision: ConfirmDeny}
	d := newTestDispatcher(t, []tool.Tool{shell}, nil, confirmer, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "run_command", Args: "git status"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "permission denied")
	assert.False(t, shell.executed)
	assert.Equal(t, 1, confirmer.calls)
}

func TestExecuteAllowOnceGrantsForSession(t *testing.T) {
	shell := &recordingTool{name: "run_command", capability: permission.CapabilityShell, result: tool.Ok("ran")}
	confirmer := &scriptedConfirmer{decision: ConfirmAllowOnce}
	g := permission.NewGate()
	d := newTestDispatcher(t, []tool.Tool{shell}, g, confirmer, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "run_command", Args: "git status"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 1, confirmer.calls)

	// The grant persists; no second prompt.
	res = d.Execute(context.Background(), extract.Invocation{Tool: "run_command", Args: "git log"})
	require.True(t, res.Success)
	assert.Equal(t, 1, confirmer.calls)
}

func TestExecuteUngatedToolSkipsConfirmation(t *testing.T) {
	reader := &recordingTool{name: "read_file", capability: permission.CapabilityNone, result: tool.Ok("content")}
	confirmer := &scriptedConfirmer{decision: ConfirmDeny}
	d := newTestDispatcher(t, []tool.Tool{reader}, nil, confirmer, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "read_file", Args: "notes.txt"})
	require.True(t, res.Success)
	assert.Zero(t, confirmer.calls)
}

func TestExecuteWarningAnnotatesOutput(t *testing.T) {
	fetcher := &recordingTool{name: "fetch_url", capability: permission.CapabilityNetwork, result: tool.Ok("body")}
	g := permission.NewGate()
	g.RecordGrant(permission.CapabilityNetwork, true)
	d := newTestDispatcher(t, []tool.Tool{fetcher}, g, nil, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "fetch_url", Args: "http://localhost:8080/"})
	require.True(t, res.Success, res.Error)
	assert.True(t, fetcher.executed, "warnings allow execution")
	assert.Contains(t, res.Output, "warning:")
	assert.Contains(t, res.Output, "body")
}

func TestExecuteTimeoutCancelsTool(t *testing.T) {
	blocked := make(chan struct{})
	defer close(blocked)
	slow := &recordingTool{name: "read_file", capability: permission.CapabilityNone, blockUntil: blocked}
	d := newTestDispatcher(t, []tool.Tool{slow}, nil, nil, 50*time.Millisecond)

	start := time.Now()
	res := d.Execute(context.Background(), extract.Invocation{Tool: "read_file", Args: "x"})
	assert.False(t, res.Success)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecuteContainsPanics(t *testing.T) {
	faulty := &recordingTool{name: "read_file", capability: permission.CapabilityNone, panicWith: "boom"}
	d := newTestDispatcher(t, []tool.Tool{faulty}, nil, nil, 0)

	res := d.Execute(context.Background(), extract.Invocation{Tool: "read_file", Args: "x"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "failed unexpectedly")
}
