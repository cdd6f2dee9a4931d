// Package tool defines the executable tool surface of the agent: the Tool
// interface, the registry, and the built-in tool implementations.
package tool

import (
	"context"

	"github.com/calebhart/drift/internal/permission"
)

// Result is the outcome of one tool execution. Tools never return Go errors
// across this boundary; failures are reported as unsuccessful results so the
// conversation loop can relay them to the model.
type Result struct {
	Success  bool
	Output   string
	Error    string
	Metadata map[string]any
}

// Ok builds a successful result.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// Fail builds a failed result with a human-readable reason.
func Fail(reason string) Result {
	return Result{Success: false, Error: reason}
}

// Tool is one executable capability the model can invoke.
//
// ParseRaw turns the raw argument text of an invocation (everything after
// the tool keyword) into the tool's argument map; it fails on malformed
// input so the dispatcher can report the problem without executing anything.
type Tool interface {
	Name() string
	Description() string
	Capability() permission.Capability
	ParseRaw(raw string) (map[string]any, error)
	Execute(ctx context.Context, args map[string]any) Result
}
