// Package executor is the single funnel through which every tool invocation
// runs. It owns the security check, the permission check, the per-invocation
// timeout and panic containment; tools themselves never enforce policy.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calebhart/drift/internal/extract"
	"github.com/calebhart/drift/internal/permission"
	"github.com/calebhart/drift/internal/security"
	"github.com/calebhart/drift/internal/tool"
)

// ConfirmDecision is the user's answer to a permission prompt.
type ConfirmDecision int

const (
	ConfirmDeny ConfirmDecision = iota
	ConfirmAllowOnce
	ConfirmAllowAlways
)

// ConfirmRequest describes what the user is being asked to approve.
type ConfirmRequest struct {
	Tool       string
	Summary    string
	Capability permission.Capability
}

// Confirmer asks the user whether a gated invocation may proceed.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (ConfirmDecision, error)
}

// validator is the slice of the security validator the dispatcher needs.
type validator interface {
	ValidateCommand(command string) security.Decision
	ValidatePath(path string, op security.Operation) security.Decision
	ValidateURL(rawURL string) security.Decision
}

// gate is the slice of the permission gate the dispatcher needs.
type gate interface {
	NeedsConfirmation(capability permission.Capability) bool
	RecordGrant(capability permission.Capability, autoApprove bool)
}

// Dispatcher routes invocations through validation, permission gating and
// timeout-bounded execution.
type Dispatcher struct {
	registry      *tool.Registry
	validator     validator
	gate          gate
	confirmer     Confirmer
	logger        *zap.Logger
	timeout       time.Duration
	workspaceRoot string
}

// NewDispatcher wires the dispatcher. All dependencies are required.
func NewDispatcher(registry *tool.Registry, v validator, g gate, confirmer Confirmer, logger *zap.Logger, timeout time.Duration, workspaceRoot string) *Dispatcher {
	if registry == nil {
		panic("registry is required")
	}
	if v == nil {
		panic("validator is required")
	}
	if g == nil {
		panic("gate is required")
	}
	if confirmer == nil {
		panic("confirmer is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if timeout <= 0 {
		panic("timeout must be positive")
	}
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	return &Dispatcher{
		registry:      registry,
		validator:     v,
		gate:          g,
		confirmer:     confirmer,
		logger:        logger,
		timeout:       timeout,
		workspaceRoot: workspaceRoot,
	}
}

// Execute runs one invocation end to end. It never returns a Go error;
// every refusal and failure is reported as a Result so the conversation
// loop can relay it to the model.
func (d *Dispatcher) Execute(ctx context.Context, inv extract.Invocation) tool.Result {
	t, ok := d.registry.Lookup(inv.Tool)
	if !ok {
		return tool.Fail(fmt.Sprintf("unknown tool %q", inv.Tool))
	}

	args, err := t.ParseRaw(inv.Args)
	if err != nil {
		return tool.Fail(fmt.Sprintf("cannot parse arguments for %s: %v", inv.Tool, err))
	}

	decision := d.validate(t, args)
	if !decision.Allowed {
		d.logger.Warn("invocation blocked by security policy",
			zap.String("tool", inv.Tool),
			zap.String("reason", decision.Reason))
		return tool.Fail(fmt.Sprintf("blocked by security policy: %s", decision.Reason))
	}

	if allowed, reason := d.checkPermission(ctx, t, inv); !allowed {
		d.logger.Info("invocation refused by user",
			zap.String("tool", inv.Tool),
			zap.String("reason", reason))
		return tool.Fail(reason)
	}

	d.logger.Debug("executing tool",
		zap.String("tool", inv.Tool),
		zap.Int("line", inv.Line))

	res := d.run(ctx, t, args)

	if decision.Warning != "" {
		res.Output = fmt.Sprintf("warning: %s\n%s", decision.Warning, res.Output)
	}
	return res
}

// validate applies the security policy based on the well-known argument
// keys tools expose: command, path and url.
func (d *Dispatcher) validate(t tool.Tool, args map[string]any) security.Decision {
	if command, ok := args["command"].(string); ok && command != "" {
		return d.validator.ValidateCommand(command)
	}
	if path, ok := args["path"].(string); ok && path != "" {
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
			path = filepath.Join(d.workspaceRoot, path)
		}
		return d.validator.ValidatePath(path, operationFor(t.Capability()))
	}
	if rawURL, ok := args["url"].(string); ok && rawURL != "" {
		return d.validator.ValidateURL(rawURL)
	}
	return security.Decision{Allowed: true}
}

func (d *Dispatcher) checkPermission(ctx context.Context, t tool.Tool, inv extract.Invocation) (bool, string) {
	capability := t.Capability()
	if !d.gate.NeedsConfirmation(capability) {
		return true, ""
	}

	decision, err := d.confirmer.Confirm(ctx, ConfirmRequest{
		Tool:       inv.Tool,
		Summary:    fmt.Sprintf("%s %s", inv.Tool, inv.Args),
		Capability: capability,
	})
	if err != nil {
		return false, fmt.Sprintf("permission check aborted: %v", err)
	}

	switch decision {
	case ConfirmAllowOnce:
		d.gate.RecordGrant(capability, false)
		return true, ""
	case ConfirmAllowAlways:
		d.gate.RecordGrant(capability, true)
		return true, ""
	default:
		return false, fmt.Sprintf("permission denied for %s", inv.Tool)
	}
}

// run executes the tool under the per-invocation timeout, containing panics
// so a faulty tool cannot take down the session.
func (d *Dispatcher) run(ctx context.Context, t tool.Tool, args map[string]any) (res tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panicked",
				zap.String("tool", t.Name()),
				zap.Any("panic", r))
			res = tool.Fail(fmt.Sprintf("%s failed unexpectedly: %v", t.Name(), r))
		}
	}()

	execCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return t.Execute(execCtx, args)
}

func operationFor(capability permission.Capability) security.Operation {
	switch capability {
	case permission.CapabilityFileWrite:
		return security.OpWrite
	case permission.CapabilityFileDelete:
		return security.OpDelete
	default:
		return security.OpRead
	}
}
