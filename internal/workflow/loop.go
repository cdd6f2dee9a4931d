// Package workflow drives the conversation: it alternates model turns with
// tool execution, bounded by a cycle cap, and keeps the transcript
// consistent when a turn is cancelled partway through.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/calebhart/drift/internal/extract"
	"github.com/calebhart/drift/internal/provider"
	"github.com/calebhart/drift/internal/tool"
)

// StopReason explains why a Run ended.
type StopReason string

const (
	// StopDone means the model produced a response with no tool calls.
	StopDone StopReason = "done"
	// StopIterationLimit means the cycle cap was reached while the model
	// was still requesting tools.
	StopIterationLimit StopReason = "iteration_limit"
	// StopCancelled means the user aborted the turn.
	StopCancelled StopReason = "cancelled"
)

// Outcome summarizes a completed Run.
type Outcome struct {
	Reason        StopReason
	Cycles        int
	FinalResponse string
}

// generator produces the next assistant response.
type generator interface {
	Generate(ctx context.Context, messages []provider.Message) (string, error)
}

// classifier splits a response into executable and suppressed invocations.
type classifier interface {
	Classify(response string) (standalone, suppressed []extract.Invocation)
}

// invoker executes one invocation end to end.
type invoker interface {
	Execute(ctx context.Context, inv extract.Invocation) tool.Result
}

// Notifier receives progress events for display. Implementations must not
// block; the loop calls them inline.
type Notifier interface {
	AssistantMessage(text string)
	ToolStarted(inv extract.Invocation)
	ToolFinished(inv extract.Invocation, res tool.Result)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) AssistantMessage(string)                      {}
func (NopNotifier) ToolStarted(extract.Invocation)               {}
func (NopNotifier) ToolFinished(extract.Invocation, tool.Result) {}

// Controller runs conversation turns against a transcript.
type Controller struct {
	provider      generator
	extractor     classifier
	executor      invoker
	trimmer       Trimmer
	notifier      Notifier
	logger        *zap.Logger
	maxIterations int
}

// NewController wires a Controller. notifier may be nil.
func NewController(p generator, e classifier, x invoker, trimmer Trimmer, notifier Notifier, logger *zap.Logger, maxIterations int) *Controller {
	if p == nil {
		panic("provider is required")
	}
	if e == nil {
		panic("extractor is required")
	}
	if x == nil {
		panic("executor is required")
	}
	if trimmer == nil {
		panic("trimmer is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if maxIterations < 1 {
		panic("maxIterations must be >= 1")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		provider:      p,
		extractor:     e,
		executor:      x,
		trimmer:       trimmer,
		notifier:      notifier,
		logger:        logger,
		maxIterations: maxIterations,
	}
}

// Run processes one user turn. It appends the user message, then cycles:
// generate a response, execute its tool calls, feed the results back. The
// turn ends when the model stops requesting tools, the cycle cap is hit, or
// the context is cancelled. A cancelled cycle is rolled back so the
// transcript never contains a half-finished exchange; the user message of a
// fully cancelled turn is removed too.
func (c *Controller) Run(ctx context.Context, transcript *Transcript, userInput string) (Outcome, error) {
	turnStart := transcript.Mark()
	transcript.Append(provider.Message{Role: provider.RoleUser, Content: userInput})

	var lastResponse string
	for cycle := 1; cycle <= c.maxIterations; cycle++ {
		mark := transcript.Mark()

		response, err := c.provider.Generate(ctx, c.trimmer.Trim(transcript.Messages()))
		if err != nil {
			transcript.Rollback(turnStart)
			if errors.Is(err, context.Canceled) {
				return Outcome{Reason: StopCancelled, Cycles: cycle - 1}, nil
			}
			return Outcome{}, err
		}
		lastResponse = response

		standalone, suppressed := c.extractor.Classify(response)
		for _, inv := range suppressed {
			c.logger.Debug("suppressed tool mention",
				zap.String("tool", inv.Tool),
				zap.Int("line", inv.Line),
				zap.String("origin", string(inv.Origin)))
		}

		c.notifier.AssistantMessage(response)

		if len(standalone) == 0 {
			transcript.Append(provider.Message{Role: provider.RoleAssistant, Content: response})
			return Outcome{Reason: StopDone, Cycles: cycle, FinalResponse: response}, nil
		}

		results, cancelled := c.executeAll(ctx, standalone)
		if cancelled {
			transcript.Rollback(mark)
			if mark == turnStart+1 {
				transcript.Rollback(turnStart)
			}
			return Outcome{Reason: StopCancelled, Cycles: cycle}, nil
		}

		// Assistant response and tool results land together so a reader of
		// the transcript never sees a call without its outcome.
		transcript.Append(provider.Message{Role: provider.RoleAssistant, Content: response})
		transcript.Append(provider.Message{Role: provider.RoleTool, Content: results})
	}

	c.logger.Info("conversation cycle cap reached", zap.Int("max_iterations", c.maxIterations))
	return Outcome{Reason: StopIterationLimit, Cycles: c.maxIterations, FinalResponse: lastResponse}, nil
}

// executeAll runs invocations in order, stopping early on cancellation.
func (c *Controller) executeAll(ctx context.Context, invocations []extract.Invocation) (string, bool) {
	var b strings.Builder
	for i, inv := range invocations {
		if ctx.Err() != nil {
			return "", true
		}

		c.notifier.ToolStarted(inv)
		res := c.executor.Execute(ctx, inv)
		c.notifier.ToolFinished(inv, res)

		if ctx.Err() != nil {
			return "", true
		}

		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(formatResult(inv, res))
	}
	return b.String(), false
}

func formatResult(inv extract.Invocation, res tool.Result) string {
	if res.Success {
		return fmt.Sprintf("[✓ %s]\n%s", inv.Tool, res.Output)
	}
	out := fmt.Sprintf("[✗ %s]\n%s", inv.Tool, res.Error)
	if res.Output != "" {
		out += "\n" + res.Output
	}
	return out
}
