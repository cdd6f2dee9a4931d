package provider

import (
	"fmt"
	"strings"
)

// ToolDescription is the name/usage pair rendered into the system prompt.
type ToolDescription struct {
	Name        string
	Description string
	Usage       string
}

// BuildSystemPrompt renders the agent's standing instructions, including
// the invocation syntax the extractor recognizes. The syntax taught here
// and the extractor's parser must stay in lockstep: a tool call is a line
// that starts with @.
func BuildSystemPrompt(workspaceRoot string, tools []ToolDescription) string {
	var b strings.Builder

	b.WriteString(`You are drift, a coding agent working in the user's workspace.
You can inspect and modify the workspace and run commands by invoking tools.

To invoke a tool, write a line that STARTS with @ followed by the tool name
and its arguments:

@run_command git status
@read_file internal/config/loader.go
@search_text TODO internal/

Rules:
- A tool call must be at the start of its own line. Tool mentions in the
  middle of a sentence, inside code fences or inline code are treated as
  explanation, not calls.
- Do not invoke tools when you are only explaining what a tool would do.
- Invoke at most a few tools per response; you will receive each result
  before you continue.
- When you have enough information, answer the user directly without
  invoking anything.

Available tools:
`)

	for _, t := range tools {
		fmt.Fprintf(&b, "- @%s: %s", t.Name, t.Description)
		if t.Usage != "" {
			fmt.Fprintf(&b, " (usage: @%s %s)", t.Name, t.Usage)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nWorkspace root: %s\n", workspaceRoot)
	return b.String()
}
