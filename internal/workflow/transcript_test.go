package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calebhart/drift/internal/provider"
)

func TestTranscriptAppendAndCopy(t *testing.T) {
	tr := NewTranscript(provider.Message{Role: provider.RoleSystem, Content: "sys"})
	tr.Append(provider.Message{Role: provider.RoleUser, Content: "hi"})

	got := tr.Messages()
	assert.Len(t, got, 2)

	// Mutating the copy does not touch the transcript.
	got[0].Content = "mutated"
	assert.Equal(t, "sys", tr.Messages()[0].Content)
}

func TestTranscriptRollback(t *testing.T) {
	tr := NewTranscript()
	tr.Append(provider.Message{Role: provider.RoleUser, Content: "one"})

	mark := tr.Mark()
	tr.Append(
		provider.Message{Role: provider.RoleAssistant, Content: "two"},
		provider.Message{Role: provider.RoleTool, Content: "three"},
	)
	assert.Equal(t, 3, tr.Len())

	tr.Rollback(mark)
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, "one", tr.Messages()[0].Content)

	// Rolling back past the end is harmless.
	tr.Rollback(99)
	assert.Equal(t, 1, tr.Len())
}

func TestBudgetTrimmerKeepsSystemAndRecent(t *testing.T) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: "instructions"},
		{Role: provider.RoleUser, Content: string(make([]byte, 400))},
		{Role: provider.RoleAssistant, Content: string(make([]byte, 400))},
		{Role: provider.RoleUser, Content: "latest question"},
	}

	trimmed := NewBudgetTrimmer(50).Trim(messages)

	assert.Equal(t, provider.RoleSystem, trimmed[0].Role)
	assert.Equal(t, "latest question", trimmed[len(trimmed)-1].Content)
	assert.Less(t, len(trimmed), len(messages))
}

func TestBudgetTrimmerNoopUnderBudget(t *testing.T) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: "sys"},
		{Role: provider.RoleUser, Content: "short"},
	}

	trimmed := NewBudgetTrimmer(1000).Trim(messages)
	assert.Equal(t, messages, trimmed)
}

func TestBudgetTrimmerAlwaysKeepsNewestMessage(t *testing.T) {
	messages := []provider.Message{
		{Role: provider.RoleUser, Content: string(make([]byte, 4000))},
		{Role: provider.RoleUser, Content: string(make([]byte, 4000))},
	}

	trimmed := NewBudgetTrimmer(10).Trim(messages)
	assert.Len(t, trimmed, 1)
}
