package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSingleCommand(t *testing.T) {
	e := New(nil)

	invs := e.Extract("@bash git status")

	require.Len(t, invs, 1)
	assert.Equal(t, "run_command", invs[0].Tool)
	assert.Equal(t, "git status", invs[0].Args)
	assert.Equal(t, OriginStandalone, invs[0].Origin)
	assert.Equal(t, 0, invs[0].Line)
}

func TestExtractExplanatoryPhraseSuppressed(t *testing.T) {
	e := New(nil)

	standalone, suppressed := e.Classify("You can use @bash git status to check.")

	assert.Empty(t, standalone)
	// Mid-line mention doesn't even qualify as a candidate, so nothing is
	// recorded either way.
	assert.Empty(t, suppressed)
}

func TestExtractLineInitialExplanatorySuppressed(t *testing.T) {
	e := New(nil)

	standalone, suppressed := e.Classify("@bash rm build would be one way to clean up")

	assert.Empty(t, standalone)
	require.Len(t, suppressed, 1)
	assert.Equal(t, OriginSuppressedExplanatory, suppressed[0].Origin)
	assert.Equal(t, "run_command", suppressed[0].Tool)
}

func TestExtractDenyPhraseCaseInsensitive(t *testing.T) {
	e := New(nil)

	standalone, suppressed := e.Classify("@bash ls FOR EXAMPLE")

	assert.Empty(t, standalone)
	require.Len(t, suppressed, 1)
	assert.Equal(t, OriginSuppressedExplanatory, suppressed[0].Origin)
}

func TestExtractFencedBlockSuppressed(t *testing.T) {
	e := New(nil)
	response := "Here is what I would run:\n```\n@bash git status\n```\nDone."

	standalone, suppressed := e.Classify(response)

	assert.Empty(t, standalone)
	require.Len(t, suppressed, 1)
	assert.Equal(t, OriginSuppressedCodeblock, suppressed[0].Origin)
	assert.Equal(t, "git status", suppressed[0].Args)
}

func TestExtractInlineCodeSpanSuppressed(t *testing.T) {
	e := New(nil)

	standalone, suppressed := e.Classify("`@bash git status`")

	assert.Empty(t, standalone)
	require.Len(t, suppressed, 1)
	assert.Equal(t, OriginSuppressedCodeblock, suppressed[0].Origin)
}

func TestExtractMidLineMentionNeverExtracted(t *testing.T) {
	e := New(nil)

	invs := e.Extract("Let me run it: @bash ls")

	assert.Empty(t, invs)
}

func TestExtractMixedResponse(t *testing.T) {
	e := New(nil)
	response := "@bash pwd\n\nYou might try @bash ls next."

	invs := e.Extract(response)

	require.Len(t, invs, 1)
	assert.Equal(t, "run_command", invs[0].Tool)
	assert.Equal(t, "pwd", invs[0].Args)
}

func TestExtractOrderAndDuplicatesPreserved(t *testing.T) {
	e := New(nil)
	response := "@bash pwd\n@read main.go\n@bash pwd"

	invs := e.Extract(response)

	require.Len(t, invs, 3)
	assert.Equal(t, "run_command", invs[0].Tool)
	assert.Equal(t, "read_file", invs[1].Tool)
	assert.Equal(t, "run_command", invs[2].Tool)
	assert.Equal(t, []int{0, 1, 2}, []int{invs[0].Line, invs[1].Line, invs[2].Line})
}

func TestExtractIdempotent(t *testing.T) {
	e := New(nil)
	response := "@bash pwd\n```\n@bash ls\n```\n@web golang context patterns"

	first := e.Extract(response)
	second := e.Extract(response)

	assert.Equal(t, first, second)
}

func TestExtractAliasNormalization(t *testing.T) {
	e := New(nil)

	tests := []struct {
		line string
		tool string
	}{
		{"@exec make test", "run_command"},
		{"@run make", "run_command"},
		{"@search golang generics", "web_search"},
		{"@curl https://example.com", "fetch_url"},
		{"@fetch https://example.com", "fetch_url"},
		{"@glob **/*.go", "find_file"},
		{"@grep TODO", "search_text"},
		{"@edit main.go old => new", "edit_file"},
		{"@write notes.txt hello", "write_file"},
		{"@run_command git status", "run_command"},
		{"@read_file cmd/main.go", "read_file"},
	}

	for _, tt := range tests {
		invs := e.Extract(tt.line)
		require.Len(t, invs, 1, "line %q", tt.line)
		assert.Equal(t, tt.tool, invs[0].Tool, "line %q", tt.line)
	}
}

func TestExtractUnknownKeywordIgnored(t *testing.T) {
	e := New(nil)

	assert.Empty(t, e.Extract("@frobnicate everything"))
}

func TestExtractNoArgumentNotACandidate(t *testing.T) {
	e := New(nil)

	assert.Empty(t, e.Extract("@bash"))
	assert.Empty(t, e.Extract("@bash   "))
}

func TestExtractZeroInvocations(t *testing.T) {
	e := New(nil)

	assert.Empty(t, e.Extract("All done, nothing left to run."))
}

func TestExtractExtraDenyPhrases(t *testing.T) {
	e := New([]string{"hypothetically"})

	standalone, suppressed := e.Classify("@bash ls hypothetically speaking")

	assert.Empty(t, standalone)
	require.Len(t, suppressed, 1)
	assert.Equal(t, OriginSuppressedExplanatory, suppressed[0].Origin)
}

func TestExtractFenceToggleResumes(t *testing.T) {
	e := New(nil)
	response := "```\n@bash inside\n```\n@bash git log"

	invs := e.Extract(response)

	require.Len(t, invs, 1)
	assert.Equal(t, "git log", invs[0].Args)
}

func TestExplainOrdersByLine(t *testing.T) {
	e := New(nil)
	response := "You could run @bash ls\n@bash pwd\n```\n@bash whoami\n```"

	all := e.Explain(response)

	require.Len(t, all, 2)
	assert.Equal(t, OriginStandalone, all[0].Origin)
	assert.Equal(t, 1, all[0].Line)
	assert.Equal(t, OriginSuppressedCodeblock, all[1].Origin)
	assert.Equal(t, 3, all[1].Line)
}
