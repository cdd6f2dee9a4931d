package gitutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherWithoutGitignore(t *testing.T) {
	m, err := NewIgnoreMatcher(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.ShouldIgnore("main.go"))
	assert.False(t, m.ShouldIgnore("sub/dir/file.txt"))
}

func TestMatcherHonorsPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n"), 0o644))

	m, err := NewIgnoreMatcher(dir)
	require.NoError(t, err)

	assert.True(t, m.ShouldIgnore("debug.log"))
	assert.True(t, m.ShouldIgnore("nested/trace.log"))
	assert.True(t, m.ShouldIgnore("build/out.bin"))
	assert.False(t, m.ShouldIgnore("main.go"))
}

func TestMatcherAlwaysIgnoresGitDir(t *testing.T) {
	m, err := NewIgnoreMatcher(t.TempDir())
	require.NoError(t, err)

	assert.True(t, m.ShouldIgnore(".git/HEAD"))
	assert.True(t, m.ShouldIgnore(".git/objects/ab/cdef"))
}

func TestNoOpIgnorer(t *testing.T) {
	assert.False(t, NoOpIgnorer{}.ShouldIgnore("anything"))
	assert.False(t, NoOpIgnorer{}.ShouldIgnore(".git/HEAD"))
}
