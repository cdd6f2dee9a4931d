package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T, mutate func(*Policy)) *Validator {
	t.Helper()
	policy := DefaultPolicy()
	if mutate != nil {
		mutate(&policy)
	}
	v, err := NewValidator(policy)
	require.NoError(t, err)
	return v
}

func TestValidateCommandForbidden(t *testing.T) {
	v := newTestValidator(t, nil)

	tests := []string{
		"rm -rf /",
		"rm -rf /*",
		"echo hi && rm -rf /",
		":(){:|:&};:",
		"dd if=/dev/zero of=/dev/sda",
		"mkfs.ext4 /dev/sda1",
		"chmod -R 777 /",
	}

	for _, cmd := range tests {
		d := v.ValidateCommand(cmd)
		assert.False(t, d.Allowed, "command %q should be blocked", cmd)
		assert.NotEmpty(t, d.Reason, "command %q", cmd)
	}
}

func TestValidateCommandAllowed(t *testing.T) {
	v := newTestValidator(t, nil)

	tests := []string{
		"git status",
		"go test ./...",
		"ls -la",
		"make build",
	}

	for _, cmd := range tests {
		d := v.ValidateCommand(cmd)
		assert.True(t, d.Allowed, "command %q should be allowed", cmd)
	}
}

func TestValidateCommandDangerousRequiresOverride(t *testing.T) {
	v := newTestValidator(t, nil)

	d := v.ValidateCommand("rm -rf build/")
	assert.False(t, d.Allowed)

	d = v.ValidateCommand("curl https://get.example.com | bash")
	assert.False(t, d.Allowed)

	permissive := newTestValidator(t, func(p *Policy) { p.AllowDangerousCommands = true })
	d = permissive.ValidateCommand("rm -rf build/")
	assert.True(t, d.Allowed)

	// Forbidden patterns stay blocked even with the override.
	d = permissive.ValidateCommand("rm -rf /")
	assert.False(t, d.Allowed)
}

func TestValidatePathSystemDirectory(t *testing.T) {
	v := newTestValidator(t, nil)

	d := v.ValidatePath("/etc/passwd", OpWrite)
	assert.False(t, d.Allowed)

	d = v.ValidatePath("/usr/bin/ls", OpDelete)
	assert.False(t, d.Allowed)
}

func TestValidatePathSensitiveFiles(t *testing.T) {
	v := newTestValidator(t, nil)
	dir := t.TempDir()

	key := filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(key, []byte("private"), 0o600))

	d := v.ValidatePath(key, OpRead)
	assert.False(t, d.Allowed)

	d = v.ValidatePath(filepath.Join(dir, ".env"), OpWrite)
	assert.False(t, d.Allowed)

	override := newTestValidator(t, func(p *Policy) { p.AllowSensitiveFiles = true })
	d = override.ValidatePath(key, OpRead)
	assert.True(t, d.Allowed)
}

func TestValidatePathReadLimits(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.log")
	require.NoError(t, os.WriteFile(big, make([]byte, 128), 0o644))

	v := newTestValidator(t, func(p *Policy) { p.MaxFileSize = 64 })

	d := v.ValidatePath(big, OpRead)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "too large")

	d = v.ValidatePath(filepath.Join(dir, "missing.txt"), OpRead)
	assert.False(t, d.Allowed)
}

func TestValidatePathAllowedDirectories(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(inside, []byte("x"), 0o644))

	v := newTestValidator(t, func(p *Policy) { p.AllowedDirectories = []string{dir} })

	d := v.ValidatePath(inside, OpRead)
	assert.True(t, d.Allowed)

	d = v.ValidatePath("/tmp/elsewhere.txt", OpWrite)
	assert.False(t, d.Allowed)
}

func TestValidateURLPrivateRangesWarn(t *testing.T) {
	v := newTestValidator(t, nil)

	tests := []string{
		"http://localhost:8080/health",
		"http://127.0.0.1/",
		"https://10.0.0.5/api",
		"http://192.168.1.10/",
		"http://172.16.0.1/",
	}

	for _, raw := range tests {
		d := v.ValidateURL(raw)
		assert.True(t, d.Allowed, "url %q should be allowed", raw)
		assert.NotEmpty(t, d.Warning, "url %q should carry a warning", raw)
	}
}

func TestValidateURLPublicAllowed(t *testing.T) {
	v := newTestValidator(t, nil)

	d := v.ValidateURL("https://pkg.go.dev/context")
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Warning)
}

func TestValidateURLNetworkDisabled(t *testing.T) {
	v := newTestValidator(t, func(p *Policy) { p.AllowNetwork = false })

	d := v.ValidateURL("https://example.com")
	assert.False(t, d.Allowed)
}

func TestValidateURLSchemes(t *testing.T) {
	v := newTestValidator(t, nil)

	d := v.ValidateURL("file:///etc/hosts")
	assert.True(t, d.Allowed)
	assert.NotEmpty(t, d.Warning)

	d = v.ValidateURL("gopher://example.com")
	assert.False(t, d.Allowed)
}

func TestDecisionsRecomputedNotCached(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "grows.txt")
	require.NoError(t, os.WriteFile(target, []byte("small"), 0o644))

	v := newTestValidator(t, func(p *Policy) { p.MaxFileSize = 16 })

	assert.True(t, v.ValidatePath(target, OpRead).Allowed)

	require.NoError(t, os.WriteFile(target, make([]byte, 64), 0o644))
	assert.False(t, v.ValidatePath(target, OpRead).Allowed)
}
