// Package security classifies commands, paths, and URLs as allowed or
// blocked. Validators are pure predicates over an explicit Policy: they
// return Decision values, never errors, and never enforce anything
// themselves. Enforcement is centralized in the executor dispatch path so
// no tool can bypass validation by calling a different entry point.
package security

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Validator classifies operations against a fixed policy.
type Validator struct {
	policy    Policy
	dangerous []*regexp.Regexp
	sensitive []*regexp.Regexp
}

// NewValidator compiles the policy's pattern tables.
// Returns an error only for malformed regex sources in the policy.
func NewValidator(policy Policy) (*Validator, error) {
	v := &Validator{policy: policy}

	for _, src := range policy.DangerousPatterns {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("invalid dangerous pattern %q: %w", src, err)
		}
		v.dangerous = append(v.dangerous, re)
	}

	for _, src := range policy.SensitivePatterns {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("invalid sensitive pattern %q: %w", src, err)
		}
		v.sensitive = append(v.sensitive, re)
	}

	return v, nil
}

// ValidateCommand classifies a shell command string.
// Forbidden substrings block unconditionally; dangerous patterns block
// unless the policy allows dangerous commands.
func (v *Validator) ValidateCommand(command string) Decision {
	for _, forbidden := range v.policy.ForbiddenCommands {
		if strings.Contains(command, forbidden) {
			return block(fmt.Sprintf("forbidden command pattern: %s", forbidden))
		}
	}

	if !v.policy.AllowDangerousCommands {
		for _, re := range v.dangerous {
			if re.MatchString(command) {
				return block(fmt.Sprintf("dangerous command pattern %q requires explicit permission", re.String()))
			}
		}
	}

	return allow()
}

// ValidatePath classifies a filesystem operation on a path.
// Only filesystem metadata is consulted, never file contents.
func (v *Validator) ValidatePath(path string, op Operation) Decision {
	abs, err := resolvePath(path)
	if err != nil {
		return block(fmt.Sprintf("cannot resolve path: %v", err))
	}

	if len(v.policy.AllowedDirectories) > 0 && !underAny(abs, v.policy.AllowedDirectories) {
		return block(fmt.Sprintf("path outside allowed directories: %s", abs))
	}

	if underAny(abs, v.policy.BlockedDirectories) {
		return block(fmt.Sprintf("path in blocked directory: %s", abs))
	}

	if op == OpWrite || op == OpDelete {
		if underAny(abs, systemDirectories) {
			return block(fmt.Sprintf("cannot %s in system directory: %s", op, abs))
		}
	}

	if !v.policy.AllowSensitiveFiles && v.isSensitive(abs) {
		return block(fmt.Sprintf("sensitive file requires explicit override: %s", abs))
	}

	if op == OpRead {
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return block(fmt.Sprintf("path does not exist: %s", abs))
			}
			return block(fmt.Sprintf("cannot stat path: %v", err))
		}
		if !info.IsDir() && v.policy.MaxFileSize > 0 && info.Size() > v.policy.MaxFileSize {
			return block(fmt.Sprintf("file too large: %d bytes (limit %d)", info.Size(), v.policy.MaxFileSize))
		}
	}

	return allow()
}

// ValidateURL classifies a network request target. Loopback, link-local,
// and private ranges are allowed with a warning rather than blocked:
// local development is a legitimate use case, but the annotation travels
// with the decision.
func (v *Validator) ValidateURL(rawURL string) Decision {
	if !v.policy.AllowNetwork {
		return block("network access is disabled by security policy")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return block(fmt.Sprintf("cannot parse URL: %v", err))
	}

	if u.Scheme == "file" {
		return allowWarn("file:// URL accesses the local filesystem")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return block(fmt.Sprintf("unsupported URL scheme: %s", u.Scheme))
	}

	if isPrivateHost(u.Hostname()) {
		return allowWarn("accessing local/private network address")
	}

	return allow()
}

func (v *Validator) isSensitive(abs string) bool {
	lower := strings.ToLower(filepath.ToSlash(abs))
	for _, re := range v.sensitive {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// resolvePath expands ~ and makes the path absolute without requiring it
// to exist.
func resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// underAny reports whether abs is inside (or equal to) any of the roots.
func underAny(abs string, roots []string) bool {
	for _, root := range roots {
		resolved, err := resolvePath(root)
		if err != nil {
			continue
		}
		if abs == resolved || strings.HasPrefix(abs, resolved+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
