package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PolicyFileName is the yaml overlay file name under ~/.config/drift.
const PolicyFileName = "policy.yaml"

// PolicyOverlay extends the classification and security tables.
// Entries are additive: they extend the built-in defaults rather than
// replacing them, so an overlay can never weaken the baseline policy.
type PolicyOverlay struct {
	// DenyPhrases extends the extractor's explanatory-phrase deny list.
	DenyPhrases []string `yaml:"deny_phrases"`
	// ForbiddenCommands extends the substring blacklist for shell commands.
	ForbiddenCommands []string `yaml:"forbidden_commands"`
	// DangerousPatterns extends the regex list of dangerous command shapes.
	DangerousPatterns []string `yaml:"dangerous_patterns"`
	// SensitivePaths extends the regex list of sensitive file patterns.
	SensitivePaths []string `yaml:"sensitive_paths"`
}

// LoadPolicyOverlay reads ~/.config/drift/policy.yaml if present.
// A missing file is not an error; an empty overlay is returned.
func LoadPolicyOverlay(fs FileSystem) (*PolicyOverlay, error) {
	overlay := &PolicyOverlay{}

	homeDir, err := fs.UserHomeDir()
	if err != nil {
		return overlay, nil
	}

	policyPath := filepath.Join(homeDir, ".config", ConfigDir, PolicyFileName)

	data, err := fs.ReadFile(policyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return overlay, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, err
	}

	return overlay, nil
}
