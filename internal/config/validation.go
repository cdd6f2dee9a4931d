package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Tools validation
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.DefaultShellTimeout < 1 {
		errs = append(errs, "tools.default_shell_timeout must be >= 1")
	}
	if c.Tools.MaxSearchResults < 1 {
		errs = append(errs, "tools.max_search_results must be >= 1")
	}
	if c.Tools.MaxFindResults < 1 {
		errs = append(errs, "tools.max_find_results must be >= 1")
	}
	if c.Tools.MaxFetchBodySize < 1 {
		errs = append(errs, "tools.max_fetch_body_size must be >= 1")
	}
	if c.Tools.WebSearchResults < 1 {
		errs = append(errs, "tools.web_search_results must be >= 1")
	}
	if c.Tools.WebTimeout < 1 {
		errs = append(errs, "tools.web_timeout must be >= 1")
	}
	if c.Tools.ExecuteTimeout < 1 {
		errs = append(errs, "tools.execute_timeout must be >= 1")
	}

	// Workflow validation
	if c.Workflow.MaxIterations < 1 {
		errs = append(errs, "workflow.max_iterations must be >= 1")
	}
	if c.Workflow.ContextTokenBudget < 1 {
		errs = append(errs, "workflow.context_token_budget must be >= 1")
	}

	// Provider validation
	if c.Provider.Model == "" {
		errs = append(errs, "provider.model must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
