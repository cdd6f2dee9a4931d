package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Tools    ToolsConfig    `json:"tools"`
	Security SecurityConfig `json:"security"`
	Workflow WorkflowConfig `json:"workflow"`
	Provider ProviderConfig `json:"provider"`
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize int64 `json:"max_file_size"` // Default: 10 * 1024 * 1024 (10MB)

	// Command Execution
	MaxCommandOutputSize int64 `json:"max_command_output_size"` // Default: 1 * 1024 * 1024 (1MB)
	DefaultShellTimeout  int   `json:"default_shell_timeout"`   // Default: 30 (seconds)

	// Search
	MaxSearchResults int `json:"max_search_results"` // Default: 100
	MaxFindResults   int `json:"max_find_results"`   // Default: 1000

	// Web
	MaxFetchBodySize int64 `json:"max_fetch_body_size"` // Default: 50000 (bytes shown to the model)
	WebSearchResults int   `json:"web_search_results"`  // Default: 5
	WebTimeout       int   `json:"web_timeout"`         // Default: 30 (seconds)

	// Dispatch
	ExecuteTimeout int `json:"execute_timeout"` // Default: 120 (seconds, per tool call)
}

type SecurityConfig struct {
	AllowDangerousCommands bool     `json:"allow_dangerous_commands"` // Default: false
	AllowSensitiveFiles    bool     `json:"allow_sensitive_files"`    // Default: false
	AllowNetwork           bool     `json:"allow_network"`            // Default: true
	AllowedDirectories     []string `json:"allowed_directories"`      // Default: nil (all allowed)
	BlockedDirectories     []string `json:"blocked_directories"`      // Default: nil
}

type WorkflowConfig struct {
	MaxIterations      int `json:"max_iterations"`       // Default: 3
	ContextTokenBudget int `json:"context_token_budget"` // Default: 60000
}

type ProviderConfig struct {
	Model string `json:"model"` // Default: "gemini-2.0-flash"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			MaxFileSize:          10 * 1024 * 1024,
			MaxCommandOutputSize: 1 * 1024 * 1024,
			DefaultShellTimeout:  30,
			MaxSearchResults:     100,
			MaxFindResults:       1000,
			MaxFetchBodySize:     50000,
			WebSearchResults:     5,
			WebTimeout:           30,
			ExecuteTimeout:       120,
		},
		Security: SecurityConfig{
			AllowDangerousCommands: false,
			AllowSensitiveFiles:    false,
			AllowNetwork:           true,
		},
		Workflow: WorkflowConfig{
			MaxIterations:      3,
			ContextTokenBudget: 60000,
		},
		Provider: ProviderConfig{
			Model: "gemini-2.0-flash",
		},
	}
}
