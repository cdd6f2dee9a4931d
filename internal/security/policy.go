package security

// Operation identifies what a tool intends to do with a path.
type Operation string

const (
	OpRead   Operation = "read"
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
)

// Decision is the outcome of a validation. It is a pure value, recomputed
// on every call and never cached: policy can depend on mutable permission
// state. A non-empty Warning on an allowed decision annotates the call
// without blocking it.
type Decision struct {
	Allowed bool
	Reason  string
	Warning string
}

func allow() Decision              { return Decision{Allowed: true} }
func allowWarn(w string) Decision  { return Decision{Allowed: true, Warning: w} }
func block(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Policy is the explicit configuration a Validator is constructed with.
// It is a value, not ambient state, so independent sessions (and tests)
// never interfere.
type Policy struct {
	AllowDangerousCommands bool
	AllowSensitiveFiles    bool
	AllowNetwork           bool
	MaxFileSize            int64
	AllowedDirectories     []string
	BlockedDirectories     []string

	// ForbiddenCommands are substring-matched against the whole command.
	ForbiddenCommands []string
	// DangerousPatterns are regex sources matched case-insensitively.
	DangerousPatterns []string
	// SensitivePatterns are regex sources matched against lowercased paths.
	SensitivePatterns []string
}

// defaultForbiddenCommands can never run, no matter what is granted.
// The listed patterns are a minimum baseline, not a complete security
// boundary for untrusted input.
var defaultForbiddenCommands = []string{
	":(){:|:&};:", // fork bomb
	"rm -rf /",
	"rm -rf /*",
	"mkfs.",
	"> /dev/sd",
	"dd if=/dev/zero",
	"mv /* /dev/null",
	"chmod -R 777 /",
}

// defaultDangerousPatterns require the dangerous-commands override.
var defaultDangerousPatterns = []string{
	`rm\s+-[rf]+`,
	`rm\s+.*\*`,
	`dd\s+if=`,
	`mkfs\.`,
	`format\s+`,
	`>\s*/dev/`,
	`chmod\s+-R\s+777`,
	`chown\s+-R`,
	`wget.*\|\s*sh`,
	`curl.*\|\s*(ba)?sh`,
}

// defaultSensitivePatterns match private keys, credential files, and
// credential directories.
var defaultSensitivePatterns = []string{
	`.*\.pem$`,
	`.*\.key$`,
	`.*\.crt$`,
	`.*\.p12$`,
	`.*\.pfx$`,
	`.*\.env$`,
	`.*\.env\..*$`,
	`.*credentials.*`,
	`.*secret.*`,
	`.*password.*`,
	`.*\.ssh/.*`,
	`.*\.aws/.*`,
	`.*\.gnupg/.*`,
}

// systemDirectories are blocked unconditionally for write and delete.
var systemDirectories = []string{
	"/bin", "/sbin", "/usr/bin", "/usr/sbin",
	"/etc", "/sys", "/proc", "/boot", "/dev",
}

// DefaultPolicy returns the baseline policy with all built-in tables.
func DefaultPolicy() Policy {
	return Policy{
		AllowNetwork:      true,
		MaxFileSize:       10 * 1024 * 1024,
		ForbiddenCommands: defaultForbiddenCommands,
		DangerousPatterns: defaultDangerousPatterns,
		SensitivePatterns: defaultSensitivePatterns,
	}
}
