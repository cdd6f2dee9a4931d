package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calebhart/drift/internal/config"
	"github.com/calebhart/drift/internal/executor"
	"github.com/calebhart/drift/internal/extract"
	"github.com/calebhart/drift/internal/permission"
	"github.com/calebhart/drift/internal/provider"
	"github.com/calebhart/drift/internal/provider/gemini"
	"github.com/calebhart/drift/internal/security"
	"github.com/calebhart/drift/internal/session"
	"github.com/calebhart/drift/internal/tool"
	"github.com/calebhart/drift/internal/tool/gitutil"
	"github.com/calebhart/drift/internal/tool/shellexec"
	"github.com/calebhart/drift/internal/ui"
	"github.com/calebhart/drift/internal/workflow"
)

type rootFlags struct {
	debug           bool
	continueSession bool
	model           string
	initialQuery    string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "drift [query]",
		Short:        "An interactive coding agent for the terminal",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.initialQuery = strings.Join(args, " ")
			return run(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&flags.continueSession, "continue", false, "resume the most recent session for this workspace")
	cmd.Flags().StringVar(&flags.model, "model", "", "override the configured model")

	return cmd
}

func run(ctx context.Context, flags *rootFlags) error {
	// .env is a convenience for GEMINI_API_KEY; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\nusing defaults\n", err)
		cfg = config.DefaultConfig()
	}
	if flags.model != "" {
		cfg.Provider.Model = flags.model
	}

	overlay, err := config.LoadPolicyOverlay(config.ConfigFileReader{})
	if err != nil {
		return fmt.Errorf("loading policy overlay: %w", err)
	}

	logger, err := newLogger(flags.debug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	workspaceRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace root: %w", err)
	}

	validator, err := security.NewValidator(buildPolicy(cfg, overlay))
	if err != nil {
		return fmt.Errorf("compiling security policy: %w", err)
	}

	store, err := session.Open(filepath.Join(configHome(), "sessions.db"))
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() { _ = store.Close() }()

	terminal := ui.New(ui.GlamourRenderer{})

	registry := buildRegistry(cfg, workspaceRoot, logger)
	gate := permission.NewGate()
	dispatcher := executor.NewDispatcher(
		registry,
		validator,
		gate,
		&uiConfirmer{ui: terminal},
		logger,
		time.Duration(cfg.Tools.ExecuteTimeout)*time.Second,
		workspaceRoot,
	)

	extractor := extract.New(overlay.DenyPhrases)
	trimmer := workflow.NewBudgetTrimmer(cfg.Workflow.ContextTokenBudget)

	replCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer terminal.Quit()
		repl(replCtx, replDeps{
			cfg:           cfg,
			flags:         flags,
			logger:        logger,
			workspaceRoot: workspaceRoot,
			ui:            terminal,
			store:         store,
			registry:      registry,
			extractor:     extractor,
			dispatcher:    dispatcher,
			trimmer:       trimmer,
		})
	}()

	// Bubble Tea owns the terminal; it must run on the main goroutine.
	err = terminal.Run()
	cancel()
	return err
}

type replDeps struct {
	cfg           *config.Config
	flags         *rootFlags
	logger        *zap.Logger
	workspaceRoot string
	ui            *ui.UI
	store         *session.Store
	registry      *tool.Registry
	extractor     *extract.Extractor
	dispatcher    *executor.Dispatcher
	trimmer       workflow.Trimmer
}

// repl drives the conversation until the UI exits or the context is
// cancelled. Fatal setup errors degrade into an on-screen message so the
// user can read them before quitting.
func repl(ctx context.Context, deps replDeps) {
	<-deps.ui.Ready()

	deps.ui.WriteStatus("starting", "connecting to model")

	apiKey := os.Getenv("GEMINI_API_KEY")
	model, err := gemini.New(ctx, apiKey, deps.cfg.Provider.Model)
	if err != nil {
		deps.ui.WriteStatus("error", "startup failed")
		deps.ui.WriteNotice(fmt.Sprintf("error: %v", err))
		deps.ui.WriteNotice("Set GEMINI_API_KEY and restart. Press Ctrl+C to exit.")
		<-ctx.Done()
		return
	}

	transcript, sess := restoreOrCreateSession(ctx, deps)

	controller := workflow.NewController(
		model,
		deps.extractor,
		deps.dispatcher,
		deps.trimmer,
		&uiNotifier{ui: deps.ui},
		deps.logger,
		deps.cfg.Workflow.MaxIterations,
	)

	deps.ui.WriteStatus("", "")

	if query := strings.TrimSpace(deps.flags.initialQuery); query != "" {
		deps.ui.WriteNotice(fmt.Sprintf("> %s", query))
		runTurn(ctx, deps, controller, transcript, sess, query)
	}

	for {
		input, err := deps.ui.ReadInput(ctx, "What would you like to do?")
		if err != nil {
			return
		}
		runTurn(ctx, deps, controller, transcript, sess, input)
	}
}

func runTurn(ctx context.Context, deps replDeps, controller *workflow.Controller, transcript *workflow.Transcript, sess session.Session, input string) {
	before := transcript.Len()
	outcome, err := controller.Run(ctx, transcript, input)
	if err != nil {
		deps.logger.Error("turn failed", zap.Error(err))
		deps.ui.WriteNotice(fmt.Sprintf("error: %v", err))
		return
	}

	if outcome.Reason == workflow.StopIterationLimit {
		deps.ui.WriteNotice(fmt.Sprintf("stopped after %d tool cycles; ask me to continue if needed", outcome.Cycles))
	}

	newMessages := transcript.Messages()[min(before, transcript.Len()):]
	if len(newMessages) > 0 {
		if err := deps.store.Append(ctx, sess.ID, newMessages...); err != nil {
			deps.logger.Warn("failed to persist turn", zap.Error(err))
		}
	}
}

// restoreOrCreateSession seeds the transcript with the system prompt and,
// with --continue, the stored transcript of the workspace's last session.
func restoreOrCreateSession(ctx context.Context, deps replDeps) (*workflow.Transcript, session.Session) {
	transcript := workflow.NewTranscript(provider.Message{
		Role:    provider.RoleSystem,
		Content: provider.BuildSystemPrompt(deps.workspaceRoot, toolDescriptions(deps.registry)),
	})

	if deps.flags.continueSession {
		if recent, found, err := deps.store.RecentForWorkspace(ctx, deps.workspaceRoot); err == nil && found {
			if messages, err := deps.store.Load(ctx, recent.ID); err == nil {
				transcript.Append(messages...)
				deps.ui.WriteNotice(fmt.Sprintf("resumed session from %s", recent.UpdatedAt.Local().Format(time.DateTime)))
				return transcript, recent
			}
		}
		deps.ui.WriteNotice("no previous session for this workspace; starting fresh")
	}

	sess, err := deps.store.Create(ctx, deps.workspaceRoot)
	if err != nil {
		deps.logger.Warn("failed to create session record", zap.Error(err))
	}
	return transcript, sess
}

func buildRegistry(cfg *config.Config, workspaceRoot string, logger *zap.Logger) *tool.Registry {
	var ignorer gitutil.Ignorer
	ignorer, err := gitutil.NewIgnoreMatcher(workspaceRoot)
	if err != nil {
		logger.Warn("gitignore unavailable", zap.Error(err))
		ignorer = gitutil.NoOpIgnorer{}
	}

	runner := shellexec.NewRunner(cfg.Tools.MaxCommandOutputSize)
	webTimeout := time.Duration(cfg.Tools.WebTimeout) * time.Second

	return tool.NewRegistry(
		tool.NewReadFile(workspaceRoot, cfg.Tools.MaxFileSize),
		tool.NewWriteFile(workspaceRoot),
		tool.NewEditFile(workspaceRoot),
		tool.NewFindFile(workspaceRoot, ignorer, cfg.Tools.MaxFindResults),
		tool.NewSearchText(workspaceRoot, ignorer, cfg.Tools.MaxSearchResults),
		tool.NewRunCommand(runner, workspaceRoot, time.Duration(cfg.Tools.DefaultShellTimeout)*time.Second),
		tool.NewWebSearch(webTimeout, cfg.Tools.WebSearchResults),
		tool.NewFetchURL(webTimeout, int(cfg.Tools.MaxFetchBodySize)),
	)
}

func toolDescriptions(registry *tool.Registry) []provider.ToolDescription {
	usage := map[string]string{
		"read_file":   "path",
		"write_file":  "path content",
		"edit_file":   "path old-text => new-text",
		"find_file":   "pattern [path]",
		"search_text": "pattern [path]",
		"run_command": "shell command",
		"web_search":  "query",
		"fetch_url":   "url",
	}

	var out []provider.ToolDescription
	for _, t := range registry.All() {
		out = append(out, provider.ToolDescription{
			Name:        t.Name(),
			Description: t.Description(),
			Usage:       usage[t.Name()],
		})
	}
	return out
}

// buildPolicy layers config switches and the yaml overlay over the default
// security tables. Overlay entries only ever extend the defaults.
func buildPolicy(cfg *config.Config, overlay *config.PolicyOverlay) security.Policy {
	policy := security.DefaultPolicy()
	policy.AllowDangerousCommands = cfg.Security.AllowDangerousCommands
	policy.AllowSensitiveFiles = cfg.Security.AllowSensitiveFiles
	policy.AllowNetwork = cfg.Security.AllowNetwork
	policy.MaxFileSize = cfg.Tools.MaxFileSize
	policy.AllowedDirectories = cfg.Security.AllowedDirectories
	policy.BlockedDirectories = cfg.Security.BlockedDirectories
	policy.ForbiddenCommands = append(policy.ForbiddenCommands, overlay.ForbiddenCommands...)
	policy.DangerousPatterns = append(policy.DangerousPatterns, overlay.DangerousPatterns...)
	policy.SensitivePatterns = append(policy.SensitivePatterns, overlay.SensitivePaths...)
	return policy
}

// newLogger writes structured logs to a file so they never fight the TUI
// for the terminal.
func newLogger(debug bool) (*zap.Logger, error) {
	logDir := configHome()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{filepath.Join(logDir, "drift.log")}
	zapCfg.ErrorOutputPaths = zapCfg.OutputPaths
	if debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zapCfg.Build()
}

func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", config.ConfigDir)
}

// uiConfirmer bridges the dispatcher's permission prompt to the terminal.
type uiConfirmer struct {
	ui *ui.UI
}

func (c *uiConfirmer) Confirm(ctx context.Context, req executor.ConfirmRequest) (executor.ConfirmDecision, error) {
	prompt := fmt.Sprintf("Allow %s? (%s)", req.Capability, req.Summary)
	decision, err := c.ui.ReadPermission(ctx, prompt)
	if err != nil {
		return executor.ConfirmDeny, err
	}
	switch decision {
	case ui.DecisionAllow:
		return executor.ConfirmAllowOnce, nil
	case ui.DecisionAllowAlways:
		return executor.ConfirmAllowAlways, nil
	default:
		return executor.ConfirmDeny, nil
	}
}

// uiNotifier surfaces loop progress in the terminal.
type uiNotifier struct {
	ui *ui.UI
}

func (n *uiNotifier) AssistantMessage(text string) {
	n.ui.WriteAssistant(text)
}

func (n *uiNotifier) ToolStarted(inv extract.Invocation) {
	n.ui.WriteStatus("", fmt.Sprintf("running %s", inv.Tool))
	n.ui.WriteNotice(fmt.Sprintf("→ @%s %s", inv.Tool, inv.Args))
}

func (n *uiNotifier) ToolFinished(inv extract.Invocation, res tool.Result) {
	if res.Success {
		n.ui.WriteNotice(fmt.Sprintf("✓ %s", inv.Tool))
	} else {
		n.ui.WriteNotice(fmt.Sprintf("✗ %s: %s", inv.Tool, res.Error))
	}
	n.ui.WriteStatus("", "")
}
