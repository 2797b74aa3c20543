// Package main provides the vigil self-governance daemon. It runs the
// three-tier thinking loop over a workspace, gates every tool invocation
// through the policy engine, and records all decisions in a bounded audit
// log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/vigil/pkg/audit"
	appconfig "github.com/entrhq/vigil/pkg/config"
	"github.com/entrhq/vigil/pkg/identity"
	"github.com/entrhq/vigil/pkg/llm"
	"github.com/entrhq/vigil/pkg/llm/openai"
	"github.com/entrhq/vigil/pkg/llm/tokenizer"
	"github.com/entrhq/vigil/pkg/logging"
	"github.com/entrhq/vigil/pkg/policy"
	"github.com/entrhq/vigil/pkg/proposals"
	"github.com/entrhq/vigil/pkg/spiral"
	"github.com/entrhq/vigil/pkg/thinking"
	"github.com/entrhq/vigil/pkg/types"
	"github.com/entrhq/vigil/pkg/world"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	ConfigFile  string
	Workspace   string
	Autonomy    int
	DeepThink   bool
	Check       string
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("vigil v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cliConfig); err != nil {
		cancel()
		log.Printf("vigil failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags.
func parseFlags() *CLIConfig {
	cliConfig := &CLIConfig{}

	flag.StringVar(&cliConfig.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key")
	flag.StringVar(&cliConfig.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI API base URL")
	flag.StringVar(&cliConfig.Model, "model", "", "LLM model to use (overrides config file)")
	flag.StringVar(&cliConfig.ConfigFile, "config", "", "Path to configuration file (YAML, default ~/.vigil/config.yaml)")
	flag.StringVar(&cliConfig.Workspace, "workspace", "", "Workspace directory to govern (overrides config file)")
	flag.IntVar(&cliConfig.Autonomy, "autonomy", -1, "Autonomy level 0-5 (overrides config file)")
	flag.BoolVar(&cliConfig.DeepThink, "deep-think", false, "Run one quick/medium/deep cycle synchronously and exit")
	flag.StringVar(&cliConfig.Check, "check", "", "Evaluate the policy gate for one 'tool:target' request and exit")
	flag.DurationVar(&cliConfig.Timeout, "timeout", 0, "Overall run timeout (0 means run until interrupted)")
	flag.BoolVar(&cliConfig.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Vigil - Self-Governance Daemon for Autonomous Agents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vigil [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Run the thinking loop over the current directory\n")
		fmt.Fprintf(os.Stderr, "  vigil -workspace . -autonomy 2\n\n")
		fmt.Fprintf(os.Stderr, "  # One synchronous deep-think cycle\n")
		fmt.Fprintf(os.Stderr, "  vigil -deep-think\n\n")
		fmt.Fprintf(os.Stderr, "  # Ask the gate about a single request\n")
		fmt.Fprintf(os.Stderr, "  vigil -check \"run_command:rm -rf /tmp/scratch\" -autonomy 3\n\n")
	}

	flag.Parse()
	return cliConfig
}

func run(ctx context.Context, cliConfig *CLIConfig) error {
	cfg, err := loadConfig(cliConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger("vigil")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	auditLog := audit.NewLog(cfg.Audit.Capacity)
	engine := policy.NewEngine(nil, nil, auditLog)

	fmt.Printf("ethics digest: %s\n", engine.EthicsDigest())
	logger.Infof("policy engine ready (digest %s, autonomy %d)", engine.EthicsDigest(), cfg.AutonomyLevel)

	// One-shot gate evaluation mode.
	if cliConfig.Check != "" {
		return runCheck(engine, cliConfig.Check, cfg.AutonomyLevel)
	}

	collab, err := buildCollaborators(cfg, cliConfig, engine, logger)
	if err != nil {
		return err
	}

	mode := thinking.ModeStrict
	if cfg.ParseMode == "lenient" {
		mode = thinking.ModeLenient
	}

	scheduler := thinking.NewScheduler(collab, auditLog,
		thinking.WithTickInterval(cfg.Thinking.TickInterval.Std()),
		thinking.WithIntervals(
			cfg.Thinking.QuickInterval.Std(),
			cfg.Thinking.MediumInterval.Std(),
			cfg.Thinking.DeepInterval.Std(),
		),
		thinking.WithParseMode(mode),
		thinking.WithEthicsDigest(engine.EthicsDigest()),
		thinking.WithAuditWindow(cfg.Audit.Window.Std()),
		thinking.WithLogger(logger),
	)

	if cliConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliConfig.Timeout)
		defer cancel()
	}

	if cliConfig.DeepThink {
		log.Printf("Running one synchronous deep-think cycle...")
		state := scheduler.RunImmediateDeepThink(ctx)
		if state.CurrentThought != "" {
			log.Printf("Last thought: %s", state.CurrentThought)
		}
		log.Printf("Deep think complete (%d observations)", len(state.Observations))
		return nil
	}

	log.Printf("Starting thinking loop...")
	log.Printf("Workspace: %s", cfg.Workspace)
	log.Printf("Autonomy: %d", cfg.AutonomyLevel)

	state := scheduler.Run(ctx, nil)
	log.Printf("Thinking loop stopped (%d observations, %d unhandled)",
		len(state.Observations), len(state.UnhandledObservations()))
	return nil
}

// runCheck evaluates a single "tool:target" request against the gate and
// prints the verdict.
func runCheck(engine *policy.Engine, request string, autonomyLevel int) error {
	toolName, target := request, ""
	if idx := strings.Index(request, ":"); idx >= 0 {
		toolName, target = request[:idx], request[idx+1:]
	}

	err := engine.AssertCanExecute(policy.Context{
		Action:        "cli_check",
		ToolName:      toolName,
		Target:        target,
		AutonomyLevel: autonomyLevel,
	})
	if err != nil {
		fmt.Printf("DENIED: %v\n", err)
		return nil
	}
	fmt.Println("ALLOWED")
	return nil
}

// loadConfig merges the config file with CLI overrides.
func loadConfig(cliConfig *CLIConfig) (*appconfig.Config, error) {
	path := cliConfig.ConfigFile
	if path == "" {
		defaultPath, err := appconfig.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := appconfig.Load(path)
	if err != nil {
		return nil, err
	}

	if cliConfig.Workspace != "" {
		cfg.Workspace = cliConfig.Workspace
	}
	if cliConfig.Autonomy >= 0 {
		cfg.AutonomyLevel = cliConfig.Autonomy
	}
	if cliConfig.Model != "" {
		cfg.LLM.Model = cliConfig.Model
	}
	if cliConfig.BaseURL != "" {
		cfg.LLM.BaseURL = cliConfig.BaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildCollaborators wires the scheduler's external collaborators: LLM
// provider, long-term memory, proposal store, identity, and world model.
func buildCollaborators(cfg *appconfig.Config, cliConfig *CLIConfig, engine *policy.Engine, logger *logging.Logger) (thinking.Callbacks, error) {
	provider := buildProvider(cfg, cliConfig, logger)

	spiralDir := cfg.SpiralDir
	if spiralDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return thinking.Callbacks{}, fmt.Errorf("failed to get user home directory: %w", err)
		}
		spiralDir = filepath.Join(homeDir, ".vigil", "spiral")
	}

	spiralOpts := []spiral.FileStoreOption{}
	if counter, err := tokenizer.New(); err == nil {
		spiralOpts = append(spiralOpts, spiral.WithTokenCounter(counter))
	} else {
		logger.Warnf("tokenizer unavailable, using character estimate: %v", err)
	}

	store, err := spiral.NewFileStore(spiralDir, spiralOpts...)
	if err != nil {
		return thinking.Callbacks{}, fmt.Errorf("failed to create memory store: %w", err)
	}

	proposalStore, err := proposals.NewStore(
		proposals.WithProtectedPatterns(engine.ProtectedPatterns()),
	)
	if err != nil {
		return thinking.Callbacks{}, fmt.Errorf("failed to create proposal store: %w", err)
	}

	identityManager := identity.NewManager(cfg.AutonomyLevel)

	capturer, err := world.NewCapturer(cfg.Workspace)
	if err != nil {
		return thinking.Callbacks{}, fmt.Errorf("failed to create world capturer: %w", err)
	}
	schedule := world.NewSchedule()
	triggers := world.NewEvaluator()

	sessionID := logger.SessionID()

	return thinking.Callbacks{
		SendMessage: func(ctx context.Context, prompt string) (string, error) {
			reply, err := provider.Complete(ctx, []*llm.Message{
				llm.NewSystemMessage("You are the self-governance core of an autonomous agent. Answer only in the requested line format."),
				llm.NewUserMessage(prompt),
			})
			if err != nil {
				return "", err
			}
			return reply.Content, nil
		},
		QuerySpiral: func(ctx context.Context, query string, maxTokens int) (string, error) {
			return store.Query(ctx, query, maxTokens)
		},
		StoreInSpiral: func(ctx context.Context, content, entryType string, tags []string) error {
			return store.Write(ctx, &spiral.Entry{
				Meta: spiral.EntryMeta{
					ID:        spiral.NewEntryID(),
					CreatedAt: time.Now(),
					Kind:      spiral.Kind(entryType),
					Tags:      tags,
					SessionID: sessionID,
				},
				Content: content,
			})
		},
		CreateProposal: func(_ context.Context, title, description, rationale string, meta types.ProposalMeta) (*types.ProposalEntry, error) {
			entry, err := proposalStore.Create(title, description, rationale, meta)
			if err != nil {
				return nil, err
			}
			logger.Infof("proposal created: %s (%s/%s)", entry.Title, entry.Meta.Category, entry.Meta.Impact)
			return entry, nil
		},
		WouldLikelyBeDenied: proposalStore.WouldLikelyBeDenied,
		GetIdentity: func() *types.Identity {
			snapshot := identityManager.Snapshot()
			return &snapshot
		},
		UpdateIdentity: func(event types.IdentityEvent) {
			identityManager.ApplyEvent(event)
		},
		CaptureProjectState: capturer.Capture,
		GetScheduledTasks: func() []types.ScheduleEntry {
			return schedule.Due(time.Now())
		},
		CheckTriggers: triggers.Check,
		PushEvent: func(eventType types.EventType, payload map[string]interface{}) {
			logger.Debugf("event %s: %v", eventType, payload)
		},
	}, nil
}

// buildProvider returns the configured OpenAI provider, or the offline
// static fallback when no API key is available.
func buildProvider(cfg *appconfig.Config, cliConfig *CLIConfig, logger *logging.Logger) llm.Provider {
	providerOpts := []openai.ProviderOption{openai.WithModel(cfg.LLM.Model)}
	if cfg.LLM.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}

	provider, err := openai.NewProvider(cliConfig.APIKey, providerOpts...)
	if err != nil {
		logger.Warnf("no LLM provider available, analysis phases run offline: %v", err)
		return &llm.StaticProvider{Reply: "NO_PROPOSALS"}
	}
	return provider
}
