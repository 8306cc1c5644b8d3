package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sema-dev/sema-core/internal/config"
	"github.com/sema-dev/sema-core/internal/engine"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/internal/storage"
	"github.com/spf13/cobra"
)

var (
	runModel        string
	runAgent        string
	runContinue     bool
	runSession      string
	runFormat       string
	runFiles        []string
	runTitle        string
	runPrompt       string
	runPromptFile   string
	runPromptInline string
	runDir          string
	runAutoApprove  bool
)

var runCmd = &cobra.Command{
	Use:   "run [message...]",
	Short: "Start an interactive OpenCode session",
	Long: `Start an interactive OpenCode session with the specified message.

Examples:
  opencode run "Fix the bug in main.go"
  opencode run --model anthropic/claude-sonnet-4 "Explain this code"
  opencode run --continue  # Continue last session
  opencode run --file main.go "Review this file"`,
	RunE: runInteractive,
}

func init() {
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "Model to use (provider/model format)")
	runCmd.Flags().StringVar(&runAgent, "agent", "", "Agent to use")
	runCmd.Flags().BoolVarP(&runContinue, "continue", "c", false, "Continue the last session")
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "Session ID to continue")
	runCmd.Flags().StringVar(&runFormat, "format", "default", "Output format (default|json)")
	runCmd.Flags().StringArrayVarP(&runFiles, "file", "f", nil, "File(s) to attach to message")
	runCmd.Flags().StringVar(&runTitle, "title", "", "Session title")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "Custom prompt template")
	runCmd.Flags().StringVar(&runPromptFile, "prompt-file", "", "Custom prompt from file")
	runCmd.Flags().StringVar(&runPromptInline, "prompt-inline", "", "Custom prompt as inline text")
	runCmd.Flags().StringVar(&runDir, "directory", "", "Working directory")
	runCmd.Flags().BoolVar(&runAutoApprove, "auto-approve", false, "Auto-approve all tool executions")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(runDir)
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}

	if runModel != "" {
		appConfig.Model = runModel
	} else if model := GetGlobalModel(); model != "" {
		appConfig.Model = model
	}

	message := strings.Join(args, " ")
	if message == "" && !runContinue && runSession == "" {
		return fmt.Errorf("message required. Usage: opencode run \"your message\"")
	}

	var fileContent strings.Builder
	for _, file := range runFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", file, err)
		}
		fileContent.WriteString(fmt.Sprintf("\n\n--- File: %s ---\n%s", file, string(content)))
	}
	if fileContent.Len() > 0 {
		message += fileContent.String()
	}

	store := storage.New(paths.StoragePath())

	ctx := context.Background()
	providerReg, err := provider.InitializeProviders(ctx, appConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}

	eng, err := engine.Bootstrap(workDir, appConfig, store, providerReg)
	if err != nil {
		return fmt.Errorf("failed to bootstrap engine: %w", err)
	}

	sess, err := resolveRunSession(ctx, eng, workDir)
	if err != nil {
		return err
	}

	unsubscribe := attachConsoleHandlers(eng, runAutoApprove)
	defer unsubscribe()

	fmt.Printf("Starting session %s...\n", sess.ID)
	fmt.Printf("Model: %s\n", appConfig.Model)
	fmt.Printf("Message: %s\n\n", truncate(message, 100))

	if err := eng.ProcessUserInput(ctx, sess.ID, message); err != nil {
		return fmt.Errorf("processing error: %w", err)
	}

	fmt.Println()
	return nil
}

func resolveRunSession(ctx context.Context, eng *engine.Engine, workDir string) (*engine.Session, error) {
	if runSession != "" {
		return eng.GetSession(ctx, runSession)
	}
	if runContinue {
		sessions, err := eng.ListSessions(ctx, workDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(sessions) > 0 {
			return sessions[len(sessions)-1], nil
		}
	}
	return eng.CreateSession(ctx, workDir, runTitle, runAgent)
}

// attachConsoleHandlers wires streaming output and permission prompts onto
// the engine's bus for the lifetime of a single run invocation.
func attachConsoleHandlers(eng *engine.Engine, autoApprove bool) func() {
	offChunk := eng.On(event.MessageTextChunk, func(e event.Event) {
		if data, ok := e.Data.(event.MessageChunkData); ok {
			fmt.Print(data.Delta)
		}
	})

	offPermission := eng.On(event.ToolPermissionRequest, func(e event.Event) {
		req, ok := e.Data.(event.ToolPermissionRequestData)
		if !ok {
			return
		}
		decision := event.DecisionAllow
		if !autoApprove {
			decision = promptForDecision(req)
		}
		eng.RespondToToolPermission(req.AgentID, req.CallID, decision, "")
	})

	return func() {
		eng.Off(offChunk)
		eng.Off(offPermission)
	}
}

func promptForDecision(req event.ToolPermissionRequestData) event.PermissionDecision {
	fmt.Printf("\n[permission] %s wants to run %q: %s\nAllow? (y/N) ", req.AgentID, req.ToolName, req.Title)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return event.DecisionAllow
	default:
		return event.DecisionRefuse
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
