package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hmartin/llmsuggest/internal/backend"
	"github.com/hmartin/llmsuggest/internal/config"
	"github.com/hmartin/llmsuggest/internal/core"
	"github.com/hmartin/llmsuggest/internal/histstore"
	"github.com/hmartin/llmsuggest/internal/install"
	"github.com/hmartin/llmsuggest/internal/orchestrate"
	"github.com/hmartin/llmsuggest/internal/session"
	"github.com/hmartin/llmsuggest/internal/ui"
	"github.com/hmartin/llmsuggest/internal/zle"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	completeMode     string
	completeProvider string
	completeSession  string
	runProvider      string
	historyLimit     int
	historyCopy      int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "llmsuggest",
		Short:         "LLM-powered command suggestions for your shell",
		Long:          "llmsuggest turns natural language on your command line into shell commands, and explains commands you have typed",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	completeCmd := &cobra.Command{
		Use:    "complete",
		Short:  "Run one interactive completion (invoked by the zsh widget)",
		Hidden: true,
		RunE:   runComplete,
		// Errors must stay off stdout/stderr here: the widget evals stdout
		// and an interrupt should return control silently.
		SilenceErrors: true,
	}
	completeCmd.Flags().StringVar(&completeMode, "mode", "generate", "generate or explain")
	completeCmd.Flags().StringVar(&completeProvider, "provider", "", "backend provider (default from config)")
	completeCmd.Flags().StringVar(&completeSession, "session", "", "interactive session identifier")

	runCmd := &cobra.Command{
		Use:   "run [generate|explain]",
		Short: "Run one backend query: reads the query on stdin, prints the response",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	runCmd.Flags().StringVar(&runProvider, "provider", "", "backend provider (default from config)")

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure llmsuggest with your preferred LLM provider",
		RunE:  runConfigure,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Add the llmsuggest widget to your .zshrc",
		RunE:  runInstall,
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the llmsuggest widget from your .zshrc",
		RunE:  runUninstall,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show install state and backend prerequisites",
		RunE:  runStatus,
	}

	initCmd := &cobra.Command{
		Use:       "init [shell]",
		Short:     "Print the shell integration script",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"zsh"},
		RunE:      runInit,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent suggestions",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	historyCmd.Flags().Int64Var(&historyCopy, "copy", 0, "copy the command with this id to the clipboard")

	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runComplete drives one hotkey press end to end. The current buffer arrives
// on stdin; buffer mutations leave as a zle script on stdout. Nothing is
// written on failure, so the widget leaves the command line untouched.
func runComplete(cmd *cobra.Command, args []string) error {
	mode := backend.Mode(completeMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode: %q", completeMode)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	logger, err := core.NewLogger(cfg.LogLevel)
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read buffer: %w", err)
	}
	editor := zle.NewEditor(strings.TrimSuffix(string(input), "\n"), os.Stdout)

	provider := completeProvider
	if provider == "" {
		provider = cfg.Provider
	}
	b, err := backend.New(provider, cfg)
	if err != nil {
		return err
	}

	sess := &orchestrate.Session{}
	var sessions *session.Store
	if completeSession != "" {
		if sessions, err = session.NewStore(); err == nil {
			if loaded, loadErr := sessions.Load(completeSession); loadErr == nil {
				sess = loaded
			}
		} else {
			logger.Warn("session store unavailable", zap.Error(err))
			sessions = nil
		}
	}

	var recorder orchestrate.Recorder
	if dbPath, pathErr := core.HistoryFile(); pathErr == nil {
		if store, openErr := histstore.Open(dbPath); openErr == nil {
			defer store.Close()
			recorder = store
		} else {
			logger.Warn("history store unavailable", zap.Error(openErr))
		}
	}

	var spinnerWriter io.Writer
	if term.IsTerminal(int(os.Stderr.Fd())) {
		spinnerWriter = os.Stderr
	}

	orch, err := orchestrate.New(orchestrate.Options{
		Backend:       b,
		Editor:        editor,
		Session:       sess,
		SpinnerWriter: spinnerWriter,
		Recorder:      recorder,
		Timeout:       cfg.Timeout(),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.Complete(ctx, mode); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("completion interrupted")
		} else {
			logger.Error("completion failed", zap.Error(err))
		}
		return err
	}

	if err := editor.Flush(); err != nil {
		return err
	}

	if sessions != nil {
		if err := sessions.Save(completeSession, sess); err != nil {
			logger.Warn("failed to save session", zap.Error(err))
		}
	}

	return nil
}

// runQuery is the standalone backend surface: query on stdin, response on
// stdout. Failures are printed as response text, matching the interactive
// protocol.
func runQuery(cmd *cobra.Command, args []string) error {
	mode := backend.Mode(args[0])
	if !mode.Valid() {
		fmt.Printf("ERROR: unknown mode: %s\n", args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	provider := runProvider
	if provider == "" {
		provider = cfg.Provider
	}
	b, err := backend.New(provider, cfg)
	if err != nil {
		fmt.Println("ERROR: " + err.Error())
		os.Exit(1)
	}

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read query: %w", err)
	}
	query, err := backend.ValidateInput(string(input))
	if err != nil {
		fmt.Printf("echo %q\n", "ERROR: Invalid input: "+err.Error())
		os.Exit(1)
	}

	if err := b.CheckPrerequisites(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	result, err := backend.Run(ctx, b, mode, query)
	if err != nil {
		fmt.Printf("echo %q\n", "ERROR: Request failed: "+err.Error())
		os.Exit(1)
	}

	fmt.Println(result)
	return nil
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	provider, err := ui.SelectProvider(backend.Providers(), cfg.Provider)
	if err != nil {
		return err
	}
	cfg.Provider = provider

	if provider == "openai" {
		model, err := ui.AskModel(cfg.OpenAIModel)
		if err != nil {
			return err
		}
		cfg.OpenAIModel = model
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Configured %s as the default provider", provider))

	b, err := backend.New(provider, cfg)
	if err == nil {
		if prereqErr := b.CheckPrerequisites(); prereqErr != nil {
			ui.ShowError(prereqErr.Error())
		}
	}

	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	rcPath, err := install.ZshrcPath()
	if err != nil {
		return err
	}

	ok, err := ui.Confirm(fmt.Sprintf("Add the llmsuggest widget to %s?", rcPath), true)
	if err != nil || !ok {
		return err
	}

	backupPath, err := install.Install(rcPath)
	if err != nil {
		return err
	}

	ui.ShowSuccess("Installed. Restart your shell or run: source " + rcPath)
	if backupPath != "" {
		ui.ShowInfo("Backup written to " + backupPath)
	}

	exists, err := config.Exists()
	if err == nil && !exists {
		ui.ShowInfo("No configuration found; run `llmsuggest configure` to pick a provider.")
	}

	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	rcPath, err := install.ZshrcPath()
	if err != nil {
		return err
	}

	ok, err := ui.Confirm(fmt.Sprintf("Remove the llmsuggest widget from %s?", rcPath), false)
	if err != nil || !ok {
		return err
	}

	removed, err := install.Uninstall(rcPath)
	if err != nil {
		return err
	}

	if removed {
		ui.ShowSuccess("Uninstalled")
	} else {
		ui.ShowInfo("Nothing to remove: no llmsuggest block found")
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rcPath, err := install.ZshrcPath()
	if err != nil {
		return err
	}

	installed, err := install.Installed(rcPath)
	if err != nil {
		return err
	}
	if installed {
		ui.ShowSuccess("Widget installed in " + rcPath)
	} else {
		ui.ShowError("Widget not installed (run `llmsuggest install`)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	exists, err := config.Exists()
	if err != nil {
		return err
	}
	if exists {
		ui.ShowSuccess("Configured provider: " + cfg.Provider)
	} else {
		ui.ShowInfo("No configuration (defaults to " + cfg.Provider + ")")
	}

	for _, name := range backend.Providers() {
		b, err := backend.New(name, cfg)
		if err != nil {
			continue
		}
		if prereqErr := b.CheckPrerequisites(); prereqErr != nil {
			ui.ShowError(name + ": " + prereqErr.Error())
		} else {
			ui.ShowSuccess(name + ": ready")
		}
	}

	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if args[0] != "zsh" {
		return fmt.Errorf("unsupported shell: %s", args[0])
	}
	fmt.Print(zle.WidgetScript)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, err := core.HistoryFile()
	if err != nil {
		return err
	}
	store, err := histstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if historyCopy > 0 {
		entry, err := store.Get(historyCopy)
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(entry.Command); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		ui.ShowSuccess("Copied: " + entry.Command)
		return nil
	}

	entries, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.ShowInfo("No suggestions recorded yet")
		return nil
	}

	faint := color.New(color.Faint)
	cyan := color.New(color.FgCyan)
	for _, entry := range entries {
		faint.Printf("%4d  %s  ", entry.ID, entry.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("%s\n", entry.Prompt)
		cyan.Printf("      → %s\n", entry.Command)
	}

	return nil
}
