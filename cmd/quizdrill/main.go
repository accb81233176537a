// Package main provides the CLI entrypoint for quizdrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/quizdrill/internal/bank"
	"github.com/verte-zerg/quizdrill/internal/builder"
	"github.com/verte-zerg/quizdrill/internal/config"
	"github.com/verte-zerg/quizdrill/internal/model"
	"github.com/verte-zerg/quizdrill/internal/session"
	"github.com/verte-zerg/quizdrill/internal/stats"
	"github.com/verte-zerg/quizdrill/internal/statsui"
	"github.com/verte-zerg/quizdrill/internal/store"
	"github.com/verte-zerg/quizdrill/internal/tui"
	"github.com/verte-zerg/quizdrill/internal/verify"
)

const (
	defaultMode          = model.ModeBasic
	defaultProvider      = verify.ProviderOpenAI
	defaultTimeoutSecs   = 20
	defaultRetries       = 2
	defaultMaxTokens     = 10
	defaultHistoryWindow = 5
)

var (
	drillMode      string
	drillProvider  string
	drillModel     string
	drillBaseURL   string
	drillTimeout   int
	drillRetries   int
	drillMaxTokens int
	drillNoRecord  bool

	historySource string
	historySince  string
	historyLast   int
	historyWindow int
	historyPlain  bool

	buildQuestions string
	buildAnswers   string
	buildOut       string
	buildForce     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quizdrill FILE",
		Short:         "Drill a question bank until every answer is right",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ExactArgs(1),
		RunE:          runDrillCmd,
	}

	rootCmd.Flags().StringVar(&drillMode, "mode", defaultMode, "verification mode: basic or ai")
	rootCmd.Flags().StringVar(&drillProvider, "provider", defaultProvider, "judge provider: openai or groq")
	rootCmd.Flags().StringVar(&drillModel, "model", "", "judge model (default depends on provider)")
	rootCmd.Flags().StringVar(&drillBaseURL, "base-url", "", "judge API base URL (default depends on provider)")
	rootCmd.Flags().IntVar(&drillTimeout, "timeout", defaultTimeoutSecs, "judge request timeout in seconds")
	rootCmd.Flags().IntVar(&drillRetries, "retries", defaultRetries, "judge retries after a failed request")
	rootCmd.Flags().IntVar(&drillMaxTokens, "max-tokens", defaultMaxTokens, "judge reply token limit")
	rootCmd.Flags().BoolVar(&drillNoRecord, "no-record", false, "do not store the session in history")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

func runDrillCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	cfg := resolveDrillConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	verifier, err := buildVerifier(cfg, envCfg)
	if err != nil {
		return err
	}

	sourcePath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	ctrl := session.New(verifier)
	defer func() {
		if cerr := ctrl.Close(); cerr != nil {
			logErrf("failed to remove working copy: %v\n", cerr)
		}
	}()
	if err := ctrl.LoadBank(sourcePath); err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runDrill(ctx, cmd, ctrl); err != nil {
		return err
	}
	if !ctrl.IsComplete() {
		return nil
	}
	if cfg.Record {
		recordSession(ctx, envCfg, ctrl, cfg.Mode)
	}
	return nil
}

func runDrill(ctx context.Context, cmd *cobra.Command, ctrl *session.Controller) error {
	if !isInteractive() {
		err := tui.RunPlain(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
		if errors.Is(err, tui.ErrQuit) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	quiz := tui.NewModel(ctx, ctrl)
	program := tea.NewProgram(quiz, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	// Bubble Tea does not wait for a running check on quit.
	quiz.Shutdown()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if ctrl.IsComplete() {
		s := ctrl.Summary()
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Accuracy %.1f%% (%d/%d) %s\n", s.Accuracy, s.Correct, s.Total, stats.Grade(s.Accuracy)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func recordSession(ctx context.Context, envCfg config.EnvConfig, ctrl *session.Controller, mode string) {
	st, err := store.Open(envCfg.DBPathOr(config.DefaultDBPath()))
	if err != nil {
		logErrf("failed to open history db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	s := ctrl.Summary()
	rec := model.SessionRecord{
		ID:         ctrl.ID(),
		StartedAt:  ctrl.StartedAt(),
		EndedAt:    time.Now(),
		SourcePath: ctrl.SourcePath(),
		Mode:       mode,
		Total:      s.Total,
		Correct:    s.Correct,
		Accuracy:   s.Accuracy,
	}
	if err := st.InsertSession(context.WithoutCancel(ctx), rec); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func resolveDrillConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	record := !drillNoRecord
	applyStringConfig(cmd, "mode", &drillMode, fileCfg.Drill.Mode)
	if !cmd.Flags().Changed("no-record") && fileCfg.Drill.Record != nil {
		record = *fileCfg.Drill.Record
	}
	applyStringConfig(cmd, "provider", &drillProvider, fileCfg.Judge.Provider)
	applyStringConfig(cmd, "model", &drillModel, fileCfg.Judge.Model)
	applyStringConfig(cmd, "base-url", &drillBaseURL, fileCfg.Judge.BaseURL)
	applyIntConfig(cmd, "timeout", &drillTimeout, fileCfg.Judge.TimeoutSeconds)
	applyIntConfig(cmd, "retries", &drillRetries, fileCfg.Judge.Retries)
	applyIntConfig(cmd, "max-tokens", &drillMaxTokens, fileCfg.Judge.MaxTokens)

	return model.Config{
		Mode:      strings.ToLower(strings.TrimSpace(drillMode)),
		Provider:  strings.ToLower(strings.TrimSpace(drillProvider)),
		Model:     strings.TrimSpace(drillModel),
		BaseURL:   strings.TrimSpace(drillBaseURL),
		Timeout:   time.Duration(drillTimeout) * time.Second,
		Retries:   drillRetries,
		MaxTokens: drillMaxTokens,
		Record:    record,
	}
}

func validateConfig(cfg model.Config) error {
	switch cfg.Mode {
	case model.ModeBasic, model.ModeAI:
	default:
		return fmt.Errorf("--mode must be %q or %q", model.ModeBasic, model.ModeAI)
	}
	if cfg.Mode == model.ModeBasic {
		return nil
	}
	if _, err := verify.DefaultsFor(cfg.Provider); err != nil {
		return fmt.Errorf("--provider must be %q or %q", verify.ProviderOpenAI, verify.ProviderGroq)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("--retries must be >= 0")
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("--max-tokens must be > 0")
	}
	return nil
}

func buildVerifier(cfg model.Config, envCfg config.EnvConfig) (verify.Verifier, error) {
	if cfg.Mode == model.ModeBasic {
		return verify.ExactMatch{}, nil
	}
	defaults, err := verify.DefaultsFor(cfg.Provider)
	if err != nil {
		return nil, err
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaults.BaseURL
	}
	judgeModel := cfg.Model
	if judgeModel == "" {
		judgeModel = defaults.Model
	}
	apiKey := envCfg.APIKeyFor(cfg.Provider)
	if apiKey == "" {
		return nil, fmt.Errorf("ai mode needs an API key: set QUIZDRILL_API_KEY or %s", providerKeyEnv(cfg.Provider))
	}
	client, err := verify.NewOpenAIClient(verify.OpenAIConfig{APIKey: apiKey, BaseURL: baseURL})
	if err != nil {
		return nil, err
	}
	return verify.NewSemanticJudge(client, verify.JudgeConfig{
		Model:     judgeModel,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		MaxTokens: cfg.MaxTokens,
	})
}

func providerKeyEnv(provider string) string {
	if provider == verify.ProviderGroq {
		return "GROQ_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show finished sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySource, "source", "", "only sessions for this bank file")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig()
	if err != nil {
		return err
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	st, err := store.Open(envCfg.DBPathOr(config.DefaultDBPath()))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyPlain || !isInteractive() {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return stats.Render(cmd.OutOrStdout(), report)
	}
	program := tea.NewProgram(statsui.NewModel(statsui.StoreLoader(st), cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func historyConfig() (model.HistoryConfig, error) {
	if historyLast < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return model.HistoryConfig{}, fmt.Errorf("--window must be >= 1")
	}
	cfg := model.HistoryConfig{Last: historyLast, Window: historyWindow}
	if historySource != "" {
		abs, err := filepath.Abs(historySource)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --source value: %w", err)
		}
		cfg.Source = abs
	}
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a question bank from question and answer line files",
		Args:  cobra.NoArgs,
		RunE:  runBuildCmd,
	}
	cmd.Flags().StringVar(&buildQuestions, "questions", "", "file with one question per line")
	cmd.Flags().StringVar(&buildAnswers, "answers", "", "file with one answer per line")
	cmd.Flags().StringVarP(&buildOut, "out", "o", "", "output bank (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&buildForce, "force", false, "overwrite an existing output file")
	_ = cmd.MarkFlagRequired("questions")
	_ = cmd.MarkFlagRequired("answers")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBuildCmd(_ *cobra.Command, _ []string) error {
	n, err := builder.Build(builder.Options{
		QuestionsPath: buildQuestions,
		AnswersPath:   buildAnswers,
		OutPath:       buildOut,
		Force:         buildForce,
	})
	if err != nil {
		if errors.Is(err, builder.ErrOutputExists) {
			logErrln("Use --force to overwrite it.")
		}
		return err
	}
	logErrf("Wrote %d questions to %s\n", n, buildOut)
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a question bank",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	format := bank.FormatForPath(path)
	b, err := bank.Load(data, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions (%s)\n", path, b.Size(), format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
