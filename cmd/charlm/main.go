// Package main provides the CLI entrypoint for charlm.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/charlm/internal/config"
	"github.com/verte-zerg/charlm/internal/corpus"
	"github.com/verte-zerg/charlm/internal/langmodel"
	"github.com/verte-zerg/charlm/internal/model"
	"github.com/verte-zerg/charlm/internal/stats"
	"github.com/verte-zerg/charlm/internal/store"
	"github.com/verte-zerg/charlm/internal/textwrap"
	"github.com/verte-zerg/charlm/internal/tui"
)

const (
	defaultWindow      = 3
	defaultLength      = 200
	defaultMode        = modeFixed
	defaultFilter      = "none"
	defaultInspectTop  = 20
	defaultSuccessors  = 8
	defaultHistoryLast = 20
	defaultPreview     = 48
	terminalWidthBack  = 80

	modeFixed  = "fixed"
	modeRandom = "random"
)

var (
	genWindow    int
	genInitial   string
	genLength    int
	genMode      string
	genSeed      int64
	genCorpus    string
	genFilter    string
	genNoHistory bool
	genWrap      bool

	inspectTop        int
	inspectSuccessors int
	inspectRaw        bool

	historyCorpus string
	historySince  string
	historyLast   int
	historyTop    int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "charlm [windowLength initialText numberOfChars fixed|random corpus]",
		Short: "Character-level Markov text generator",
		Long: "Trains a fixed-order character model on a corpus and generates text from it.\n" +
			"Arguments may be given positionally or as flags; flags override the config file.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          positionalArgs,
		RunE:          runGenerateCmd,
	}
	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newViewCmd())

	return rootCmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&genWindow, "window", defaultWindow, "window length in characters")
	cmd.Flags().StringVar(&genInitial, "initial", "", "initial text (at least window characters)")
	cmd.Flags().IntVar(&genLength, "length", defaultLength, "number of characters to generate")
	cmd.Flags().StringVar(&genMode, "mode", defaultMode, "random source: fixed (reproducible) or random")
	cmd.Flags().Int64Var(&genSeed, "seed", langmodel.DefaultSeed, "seed for fixed mode")
	cmd.Flags().StringVar(&genCorpus, "corpus", "", "path to the training corpus")
	cmd.Flags().StringVar(&genFilter, "filter", defaultFilter, "corpus filter: none, ascii or letters")
	cmd.Flags().BoolVar(&genNoHistory, "no-history", false, "do not record the run")
	cmd.Flags().BoolVar(&genWrap, "wrap", false, "wrap output to the terminal width")
}

func positionalArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 5 {
		return fmt.Errorf("expected 0 or 5 arguments (windowLength initialText numberOfChars fixed|random corpus), got %d", len(args))
	}
	return nil
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveGenerateConfig(cmd, args)
	if err != nil {
		return err
	}
	warnShortInitial(cfg)
	lm, err := buildModel(cfg)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	text, err := lm.Generate(cfg.Initial, cfg.Length)
	if err != nil {
		return fmt.Errorf("failed to generate text: %w", err)
	}
	endedAt := time.Now()

	out := text
	if cfg.Wrap {
		out = textwrap.Wrap(text, terminalWidth())
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.History {
		recordRun(cfg, lm, text, startedAt, endedAt)
	}
	return nil
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	gen := fileCfg.Generate
	applyIntConfig(cmd, "window", &genWindow, gen.Window)
	applyStringConfig(cmd, "initial", &genInitial, gen.Initial)
	applyIntConfig(cmd, "length", &genLength, gen.Length)
	applyStringConfig(cmd, "mode", &genMode, gen.Mode)
	applyInt64Config(cmd, "seed", &genSeed, gen.Seed)
	applyStringConfig(cmd, "corpus", &genCorpus, gen.Corpus)
	applyStringConfig(cmd, "filter", &genFilter, gen.Filter)
	applyBoolConfig(cmd, "wrap", &genWrap, gen.Wrap)
	history := !genNoHistory
	if gen.History != nil && !cmd.Flags().Changed("no-history") {
		history = *gen.History
	}

	if len(args) == 5 {
		window, err := strconv.Atoi(args[0])
		if err != nil {
			return model.Config{}, fmt.Errorf("invalid windowLength %q: %w", args[0], err)
		}
		length, err := strconv.Atoi(args[2])
		if err != nil {
			return model.Config{}, fmt.Errorf("invalid numberOfChars %q: %w", args[2], err)
		}
		genWindow = window
		genInitial = args[1]
		genLength = length
		genMode = args[3]
		genCorpus = args[4]
	}
	genInitial = langmodel.NormalizeLineEndings(genInitial)

	cfg := model.Config{
		Window:     genWindow,
		Length:     genLength,
		Initial:    genInitial,
		Seeded:     strings.EqualFold(strings.TrimSpace(genMode), modeFixed),
		Seed:       genSeed,
		CorpusPath: genCorpus,
		Filter:     genFilter,
		History:    history,
		Wrap:       genWrap,
	}
	if err := validateConfig(cfg, genMode); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config, mode string) error {
	if cfg.Window <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	if cfg.Length < 0 {
		return fmt.Errorf("--length must be >= 0")
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case modeFixed, modeRandom:
	default:
		return fmt.Errorf("--mode must be %q or %q, got %q", modeFixed, modeRandom, mode)
	}
	if strings.TrimSpace(cfg.CorpusPath) == "" {
		return fmt.Errorf("--corpus is required")
	}
	return nil
}

func warnShortInitial(cfg model.Config) {
	if cfg.Length > 0 && len([]rune(cfg.Initial)) < cfg.Window {
		logErrf("initial text %q is shorter than the window length %d; no window can match it\n", cfg.Initial, cfg.Window)
	}
}

func buildModel(cfg model.Config) (*langmodel.Model, error) {
	text, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	text = corpus.Apply(text, corpus.FilterFor(cfg.Filter))

	opts := []langmodel.Option{
		langmodel.WithFallbackHook(func(window string, draw float64) {
			logErrf("no successor of %q reached draw %v; emitting a space\n", window, draw)
		}),
	}
	if cfg.Seeded {
		opts = append(opts, langmodel.WithSeed(cfg.Seed))
	}
	lm, err := langmodel.New(cfg.Window, opts...)
	if err != nil {
		return nil, err
	}
	if err := lm.Train(text); err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}
	return lm, nil
}

func recordRun(cfg model.Config, lm *langmodel.Model, text string, startedAt, endedAt time.Time) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open history db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	run := model.RunStats{
		StartedAt:  startedAt,
		EndedAt:    endedAt,
		CorpusPath: absPath(cfg.CorpusPath),
		Window:     cfg.Window,
		Length:     cfg.Length,
		Seeded:     lm.Seeded(),
		Seed:       lm.Seed(),
		Initial:    cfg.Initial,
		Output:     text,
		Windows:    lm.Len(),
		Fallbacks:  lm.Fallbacks(),
		DurationMs: endedAt.Sub(startedAt).Milliseconds(),
	}
	generated := string([]rune(text)[len([]rune(cfg.Initial)):])
	if _, err := st.InsertRun(context.Background(), run, stats.CountChars(generated)); err != nil {
		logErrf("failed to save run: %v\n", err)
	}
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
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
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

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Train on a corpus and show the learned windows",
		Args:  cobra.NoArgs,
		RunE:  runInspectCmd,
	}
	addGenerateFlags(cmd)
	cmd.Flags().IntVar(&inspectTop, "top", defaultInspectTop, "number of windows to show (0 for all)")
	cmd.Flags().IntVar(&inspectSuccessors, "successors", defaultSuccessors, "successors listed per window (0 for all)")
	cmd.Flags().BoolVar(&inspectRaw, "raw", false, "print every window with full statistics")
	return cmd
}

func runInspectCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveGenerateConfig(cmd, nil)
	if err != nil {
		return err
	}
	lm, err := buildModel(cfg)
	if err != nil {
		return err
	}
	if inspectRaw {
		if _, err := fmt.Fprint(cmd.OutOrStdout(), lm.String()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return stats.RenderModel(cmd.OutOrStdout(), lm, inspectTop, inspectSuccessors)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded generation runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyCorpus, "corpus", "", "corpus filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	cmd.Flags().IntVar(&historyTop, "top", 0, "show only the N most frequent output characters (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	cfg := model.HistoryConfig{
		Since: sinceTime,
		Last:  historyLast,
	}
	if historyCorpus != "" {
		cfg.Corpus = absPath(historyCorpus)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	w := cmd.OutOrStdout()
	if err := stats.RenderSummary(w, report.Runs); err != nil {
		return err
	}
	if err := stats.RenderRuns(w, report.Runs, defaultPreview); err != nil {
		return err
	}
	if len(report.Runs) == 0 {
		return nil
	}
	return stats.RenderCharTable(w, report.CharAggs, historyTop)
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [windowLength initialText numberOfChars fixed|random corpus]",
		Short: "Browse generated text interactively",
		Args:  positionalArgs,
		RunE:  runViewCmd,
	}
	addGenerateFlags(cmd)
	return cmd
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveGenerateConfig(cmd, args)
	if err != nil {
		return err
	}
	warnShortInitial(cfg)
	lm, err := buildModel(cfg)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.History {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}
	cfg.CorpusPath = absPath(cfg.CorpusPath)

	viewer := tui.NewModel(cfg, st, lm)
	program := tea.NewProgram(viewer, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return terminalWidthBack
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return terminalWidthBack
	}
	return width
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# charlm configuration
# Uncomment a value to enable it. CLI flags and positional arguments override config values.

[generate]
# window = %d             # Window length in characters
# length = %d           # Characters to generate
# initial = ""            # Initial text (at least window characters)
# mode = %q          # fixed (reproducible) or random
# seed = %d              # Seed for fixed mode
# corpus = ""             # Path to the training corpus
# filter = %q         # Corpus filter: none, ascii or letters
# history = true          # Record runs for 'charlm history'
# wrap = false            # Wrap output to the terminal width
`,
		defaultWindow,
		defaultLength,
		defaultMode,
		langmodel.DefaultSeed,
		defaultFilter,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
