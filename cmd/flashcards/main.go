// Package main provides the CLI entrypoint for flashcards.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/flashcards/internal/config"
	"github.com/verte-zerg/flashcards/internal/deck"
	"github.com/verte-zerg/flashcards/internal/ledger"
	"github.com/verte-zerg/flashcards/internal/model"
	"github.com/verte-zerg/flashcards/internal/order"
	"github.com/verte-zerg/flashcards/internal/stats"
	"github.com/verte-zerg/flashcards/internal/statsui"
	"github.com/verte-zerg/flashcards/internal/store"
	"github.com/verte-zerg/flashcards/internal/tui"
)

const (
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultCurveWindow = 5
	defaultStatsTop    = 10
)

var (
	reviewDeck       string
	reviewLedger     string
	reviewShuffle    bool
	reviewFocusWeak  bool
	reviewWeakOnly   bool
	reviewWeakTop    int
	reviewWeakFactor float64

	initLedger string
	initForce  bool

	recordLedger    string
	recordCorrect   bool
	recordIncorrect bool

	statsLedger      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsPlain       bool

	exportLedger string
	exportSince  string
	exportFormat string
	exportOutput string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flashcards",
		Short:         "TUI flashcard trainer with a persistent score ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReviewCmd,
	}

	rootCmd.Flags().StringVar(&reviewDeck, "deck", config.DefaultDeckPath(), "path to the flashcard deck")
	rootCmd.Flags().StringVar(&reviewLedger, "ledger", config.DefaultLedgerPath(), "path to the score ledger")
	rootCmd.Flags().BoolVar(&reviewShuffle, "shuffle", false, "review cards in random order")
	rootCmd.Flags().BoolVar(&reviewFocusWeak, "focus-weak", false, "bias the order toward weak cards")
	rootCmd.Flags().BoolVar(&reviewWeakOnly, "weak-only", false, "review only the weakest cards")
	rootCmd.Flags().IntVar(&reviewWeakTop, "weak-top", defaultWeakTop, "number of weak cards to focus on")
	rootCmd.Flags().Float64Var(&reviewWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak cards")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runReviewCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "deck", &reviewDeck, fileCfg.Review.Deck)
	applyStringConfig(cmd, "ledger", &reviewLedger, fileCfg.Review.Ledger)
	applyBoolConfig(cmd, "shuffle", &reviewShuffle, fileCfg.Review.Shuffle)
	applyBoolConfig(cmd, "focus-weak", &reviewFocusWeak, fileCfg.Review.FocusWeak)
	applyBoolConfig(cmd, "weak-only", &reviewWeakOnly, fileCfg.Review.WeakOnly)
	applyIntConfig(cmd, "weak-top", &reviewWeakTop, fileCfg.Review.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &reviewWeakFactor, fileCfg.Review.WeakFactor)

	cfg := model.Config{
		DeckPath:   reviewDeck,
		LedgerPath: reviewLedger,
		Shuffle:    reviewShuffle,
		FocusWeak:  reviewFocusWeak,
		WeakOnly:   reviewWeakOnly,
		WeakTop:    reviewWeakTop,
		WeakFactor: reviewWeakFactor,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	ledgerStore, err := ledger.New(cfg.LedgerPath)
	if err != nil {
		return err
	}
	cards, err := prepareReview(cfg, ledgerStore, order.New())
	if err != nil {
		return err
	}

	// A nil recorder keeps the review usable without history.
	var sessions tui.SessionRecorder
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open session history, sessions will not be saved: %v\n", err)
	} else {
		sessions = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	reviewModel := tui.NewModel(cards, cfg.DeckPath, ledgerStore, sessions)
	program := tea.NewProgram(reviewModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := reviewModel.SaveError(); err != nil {
		logErrf("%v\n", err)
	}
	return nil
}

// prepareReview loads the deck, checks the ledger is readable and arranges
// the cards for the session.
func prepareReview(cfg model.Config, ledgerStore *ledger.Store, gen *order.Generator) ([]model.Card, error) {
	cards, err := deck.LoadDeck(cfg.DeckPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck: %w", err)
	}
	current, err := ledgerStore.Load()
	if err != nil {
		return nil, ledgerLoadError(ledgerStore.Path(), err)
	}

	var weakSet map[string]struct{}
	if cfg.FocusWeak || cfg.WeakOnly {
		weakSet = stats.SelectWeakCards(stats.CardAggregates(current, nil), cfg.WeakTop)
		if len(weakSet) == 0 {
			logErrln("no reviewed cards yet; using the whole deck")
		}
	}
	if cfg.WeakOnly && len(weakSet) > 0 {
		cards = deck.Filter(cards, deck.WeakOnly(weakSet))
		if len(cards) == 0 {
			return nil, fmt.Errorf("none of the weak cards are in %s", cfg.DeckPath)
		}
	}

	switch {
	case cfg.FocusWeak && len(weakSet) > 0:
		return gen.Weighted(cards, weakSet, cfg.WeakFactor), nil
	case cfg.Shuffle:
		return gen.Shuffle(cards), nil
	default:
		return gen.Sequential(cards), nil
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty score ledger",
		Args:  cobra.NoArgs,
		RunE:  runInitCmd,
	}
	cmd.Flags().StringVar(&initLedger, "ledger", config.DefaultLedgerPath(), "path to the score ledger")
	cmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing ledger")
	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "ledger", &initLedger, fileCfg.Review.Ledger)

	ledgerStore, err := ledger.New(initLedger)
	if err != nil {
		return err
	}
	created, err := ledgerStore.Init(initForce)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("ledger already exists: %s (use --force to overwrite)", ledgerStore.Path())
	}
	logErrf("Wrote %s\n", ledgerStore.Path())
	return nil
}

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record CARD",
		Short: "Record one answer outcome for a card",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordCmd,
	}
	cmd.Flags().StringVar(&recordLedger, "ledger", config.DefaultLedgerPath(), "path to the score ledger")
	cmd.Flags().BoolVar(&recordCorrect, "correct", false, "record a correct answer")
	cmd.Flags().BoolVar(&recordIncorrect, "incorrect", false, "record an incorrect answer")
	return cmd
}

func runRecordCmd(cmd *cobra.Command, args []string) error {
	if recordCorrect == recordIncorrect {
		return fmt.Errorf("exactly one of --correct or --incorrect is required")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "ledger", &recordLedger, fileCfg.Review.Ledger)

	ledgerStore, err := ledger.New(recordLedger)
	if err != nil {
		return err
	}
	cardID := args[0]
	entry, err := ledgerStore.ReportAnswer(cardID, recordCorrect)
	if err != nil {
		return ledgerLoadError(ledgerStore.Path(), err)
	}
	verdict := "incorrect"
	if recordCorrect {
		verdict = "correct"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "question: %s marked %s (%d correct, %d incorrect)\n",
		cardID, verdict, entry.CorrectCount, entry.IncorrectCount)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLedger, "ledger", config.DefaultLedgerPath(), "path to the score ledger")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of weak cards to list")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print plain text instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "ledger", &statsLedger, fileCfg.Review.Ledger)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	applyIntConfig(cmd, "top", &statsTop, fileCfg.Stats.Top)

	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	if statsTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	cfg := model.StatsConfig{
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}

	ledgerStore, err := ledger.New(statsLedger)
	if err != nil {
		return err
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

	load := func(ctx context.Context, cfg model.StatsConfig) (stats.Report, error) {
		current, err := ledgerStore.Load()
		if err != nil {
			return stats.Report{}, ledgerLoadError(ledgerStore.Path(), err)
		}
		return stats.BuildReport(ctx, st, current, cfg)
	}

	if statsPlain {
		report, err := load(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return renderPlainStats(cmd.OutOrStdout(), report, cfg)
	}

	statsModel := statsui.NewModel(load, cfg)
	program := tea.NewProgram(statsModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, report stats.Report, cfg model.StatsConfig) error {
	if err := stats.RenderSummary(w, report.Sessions, report.Cards); err != nil {
		return err
	}
	if err := stats.RenderCurve(w, report.Sessions, cfg.CurveWindow, stats.TerminalWidth()-2); err != nil {
		return err
	}
	if err := stats.RenderCardTable(w, report.Cards, false); err != nil {
		return err
	}
	if len(report.Weak) > 0 {
		if _, err := fmt.Fprintf(w, "Weakest: %s\n", strings.Join(report.Weak, ", ")); err != nil {
			return err
		}
	}
	if top := stats.TopCardsByReviews(report.Cards, cfg.Top); len(top) > 0 {
		if _, err := fmt.Fprintf(w, "Most reviewed: %s\n", strings.Join(top, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export per-card stats as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportLedger, "ledger", config.DefaultLedgerPath(), "path to the score ledger")
	cmd.Flags().StringVar(&exportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&exportFormat, "format", string(stats.FormatCSV), "output format: csv or xlsx")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout for csv)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "ledger", &exportLedger, fileCfg.Review.Ledger)

	format, err := stats.ParseExportFormat(exportFormat)
	if err != nil {
		return err
	}
	if format == stats.FormatXLSX && exportOutput == "" {
		return fmt.Errorf("--output is required for xlsx")
	}
	since, err := parseSince(exportSince)
	if err != nil {
		return err
	}

	ledgerStore, err := ledger.New(exportLedger)
	if err != nil {
		return err
	}
	current, err := ledgerStore.Load()
	if err != nil {
		return ledgerLoadError(ledgerStore.Path(), err)
	}
	aggs := stats.CardAggregates(current, since)

	if exportOutput == "" {
		return stats.Export(cmd.OutOrStdout(), format, aggs)
	}
	return writeExport(exportOutput, format, aggs)
}

func writeExport(path string, format stats.ExportFormat, aggs []model.CardAggregate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := stats.Export(out, format, aggs); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	logErrf("Wrote %s\n", path)
	return nil
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

func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
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
	return fmt.Sprintf(`# flashcards configuration
# Uncomment a value to enable it. CLI flags override config values.

[review]
# deck = %q
# ledger = %q
# shuffle = false         # Review cards in random order
# focus-weak = false      # Bias the order toward weak cards
# weak-only = false       # Review only the weakest cards
# weak-top = %d            # Number of weak cards to focus on
# weak-factor = %.1f       # Weight factor for weak cards

[stats]
# curve-window = %d        # Moving average window for the accuracy trend
# top = %d                # Number of weak cards to list
`,
		config.DefaultDeckPath(),
		config.DefaultLedgerPath(),
		defaultWeakTop,
		defaultWeakFactor,
		defaultCurveWindow,
		defaultStatsTop,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.DeckPath == "" {
		return fmt.Errorf("--deck must not be empty")
	}
	if cfg.LedgerPath == "" {
		return fmt.Errorf("--ledger must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	return nil
}

func ledgerLoadError(path string, err error) error {
	if !errors.Is(err, ledger.ErrStoreMissing) {
		return err
	}
	return fmt.Errorf("%w\nexpected ledger at: %s\nCreate it with: flashcards init", err, path)
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
