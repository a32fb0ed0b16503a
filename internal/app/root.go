// Package app contains the Cobra command tree for droidusage.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/droidusage/internal/aggregate"
	"github.com/blackwell-systems/droidusage/internal/analyzer"
	"github.com/blackwell-systems/droidusage/internal/config"
	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/pricing"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/blackwell-systems/droidusage/internal/session"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagConfig      string
	flagNoColor     bool
	flagJSON        bool
	flagVerbose     bool
	flagSince       string
	flagUntil       string
	flagSessionsDir string
	flagLogsDir     string
)

var rootCmd = &cobra.Command{
	Use:   "droidusage",
	Short: "Usage and cost analytics for Droid sessions",
	Long: `droidusage reads local Droid session data, reconstructs canonical
sessions from settings snapshots, transcripts, and the shared log, and
reports token usage, cost, and efficiency over time.

Run 'droidusage' with no arguments to see the available reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("droidusage", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  daily     Token usage and cost grouped by date and model")
		fmt.Println("  sessions  Per-session usage, most recent first")
		fmt.Println("  blocks    Usage grouped into 5-hour activity windows")
		fmt.Println("  top       Rank sessions by cost, tokens, or efficiency")
		fmt.Println("  trends    Compare the current period against the previous one")
		fmt.Println("  analyze   Run the cost, pattern, and efficiency analyzers")
		fmt.Println("  track     Snapshot totals and compare against the last snapshot")
		fmt.Println("  serve     Start the dashboard API server")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/droidusage/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagSince, "since", "", "Only include sessions on or after this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagUntil, "until", "", "Only include sessions on or before this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagSessionsDir, "sessions-dir", "", "Override the sessions directory")
	rootCmd.PersistentFlags().StringVar(&flagLogsDir, "logs-dir", "", "Override the shared log directory")
}

// setup loads config, applies global flags, and wires the report service.
func setup() (*report.Service, *session.Loader, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor || !cfg.Output.Color {
		output.SetNoColor(true)
	}

	sessionsDir := cfg.SessionsDir
	if flagSessionsDir != "" {
		sessionsDir = flagSessionsDir
	}
	logsDir := cfg.LogsDir
	if flagLogsDir != "" {
		logsDir = flagLogsDir
	}

	dir := session.NewDirWithLogs(sessionsDir, logsDir)
	loader := session.NewLoader(dir, cfg.BatchSize)
	loader.SetVerbose(flagVerbose)

	calc := pricing.NewCalculator(pricing.Default())
	thresholds := analyzer.Thresholds{
		MonthlyBurnWarning:    cfg.Thresholds.MonthlyBurnWarning,
		SessionCostWarning:    cfg.Thresholds.SessionCostWarning,
		CacheRatePercentFloor: cfg.Thresholds.CacheRatePercentFloor,
		ProviderConcentration: cfg.Thresholds.ProviderConcentration,
	}
	return report.NewService(loader, calc, thresholds), loader, nil
}

// dateRange parses the global --since/--until flags. Bounds are
// day-granularity and inclusive; a bare date means midnight local time.
func dateRange() (aggregate.Range, error) {
	var r aggregate.Range
	if flagSince != "" {
		t := session.ParseTimestamp(normalizeDate(flagSince))
		if t.IsZero() {
			return r, fmt.Errorf("invalid --since date %q", flagSince)
		}
		r.Since = t
	}
	if flagUntil != "" {
		t := session.ParseTimestamp(normalizeDate(flagUntil))
		if t.IsZero() {
			return r, fmt.Errorf("invalid --until date %q", flagUntil)
		}
		r.Until = t
	}
	return r, nil
}

func normalizeDate(s string) string {
	if len(s) == len("2006-01-02") && !strings.Contains(s, "T") {
		return s + "T00:00:00"
	}
	return s
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderSummary prints the shared totals footer used by the report views.
func renderSummary(sum aggregate.Summary, withPrompts bool) {
	fmt.Println(output.StyleHeader.Render("Totals"))
	fmt.Printf("  Sessions     %s\n", output.FormatNumber(int64(sum.TotalSessions)))
	fmt.Printf("  Tokens       %s\n", output.FormatNumber(sum.TotalTokens))
	fmt.Printf("  Cost         %s\n", output.FormatCost(sum.TotalCost))
	fmt.Printf("  Active Time  %s\n", output.FormatTime(sum.TotalActiveTime))
	if withPrompts {
		fmt.Printf("  Prompts      %s\n", output.FormatNumber(int64(sum.TotalPrompts)))
	}
}
