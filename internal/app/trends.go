package app

import (
	"fmt"

	"github.com/blackwell-systems/droidusage/internal/analyzer"
	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Compare the current period against the previous one",
	Long: `Compare usage in the selected period against the equally sized
period immediately before it. Without --since/--until the current period
is the last 7 days.

Examples:
  droidusage trends
  droidusage trends --since 2025-06-01 --until 2025-06-30
  droidusage trends --json`,
	RunE: runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	r, err := dateRange()
	if err != nil {
		return err
	}

	rep, err := svc.Trends(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("building trends report: %w", err)
	}

	if flagJSON {
		return printJSON(rep)
	}

	renderTrends(rep)
	return nil
}

func renderTrends(rep *report.TrendsReport) {
	fmt.Println(output.StyleHeader.Render("Usage Trends"))
	fmt.Println()

	t := output.NewTable("Metric", "Current", "Previous", "Change", "Trend").
		AlignRight(1, 2, 3)

	addTrendRow(t, "Cost", rep.Trends.Cost, output.FormatCost, true)
	addTrendRow(t, "Tokens", rep.Trends.Tokens, func(v float64) string {
		return output.FormatNumber(int64(v))
	}, false)
	addTrendRow(t, "Sessions", rep.Trends.Sessions, func(v float64) string {
		return output.FormatNumber(int64(v))
	}, false)
	addTrendRow(t, "Prompts", rep.Trends.Prompts, func(v float64) string {
		return output.FormatNumber(int64(v))
	}, false)
	addTrendRow(t, "Cost / Session", rep.Trends.AvgCostPerSession, output.FormatCost, true)
	addTrendRow(t, "Tokens / Session", rep.Trends.AvgTokensPerSession, func(v float64) string {
		return output.FormatNumber(int64(v))
	}, false)
	addTrendRow(t, "Cost / Prompt", rep.Trends.AvgCostPerPrompt, output.FormatCost, true)
	t.Print()

	fmt.Println()
	fmt.Println(output.StyleHeader.Render("Usage Patterns"))
	fmt.Printf("  Peak Hour  %s\n", rep.Patterns.PeakHourRange)
	fmt.Printf("  Peak Day   %s\n", rep.Patterns.PeakDay)
}

func addTrendRow(t *output.Table, label string, m analyzer.Metric, format func(float64) string, downIsGood bool) {
	style := output.TrendStyle(m.Direction, downIsGood)
	t.AddRow(
		label,
		format(m.Value),
		format(m.Previous),
		output.FormatPercentage(m.Percentage),
		style.Render(m.Indicator+" "+m.Direction),
	)
}
