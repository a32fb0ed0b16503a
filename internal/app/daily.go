package app

import (
	"fmt"

	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Token usage and cost grouped by date and model",
	Long: `Show aggregated usage per calendar day, split by model. Sessions
without a resolvable start time are collected under "Unknown Date".

Examples:
  droidusage daily
  droidusage daily --since 2025-06-01 --until 2025-06-30
  droidusage daily --json`,
	RunE: runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	r, err := dateRange()
	if err != nil {
		return err
	}

	rep, err := svc.Daily(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("building daily report: %w", err)
	}

	if flagJSON {
		return printJSON(rep)
	}

	renderDaily(rep)
	return nil
}

func renderDaily(rep *report.DailyReport) {
	fmt.Println(output.StyleHeader.Render("Daily Usage"))
	fmt.Println()

	if len(rep.Data) == 0 {
		fmt.Println(" No sessions found.")
		return
	}

	t := output.NewTable("Date", "Model", "Input", "Output", "Cache Create", "Cache Read", "Total", "Cost").
		AlignRight(2, 3, 4, 5, 6, 7)
	for _, g := range rep.Data {
		t.AddRow(
			g.Date,
			g.Model,
			output.FormatNumber(g.InputTokens),
			output.FormatNumber(g.OutputTokens),
			output.FormatNumber(g.CacheCreationTokens),
			output.FormatNumber(g.CacheReadTokens),
			output.FormatNumber(g.TotalTokens),
			output.FormatCost(g.Cost),
		)
	}
	t.Print()

	fmt.Println()
	renderSummary(rep.Summary, false)
}
