package app

import (
	"fmt"

	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Usage grouped into 5-hour activity windows",
	Long: `Group sessions into consecutive 5-hour blocks anchored at the
earliest dated session. Useful for seeing how work clusters across a day.
Sessions without a resolvable start time are excluded.

Examples:
  droidusage blocks
  droidusage blocks --since 2025-06-01 --json`,
	RunE: runBlocks,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
}

func runBlocks(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	r, err := dateRange()
	if err != nil {
		return err
	}

	rep, err := svc.Blocks(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("building block report: %w", err)
	}

	if flagJSON {
		return printJSON(rep)
	}

	renderBlocks(rep)
	return nil
}

func renderBlocks(rep *report.BlockReport) {
	fmt.Println(output.StyleHeader.Render("5-Hour Blocks"))
	fmt.Println()

	if len(rep.Data) == 0 {
		fmt.Println(" No dated sessions found.")
		return
	}

	t := output.NewTable("Date", "Time", "Models", "Sessions", "Prompts", "Tokens", "Cost").
		AlignRight(3, 4, 5, 6)
	for _, b := range rep.Data {
		t.AddRow(
			b.Date,
			b.TimeRange,
			b.Models,
			output.FormatNumber(int64(len(b.Sessions))),
			output.FormatNumber(int64(b.UserPrompts)),
			output.FormatNumber(b.TotalTokens),
			output.FormatCost(b.Cost),
		)
	}
	t.Print()

	fmt.Println()
	renderSummary(rep.Summary, true)
}
