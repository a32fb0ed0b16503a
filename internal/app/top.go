package app

import (
	"fmt"

	"github.com/blackwell-systems/droidusage/internal/config"
	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	topFlagBy    string
	topFlagLimit int
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank sessions by cost, tokens, or efficiency",
	Long: `Rank sessions by a chosen criterion and grade each one against
expected cost bands for its model.

Criteria:
  cost         Most expensive sessions first (default)
  tokens       Largest sessions by billed tokens
  duration     Longest active time
  inefficient  Worst cost per million tokens
  outliers     Sessions more than two standard deviations above mean cost

Examples:
  droidusage top
  droidusage top --by tokens --limit 5
  droidusage top --by outliers --json`,
	RunE: runTop,
}

func init() {
	topCmd.Flags().StringVar(&topFlagBy, "by", "cost", "Ranking criterion: cost, tokens, duration, inefficient, outliers")
	topCmd.Flags().IntVar(&topFlagLimit, "limit", config.DefaultTopLimit, "Maximum sessions to display")
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	r, err := dateRange()
	if err != nil {
		return err
	}

	rep, err := svc.Top(cmd.Context(), r, topFlagBy, topFlagLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(rep)
	}

	renderTop(rep)
	return nil
}

func renderTop(rep *report.TopReport) {
	fmt.Println(output.StyleHeader.Render("Top Sessions: " + rep.By))
	fmt.Println()

	if len(rep.Data) == 0 {
		fmt.Println(" No sessions matched.")
		return
	}

	t := output.NewTable("Session", "Date", "Model", "Tokens", "Cost", "Score", "Status").
		AlignRight(3, 4, 5)
	for _, rs := range rep.Data {
		date := "unknown"
		if rs.HasDate() {
			date = rs.Date.Format("2006-01-02")
		}
		t.AddRow(
			shortID(rs.ID),
			date,
			rs.Model,
			output.FormatNumber(rs.TotalTokens),
			output.FormatCost(rs.Cost),
			fmt.Sprintf("%.0f", rs.Efficiency.Score),
			statusStyle(rs.Efficiency.Status).Render(rs.Efficiency.Status),
		)
	}
	t.Print()

	for _, rs := range rep.Data {
		for _, w := range rs.Warnings {
			fmt.Printf(" %s %s: %s\n", output.StyleWarning.Render("!"), shortID(rs.ID), w)
		}
	}

	fmt.Println()
	fmt.Println(output.StyleHeader.Render("Summary"))
	fmt.Printf("  Total Cost      %s\n", output.FormatCost(rep.Summary.TotalCost))
	fmt.Printf("  Total Tokens    %s\n", output.FormatNumber(rep.Summary.TotalTokens))
	fmt.Printf("  Avg Cost        %s\n", output.FormatCost(rep.Summary.AvgCost))
	fmt.Printf("  Avg Efficiency  %.1f\n", rep.Summary.AvgEfficiency)
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "excellent", "good":
		return output.StyleSuccess
	case "poor":
		return output.StyleError
	default:
		return output.StyleWarning
	}
}
