package app

import (
	"fmt"

	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/spf13/cobra"
)

var sessionsFlagLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Per-session usage, most recent first",
	Long: `List individual sessions with their token counts, cost, and active
time, most recent first. Sessions without a resolvable start time sort last.

Examples:
  droidusage sessions
  droidusage sessions --limit 20
  droidusage sessions --since 2025-06-01 --json`,
	RunE: runSessionsCmd,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsFlagLimit, "limit", 0, "Maximum sessions to display (0 = all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsCmd(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	r, err := dateRange()
	if err != nil {
		return err
	}

	rep, err := svc.Sessions(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("building session report: %w", err)
	}

	if sessionsFlagLimit > 0 && len(rep.Data) > sessionsFlagLimit {
		rep.Data = rep.Data[:sessionsFlagLimit]
	}

	if flagJSON {
		return printJSON(rep)
	}

	renderSessionList(rep)
	return nil
}

func renderSessionList(rep *report.SessionReport) {
	fmt.Println(output.StyleHeader.Render("Sessions"))
	fmt.Println()

	if len(rep.Data) == 0 {
		fmt.Println(" No sessions found.")
		return
	}

	t := output.NewTable("Session", "Date", "Model", "Tokens", "Cost", "Active").
		AlignRight(3, 4, 5)
	for _, s := range rep.Data {
		date := "unknown"
		if s.HasDate() {
			date = s.Date.Format("2006-01-02 15:04")
		}
		t.AddRow(
			shortID(s.ID),
			date,
			s.Model,
			output.FormatNumber(s.TotalTokens),
			output.FormatCost(s.Cost),
			output.FormatTime(s.ActiveTimeMs),
		)
	}
	t.Print()

	fmt.Println()
	renderSummary(rep.Summary, false)
}

// shortID truncates a session ID to a displayable prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
