package app

import (
	"fmt"

	"github.com/blackwell-systems/droidusage/internal/config"
	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/store"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Snapshot totals and compare against the last snapshot",
	Long: `Record the current usage totals as a snapshot and show the change
since the previous snapshot. Snapshots are stored in a local SQLite
database so growth can be tracked across invocations.

Examples:
  droidusage track
  droidusage track --json`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

// trackResult is the JSON shape of a track run.
type trackResult struct {
	Snapshot store.Snapshot       `json:"snapshot"`
	Delta    *store.SnapshotDelta `json:"delta,omitempty"`
}

func runTrack(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	sum, err := svc.Snapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	if _, err := db.SaveSnapshot(sum); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	latest, err := db.LatestSnapshot()
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	delta, err := db.Delta()
	if err != nil {
		return fmt.Errorf("computing delta: %w", err)
	}

	if flagJSON {
		return printJSON(trackResult{Snapshot: *latest, Delta: delta})
	}

	fmt.Println(output.StyleHeader.Render("Snapshot Recorded"))
	fmt.Println()
	renderSummary(latest.Summary, true)

	if delta == nil {
		fmt.Println()
		fmt.Println(" First snapshot; nothing to compare yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(output.StyleHeader.Render("Since " + delta.Previous.TakenAt.Format("2006-01-02 15:04")))
	fmt.Printf("  Sessions  %+d\n", delta.Sessions)
	fmt.Printf("  Tokens    %+d\n", delta.Tokens)
	fmt.Printf("  Cost      %+.2f\n", delta.Cost)
	fmt.Printf("  Prompts   %+d\n", delta.Prompts)
	return nil
}
