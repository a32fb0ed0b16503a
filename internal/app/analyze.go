package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/droidusage/internal/analyzer"
	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/spf13/cobra"
)

var (
	analyzeFlagCost       bool
	analyzeFlagPatterns   bool
	analyzeFlagEfficiency bool
	analyzeFlagAll        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the cost, pattern, and efficiency analyzers",
	Long: `Run statistical analyzers over the selected sessions and synthesize
their findings into an overall health assessment with recommendations.
With no selection flags all analyzers run.

Examples:
  droidusage analyze
  droidusage analyze --cost
  droidusage analyze --patterns --efficiency
  droidusage analyze --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFlagCost, "cost", false, "Run the cost analyzer")
	analyzeCmd.Flags().BoolVar(&analyzeFlagPatterns, "patterns", false, "Run the pattern analyzer")
	analyzeCmd.Flags().BoolVar(&analyzeFlagEfficiency, "efficiency", false, "Run the efficiency analyzer")
	analyzeCmd.Flags().BoolVar(&analyzeFlagAll, "all", false, "Run every analyzer")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	svc, _, err := setup()
	if err != nil {
		return err
	}

	r, err := dateRange()
	if err != nil {
		return err
	}

	sel := analyzer.Selection{
		Cost:       analyzeFlagCost,
		Patterns:   analyzeFlagPatterns,
		Efficiency: analyzeFlagEfficiency,
		All:        analyzeFlagAll,
	}

	res, err := svc.Analyze(cmd.Context(), r, sel)
	if err != nil {
		return fmt.Errorf("running analysis: %w", err)
	}

	if flagJSON {
		return printJSON(res)
	}

	renderAnalysis(res)
	return nil
}

func renderAnalysis(res *analyzer.RunResult) {
	fmt.Println(output.StyleHeader.Render("Usage Analysis"))
	fmt.Println()
	fmt.Printf("  Sessions   %s\n", output.FormatNumber(int64(res.SessionCount)))
	fmt.Printf("  Analyzers  %s\n", strings.Join(res.AnalyzersRun, ", "))
	fmt.Printf("  Health     %s\n", statusStyle(res.Synthesized.OverallHealth).Render(res.Synthesized.OverallHealth))

	km := res.Synthesized.KeyMetrics
	fmt.Println()
	fmt.Println(output.StyleHeader.Render("Key Metrics"))
	fmt.Printf("  Total Cost        %s\n", output.FormatCost(km.TotalCost))
	if km.BurnRate != nil {
		fmt.Printf("  Daily Average     %s\n", output.FormatCost(km.BurnRate.DailyAverage))
		fmt.Printf("  Monthly Forecast  %s\n", output.FormatCost(km.BurnRate.MonthlyProjection))
	}
	if km.BusiestDay != "" {
		fmt.Printf("  Peak Hour         %02d:00\n", km.PeakHour)
		fmt.Printf("  Busiest Day       %s\n", km.BusiestDay)
	}
	if km.AvgEfficiencyScore > 0 {
		fmt.Printf("  Avg Efficiency    %.1f\n", km.AvgEfficiencyScore)
	}

	for _, name := range res.AnalyzersRun {
		out := res.Results[name]
		if out.Error != "" {
			fmt.Println()
			fmt.Printf("%s %s analyzer failed: %s\n", output.StyleError.Render("x"), name, out.Error)
			continue
		}
		if len(out.Insights) == 0 {
			continue
		}
		fmt.Println()
		fmt.Println(output.StyleHeader.Render("Insights: " + name))
		for _, in := range out.Insights {
			renderInsight(in)
		}
	}

	if len(res.CrossInsights) > 0 {
		fmt.Println()
		fmt.Println(output.StyleHeader.Render("Cross-Analyzer Insights"))
		for _, in := range res.CrossInsights {
			renderInsight(in)
		}
	}

	if len(res.Synthesized.Recommendations) > 0 {
		fmt.Println()
		fmt.Println(output.StyleHeader.Render("Recommendations"))
		for _, rec := range res.Synthesized.Recommendations {
			fmt.Printf("  [%s] %s\n", rec.Priority, rec.Message)
			if rec.Action != "" {
				fmt.Printf("        %s\n", output.StyleMuted.Render(rec.Action))
			}
		}
	}
}

func renderInsight(in analyzer.Insight) {
	marker := output.StyleMuted.Render("-")
	switch in.Severity {
	case "warning":
		marker = output.StyleWarning.Render("!")
	case "success", "info":
		marker = output.StyleSuccess.Render("+")
	}
	fmt.Printf("  %s %s\n", marker, in.Message)
	if in.Recommendation != "" {
		fmt.Printf("    %s\n", output.StyleMuted.Render(in.Recommendation))
	}
}
