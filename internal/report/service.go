package report

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/droidusage/internal/aggregate"
	"github.com/blackwell-systems/droidusage/internal/analyzer"
	"github.com/blackwell-systems/droidusage/internal/pricing"
	"github.com/blackwell-systems/droidusage/internal/session"
)

// Service assembles the session pipeline behind the CLI and web views:
// load sessions, attach costs, filter by date, aggregate.
type Service struct {
	loader *session.Loader
	calc   pricing.Calculator
	orch   *analyzer.Orchestrator
}

// NewService wires the pipeline. Thresholds configure when the analyzers
// emit warnings.
func NewService(loader *session.Loader, calc pricing.Calculator, thresholds analyzer.Thresholds) *Service {
	return &Service{
		loader: loader,
		calc:   calc,
		orch:   analyzer.NewOrchestrator(thresholds),
	}
}

// DailyReport is the daily-by-model view.
type DailyReport struct {
	Type    string                 `json:"type"`
	Data    []aggregate.DailyGroup `json:"data"`
	Summary aggregate.Summary      `json:"summary"`
}

// SessionReport is the flat per-session view.
type SessionReport struct {
	Type    string            `json:"type"`
	Data    []session.Session `json:"data"`
	Summary aggregate.Summary `json:"summary"`
}

// BlockReport is the 5-hour window view.
type BlockReport struct {
	Type    string            `json:"type"`
	Data    []aggregate.Block `json:"data"`
	Summary aggregate.Summary `json:"summary"`
}

// TopReport is a ranked top-sessions view.
type TopReport struct {
	Type    string                   `json:"type"`
	By      string                   `json:"by"`
	Data    []analyzer.RankedSession `json:"data"`
	Summary analyzer.RankSummary     `json:"summary"`
}

// TrendsReport compares the current period against the one before it.
type TrendsReport struct {
	Current  aggregate.Summary      `json:"current"`
	Previous aggregate.Summary      `json:"previous"`
	Trends   analyzer.Trends        `json:"trends"`
	Patterns analyzer.UsagePatterns `json:"patterns"`
}

func (s *Service) load(ctx context.Context, r aggregate.Range, countPrompts bool) ([]session.Session, error) {
	sessions, err := s.loader.LoadAll(ctx, countPrompts)
	if err != nil {
		return nil, err
	}
	sessions = s.calc.Annotate(sessions)
	return aggregate.FilterByDate(sessions, r), nil
}

// Daily returns usage grouped by calendar date and model.
func (s *Service) Daily(ctx context.Context, r aggregate.Range) (*DailyReport, error) {
	sessions, err := s.load(ctx, r, false)
	if err != nil {
		return nil, err
	}
	groups := aggregate.GroupByDate(sessions)
	return &DailyReport{Type: "daily", Data: groups, Summary: aggregate.SummarizeDaily(groups)}, nil
}

// Sessions returns the ungrouped per-session view, newest first.
func (s *Service) Sessions(ctx context.Context, r aggregate.Range) (*SessionReport, error) {
	sessions, err := s.load(ctx, r, false)
	if err != nil {
		return nil, err
	}
	sorted := aggregate.SortSessions(sessions)
	return &SessionReport{Type: "session", Data: sorted, Summary: aggregate.SummarizeSessions(sorted)}, nil
}

// Snapshot returns the all-time summary with prompts counted, suitable
// for persisting as a tracking snapshot.
func (s *Service) Snapshot(ctx context.Context) (aggregate.Summary, error) {
	sessions, err := s.load(ctx, aggregate.Range{}, true)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.SummarizeSessions(sessions), nil
}

// Blocks returns usage grouped into rolling 5-hour windows.
func (s *Service) Blocks(ctx context.Context, r aggregate.Range) (*BlockReport, error) {
	sessions, err := s.load(ctx, r, true)
	if err != nil {
		return nil, err
	}
	blocks := aggregate.GroupByBlock(sessions)
	return &BlockReport{Type: "blocks", Data: blocks, Summary: aggregate.SummarizeBlocks(blocks)}, nil
}

// Top returns the limit highest-ranked sessions by the given criterion:
// cost, tokens, duration, efficiency, or outliers.
func (s *Service) Top(ctx context.Context, r aggregate.Range, by string, limit int) (*TopReport, error) {
	sessions, err := s.load(ctx, r, true)
	if err != nil {
		return nil, err
	}

	var ranked []analyzer.RankedSession
	switch by {
	case "", "cost":
		by = "cost"
		ranked = analyzer.TopByCost(sessions, limit)
	case "tokens":
		ranked = analyzer.TopByTokens(sessions, limit)
	case "duration":
		ranked = analyzer.TopByDuration(sessions, limit)
	case "efficiency", "inefficient":
		ranked = analyzer.TopInefficient(sessions, limit)
	case "outliers":
		ranked = analyzer.Outliers(sessions)
	default:
		return nil, fmt.Errorf("unknown ranking criterion %q", by)
	}

	return &TopReport{Type: "top", By: by, Data: ranked, Summary: analyzer.SummaryStats(ranked)}, nil
}

// Trends compares the current period against the immediately preceding
// period of the same length. A zero range means the last 7 days.
func (s *Service) Trends(ctx context.Context, r aggregate.Range) (*TrendsReport, error) {
	if r.Until.IsZero() {
		r.Until = time.Now()
	}
	if r.Since.IsZero() {
		r.Since = r.Until.AddDate(0, 0, -7)
	}

	sessions, err := s.loader.LoadAll(ctx, true)
	if err != nil {
		return nil, err
	}
	sessions = s.calc.Annotate(sessions)

	current := aggregate.FilterByDate(sessions, r)
	previous := aggregate.FilterByDate(sessions, analyzer.PreviousPeriod(r))

	return &TrendsReport{
		Current:  aggregate.SummarizeSessions(current),
		Previous: aggregate.SummarizeSessions(previous),
		Trends:   analyzer.ComparePeriods(aggregate.SummarizeSessions(current), aggregate.SummarizeSessions(previous)),
		Patterns: analyzer.DetectPatterns(current),
	}, nil
}

// Analyze runs the selected statistical analyzers over the filtered
// population.
func (s *Service) Analyze(ctx context.Context, r aggregate.Range, sel analyzer.Selection) (*analyzer.RunResult, error) {
	sessions, err := s.load(ctx, r, true)
	if err != nil {
		return nil, err
	}
	return s.orch.Run(ctx, sessions, sel)
}
