package analyzer

import (
	"time"

	"github.com/blackwell-systems/droidusage/internal/aggregate"
	"github.com/blackwell-systems/droidusage/internal/session"
)

// Metric is one compared value between the current and previous period.
type Metric struct {
	Value      float64 `json:"value"`
	Previous   float64 `json:"previous"`
	Change     float64 `json:"change"`
	Percentage float64 `json:"percentage"`
	Direction  string  `json:"direction"`
	Indicator  string  `json:"indicator"`
}

// Trends compares the standard usage metrics across two periods.
type Trends struct {
	Cost                Metric `json:"cost"`
	Tokens              Metric `json:"tokens"`
	Sessions            Metric `json:"sessions"`
	Prompts             Metric `json:"prompts"`
	AvgCostPerSession   Metric `json:"avgCostPerSession"`
	AvgTokensPerSession Metric `json:"avgTokensPerSession"`
	AvgCostPerPrompt    Metric `json:"avgCostPerPrompt"`
}

// UsagePatterns is the hourly and weekday distribution attached to the
// trends report.
type UsagePatterns struct {
	PeakHour           int     `json:"peakHour"`
	PeakHourRange      string  `json:"peakHourRange"`
	PeakDay            string  `json:"peakDay"`
	HourlyDistribution [24]int `json:"hourlyDistribution"`
	DailyDistribution  [7]int  `json:"dailyDistribution"`
}

// ComparePeriods computes the change between two period summaries. A
// previous period with zero sessions yields a degenerate result reporting
// only current values with every direction stable.
func ComparePeriods(current, previous aggregate.Summary) Trends {
	if previous.TotalSessions == 0 {
		return Trends{
			Cost:                stableMetric(current.TotalCost),
			Tokens:              stableMetric(float64(current.TotalTokens)),
			Sessions:            stableMetric(float64(current.TotalSessions)),
			Prompts:             stableMetric(float64(current.TotalPrompts)),
			AvgCostPerSession:   stableMetric(safeDiv(current.TotalCost, float64(current.TotalSessions))),
			AvgTokensPerSession: stableMetric(safeDiv(float64(current.TotalTokens), float64(current.TotalSessions))),
			AvgCostPerPrompt:    stableMetric(safeDiv(current.TotalCost, float64(max(current.TotalPrompts, 1)))),
		}
	}

	return Trends{
		Cost:     change(current.TotalCost, previous.TotalCost),
		Tokens:   change(float64(current.TotalTokens), float64(previous.TotalTokens)),
		Sessions: change(float64(current.TotalSessions), float64(previous.TotalSessions)),
		Prompts:  change(float64(current.TotalPrompts), float64(previous.TotalPrompts)),
		AvgCostPerSession: change(
			safeDiv(current.TotalCost, float64(current.TotalSessions)),
			safeDiv(previous.TotalCost, float64(previous.TotalSessions)),
		),
		AvgTokensPerSession: change(
			safeDiv(float64(current.TotalTokens), float64(current.TotalSessions)),
			safeDiv(float64(previous.TotalTokens), float64(previous.TotalSessions)),
		),
		AvgCostPerPrompt: change(
			current.TotalCost/float64(max(current.TotalPrompts, 1)),
			previous.TotalCost/float64(max(previous.TotalPrompts, 1)),
		),
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func stableMetric(value float64) Metric {
	return Metric{Value: value, Direction: "stable", Indicator: "→"}
}

func change(current, previous float64) Metric {
	if previous == 0 {
		return stableMetric(current)
	}

	pct := (current - previous) / previous * 100
	direction := "stable"
	switch {
	case pct > 5:
		direction = "up"
	case pct < -5:
		direction = "down"
	}

	return Metric{
		Value:      current,
		Previous:   previous,
		Change:     current - previous,
		Percentage: pct,
		Direction:  direction,
		Indicator:  indicatorFor(direction),
	}
}

func indicatorFor(direction string) string {
	switch direction {
	case "up":
		return "↑"
	case "down":
		return "↓"
	default:
		return "→"
	}
}

// PreviousPeriod returns the date range of the same span immediately
// preceding the given range. A zero range defaults to the last 7 days
// ending now.
func PreviousPeriod(r aggregate.Range) aggregate.Range {
	since, until := r.Since, r.Until
	if until.IsZero() {
		until = time.Now()
	}
	if since.IsZero() {
		since = until.AddDate(0, 0, -7)
	}

	span := until.Sub(since)
	days := int((span.Hours() + 23) / 24)
	if days < 1 {
		days = 1
	}

	return aggregate.Range{
		Since: since.AddDate(0, 0, -days),
		Until: until.AddDate(0, 0, -days),
	}
}

// DetectPatterns builds the hourly and weekday session histograms for the
// trends report. Undated sessions are skipped.
func DetectPatterns(sessions []session.Session) UsagePatterns {
	var p UsagePatterns
	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		p.HourlyDistribution[s.Date.Hour()]++
		p.DailyDistribution[int(s.Date.Weekday())]++
	}

	for h, c := range p.HourlyDistribution {
		if c > p.HourlyDistribution[p.PeakHour] {
			p.PeakHour = h
		}
	}
	peakDay := 0
	for d, c := range p.DailyDistribution {
		if c > p.DailyDistribution[peakDay] {
			peakDay = d
		}
	}

	p.PeakHourRange = peakHourRange(p.PeakHour)
	p.PeakDay = dayNames[peakDay]
	return p
}

func peakHourRange(hour int) string {
	return time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:04") +
		"-" + time.Date(0, 1, 1, (hour+1)%24, 0, 0, 0, time.UTC).Format("15:04")
}
