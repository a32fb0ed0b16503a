package analyzer

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/droidusage/internal/session"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// HourUsage is one bucket of the 24-hour histogram.
type HourUsage struct {
	Hour     int     `json:"hour"`
	Sessions int     `json:"sessions"`
	Cost     float64 `json:"cost"`
}

// PeakHours summarizes the hourly session distribution.
type PeakHours struct {
	HourlyDistribution []HourUsage `json:"hourlyDistribution"`
	PeakHour           int         `json:"peakHour"`
	PeakHourRange      string      `json:"peakHourRange"`
	PeakCount          int         `json:"peakCount"`
	QuietestHour       int         `json:"quietestHour"`
	TotalSessions      int         `json:"totalSessions"`
}

// DayUsage is one bucket of the weekday histogram.
type DayUsage struct {
	Day      string  `json:"day"`
	DayIndex int     `json:"dayIndex"`
	Sessions int     `json:"sessions"`
	Cost     float64 `json:"cost"`
}

// WeekSplit is the weekday versus weekend session share.
type WeekSplit struct {
	Weekday           int     `json:"weekday"`
	Weekend           int     `json:"weekend"`
	WeekdayPercentage float64 `json:"weekdayPercentage"`
	WeekendPercentage float64 `json:"weekendPercentage"`
}

// BusiestDays summarizes the weekday session distribution.
type BusiestDays struct {
	DailyDistribution []DayUsage `json:"dailyDistribution"`
	BusiestDay        string     `json:"busiestDay"`
	BusiestDayCount   int        `json:"busiestDayCount"`
	QuietestDay       string     `json:"quietestDay"`
	WeekdayVsWeekend  WeekSplit  `json:"weekdayVsWeekend"`
}

// DurationBucket is one band of the session duration histogram.
type DurationBucket struct {
	Label string `json:"label"`
	MaxMs int64  `json:"maxMs"`
	Count int    `json:"count"`
}

// DurationAnomaly flags a session whose duration exceeds mean plus two
// standard deviations.
type DurationAnomaly struct {
	ID                string  `json:"id"`
	DurationMs        int64   `json:"duration"`
	DeviationMultiple float64 `json:"deviationMultiple"`
}

// DurationAnalysis holds duration statistics, distribution, and anomalies.
type DurationAnalysis struct {
	Stats        Stats             `json:"stats"`
	Distribution []DurationBucket  `json:"distribution"`
	Anomalies    []DurationAnomaly `json:"anomalies"`
}

// ModelUse counts one model's sessions within a time-of-day category.
type ModelUse struct {
	Model       string  `json:"model"`
	Count       int     `json:"count"`
	TotalCost   float64 `json:"totalCost"`
	TotalTokens int64   `json:"totalTokens"`
}

// TimePreference lists the models used within one time-of-day category.
type TimePreference struct {
	Models        []ModelUse `json:"models"`
	MostPopular   string     `json:"mostPopular"`
	TotalSessions int        `json:"totalSessions"`
}

// UsageSpike flags a day whose session count exceeds twice the average.
type UsageSpike struct {
	Date         string  `json:"date"`
	SessionCount int     `json:"sessionCount"`
	Cost         float64 `json:"cost"`
	Multiple     float64 `json:"multiple"`
}

// SpikeAnalysis is the daily spike detection result.
type SpikeAnalysis struct {
	Spikes            []UsageSpike `json:"spikes"`
	AverageDailyCount float64      `json:"averageDailyCount"`
	Threshold         float64      `json:"threshold"`
}

// PatternResult is the full output of the pattern analyzer.
type PatternResult struct {
	PeakHours        PeakHours                 `json:"peakHours"`
	BusiestDays      BusiestDays               `json:"busiestDays"`
	SessionDuration  DurationAnalysis          `json:"sessionDuration"`
	ModelPreferences map[string]TimePreference `json:"modelPreferences"`
	UsageSpikes      SpikeAnalysis             `json:"usageSpikes"`
}

// PatternAnalyzer analyzes temporal usage patterns. Sessions without a
// start time are excluded from every histogram.
type PatternAnalyzer struct{}

func (PatternAnalyzer) Name() string { return "patterns" }

func (a PatternAnalyzer) Analyze(sessions []session.Session) (any, error) {
	if err := validateSessions(sessions); err != nil {
		return nil, err
	}
	return PatternResult{
		PeakHours:        findPeakHours(sessions),
		BusiestDays:      findBusiestDays(sessions),
		SessionDuration:  analyzeDurations(sessions),
		ModelPreferences: modelPreferences(sessions),
		UsageSpikes:      detectSpikes(sessions),
	}, nil
}

func findPeakHours(sessions []session.Session) PeakHours {
	var counts [24]int
	var costs [24]float64
	dated := 0
	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		h := s.Date.Hour()
		counts[h]++
		costs[h] += s.Cost
		dated++
	}

	peak, quietest := 0, -1
	for h := range counts {
		if counts[h] > counts[peak] {
			peak = h
		}
		if counts[h] > 0 && (quietest == -1 || counts[h] < counts[quietest]) {
			quietest = h
		}
	}
	if quietest == -1 {
		quietest = 0
	}

	dist := make([]HourUsage, 24)
	for h := range dist {
		dist[h] = HourUsage{Hour: h, Sessions: counts[h], Cost: costs[h]}
	}

	return PeakHours{
		HourlyDistribution: dist,
		PeakHour:           peak,
		PeakHourRange:      fmt.Sprintf("%d:00-%d:00", peak, (peak+1)%24),
		PeakCount:          counts[peak],
		QuietestHour:       quietest,
		TotalSessions:      dated,
	}
}

func findBusiestDays(sessions []session.Session) BusiestDays {
	var counts [7]int
	var costs [7]float64
	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		d := int(s.Date.Weekday())
		counts[d]++
		costs[d] += s.Cost
	}

	busiest, quietest := 0, -1
	for d := range counts {
		if counts[d] > counts[busiest] {
			busiest = d
		}
		if counts[d] > 0 && (quietest == -1 || counts[d] < counts[quietest]) {
			quietest = d
		}
	}
	if quietest == -1 {
		quietest = 0
	}

	dist := make([]DayUsage, 7)
	for d := range dist {
		dist[d] = DayUsage{Day: dayNames[d], DayIndex: d, Sessions: counts[d], Cost: costs[d]}
	}

	weekday := counts[1] + counts[2] + counts[3] + counts[4] + counts[5]
	weekend := counts[0] + counts[6]
	split := WeekSplit{Weekday: weekday, Weekend: weekend}
	if total := weekday + weekend; total > 0 {
		split.WeekdayPercentage = float64(weekday) / float64(total) * 100
		split.WeekendPercentage = float64(weekend) / float64(total) * 100
	}

	return BusiestDays{
		DailyDistribution: dist,
		BusiestDay:        dayNames[busiest],
		BusiestDayCount:   counts[busiest],
		QuietestDay:       dayNames[quietest],
		WeekdayVsWeekend:  split,
	}
}

func analyzeDurations(sessions []session.Session) DurationAnalysis {
	buckets := []DurationBucket{
		{Label: "< 1 min", MaxMs: 60_000},
		{Label: "1-5 min", MaxMs: 300_000},
		{Label: "5-15 min", MaxMs: 900_000},
		{Label: "15-30 min", MaxMs: 1_800_000},
		{Label: "30-60 min", MaxMs: 3_600_000},
		{Label: "> 60 min", MaxMs: -1},
	}

	var durations []float64
	for _, s := range sessions {
		if s.ActiveTimeMs <= 0 {
			continue
		}
		durations = append(durations, float64(s.ActiveTimeMs))
		for i := range buckets {
			if buckets[i].MaxMs < 0 || s.ActiveTimeMs <= buckets[i].MaxMs {
				buckets[i].Count++
				break
			}
		}
	}
	if len(durations) == 0 {
		return DurationAnalysis{Distribution: buckets}
	}

	stats := ComputeStats(durations)
	threshold := stats.Mean + 2*stats.StdDev

	var anomalies []DurationAnomaly
	for _, s := range sessions {
		if s.ActiveTimeMs <= 0 || float64(s.ActiveTimeMs) <= threshold || stats.StdDev == 0 {
			continue
		}
		anomalies = append(anomalies, DurationAnomaly{
			ID:                s.ID,
			DurationMs:        s.ActiveTimeMs,
			DeviationMultiple: (float64(s.ActiveTimeMs) - stats.Mean) / stats.StdDev,
		})
	}

	return DurationAnalysis{Stats: stats, Distribution: buckets, Anomalies: anomalies}
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

func modelPreferences(sessions []session.Session) map[string]TimePreference {
	byTime := make(map[string]map[string]*ModelUse)
	for _, s := range sessions {
		if !s.HasDate() || s.Model == "" {
			continue
		}
		tod := timeOfDay(s.Date.Hour())
		if byTime[tod] == nil {
			byTime[tod] = make(map[string]*ModelUse)
		}
		use, ok := byTime[tod][s.Model]
		if !ok {
			use = &ModelUse{Model: s.Model}
			byTime[tod][s.Model] = use
		}
		use.Count++
		use.TotalCost += s.Cost
		use.TotalTokens += s.TotalTokens
	}

	prefs := make(map[string]TimePreference, len(byTime))
	for tod, models := range byTime {
		uses := make([]ModelUse, 0, len(models))
		total := 0
		for _, u := range models {
			uses = append(uses, *u)
			total += u.Count
		}
		sort.Slice(uses, func(i, j int) bool {
			if uses[i].Count != uses[j].Count {
				return uses[i].Count > uses[j].Count
			}
			return uses[i].Model < uses[j].Model
		})
		prefs[tod] = TimePreference{Models: uses, MostPopular: uses[0].Model, TotalSessions: total}
	}
	return prefs
}

func detectSpikes(sessions []session.Session) SpikeAnalysis {
	counts := make(map[string]int)
	costs := make(map[string]float64)
	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		d := s.Date.Format("2006-01-02")
		counts[d]++
		costs[d] += s.Cost
	}
	if len(counts) == 0 {
		return SpikeAnalysis{}
	}

	var total int
	for _, c := range counts {
		total += c
	}
	avg := float64(total) / float64(len(counts))
	threshold := avg * 2

	var spikes []UsageSpike
	for d, c := range counts {
		if float64(c) > threshold {
			spikes = append(spikes, UsageSpike{
				Date:         d,
				SessionCount: c,
				Cost:         costs[d],
				Multiple:     float64(c) / avg,
			})
		}
	}
	sort.Slice(spikes, func(i, j int) bool { return spikes[i].SessionCount > spikes[j].SessionCount })

	return SpikeAnalysis{Spikes: spikes, AverageDailyCount: avg, Threshold: threshold}
}

func (a PatternAnalyzer) Insights(result any) []Insight {
	res, ok := result.(PatternResult)
	if !ok {
		return nil
	}

	var insights []Insight

	if res.PeakHours.PeakCount > 0 {
		insights = append(insights, Insight{
			Type:           "info",
			Category:       "peak_hours",
			Message:        fmt.Sprintf("Peak usage hour: %s with %d sessions", res.PeakHours.PeakHourRange, res.PeakHours.PeakCount),
			Severity:       "low",
			Recommendation: "Consider scheduling batch jobs outside peak hours to avoid rate limits",
		})
	}

	if split := res.BusiestDays.WeekdayVsWeekend; split.WeekendPercentage > 30 {
		insights = append(insights, Insight{
			Type:           "info",
			Category:       "weekend_usage",
			Message:        fmt.Sprintf("Significant weekend usage: %.0f%%", split.WeekendPercentage),
			Severity:       "low",
			Recommendation: "Weekend patterns suggest personal vs business usage mix",
		})
	}

	if n := len(res.SessionDuration.Anomalies); n > 0 {
		insights = append(insights, Insight{
			Type:           "warning",
			Category:       "long_sessions",
			Message:        fmt.Sprintf("%d unusually long sessions detected", n),
			Severity:       "medium",
			Recommendation: "Review long-running sessions for potential inefficiencies or stuck processes",
		})
	}

	if n := len(res.UsageSpikes.Spikes); n > 0 {
		insights = append(insights, Insight{
			Type:           "info",
			Category:       "usage_spikes",
			Message:        fmt.Sprintf("%d usage spike days detected", n),
			Severity:       "low",
			Recommendation: "Spike days may indicate batch workloads worth scheduling deliberately",
		})
	}

	return insights
}
