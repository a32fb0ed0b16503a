package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// BlockDuration is the width of one usage block.
const BlockDuration = 5 * time.Hour

// Block is a rolling 5-hour usage window anchored at the earliest dated
// session in the set.
type Block struct {
	Index     int       `json:"index"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Date      string    `json:"date"`
	TimeRange string    `json:"timeRange"`
	Models    string    `json:"models"`

	InputTokens         int64 `json:"inputTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	TotalTokens         int64 `json:"totalTokens"`

	UserPrompts int     `json:"userPrompts"`
	Cost        float64 `json:"cost"`

	Sessions []session.Session `json:"sessions"`
}

// GroupByBlock assigns every dated session to the 5-hour window containing
// its start time, counted from the earliest dated session. Undated
// sessions are excluded. Blocks are returned in chronological order with
// the model set rendered as a sorted comma-joined string.
func GroupByBlock(sessions []session.Session) []Block {
	var earliest time.Time
	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		if earliest.IsZero() || s.Date.Before(earliest) {
			earliest = s.Date
		}
	}
	if earliest.IsZero() {
		return nil
	}

	type bucket struct {
		block  *Block
		models map[string]struct{}
	}
	grouped := make(map[int]*bucket)

	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		idx := int(s.Date.Sub(earliest) / BlockDuration)

		b, ok := grouped[idx]
		if !ok {
			start := earliest.Add(time.Duration(idx) * BlockDuration)
			end := start.Add(BlockDuration)
			b = &bucket{
				block: &Block{
					Index:     idx,
					Start:     start,
					End:       end,
					Date:      start.Format("2006-01-02"),
					TimeRange: start.Format("15:04") + " - " + end.Format("15:04"),
				},
				models: make(map[string]struct{}),
			}
			grouped[idx] = b
		}

		if s.Model != "" {
			b.models[s.Model] = struct{}{}
		}
		b.block.InputTokens += s.InputTokens
		b.block.OutputTokens += s.OutputTokens
		b.block.CacheCreationTokens += s.CacheCreationTokens
		b.block.CacheReadTokens += s.CacheReadTokens
		b.block.TotalTokens += s.SumTokens()
		b.block.UserPrompts += s.UserInteractions
		b.block.Cost += s.Cost
		b.block.Sessions = append(b.block.Sessions, s)
	}

	blocks := make([]Block, 0, len(grouped))
	for _, b := range grouped {
		names := make([]string, 0, len(b.models))
		for m := range b.models {
			names = append(names, m)
		}
		sort.Strings(names)
		b.block.Models = strings.Join(names, ", ")
		blocks = append(blocks, *b.block)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })
	return blocks
}
