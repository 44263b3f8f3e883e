package models

import (
	"math"
	"sort"
	"strings"
)

// DayCount is one point of the questions-over-time series.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// OverviewStats is the aggregate snapshot from GET /api/rag/overview.
// The zero value is what views show when the fetch fails.
type OverviewStats struct {
	NumDocuments      int            `json:"num_documents"`
	NumChunks         int            `json:"num_chunks"`
	NumQuestions      int            `json:"num_questions"`
	GroundedRatio     float64        `json:"grounded_ratio"`
	ModeCounts        map[string]int `json:"mode_counts"`
	QuestionsOverTime []DayCount     `json:"questions_over_time"`
}

// GroundedPercent returns grounded_ratio as a rounded percentage.
func (s OverviewStats) GroundedPercent() int {
	return int(math.Round(s.GroundedRatio * 100))
}

// ModeCount is one slice of the mode-usage chart.
type ModeCount struct {
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

// ModeUsage returns mode counts with upper-cased names, ordered by name.
func (s OverviewStats) ModeUsage() []ModeCount {
	if len(s.ModeCounts) == 0 {
		return nil
	}
	out := make([]ModeCount, 0, len(s.ModeCounts))
	for mode, n := range s.ModeCounts {
		out = append(out, ModeCount{Mode: strings.ToUpper(mode), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode < out[j].Mode })
	return out
}
