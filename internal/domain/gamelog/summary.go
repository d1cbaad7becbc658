package gamelog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Streak is a run of consecutive identical results.
type Streak struct {
	Result Result
	Length int
}

// ComputeStreaks collapses results into consecutive runs, in order.
func ComputeStreaks(results []Result) []Streak {
	if len(results) == 0 {
		return nil
	}
	streaks := make([]Streak, 0, 8)
	current := Streak{Result: results[0], Length: 1}
	for _, r := range results[1:] {
		if r == current.Result {
			current.Length++
			continue
		}
		streaks = append(streaks, current)
		current = Streak{Result: r, Length: 1}
	}
	return append(streaks, current)
}

// Summary holds the headline metrics of a game log.
type Summary struct {
	Wins              int
	Losses            int
	LongestWinStreak  int
	LongestLossStreak int
	FGPct             float64
	FG3Pct            float64
	Rebounds          float64
	AvgPoints         float64
}

// SummaryRow is one metric/value line of the persisted summary.
type SummaryRow struct {
	Metric string
	Value  string
}

// Summarize computes the summary over every game in the log.
// Percentages are scaled to 0-100; averages skip empty cells; all values round to 2 decimals.
func Summarize(g GameLog) Summary {
	results := make([]Result, g.Len())
	var out Summary
	for i, rec := range g.records {
		results[i] = rec.Result
		switch rec.Result {
		case ResultWin:
			out.Wins++
		case ResultLoss:
			out.Losses++
		}
	}

	for _, s := range ComputeStreaks(results) {
		switch s.Result {
		case ResultWin:
			out.LongestWinStreak = max(out.LongestWinStreak, s.Length)
		case ResultLoss:
			out.LongestLossStreak = max(out.LongestLossStreak, s.Length)
		}
	}

	out.FGPct = round2(mean(g, ColumnFGPct) * 100)
	out.FG3Pct = round2(mean(g, ColumnFG3Pct) * 100)
	out.Rebounds = round2(mean(g, ColumnRebounds))
	out.AvgPoints = round2(mean(g, ColumnPoints))
	return out
}

func (s Summary) Rows() []SummaryRow {
	return []SummaryRow{
		{Metric: "Wins", Value: strconv.Itoa(s.Wins)},
		{Metric: "Losses", Value: strconv.Itoa(s.Losses)},
		{Metric: "Win Streak", Value: strconv.Itoa(s.LongestWinStreak)},
		{Metric: "Loss Streak", Value: strconv.Itoa(s.LongestLossStreak)},
		{Metric: "FG%", Value: formatFloat(s.FGPct)},
		{Metric: "3P%", Value: formatFloat(s.FG3Pct)},
		{Metric: "Rebounds", Value: formatFloat(s.Rebounds)},
		{Metric: "Avg Points", Value: formatFloat(s.AvgPoints)},
	}
}

var opponentRegex = regexp.MustCompile(`(?:vs\.|@)\s+(.+)$`)

// ExtractOpponent reads the opponent from matchups like "GSW vs. LAL" or "GSW @ LAL".
func ExtractOpponent(matchup string) (string, bool) {
	m := opponentRegex.FindStringSubmatch(strings.TrimSpace(matchup))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// IsHomeGame reports whether the matchup is written from the home side ("vs.").
func IsHomeGame(matchup string) bool {
	return strings.Contains(matchup, "vs.")
}

// RollingPoint is the points of one game with its trailing window average.
type RollingPoint struct {
	GameDate   time.Time
	Points     float64
	Average    float64
	HasAverage bool
}

// RollingPoints computes a trailing average of PTS over window games.
// The first window-1 games have no average; a missing cell inside the window voids it.
func RollingPoints(g GameLog, window int) []RollingPoint {
	if window < 1 {
		window = 1
	}
	out := make([]RollingPoint, g.Len())
	for i, rec := range g.records {
		pts, ok := g.Float(i, ColumnPoints)
		out[i] = RollingPoint{GameDate: rec.GameDate, Points: pts}
		if !ok || i+1 < window {
			continue
		}
		sum, complete := 0.0, true
		for j := i + 1 - window; j <= i; j++ {
			v, ok := g.Float(j, ColumnPoints)
			if !ok {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			out[i].Average = sum / float64(window)
			out[i].HasAverage = true
		}
	}
	return out
}

func mean(g GameLog, column string) float64 {
	sum, n := 0.0, 0
	for i := range g.records {
		if v, ok := g.Float(i, column); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
