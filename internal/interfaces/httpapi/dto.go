package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/usecase"
)

type gamesQuery struct {
	Limit int `validate:"omitempty,min=1,max=500"`
}

type rollingQuery struct {
	Window int `validate:"omitempty,min=1,max=82"`
}

type teamDTO struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"fullName"`
	Nickname     string `json:"nickname,omitempty"`
	City         string `json:"city,omitempty"`
}

type gameDTO struct {
	GameDate string            `json:"gameDate"`
	Matchup  string            `json:"matchup"`
	Opponent string            `json:"opponent,omitempty"`
	Home     bool              `json:"home"`
	Result   string            `json:"result"`
	Stats    map[string]string `json:"stats"`
}

type gamesDTO struct {
	Team  teamDTO   `json:"team"`
	Total int       `json:"total"`
	Items []gameDTO `json:"items"`
}

type summaryDTO struct {
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	LongestWinStreak  int     `json:"longestWinStreak"`
	LongestLossStreak int     `json:"longestLossStreak"`
	FGPct             float64 `json:"fgPct"`
	FG3Pct            float64 `json:"fg3Pct"`
	Rebounds          float64 `json:"rebounds"`
	AvgPoints         float64 `json:"avgPoints"`
}

type teamSummaryDTO struct {
	Team    teamDTO    `json:"team"`
	Summary summaryDTO `json:"summary"`
}

type rollingPointDTO struct {
	GameDate string   `json:"gameDate"`
	Points   float64  `json:"points"`
	Average  *float64 `json:"average,omitempty"`
}

type reportDTO struct {
	RunID       string     `json:"runId"`
	Team        teamDTO    `json:"team"`
	Summary     summaryDTO `json:"summary"`
	Games       int        `json:"games"`
	FirstGame   string     `json:"firstGame,omitempty"`
	LastGame    string     `json:"lastGame,omitempty"`
	SummaryPath string     `json:"summaryPath,omitempty"`
	GamesPath   string     `json:"gamesPath,omitempty"`
	GeneratedAt string     `json:"generatedAt"`
}

// parsePositiveQuery reads an optional integer query parameter; absent means zero.
func parsePositiveQuery(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:           v.ID,
		Abbreviation: v.Abbreviation,
		FullName:     v.FullName,
		Nickname:     v.Nickname,
		City:         v.City,
	}
}

func gamesToDTO(log gamelog.GameLog) []gameDTO {
	columns := log.Columns()
	out := make([]gameDTO, 0, log.Len())
	for _, rec := range log.Records() {
		cells := rec.Cells()
		stats := make(map[string]string, len(columns))
		for i, column := range columns {
			if i < len(cells) {
				stats[column] = cells[i]
			}
		}
		opponent, _ := gamelog.ExtractOpponent(rec.Matchup)
		out = append(out, gameDTO{
			GameDate: rec.GameDate.Format(gamelog.DateLayout),
			Matchup:  rec.Matchup,
			Opponent: opponent,
			Home:     gamelog.IsHomeGame(rec.Matchup),
			Result:   string(rec.Result),
			Stats:    stats,
		})
	}
	return out
}

func summaryToDTO(v gamelog.Summary) summaryDTO {
	return summaryDTO{
		Wins:              v.Wins,
		Losses:            v.Losses,
		LongestWinStreak:  v.LongestWinStreak,
		LongestLossStreak: v.LongestLossStreak,
		FGPct:             v.FGPct,
		FG3Pct:            v.FG3Pct,
		Rebounds:          v.Rebounds,
		AvgPoints:         v.AvgPoints,
	}
}

func rollingToDTO(points []gamelog.RollingPoint) []rollingPointDTO {
	out := make([]rollingPointDTO, 0, len(points))
	for _, p := range points {
		item := rollingPointDTO{
			GameDate: p.GameDate.Format(gamelog.DateLayout),
			Points:   p.Points,
		}
		if p.HasAverage {
			avg := p.Average
			item.Average = &avg
		}
		out = append(out, item)
	}
	return out
}

func reportToDTO(v usecase.Report) reportDTO {
	return reportDTO{
		RunID:       v.RunID,
		Team:        teamToDTO(v.Team),
		Summary:     summaryToDTO(v.Summary),
		Games:       v.Games,
		FirstGame:   formatOptionalDate(v.FirstGame),
		LastGame:    formatOptionalDate(v.LastGame),
		SummaryPath: v.SummaryPath,
		GamesPath:   v.GamesPath,
		GeneratedAt: v.GeneratedAt.Format(time.RFC3339),
	}
}

func formatOptionalDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(gamelog.DateLayout)
}
