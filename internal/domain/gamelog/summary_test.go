package gamelog

import "testing"

func TestComputeStreaks(t *testing.T) {
	t.Parallel()

	if got := ComputeStreaks(nil); len(got) != 0 {
		t.Fatalf("expected no streaks for empty input, got %v", got)
	}

	got := ComputeStreaks([]Result{"W", "W", "L", "L", "L", "W"})
	want := []Streak{{ResultWin, 2}, {ResultLoss, 3}, {ResultWin, 1}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("streak %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	log, err := FromTable(Table{
		Header: []string{"GAME_DATE", "WL", "FG_PCT", "FG3_PCT", "REB", "PTS"},
		Rows: [][]string{
			{"2024-01-01", "W", "0.5", "0.35", "40", "110"},
			{"2024-01-02", "L", "0.4", "0.3", "38", "98"},
			{"2024-01-03", "W", "0.6", "0.4", "45", "115"},
			{"2024-01-04", "W", "0.55", "0.38", "42", "120"},
			{"2024-01-05", "L", "0.45", "0.28", "39", "101"},
		},
	})
	if err != nil {
		t.Fatalf("from table: %v", err)
	}

	s := Summarize(log)
	if s.Wins != 3 || s.Losses != 2 {
		t.Fatalf("expected 3-2 record, got %d-%d", s.Wins, s.Losses)
	}
	if s.LongestWinStreak != 2 || s.LongestLossStreak != 1 {
		t.Fatalf("unexpected streaks win=%d loss=%d", s.LongestWinStreak, s.LongestLossStreak)
	}
	if s.FGPct != 50 {
		t.Fatalf("expected FG%%=50, got %v", s.FGPct)
	}
	if s.FG3Pct != 34.2 {
		t.Fatalf("expected 3P%%=34.2, got %v", s.FG3Pct)
	}
	if s.Rebounds != 40.8 {
		t.Fatalf("expected rebounds=40.8, got %v", s.Rebounds)
	}
	if s.AvgPoints != 108.8 {
		t.Fatalf("expected avg points=108.8, got %v", s.AvgPoints)
	}

	rows := s.Rows()
	if len(rows) != 8 || rows[0].Metric != "Wins" || rows[0].Value != "3" || rows[7].Value != "108.8" {
		t.Fatalf("unexpected summary rows %+v", rows)
	}
}

func TestSummarize_IgnoresUndecidedResults(t *testing.T) {
	t.Parallel()

	log, err := FromTable(Table{
		Header: []string{"GAME_DATE", "WL"},
		Rows: [][]string{
			{"2024-01-01", "W"},
			{"2024-01-02", ""},
			{"2024-01-03", "W"},
		},
	})
	if err != nil {
		t.Fatalf("from table: %v", err)
	}

	s := Summarize(log)
	if s.Wins != 2 || s.Losses != 0 {
		t.Fatalf("unexpected record %d-%d", s.Wins, s.Losses)
	}
	if s.LongestWinStreak != 1 {
		t.Fatalf("expected undecided game to break the streak, got %d", s.LongestWinStreak)
	}
	if s.AvgPoints != 0 {
		t.Fatalf("expected zero average without PTS column, got %v", s.AvgPoints)
	}
}

func TestExtractOpponent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		matchup string
		want    string
		ok      bool
		home    bool
	}{
		{matchup: "GSW vs. LAL", want: "LAL", ok: true, home: true},
		{matchup: "GSW @ BOS", want: "BOS", ok: true},
		{matchup: "GSW", ok: false},
		{matchup: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ExtractOpponent(tc.matchup)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ExtractOpponent(%q)=%q,%v want %q,%v", tc.matchup, got, ok, tc.want, tc.ok)
		}
		if IsHomeGame(tc.matchup) != tc.home {
			t.Fatalf("IsHomeGame(%q) mismatch", tc.matchup)
		}
	}
}

func TestRollingPoints(t *testing.T) {
	t.Parallel()

	log, err := FromTable(Table{
		Header: []string{"GAME_DATE", "PTS"},
		Rows: [][]string{
			{"2024-01-01", "100"},
			{"2024-01-02", "110"},
			{"2024-01-03", "120"},
			{"2024-01-04", ""},
			{"2024-01-05", "130"},
		},
	})
	if err != nil {
		t.Fatalf("from table: %v", err)
	}

	points := RollingPoints(log, 3)
	if points[1].HasAverage {
		t.Fatalf("expected no average before the window fills")
	}
	if !points[2].HasAverage || points[2].Average != 110 {
		t.Fatalf("expected average 110 at index 2, got %+v", points[2])
	}
	if points[3].HasAverage || points[4].HasAverage {
		t.Fatalf("expected missing cell to void windows that include it")
	}
}
