package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/quizdrill/internal/model"
	"github.com/verte-zerg/quizdrill/internal/stats"
)

func fixedLoader(sessions []model.SessionRecord, calls *[]model.HistoryConfig) Loader {
	return func(_ context.Context, cfg model.HistoryConfig) (stats.Report, error) {
		*calls = append(*calls, cfg)
		acc := make([]float64, len(sessions))
		for i, s := range sessions {
			acc[i] = s.Accuracy
		}
		return stats.Report{Sessions: sessions, Trend: stats.MovingAverage(acc, cfg.Window)}, nil
	}
}

func sampleSessions() []model.SessionRecord {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []model.SessionRecord{
		{ID: "1", EndedAt: base, SourcePath: "/b/capitals.json", Mode: model.ModeBasic, Total: 4, Correct: 2, Accuracy: 50},
		{ID: "2", EndedAt: base.Add(time.Hour), SourcePath: "/b/verbs.yaml", Mode: model.ModeAI, Total: 5, Correct: 5, Accuracy: 100},
	}
}

func TestOverviewShowsCards(t *testing.T) {
	var calls []model.HistoryConfig
	m := NewModel(fixedLoader(sampleSessions(), &calls), model.HistoryConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Avg Acc", "75.0%", "Best Acc", "100.0%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestSessionRowsNewestFirst(t *testing.T) {
	rows := sessionRows(sampleSessions())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "verbs.yaml" || rows[0][5] != "Excellent!" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][3] != "2/4" || rows[1][5] != "Not bad!" {
		t.Fatalf("unexpected second row %v", rows[1])
	}
}

func TestWindowKeysReload(t *testing.T) {
	var calls []model.HistoryConfig
	m := NewModel(fixedLoader(sampleSessions(), &calls), model.HistoryConfig{Window: 3})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if len(calls) != 4 {
		t.Fatalf("expected 4 loads, got %d", len(calls))
	}
	if calls[1].Window != 4 || calls[3].Window != 2 {
		t.Fatalf("unexpected windows %+v", calls)
	}
}

func TestLoadErrorShown(t *testing.T) {
	m := NewModel(func(context.Context, model.HistoryConfig) (stats.Report, error) {
		return stats.Report{}, errors.New("database is locked")
	}, model.HistoryConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "database is locked") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestQuitKey(t *testing.T) {
	var calls []model.HistoryConfig
	m := NewModel(fixedLoader(nil, &calls), model.HistoryConfig{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
