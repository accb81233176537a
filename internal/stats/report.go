// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/quizdrill/internal/model"
	"github.com/verte-zerg/quizdrill/internal/store"
)

const (
	minTrendWidth       = 10
	trendFrameWidth     = 2
	bankColumnWidth     = 32
	terminalWidthBackup = 80
)

// Report contains precomputed data for history rendering.
type Report struct {
	Sessions []model.SessionRecord
	Trend    []float64
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	accuracies := make([]float64, len(sessions))
	for i, s := range sessions {
		accuracies[i] = s.Accuracy
	}
	return Report{
		Sessions: sessions,
		Trend:    MovingAverage(accuracies, cfg.Window),
	}, nil
}

// Render writes the summary, the session table, and the trend line.
func Render(w io.Writer, report Report) error {
	return RenderWidth(w, report, terminalWidth())
}

// RenderWidth is Render with an explicit terminal width.
func RenderWidth(w io.Writer, report Report, totalWidth int) error {
	if err := RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if err := RenderSessions(w, report.Sessions, bankColumnWidth); err != nil {
		return err
	}
	return RenderTrend(w, report.Trend, TrendWidthFor(totalWidth))
}

// TrendWidthFor computes a sparkline width that fits within the total available width.
func TrendWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minTrendWidth
	}
	width := totalWidth - trendFrameWidth
	if width < minTrendWidth {
		width = minTrendWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
