// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/quizdrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns correct/total as a percentage, or 0 for an empty session.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Grade labels a completion accuracy.
func Grade(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "Excellent!"
	case accuracy >= 70:
		return "Well done!"
	case accuracy >= 50:
		return "Not bad!"
	default:
		return "Keep studying!"
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints aggregate accuracy over sessions.
func RenderSummary(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc float64
	best := 0.0
	questions := 0
	for _, s := range sessions {
		totalAcc += s.Accuracy
		if s.Accuracy > best {
			best = s.Accuracy
		}
		questions += s.Total
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Questions: %d", questions),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/float64(len(sessions))),
		fmt.Sprintf("Best Accuracy: %.2f%%", best),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessions prints one row per session.
func RenderSessions(w io.Writer, sessions []model.SessionRecord, sourceWidth int) error {
	if len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Sessions"); err != nil {
		return err
	}
	for _, line := range sessionTable(sessionColumns(sourceWidth), sessions) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderTrend prints a sparkline of the smoothed accuracy, newest on the right.
func RenderTrend(w io.Writer, trend []float64, width int) error {
	if len(trend) == 0 {
		return nil
	}
	if width > 0 && len(trend) > width {
		trend = trend[len(trend)-width:]
	}
	last := trend[len(trend)-1]
	if _, err := fmt.Fprintf(w, "Accuracy Trend (latest %.1f%%)\n", last); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "[%s]\n", Sparkline(trend)); err != nil {
		return err
	}
	return nil
}
