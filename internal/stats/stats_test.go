package stats

import (
	"math"
	"testing"
)

func TestAccuracy(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{3, 3, 100},
		{1, 4, 25},
		{2, 3, 200.0 / 3},
	}
	for _, tc := range cases {
		if got := Accuracy(tc.correct, tc.total); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Accuracy(%d, %d) = %v, want %v", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestGrade(t *testing.T) {
	cases := map[float64]string{
		100:  "Excellent!",
		90:   "Excellent!",
		89.9: "Well done!",
		70:   "Well done!",
		50:   "Not bad!",
		49.9: "Keep studying!",
		0:    "Keep studying!",
	}
	for acc, want := range cases {
		if got := Grade(acc); got != want {
			t.Fatalf("Grade(%v) = %q, want %q", acc, got, want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
	same := MovingAverage([]float64{1, 2}, 0)
	if same[0] != 1 || same[1] != 2 {
		t.Fatalf("expected passthrough, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	line := Sparkline([]float64{0, 50, 100})
	if len(line) != 3 || line[0] != ' ' || line[2] != '@' {
		t.Fatalf("unexpected sparkline %q", line)
	}
	flat := Sparkline([]float64{7, 7})
	if flat != "++" {
		t.Fatalf("unexpected flat sparkline %q", flat)
	}
}
