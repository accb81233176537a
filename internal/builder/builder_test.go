package builder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/quizdrill/internal/bank"
)

func writeLines(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadLinesSkipsBlank(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "q.txt", "  first \n\n\nsecond\n   \n")
	lines, err := LoadLines(path)
	if err != nil {
		t.Fatalf("load lines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestLoadLinesEmpty(t *testing.T) {
	path := writeLines(t, t.TempDir(), "q.txt", "\n \n")
	if _, err := LoadLines(path); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

func TestPairMismatch(t *testing.T) {
	_, err := Pair([]string{"a", "b"}, []string{"1"})
	if !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("expected count mismatch, got %v", err)
	}
}

func TestPairDuplicate(t *testing.T) {
	_, err := Pair([]string{"a", "a"}, []string{"1", "2"})
	if !errors.Is(err, ErrDuplicateQuestion) {
		t.Fatalf("expected duplicate question, got %v", err)
	}
}

func TestBuildWritesLoadableBank(t *testing.T) {
	dir := t.TempDir()
	q := writeLines(t, dir, "q.txt", "Capital of France?\n2+2\n")
	a := writeLines(t, dir, "a.txt", "Paris\n4\n")
	out := filepath.Join(dir, "out", "bank.yaml")

	n, err := Build(Options{QuestionsPath: q, AnswersPath: a, OutPath: out})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 questions, got %d", n)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	b, err := bank.Load(data, bank.FormatYAML)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if b.AnswerFor("Capital of France?") != "Paris" || b.AnswerFor("2+2") != "4" {
		t.Fatalf("unexpected bank %v", b.Entries())
	}
}

func TestBuildRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	q := writeLines(t, dir, "q.txt", "x\n")
	a := writeLines(t, dir, "a.txt", "y\n")
	out := writeLines(t, dir, "bank.json", "{}")

	if _, err := Build(Options{QuestionsPath: q, AnswersPath: a, OutPath: out}); !errors.Is(err, ErrOutputExists) {
		t.Fatalf("expected output exists, got %v", err)
	}
	if _, err := Build(Options{QuestionsPath: q, AnswersPath: a, OutPath: out, Force: true}); err != nil {
		t.Fatalf("forced build: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	b, err := bank.Load(data, bank.FormatJSON)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if b.AnswerFor("x") != "y" {
		t.Fatalf("unexpected bank %v", b.Entries())
	}
}
