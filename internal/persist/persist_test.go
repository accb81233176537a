package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/quizdrill/internal/bank"
)

func TestWorkingCopyPath(t *testing.T) {
	got := WorkingCopyPath(filepath.Join("data", "quiz.json"))
	want := filepath.Join("data", "copy_quiz.json")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCreateWorkingCopyIsVerbatim(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "quiz.json")
	payload := []byte("{\n  \"2+2\": \"4\"\n}\n")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	m := New()
	workingPath, err := m.CreateWorkingCopy(src)
	if err != nil {
		t.Fatalf("create working copy: %v", err)
	}
	if workingPath != filepath.Join(dir, "copy_quiz.json") {
		t.Fatalf("unexpected working path %q", workingPath)
	}
	got, err := os.ReadFile(workingPath)
	if err != nil {
		t.Fatalf("read working copy: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("expected verbatim copy, got %q", got)
	}
}

func TestCreateWorkingCopyMissingSource(t *testing.T) {
	m := New()
	_, err := m.CreateWorkingCopy(filepath.Join(t.TempDir(), "missing.json"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestSnapshotLeavesSourceIntact(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "quiz.json")
	payload := []byte(`{"2+2": "4", "capital of France": "Paris"}`)
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	m := New()
	workingPath, err := m.CreateWorkingCopy(src)
	if err != nil {
		t.Fatalf("create working copy: %v", err)
	}

	b, err := bank.Load(payload, bank.FormatJSON)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b.Remove("2+2")
	if err := m.Snapshot(b, workingPath); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	data, err := os.ReadFile(workingPath)
	if err != nil {
		t.Fatalf("read working copy: %v", err)
	}
	reloaded, err := bank.Load(data, bank.FormatJSON)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Size() != 1 || reloaded.AnswerFor("capital of France") != "Paris" {
		t.Fatalf("unexpected snapshot contents: %v", reloaded.Entries())
	}
	original, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if string(original) != string(payload) {
		t.Fatalf("source was modified: %q", original)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected source and working copy only, got %d entries", len(entries))
	}
}

func TestSnapshotYAMLWorkingCopy(t *testing.T) {
	dir := t.TempDir()
	workingPath := filepath.Join(dir, "copy_quiz.yaml")
	m := New()
	if err := m.Snapshot(bank.New(map[string]string{"q": "a"}), workingPath); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	data, err := os.ReadFile(workingPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := bank.Load(data, bank.FormatYAML)
	if err != nil {
		t.Fatalf("reload yaml: %v", err)
	}
	if b.AnswerFor("q") != "a" {
		t.Fatalf("unexpected entries: %v", b.Entries())
	}
}

func TestSnapshotUnwritableDir(t *testing.T) {
	m := New()
	workingPath := filepath.Join(t.TempDir(), "missing-dir", "copy_quiz.json")
	err := m.Snapshot(bank.New(nil), workingPath)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestDeleteWorkingCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copy_quiz.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := New()
	if err := m.DeleteWorkingCopy(path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected working copy removed, stat err %v", err)
	}
	if err := m.DeleteWorkingCopy(path); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if err := m.DeleteWorkingCopy(""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}
