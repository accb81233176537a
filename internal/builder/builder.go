// Package builder assembles question banks from plain line lists.
package builder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/quizdrill/internal/bank"
	"github.com/verte-zerg/quizdrill/internal/persist"
)

var (
	// ErrCountMismatch is returned when the two lists differ in length.
	ErrCountMismatch = errors.New("builder: question and answer counts differ")
	// ErrDuplicateQuestion is returned when a question appears twice.
	ErrDuplicateQuestion = errors.New("builder: duplicate question")
	// ErrOutputExists is returned when the output file exists and overwrite is off.
	ErrOutputExists = errors.New("builder: output file exists")
)

// Options controls Build.
type Options struct {
	QuestionsPath string
	AnswersPath   string
	OutPath       string
	Force         bool
}

// LoadLines reads one entry per non-blank line from the provided file path.
func LoadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return lines, nil
}

// Pair zips questions with answers by position.
func Pair(questions, answers []string) (*bank.Bank, error) {
	if len(questions) != len(answers) {
		return nil, fmt.Errorf("%d questions, %d answers: %w", len(questions), len(answers), ErrCountMismatch)
	}
	entries := make(map[string]string, len(questions))
	for i, q := range questions {
		if _, ok := entries[q]; ok {
			return nil, fmt.Errorf("line %d %q: %w", i+1, q, ErrDuplicateQuestion)
		}
		entries[q] = answers[i]
	}
	return bank.New(entries), nil
}

// Build reads both lists and writes the bank to OutPath in the format its
// extension selects. It returns the number of questions written.
func Build(opts Options) (int, error) {
	if opts.OutPath == "" {
		return 0, fmt.Errorf("output path is empty")
	}
	if !opts.Force {
		if _, err := os.Stat(opts.OutPath); err == nil {
			return 0, fmt.Errorf("%s: %w", opts.OutPath, ErrOutputExists)
		}
	}
	questions, err := LoadLines(opts.QuestionsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read questions: %w", err)
	}
	answers, err := LoadLines(opts.AnswersPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read answers: %w", err)
	}
	b, err := Pair(questions, answers)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(opts.OutPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := persist.New().Snapshot(b, opts.OutPath); err != nil {
		return 0, err
	}
	return b.Size(), nil
}
