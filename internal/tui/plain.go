package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/quizdrill/internal/session"
	"github.com/verte-zerg/quizdrill/internal/stats"
)

const (
	cmdSkip = ":skip"
	cmdQuit = ":quit"
)

// ErrQuit is returned by RunPlain when the user leaves before finishing.
var ErrQuit = errors.New("tui: quit before completion")

// RunPlain drives the drill one line at a time. Blank lines are ignored,
// ":skip" skips the question and ":quit" or end of input stops early.
func RunPlain(ctx context.Context, drill Drill, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for !drill.IsComplete() {
		if err := ctx.Err(); err != nil {
			return err
		}
		question, ok := drill.CurrentQuestion()
		if !ok {
			return fmt.Errorf("no question to ask: %w", session.ErrInvalidState)
		}
		p := drill.Progress()
		if _, err := fmt.Fprintf(out, "[%d/%d] Q%d: %s\n> ", p.Solved, p.Total, drill.Attempt(), question); err != nil {
			return err
		}
		line, ok := nextAnswer(scanner)
		if !ok {
			if err := scanner.Err(); err != nil {
				return err
			}
			return ErrQuit
		}
		switch line {
		case cmdQuit:
			return ErrQuit
		case cmdSkip:
			if err := drill.Skip(); err != nil {
				if errors.Is(err, session.ErrInvalidState) {
					return err
				}
				fmt.Fprintln(out, describeError(err))
			}
			continue
		}
		res, err := drill.Submit(ctx, line)
		if err != nil {
			if errors.Is(err, session.ErrInvalidState) {
				return err
			}
			fmt.Fprintln(out, describeError(err))
			continue
		}
		if res.Correct {
			fmt.Fprintf(out, "Correct! %s → %s\n", question, res.CanonicalAnswer)
		} else {
			fmt.Fprintf(out, "Incorrect. %s → %s\n", question, res.CanonicalAnswer)
		}
	}
	s := drill.Summary()
	_, err := fmt.Fprintf(out, "All questions answered! Accuracy %.1f%% (%d/%d) %s\n", s.Accuracy, s.Correct, s.Total, stats.Grade(s.Accuracy))
	return err
}

// nextAnswer returns the next non-blank trimmed line.
func nextAnswer(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}
