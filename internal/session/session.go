// Package session drives a quiz over one question bank.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/quizdrill/internal/bank"
	"github.com/verte-zerg/quizdrill/internal/model"
	"github.com/verte-zerg/quizdrill/internal/persist"
	"github.com/verte-zerg/quizdrill/internal/stats"
	"github.com/verte-zerg/quizdrill/internal/verify"
)

// State is a step of the session lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateInProgress
	StateCompleted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateInProgress:
		return "in progress"
	case StateCompleted:
		return "completed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidState is returned when an operation is not allowed in the current state.
var ErrInvalidState = errors.New("session: operation not allowed in current state")

// LoadError reports a source that is missing, unreadable, or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Persister manages the on-disk working copy.
type Persister interface {
	CreateWorkingCopy(sourcePath string) (string, error)
	Snapshot(b *bank.Bank, workingPath string) error
	DeleteWorkingCopy(workingPath string) error
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPersister replaces the file-backed persister.
func WithPersister(p Persister) Option {
	return func(c *Controller) {
		c.persist = p
	}
}

// WithRand fixes the random source used to draw questions.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Controller) {
		c.rnd = rnd
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller runs the quiz state machine. It is not safe for concurrent use;
// callers serialize LoadBank, Start, Submit, Skip, and Close.
type Controller struct {
	verifier verify.Verifier
	persist  Persister
	rnd      *rand.Rand
	now      func() time.Time

	state       State
	bank        *bank.Bank
	id          string
	sourcePath  string
	workingPath string
	startedAt   time.Time

	current    string
	hasCurrent bool
	total      int
	correct    int
	attempt    int
	summary    model.Summary
}

// New returns an idle controller using the given verifier for every answer.
func New(v verify.Verifier, opts ...Option) *Controller {
	c := &Controller{
		verifier: v,
		persist:  persist.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadBank copies the source to a fresh working copy and loads the bank from it.
// On failure the controller keeps its previous state.
func (c *Controller) LoadBank(sourcePath string) error {
	if c.state != StateIdle && c.state != StateCompleted {
		return fmt.Errorf("load bank while %s: %w", c.state, ErrInvalidState)
	}
	workingPath, err := c.persist.CreateWorkingCopy(sourcePath)
	if err != nil {
		return &LoadError{Path: sourcePath, Err: err}
	}
	data, err := os.ReadFile(workingPath)
	if err != nil {
		c.discardFailed(workingPath)
		return &LoadError{Path: sourcePath, Err: err}
	}
	b, err := bank.Load(data, bank.FormatForPath(sourcePath))
	if err != nil {
		c.discardFailed(workingPath)
		return &LoadError{Path: sourcePath, Err: err}
	}
	if c.rnd != nil {
		b.SetRand(c.rnd)
	}

	if c.workingPath != "" && c.workingPath != workingPath {
		c.discard(c.workingPath)
	}
	c.bank = b
	c.id = uuid.NewString()
	c.sourcePath = sourcePath
	c.workingPath = workingPath
	c.startedAt = time.Time{}
	c.current = ""
	c.hasCurrent = false
	c.total = b.Size()
	c.correct = 0
	c.attempt = 0
	c.summary = model.Summary{}
	c.state = StateLoaded
	return nil
}

// Start begins drilling. An empty bank completes immediately.
func (c *Controller) Start() error {
	if c.state != StateLoaded {
		return fmt.Errorf("start while %s: %w", c.state, ErrInvalidState)
	}
	c.startedAt = c.now()
	c.state = StateInProgress
	c.advance()
	return nil
}

// Submit checks an answer for the current question.
// On a verification or persistence error nothing changes and the same
// question can be answered again.
func (c *Controller) Submit(ctx context.Context, userAnswer string) (model.VerificationResult, error) {
	if c.state != StateInProgress || !c.hasCurrent {
		return model.VerificationResult{}, fmt.Errorf("submit while %s: %w", c.state, ErrInvalidState)
	}
	question := c.current
	canonical := c.bank.AnswerFor(question)
	res, err := c.verifier.Verify(ctx, question, canonical, userAnswer)
	if err != nil {
		return model.VerificationResult{}, err
	}
	res.CanonicalAnswer = canonical

	if res.Correct {
		next := c.bank.Clone()
		next.Remove(question)
		if err := c.persist.Snapshot(next, c.workingPath); err != nil {
			return model.VerificationResult{}, err
		}
		c.bank = next
		c.correct++
		c.advance()
		return res, nil
	}

	if err := c.persist.Snapshot(c.bank, c.workingPath); err != nil {
		return model.VerificationResult{}, err
	}
	c.attempt--
	c.advance()
	return res, nil
}

// Skip moves on without judging. The question stays in the bank.
func (c *Controller) Skip() error {
	if c.state != StateInProgress || !c.hasCurrent {
		return fmt.Errorf("skip while %s: %w", c.state, ErrInvalidState)
	}
	if err := c.persist.Snapshot(c.bank, c.workingPath); err != nil {
		return err
	}
	c.attempt--
	c.advance()
	return nil
}

// Close removes the working copy. It is valid in every state and idempotent.
func (c *Controller) Close() error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	c.current = ""
	c.hasCurrent = false
	if c.workingPath == "" {
		return nil
	}
	err := c.persist.DeleteWorkingCopy(c.workingPath)
	c.workingPath = ""
	return err
}

// CurrentQuestion returns the in-flight question, if any.
func (c *Controller) CurrentQuestion() (string, bool) {
	return c.current, c.hasCurrent
}

// Progress reports solved, total, and correct counts.
func (c *Controller) Progress() model.Progress {
	p := model.Progress{Total: c.total, Correct: c.correct}
	if c.bank != nil {
		p.Solved = c.total - c.bank.Size()
	}
	return p
}

// IsComplete reports whether every question has been answered correctly.
func (c *Controller) IsComplete() bool {
	return c.state == StateCompleted
}

// Summary returns the completion summary. It is zero until the session completes.
func (c *Controller) Summary() model.Summary {
	return c.summary
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Attempt is the display step counter. It grows on every draw and steps
// back on wrong answers and skips; it never affects scoring.
func (c *Controller) Attempt() int {
	return c.attempt
}

// ID identifies the current session.
func (c *Controller) ID() string {
	return c.id
}

// SourcePath returns the loaded source file.
func (c *Controller) SourcePath() string {
	return c.sourcePath
}

// WorkingPath returns the working copy path, empty once closed.
func (c *Controller) WorkingPath() string {
	return c.workingPath
}

// StartedAt returns when Start was called.
func (c *Controller) StartedAt() time.Time {
	return c.startedAt
}

// Remaining returns the number of questions left in the bank.
func (c *Controller) Remaining() int {
	if c.bank == nil {
		return 0
	}
	return c.bank.Size()
}

func (c *Controller) advance() {
	question, err := c.bank.RandomSelect()
	if errors.Is(err, bank.ErrEmptyBank) {
		c.complete()
		return
	}
	c.current = question
	c.hasCurrent = true
	c.attempt++
}

func (c *Controller) complete() {
	c.current = ""
	c.hasCurrent = false
	c.state = StateCompleted
	c.summary = model.Summary{
		Accuracy: stats.Accuracy(c.correct, c.total),
		Correct:  c.correct,
		Total:    c.total,
	}
}

// discardFailed drops the copy of a source that failed to load. Reloading
// the same source overwrote the previous copy, so that one is gone as well.
func (c *Controller) discardFailed(workingPath string) {
	c.discard(workingPath)
	if workingPath == c.workingPath {
		c.workingPath = ""
	}
}

func (c *Controller) discard(workingPath string) {
	if err := c.persist.DeleteWorkingCopy(workingPath); err != nil {
		// Best-effort cleanup of a working copy nobody will use.
		_ = err
	}
}
