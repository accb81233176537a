// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quizdrill/internal/model"
	"github.com/verte-zerg/quizdrill/internal/session"
	"github.com/verte-zerg/quizdrill/internal/stats"
	"github.com/verte-zerg/quizdrill/internal/verify"
)

type phase int

const (
	phaseAsk phase = iota
	phaseChecking
	phaseDone
)

var (
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Drill is the part of the session controller the UI drives.
type Drill interface {
	Submit(ctx context.Context, userAnswer string) (model.VerificationResult, error)
	Skip() error
	CurrentQuestion() (string, bool)
	Progress() model.Progress
	IsComplete() bool
	Summary() model.Summary
	Attempt() int
}

var _ Drill = (*session.Controller)(nil)

type verifiedMsg struct {
	question string
	answer   string
	result   model.VerificationResult
	err      error
}

// submitGate serializes submit commands with Shutdown. Once closed, no
// command touches the drill again.
type submitGate struct {
	mu     sync.Mutex
	closed bool
}

func (g *submitGate) run(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		fn()
	}
}

func (g *submitGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// Model implements the Bubble Tea quiz UI. The drill is only touched from
// Update and from the single in-flight submit command.
type Model struct {
	ctx   context.Context
	drill Drill

	gate   *submitGate
	cancel context.CancelFunc

	input textinput.Model
	bar   progress.Model
	phase phase

	width  int
	height int

	question string
	attempt  int
	progress model.Progress
	summary  model.Summary

	feedback string
	errMsg   string
	quit     bool
}

// NewModel constructs a quiz model over a started drill.
func NewModel(ctx context.Context, drill Drill) *Model {
	input := textinput.New()
	input.Placeholder = "type your answer"
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	m := &Model{
		ctx:   ctx,
		drill: drill,
		gate:  &submitGate{},
		input: input,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.refresh()
	return m
}

// Quit reports whether the user left before finishing.
func (m *Model) Quit() bool {
	return m.quit
}

// Shutdown cancels a pending answer check and waits for it to return.
// The drill is not touched after Shutdown, so it can be closed safely.
func (m *Model) Shutdown() {
	m.abortCheck()
	m.gate.close()
}

func (m *Model) abortCheck() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, m.contentWidth()-lipgloss.Width(m.input.Prompt)-1)
		m.bar.Width = maxInt(10, m.contentWidth()-12)
		return m, nil
	case verifiedMsg:
		return m.handleVerified(msg), nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quit = m.phase != phaseDone
			m.abortCheck()
			return m, tea.Quit
		}
		switch m.phase {
		case phaseChecking:
			return m, nil
		case phaseDone:
			switch msg.String() {
			case "enter", "q", "esc":
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyTab, tea.KeyCtrlS:
			m.skip()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	answer := strings.TrimSpace(m.input.Value())
	if answer == "" {
		return m, nil
	}
	m.phase = phaseChecking
	m.errMsg = ""
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	gate, drill, question := m.gate, m.drill, m.question
	return m, func() tea.Msg {
		defer cancel()
		msg := verifiedMsg{question: question, answer: answer, err: context.Canceled}
		gate.run(func() {
			msg.result, msg.err = drill.Submit(ctx, answer)
		})
		return msg
	}
}

func (m *Model) handleVerified(msg verifiedMsg) *Model {
	m.phase = phaseAsk
	m.cancel = nil
	if msg.err != nil {
		m.errMsg = describeError(msg.err)
		return m
	}
	m.input.Reset()
	reveal := pendingStyle.Render(fmt.Sprintf("%s → %s", msg.question, msg.result.CanonicalAnswer))
	if msg.result.Correct {
		m.feedback = correctStyle.Render("Correct!") + " " + reveal
	} else {
		m.feedback = incorrectStyle.Render("Incorrect.") + " " + reveal
	}
	m.refresh()
	return m
}

func (m *Model) skip() {
	if err := m.drill.Skip(); err != nil {
		m.errMsg = describeError(err)
		return
	}
	m.errMsg = ""
	m.feedback = pendingStyle.Render("Skipped.")
	m.input.Reset()
	m.refresh()
}

func (m *Model) refresh() {
	m.question, _ = m.drill.CurrentQuestion()
	m.attempt = m.drill.Attempt()
	m.progress = m.drill.Progress()
	if m.drill.IsComplete() {
		m.summary = m.drill.Summary()
		m.phase = phaseDone
		m.input.Blur()
	}
}

func (m *Model) renderContent() string {
	width := m.contentWidth()
	if m.phase == phaseDone {
		return m.renderSummary()
	}
	lines := []string{
		accentStyle.Render(fmt.Sprintf("Question %d", m.attempt)),
		"",
		wrapText(m.question, width, questionStyle),
		"",
		m.input.View(),
	}
	switch {
	case m.phase == phaseChecking:
		lines = append(lines, "", pendingStyle.Render("Checking..."))
	case m.errMsg != "":
		lines = append(lines, "", incorrectStyle.Render(m.errMsg))
	case m.feedback != "":
		lines = append(lines, "", m.feedback)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderSummary() string {
	lines := []string{}
	if m.feedback != "" {
		lines = append(lines, m.feedback, "")
	}
	lines = append(lines,
		accentStyle.Render("All questions answered!"),
		fmt.Sprintf("Accuracy %.1f%% (%d/%d)", m.summary.Accuracy, m.summary.Correct, m.summary.Total),
		questionStyle.Render(stats.Grade(m.summary.Accuracy)),
		"",
		footerStyle.Render("enter: quit"),
	)
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	pct := 0.0
	if m.progress.Total > 0 {
		pct = float64(m.progress.Solved) / float64(m.progress.Total)
	}
	segments := []string{
		m.bar.ViewAs(pct),
		fmt.Sprintf("%d/%d", m.progress.Solved, m.progress.Total),
	}
	if m.phase != phaseDone {
		segments = append(segments, "enter: answer  tab: skip  esc: quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	return maxInt(1, int(float64(m.width)*0.70))
}

func describeError(err error) string {
	var verr *verify.VerificationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Could not check the answer (%s). Press enter to retry.", verr.Reason)
	}
	return fmt.Sprintf("Could not save progress: %v", err)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
