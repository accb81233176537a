// Package model defines shared data structures.
package model

import "time"

// Verification modes.
const (
	ModeBasic = "basic"
	ModeAI    = "ai"
)

// Config defines drill settings.
type Config struct {
	Mode      string
	Provider  string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	MaxTokens int
	Record    bool
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Source string
	Since  *time.Time
	Last   int
	Window int
}

// VerificationResult is the outcome of checking one answer.
// CanonicalAnswer is always the bank's stored answer.
type VerificationResult struct {
	Correct         bool
	CanonicalAnswer string
}

// Progress reports how far a session has come.
type Progress struct {
	Solved  int
	Total   int
	Correct int
}

// Summary is computed once when a session completes.
type Summary struct {
	Accuracy float64
	Correct  int
	Total    int
}

// SessionRecord captures a completed drill session.
type SessionRecord struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time
	SourcePath string
	Mode       string
	Total      int
	Correct    int
	Accuracy   float64
}
