// Package verify decides whether a submitted answer matches the stored one.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/quizdrill/internal/model"
)

// Verifier checks one answer. A wrong answer is a result, not an error;
// errors mean the check itself could not be completed.
type Verifier interface {
	Verify(ctx context.Context, question, canonicalAnswer, userAnswer string) (model.VerificationResult, error)
}

// Failure reasons carried by VerificationError.
const (
	ReasonTransport = "transport"
	ReasonTimeout   = "timeout"
	ReasonProtocol  = "protocol"
)

// ErrUnexpectedVerdict indicates a judge reply other than yes or no.
var ErrUnexpectedVerdict = errors.New("verify: unexpected judge verdict")

// VerificationError reports that an answer could not be judged.
type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed (%s): %v", e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// ExactMatch compares the trimmed user answer byte for byte, case-sensitive.
type ExactMatch struct{}

// Verify implements Verifier. It never fails.
func (ExactMatch) Verify(_ context.Context, _, canonicalAnswer, userAnswer string) (model.VerificationResult, error) {
	return model.VerificationResult{
		Correct:         strings.TrimSpace(userAnswer) == canonicalAnswer,
		CanonicalAnswer: canonicalAnswer,
	}, nil
}
