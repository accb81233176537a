package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/verte-zerg/quizdrill/internal/model"
)

const (
	defaultJudgeTimeout   = 20 * time.Second
	defaultJudgeMaxTokens = 10
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

const judgeInstruction = "You are a quiz judge. Compare the user's answer to the correct answer. " +
	"Reply with ONLY 'Yes' if correct (even if phrased differently or in another language), or 'No' if incorrect."

// Message is one chat turn sent to the judge service.
type Message struct {
	Role    string
	Content string
}

// ChatRequest is a single chat completion call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatClient sends a chat completion request and returns the reply text.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Example is a worked judgment shown to the judge before the live question.
type Example struct {
	Question string
	Answer   string
	Response string
	Correct  bool
}

// DefaultExamples anchor the judge's reply format.
var DefaultExamples = []Example{
	{
		Question: "What is the capital of South Korea?",
		Answer:   "Seoul",
		Response: "서울",
		Correct:  true,
	},
	{
		Question: "Cloud computing infrastructure that mobile devices use to share information and resources with partners",
		Answer:   "Mobile cloud computing",
		Response: "TCP/IP",
		Correct:  false,
	},
}

// JudgeConfig tunes a SemanticJudge. Zero values pick defaults.
type JudgeConfig struct {
	Model          string
	Timeout        time.Duration
	Retries        int
	MaxTokens      int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Examples       []Example
}

// SemanticJudge asks a language model whether an answer is correct.
type SemanticJudge struct {
	client ChatClient
	cfg    JudgeConfig
}

// NewSemanticJudge builds a judge around an injected chat client.
func NewSemanticJudge(client ChatClient, cfg JudgeConfig) (*SemanticJudge, error) {
	if client == nil {
		return nil, fmt.Errorf("chat client is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultJudgeTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultJudgeMaxTokens
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Examples == nil {
		cfg.Examples = DefaultExamples
	}
	return &SemanticJudge{client: client, cfg: cfg}, nil
}

// Verify implements Verifier. Transport failures are retried with backoff;
// an unrecognized reply fails immediately.
func (j *SemanticJudge) Verify(ctx context.Context, question, canonicalAnswer, userAnswer string) (model.VerificationResult, error) {
	req := j.buildRequest(question, canonicalAnswer, userAnswer)

	attempt := func() (bool, error) {
		callCtx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
		reply, err := j.client.Complete(callCtx, req)
		if err != nil {
			if ctx.Err() != nil {
				return false, backoff.Permanent(err)
			}
			return false, err
		}
		correct, err := parseVerdict(reply)
		if err != nil {
			return false, backoff.Permanent(err)
		}
		return correct, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = j.cfg.InitialBackoff
	policy.MaxInterval = j.cfg.MaxBackoff

	correct, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(j.cfg.Retries+1)),
	)
	if err != nil {
		return model.VerificationResult{}, classify(err)
	}
	return model.VerificationResult{Correct: correct, CanonicalAnswer: canonicalAnswer}, nil
}

func (j *SemanticJudge) buildRequest(question, canonicalAnswer, userAnswer string) ChatRequest {
	messages := make([]Message, 0, 2+2*len(j.cfg.Examples))
	messages = append(messages, Message{Role: "system", Content: judgeInstruction})
	for _, ex := range j.cfg.Examples {
		verdict := "No"
		if ex.Correct {
			verdict = "Yes"
		}
		messages = append(messages,
			Message{Role: "user", Content: judgePrompt(ex.Question, ex.Answer, ex.Response)},
			Message{Role: "assistant", Content: verdict},
		)
	}
	messages = append(messages, Message{Role: "user", Content: judgePrompt(question, canonicalAnswer, userAnswer)})
	return ChatRequest{
		Model:       j.cfg.Model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   j.cfg.MaxTokens,
	}
}

func judgePrompt(question, answer, response string) string {
	return fmt.Sprintf("Question: %s\nCorrect Answer: %s\nUser's Answer: %s", question, answer, response)
}

func parseVerdict(reply string) (bool, error) {
	verdict := strings.TrimSpace(reply)
	switch {
	case strings.EqualFold(verdict, "yes"):
		return true, nil
	case strings.EqualFold(verdict, "no"):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnexpectedVerdict, verdict)
	}
}

func classify(err error) *VerificationError {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	switch {
	case errors.Is(err, ErrUnexpectedVerdict):
		return &VerificationError{Reason: ReasonProtocol, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &VerificationError{Reason: ReasonTimeout, Err: err}
	default:
		return &VerificationError{Reason: ReasonTransport, Err: err}
	}
}
