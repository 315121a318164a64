package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/flarexio/devguide/analysis"
)

var (
	ErrMissingAPIKey = errors.New("missing_api_key")
	ErrEmptyAnswer   = errors.New("no_result")
)

const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 2000
)

const systemPrompt = "You are a strict code fixer. Return ONLY corrected code, no explanations."

// Request describes the code to repair and the errors the analyzer found.
type Request struct {
	Code     string
	Language string
	Errors   []analysis.Issue
}

// Provider is an external model able to rewrite code.
type Provider interface {
	Name() string
	Model() string
	Configured() bool
	Fix(ctx context.Context, req Request) (string, error)
}

type Status struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model"`
}

func StatusOf(p Provider) Status {
	return Status{
		Configured: p.Configured(),
		Model:      p.Model(),
	}
}

// Instruction is the user facing part of the prompt, without the code.
func Instruction(req Request) string {
	lines := make([]string, len(req.Errors))
	for i, e := range req.Errors {
		lines[i] = fmt.Sprintf("Line %d: %s", e.Line, e.Message)
	}

	return fmt.Sprintf("Language: %s. Fix these errors so code parses and runs:\n%s\n\nCode:\n",
		req.Language, strings.Join(lines, "\n"))
}

// StripCodeFence removes a surrounding markdown code block, if any.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}

	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
	}

	return strings.Join(lines, "\n")
}

// NewLimiter returns a token bucket allowing rps calls per second, or nil
// for no limit.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}

	if burst <= 0 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(rps), burst)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
