package fixer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/llm"
)

type fakeProvider struct {
	name       string
	configured bool
	text       string
	err        error
	delay      time.Duration
	block      bool
	hang       chan struct{}
	calls      atomic.Int32
}

func (p *fakeProvider) Name() string     { return p.name }
func (p *fakeProvider) Model() string    { return "fake" }
func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) Fix(ctx context.Context, req llm.Request) (string, error) {
	p.calls.Add(1)

	if p.hang != nil {
		<-p.hang
		return p.text, p.err
	}

	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return p.text, p.err
}

// An undefined identifier is an error no heuristic can repair.
const brokenJS = "let x = undefined_variable;"

type fixerTestSuite struct {
	suite.Suite
}

func (suite *fixerTestSuite) TestNothingToFix() {
	f := New(nil)

	result := f.Fix(context.Background(), "let x = 1;", analysis.JavaScript)

	suite.Equal("let x = 1;", result.FixedCode)
	suite.Equal([]string{ChangeNoChanges}, result.Changes)
	suite.Equal(SourceHeuristic, result.Source)
	suite.Empty(result.Attempts)
}

func (suite *fixerTestSuite) TestHeuristicFixesEverything() {
	f := New(nil)

	result := f.Fix(context.Background(), "def f()\nreturn 1;", analysis.Python)

	suite.Equal("def f():\n    return 1", result.FixedCode)
	suite.Equal(SourceHeuristic, result.Source)
	suite.Equal([]Attempt{{Source: SourceHeuristic, Applied: true}}, result.Attempts)
}

func (suite *fixerTestSuite) TestProvidersNotConfigured() {
	f := New([]llm.Provider{
		&fakeProvider{name: llm.OpenRouter},
		&fakeProvider{name: llm.Google},
	})

	result := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Equal(brokenJS, result.FixedCode)
	suite.Equal([]string{ChangeNoChanges}, result.Changes)
	suite.Equal(SourceHeuristic, result.Source)
	suite.Equal([]Attempt{
		{Source: llm.OpenRouter, Error: "missing_api_key"},
		{Source: llm.Google, Error: "missing_api_key"},
		{Source: SourceHeuristic, Applied: false},
	}, result.Attempts)
}

func (suite *fixerTestSuite) TestFirstAnswerWins() {
	fast := &fakeProvider{name: "fast", configured: true, text: "let x = 1;", delay: 10 * time.Millisecond}
	slow := &fakeProvider{name: "slow", configured: true, block: true}

	f := New([]llm.Provider{slow, fast})

	result := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Equal("let x = 1;", result.FixedCode)
	suite.Equal("fast", result.Source)
	suite.Equal([]string{ChangeAIFix}, result.Changes)
	suite.Equal([]Attempt{{Source: "fast", Applied: true}}, result.Attempts)
}

func (suite *fixerTestSuite) TestFailedProviderIsRecorded() {
	bad := &fakeProvider{name: "bad", configured: true, err: errors.New("boom")}
	good := &fakeProvider{name: "good", configured: true, text: "let x = 2;", delay: 50 * time.Millisecond}

	f := New([]llm.Provider{bad, good})

	result := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Equal("good", result.Source)
	suite.Equal([]Attempt{
		{Source: "bad", Error: "boom"},
		{Source: "good", Applied: true},
	}, result.Attempts)
}

func (suite *fixerTestSuite) TestUnchangedAnswerFallsBack() {
	echo := &fakeProvider{name: "echo", configured: true, text: brokenJS}

	f := New([]llm.Provider{echo})

	result := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Equal(SourceHeuristic, result.Source)
	suite.Equal([]Attempt{
		{Source: "echo", Error: "no_result"},
		{Source: SourceHeuristic, Applied: false},
	}, result.Attempts)
}

func (suite *fixerTestSuite) TestTimeout() {
	stuck := &fakeProvider{name: "stuck", configured: true, block: true}

	f := New([]llm.Provider{stuck}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	result := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Less(time.Since(start), 5*time.Second)
	suite.Equal(SourceHeuristic, result.Source)
	suite.Len(result.Attempts, 2)
	suite.Equal(context.DeadlineExceeded.Error(), result.Attempts[0].Error)
}

func (suite *fixerTestSuite) TestTimeoutWithProviderIgnoringContext() {
	hang := make(chan struct{})
	defer close(hang)

	deaf := &fakeProvider{name: "deaf", configured: true, text: "let x = 1;", hang: hang}

	f := New([]llm.Provider{deaf}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	result := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Less(time.Since(start), 5*time.Second)
	suite.Equal(brokenJS, result.FixedCode)
	suite.Equal(SourceHeuristic, result.Source)
	suite.Equal([]Attempt{
		{Source: "deaf", Error: context.DeadlineExceeded.Error()},
		{Source: SourceHeuristic, Applied: false},
	}, result.Attempts)
}

func (suite *fixerTestSuite) TestCachedAnswer() {
	p := &fakeProvider{name: "cached", configured: true, text: "let x = 3;"}

	f := New([]llm.Provider{p}, WithCache(8))

	first := f.Fix(context.Background(), brokenJS, analysis.JavaScript)
	second := f.Fix(context.Background(), brokenJS, analysis.JavaScript)

	suite.Equal(first, second)
	suite.Equal(int32(1), p.calls.Load())
}

func TestFixerTestSuite(t *testing.T) {
	suite.Run(t, new(fixerTestSuite))
}
