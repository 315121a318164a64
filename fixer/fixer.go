package fixer

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/llm"
)

const (
	SourceHeuristic = "heuristic"

	DefaultTimeout = 20 * time.Second
)

type Attempt struct {
	Source  string `json:"source"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

type Result struct {
	Language  string    `json:"language"`
	FixedCode string    `json:"fixedCode"`
	Changes   []string  `json:"changes"`
	Source    string    `json:"source"`
	Attempts  []Attempt `json:"attempts"`
}

type Fixer struct {
	providers []llm.Provider
	timeout   time.Duration
	cache     *lru.Cache[string, *Result]
}

type Option func(*Fixer)

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fixer) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithCache keeps the last size AI fixes, so the same broken snippet does
// not hit the providers twice.
func WithCache(size int) Option {
	return func(f *Fixer) {
		if size <= 0 {
			return
		}

		cache, err := lru.New[string, *Result](size)
		if err != nil {
			return
		}

		f.cache = cache
	}
}

func New(providers []llm.Provider, opts ...Option) *Fixer {
	f := &Fixer{
		providers: providers,
		timeout:   DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fix repairs code. Heuristic rewrites are tried first; when they leave
// errors behind, the configured providers are queried concurrently and the
// first usable answer wins. The heuristic result is the fallback.
func (f *Fixer) Fix(ctx context.Context, code string, language string) *Result {
	attempts := make([]Attempt, 0)

	errs := analysis.Analyze(code, language).Errors()
	if len(errs) == 0 {
		return &Result{
			Language:  language,
			FixedCode: code,
			Changes:   []string{ChangeNoChanges},
			Source:    SourceHeuristic,
			Attempts:  attempts,
		}
	}

	fixed, changes := Heuristic(code, language)
	if len(changes) > 0 && len(analysis.Analyze(fixed, language).Errors()) == 0 {
		attempts = append(attempts, Attempt{Source: SourceHeuristic, Applied: true})
		return &Result{
			Language:  language,
			FixedCode: fixed,
			Changes:   changes,
			Source:    SourceHeuristic,
			Attempts:  attempts,
		}
	}

	key := analysis.Fingerprint(language, code)
	if f.cache != nil {
		if result, ok := f.cache.Get(key); ok {
			return result
		}
	}

	req := llm.Request{
		Code:     code,
		Language: language,
		Errors:   errs,
	}

	result, attempts := f.race(ctx, req, attempts)
	if result != nil {
		if f.cache != nil {
			f.cache.Add(key, result)
		}
		return result
	}

	attempts = append(attempts, Attempt{Source: SourceHeuristic, Applied: len(changes) > 0})

	if len(changes) == 0 {
		changes = []string{ChangeNoChanges}
	}

	return &Result{
		Language:  language,
		FixedCode: fixed,
		Changes:   changes,
		Source:    SourceHeuristic,
		Attempts:  attempts,
	}
}

type answer struct {
	source string
	text   string
	err    error
}

func (f *Fixer) race(ctx context.Context, req llm.Request, attempts []Attempt) (*Result, []Attempt) {
	active := make([]llm.Provider, 0, len(f.providers))
	for _, p := range f.providers {
		if !p.Configured() {
			attempts = append(attempts, Attempt{
				Source: p.Name(),
				Error:  llm.ErrMissingAPIKey.Error(),
			})
			continue
		}

		active = append(active, p)
	}

	if len(active) == 0 {
		return nil, attempts
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	// buffered, so losers can finish after the winner returns
	answers := make(chan answer, len(active))
	for _, p := range active {
		go func(p llm.Provider) {
			text, err := p.Fix(ctx, req)
			answers <- answer{p.Name(), text, err}
		}(p)
	}

	pending := make(map[string]bool, len(active))
	for _, p := range active {
		pending[p.Name()] = true
	}

	for range active {
		var a answer
		select {
		case a = <-answers:
			delete(pending, a.source)

		case <-ctx.Done():
			for _, p := range active {
				if pending[p.Name()] {
					attempts = append(attempts, Attempt{Source: p.Name(), Error: ctx.Err().Error()})
				}
			}
			return nil, attempts
		}

		if a.err != nil {
			attempts = append(attempts, Attempt{Source: a.source, Error: a.err.Error()})
			continue
		}

		if a.text == "" || a.text == req.Code {
			attempts = append(attempts, Attempt{Source: a.source, Error: llm.ErrEmptyAnswer.Error()})
			continue
		}

		attempts = append(attempts, Attempt{Source: a.source, Applied: true})

		return &Result{
			Language:  req.Language,
			FixedCode: a.text,
			Changes:   []string{ChangeAIFix},
			Source:    a.source,
			Attempts:  attempts,
		}, attempts
	}

	return nil, attempts
}
