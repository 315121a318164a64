package llm

import (
	"context"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/flarexio/devguide/conf"
)

const (
	Google = "google"

	DefaultGoogleModel = "gemini-1.5-flash"
)

// GeminiClient wraps the official genai client. The underlying client is
// only created when an API key is configured.
type GeminiClient struct {
	cli     *genai.Client
	model   string
	limiter *rate.Limiter
}

func NewGeminiClient(ctx context.Context, cfg conf.GoogleProvider) (*GeminiClient, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultGoogleModel
	}

	c := &GeminiClient{
		model:   model,
		limiter: NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}

	if cfg.APIKey == "" {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	c.cli = cli
	return c, nil
}

func (g *GeminiClient) Name() string     { return Google }
func (g *GeminiClient) Model() string    { return g.model }
func (g *GeminiClient) Configured() bool { return g.cli != nil }

func (g *GeminiClient) Fix(ctx context.Context, req Request) (string, error) {
	if !g.Configured() {
		return "", ErrMissingAPIKey
	}

	if err := wait(ctx, g.limiter); err != nil {
		return "", err
	}

	prompt := "Return ONLY corrected code (no explanations).\n" + Instruction(req)

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{Text: req.Code},
		},
	}}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](DefaultTemperature),
		TopK:            genai.Ptr[float32](1),
		TopP:            genai.Ptr[float32](0.8),
		MaxOutputTokens: DefaultMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyAnswer
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	text := StripCodeFence(sb.String())
	if text == "" {
		return "", ErrEmptyAnswer
	}

	return text, nil
}
