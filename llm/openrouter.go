package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/flarexio/devguide/conf"
)

const (
	OpenRouter = "openrouter"

	DefaultOpenRouterModel = "google/gemini-2.0-flash-exp:free"
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	DefaultTimeout         = 15 * time.Second
)

// OpenRouterClient calls the OpenAI compatible chat completions API of
// OpenRouter.
type OpenRouterClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
	referer string
	title   string
	limiter *rate.Limiter
}

func NewOpenRouterClient(cfg conf.OpenRouterProvider) *OpenRouterClient {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenRouterModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenRouterClient{
		http:    &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		referer: cfg.Referer,
		title:   cfg.Title,
		limiter: NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
}

func (c *OpenRouterClient) Name() string     { return OpenRouter }
func (c *OpenRouterClient) Model() string    { return c.model }
func (c *OpenRouterClient) Configured() bool { return c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) Fix(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	if err := wait(ctx, c.limiter); err != nil {
		return "", err
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Instruction(req) + req.Code},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}

	bs, err := json.Marshal(&body)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bs))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("openrouter: unexpected status %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}

	if len(out.Choices) == 0 {
		return "", ErrEmptyAnswer
	}

	text := StripCodeFence(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyAnswer
	}

	return text, nil
}
