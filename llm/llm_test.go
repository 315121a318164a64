package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "x = 1", StripCodeFence("  x = 1\n"))
	assert.Equal(t, "x = 1\ny = 2", StripCodeFence("```python\nx = 1\ny = 2\n```"))
	assert.Equal(t, "x = 1", StripCodeFence("```js\nx = 1"))
	assert.Equal(t, "```", StripCodeFence("```"))
}

func TestInstruction(t *testing.T) {
	req := Request{
		Code:     "x",
		Language: "python",
		Errors: []analysis.Issue{
			{Line: 1, Message: "SyntaxError: expected ':'"},
			{Line: 3, Message: "Potential syntax error"},
		},
	}

	want := "Language: python. Fix these errors so code parses and runs:\n" +
		"Line 1: SyntaxError: expected ':'\nLine 3: Potential syntax error\n\nCode:\n"

	assert.Equal(t, want, Instruction(req))
}

func TestOpenRouterFix(t *testing.T) {
	var got chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "Dev Guide Analyzer", r.Header.Get("X-Title"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```js\\nlet x = 1;\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(conf.OpenRouterProvider{
		APIKey:  "secret",
		BaseURL: srv.URL,
		Title:   "Dev Guide Analyzer",
	})

	text, err := client.Fix(context.Background(), Request{Code: "let x = ;", Language: "javascript"})
	require.NoError(t, err)

	assert.Equal(t, "let x = 1;", text)
	assert.Equal(t, DefaultOpenRouterModel, got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "let x = ;")
}

func TestOpenRouterErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		client := NewOpenRouterClient(conf.OpenRouterProvider{})
		assert.False(t, client.Configured())

		_, err := client.Fix(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewOpenRouterClient(conf.OpenRouterProvider{APIKey: "k", BaseURL: srv.URL})

		_, err := client.Fix(context.Background(), Request{Code: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(conf.OpenRouterProvider{APIKey: "k", BaseURL: srv.URL})

		_, err := client.Fix(context.Background(), Request{Code: "x"})
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})
}

func TestGeminiNotConfigured(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), conf.GoogleProvider{})
	require.NoError(t, err)

	assert.Equal(t, Status{Configured: false, Model: DefaultGoogleModel}, StatusOf(client))

	_, err = client.Fix(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))

	l := NewLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}
