package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_FIFO(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockProvider(
		MockResponse{Content: "first"},
		MockResponse{Err: boom},
	)

	resp, err := m.Generate(context.Background(), Request{System: "s"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)

	_, err = m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)

	_, err = m.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable))

	m.Fallback = "fallback"
	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Content)

	assert.Equal(t, 4, m.CallCount())
	assert.Equal(t, "s", m.Calls[0].System)
}

func TestLoggingProvider_LogsWithoutPromptText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := NewMockProvider(MockResponse{Content: "secret completion", Usage: Usage{InputTokens: 3, OutputTokens: 7}})
	p := WithLogging(inner, "mock", logger)

	resp, err := p.Generate(context.Background(), Request{
		System:   "secret system prompt",
		Messages: []Message{{Role: RoleUser, Content: "secret user prompt"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "secret completion", resp.Content)
	assert.Equal(t, "mock", p.ModelID())

	out := buf.String()
	assert.NotContains(t, out, "secret")

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &line))
	assert.Equal(t, "LLM request completed", line["msg"])
	assert.Equal(t, true, line["success"])
	assert.EqualValues(t, 7, line["output_tokens"])
}

func TestLoggingProvider_PropagatesError(t *testing.T) {
	var buf bytes.Buffer
	p := WithLogging(NewMockProvider(), "mock", slog.New(slog.NewJSONHandler(&buf, nil)))

	resp, err := p.Generate(context.Background(), Request{})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "LLM request failed")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default gateway needs url", mutate: func(c *Config) {}, wantErr: true},
		{name: "gateway with url", mutate: func(c *Config) { c.Gateway.URL = "http://llm.local/v1/chat/completions" }},
		{name: "mock", mutate: func(c *Config) { c.Provider = "mock" }},
		{name: "openai without key", mutate: func(c *Config) { c.Provider = "openai" }, wantErr: true},
		{name: "anthropic with key", mutate: func(c *Config) { c.Provider = "anthropic"; c.Anthropic.APIKey = "k" }},
		{name: "gemini without key", mutate: func(c *Config) { c.Provider = "gemini" }, wantErr: true},
		{name: "unknown", mutate: func(c *Config) { c.Provider = "llama" }, wantErr: true},
		{name: "zero max tokens", mutate: func(c *Config) { c.Provider = "mock"; c.MaxTokens = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	cfg.Provider = "gateway"
	_, err = NewProvider(context.Background(), cfg, slog.Default())
	assert.Error(t, err)

	cfg.Provider = "nope"
	_, err = NewProvider(context.Background(), cfg, slog.Default())
	assert.Error(t, err)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-2.5-pro", geminiModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
}
