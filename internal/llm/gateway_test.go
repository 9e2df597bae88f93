package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGatewayProvider(t *testing.T, handler http.HandlerFunc) *GatewayProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGatewayProvider(GatewayConfig{URL: server.URL + "/v1/chat/completions", APIKey: "test-key"})
	require.NoError(t, err)
	return p
}

func TestGatewayProvider_SendsMessagesAndReadsFirstChoice(t *testing.T) {
	var got gatewayRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Lesson body"}, "finish_reason": "stop"},
				{"message": map[string]any{"role": "assistant", "content": "Second choice"}},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 30, "total_tokens": 42},
		})
	}

	p := newTestGatewayProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:   "You are a patient tutor.",
		Messages: []Message{{Role: RoleUser, Content: "Explain fractions."}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Lesson body", resp.Content)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: RoleSystem, Content: "You are a patient tutor."}, got.Messages[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "Explain fractions."}, got.Messages[1])
	assert.Empty(t, got.Model)
}

func TestGatewayProvider_NoChoices(t *testing.T) {
	p := newTestGatewayProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var invalid *ErrInvalidResponse
	require.True(t, errors.As(err, &invalid), "got %T", err)
}

func TestGatewayProvider_EmptyContent(t *testing.T) {
	p := newTestGatewayProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var invalid *ErrInvalidResponse
	require.True(t, errors.As(err, &invalid), "got %T", err)
}

func TestGatewayProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limit",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				assert.True(t, errors.As(err, &rl))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var unavailable *ErrProviderUnavailable
				assert.True(t, errors.As(err, &unavailable))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestGatewayProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			})
			_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGatewayProvider_ContextCanceled(t *testing.T) {
	p := newTestGatewayProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGatewayProvider_RequiresURL(t *testing.T) {
	_, err := NewGatewayProvider(GatewayConfig{})
	assert.Error(t, err)
}
