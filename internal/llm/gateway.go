package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GatewayProvider talks to a plain chat-completions endpoint. The request
// body is {"messages": [...]} and the text is read from
// choices[0].message.content.
type GatewayProvider struct {
	client *http.Client
	url    string
	apiKey string
	model  string
}

type gatewayRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type gatewayResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func NewGatewayProvider(cfg GatewayConfig) (*GatewayProvider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("gateway URL is required")
	}
	return &GatewayProvider{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}, nil
}

func (p *GatewayProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(gatewayRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 8<<20))
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("read gateway response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("gateway returned %d: %s", httpResp.StatusCode, truncate(string(raw), 200))
		if httpResp.StatusCode == http.StatusTooManyRequests {
			return nil, &ErrRateLimit{Err: statusErr}
		}
		return nil, &ErrProviderUnavailable{Err: statusErr}
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("decode gateway response: %w", err)}
	}

	if len(parsed.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in gateway response")}
	}

	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty completion content")}
	}

	model := parsed.Model
	if model == "" {
		model = p.ModelID()
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
		Model:      model,
		StopReason: mapFinishReason(parsed.Choices[0].FinishReason),
	}, nil
}

func (p *GatewayProvider) ModelID() string {
	if p.model != "" {
		return p.model
	}
	return "gateway"
}

func mapFinishReason(reason string) string {
	if reason == "length" {
		return "max_tokens"
	}
	return "end"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
