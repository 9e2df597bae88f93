package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ugandalearn/learn-service/internal/events"
	"github.com/ugandalearn/learn-service/internal/llm"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/prompts"
	"github.com/ugandalearn/learn-service/internal/validator"
)

// ContentConfig tunes completion requests
type ContentConfig struct {
	MaxTokens   int
	Temperature float64
}

type contentService struct {
	provider  llm.Provider
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ContentConfig
}

func NewContentService(provider llm.Provider, publisher events.Publisher, logger *slog.Logger, validator *validator.Validator, config ContentConfig) ContentService {
	return &contentService{
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

func (s *contentService) RenderPrompt(req *validator.ContentGenerateRequest) (prompts.Prompt, error) {
	if err := s.validateRequest(req); err != nil {
		return prompts.Prompt{}, err
	}
	return prompts.Render(req.Type, paramsFor(req))
}

func (s *contentService) GenerateContent(ctx context.Context, userID string, req *validator.ContentGenerateRequest) (*models.GeneratedContent, error) {
	prompt, err := s.RenderPrompt(req)
	if err != nil {
		return nil, err
	}
	params := paramsFor(req).WithDefaults()

	s.logger.InfoContext(ctx, "Generating content",
		"user_id", userID,
		"type", req.Type,
		"subject", params.Subject,
		"grade_level", params.GradeLevel,
		"difficulty", params.Difficulty,
		"language", params.Language)

	start := time.Now()
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      prompt.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt.User}},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Content generation failed", "user_id", userID, "type", req.Type, "error", err)
		return nil, NewGenerationError(err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		s.logger.ErrorContext(ctx, "Content generation returned empty text", "user_id", userID, "type", req.Type)
		return nil, NewGenerationError(&llm.ErrInvalidResponse{Err: errors.New("empty content")})
	}

	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.TopicContentGenerated, userID, map[string]interface{}{
		"type":          req.Type,
		"subject":       params.Subject,
		"grade_level":   params.GradeLevel,
		"topic":         params.Topic,
		"difficulty":    params.Difficulty,
		"language":      params.Language,
		"model":         resp.Model,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"latency_ms":    time.Since(start).Milliseconds(),
	}))

	return &models.GeneratedContent{
		Content:    resp.Content,
		Type:       req.Type,
		Subject:    params.Subject,
		GradeLevel: params.GradeLevel,
		Topic:      params.Topic,
		Difficulty: params.Difficulty,
		Language:   params.Language,
	}, nil
}

// validateRequest runs every check that must pass before the provider is
// contacted
func (s *contentService) validateRequest(req *validator.ContentGenerateRequest) error {
	req.Type = models.ContentType(strings.TrimSpace(string(req.Type)))
	req.Subject = strings.TrimSpace(req.Subject)
	req.GradeLevel = strings.TrimSpace(req.GradeLevel)
	req.Topic = strings.TrimSpace(req.Topic)
	req.Difficulty = strings.TrimSpace(req.Difficulty)
	req.Language = strings.TrimSpace(req.Language)

	if req.Type == "" || req.Subject == "" || req.GradeLevel == "" || req.Topic == "" {
		return NewServiceError(ErrValidationFailed, MsgContentRequired)
	}
	if !req.Type.IsValid() {
		return NewServiceError(ErrInvalidContentType, MsgInvalidContentType)
	}
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return NewValidationError(MsgValidationFailed, verrs.Fields())
	}
	return nil
}

func paramsFor(req *validator.ContentGenerateRequest) prompts.Params {
	return prompts.Params{
		Subject:    req.Subject,
		GradeLevel: req.GradeLevel,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Language:   req.Language,
	}
}
