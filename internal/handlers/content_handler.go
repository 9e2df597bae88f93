package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
	"github.com/ugandalearn/learn-service/internal/validator"
)

type ContentHandler struct {
	BaseHandler
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		contentService: contentService,
	}
}

// GenerateContent produces lesson, quiz, explanation or practice material
// @Summary Generate learning content
// @Tags ai
// @Accept json
// @Produce json
// @Param request body validator.ContentGenerateRequest true "Content request"
// @Success 200 {object} models.GeneratedContent
// @Failure 400 {object} ErrorResponse "Missing fields or invalid type"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate content. Please try again."
// @Router /ai/generate-content [post]
func (h *ContentHandler) GenerateContent(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req validator.ContentGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Generating content", "type", req.Type, "subject", req.Subject)

	content, err := h.contentService.GenerateContent(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}
