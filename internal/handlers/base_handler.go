package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// requestLogger prefers the request-scoped logger so lines carry request_id
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

// LogRequest logs at info with the caller's identity when authenticated
func (h *BaseHandler) LogRequest(c *gin.Context, message string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	if account, err := GetAccountFromContext(c); err == nil {
		args = append(args, "user_id", account.ID, "email", account.Email)
	}
	h.requestLogger(c).Info(message, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, args ...any) {
	args = append(args, "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	h.requestLogger(c).Error(message, args...)
}

// userID returns the authenticated caller or writes a 401 and reports false
func (h *BaseHandler) userID(c *gin.Context) (string, bool) {
	id, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: services.MsgUnauthorized})
		return "", false
	}
	return id, true
}

func (h *BaseHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Details: err.Error(),
	})
}

// handleServiceError maps service errors onto status codes. Messages come
// from ServiceError when present; unexpected errors never leak their text.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	status, message := statusForError(err)

	resp := ErrorResponse{Error: message}
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Message != "" && status != http.StatusInternalServerError {
			resp.Error = svcErr.Message
		}
		resp.Details = svcErr.Details
	}

	if status >= http.StatusInternalServerError {
		h.LogError(c, err, "Request failed", "status", status)
		resp.Details = nil
	}
	c.JSON(status, resp)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, services.MsgUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest, services.MsgValidationFailed
	case errors.Is(err, services.ErrGenerationFailed):
		return http.StatusInternalServerError, services.MsgGenerationFailed
	default:
		return http.StatusInternalServerError, services.MsgInternalServerError
	}
}
