package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestLoggerMiddleware_LogsStatusAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(ContextLogger(logger), LoggerMiddleware(logger))
	router.GET("/api/subjects", func(c *gin.Context) {
		FromContext(c.Request.Context(), logger).Info("inside handler")
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/subjects?grade_level=P4", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var handlerLine, accessLine map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &handlerLine))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &accessLine))

	assert.Equal(t, "req-123", handlerLine["request_id"])
	assert.Equal(t, "WARN", accessLine["level"])
	assert.Equal(t, "/api/subjects?grade_level=P4", accessLine["path"])
	assert.EqualValues(t, http.StatusTeapot, accessLine["status"])
}

func TestFromContext_Fallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := newBufferLogger(&buf)
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
}
