package handlers

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogsRouter(t *testing.T) (*gin.Engine, string) {
	dir := t.TempDir()
	handler := NewLogsHandler(dir)
	t.Cleanup(func() { _ = handler.Close() })

	router := gin.New()
	router.POST("/api/v1/logs", handler.ReceiveFrontendLogs)
	return router, filepath.Join(dir, "frontend.log")
}

func postLogs(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLogsHandler_WritesEntries(t *testing.T) {
	router, path := newLogsRouter(t)

	w := postLogs(router, `{"logs":[
		{"timestamp":"2026-01-02T03:04:05Z","level":"error","message":"video failed","context":{"src":"https://videos.example.com/a.mp4","msg":"ignored"}},
		{"level":"warn","message":"slow"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"received":2}`, w.Body.String())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)

	assert.Equal(t, "video failed", lines[0]["msg"], "context cannot overwrite reserved keys")
	assert.Equal(t, "https://videos.example.com/a.mp4", lines[0]["src"])
	assert.Equal(t, "fitforge-pages", lines[0]["service"])
	assert.Equal(t, "warn", lines[1]["level"])
}

func TestLogsHandler_RejectsBadBatches(t *testing.T) {
	router, _ := newLogsRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `nope`},
		{name: "missing logs", body: `{}`},
		{name: "empty logs", body: `{"logs":[]}`},
		{name: "unknown level", body: `{"logs":[{"level":"fatal","message":"x"}]}`},
		{name: "missing message", body: `{"logs":[{"level":"info"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postLogs(router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
