package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogsHandler stores error reports sent by the pages' script (broken video
// links, script errors) next to the server logs
type LogsHandler struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
}

type LogEntry struct {
	Timestamp string         `json:"timestamp" binding:"max=64"`
	Level     string         `json:"level" binding:"required,oneof=debug info warn error"`
	Message   string         `json:"message" binding:"required,max=1000"`
	Context   map[string]any `json:"context,omitempty"`
}

type LogBatchRequest struct {
	Logs []LogEntry `json:"logs" binding:"required,max=100,dive"`
}

func NewLogsHandler(logDir string) *LogsHandler {
	return &LogsHandler{
		writer: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "frontend.log"),
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

func (h *LogsHandler) ReceiveFrontendLogs(c *gin.Context) {
	var req LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Logs) == 0 {
		respondError(c, http.StatusBadRequest, "No logs provided", nil)
		return
	}

	if err := h.write(c.ClientIP(), req.Logs); err != nil {
		logger.Error("Failed to write frontend logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to write logs", err)
		return
	}

	logger.Debug("Received frontend logs", zap.Int("count", len(req.Logs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func (h *LogsHandler) write(clientIP string, logs []LogEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	encoder := json.NewEncoder(h.writer)
	for _, entry := range logs {
		line := map[string]any{
			"ts":        entry.Timestamp,
			"level":     entry.Level,
			"msg":       entry.Message,
			"service":   "fitforge-pages",
			"client_ip": clientIP,
		}
		for k, v := range entry.Context {
			if _, reserved := line[k]; !reserved {
				line[k] = v
			}
		}

		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	return nil
}

// Close flushes and closes the log file
func (h *LogsHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writer.Close()
}
