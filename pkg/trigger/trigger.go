package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"go.uber.org/zap"
)

// callTimeout bounds a single trigger delivery; the request that caused it
// has usually finished by the time the goroutine runs.
const callTimeout = 10 * time.Second

// CallAsync POSTs payload as JSON to triggerURL in the background.
// Failures are logged and never reach the caller. An empty URL is a no-op.
// The returned channel is closed when delivery has finished (or was skipped).
func CallAsync(triggerURL, event string, payload any, httpClient httpclient.Client) <-chan struct{} {
	done := make(chan struct{})
	if triggerURL == "" {
		close(done)
		return done
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode trigger payload", zap.Error(err), zap.String("event", event))
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, triggerURL, bytes.NewReader(body))
		if err != nil {
			logger.Error("Failed to build trigger request", zap.Error(err), zap.String("url", triggerURL))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-FitForge-Event", event)

		logger.Info("Calling trigger URL",
			zap.String("url", triggerURL),
			zap.String("event", event))

		resp, err := httpClient.Do(req)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", triggerURL),
				zap.String("event", event))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("url", triggerURL),
				zap.String("event", event),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", triggerURL),
				zap.String("event", event),
				zap.Int("status_code", resp.StatusCode))
		}
	}()

	return done
}
