package trigger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("trigger did not finish")
	}
}

func TestCallAsync_PostsPayload(t *testing.T) {
	var (
		gotEvent string
		gotBody  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-FitForge-Event")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	done := CallAsync(srv.URL, "purchase.completed", map[string]string{"course_id": "c1"}, httpclient.Wrap(srv.Client()))
	waitDone(t, done)

	assert.Equal(t, "purchase.completed", gotEvent)
	require.NotNil(t, gotBody)
	assert.Equal(t, "c1", gotBody["course_id"])
}

func TestCallAsync_EmptyURLIsNoop(t *testing.T) {
	done := CallAsync("", "purchase.completed", nil, httpclient.NewStandardClient(0))
	waitDone(t, done)
}

func TestCallAsync_ServerErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	waitDone(t, CallAsync(srv.URL, "purchase.completed", struct{}{}, httpclient.Wrap(srv.Client())))
}
