package job

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

func newTestWebhookSender() *WebhookSender {
	return NewWebhookSender(config.DispatchConfig{WebhookTimeout: time.Second}, zap.NewNop())
}

func TestWebhookSendEmptyURLIsNoop(t *testing.T) {
	w := newTestWebhookSender()
	assert.NoError(t, w.Send(context.Background(), "", WebhookPayload{JobID: 1}))
}

func TestWebhookSendPostsPayload(t *testing.T) {
	var got WebhookPayload
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		rw.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	w := newTestWebhookSender()
	err := w.Send(context.Background(), ts.URL, WebhookPayload{
		Event:       "job.completed",
		JobID:       42,
		TotalEmails: 100,
		Status:      string(StatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.JobID)
	assert.Equal(t, "job.completed", got.Event)
}

func TestWebhookSendNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	w := newTestWebhookSender()
	err := w.Send(context.Background(), ts.URL, WebhookPayload{JobID: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
