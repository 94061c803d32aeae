package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

var testMetrics = monitoring.NewMetrics()

func newTestClient() *Client {
	cfg := config.DispatchConfig{
		ProbeTimeout:    200 * time.Millisecond,
		ValidateTimeout: 200 * time.Millisecond,
		BulkTimeout:     200 * time.Millisecond,
		PollTimeout:     200 * time.Millisecond,
		ResultsTimeout:  200 * time.Millisecond,
	}
	return NewClient(cfg, testMetrics, zap.NewNop())
}

func TestHealthOK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rtt, err := newTestClient().Health(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))
}

func TestHealthNon2xxIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient().Health(context.Background(), ts.URL)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHealthTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	_, err := newTestClient().Health(context.Background(), ts.URL)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHealthConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // 端口立刻失效

	_, err := newTestClient().Health(context.Background(), ts.URL)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestValidateSendsSkipSMTPOption(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/validate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(ValidateResponse{
			Email:  "user@example.com",
			Status: "valid",
			Syntax: true,
			SMTP:   &SMTPResult{OK: true, Code: json.Number("250"), Response: "250 2.1.5 OK"},
		})
	}))
	defer ts.Close()

	resp, rtt, err := newTestClient().Validate(context.Background(), ts.URL, "user@example.com", true)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", got["email"])
	options, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, options["skip_smtp"])

	assert.Equal(t, "valid", resp.Status)
	require.NotNil(t, resp.SMTP)
	assert.Equal(t, "250", resp.SMTP.Code.String())
	assert.Greater(t, rtt, time.Duration(0))
}

func TestValidateNumericSMTPCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 有的引擎版本把code编码成数字
		w.Write([]byte(`{"email":"a@b.c","status":"valid","smtp":{"ok":true,"code":250,"response":"OK"}}`))
	}))
	defer ts.Close()

	resp, _, err := newTestClient().Validate(context.Background(), ts.URL, "a@b.c", false)
	require.NoError(t, err)
	assert.Equal(t, "250", resp.SMTP.Code.String())
}

func TestSubmitBulkCSVMultipartField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/validate/bulk/csv", r.URL.Path)
		file, header, err := r.FormFile("csvFile")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "list.csv", header.Filename)

		json.NewEncoder(w).Encode(BulkSubmitResponse{JobID: "remote-42", Status: "queued"})
	}))
	defer ts.Close()

	resp, err := newTestClient().SubmitBulkCSV(context.Background(), ts.URL, "list.csv",
		strings.NewReader("email\na@b.c\n"))
	require.NoError(t, err)
	assert.Equal(t, "remote-42", resp.JobID)
}

func TestJobStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs/remote-42", r.URL.Path)
		json.NewEncoder(w).Encode(JobStatusResponse{Status: "processing", Completed: 40, Total: 100})
	}))
	defer ts.Close()

	resp, err := newTestClient().JobStatus(context.Background(), ts.URL, "remote-42")
	require.NoError(t, err)
	assert.Equal(t, "processing", resp.Status)
	assert.Equal(t, 40, resp.Completed)
	assert.Equal(t, 100, resp.Total)
}

func TestJobResultsRawPassThrough(t *testing.T) {
	body := `{"results":[{"email":"a@b.c","result":"deliverable","confidence":93}]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs/remote-42/results", r.URL.Path)
		w.Write([]byte(body))
	}))
	defer ts.Close()

	resp, err := newTestClient().JobResults(context.Background(), ts.URL, "remote-42")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"email":"a@b.c","result":"deliverable","confidence":93}]`, string(resp.Results))
}

func TestJobResultsCSV(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs/remote-42/results/csv", r.URL.Path)
		w.Write([]byte("email,status\na@b.c,valid\n"))
	}))
	defer ts.Close()

	data, err := newTestClient().JobResultsCSV(context.Background(), ts.URL, "remote-42")
	require.NoError(t, err)
	assert.Equal(t, "email,status\na@b.c,valid\n", string(data))
}

func TestJobStatusMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	_, err := newTestClient().JobStatus(context.Background(), ts.URL, "remote-42")
	assert.ErrorIs(t, err, ErrUnavailable)
}
