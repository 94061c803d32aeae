package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"github.com/google/wire"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewClient)

// Client 验证引擎线协议客户端。每一路外呼都有独立的有界超时。
type Client struct {
	httpClient *http.Client
	cfg        config.DispatchConfig
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewClient(cfg config.DispatchConfig, metrics *monitoring.Metrics, logger *zap.Logger) *Client {
	return &Client{
		// 超时由每次调用的context控制，客户端本身不设全局超时
		httpClient: &http.Client{},
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// Health GET {url}/health，返回往返耗时
func (c *Client) Health(ctx context.Context, baseURL string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.get(ctx, baseURL+"/health")
	rtt := time.Since(start)
	c.metrics.ObserveEngineRequest("health", err, rtt)
	if err != nil {
		return rtt, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rtt, fmt.Errorf("%w: health returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return rtt, nil
}

// Validate POST {url}/v1/validate 单邮箱同步校验
func (c *Client) Validate(ctx context.Context, baseURL, email string, skipSMTP bool) (*ValidateResponse, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ValidateTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"email":   email,
		"options": map[string]any{"skip_smtp": skipSMTP},
	})
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	rtt := time.Since(start)
	if err != nil {
		err = c.classify("validate", err)
		c.metrics.ObserveEngineRequest("validate", err, rtt)
		return nil, rtt, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("%w: validate returned status %d", ErrUnavailable, resp.StatusCode)
		c.metrics.ObserveEngineRequest("validate", err, rtt)
		return nil, rtt, err
	}

	var out ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = fmt.Errorf("%w: decoding validate response: %v", ErrUnavailable, err)
		c.metrics.ObserveEngineRequest("validate", err, rtt)
		return nil, rtt, err
	}
	c.metrics.ObserveEngineRequest("validate", nil, rtt)
	return &out, rtt, nil
}

// SubmitBulkCSV POST {url}/v1/validate/bulk/csv，multipart 文件字段为 csvFile
func (c *Client) SubmitBulkCSV(ctx context.Context, baseURL, filename string, file io.Reader) (*BulkSubmitResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.BulkTimeout)
	defer cancel()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("csvFile", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/validate/bulk/csv", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	rtt := time.Since(start)
	if err != nil {
		err = c.classify("bulk_submit", err)
		c.metrics.ObserveEngineRequest("bulk_submit", err, rtt)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("%w: bulk submit returned status %d", ErrUnavailable, resp.StatusCode)
		c.metrics.ObserveEngineRequest("bulk_submit", err, rtt)
		return nil, err
	}

	var out BulkSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = fmt.Errorf("%w: decoding bulk submit response: %v", ErrUnavailable, err)
		c.metrics.ObserveEngineRequest("bulk_submit", err, rtt)
		return nil, err
	}
	c.metrics.ObserveEngineRequest("bulk_submit", nil, rtt)
	return &out, nil
}

// JobStatus GET {url}/v1/jobs/{id}
func (c *Client) JobStatus(ctx context.Context, baseURL, engineJobID string) (*JobStatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()

	var out JobStatusResponse
	if err := c.getJSON(ctx, "poll", fmt.Sprintf("%s/v1/jobs/%s", baseURL, engineJobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobResults GET {url}/v1/jobs/{id}/results
func (c *Client) JobResults(ctx context.Context, baseURL, engineJobID string) (*JobResultsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ResultsTimeout)
	defer cancel()

	var out JobResultsResponse
	if err := c.getJSON(ctx, "results", fmt.Sprintf("%s/v1/jobs/%s/results", baseURL, engineJobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobResultsCSV GET {url}/v1/jobs/{id}/results/csv，返回原始CSV字节
func (c *Client) JobResultsCSV(ctx context.Context, baseURL, engineJobID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ResultsTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.get(ctx, fmt.Sprintf("%s/v1/jobs/%s/results/csv", baseURL, engineJobID))
	rtt := time.Since(start)
	c.metrics.ObserveEngineRequest("results_csv", err, rtt)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: results csv returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify("get", err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, op, url string, out any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	rtt := time.Since(start)
	if err != nil {
		err = c.classify(op, err)
		c.metrics.ObserveEngineRequest(op, err, rtt)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("%w: %s returned status %d", ErrUnavailable, op, resp.StatusCode)
		c.metrics.ObserveEngineRequest(op, err, rtt)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("%w: decoding %s response: %v", ErrUnavailable, op, err)
		c.metrics.ObserveEngineRequest(op, err, rtt)
		return err
	}
	c.metrics.ObserveEngineRequest(op, nil, rtt)
	return nil
}

// classify 区分超时与不可达，供上层映射错误响应
func (c *Client) classify(op string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %s", ErrTimeout, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
