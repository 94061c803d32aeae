package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"go.uber.org/zap"
)

// WebhookPayload 作业完成事件
type WebhookPayload struct {
	Event       string     `json:"event"`
	JobID       uint64     `json:"job_id"`
	TotalEmails int        `json:"total_emails"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

// WebhookSender 向用户配置的URL做一次至少一次语义的投递尝试。
// 失败记日志不重试。
type WebhookSender struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWebhookSender(cfg config.DispatchConfig, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		httpClient: &http.Client{Timeout: cfg.WebhookTimeout},
		logger:     logger,
	}
}

func (w *WebhookSender) Send(ctx context.Context, url string, payload WebhookPayload) error {
	if url == "" {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
