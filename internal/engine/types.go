package engine

import (
	"encoding/json"
	"errors"
)

var (
	// ErrTimeout 对引擎的有界调用超时
	ErrTimeout = errors.New("validation engine request timed out")
	// ErrUnavailable 连接被拒/DNS失败/非2xx响应
	ErrUnavailable = errors.New("validation engine is unavailable")
)

// SMTPResult `POST /v1/validate` 响应里的 smtp 字段
type SMTPResult struct {
	OK       bool        `json:"ok"`
	Code     json.Number `json:"code"`
	Response string      `json:"response"`
	Error    string      `json:"error"`
}

// ValidateResponse `POST /v1/validate` 的响应体
type ValidateResponse struct {
	Email        string      `json:"email"`
	Status       string      `json:"status"`
	Syntax       bool        `json:"syntax"`
	MX           []string    `json:"mx"`
	SMTP         *SMTPResult `json:"smtp"`
	CatchAll     bool        `json:"catchall"`
	Disposable   bool        `json:"disposable"`
	Role         bool        `json:"role"`
	FreeProvider bool        `json:"free_provider"`
	Score        float64     `json:"score"`
}

// BulkSubmitResponse `POST /v1/validate/bulk/csv` 的响应体
type BulkSubmitResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// JobStatusResponse `GET /v1/jobs/{id}` 的响应体
type JobStatusResponse struct {
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// JobResultsResponse `GET /v1/jobs/{id}/results` 的响应体。不同引擎版本的
// 明细字段名有差异（status|result、score|confidence 等），原样透传。
type JobResultsResponse struct {
	Results json.RawMessage `json:"results"`
}
