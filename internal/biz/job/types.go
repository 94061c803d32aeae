package job

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/engine"
)

type JobType string

const (
	TypeSingle JobType = "single"
	TypeBulk   JobType = "bulk"
)

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Terminal 终态后不再接受状态变更
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

var (
	// ErrNotFound 作业不存在
	ErrNotFound = errors.New("validation job not found")
	// ErrNotOwner 只有归属者能操作自己的作业
	ErrNotOwner = errors.New("not authorized for this job")
	// ErrJobTerminal 终态作业不可取消
	ErrJobTerminal = errors.New("job already reached a terminal state")
)

// FileInfo 上传文件元信息
type FileInfo struct {
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
}

// ResultFile 结果文件归档引用
type ResultFile struct {
	Path        string     `json:"path"`
	DownloadURL string     `json:"download_url"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// EngineClient 下游引擎客户端。接口化便于测试替身。
type EngineClient interface {
	Validate(ctx context.Context, baseURL, email string, skipSMTP bool) (*engine.ValidateResponse, time.Duration, error)
	SubmitBulkCSV(ctx context.Context, baseURL, filename string, file io.Reader) (*engine.BulkSubmitResponse, error)
	JobStatus(ctx context.Context, baseURL, engineJobID string) (*engine.JobStatusResponse, error)
	JobResults(ctx context.Context, baseURL, engineJobID string) (*engine.JobResultsResponse, error)
	JobResultsCSV(ctx context.Context, baseURL, engineJobID string) ([]byte, error)
}

// ServerPicker 派发时选引擎、轮询时按亲和解析引擎
type ServerPicker interface {
	Pick(ctx context.Context) (string, error)
	ResolveForJob(ctx context.Context, serverUsed string) (string, error)
}

// MetricsRecorder 把代理调用结果回写进服务器滚动指标
type MetricsRecorder interface {
	RecordCallMetrics(ctx context.Context, serverURL string, success bool, rtt time.Duration) error
}

// SingleChecks 单邮箱校验的细项结果
type SingleChecks struct {
	SyntaxValid  bool `json:"syntax_valid"`
	MXFound      bool `json:"mx_found"`
	SMTPValid    bool `json:"smtp_valid"`
	CatchAll     bool `json:"catch_all"`
	Disposable   bool `json:"disposable"`
	RoleBased    bool `json:"role_based"`
	FreeProvider bool `json:"free_provider"`
}

// SingleResult 单邮箱校验返回给调用方的负载
type SingleResult struct {
	Email               string       `json:"email"`
	Domain              string       `json:"domain"`
	Status              string       `json:"status"`
	Checks              SingleChecks `json:"checks"`
	Score               float64      `json:"score"`
	MXRecords           []string     `json:"mx_records"`
	SMTPResponseCode    string       `json:"smtp_response_code"`
	SMTPResponseMessage string       `json:"smtp_response_message"`
	ResponseTimeMs      int64        `json:"response_time_ms"`
	ServerUsed          string       `json:"server_used"`
}
