package job

import (
	"time"
)

// Job 一次验证请求，单邮箱或批量
type Job struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	OwnerID uint64
	Type    JobType
	Source  string

	// EngineJobID 远端引擎分配的作业ID，单邮箱同步作业为空
	EngineJobID string
	Status      JobStatus
	// ServerUsed 派发时绑定的引擎URL，后续轮询优先回到这台
	ServerUsed string

	TotalEmails        int
	ProcessedEmails    int
	ProgressPercentage int

	ValidCount      int
	InvalidCount    int
	CatchAllCount   int
	DisposableCount int
	RoleBasedCount  int
	UnknownCount    int

	CreditsUsed  int64
	WebhookURL   string
	WebhookSent  bool
	ErrorMessage string

	FileInfo   *FileInfo
	ResultFile *ResultFile

	CompletedAt *time.Time

	patch JobPatch
}

func (j *Job) IsTerminal() bool {
	return j.Status.Terminal()
}

func (j *Job) ClearPatch() *Job {
	j.patch = JobPatch{}
	return j
}

func (j *Job) ExportPatch() *JobPatch { return &j.patch }

// ApplyRemoteStatus folds one poll of the remote engine into local state and
// reports whether this observation is the job's first completion. The guard
// checks the state as it was before this call, so re-polling an already
// completed job never re-triggers settlement.
func (j *Job) ApplyRemoteStatus(status string, completed, total int, now time.Time) (firstCompletion bool) {
	wasCompleted := j.Status == StatusCompleted || j.CompletedAt != nil

	j.Status = JobStatus(status)
	j.ProcessedEmails = completed
	j.TotalEmails = total
	if total > 0 {
		j.ProgressPercentage = completed * 100 / total
	}
	j.patch.WithStatus(j.Status).
		WithProcessedEmails(completed).
		WithTotalEmails(total).
		WithProgressPercentage(j.ProgressPercentage)

	if j.Status == StatusCompleted && !wasCompleted {
		j.CompletedAt = &now
		j.patch.WithCompletedAt(now)
		return true
	}
	return false
}

// Cancel 本地取消。不向远端引擎转发取消信号。
func (j *Job) Cancel() error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	j.Status = StatusCancelled
	j.patch.WithStatus(StatusCancelled)
	return nil
}

// MarkFailed 清理任务把卡死的作业置为失败
func (j *Job) MarkFailed(reason string) {
	j.Status = StatusFailed
	j.ErrorMessage = reason
	j.patch.WithStatus(StatusFailed).WithErrorMessage(reason)
}

func (j *Job) AttachResultFile(rf ResultFile) {
	j.ResultFile = &rf
	j.patch.WithResultFile(rf)
}

func (j *Job) MarkWebhookSent() {
	j.WebhookSent = true
	j.patch.WithWebhookSent(true)
}

func (j *Job) SetCreditsUsed(n int64) {
	j.CreditsUsed = n
	j.patch.WithCreditsUsed(n)
}

type JobPatch struct {
	Status             *JobStatus
	EngineJobID        *string
	ServerUsed         *string
	TotalEmails        *int
	ProcessedEmails    *int
	ProgressPercentage *int
	CreditsUsed        *int64
	WebhookSent        *bool
	ErrorMessage       *string
	ResultFile         *ResultFile
	CompletedAt        *time.Time
}

func NewJobPatch() *JobPatch {
	return new(JobPatch)
}

func (p *JobPatch) WithStatus(status JobStatus) *JobPatch {
	p.Status = &status
	return p
}

func (p *JobPatch) WithEngineJobID(id string) *JobPatch {
	p.EngineJobID = &id
	return p
}

func (p *JobPatch) WithServerUsed(url string) *JobPatch {
	p.ServerUsed = &url
	return p
}

func (p *JobPatch) WithTotalEmails(n int) *JobPatch {
	p.TotalEmails = &n
	return p
}

func (p *JobPatch) WithProcessedEmails(n int) *JobPatch {
	p.ProcessedEmails = &n
	return p
}

func (p *JobPatch) WithProgressPercentage(n int) *JobPatch {
	p.ProgressPercentage = &n
	return p
}

func (p *JobPatch) WithCreditsUsed(n int64) *JobPatch {
	p.CreditsUsed = &n
	return p
}

func (p *JobPatch) WithWebhookSent(sent bool) *JobPatch {
	p.WebhookSent = &sent
	return p
}

func (p *JobPatch) WithErrorMessage(msg string) *JobPatch {
	p.ErrorMessage = &msg
	return p
}

func (p *JobPatch) WithResultFile(rf ResultFile) *JobPatch {
	p.ResultFile = &rf
	return p
}

func (p *JobPatch) WithCompletedAt(t time.Time) *JobPatch {
	p.CompletedAt = &t
	return p
}
