package job

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/engine"
	"github.com/google/wire"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewUsecase, NewReconciler, NewWebhookSender)

type Usecase struct {
	jobs       Repo
	accounts   *account.Usecase
	picker     ServerPicker
	engine     EngineClient
	recorder   MetricsRecorder
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewUsecase(
	jobs Repo,
	accounts *account.Usecase,
	picker ServerPicker,
	engineClient EngineClient,
	recorder MetricsRecorder,
	reconciler *Reconciler,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		jobs:       jobs,
		accounts:   accounts,
		picker:     picker,
		engine:     engineClient,
		recorder:   recorder,
		reconciler: reconciler,
		logger:     logger,
	}
}

// ValidateSingle 同步校验一个邮箱。先扣1点，再派发调用；引擎失败时错误
// 原样上抛，不换机重试：调用方已付费，要么拿到确定结果要么拿到可退款的
// 明确错误。
func (u *Usecase) ValidateSingle(ctx context.Context, ownerID uint64, email string, verifySMTP bool) (*SingleResult, *account.Account, error) {
	acct, err := u.accounts.ChargeSingle(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	serverURL, err := u.picker.Pick(ctx)
	if err != nil {
		return nil, nil, err
	}

	resp, rtt, err := u.engine.Validate(ctx, serverURL, email, !verifySMTP)

	// 指标回写对成功失败一视同仁
	if recErr := u.recorder.RecordCallMetrics(ctx, serverURL, err == nil, rtt); recErr != nil {
		u.logger.Error("failed to record call metrics",
			zap.String("server", serverURL), zap.Error(recErr))
	}
	if err != nil {
		return nil, nil, err
	}

	result := buildSingleResult(resp, email, serverURL, rtt)

	// 单邮箱校验也落一条已完成的作业，让历史可追溯
	now := time.Now()
	j := &Job{
		ID:                 uint64(idgen.NextId()),
		OwnerID:            ownerID,
		Type:               TypeSingle,
		Source:             "dashboard",
		Status:             StatusCompleted,
		ServerUsed:         serverURL,
		TotalEmails:        1,
		ProcessedEmails:    1,
		ProgressPercentage: 100,
		CreditsUsed:        1,
		CompletedAt:        &now,
	}
	applySingleCounts(j, result)
	if err := u.jobs.Create(ctx, j); err != nil {
		u.logger.Error("failed to record single validation job", zap.Error(err))
	}

	u.accounts.RecordUsage(ctx, ownerID, account.UsageSingle, 1, 1)
	u.accounts.CheckLowCredits(ctx, acct)

	return result, acct, nil
}

// SubmitBulk 选一台引擎上传CSV。选中的URL立即落为 server_used，绑定之后
// 所有轮询。
func (u *Usecase) SubmitBulk(ctx context.Context, ownerID uint64, filename string, fileSize int64, file io.Reader, webhookURL string) (*Job, error) {
	if _, err := u.accounts.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	serverURL, err := u.picker.Pick(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := u.engine.SubmitBulkCSV(ctx, serverURL, filename, file)
	if err != nil {
		return nil, err
	}

	j := &Job{
		ID:          uint64(idgen.NextId()),
		OwnerID:     ownerID,
		Type:        TypeBulk,
		Source:      "dashboard",
		EngineJobID: resp.JobID,
		Status:      StatusQueued,
		ServerUsed:  serverURL,
		WebhookURL:  webhookURL,
		FileInfo: &FileInfo{
			OriginalFilename: filename,
			FileSize:         fileSize,
		},
	}
	if err := u.jobs.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Poll 拉取远端状态并合并到本地。引擎不可达时退回本地最后已知状态，
// 读路径永不因下游临时故障失败。
func (u *Usecase) Poll(ctx context.Context, ownerID, jobID uint64) (*Job, error) {
	j, err := u.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	// 本地完成的单邮箱作业和已取消的作业没有可轮询的远端状态
	if j.EngineJobID == "" || j.Status == StatusCancelled {
		return j, nil
	}

	engineURL, err := u.picker.ResolveForJob(ctx, j.ServerUsed)
	if err != nil {
		return nil, err
	}

	remote, err := u.engine.JobStatus(ctx, engineURL, j.EngineJobID)
	if err != nil {
		u.logger.Warn("engine unavailable during poll, returning local state",
			zap.Uint64("job_id", j.ID),
			zap.String("engine", engineURL),
			zap.Error(err))
		return j, nil
	}

	first := j.ApplyRemoteStatus(remote.Status, remote.Completed, remote.Total, time.Now())
	if first {
		won, err := u.jobs.MarkCompleted(ctx, j.ID, j.ExportPatch())
		if err != nil {
			return nil, err
		}
		if won {
			u.reconciler.Settle(ctx, j, engineURL, remote.Total)
		}
	} else {
		if err := u.jobs.Update(ctx, j.ID, j.ExportPatch()); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Results 取明细结果，原样透传。引擎不可达时返回空结果而不是报错。
func (u *Usecase) Results(ctx context.Context, ownerID, jobID uint64) (json.RawMessage, error) {
	j, err := u.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if j.EngineJobID == "" {
		return json.RawMessage("[]"), nil
	}

	engineURL, err := u.picker.ResolveForJob(ctx, j.ServerUsed)
	if err != nil {
		return nil, err
	}

	resp, err := u.engine.JobResults(ctx, engineURL, j.EngineJobID)
	if err != nil {
		u.logger.Warn("engine unavailable during results fetch",
			zap.Uint64("job_id", j.ID),
			zap.String("engine", engineURL),
			zap.Error(err))
		return json.RawMessage("[]"), nil
	}
	if len(resp.Results) == 0 {
		return json.RawMessage("[]"), nil
	}
	return resp.Results, nil
}

// ExportCSV 导出原始CSV。下载失败应当失败得明确，不做降级。
func (u *Usecase) ExportCSV(ctx context.Context, ownerID, jobID uint64) ([]byte, error) {
	j, err := u.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if j.EngineJobID == "" {
		return nil, ErrNotFound
	}

	engineURL, err := u.picker.ResolveForJob(ctx, j.ServerUsed)
	if err != nil {
		return nil, err
	}
	return u.engine.JobResultsCSV(ctx, engineURL, j.EngineJobID)
}

// Cancel 归属者取消未到终态的作业。只改本地状态，不向引擎转发。
func (u *Usecase) Cancel(ctx context.Context, ownerID, jobID uint64) (*Job, error) {
	j, err := u.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if err := j.Cancel(); err != nil {
		return nil, err
	}
	if err := u.jobs.Update(ctx, j.ID, j.ExportPatch()); err != nil {
		return nil, err
	}
	return j, nil
}

func (u *Usecase) List(ctx context.Context, ownerID uint64, page, limit int) ([]*Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return u.jobs.ListByOwner(ctx, ownerID, page, limit)
}

func (u *Usecase) getOwned(ctx context.Context, ownerID, jobID uint64) (*Job, error) {
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, ErrNotFound
	}
	if j.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return j, nil
}

func buildSingleResult(resp *engine.ValidateResponse, email, serverURL string, rtt time.Duration) *SingleResult {
	domain := ""
	if i := strings.LastIndex(email, "@"); i >= 0 {
		domain = email[i+1:]
	}

	result := &SingleResult{
		Email:          resp.Email,
		Domain:         domain,
		Status:         resp.Status,
		Score:          resp.Score,
		MXRecords:      resp.MX,
		ResponseTimeMs: rtt.Milliseconds(),
		ServerUsed:     serverURL,
		Checks: SingleChecks{
			SyntaxValid:  resp.Syntax,
			MXFound:      len(resp.MX) > 0,
			CatchAll:     resp.CatchAll,
			Disposable:   resp.Disposable,
			RoleBased:    resp.Role,
			FreeProvider: resp.FreeProvider,
		},
	}
	if result.MXRecords == nil {
		result.MXRecords = []string{}
	}
	if resp.SMTP != nil {
		result.Checks.SMTPValid = resp.SMTP.OK
		result.SMTPResponseCode = resp.SMTP.Code.String()
		if result.SMTPResponseCode == "" {
			result.SMTPResponseCode = "250"
		}
		result.SMTPResponseMessage = resp.SMTP.Response
		if result.SMTPResponseMessage == "" {
			result.SMTPResponseMessage = resp.SMTP.Error
		}
	}
	return result
}

func applySingleCounts(j *Job, result *SingleResult) {
	switch result.Status {
	case "valid":
		j.ValidCount = 1
	case "invalid":
		j.InvalidCount = 1
	case "catch_all":
		j.CatchAllCount = 1
	}
	if result.Checks.Disposable {
		j.DisposableCount = 1
	}
	if result.Checks.RoleBased {
		j.RoleBasedCount = 1
	}
	if j.ValidCount == 0 && j.InvalidCount == 0 {
		j.UnknownCount = 1
	}
}
