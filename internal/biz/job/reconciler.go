package job

import (
	"context"

	"github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/dispatch"
	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"go.uber.org/zap"
)

// Reconciler 作业首次到达 completed 时执行一次性结算副作用。
// 各副作用彼此独立、尽力而为：通知或归档失败不回滚扣费，也不会在
// 下一次轮询时重放（completed_at 行级守卫保证只进来一次）。
type Reconciler struct {
	jobs      Repo
	accounts  *account.Usecase
	engine    EngineClient
	artifacts dispatch.ArtifactStore
	webhooks  *WebhookSender
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewReconciler(
	jobs Repo,
	accounts *account.Usecase,
	engineClient EngineClient,
	artifacts dispatch.ArtifactStore,
	webhooks *WebhookSender,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		jobs:      jobs,
		accounts:  accounts,
		engine:    engineClient,
		artifacts: artifacts,
		webhooks:  webhooks,
		metrics:   metrics,
		logger:    logger,
	}
}

// Settle 只能由赢得 MarkCompleted 行级CAS的调用方进入
func (r *Reconciler) Settle(ctx context.Context, j *Job, engineURL string, totalEmails int) {
	log := r.logger.With(zap.Uint64("job_id", j.ID), zap.Uint64("account_id", j.OwnerID))

	// 扣费 + 生涯计数
	acct, err := r.accounts.SettleBulk(ctx, j.OwnerID, totalEmails)
	r.metrics.IncSettlement("credit_debit", err)
	if err != nil {
		log.Error("failed to debit credits on job completion", zap.Error(err))
	}

	// 日用量
	r.accounts.RecordUsage(ctx, j.OwnerID, account.UsageBulk, totalEmails, int64(totalEmails))

	j.ClearPatch()
	j.SetCreditsUsed(int64(totalEmails))

	// 结果CSV归档
	downloadURL := ""
	csv, err := r.engine.JobResultsCSV(ctx, engineURL, j.EngineJobID)
	if err == nil {
		ref, putErr := r.artifacts.Put(ctx, j.ID, csv)
		r.metrics.IncSettlement("artifact", putErr)
		if putErr != nil {
			log.Warn("failed to archive results csv", zap.Error(putErr))
		} else {
			j.AttachResultFile(ResultFile{Path: ref.Path, DownloadURL: ref.DownloadURL, ExpiresAt: ref.ExpiresAt})
			downloadURL = ref.DownloadURL
		}
	} else {
		r.metrics.IncSettlement("artifact", err)
		log.Warn("failed to fetch results csv from engine", zap.Error(err))
	}

	// Webhook投递
	if j.WebhookURL != "" {
		err := r.webhooks.Send(ctx, j.WebhookURL, WebhookPayload{
			Event:       "job.completed",
			JobID:       j.ID,
			TotalEmails: totalEmails,
			Status:      string(StatusCompleted),
			CompletedAt: j.CompletedAt,
		})
		r.metrics.IncSettlement("webhook", err)
		if err != nil {
			log.Warn("webhook delivery failed", zap.String("url", j.WebhookURL), zap.Error(err))
		} else {
			j.MarkWebhookSent()
		}
	}

	if err := r.jobs.Update(ctx, j.ID, j.ExportPatch()); err != nil {
		log.Error("failed to persist settlement fields", zap.Error(err))
	}

	// 完成通知 + 低余额提醒
	if acct != nil {
		r.accounts.NotifyJobCompleted(ctx, acct, totalEmails, downloadURL)
		r.accounts.CheckLowCredits(ctx, acct)
	}
}
