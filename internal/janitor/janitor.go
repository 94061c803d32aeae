package janitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/emailvalidation9-a11y/backend/internal/biz/job"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

var Provider = wire.NewSet(New)

// Janitor 定时清扫：卡死的作业置为失败，过期的结果文件删除
type Janitor struct {
	logger    *zap.Logger
	cfg       config.JanitorConfig
	artifacts config.ArtifactsConfig
	jobs      job.Repo

	cron *cron.Cron
}

func New(cfg *config.Config, jobs job.Repo, logger *zap.Logger) *Janitor {
	return &Janitor{
		logger:    logger,
		cfg:       cfg.Janitor,
		artifacts: cfg.Artifacts,
		jobs:      jobs,
		cron:      cron.New(),
	}
}

func (j *Janitor) Start() error {
	if !j.cfg.Enabled {
		j.logger.Info("janitor disabled")
		return nil
	}
	if _, err := j.cron.AddFunc(j.cfg.Spec, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("janitor started",
		zap.String("spec", j.cfg.Spec),
		zap.Duration("stale_cutoff", j.cfg.StaleCutoff))
	return nil
}

func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	j.sweepStuckJobs(ctx)
	j.sweepExpiredArtifacts()
}

// sweepStuckJobs 超过截止时间仍未到终态的作业判定为卡死
func (j *Janitor) sweepStuckJobs(ctx context.Context) {
	before := time.Now().Add(-j.cfg.StaleCutoff)
	stuck, err := j.jobs.FindStuck(ctx, before)
	if err != nil {
		j.logger.Error("failed to query stuck jobs", zap.Error(err))
		return
	}

	for _, stale := range stuck {
		stale.MarkFailed("timed out waiting for validation engine")
		if err := j.jobs.Update(ctx, stale.ID, stale.ExportPatch()); err != nil {
			j.logger.Error("failed to fail stuck job",
				zap.Uint64("job_id", stale.ID),
				zap.Error(err))
			continue
		}
		j.logger.Warn("marked stuck job as failed",
			zap.Uint64("job_id", stale.ID),
			zap.Time("created_at", stale.CreatedAt))
	}
}

func (j *Janitor) sweepExpiredArtifacts() {
	if j.artifacts.TTL <= 0 {
		return
	}
	cutoff := time.Now().Add(-j.artifacts.TTL)

	entries, err := os.ReadDir(j.artifacts.Dir)
	if err != nil {
		j.logger.Error("failed to read artifacts dir", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.artifacts.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.Error("failed to remove expired artifact",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		j.logger.Info("removed expired artifact", zap.String("path", path))
	}
}
