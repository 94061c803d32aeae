package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"

	"github.com/emailvalidation9-a11y/backend/internal/api"
	"github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/biz/job"
	"github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/dispatch"
	"github.com/emailvalidation9-a11y/backend/internal/engine"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/accountrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/jobrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/serverrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/usagerepo"
	"github.com/emailvalidation9-a11y/backend/internal/janitor"
	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"github.com/emailvalidation9-a11y/backend/internal/orm"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"github.com/emailvalidation9-a11y/backend/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// 雪花ID生成器
	var options = idgen.NewIdGeneratorOptions(20)
	options.BaseTime = 1755937966000
	options.WorkerIdBitLength = 6
	idgen.SetIdGenerator(options)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting validation dispatch backend")

	db, err := orm.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// repositories
	serverRepo := serverrepo.NewMysqlRepositoryImpl(db.DB())
	jobRepo := jobrepo.NewMysqlRepositoryImpl(db.DB())
	accountRepo := accountrepo.NewMysqlRepositoryImpl(db.DB())
	usageRepo := usagerepo.NewMysqlRepositoryImpl(db.DB())

	// 外呼与调度
	metrics := monitoring.NewMetrics()
	engineClient := engine.NewClient(cfg.Dispatch, metrics, zapLogger)
	selector := dispatch.NewSelector(cfg.Dispatch, serverRepo, metrics, zapLogger)

	artifacts, err := dispatch.NewFileArtifactStore(cfg.Artifacts)
	if err != nil {
		zapLogger.Fatal("Failed to create artifact store", zap.Error(err))
	}

	// usecases
	serverUsecase := server.NewUsecase(serverRepo, engineClient)
	notifier := account.NewLogNotifier(zapLogger)
	accountUsecase := account.NewUsecase(accountRepo, usageRepo, notifier, zapLogger)
	webhooks := job.NewWebhookSender(cfg.Dispatch, zapLogger)
	reconciler := job.NewReconciler(jobRepo, accountUsecase, engineClient, artifacts, webhooks, metrics, zapLogger)
	jobUsecase := job.NewUsecase(jobRepo, accountUsecase, selector, engineClient, serverUsecase, reconciler, zapLogger)

	// 健康巡检
	healthChecker := dispatch.NewHealthChecker(zapLogger, cfg.HealthCheck, engineClient, serverRepo, metrics)
	healthChecker.Start()
	defer healthChecker.Stop()

	// 清理任务
	sweeper := janitor.New(cfg, jobRepo, zapLogger)
	if err := sweeper.Start(); err != nil {
		zapLogger.Fatal("Failed to start janitor", zap.Error(err))
	}
	defer sweeper.Stop()

	rdb := ProvideRedisClient(cfg)

	apiServer := api.NewServer(cfg, db,
		api.NewServerHandler(serverUsecase),
		api.NewValidationHandler(jobUsecase),
		api.NewJobHandler(jobUsecase),
		rdb, zapLogger)

	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        apiServer.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("Starting API server",
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLogger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown API server", zap.Error(err))
	}

	zapLogger.Info("Shutdown complete")
}
