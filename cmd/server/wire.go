//go:build wireinject
// +build wireinject

package main

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"github.com/google/wire"
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
)

func InitializeServer(logger *zap.Logger, cfg *config.Config) (*api.Server, error) {
	wire.Build(
		ProvideRedisClient,
		ProvideDatabaseConfig,
		ProvideDispatchConfig,
		ProvideHealthCheckConfig,
		ProvideArtifactsConfig,

		wire.Bind(new(server.Prober), new(*engine.Client)),
		wire.Bind(new(job.EngineClient), new(*engine.Client)),
		wire.Bind(new(job.ServerPicker), new(*dispatch.Selector)),
		wire.Bind(new(job.MetricsRecorder), new(*server.Usecase)),
		wire.Bind(new(dispatch.ArtifactStore), new(*dispatch.FileArtifactStore)),

		orm.Provider,
		monitoring.Provider,
		engine.Provider,
		dispatch.Provider,
		janitor.Provider,

		// http api providers
		api.Provider,

		// biz providers
		server.Provider,
		job.Provider,
		account.Provider,

		// infra providers
		serverrepo.Provider,
		jobrepo.Provider,
		accountrepo.Provider,
		usagerepo.Provider,
	)
	return nil, nil
}
