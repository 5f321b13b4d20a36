package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"pr_compliance_service/internal/config"
	"pr_compliance_service/internal/domain/service"
	"pr_compliance_service/internal/infrastructure/extraction"
	"pr_compliance_service/internal/infrastructure/persistence"
	"pr_compliance_service/internal/scheduler"
	"pr_compliance_service/internal/server"
	"pr_compliance_service/pkg/application/connectors"
	"pr_compliance_service/pkg/application/modules"
	"pr_compliance_service/pkg/contextx"
	"pr_compliance_service/pkg/middlewarex"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type App struct {
	cfg      config.Config
	slog     *connectors.Slog
	postgres *connectors.Postgres

	httpServer modules.HTTPServer
}

func New(appVersion string) App {
	const appName = "pr_compliance_service"

	cfg := lo.Must(config.Load())

	return App{
		cfg: cfg,
		slog: &connectors.Slog{
			Name:    appName,
			Version: appVersion,
			Debug:   cfg.Debug,
		},
		postgres: &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		},

		httpServer: modules.HTTPServer{
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		},
	}
}

func (app App) shutdown(ctx context.Context) {
	app.postgres.Close(ctx)
}

func (app App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	defer stop()

	ctx = contextx.WithLogger(ctx, app.slog.Logger(ctx))

	defer app.shutdown(ctx)

	logger(ctx).Info("starting",
		slog.String("listen", app.cfg.HTTP.ListenAddress),
		slog.String("audit_interval", app.cfg.Scheduler.Interval),
		slog.Any("repositories", app.cfg.GitHub.Repositories))

	client := app.postgres.Client(ctx)
	if err := persistence.EnsureSchema(ctx, client); err != nil {
		return fmt.Errorf("persistence.EnsureSchema: %w", err)
	}

	repo := persistence.NewComplianceRepository(client)
	extractor := extraction.NewClient(app.cfg.GitHub)
	pipeline := service.NewPipeline()
	worker := scheduler.NewWorker(extractor, pipeline, repo, app.cfg.Rules)

	redisOpt := asynq.RedisClientOpt{
		Addr:     app.cfg.Redis.Addr,
		Password: app.cfg.Redis.Password,
		DB:       app.cfg.Redis.DB,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	mux := asynq.NewServeMux()
	mux.HandleFunc(scheduler.TaskAuditRun, worker.ProcessTask)

	asynqServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: app.cfg.Scheduler.Concurrency,
		BaseContext: func() context.Context { return ctx },
	})

	periodic := asynq.NewScheduler(redisOpt, nil)
	if _, err := periodic.Register(app.cfg.Scheduler.Interval, scheduler.NewAuditTask()); err != nil {
		return fmt.Errorf("periodic.Register: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	app.httpServer.Run(gCtx, g, app.newHTTPServer(gCtx, scheduler.NewEnqueuer(asynqClient), repo))
	modules.AsynqWorker{}.Run(gCtx, g, asynqServer, mux)
	modules.AsynqScheduler{}.Run(gCtx, g, periodic)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

func (app App) newHTTPServer(ctx context.Context, runs server.RunEnqueuer, summaries server.SummarySource) *http.Server {
	router := chi.NewRouter()

	router.Use(
		middleware.RealIP,
		middlewarex.Logger,
	)

	server.NewServer(runs, summaries).RegisterRoutes(router)

	return &http.Server{
		//nolint:exhaustruct
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
		Addr:              app.cfg.HTTP.ListenAddress,
		WriteTimeout:      app.cfg.HTTP.WriteTimeout,
		ReadTimeout:       app.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: app.cfg.HTTP.ReadTimeout,
		IdleTimeout:       app.cfg.HTTP.IdleTimeout,
		Handler:           router,
	}
}
