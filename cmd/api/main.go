// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/auth"
	"github.com/usha3107/multi-tenant-saas/internal/config"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/health"
	"github.com/usha3107/multi-tenant-saas/internal/metrics"
	"github.com/usha3107/multi-tenant-saas/internal/middleware"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
	"github.com/usha3107/multi-tenant-saas/internal/project"
	"github.com/usha3107/multi-tenant-saas/internal/quota"
	"github.com/usha3107/multi-tenant-saas/internal/server"
	"github.com/usha3107/multi-tenant-saas/internal/task"
	"github.com/usha3107/multi-tenant-saas/internal/tenant"
	"github.com/usha3107/multi-tenant-saas/internal/user"
)

const (
	drainDelay       = 5 * time.Second
	metricsNamespace = "saas"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("generate-keys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	cmd := run
	if *genKeys {
		cmd = generateKeys
	}
	if err := cmd(*configPath); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func generateKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close(logger)

	srv, err := buildServer(ctx, cfg, d, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("draining", "delay", drainDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			drainDelay+cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx, drainDelay)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}

// deps are the process-wide connections.
type deps struct {
	telemetry *core.Telemetry
	db        *core.Database
	redis     *core.Redis
}

// openDeps releases whatever it already opened when a later dependency
// fails.
func openDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *deps, err error) {
	d := &deps{}
	defer func() {
		if err != nil {
			d.close(logger)
		}
	}()

	tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	switch {
	case telErr != nil:
		logger.Warn("tracing disabled", "error", telErr)
	case tel.Enabled():
		logger.Info("tracing enabled", "endpoint", cfg.Otel.Endpoint)
	}
	d.telemetry = tel

	if d.db, err = core.NewDatabase(ctx, cfg.Database); err != nil {
		return nil, err
	}
	logger.Info("postgres ready", "max_open_conns", cfg.Database.MaxOpenConns)

	if d.redis, err = core.NewRedis(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	logger.Info("redis ready", "pool_size", cfg.Redis.PoolSize)

	return d, nil
}

type closeStep struct {
	name string
	fn   func() error
}

// close releases dependencies in reverse order of opening, skipping any
// that were never opened.
func (d *deps) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var steps []closeStep
	if d.redis != nil {
		steps = append(steps, closeStep{"redis", d.redis.Close})
	}
	if d.db != nil {
		steps = append(steps, closeStep{"postgres", d.db.Close})
	}
	steps = append(steps, closeStep{"telemetry", func() error { return d.telemetry.Shutdown(ctx) }})

	for _, s := range steps {
		if err := s.fn(); err != nil {
			logger.Error("close failed", "dependency", s.name, "error", err)
		}
	}
}

func buildServer(ctx context.Context, cfg *config.Config, d *deps, logger *slog.Logger) (*server.Server, error) {
	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return nil, err
	}
	blacklist := auth.NewBlacklist(d.redis.Client)

	appMetrics := metrics.New(metricsNamespace)
	appMetrics.RegisterDB(d.db.DB.DB, "postgres")
	appMetrics.RegisterRedis(d.redis.Client, "redis")

	enforcer := policy.NewEnforcer(appMetrics, logger)
	quotas := quota.NewEnforcer(enforcer)
	emitter := audit.NewEmitter(cfg.Audit.Sink, d.db.DB, logger)

	tenantSvc := tenant.NewService(d.db, tenant.NewRepository, enforcer, emitter)
	userSvc := user.NewService(d.db, user.NewRepository, quota.NewRepository, quotas, enforcer, emitter)
	projectSvc := project.NewService(d.db, project.NewRepository, quota.NewRepository, quotas, enforcer, emitter)
	taskSvc := task.NewService(d.db, task.NewRepository, projectSvc, userSvc, enforcer, emitter)
	authSvc := auth.NewService(d.db, tenant.NewRepository, user.NewRepository,
		jwtManager, blacklist, cfg.Tenancy, emitter)

	if err := authSvc.EnsureSuperAdmin(ctx, cfg.Bootstrap); err != nil {
		return nil, fmt.Errorf("bootstrap super admin: %w", err)
	}

	probes := health.NewHandler(cfg.App.Version,
		health.Dependency{Name: "database", Checker: d.db},
		health.Dependency{Name: "redis", Checker: d.redis},
	)
	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: probes,
		Logger:        logger,
	})

	limiter := func(requests, burst int, key func(*http.Request) string) *middleware.RateLimiter {
		return middleware.NewRateLimiter(d.redis.Client, middleware.RateLimitConfig{
			Limit:   middleware.Per(requests, burst, cfg.RateLimit.Window),
			KeyFunc: key,
		})
	}
	perIP := limiter(cfg.RateLimit.Requests, cfg.RateLimit.Burst, middleware.KeyByIP)
	perTenant := limiter(cfg.RateLimit.TenantRequests, 0, middleware.KeyByTenant)
	perCredential := limiter(cfg.RateLimit.LoginRequests, 0, middleware.KeyByIPAndEndpoint)

	r := srv.Router()
	r.Use(
		middleware.RequestID,
		middleware.Tracing,
		middleware.Recoverer,
		middleware.Logger(logger),
		middleware.AuditIP,
		appMetrics.Middleware,
		perIP.Handler,
		middleware.SecurityHeaders(cfg.IsProduction()),
	)

	probes.RegisterRoutes(r)
	r.Handle("/metrics", appMetrics.Handler())
	r.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	verify := middleware.Authenticator(jwtManager, blacklist)
	authenticated := func(next http.Handler) http.Handler {
		return verify(perTenant.Handler(next))
	}

	r.Route("/api", func(api chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(api, authenticated, perCredential.Handler)
		tenant.NewHandler(tenantSvc).RegisterRoutes(api, authenticated)
		user.NewHandler(userSvc).RegisterRoutes(api, authenticated)
		project.NewHandler(projectSvc).RegisterRoutes(api, authenticated)
		task.NewHandler(taskSvc).RegisterRoutes(api, authenticated)
	})

	return srv, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
