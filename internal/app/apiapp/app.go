package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/config"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/jobs/cleanup"
	pgrepo "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/repo/postgres"
	redrepo "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/repo/redis"
	otpsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/otp"
	ratesvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/rate"
	sessionsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/session"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
	cleanupJob *cleanup.Job
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	userRepo := pgrepo.NewUserRepo(pool)
	sessionRepo := pgrepo.NewSessionRepo(pool)
	otpRepo := pgrepo.NewOTPRepo(pool)
	notifierRepo := redrepo.NewNotifierRepo(redisClient)
	presenceRepo := redrepo.NewPresenceRepo(redisClient, cfg.Presence.TTL)
	rateRepo := redrepo.NewRateRepo(redisClient)

	limiter := ratesvc.NewLimiter(rateRepo, cfg.Rate.LoginPerMinute, cfg.Rate.OTPPerMinute)

	jwtManager := sessionsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	sessionService := sessionsvc.NewService(jwtManager, userRepo, sessionRepo, notifierRepo, presenceRepo, limiter, log)
	otpService := otpsvc.NewService(otpRepo, limiter, otpsvc.Config{
		Digits:      cfg.OTP.Digits,
		MaxAttempts: cfg.OTP.MaxAttempts,
	}, log)

	var cleanupJob *cleanup.Job
	if pool != nil {
		cleanupJob = cleanup.New(sessionRepo, otpRepo, cfg.Cleanup.SessionRetention, cfg.Cleanup.OTPRetention, log)
	}

	RegisterRoutes(r, Dependencies{
		SessionService: sessionService,
		OTPService:     otpService,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
		cleanupJob: cleanupJob,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunCleanupLoop prunes aged rows on a fixed interval until ctx is cancelled.
// It runs once immediately so a restart does not postpone an overdue sweep.
func (a *App) RunCleanupLoop(ctx context.Context) error {
	if a.cleanupJob == nil {
		return nil
	}

	interval := a.cfg.Cleanup.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	if err := a.cleanupJob.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.cleanupJob.Run(ctx); err != nil {
				a.logger.Warn("cleanup run failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
