package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"collegeattendance/internal/attendance"
	"collegeattendance/internal/config"
	"collegeattendance/internal/handler"
	"collegeattendance/internal/httpmiddleware"
	"collegeattendance/internal/queue"
	"collegeattendance/internal/seed"
	"collegeattendance/internal/store"
	"collegeattendance/internal/web"
)

func main() {
	cfg := config.Load()

	log, err := cfg.Logger()
	if err != nil {
		stdlog.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = log.Sync() }()
	for _, w := range cfg.Warnings {
		log.Warn("config fallback", zap.String("detail", w))
	}

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	// Redis backs the roster cache and the seed queue; skip it when neither is enabled.
	var redisClient *store.Redis
	if cfg.RosterCacheTTL > 0 || cfg.QueueBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx); err != nil {
			log.Warn("redis not reachable, continuing", zap.Error(err))
		}
	}

	repo := attendance.NewRepository(db.Client)
	var cache attendance.RosterCache
	if cfg.RosterCacheTTL > 0 {
		cache = attendance.NewRedisCache(redisClient.Client, cfg.RosterCacheTTL)
	}
	att := attendance.NewService(repo, cache, log.Named("attendance"), cfg.BatchWorkers)
	seeder := seed.NewSeeder(repo, seed.Config(cfg.Seed), log.Named("seed"), seed.OnCommit(att.InvalidateRosters))

	var (
		q    queue.Queue
		jobs seed.Tracker
	)
	if cfg.QueueBackend == "memory" {
		q, jobs = queue.NewInMemory(16), seed.NewMemoryTracker()
		messages, err := q.Consume(ctx)
		if err != nil {
			return errors.Wrap(err, "queue consume init")
		}
		go seed.NewWorker(seeder, jobs, log.Named("worker")).Run(ctx, messages)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.SeedKey, log.Named("queue"))
		jobs = seed.NewRedisTracker(redisClient.Client, 24*time.Hour)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(log.Named("http"), "/healthz", "/metrics"))
	r.Use(httpmiddleware.Instrument())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
		ExposeHeaders:   []string{httpmiddleware.RequestIDHeader, "Location"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())

	var limiters []*httpmiddleware.TokenBucket
	if cfg.RateLimitPerMin > 0 {
		global := httpmiddleware.NewTokenBucket("global", cfg.RateLimitPerMin, cfg.RateLimitPerMin)
		limiters = append(limiters, global)
		r.Use(global.GinMiddleware())
	}
	var seedGuard []gin.HandlerFunc
	if cfg.SeedRatePerMin > 0 {
		seedLimit := httpmiddleware.NewTokenBucket("seed", httpmiddleware.SeedBurst, cfg.SeedRatePerMin)
		limiters = append(limiters, seedLimit)
		seedGuard = append(seedGuard, seedLimit.GinMiddleware())
	}
	go sweepLimiters(ctx, limiters)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/static", web.Static())

	deps := handler.Deps{
		Service: att,
		Seeder:  seeder,
		Queue:   q,
		Jobs:    jobs,
		DB:      db,
		Log:     log.Named("handler"),
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	handler.New(deps).Register(r, seedGuard...)

	// Seeding inserts 60k rows in one request, so the write timeout is generous.
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("queue", cfg.QueueBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}

func sweepLimiters(ctx context.Context, limiters []*httpmiddleware.TokenBucket) {
	if len(limiters) == 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				l.Sweep(10 * time.Minute)
			}
		}
	}
}
