package main

import (
	"context"
	stdlog "log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"collegeattendance/internal/attendance"
	"collegeattendance/internal/config"
	"collegeattendance/internal/queue"
	"collegeattendance/internal/seed"
	"collegeattendance/internal/store"
)

// Worker consumes queued seed jobs from Redis and runs them one at a time.
func main() {
	cfg := config.Load()

	log, err := cfg.Logger()
	if err != nil {
		stdlog.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("worker")

	if cfg.QueueBackend == "memory" {
		log.Fatal("QUEUE_BACKEND=memory runs seed jobs inside the API process; the worker needs redis")
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Fatal("redis not reachable", zap.Error(err))
	}

	repo := attendance.NewRepository(db.Client)
	var opts []seed.Option
	if cfg.RosterCacheTTL > 0 {
		// The API caches rosters in the same redis; drop them once a run commits.
		cache := attendance.NewRedisCache(redisClient.Client, cfg.RosterCacheTTL)
		svc := attendance.NewService(repo, cache, log, cfg.BatchWorkers)
		opts = append(opts, seed.OnCommit(svc.InvalidateRosters))
	}
	seeder := seed.NewSeeder(repo, seed.Config(cfg.Seed), log, opts...)

	q := queue.NewRedisQueue(redisClient.Client, queue.SeedKey, log)
	jobs := seed.NewRedisTracker(redisClient.Client, 24*time.Hour)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for seed jobs", zap.String("queue", queue.SeedKey))
	seed.NewWorker(seeder, jobs, log).Run(ctx, messages)
	log.Info("worker stopped")
}
