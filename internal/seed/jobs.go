package seed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"collegeattendance/internal/metrics"
	"collegeattendance/internal/queue"
)

// JobState is the lifecycle position of a queued seed run.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job is the externally visible status of a queued seed run.
type Job struct {
	ID        string    `json:"job_id"`
	State     JobState  `json:"status"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	Stale     bool      `json:"stale,omitempty"`
}

// IsStale reports whether a queued or running job has not moved for longer than after. This is
// what a worker that died mid-run, or a redis queue with no worker consuming it, leaves behind.
func (j Job) IsStale(now time.Time, after time.Duration) bool {
	if j.State != JobQueued && j.State != JobRunning {
		return false
	}
	return now.Sub(j.UpdatedAt) > after
}

// Tracker stores job status.
type Tracker interface {
	Save(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, bool, error)
}

// RedisTracker keeps job status as JSON strings with a TTL.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker returns a tracker whose entries expire after ttl.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTracker{client: client, ttl: ttl}
}

func jobKey(id string) string { return "seed:job:" + id }

func (t *RedisTracker) Save(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "encode job")
	}
	return errors.Wrap(t.client.Set(ctx, jobKey(job.ID), payload, t.ttl).Err(), "save job")
}

func (t *RedisTracker) Get(ctx context.Context, id string) (Job, bool, error) {
	raw, err := t.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, errors.Wrap(err, "load job")
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, false, errors.Wrap(err, "decode job")
	}
	return job, true, nil
}

// MemoryTracker is used with the in-memory queue, where API and worker share a process.
type MemoryTracker struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{jobs: make(map[string]Job)}
}

func (t *MemoryTracker) Save(_ context.Context, job Job) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[job.ID] = job
	return nil
}

func (t *MemoryTracker) Get(_ context.Context, id string) (Job, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	return job, ok, nil
}

// Enqueue records a queued job and publishes it.
func Enqueue(ctx context.Context, q queue.Queue, tracker Tracker) (Job, error) {
	msg := queue.NewMessage(queue.TypeSeed, nil)
	job := Job{ID: msg.ID, State: JobQueued, UpdatedAt: msg.EnqueuedAt}
	if err := tracker.Save(ctx, job); err != nil {
		return Job{}, err
	}
	if err := q.Publish(ctx, msg); err != nil {
		job.State, job.Error, job.UpdatedAt = JobFailed, "could not enqueue job", time.Now().UTC()
		_ = tracker.Save(ctx, job)
		return Job{}, errors.Wrap(err, "publish seed job")
	}
	metrics.SeedJobs.WithLabelValues(string(JobQueued)).Inc()
	return job, nil
}

// Runner executes one seed run.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Worker executes queued seed jobs one at a time.
type Worker struct {
	runner  Runner
	tracker Tracker
	log     *zap.Logger
}

func NewWorker(runner Runner, tracker Tracker, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{runner: runner, tracker: tracker, log: log}
}

// Run processes messages until the channel closes.
func (w *Worker) Run(ctx context.Context, messages <-chan queue.Message) {
	for msg := range messages {
		if msg.Type != queue.TypeSeed {
			w.log.Debug("ignoring message", zap.String("type", msg.Type), zap.String("id", msg.ID))
			continue
		}
		w.handle(ctx, msg)
	}
}

func (w *Worker) handle(ctx context.Context, msg queue.Message) {
	log := w.log.With(zap.String("job_id", msg.ID))
	w.save(ctx, log, Job{ID: msg.ID, State: JobRunning, UpdatedAt: time.Now().UTC()})
	log.Info("seed job started", zap.Duration("queued_for", time.Since(msg.EnqueuedAt)))

	res, err := w.runner.Run(ctx)
	if err != nil {
		log.Error("seed job failed", zap.Error(err))
		w.save(ctx, log, Job{ID: msg.ID, State: JobFailed, Error: "Unable to seed mock data", UpdatedAt: time.Now().UTC()})
		return
	}
	w.save(ctx, log, Job{ID: msg.ID, State: JobSucceeded, Result: &res, UpdatedAt: time.Now().UTC()})
}

func (w *Worker) save(ctx context.Context, log *zap.Logger, job Job) {
	metrics.SeedJobs.WithLabelValues(string(job.State)).Inc()
	if err := w.tracker.Save(ctx, job); err != nil {
		log.Warn("could not record job status", zap.String("status", string(job.State)), zap.Error(err))
	}
}
