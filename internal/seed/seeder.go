package seed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"collegeattendance/internal/metrics"
	"collegeattendance/internal/model"
)

// Batch is a transactional handle used for one seed run. Nothing is visible to readers
// until Commit succeeds.
type Batch interface {
	DeleteAll(ctx context.Context) error
	InsertTeachers(ctx context.Context, rows []model.Teacher) ([]int64, error)
	InsertStudents(ctx context.Context, rows []model.Student) ([]int64, error)
	InsertTeacherAttendance(ctx context.Context, rows []model.TeacherAttendance) error
	InsertStudentAttendance(ctx context.Context, rows []model.StudentAttendance) error
	Commit() error
	Rollback() error
}

// Loader opens seed batches.
type Loader interface {
	BeginSeed(ctx context.Context) (Batch, error)
}

// Config sets the dataset size.
type Config struct {
	Teachers          int
	Students          int
	TeacherAttendance int
	StudentAttendance int
	WindowDays        int
	BatchSize         int
	RandomSeed        uint64
}

// DefaultConfig is the stock demo dataset.
func DefaultConfig() Config {
	return Config{
		Teachers:          20,
		Students:          100,
		TeacherAttendance: 10_000,
		StudentAttendance: 50_000,
		WindowDays:        120,
		BatchSize:         1_000,
	}
}

// Result reports how many rows a run inserted.
type Result struct {
	Teachers          int `json:"teachers"`
	Students          int `json:"students"`
	TeacherAttendance int `json:"teacherAttendance"`
	StudentAttendance int `json:"studentAttendance"`
}

// Option customises a Seeder.
type Option func(*Seeder)

// WithGenerator replaces the per-run generator factory.
func WithGenerator(fn func() *Generator) Option {
	return func(s *Seeder) { s.newGenerator = fn }
}

// OnCommit registers a hook run after a successful commit.
func OnCommit(fn func(ctx context.Context)) Option {
	return func(s *Seeder) { s.afterCommit = append(s.afterCommit, fn) }
}

// Seeder wipes and repopulates the four tables.
type Seeder struct {
	loader       Loader
	cfg          Config
	log          *zap.Logger
	newGenerator func() *Generator
	afterCommit  []func(ctx context.Context)
}

// NewSeeder builds a seeder. Non-positive window or batch sizes use the defaults.
func NewSeeder(loader Loader, cfg Config, log *zap.Logger, opts ...Option) *Seeder {
	def := DefaultConfig()
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Seeder{loader: loader, cfg: cfg, log: log}
	s.newGenerator = func() *Generator {
		return NewGenerator(NewRand(cfg.RandomSeed), time.Now().UTC())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run replaces all roster and attendance data with freshly generated rows.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	batch, err := s.loader.BeginSeed(ctx)
	if err != nil {
		metrics.SeedRuns.WithLabelValues("failed").Inc()
		return Result{}, errors.Wrap(err, "begin seed")
	}

	res, err := s.load(ctx, batch, s.newGenerator())
	if err != nil {
		if rbErr := batch.Rollback(); rbErr != nil {
			s.log.Warn("seed rollback failed", zap.Error(rbErr))
		}
		metrics.SeedRuns.WithLabelValues("failed").Inc()
		return Result{}, err
	}
	if err := batch.Commit(); err != nil {
		metrics.SeedRuns.WithLabelValues("failed").Inc()
		return Result{}, errors.Wrap(err, "commit seed")
	}

	for _, hook := range s.afterCommit {
		hook(ctx)
	}

	elapsed := time.Since(start)
	metrics.SeedRuns.WithLabelValues("succeeded").Inc()
	metrics.SeedDuration.Observe(elapsed.Seconds())
	metrics.SeedRows.WithLabelValues(model.TableTeachers).Add(float64(res.Teachers))
	metrics.SeedRows.WithLabelValues(model.TableStudents).Add(float64(res.Students))
	metrics.SeedRows.WithLabelValues(model.TableTeacherAttendance).Add(float64(res.TeacherAttendance))
	metrics.SeedRows.WithLabelValues(model.TableStudentAttendance).Add(float64(res.StudentAttendance))
	s.log.Info("demo data seeded",
		zap.Int("teachers", res.Teachers),
		zap.Int("students", res.Students),
		zap.Int("teacher_attendance", res.TeacherAttendance),
		zap.Int("student_attendance", res.StudentAttendance),
		zap.Duration("took", elapsed),
	)
	return res, nil
}

func (s *Seeder) load(ctx context.Context, batch Batch, gen *Generator) (Result, error) {
	if err := batch.DeleteAll(ctx); err != nil {
		return Result{}, errors.Wrap(err, "clear tables")
	}

	teacherIDs, err := batch.InsertTeachers(ctx, gen.Teachers(s.cfg.Teachers))
	if err != nil {
		return Result{}, errors.Wrap(err, "insert teachers")
	}
	studentIDs, err := batch.InsertStudents(ctx, gen.Students(s.cfg.Students))
	if err != nil {
		return Result{}, errors.Wrap(err, "insert students")
	}

	teacherRows := gen.TeacherAttendance(s.cfg.TeacherAttendance, teacherIDs, s.cfg.WindowDays)
	for _, chunk := range chunks(teacherRows, s.cfg.BatchSize) {
		if err := batch.InsertTeacherAttendance(ctx, chunk); err != nil {
			return Result{}, errors.Wrap(err, "insert teacher attendance")
		}
	}
	studentRows := gen.StudentAttendance(s.cfg.StudentAttendance, studentIDs, s.cfg.WindowDays)
	for _, chunk := range chunks(studentRows, s.cfg.BatchSize) {
		if err := batch.InsertStudentAttendance(ctx, chunk); err != nil {
			return Result{}, errors.Wrap(err, "insert student attendance")
		}
	}

	return Result{
		Teachers:          len(teacherIDs),
		Students:          len(studentIDs),
		TeacherAttendance: len(teacherRows),
		StudentAttendance: len(studentRows),
	}, nil
}

func chunks[T any](rows []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
