package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"collegeattendance/internal/metrics"
	"collegeattendance/internal/model"
)

// ErrMissingFields is returned when a check-in lacks the person id, date or status.
var ErrMissingFields = errors.New("missing required fields")

// Store is the data access the service needs.
type Store interface {
	ListTeachers(ctx context.Context) ([]model.Teacher, error)
	ListStudents(ctx context.Context) ([]model.Student, error)
	InsertTeacherAttendance(ctx context.Context, rec model.TeacherAttendance) (model.TeacherAttendance, error)
	InsertStudentAttendance(ctx context.Context, rec model.StudentAttendance) (model.StudentAttendance, error)
}

// TeacherCheckIn is the input for one teacher attendance record.
type TeacherCheckIn struct {
	TeacherID   int64
	Date        time.Time
	Status      string
	CheckInTime *time.Time
	IsLate      bool
}

// StudentCheckIn is the input for one student attendance record.
type StudentCheckIn struct {
	StudentID   int64
	Date        time.Time
	Status      string
	CheckInTime *time.Time
}

// Outcome is the per-person result of a batch submission.
type Outcome[T any] struct {
	PersonID int64
	Record   *T
	Err      error
}

// Service coordinates roster reads and attendance writes.
type Service struct {
	store        Store
	cache        RosterCache
	log          *zap.Logger
	batchWorkers int
}

// NewService creates a service. cache may be nil to disable roster caching.
func NewService(store Store, cache RosterCache, log *zap.Logger, batchWorkers int) *Service {
	if batchWorkers <= 0 {
		batchWorkers = 8
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, cache: cache, log: log, batchWorkers: batchWorkers}
}

// Teachers returns the teacher roster in ascending id order.
func (s *Service) Teachers(ctx context.Context) ([]model.Teacher, error) {
	return cachedRoster(ctx, s, rosterTeachers, s.store.ListTeachers)
}

// Students returns the student roster in ascending id order.
func (s *Service) Students(ctx context.Context) ([]model.Student, error) {
	return cachedRoster(ctx, s, rosterStudents, s.store.ListStudents)
}

// InvalidateRosters drops cached rosters; called after the tables are reseeded.
func (s *Service) InvalidateRosters(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, rosterTeachers, rosterStudents); err != nil {
		s.log.Warn("roster cache invalidation failed", zap.Error(err))
	}
}

func cachedRoster[T any](ctx context.Context, s *Service, roster string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var cached []T
		hit, err := s.cache.Get(ctx, roster, &cached)
		switch {
		case err != nil:
			metrics.RosterCacheLookups.WithLabelValues(roster, "error").Inc()
			s.log.Warn("roster cache read failed", zap.String("roster", roster), zap.Error(err))
		case hit:
			metrics.RosterCacheLookups.WithLabelValues(roster, "hit").Inc()
			return cached, nil
		default:
			metrics.RosterCacheLookups.WithLabelValues(roster, "miss").Inc()
		}
	}

	list, err := load(ctx)
	if err != nil {
		s.log.Error("roster query failed", zap.String("roster", roster), zap.Error(err))
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, roster, list); err != nil {
			s.log.Warn("roster cache write failed", zap.String("roster", roster), zap.Error(err))
		}
	}
	return list, nil
}

// RecordTeacher persists one teacher check-in.
func (s *Service) RecordTeacher(ctx context.Context, in TeacherCheckIn) (model.TeacherAttendance, error) {
	if in.TeacherID == 0 || in.Date.IsZero() || in.Status == "" {
		metrics.AttendanceFailed.WithLabelValues("teacher", "invalid").Inc()
		return model.TeacherAttendance{}, ErrMissingFields
	}
	rec, err := s.store.InsertTeacherAttendance(ctx, model.TeacherAttendance{
		TeacherID:   in.TeacherID,
		Date:        in.Date,
		Status:      in.Status,
		CheckInTime: in.CheckInTime,
		IsLate:      in.IsLate,
	})
	if err != nil {
		metrics.AttendanceFailed.WithLabelValues("teacher", "store").Inc()
		s.log.Error("create teacher attendance failed", zap.Int64("teacher_id", in.TeacherID), zap.Error(err))
		return model.TeacherAttendance{}, err
	}
	metrics.AttendanceRecorded.WithLabelValues("teacher").Inc()
	return rec, nil
}

// RecordStudent persists one student check-in.
func (s *Service) RecordStudent(ctx context.Context, in StudentCheckIn) (model.StudentAttendance, error) {
	if in.StudentID == 0 || in.Date.IsZero() || in.Status == "" {
		metrics.AttendanceFailed.WithLabelValues("student", "invalid").Inc()
		return model.StudentAttendance{}, ErrMissingFields
	}
	rec, err := s.store.InsertStudentAttendance(ctx, model.StudentAttendance{
		StudentID:   in.StudentID,
		Date:        in.Date,
		Status:      in.Status,
		CheckInTime: in.CheckInTime,
	})
	if err != nil {
		metrics.AttendanceFailed.WithLabelValues("student", "store").Inc()
		s.log.Error("create student attendance failed", zap.Int64("student_id", in.StudentID), zap.Error(err))
		return model.StudentAttendance{}, err
	}
	metrics.AttendanceRecorded.WithLabelValues("student").Inc()
	return rec, nil
}

// RecordTeacherBatch records every entry for date independently. Outcomes keep entry order.
func (s *Service) RecordTeacherBatch(ctx context.Context, date time.Time, entries []TeacherCheckIn) []Outcome[model.TeacherAttendance] {
	return runBatch(ctx, s.batchWorkers, entries,
		func(e TeacherCheckIn) int64 { return e.TeacherID },
		func(ctx context.Context, e TeacherCheckIn) (model.TeacherAttendance, error) {
			e.Date = date
			return s.RecordTeacher(ctx, e)
		})
}

// RecordStudentBatch records every entry for date independently. Outcomes keep entry order.
func (s *Service) RecordStudentBatch(ctx context.Context, date time.Time, entries []StudentCheckIn) []Outcome[model.StudentAttendance] {
	return runBatch(ctx, s.batchWorkers, entries,
		func(e StudentCheckIn) int64 { return e.StudentID },
		func(ctx context.Context, e StudentCheckIn) (model.StudentAttendance, error) {
			e.Date = date
			return s.RecordStudent(ctx, e)
		})
}

func runBatch[In, Out any](ctx context.Context, workers int, entries []In, id func(In) int64, record func(context.Context, In) (Out, error)) []Outcome[Out] {
	results := make([]Outcome[Out], len(entries))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, entry := range entries {
		g.Go(func() error {
			out, err := record(ctx, entry)
			results[i] = Outcome[Out]{PersonID: id(entry), Err: err}
			if err == nil {
				results[i].Record = &out
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
