package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeattendance/internal/model"
)

// memLoader keeps committed tables in memory and mimics transactional visibility.
type memLoader struct {
	teachers          []model.Teacher
	students          []model.Student
	teacherAttendance []model.TeacherAttendance
	studentAttendance []model.StudentAttendance
	nextID            int64

	calls      []string
	chunkSizes []int
	failOn     string
}

func (m *memLoader) BeginSeed(context.Context) (Batch, error) {
	if m.failOn == "begin" {
		return nil, errors.New("connection refused")
	}
	return &memBatch{m: m}, nil
}

type memBatch struct {
	m                 *memLoader
	teachers          []model.Teacher
	students          []model.Student
	teacherAttendance []model.TeacherAttendance
	studentAttendance []model.StudentAttendance
	done              bool
}

func (b *memBatch) step(name string) error {
	b.m.calls = append(b.m.calls, name)
	if b.m.failOn == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (b *memBatch) DeleteAll(context.Context) error {
	if err := b.step("delete"); err != nil {
		return err
	}
	b.teachers, b.students, b.teacherAttendance, b.studentAttendance = nil, nil, nil, nil
	return nil
}

func (b *memBatch) InsertTeachers(_ context.Context, rows []model.Teacher) ([]int64, error) {
	if err := b.step("teachers"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		b.m.nextID++
		r.TeacherID = b.m.nextID
		b.teachers = append(b.teachers, r)
		ids = append(ids, r.TeacherID)
	}
	return ids, nil
}

func (b *memBatch) InsertStudents(_ context.Context, rows []model.Student) ([]int64, error) {
	if err := b.step("students"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		b.m.nextID++
		r.StudentID = b.m.nextID
		b.students = append(b.students, r)
		ids = append(ids, r.StudentID)
	}
	return ids, nil
}

func (b *memBatch) InsertTeacherAttendance(_ context.Context, rows []model.TeacherAttendance) error {
	if err := b.step("teacher_attendance"); err != nil {
		return err
	}
	b.m.chunkSizes = append(b.m.chunkSizes, len(rows))
	b.teacherAttendance = append(b.teacherAttendance, rows...)
	return nil
}

func (b *memBatch) InsertStudentAttendance(_ context.Context, rows []model.StudentAttendance) error {
	if err := b.step("student_attendance"); err != nil {
		return err
	}
	b.m.chunkSizes = append(b.m.chunkSizes, len(rows))
	b.studentAttendance = append(b.studentAttendance, rows...)
	return nil
}

func (b *memBatch) Commit() error {
	if err := b.step("commit"); err != nil {
		return err
	}
	b.done = true
	b.m.teachers, b.m.students = b.teachers, b.students
	b.m.teacherAttendance, b.m.studentAttendance = b.teacherAttendance, b.studentAttendance
	return nil
}

func (b *memBatch) Rollback() error {
	b.m.calls = append(b.m.calls, "rollback")
	return nil
}

func newTestSeeder(loader Loader, cfg Config, opts ...Option) *Seeder {
	opts = append([]Option{WithGenerator(func() *Generator { return fixedGenerator(99) })}, opts...)
	return NewSeeder(loader, cfg, nil, opts...)
}

func TestSeederRunInsertsConfiguredCounts(t *testing.T) {
	loader := &memLoader{}
	res, err := newTestSeeder(loader, DefaultConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Teachers: 20, Students: 100, TeacherAttendance: 10_000, StudentAttendance: 50_000}, res)
	assert.Len(t, loader.teachers, 20)
	assert.Len(t, loader.students, 100)
	assert.Len(t, loader.teacherAttendance, 10_000)
	assert.Len(t, loader.studentAttendance, 50_000)
	for _, size := range loader.chunkSizes {
		assert.LessOrEqual(t, size, 1_000)
	}
	assert.Len(t, loader.chunkSizes, 60)
}

func TestSeederAttendanceReferencesSeededPeople(t *testing.T) {
	loader := &memLoader{}
	_, err := newTestSeeder(loader, DefaultConfig()).Run(context.Background())
	require.NoError(t, err)

	teacherIDs := map[int64]bool{}
	for _, tc := range loader.teachers {
		teacherIDs[tc.TeacherID] = true
	}
	for _, r := range loader.teacherAttendance {
		require.True(t, teacherIDs[r.TeacherID], "dangling teacher id %d", r.TeacherID)
	}
	studentIDs := map[int64]bool{}
	for _, s := range loader.students {
		studentIDs[s.StudentID] = true
	}
	for _, r := range loader.studentAttendance {
		require.True(t, studentIDs[r.StudentID], "dangling student id %d", r.StudentID)
	}
}

func TestSeederRunTwiceReplacesData(t *testing.T) {
	loader := &memLoader{}
	seeder := newTestSeeder(loader, DefaultConfig())

	for i := 0; i < 2; i++ {
		_, err := seeder.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, loader.teachers, 20)
		assert.Len(t, loader.students, 100)
		assert.Len(t, loader.teacherAttendance, 10_000)
		assert.Len(t, loader.studentAttendance, 50_000)
	}
	// Identifiers keep increasing across runs: 1..120 went to the first run.
	assert.Equal(t, int64(121), loader.teachers[0].TeacherID)
}

func TestSeederDeletesBeforeInserting(t *testing.T) {
	loader := &memLoader{}
	cfg := Config{Teachers: 2, Students: 3, TeacherAttendance: 5, StudentAttendance: 7, BatchSize: 4}
	_, err := newTestSeeder(loader, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"delete", "teachers", "students",
		"teacher_attendance", "teacher_attendance",
		"student_attendance", "student_attendance",
		"commit",
	}, loader.calls)
	assert.Equal(t, []int{4, 1, 4, 3}, loader.chunkSizes)
}

func TestSeederRollsBackOnFailure(t *testing.T) {
	loader := &memLoader{}
	seeder := newTestSeeder(loader, DefaultConfig())
	_, err := seeder.Run(context.Background())
	require.NoError(t, err)

	loader.failOn = "student_attendance"
	loader.calls = nil
	_, err = seeder.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert student attendance")
	assert.Equal(t, "rollback", loader.calls[len(loader.calls)-1])

	// The committed dataset from the first run is untouched.
	assert.Len(t, loader.teachers, 20)
	assert.Len(t, loader.studentAttendance, 50_000)
}

func TestSeederBeginFailure(t *testing.T) {
	_, err := newTestSeeder(&memLoader{failOn: "begin"}, DefaultConfig()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin seed")
}

func TestSeederRunsCommitHooksOnlyOnSuccess(t *testing.T) {
	hooks := 0
	loader := &memLoader{}
	seeder := newTestSeeder(loader, Config{Teachers: 1, Students: 1}, OnCommit(func(context.Context) { hooks++ }))

	_, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hooks)

	loader.failOn = "commit"
	_, err = seeder.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, hooks)
}
