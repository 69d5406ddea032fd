package seed

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeattendance/internal/model"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func fixedGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed+1)), fixedNow)
}

func TestGeneratorIsDeterministicForFixedSeed(t *testing.T) {
	a, b := fixedGenerator(7), fixedGenerator(7)

	assert.Equal(t, a.Teachers(5), b.Teachers(5))
	assert.Equal(t, a.Students(5), b.Students(5))
	assert.Equal(t,
		a.TeacherAttendance(50, []int64{1, 2, 3}, 120),
		b.TeacherAttendance(50, []int64{1, 2, 3}, 120))
}

func TestGeneratorTeachers(t *testing.T) {
	teachers := fixedGenerator(1).Teachers(20)
	require.Len(t, teachers, 20)

	for i, tc := range teachers {
		assert.Zero(t, tc.TeacherID)
		assert.Contains(t, firstNames, tc.FirstName)
		assert.Contains(t, lastNames, tc.LastName)
		assert.Contains(t, branches, *tc.Branch)
		assert.Contains(t, subjects, *tc.Subject)
		assert.Contains(t, qualifications, *tc.Qualification)
		assert.Contains(t, []string{"Male", "Female"}, *tc.Gender)
		assert.GreaterOrEqual(t, *tc.ExperienceYears, 1)
		assert.LessOrEqual(t, *tc.ExperienceYears, 20)
		assert.GreaterOrEqual(t, *tc.Salary, 40_000)
		assert.LessOrEqual(t, *tc.Salary, 120_000)
		assert.False(t, tc.JoinDate.After(fixedNow))
		assert.False(t, tc.JoinDate.Before(fixedNow.AddDate(0, 0, -365*5-1)))
		assert.Equal(t, model.StatusActive, tc.Status)
		if i == 0 {
			assert.Equal(t, "teacher1@college.test", *tc.Email)
			assert.Equal(t, "9000010000", *tc.Phone)
		}
	}
}

func TestGeneratorStudents(t *testing.T) {
	students := fixedGenerator(2).Students(100)
	require.Len(t, students, 100)

	for i, s := range students {
		assert.Equal(t, i+1, *s.RollNumber)
		assert.GreaterOrEqual(t, *s.Year, 1)
		assert.LessOrEqual(t, *s.Year, 4)
		assert.Contains(t, sections, *s.Section)
		assert.Len(t, *s.Phone, 10)
		assert.Len(t, *s.ParentPhone, 10)
	}
	assert.Equal(t, "Parent 100", *students[99].ParentName)
	assert.Equal(t, "parent100@mail.test", *students[99].ParentEmail)
	assert.Equal(t, "8000010099", *students[99].Phone)
}

func TestGeneratorAttendanceReferencesGivenIDs(t *testing.T) {
	gen := fixedGenerator(3)
	teacherIDs := []int64{11, 12, 13}
	studentIDs := []int64{101, 102}
	windowStart := time.Date(2023, 11, 16, 0, 0, 0, 0, time.UTC) // fixedNow - 120 days, at midnight

	teacherRows := gen.TeacherAttendance(2_000, teacherIDs, 120)
	require.Len(t, teacherRows, 2_000)
	present, withCheckIn := 0, 0
	for _, r := range teacherRows {
		assert.Contains(t, teacherIDs, r.TeacherID)
		assert.False(t, r.Date.Before(windowStart), r.Date)
		assert.False(t, r.Date.After(fixedNow))
		assert.Contains(t, []string{model.StatusPresent, model.StatusAbsent}, r.Status)
		if r.Status == model.StatusPresent {
			present++
		}
		if r.CheckInTime != nil {
			withCheckIn++
			assert.Equal(t, r.Date.YearDay(), r.CheckInTime.YearDay())
			assert.GreaterOrEqual(t, r.CheckInTime.Hour(), 8)
			assert.LessOrEqual(t, r.CheckInTime.Hour(), 11)
		}
	}
	// 90% present and 80% with check-in; wide margins keep this stable across seeds.
	assert.InDelta(t, 1_800, present, 150)
	assert.InDelta(t, 1_600, withCheckIn, 150)

	studentRows := gen.StudentAttendance(1_000, studentIDs, 120)
	require.Len(t, studentRows, 1_000)
	for _, r := range studentRows {
		assert.Contains(t, studentIDs, r.StudentID)
		if r.CheckInTime != nil {
			assert.GreaterOrEqual(t, r.CheckInTime.Hour(), 7)
			assert.LessOrEqual(t, r.CheckInTime.Hour(), 10)
		}
	}
}

func TestGeneratorDatesAreUTC(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 02:00 IST on the 16th is still the 15th in UTC.
	gen := NewGenerator(rand.New(rand.NewPCG(5, 6)), time.Date(2024, 3, 16, 2, 0, 0, 0, kolkata))

	rows := gen.TeacherAttendance(200, []int64{1}, 0)
	require.Len(t, rows, 200)
	for _, r := range rows {
		assert.Equal(t, time.UTC, r.Date.Location())
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r.Date)
		if r.CheckInTime != nil {
			assert.Equal(t, time.UTC, r.CheckInTime.Location())
			assert.Equal(t, 15, r.CheckInTime.Day())
		}
	}
}

func TestGeneratorAttendanceWithoutPeople(t *testing.T) {
	gen := fixedGenerator(4)
	assert.Nil(t, gen.TeacherAttendance(10, nil, 120))
	assert.Nil(t, gen.StudentAttendance(10, []int64{}, 120))
}

func TestChunks(t *testing.T) {
	rows := make([]int, 2_500)
	got := chunks(rows, 1_000)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 1_000)
	assert.Len(t, got[1], 1_000)
	assert.Len(t, got[2], 500)
	assert.Empty(t, chunks([]int{}, 10))
}
