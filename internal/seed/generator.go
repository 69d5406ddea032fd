package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"collegeattendance/internal/model"
)

var (
	firstNames = []string{"Aarav", "Ishaan", "Riya", "Kavya", "Arjun", "Meera", "Vihaan", "Anaya", "Rohan", "Sanya"}
	lastNames  = []string{"Sharma", "Patel", "Reddy", "Nair", "Khan", "Singh", "Verma", "Das", "Ghosh", "Iyer"}
	branches   = []string{"CSE", "IT", "ECE", "EEE", "MECH", "CIVIL", "AI/ML"}
	subjects   = []string{
		"Data Structures", "Algorithms", "Thermodynamics", "Signals", "Networks",
		"OS", "DBMS", "Maths", "Physics", "Chemistry",
	}
	qualifications = []string{"B.Tech", "M.Tech", "PhD", "MSc"}
	sections       = []string{"A", "B", "C", "D"}
)

const day = 24 * time.Hour

// Generator produces plausible demo rows. All randomness comes from rng and all dates are
// relative to now, so a fixed seed and clock give identical output. Dates and check-ins are in
// UTC, the zone the API reads submitted times in.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator returns a generator drawing from rng with dates anchored at now.
func NewGenerator(rng *rand.Rand, now time.Time) *Generator {
	return &Generator{rng: rng, now: now.UTC()}
}

// NewRand returns a PCG-backed source. A zero seed derives one from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Teachers returns n teachers with unset identifiers.
func (g *Generator) Teachers(n int) []model.Teacher {
	out := make([]model.Teacher, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Teacher{
			FirstName:       pick(g.rng, firstNames),
			LastName:        pick(g.rng, lastNames),
			Gender:          model.Ptr(g.gender()),
			DOB:             model.Ptr(g.dateWithin(365 * 30)),
			Email:           model.Ptr(fmt.Sprintf("teacher%d@college.test", i+1)),
			Phone:           model.Ptr(phone("90000", i)),
			Address:         model.Ptr("Campus Housing"),
			Branch:          model.Ptr(pick(g.rng, branches)),
			Subject:         model.Ptr(pick(g.rng, subjects)),
			Qualification:   model.Ptr(pick(g.rng, qualifications)),
			ExperienceYears: model.Ptr(g.intBetween(1, 20)),
			Salary:          model.Ptr(g.intBetween(40_000, 120_000)),
			JoinDate:        model.Ptr(g.dateWithin(365 * 5)),
			Status:          model.StatusActive,
		})
	}
	return out
}

// Students returns n students with unset identifiers and roll numbers 1..n.
func (g *Generator) Students(n int) []model.Student {
	out := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Student{
			FirstName:     pick(g.rng, firstNames),
			LastName:      pick(g.rng, lastNames),
			Gender:        model.Ptr(g.gender()),
			DOB:           model.Ptr(g.dateWithin(365 * 22)),
			Email:         model.Ptr(fmt.Sprintf("student%d@college.test", i+1)),
			Phone:         model.Ptr(phone("80000", i)),
			Address:       model.Ptr("Dormitory"),
			Branch:        model.Ptr(pick(g.rng, branches)),
			Year:          model.Ptr(g.intBetween(1, 4)),
			Section:       model.Ptr(pick(g.rng, sections)),
			RollNumber:    model.Ptr(i + 1),
			AdmissionDate: model.Ptr(g.dateWithin(365 * 4)),
			ParentName:    model.Ptr(fmt.Sprintf("Parent %d", i+1)),
			ParentPhone:   model.Ptr(phone("70000", i)),
			ParentEmail:   model.Ptr(fmt.Sprintf("parent%d@mail.test", i+1)),
			Status:        model.StatusActive,
		})
	}
	return out
}

// TeacherAttendance returns n records, each referencing a uniformly chosen id from teacherIDs
// and dated within the trailing window. It returns nil when there is no teacher to reference.
func (g *Generator) TeacherAttendance(n int, teacherIDs []int64, windowDays int) []model.TeacherAttendance {
	if len(teacherIDs) == 0 {
		return nil
	}
	out := make([]model.TeacherAttendance, 0, n)
	for i := 0; i < n; i++ {
		date := g.dateWithin(windowDays)
		rec := model.TeacherAttendance{
			TeacherID: pick(g.rng, teacherIDs),
			Date:      date,
			Status:    g.status(0.1),
		}
		if g.rng.Float64() > 0.2 {
			rec.CheckInTime = model.Ptr(g.checkIn(date, 8, 11))
		}
		rec.IsLate = g.rng.Float64() > 0.85
		out = append(out, rec)
	}
	return out
}

// StudentAttendance is the student counterpart of TeacherAttendance.
func (g *Generator) StudentAttendance(n int, studentIDs []int64, windowDays int) []model.StudentAttendance {
	if len(studentIDs) == 0 {
		return nil
	}
	out := make([]model.StudentAttendance, 0, n)
	for i := 0; i < n; i++ {
		date := g.dateWithin(windowDays)
		rec := model.StudentAttendance{
			StudentID: pick(g.rng, studentIDs),
			Date:      date,
			Status:    g.status(0.15),
		}
		if g.rng.Float64() > 0.25 {
			rec.CheckInTime = model.Ptr(g.checkIn(date, 7, 10))
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) gender() string {
	if g.rng.Float64() > 0.5 {
		return "Male"
	}
	return "Female"
}

// status is Present unless the draw falls at or below absentRate.
func (g *Generator) status(absentRate float64) string {
	if g.rng.Float64() > absentRate {
		return model.StatusPresent
	}
	return model.StatusAbsent
}

func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// dateWithin returns a calendar date (midnight) between now-days and now inclusive.
func (g *Generator) dateWithin(days int) time.Time {
	offset := time.Duration(g.rng.Int64N(int64(days)*int64(day) + 1))
	t := g.now.Add(-offset)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (g *Generator) checkIn(date time.Time, fromHour, toHour int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		g.intBetween(fromHour, toHour), g.intBetween(0, 59), 0, 0, time.UTC)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// phone builds a ten digit number from a five digit prefix and the row index.
func phone(prefix string, i int) string {
	return fmt.Sprintf("%s%05d", prefix, (10_000+i)%100_000)
}
