package model

import "time"

// Attendance and roster status values.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusActive  = "Active"
)

// Table names.
const (
	TableTeachers          = "teachers"
	TableStudents          = "students"
	TableTeacherAttendance = "teacher_attendance"
	TableStudentAttendance = "student_attendance"
)

// DefaultBranch labels people without a branch on the attendance form.
const DefaultBranch = "General"

// DateLayout is the calendar-date wire format used by the attendance form.
const DateLayout = "2006-01-02"

// Teacher is a row of the teacher roster.
type Teacher struct {
	TeacherID       int64      `json:"TeacherID"`
	FirstName       string     `json:"FirstName"`
	LastName        string     `json:"LastName"`
	Gender          *string    `json:"Gender"`
	DOB             *time.Time `json:"DOB"`
	Email           *string    `json:"Email"`
	Phone           *string    `json:"Phone"`
	Address         *string    `json:"Address"`
	Branch          *string    `json:"Branch"`
	Subject         *string    `json:"Subject"`
	Qualification   *string    `json:"Qualification"`
	ExperienceYears *int       `json:"ExperienceYears"`
	Salary          *int       `json:"Salary"`
	JoinDate        *time.Time `json:"JoinDate"`
	Status          string     `json:"Status"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string { return t.FirstName + " " + t.LastName }

// Student is a row of the student roster.
type Student struct {
	StudentID     int64      `json:"StudentID"`
	FirstName     string     `json:"FirstName"`
	LastName      string     `json:"LastName"`
	Gender        *string    `json:"Gender"`
	DOB           *time.Time `json:"DOB"`
	Email         *string    `json:"Email"`
	Phone         *string    `json:"Phone"`
	Address       *string    `json:"Address"`
	Branch        *string    `json:"Branch"`
	Year          *int       `json:"Year"`
	Section       *string    `json:"Section"`
	RollNumber    *int       `json:"RollNumber"`
	AdmissionDate *time.Time `json:"AdmissionDate"`
	ParentName    *string    `json:"ParentName"`
	ParentPhone   *string    `json:"ParentPhone"`
	ParentEmail   *string    `json:"ParentEmail"`
	Status        string     `json:"Status"`
}

// FullName joins first and last name.
func (s Student) FullName() string { return s.FirstName + " " + s.LastName }

// TeacherAttendance is one check-in record for a teacher. Records are append-only.
type TeacherAttendance struct {
	ID          int64      `json:"ID"`
	TeacherID   int64      `json:"TeacherID"`
	Date        time.Time  `json:"Date"`
	Status      string     `json:"Status"`
	CheckInTime *time.Time `json:"CheckInTime"`
	IsLate      bool       `json:"IsLate"`
}

// StudentAttendance is one check-in record for a student. Records are append-only.
type StudentAttendance struct {
	ID          int64      `json:"ID"`
	StudentID   int64      `json:"StudentID"`
	Date        time.Time  `json:"Date"`
	Status      string     `json:"Status"`
	CheckInTime *time.Time `json:"CheckInTime"`
}

// Ptr returns a pointer to v; handy for optional columns.
func Ptr[T any](v T) *T { return &v }
