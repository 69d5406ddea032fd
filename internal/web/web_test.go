package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeattendance/internal/model"
)

func renderPage(t *testing.T, name string, data any) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestOverviewShowsCountsAndPreview(t *testing.T) {
	teachers := make([]model.Teacher, 7)
	for i := range teachers {
		teachers[i] = model.Teacher{TeacherID: int64(i + 1), FirstName: "T", LastName: string(rune('A' + i))}
	}
	students := []model.Student{{
		StudentID: 1, FirstName: "Mira", LastName: "Das",
		Branch: model.Ptr("ECE"), Year: model.Ptr(2), Section: model.Ptr("B"),
	}}

	page := NewOverview(teachers, students)
	assert.Equal(t, 7, page.TeacherCount)
	assert.Len(t, page.Teachers, 5)

	html := renderPage(t, PageOverview, page)
	assert.Contains(t, html, `id="teacher-count">7<`)
	assert.Contains(t, html, "T E")
	assert.NotContains(t, html, "T F")
	assert.Contains(t, html, "ECE • Year 2 • B")
}

func TestTeachersTableDashesMissingValues(t *testing.T) {
	html := renderPage(t, PageTeachers, TeachersPage{Teachers: []model.Teacher{
		{TeacherID: 1, FirstName: "Asha", LastName: "Rao", Status: model.StatusActive},
	}})
	assert.Contains(t, html, "Asha Rao")
	assert.Contains(t, html, "—")

	empty := renderPage(t, PageStudents, StudentsPage{})
	assert.Contains(t, empty, "No students found.")
}

func TestAttendanceFormBranches(t *testing.T) {
	page := NewAttendance("2024-01-10",
		[]model.Teacher{{TeacherID: 1, Branch: model.Ptr("MECH")}, {TeacherID: 2}, {TeacherID: 3, Branch: model.Ptr("CSE")}},
		nil)
	assert.Equal(t, []string{"CSE", "General", "MECH"}, page.TeacherBranches)
	assert.Empty(t, page.StudentBranches)

	html := renderPage(t, PageAttendance, page)
	assert.Contains(t, html, `value="2024-01-10"`)
	assert.Contains(t, html, `data-person="2" data-branch="General"`)
}

func TestUnknownPageFallsBackToError(t *testing.T) {
	html := renderPage(t, "nope", nil)
	assert.Contains(t, html, "Page not found")
}

func TestStaticServesScript(t *testing.T) {
	srv := http.FileServer(Static())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/attendance/")
}
