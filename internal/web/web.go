// Package web holds the server-rendered pages and their static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/render"
	"github.com/pkg/errors"

	"collegeattendance/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	PageOverview   = "index"
	PageTeachers   = "teachers"
	PageStudents   = "students"
	PageAttendance = "attendance"
	PageError      = "error"
)

var pages = []string{PageOverview, PageTeachers, PageStudents, PageAttendance, PageError}

// Renderer implements gin's render.HTMLRender with one template set per page, each sharing
// the layout.
type Renderer struct {
	sets map[string]*template.Template
}

// NewRenderer parses every page against the layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{sets: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parse page %s", page)
		}
		r.sets[page] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender. Unknown names fall back to the error page.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.sets[name]
	if !ok {
		t = r.sets[PageError]
		data = ErrorPage{Message: "Page not found"}
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Static returns the embedded static assets rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

var funcs = template.FuncMap{
	"orDash":      orDash,
	"intOrDash":   intOrDash,
	"branch":      branchOrDefault,
	"studentLine": studentLine,
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "—"
	}
	return *s
}

func intOrDash(n *int) string {
	if n == nil {
		return "—"
	}
	return strconv.Itoa(*n)
}

func branchOrDefault(b *string) string {
	if b == nil || *b == "" {
		return model.DefaultBranch
	}
	return *b
}

// studentLine renders "Branch • Year N • Section", skipping missing parts.
func studentLine(s model.Student) string {
	var parts []string
	if s.Branch != nil && *s.Branch != "" {
		parts = append(parts, *s.Branch)
	}
	if s.Year != nil {
		parts = append(parts, "Year "+strconv.Itoa(*s.Year))
	}
	if s.Section != nil && *s.Section != "" {
		parts = append(parts, *s.Section)
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " • ")
}

const previewSize = 5

// OverviewPage is the landing page: counts plus the first few people of each roster.
type OverviewPage struct {
	TeacherCount int
	StudentCount int
	Teachers     []model.Teacher
	Students     []model.Student
}

// NewOverview trims the rosters to the preview size.
func NewOverview(teachers []model.Teacher, students []model.Student) OverviewPage {
	return OverviewPage{
		TeacherCount: len(teachers),
		StudentCount: len(students),
		Teachers:     teachers[:min(previewSize, len(teachers))],
		Students:     students[:min(previewSize, len(students))],
	}
}

type TeachersPage struct {
	Teachers []model.Teacher
}

type StudentsPage struct {
	Students []model.Student
}

// AttendancePage backs the daily attendance form.
type AttendancePage struct {
	Date            string
	Teachers        []model.Teacher
	Students        []model.Student
	TeacherBranches []string
	StudentBranches []string
}

// NewAttendance builds the form for date (YYYY-MM-DD).
func NewAttendance(date string, teachers []model.Teacher, students []model.Student) AttendancePage {
	tb := make([]*string, len(teachers))
	for i := range teachers {
		tb[i] = teachers[i].Branch
	}
	sb := make([]*string, len(students))
	for i := range students {
		sb[i] = students[i].Branch
	}
	return AttendancePage{
		Date:            date,
		Teachers:        teachers,
		Students:        students,
		TeacherBranches: Branches(tb),
		StudentBranches: Branches(sb),
	}
}

// Branches returns the sorted distinct branch labels, missing ones shown as the default branch.
func Branches(branches []*string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range branches {
		label := branchOrDefault(b)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

type ErrorPage struct {
	Message string
}
