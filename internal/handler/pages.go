package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/model"
	"collegeattendance/internal/web"
)

// OverviewPage renders the landing page with roster counts.
func (h *Handler) OverviewPage(c *gin.Context) {
	ctx := c.Request.Context()
	teachers, err := h.svc.Teachers(ctx)
	if err != nil {
		h.pageError(c, "Unable to load teachers.")
		return
	}
	students, err := h.svc.Students(ctx)
	if err != nil {
		h.pageError(c, "Unable to load students.")
		return
	}
	c.HTML(http.StatusOK, web.PageOverview, web.NewOverview(teachers, students))
}

// TeachersPage renders the full teacher table.
func (h *Handler) TeachersPage(c *gin.Context) {
	teachers, err := h.svc.Teachers(c.Request.Context())
	if err != nil {
		h.pageError(c, "Unable to load teachers.")
		return
	}
	c.HTML(http.StatusOK, web.PageTeachers, web.TeachersPage{Teachers: teachers})
}

// StudentsPage renders the full student table.
func (h *Handler) StudentsPage(c *gin.Context) {
	students, err := h.svc.Students(c.Request.Context())
	if err != nil {
		h.pageError(c, "Unable to load students.")
		return
	}
	c.HTML(http.StatusOK, web.PageStudents, web.StudentsPage{Students: students})
}

// AttendancePage renders the daily form; the date picker defaults to today.
func (h *Handler) AttendancePage(c *gin.Context) {
	ctx := c.Request.Context()
	teachers, err := h.svc.Teachers(ctx)
	if err != nil {
		h.pageError(c, "Unable to load teachers.")
		return
	}
	students, err := h.svc.Students(ctx)
	if err != nil {
		h.pageError(c, "Unable to load students.")
		return
	}
	today := h.now().Format(model.DateLayout)
	c.HTML(http.StatusOK, web.PageAttendance, web.NewAttendance(today, teachers, students))
}

func (h *Handler) pageError(c *gin.Context, msg string) {
	c.HTML(http.StatusInternalServerError, web.PageError, web.ErrorPage{Message: msg})
}
