package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collegeattendance/internal/attendance"
	"collegeattendance/internal/queue"
	"collegeattendance/internal/seed"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Healthy(ctx context.Context) bool
}

// Deps are the collaborators a Handler needs. Redis is nil when neither the roster cache nor
// the Redis queue is in use.
type Deps struct {
	Service *attendance.Service
	Seeder  seed.Runner
	Queue   queue.Queue
	Jobs    seed.Tracker
	DB      Pinger
	Redis   Pinger
	Log     *zap.Logger
	Now     func() time.Time
}

// Handler serves the JSON API and the HTML pages.
type Handler struct {
	svc    *attendance.Service
	seeder seed.Runner
	queue  queue.Queue
	jobs   seed.Tracker
	db     Pinger
	redis  Pinger
	log    *zap.Logger
	now    func() time.Time
}

// New builds a Handler. A nil Log is replaced by a no-op logger and a nil Now by time.Now.
func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{
		svc:    d.Service,
		seeder: d.Seeder,
		queue:  d.Queue,
		jobs:   d.Jobs,
		db:     d.DB,
		redis:  d.Redis,
		log:    d.Log,
		now:    d.Now,
	}
}

// Register mounts every route. seedGuard middlewares run in front of the seed endpoints only.
func (h *Handler) Register(r gin.IRouter, seedGuard ...gin.HandlerFunc) {
	r.GET("/healthz", h.Healthz)

	r.GET("/teachers-list", h.ListTeachers)
	r.GET("/students-list", h.ListStudents)
	r.POST("/attendance/teacher", h.CreateTeacherAttendance)
	r.POST("/attendance/student", h.CreateStudentAttendance)
	r.POST("/attendance/teacher/batch", h.CreateTeacherAttendanceBatch)
	r.POST("/attendance/student/batch", h.CreateStudentAttendanceBatch)

	seeding := r.Group("/seed-demo-data", seedGuard...)
	seeding.GET("", h.SeedDemoData)
	seeding.POST("/jobs", h.EnqueueSeedJob)
	seeding.GET("/jobs/:id", h.SeedJobStatus)

	r.GET("/", h.OverviewPage)
	r.GET("/teachers", h.TeachersPage)
	r.GET("/students", h.StudentsPage)
	r.GET("/attendance", h.AttendancePage)
}

// ---------- Health ----------

// Healthz reports database and, when configured, redis connectivity. Any failure is a 503.
func (h *Handler) Healthz(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{"status": "ok"}
	status := http.StatusOK

	dbOK := h.db != nil && h.db.Healthy(ctx)
	body["db"] = dbOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		redisOK := h.redis.Healthy(ctx)
		body["redis"] = redisOK
		if !redisOK {
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
