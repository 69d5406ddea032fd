package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"collegeattendance/internal/attendance"
	"collegeattendance/internal/model"
)

// ---------- Rosters ----------

// ListTeachers returns the teacher roster ordered by id.
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.svc.Teachers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch teachers"})
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// ListStudents returns the student roster ordered by id.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.svc.Students(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

// ---------- Single check-in ----------

// personID is a teacher or student id sent either as a JSON number or as a numeric string.
// An empty string or null decodes to 0, which the required binding then reports as missing.
type personID int64

func (p *personID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.Errorf("id %s is not an integer", b)
	}
	*p = personID(n)
	return nil
}

type teacherAttendanceRequest struct {
	TeacherID   personID `json:"TeacherID" binding:"required"`
	Date        string   `json:"Date" binding:"required"`
	Status      string   `json:"Status" binding:"required"`
	CheckInTime *string  `json:"CheckInTime"`
	IsLate      bool     `json:"IsLate"`
}

type studentAttendanceRequest struct {
	StudentID   personID `json:"StudentID" binding:"required"`
	Date        string   `json:"Date" binding:"required"`
	Status      string   `json:"Status" binding:"required"`
	CheckInTime *string  `json:"CheckInTime"`
}

const (
	teacherRequired = "TeacherID, Date, and Status are required"
	studentRequired = "StudentID, Date, and Status are required"
)

// CreateTeacherAttendance records one teacher check-in.
func (h *Handler) CreateTeacherAttendance(c *gin.Context) {
	var req teacherAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err, teacherRequired)
		return
	}
	in, err := teacherCheckIn(int64(req.TeacherID), req.Date, req.Status, req.CheckInTime, req.IsLate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.RecordTeacher(c.Request.Context(), in)
	switch {
	case errors.Is(err, attendance.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": teacherRequired})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create teacher attendance"})
	default:
		c.JSON(http.StatusCreated, rec)
	}
}

// CreateStudentAttendance records one student check-in.
func (h *Handler) CreateStudentAttendance(c *gin.Context) {
	var req studentAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err, studentRequired)
		return
	}
	in, err := studentCheckIn(int64(req.StudentID), req.Date, req.Status, req.CheckInTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.RecordStudent(c.Request.Context(), in)
	switch {
	case errors.Is(err, attendance.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": studentRequired})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create student attendance"})
	default:
		c.JSON(http.StatusCreated, rec)
	}
}

// badBinding maps a bind failure to 400: missing fields get the required message, anything
// else (malformed JSON, wrong types) a generic one.
func badBinding(c *gin.Context, err error, required string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": required})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// ---------- Batch check-in ----------

type teacherEntry struct {
	TeacherID   personID `json:"TeacherID"`
	Status      string   `json:"Status"`
	CheckInTime *string  `json:"CheckInTime"`
	IsLate      bool     `json:"IsLate"`
}

type studentEntry struct {
	StudentID   personID `json:"StudentID"`
	Status      string   `json:"Status"`
	CheckInTime *string  `json:"CheckInTime"`
}

type teacherBatchRequest struct {
	Date    string         `json:"Date" binding:"required"`
	Entries []teacherEntry `json:"Entries" binding:"required,min=1"`
}

type studentBatchRequest struct {
	Date    string         `json:"Date" binding:"required"`
	Entries []studentEntry `json:"Entries" binding:"required,min=1"`
}

const batchRequired = "Date and at least one entry are required"

// CreateTeacherAttendanceBatch records a day of teacher check-ins, each entry independently.
func (h *Handler) CreateTeacherAttendanceBatch(c *gin.Context) {
	var req teacherBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err, batchRequired)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries := make([]attendance.TeacherCheckIn, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = attendance.TeacherCheckIn{TeacherID: int64(e.TeacherID), Status: e.Status, IsLate: e.IsLate}
		if entries[i].CheckInTime, err = parseCheckIn(e.CheckInTime, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "TeacherID": int64(e.TeacherID)})
			return
		}
	}

	outcomes := h.svc.RecordTeacherBatch(c.Request.Context(), date, entries)
	status, body := batchResponse(req.Date, "TeacherID", outcomes)
	c.JSON(status, body)
}

// CreateStudentAttendanceBatch is the student counterpart of CreateTeacherAttendanceBatch.
func (h *Handler) CreateStudentAttendanceBatch(c *gin.Context) {
	var req studentBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err, batchRequired)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries := make([]attendance.StudentCheckIn, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = attendance.StudentCheckIn{StudentID: int64(e.StudentID), Status: e.Status}
		if entries[i].CheckInTime, err = parseCheckIn(e.CheckInTime, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "StudentID": int64(e.StudentID)})
			return
		}
	}

	outcomes := h.svc.RecordStudentBatch(c.Request.Context(), date, entries)
	status, body := batchResponse(req.Date, "StudentID", outcomes)
	c.JSON(status, body)
}

// batchResponse is 201 when every entry saved and 207 otherwise. Results keep request order.
func batchResponse[T any](date, idField string, outcomes []attendance.Outcome[T]) (int, gin.H) {
	results := make([]gin.H, len(outcomes))
	saved := 0
	for i, o := range outcomes {
		item := gin.H{idField: o.PersonID, "OK": o.Err == nil}
		switch {
		case o.Err == nil:
			saved++
			item["Record"] = o.Record
		case errors.Is(o.Err, attendance.ErrMissingFields):
			item["Error"] = idField + " and Status are required"
		default:
			item["Error"] = "Unable to save attendance"
		}
		results[i] = item
	}
	status := http.StatusCreated
	if saved < len(outcomes) {
		status = http.StatusMultiStatus
	}
	return status, gin.H{
		"Date":    date,
		"Saved":   saved,
		"Failed":  len(outcomes) - saved,
		"Results": results,
	}
}

// ---------- Parsing ----------

func teacherCheckIn(id int64, date, status string, checkIn *string, late bool) (attendance.TeacherCheckIn, error) {
	d, err := parseDate(date)
	if err != nil {
		return attendance.TeacherCheckIn{}, err
	}
	t, err := parseCheckIn(checkIn, d)
	if err != nil {
		return attendance.TeacherCheckIn{}, err
	}
	return attendance.TeacherCheckIn{TeacherID: id, Date: d, Status: status, CheckInTime: t, IsLate: late}, nil
}

func studentCheckIn(id int64, date, status string, checkIn *string) (attendance.StudentCheckIn, error) {
	d, err := parseDate(date)
	if err != nil {
		return attendance.StudentCheckIn{}, err
	}
	t, err := parseCheckIn(checkIn, d)
	if err != nil {
		return attendance.StudentCheckIn{}, err
	}
	return attendance.StudentCheckIn{StudentID: id, Date: d, Status: status, CheckInTime: t}, nil
}

var dateLayouts = []string{model.DateLayout, time.RFC3339, "2006-01-02T15:04:05"}

// parseDate accepts a calendar date or a timestamp and returns midnight UTC of that day.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Errorf("Date %q must be YYYY-MM-DD", s)
}

var checkInLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// parseCheckIn accepts a full timestamp or a bare HH:MM[:SS] on date. Empty means not checked in.
func parseCheckIn(s *string, date time.Time) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range checkInLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			at := date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second)
			return &at, nil
		}
	}
	return nil, errors.Errorf("CheckInTime %q is not a valid time", v)
}
