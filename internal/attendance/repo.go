package attendance

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"collegeattendance/internal/model"
	"collegeattendance/internal/seed"
)

// Postgres caps a statement at 65535 bind parameters.
const maxParams = 65535

// seedLockKey serialises seed runs across processes (pg_advisory_xact_lock).
const seedLockKey = 73012024

var (
	teacherColumns = []string{
		"first_name", "last_name", "gender", "dob", "email", "phone", "address", "branch",
		"subject", "qualification", "experience_years", "salary", "join_date", "status",
	}
	studentColumns = []string{
		"first_name", "last_name", "gender", "dob", "email", "phone", "address", "branch",
		"year", "section", "roll_number", "admission_date", "parent_name", "parent_phone",
		"parent_email", "status",
	}
	teacherAttendanceColumns = []string{"teacher_id", "date", "status", "check_in_time", "is_late"}
	studentAttendanceColumns = []string{"student_id", "date", "status", "check_in_time"}
)

// Repository persists rosters and attendance in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListTeachers returns every teacher ordered by id.
func (r *Repository) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT teacher_id, `+strings.Join(teacherColumns, ", ")+` FROM teachers ORDER BY teacher_id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list teachers")
	}
	defer rows.Close()

	var res []model.Teacher
	for rows.Next() {
		var t model.Teacher
		if err := rows.Scan(&t.TeacherID, &t.FirstName, &t.LastName, &t.Gender, &t.DOB, &t.Email,
			&t.Phone, &t.Address, &t.Branch, &t.Subject, &t.Qualification, &t.ExperienceYears,
			&t.Salary, &t.JoinDate, &t.Status); err != nil {
			return nil, errors.Wrap(err, "scan teacher")
		}
		res = append(res, t)
	}
	return res, errors.Wrap(rows.Err(), "list teachers")
}

// ListStudents returns every student ordered by id.
func (r *Repository) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, `+strings.Join(studentColumns, ", ")+` FROM students ORDER BY student_id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list students")
	}
	defer rows.Close()

	var res []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.StudentID, &s.FirstName, &s.LastName, &s.Gender, &s.DOB, &s.Email,
			&s.Phone, &s.Address, &s.Branch, &s.Year, &s.Section, &s.RollNumber, &s.AdmissionDate,
			&s.ParentName, &s.ParentPhone, &s.ParentEmail, &s.Status); err != nil {
			return nil, errors.Wrap(err, "scan student")
		}
		res = append(res, s)
	}
	return res, errors.Wrap(rows.Err(), "list students")
}

// InsertTeacherAttendance writes one record and returns it as stored.
func (r *Repository) InsertTeacherAttendance(ctx context.Context, rec model.TeacherAttendance) (model.TeacherAttendance, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO teacher_attendance (teacher_id, date, status, check_in_time, is_late)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, teacher_id, date, status, check_in_time, is_late
	`, rec.TeacherID, rec.Date, rec.Status, rec.CheckInTime, rec.IsLate)
	var out model.TeacherAttendance
	if err := row.Scan(&out.ID, &out.TeacherID, &out.Date, &out.Status, &out.CheckInTime, &out.IsLate); err != nil {
		return model.TeacherAttendance{}, errors.Wrap(err, "insert teacher attendance")
	}
	return out, nil
}

// InsertStudentAttendance writes one record and returns it as stored.
func (r *Repository) InsertStudentAttendance(ctx context.Context, rec model.StudentAttendance) (model.StudentAttendance, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO student_attendance (student_id, date, status, check_in_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, student_id, date, status, check_in_time
	`, rec.StudentID, rec.Date, rec.Status, rec.CheckInTime)
	var out model.StudentAttendance
	if err := row.Scan(&out.ID, &out.StudentID, &out.Date, &out.Status, &out.CheckInTime); err != nil {
		return model.StudentAttendance{}, errors.Wrap(err, "insert student attendance")
	}
	return out, nil
}

// BeginSeed opens a transaction holding the seed advisory lock.
func (r *Repository) BeginSeed(ctx context.Context) (seed.Batch, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		_ = tx.Rollback()
		return nil, errors.Wrap(err, "acquire seed lock")
	}
	return &seedBatch{tx: tx}, nil
}

type seedBatch struct {
	tx *sql.Tx
}

// DeleteAll clears attendance before rosters so foreign keys hold. Sequences keep counting,
// so identifiers are never reused.
func (b *seedBatch) DeleteAll(ctx context.Context) error {
	for _, table := range []string{
		model.TableTeacherAttendance,
		model.TableStudentAttendance,
		model.TableTeachers,
		model.TableStudents,
	} {
		if _, err := b.tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return errors.Wrapf(err, "delete %s", table)
		}
	}
	return nil
}

func (b *seedBatch) InsertTeachers(ctx context.Context, rows []model.Teacher) ([]int64, error) {
	return insertReturning(ctx, b.tx, model.TableTeachers, teacherColumns, "teacher_id", len(rows), func(i int) []any {
		t := rows[i]
		return []any{t.FirstName, t.LastName, t.Gender, t.DOB, t.Email, t.Phone, t.Address, t.Branch,
			t.Subject, t.Qualification, t.ExperienceYears, t.Salary, t.JoinDate, t.Status}
	})
}

func (b *seedBatch) InsertStudents(ctx context.Context, rows []model.Student) ([]int64, error) {
	return insertReturning(ctx, b.tx, model.TableStudents, studentColumns, "student_id", len(rows), func(i int) []any {
		s := rows[i]
		return []any{s.FirstName, s.LastName, s.Gender, s.DOB, s.Email, s.Phone, s.Address, s.Branch,
			s.Year, s.Section, s.RollNumber, s.AdmissionDate, s.ParentName, s.ParentPhone,
			s.ParentEmail, s.Status}
	})
}

func (b *seedBatch) InsertTeacherAttendance(ctx context.Context, rows []model.TeacherAttendance) error {
	_, err := insertReturning(ctx, b.tx, model.TableTeacherAttendance, teacherAttendanceColumns, "", len(rows), func(i int) []any {
		r := rows[i]
		return []any{r.TeacherID, r.Date, r.Status, r.CheckInTime, r.IsLate}
	})
	return err
}

func (b *seedBatch) InsertStudentAttendance(ctx context.Context, rows []model.StudentAttendance) error {
	_, err := insertReturning(ctx, b.tx, model.TableStudentAttendance, studentAttendanceColumns, "", len(rows), func(i int) []any {
		r := rows[i]
		return []any{r.StudentID, r.Date, r.Status, r.CheckInTime}
	})
	return err
}

func (b *seedBatch) Commit() error   { return b.tx.Commit() }
func (b *seedBatch) Rollback() error { return b.tx.Rollback() }

// insertReturning writes n rows with multi-row VALUES statements, splitting so no statement
// exceeds maxParams. When returning is set, the generated ids are collected in insert order.
func insertReturning(ctx context.Context, tx *sql.Tx, table string, columns []string, returning string, n int, values func(i int) []any) ([]int64, error) {
	perStmt := maxParams / len(columns)
	var ids []int64
	for start := 0; start < n; start += perStmt {
		end := min(start+perStmt, n)
		query, args := buildInsert(table, columns, end-start, func(i int) []any { return values(start + i) })
		if returning == "" {
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return nil, errors.Wrapf(err, "insert into %s", table)
			}
			continue
		}
		rows, err := tx.QueryContext(ctx, query+" RETURNING "+returning, args...)
		if err != nil {
			return nil, errors.Wrapf(err, "insert into %s", table)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, errors.Wrapf(err, "scan %s id", table)
			}
			ids = append(ids, id)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "insert into %s", table)
		}
	}
	return ids, nil
}

func buildInsert(table string, columns []string, n int, values func(i int) []any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES ")
	args := make([]any, 0, n*len(columns))
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + strconv.Itoa(len(args)+j+1))
		}
		sb.WriteByte(')')
		args = append(args, values(i)...)
	}
	return sb.String(), args
}
