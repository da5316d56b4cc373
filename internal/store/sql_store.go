// Package store persists courses, enrollments, plans and grades.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// SQLStore is a Repository backed by SQLite, MySQL or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	backend schema.DataBackend
	connStr string
}

var _ contract.Repository = &SQLStore{} // Compile-time check

// NewSQLStore migrates the database to the latest schema and opens a store on it.
func NewSQLStore(backend schema.DataBackend, connStr string) (*SQLStore, error) {
	if err := Migrate(backend, connStr, -1, io.Discard); err != nil {
		return nil, fmt.Errorf("failed to prepare %s schema: %w", backend, err)
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return &SQLStore{db: db, backend: backend, connStr: connStr}, nil
}

func (s *SQLStore) q(query string) string {
	return rebind(s.backend, query)
}

const courseColumns = `id, student_id, subject_code, subject_name, semester, professor_id, professor_name, group_id, status`

const planColumns = `id, subject_code, subject_name, semester, activities, created_by, created_at, updated_at`

const commentColumns = `id, evaluation_plan_id, student_id, student_name, comment, created_at`

const gradeColumns = `id, evaluation_plan_id, subject_code, student_id, activity_id, activity_name, activity_percentage, semester, grade, created_at, updated_at`

// GetStudentCourses returns the enrollments of a student in a semester.
func (s *SQLStore) GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+courseColumns+` FROM student_courses WHERE student_id = ? AND semester = ? ORDER BY subject_code`),
		studentID, semester)
	if err != nil {
		return nil, fmt.Errorf("failed to query student courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.StudentCourse
	for rows.Next() {
		var sc schema.StudentCourse
		if err := rows.Scan(&sc.ID, &sc.StudentID, &sc.SubjectCode, &sc.SubjectName, &sc.Semester,
			&sc.ProfessorID, &sc.ProfessorName, &sc.GroupID, &sc.Status); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// GetEvaluationPlans returns every plan for a subject in a semester.
func (s *SQLStore) GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+planColumns+` FROM evaluation_plans WHERE subject_code = ? AND semester = ? ORDER BY created_at`),
		subjectCode, semester)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.EvaluationPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetGradesByPlan returns itemized grade records of a student under one plan.
func (s *SQLStore) GetGradesByPlan(ctx context.Context, planID, studentID string) ([]schema.GradeRecord, error) {
	grades, err := s.queryGrades(ctx,
		`SELECT `+gradeColumns+` FROM student_grades WHERE evaluation_plan_id = ? AND student_id = ? ORDER BY created_at`,
		planID, studentID)
	if err != nil {
		return nil, err
	}
	return schema.ItemizedRecords(grades), nil
}

// GetGradesBySemester returns itemized grade records for every enrolled subject of the semester.
func (s *SQLStore) GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error) {
	grades, err := s.queryGrades(ctx,
		`SELECT `+gradeColumns+` FROM student_grades WHERE student_id = ? AND subject_code IN (
			SELECT subject_code FROM student_courses WHERE student_id = ? AND semester = ?
		) ORDER BY subject_code, created_at`,
		studentID, studentID, semester)
	if err != nil {
		return nil, err
	}
	return schema.ItemizedRecords(grades), nil
}

// GetCourse returns catalog details of a subject.
func (s *SQLStore) GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error) {
	var c schema.Course
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, code, title, credits FROM courses WHERE code = ?`), subjectCode).
		Scan(&c.ID, &c.Code, &c.Title, &c.Credits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query course %s: %w", subjectCode, err)
	}
	return &c, nil
}

// CreatePlan inserts a plan, assigning an ID and timestamps.
func (s *SQLStore) CreatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	p := *plan
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := schema.NewTimestamp(time.Now().UTC())
	p.CreatedAt, p.UpdatedAt = now, now
	if err := insertPlan(ctx, s.db, s.backend, p); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &p, nil
}

// UpdatePlan replaces the activities and names of an existing plan.
func (s *SQLStore) UpdatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	activities, err := json.Marshal(plan.Activities)
	if err != nil {
		return nil, err
	}
	now := schema.NewTimestamp(time.Now().UTC())
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE evaluation_plans SET subject_name = ?, activities = ?, updated_at = ? WHERE id = ?`),
		plan.SubjectName, string(activities), toMillis(now), plan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, contract.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+planColumns+` FROM evaluation_plans WHERE id = ?`), plan.ID)
	p, err := scanPlan(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateGrade inserts a grade, assigning an ID and timestamps.
func (s *SQLStore) CreateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	g := *grade
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := schema.NewTimestamp(time.Now().UTC())
	g.CreatedAt, g.UpdatedAt = now, now
	if err := insertGrade(ctx, s.db, s.backend, g); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}
	return &g, nil
}

// UpdateGrade changes the value of an existing grade.
func (s *SQLStore) UpdateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	g := *grade
	g.UpdatedAt = schema.NewTimestamp(time.Now().UTC())
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE student_grades SET grade = ?, updated_at = ? WHERE id = ?`),
		g.Grade.Float64(), toMillis(g.UpdatedAt), g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update grade %s: %w", g.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, contract.ErrNotFound
	}
	return &g, nil
}

// DeletePlan removes a plan and its comments in one transaction. Grades recorded
// under the plan are kept.
func (s *SQLStore) DeletePlan(ctx context.Context, planID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM evaluation_plans WHERE id = ?`), planID)
	if err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", planID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contract.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM plan_comments WHERE evaluation_plan_id = ?`), planID); err != nil {
		return fmt.Errorf("failed to delete comments of plan %s: %w", planID, err)
	}
	return tx.Commit()
}

// DeleteGrade removes one grade.
func (s *SQLStore) DeleteGrade(ctx context.Context, gradeID string) error {
	return s.deleteByID(ctx, "student_grades", gradeID)
}

// GetPlanComments returns the comments of a plan, oldest first.
func (s *SQLStore) GetPlanComments(ctx context.Context, planID string) ([]schema.PlanComment, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+commentColumns+` FROM plan_comments WHERE evaluation_plan_id = ? ORDER BY created_at`),
		planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.PlanComment
	for rows.Next() {
		var c schema.PlanComment
		var created int64
		if err := rows.Scan(&c.ID, &c.EvaluationPlanID, &c.StudentID, &c.StudentName, &c.Comment, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = fromMillis(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreatePlanComment inserts a comment, assigning an ID and a creation time.
func (s *SQLStore) CreatePlanComment(ctx context.Context, comment *schema.PlanComment) (*schema.PlanComment, error) {
	c := *comment
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = schema.NewTimestamp(time.Now().UTC())
	if err := insertComment(ctx, s.db, s.backend, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &c, nil
}

// DeletePlanComment removes one comment.
func (s *SQLStore) DeletePlanComment(ctx context.Context, commentID string) error {
	return s.deleteByID(ctx, "plan_comments", commentID)
}

func (s *SQLStore) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s from %s: %w", id, table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contract.ErrNotFound
	}
	return nil
}

// ResetAndSeed replaces every table's contents with data in one transaction.
func (s *SQLStore) ResetAndSeed(ctx context.Context, data schema.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"plan_comments", "student_grades", "evaluation_plans", "student_courses", "courses"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	for _, c := range data.Courses {
		if _, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO courses (id, code, title, credits) VALUES (?, ?, ?, ?)`),
			c.ID, c.Code, c.Title, c.Credits); err != nil {
			return fmt.Errorf("failed to seed course %s: %w", c.Code, err)
		}
	}
	for _, sc := range data.Enrollments {
		if _, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO student_courses (`+courseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			sc.ID, sc.StudentID, sc.SubjectCode, sc.SubjectName, sc.Semester,
			sc.ProfessorID, sc.ProfessorName, sc.GroupID, sc.Status); err != nil {
			return fmt.Errorf("failed to seed enrollment %s: %w", sc.ID, err)
		}
	}
	for _, p := range data.Plans {
		if err := insertPlan(ctx, tx, s.backend, p); err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", p.ID, err)
		}
	}
	for _, g := range data.Grades {
		if err := insertGrade(ctx, tx, s.backend, g); err != nil {
			return fmt.Errorf("failed to seed grade %s: %w", g.ID, err)
		}
	}
	for _, c := range data.Comments {
		if err := insertComment(ctx, tx, s.backend, c); err != nil {
			return fmt.Errorf("failed to seed comment %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// GetStatus returns row counts and the migration version.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(s.backend)}
	if err := s.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Connected = true

	counts := []struct {
		table string
		dst   *int
	}{
		{"courses", &status.Courses},
		{"student_courses", &status.Enrollments},
		{"evaluation_plans", &status.Plans},
		{"student_grades", &status.Grades},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return status, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	var version int64
	var dirty bool
	err := s.db.QueryRowContext(ctx, "SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&version, &dirty)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return status, fmt.Errorf("failed to read schema version: %w", err)
	}
	status.SchemaVersion = int(version)
	status.Dirty = dirty
	return status, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(r rowScanner) (schema.EvaluationPlan, error) {
	var p schema.EvaluationPlan
	var activities string
	var created, updated int64
	if err := r.Scan(&p.ID, &p.SubjectCode, &p.SubjectName, &p.Semester, &activities, &p.CreatedBy, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, contract.ErrNotFound
		}
		return p, err
	}
	if err := json.Unmarshal([]byte(activities), &p.Activities); err != nil {
		return p, fmt.Errorf("failed to decode activities of plan %s: %w", p.ID, err)
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func (s *SQLStore) queryGrades(ctx context.Context, query string, args ...any) ([]schema.StudentGrade, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.StudentGrade
	for rows.Next() {
		var g schema.StudentGrade
		var pct, grade float64
		var created, updated int64
		if err := rows.Scan(&g.ID, &g.EvaluationPlanID, &g.SubjectCode, &g.StudentID, &g.ActivityID,
			&g.ActivityName, &pct, &g.Semester, &grade, &created, &updated); err != nil {
			return nil, err
		}
		g.ActivityPercentage = schema.Number(pct)
		g.Grade = schema.Number(grade)
		g.CreatedAt = fromMillis(created)
		g.UpdatedAt = fromMillis(updated)
		out = append(out, g)
	}
	return out, rows.Err()
}

func insertPlan(ctx context.Context, ex execer, backend schema.DataBackend, p schema.EvaluationPlan) error {
	activities, err := json.Marshal(p.Activities)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx,
		rebind(backend, `INSERT INTO evaluation_plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.SubjectCode, p.SubjectName, p.Semester, string(activities), p.CreatedBy,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	return err
}

func insertGrade(ctx context.Context, ex execer, backend schema.DataBackend, g schema.StudentGrade) error {
	_, err := ex.ExecContext(ctx,
		rebind(backend, `INSERT INTO student_grades (`+gradeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.EvaluationPlanID, g.SubjectCode, g.StudentID, g.ActivityID, g.ActivityName,
		g.ActivityPercentage.Float64(), g.Semester, g.Grade.Float64(),
		toMillis(g.CreatedAt), toMillis(g.UpdatedAt))
	return err
}

func insertComment(ctx context.Context, ex execer, backend schema.DataBackend, c schema.PlanComment) error {
	_, err := ex.ExecContext(ctx,
		rebind(backend, `INSERT INTO plan_comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.EvaluationPlanID, c.StudentID, c.StudentName, c.Comment, toMillis(c.CreatedAt))
	return err
}
