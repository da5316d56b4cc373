package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// MemoryStore is a Repository held in process memory. It is used for demos and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data schema.Dataset
}

var _ contract.Repository = &MemoryStore{} // Compile-time check

// NewMemoryStore returns a store preloaded with a copy of data.
func NewMemoryStore(data schema.Dataset) *MemoryStore {
	return &MemoryStore{data: cloneDataset(data)}
}

func cloneDataset(d schema.Dataset) schema.Dataset {
	out := schema.Dataset{
		Courses:     slices.Clone(d.Courses),
		Enrollments: slices.Clone(d.Enrollments),
		Plans:       make([]schema.EvaluationPlan, len(d.Plans)),
		Grades:      slices.Clone(d.Grades),
		Comments:    slices.Clone(d.Comments),
	}
	for i, p := range d.Plans {
		p.Activities = slices.Clone(p.Activities)
		out.Plans[i] = p
	}
	return out
}

// GetStudentCourses returns the enrollments of a student in a semester.
func (m *MemoryStore) GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schema.StudentCourse
	for _, sc := range m.data.Enrollments {
		if sc.StudentID == studentID && sc.Semester == semester {
			out = append(out, sc)
		}
	}
	return out, nil
}

// GetEvaluationPlans returns every plan for a subject in a semester.
func (m *MemoryStore) GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schema.EvaluationPlan
	for _, p := range m.data.Plans {
		if p.SubjectCode == subjectCode && p.Semester == semester {
			p.Activities = slices.Clone(p.Activities)
			out = append(out, p)
		}
	}
	return out, nil
}

// GetGradesByPlan returns itemized grade records of a student under one plan.
func (m *MemoryStore) GetGradesByPlan(ctx context.Context, planID, studentID string) ([]schema.GradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var grades []schema.StudentGrade
	for _, g := range m.data.Grades {
		if g.EvaluationPlanID == planID && g.StudentID == studentID {
			grades = append(grades, g)
		}
	}
	return schema.ItemizedRecords(grades), nil
}

// GetGradesBySemester returns itemized grade records for every enrolled subject of the semester.
func (m *MemoryStore) GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	enrolled := make(map[string]struct{})
	for _, sc := range m.data.Enrollments {
		if sc.StudentID == studentID && sc.Semester == semester {
			enrolled[sc.SubjectCode] = struct{}{}
		}
	}
	var grades []schema.StudentGrade
	for _, g := range m.data.Grades {
		if _, ok := enrolled[g.SubjectCode]; ok && g.StudentID == studentID {
			grades = append(grades, g)
		}
	}
	return schema.ItemizedRecords(grades), nil
}

// GetCourse returns catalog details of a subject.
func (m *MemoryStore) GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.data.Courses {
		if c.Code == subjectCode {
			return &c, nil
		}
	}
	return nil, contract.ErrNotFound
}

// CreatePlan stores a plan, assigning an ID and timestamps.
func (m *MemoryStore) CreatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := *plan
	p.Activities = slices.Clone(plan.Activities)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := schema.NewTimestamp(time.Now().UTC())
	p.CreatedAt, p.UpdatedAt = now, now

	m.mu.Lock()
	m.data.Plans = append(m.data.Plans, p)
	m.mu.Unlock()
	return &p, nil
}

// UpdatePlan replaces the activities and name of an existing plan.
func (m *MemoryStore) UpdatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.data.Plans {
		stored := &m.data.Plans[i]
		if stored.ID != plan.ID {
			continue
		}
		stored.SubjectName = plan.SubjectName
		stored.Activities = slices.Clone(plan.Activities)
		stored.UpdatedAt = schema.NewTimestamp(time.Now().UTC())
		out := *stored
		out.Activities = slices.Clone(stored.Activities)
		return &out, nil
	}
	return nil, contract.ErrNotFound
}

// CreateGrade stores a grade, assigning an ID and timestamps.
func (m *MemoryStore) CreateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := *grade
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := schema.NewTimestamp(time.Now().UTC())
	g.CreatedAt, g.UpdatedAt = now, now

	m.mu.Lock()
	m.data.Grades = append(m.data.Grades, g)
	m.mu.Unlock()
	return &g, nil
}

// UpdateGrade changes the value of an existing grade.
func (m *MemoryStore) UpdateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.data.Grades {
		stored := &m.data.Grades[i]
		if stored.ID != grade.ID {
			continue
		}
		stored.Grade = grade.Grade
		stored.UpdatedAt = schema.NewTimestamp(time.Now().UTC())
		out := *stored
		return &out, nil
	}
	return nil, contract.ErrNotFound
}

// DeletePlan removes a plan and its comments. Grades recorded under it are kept.
func (m *MemoryStore) DeletePlan(ctx context.Context, planID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.data.Plans)
	m.data.Plans = slices.DeleteFunc(m.data.Plans, func(p schema.EvaluationPlan) bool { return p.ID == planID })
	if len(m.data.Plans) == n {
		return contract.ErrNotFound
	}
	m.data.Comments = slices.DeleteFunc(m.data.Comments, func(c schema.PlanComment) bool { return c.EvaluationPlanID == planID })
	return nil
}

// DeleteGrade removes one grade.
func (m *MemoryStore) DeleteGrade(ctx context.Context, gradeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.data.Grades)
	m.data.Grades = slices.DeleteFunc(m.data.Grades, func(g schema.StudentGrade) bool { return g.ID == gradeID })
	if len(m.data.Grades) == n {
		return contract.ErrNotFound
	}
	return nil
}

// GetPlanComments returns the comments of a plan in insertion order.
func (m *MemoryStore) GetPlanComments(ctx context.Context, planID string) ([]schema.PlanComment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schema.PlanComment
	for _, c := range m.data.Comments {
		if c.EvaluationPlanID == planID {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreatePlanComment stores a comment, assigning an ID and a creation time.
func (m *MemoryStore) CreatePlanComment(ctx context.Context, comment *schema.PlanComment) (*schema.PlanComment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := *comment
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = schema.NewTimestamp(time.Now().UTC())

	m.mu.Lock()
	m.data.Comments = append(m.data.Comments, c)
	m.mu.Unlock()
	return &c, nil
}

// DeletePlanComment removes one comment.
func (m *MemoryStore) DeletePlanComment(ctx context.Context, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.data.Comments)
	m.data.Comments = slices.DeleteFunc(m.data.Comments, func(c schema.PlanComment) bool { return c.ID == commentID })
	if len(m.data.Comments) == n {
		return contract.ErrNotFound
	}
	return nil
}

// ResetAndSeed replaces the contents of the store.
func (m *MemoryStore) ResetAndSeed(ctx context.Context, data schema.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data = cloneDataset(data)
	m.mu.Unlock()
	return nil
}

// GetStatus returns the record counts.
func (m *MemoryStore) GetStatus(_ context.Context) (schema.StoreStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return schema.StoreStatus{
		Backend:     string(schema.MemoryBackend),
		Connected:   true,
		Courses:     len(m.data.Courses),
		Enrollments: len(m.data.Enrollments),
		Plans:       len(m.data.Plans),
		Grades:      len(m.data.Grades),
	}, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
