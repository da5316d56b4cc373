package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/trackademic/trackademic/schema"
)

// MockDataSource is a mock implementation of DataSource for testing.
type MockDataSource struct {
	mock.Mock
}

var _ DataSource = &MockDataSource{} // Compile-time check

// GetStudentCourses implements the DataSource interface.
func (m *MockDataSource) GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error) {
	args := m.Called(ctx, studentID, semester)
	courses, _ := args.Get(0).([]schema.StudentCourse)
	return courses, args.Error(1)
}

// GetEvaluationPlans implements the DataSource interface.
func (m *MockDataSource) GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error) {
	args := m.Called(ctx, subjectCode, semester)
	plans, _ := args.Get(0).([]schema.EvaluationPlan)
	return plans, args.Error(1)
}

// GetGradesByPlan implements the DataSource interface.
func (m *MockDataSource) GetGradesByPlan(ctx context.Context, planID, studentID string) ([]schema.GradeRecord, error) {
	args := m.Called(ctx, planID, studentID)
	records, _ := args.Get(0).([]schema.GradeRecord)
	return records, args.Error(1)
}

// GetGradesBySemester implements the DataSource interface.
func (m *MockDataSource) GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error) {
	args := m.Called(ctx, studentID, semester)
	records, _ := args.Get(0).([]schema.GradeRecord)
	return records, args.Error(1)
}

// GetCourse implements the DataSource interface.
func (m *MockDataSource) GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error) {
	args := m.Called(ctx, subjectCode)
	course, _ := args.Get(0).(*schema.Course)
	return course, args.Error(1)
}

// MockPlanWriter is a mock implementation of PlanWriter for testing.
type MockPlanWriter struct {
	mock.Mock
}

var _ PlanWriter = &MockPlanWriter{} // Compile-time check

// CreatePlan implements the PlanWriter interface.
func (m *MockPlanWriter) CreatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	args := m.Called(ctx, plan)
	out, _ := args.Get(0).(*schema.EvaluationPlan)
	return out, args.Error(1)
}

// UpdatePlan implements the PlanWriter interface.
func (m *MockPlanWriter) UpdatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	args := m.Called(ctx, plan)
	out, _ := args.Get(0).(*schema.EvaluationPlan)
	return out, args.Error(1)
}

// DeletePlan implements the PlanWriter interface.
func (m *MockPlanWriter) DeletePlan(ctx context.Context, planID string) error {
	args := m.Called(ctx, planID)
	return args.Error(0)
}

// MockGradeWriter is a mock implementation of GradeWriter for testing.
type MockGradeWriter struct {
	mock.Mock
}

var _ GradeWriter = &MockGradeWriter{} // Compile-time check

// CreateGrade implements the GradeWriter interface.
func (m *MockGradeWriter) CreateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	args := m.Called(ctx, grade)
	out, _ := args.Get(0).(*schema.StudentGrade)
	return out, args.Error(1)
}

// UpdateGrade implements the GradeWriter interface.
func (m *MockGradeWriter) UpdateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	args := m.Called(ctx, grade)
	out, _ := args.Get(0).(*schema.StudentGrade)
	return out, args.Error(1)
}

// DeleteGrade implements the GradeWriter interface.
func (m *MockGradeWriter) DeleteGrade(ctx context.Context, gradeID string) error {
	args := m.Called(ctx, gradeID)
	return args.Error(0)
}

// MockCommentStore is a mock implementation of CommentStore for testing.
type MockCommentStore struct {
	mock.Mock
}

var _ CommentStore = &MockCommentStore{} // Compile-time check

// GetPlanComments implements the CommentStore interface.
func (m *MockCommentStore) GetPlanComments(ctx context.Context, planID string) ([]schema.PlanComment, error) {
	args := m.Called(ctx, planID)
	comments, _ := args.Get(0).([]schema.PlanComment)
	return comments, args.Error(1)
}

// CreatePlanComment implements the CommentStore interface.
func (m *MockCommentStore) CreatePlanComment(ctx context.Context, comment *schema.PlanComment) (*schema.PlanComment, error) {
	args := m.Called(ctx, comment)
	out, _ := args.Get(0).(*schema.PlanComment)
	return out, args.Error(1)
}

// DeletePlanComment implements the CommentStore interface.
func (m *MockCommentStore) DeletePlanComment(ctx context.Context, commentID string) error {
	args := m.Called(ctx, commentID)
	return args.Error(0)
}
