// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/trackademic/trackademic/schema"
)

// ErrNotFound is returned when a single record lookup has no match.
var ErrNotFound = errors.New("not found")

// DataSource defines the read operations the grade engine depends on.
// This allows the orchestration to be tested without a real backend.
type DataSource interface {
	// GetStudentCourses returns the enrollments of a student in a semester.
	GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error)

	// GetEvaluationPlans returns every plan for a subject in a semester.
	GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error)

	// GetGradesByPlan returns the grade records of a student under one plan.
	GetGradesByPlan(ctx context.Context, planID, studentID string) ([]schema.GradeRecord, error)

	// GetGradesBySemester returns the grade records of a student across a semester.
	// Records may be itemized or pre-aggregated depending on the backend.
	GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error)

	// GetCourse returns catalog details of a subject, or ErrNotFound.
	GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error)
}

// PlanWriter persists evaluation plans.
type PlanWriter interface {
	CreatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error)
	UpdatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error)
	// DeletePlan removes a plan and the comments left on it, or returns ErrNotFound.
	DeletePlan(ctx context.Context, planID string) error
}

// GradeWriter persists student grades.
type GradeWriter interface {
	CreateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error)
	UpdateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error)
	// DeleteGrade removes one grade, or returns ErrNotFound.
	DeleteGrade(ctx context.Context, gradeID string) error
}

// CommentStore persists the comments students leave on plans.
type CommentStore interface {
	// GetPlanComments returns the comments of a plan, oldest first.
	GetPlanComments(ctx context.Context, planID string) ([]schema.PlanComment, error)
	CreatePlanComment(ctx context.Context, comment *schema.PlanComment) (*schema.PlanComment, error)
	// DeletePlanComment removes one comment, or returns ErrNotFound.
	DeletePlanComment(ctx context.Context, commentID string) error
}

// Seeder wipes a store and loads a dataset into it.
type Seeder interface {
	ResetAndSeed(ctx context.Context, data schema.Dataset) error
}

// Repository is a complete backend: reads, writes, seeding and lifecycle.
type Repository interface {
	DataSource
	PlanWriter
	GradeWriter
	CommentStore
	Seeder

	// GetStatus returns status information about the backend
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
