package schema

import "time"

// AggregatedGradeResult is the derived grade of one course.
type AggregatedGradeResult struct {
	CurrentGrade        float64 `json:"current_grade"`
	CompletedPercentage float64 `json:"completed_percentage"`
	HasData             bool    `json:"has_data"`
}

// Passing reports whether the grade meets the passing threshold.
func (r AggregatedGradeResult) Passing() bool {
	return r.HasData && r.CurrentGrade >= PassingGrade
}

// UpcomingEvaluation is an activity of a resolved plan that has no grade yet.
type UpcomingEvaluation struct {
	CourseName   string  `json:"course_name"`
	CourseID     string  `json:"course_id"`
	ActivityID   string  `json:"activity_id"`
	ActivityName string  `json:"activity_name"`
	Percentage   float64 `json:"percentage"`
}

// CourseResult is one row of a semester summary.
type CourseResult struct {
	CourseID   string    `json:"course_id"`
	CourseName string    `json:"course_name"`
	Credits    int       `json:"credits,omitempty"`
	PlanID     string    `json:"plan_id,omitempty"`
	PlanState  PlanState `json:"plan_state"`
	AggregatedGradeResult
	Error string `json:"error,omitempty"`
}

// SemesterSummary aggregates every course of a student in one semester.
type SemesterSummary struct {
	StudentID      string               `json:"student_id"`
	Semester       string               `json:"semester"`
	AveragePolicy  AveragePolicy        `json:"average_policy"`
	Courses        []CourseResult       `json:"courses"`
	OverallAverage *float64             `json:"overall_average"`
	Upcoming       []UpcomingEvaluation `json:"upcoming"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// ActivityGradeRow pairs an activity with the grade recorded for it, if any.
type ActivityGradeRow struct {
	Activity
	GradeID string   `json:"grade_id,omitempty"`
	Grade   *float64 `json:"grade"`
}

// CourseGradeView is the per-course grade editor projection.
type CourseGradeView struct {
	StudentID  string             `json:"student_id"`
	CourseID   string             `json:"course_id"`
	CourseName string             `json:"course_name"`
	Semester   string             `json:"semester"`
	Plan       *EvaluationPlan    `json:"plan"`
	PlanState  PlanState          `json:"plan_state"`
	Rows       []ActivityGradeRow `json:"rows"`
	AggregatedGradeResult
}
