// Package agg has aggregation logic for semester grade summaries.
package agg

import (
	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/schema"
)

// CourseInput is everything known about one enrolled course before folding.
type CourseInput struct {
	Enrollment schema.StudentCourse
	Course     *schema.Course
	Plan       *schema.EvaluationPlan
	Grades     schema.GradeSet
	Err        error // set when the course could not be fetched and failures are tolerated
}

// Summarize folds per-course inputs into a semester summary.
// StudentID, Semester and GeneratedAt are left for the caller.
func Summarize(inputs []CourseInput, policy schema.AveragePolicy) *schema.SemesterSummary {
	summary := &schema.SemesterSummary{
		AveragePolicy: policy,
		Courses:       make([]schema.CourseResult, 0, len(inputs)),
		Upcoming:      []schema.UpcomingEvaluation{},
	}

	for _, in := range inputs {
		// 1. Compute the course result
		result := summarizeCourse(in)
		summary.Courses = append(summary.Courses, result)

		// 2. Collect ungraded activities of resolved plans
		if in.Err == nil {
			summary.Upcoming = append(summary.Upcoming, upcomingFor(result, in)...)
		}
	}

	// 3. Fold the overall average
	summary.OverallAverage = OverallAverage(summary.Courses, policy)
	return summary
}

// summarizeCourse computes the result row of one course.
func summarizeCourse(in CourseInput) schema.CourseResult {
	result := schema.CourseResult{
		CourseID:   in.Enrollment.SubjectCode,
		CourseName: CourseName(in.Enrollment, in.Course),
		PlanState:  grading.PlanStateOf(in.Plan),
	}
	if in.Course != nil {
		result.Credits = in.Course.Credits
	}
	if in.Plan != nil {
		result.PlanID = in.Plan.ID
	}
	if in.Err != nil {
		result.Error = in.Err.Error()
		return result
	}
	result.AggregatedGradeResult = grading.Compute(in.Plan, in.Grades)
	return result
}

// upcomingFor lists the outstanding activities of one course.
func upcomingFor(result schema.CourseResult, in CourseInput) []schema.UpcomingEvaluation {
	ungraded := grading.UngradedActivities(in.Plan, in.Grades)
	out := make([]schema.UpcomingEvaluation, 0, len(ungraded))
	for _, a := range ungraded {
		out = append(out, schema.UpcomingEvaluation{
			CourseName:   result.CourseName,
			CourseID:     result.CourseID,
			ActivityID:   a.ID,
			ActivityName: a.Name,
			Percentage:   a.Percentage.Float64(),
		})
	}
	return out
}

// OverallAverage is the mean current grade under the given policy, or nil when no course qualifies.
// The nonzero policy only counts courses whose current grade is above zero.
func OverallAverage(courses []schema.CourseResult, policy schema.AveragePolicy) *float64 {
	var sum float64
	var n int
	for _, c := range courses {
		if policy != schema.AllAverage && c.CurrentGrade <= 0 {
			continue
		}
		sum += c.CurrentGrade
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// CourseName picks the catalog title, then the enrollment name, then a placeholder.
func CourseName(enrollment schema.StudentCourse, course *schema.Course) string {
	if course != nil && course.Title != "" {
		return course.Title
	}
	if enrollment.SubjectName != "" {
		return enrollment.SubjectName
	}
	if course != nil && course.SubjectName != "" {
		return course.SubjectName
	}
	return schema.UnknownCourseName
}

// TruncateUpcoming returns at most limit items; a non-positive limit keeps all.
func TruncateUpcoming(items []schema.UpcomingEvaluation, limit int) []schema.UpcomingEvaluation {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
