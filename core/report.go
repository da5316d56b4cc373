package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trackademic/trackademic/core/agg"
	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

// nowFunc stamps generated reports.
var nowFunc = func() time.Time { return time.Now().UTC() }

// BuildSemesterReport fetches every enrolled course of the configured student and
// folds them into a semester summary. Course details and plans are fetched in
// batches of cfg.BatchSize through rc, so repeated calls on one session reuse them.
//
// When cfg.TolerateCourseErrors is false, the first failing course aborts the report.
// Otherwise the course is kept with no data and its error text.
func BuildSemesterReport(ctx context.Context, src contract.DataSource, rc *reqcache.Cache, cfg *contract.Config) (*schema.SemesterSummary, error) {
	if rc == nil {
		rc = reqcache.New()
	}
	studentID, semester := cfg.StudentID, cfg.Semester

	enrollments, err := fetchEnrollments(ctx, src, rc, studentID, semester)
	if err != nil {
		return nil, err
	}
	records, err := reqcache.Do(ctx, rc, reqcache.Key("semester-grades", studentID, semester),
		func(ctx context.Context) ([]schema.GradeRecord, error) {
			return src.GetGradesBySemester(ctx, studentID, semester)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch semester grades: %w", err)
	}
	grouped := schema.GroupSemesterRecords(records)
	if n := unattributed(records); n > 0 {
		logWarn(ctx, "Unrecognized semester grade records",
			fmt.Errorf("%w: %d of %d records have no subject code", schema.ErrUnrecognizedShape, n, len(records)))
	}

	logInfo(ctx, "Summarizing %d courses for %s in %s", len(enrollments), studentID, semester)

	inputs := make([]agg.CourseInput, len(enrollments))
	err = reqcache.Batched(ctx, cfg.BatchSize, len(enrollments), func(ctx context.Context, i int) error {
		enrollment := enrollments[i]
		in, err := fetchCourseInput(ctx, src, rc, enrollment, semester)
		if err != nil {
			if !cfg.TolerateCourseErrors {
				return fmt.Errorf("course %s: %w", enrollment.SubjectCode, err)
			}
			logWarn(ctx, "Skipping course "+enrollment.SubjectCode, err)
			in = agg.CourseInput{Enrollment: enrollment, Err: err}
		} else {
			in.Grades = gradeSetFor(ctx, enrollment.SubjectCode, forPlan(grouped[enrollment.SubjectCode], in.Plan))
		}

		// Results of a canceled report are dropped
		if err := ctx.Err(); err != nil {
			return err
		}
		inputs[i] = in
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	summary := agg.Summarize(inputs, cfg.AveragePolicy)
	summary.StudentID = studentID
	summary.Semester = semester
	summary.GeneratedAt = nowFunc()
	return summary, nil
}

// BuildCourseGrade assembles the grade editor view of one course: the latest plan,
// one row per activity and the current aggregated grade.
func BuildCourseGrade(ctx context.Context, src contract.DataSource, rc *reqcache.Cache, cfg *contract.Config, subjectCode string) (*schema.CourseGradeView, error) {
	if rc == nil {
		rc = reqcache.New()
	}
	studentID, semester := cfg.StudentID, cfg.Semester

	enrollment := schema.StudentCourse{StudentID: studentID, SubjectCode: subjectCode, Semester: semester}
	enrollments, err := fetchEnrollments(ctx, src, rc, studentID, semester)
	if err != nil {
		return nil, err
	}
	for _, e := range enrollments {
		if e.SubjectCode == subjectCode {
			enrollment = e
			break
		}
	}

	in, err := fetchCourseInput(ctx, src, rc, enrollment, semester)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", subjectCode, err)
	}

	var set schema.GradeSet
	if in.Plan != nil {
		planID := in.Plan.ID
		records, err := src.GetGradesByPlan(ctx, planID, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch grades of plan %s: %w", planID, err)
		}
		set = gradeSetFor(ctx, subjectCode, forPlan(records, in.Plan))
	} else {
		set = schema.NewGradeSet(subjectCode, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view := &schema.CourseGradeView{
		StudentID:             studentID,
		CourseID:              subjectCode,
		CourseName:            agg.CourseName(enrollment, in.Course),
		Semester:              semester,
		Plan:                  in.Plan,
		PlanState:             grading.PlanStateOf(in.Plan),
		Rows:                  []schema.ActivityGradeRow{},
		AggregatedGradeResult: grading.Compute(in.Plan, set),
	}
	if in.Plan != nil {
		for _, a := range in.Plan.Activities {
			row := schema.ActivityGradeRow{Activity: a}
			if g, ok := set.Lookup(a.ID); ok {
				v := g.Grade.Float64()
				row.GradeID = g.ID
				row.Grade = &v
			}
			view.Rows = append(view.Rows, row)
		}
	}
	return view, nil
}

func fetchEnrollments(ctx context.Context, src contract.DataSource, rc *reqcache.Cache, studentID, semester string) ([]schema.StudentCourse, error) {
	enrollments, err := reqcache.Do(ctx, rc, reqcache.Key("student-courses", studentID, semester),
		func(ctx context.Context) ([]schema.StudentCourse, error) {
			return src.GetStudentCourses(ctx, studentID, semester)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}
	return enrollments, nil
}

// fetchCourseInput resolves the catalog entry and the latest plan of one course.
// A missing catalog entry is not an error; the enrollment name is used instead.
func fetchCourseInput(ctx context.Context, src contract.DataSource, rc *reqcache.Cache, enrollment schema.StudentCourse, semester string) (agg.CourseInput, error) {
	code := enrollment.SubjectCode
	in := agg.CourseInput{Enrollment: enrollment}

	course, err := reqcache.Do(ctx, rc, reqcache.Key("course", code),
		func(ctx context.Context) (*schema.Course, error) {
			c, err := src.GetCourse(ctx, code)
			if errors.Is(err, contract.ErrNotFound) {
				return nil, nil
			}
			return c, err
		})
	if err != nil {
		return in, fmt.Errorf("failed to fetch course details: %w", err)
	}
	in.Course = course

	plans, err := reqcache.Do(ctx, rc, reqcache.Key("plans", code, semester),
		func(ctx context.Context) ([]schema.EvaluationPlan, error) {
			return src.GetEvaluationPlans(ctx, code, semester)
		})
	if err != nil {
		return in, fmt.Errorf("failed to fetch evaluation plans: %w", err)
	}
	in.Plan = grading.SelectLatest(plans)
	return in, nil
}

// gradeSetFor decodes the records of one course and warns about unrecognized shapes.
func gradeSetFor(ctx context.Context, subjectCode string, records []schema.GradeRecord) schema.GradeSet {
	set := schema.NewGradeSet(subjectCode, records)
	if set.Shape == schema.UnknownShape || set.Skipped > 0 {
		logWarn(ctx, "Unrecognized grade records for "+subjectCode,
			fmt.Errorf("%w: %d of %d records skipped", schema.ErrUnrecognizedShape, set.Skipped, len(records)))
	}
	return set
}

// forPlan drops grades recorded under other plans of the course, so a superseded
// plan that reuses activity ids does not leak into the latest one.
func forPlan(records []schema.GradeRecord, plan *schema.EvaluationPlan) []schema.GradeRecord {
	if plan == nil {
		return records
	}
	return schema.ForPlan(records, plan.ID)
}

// unattributed counts semester records that cannot be placed in any course.
func unattributed(records []schema.GradeRecord) int {
	n := 0
	for _, rec := range records {
		if rec.SubjectCode == "" && !rec.Recognized() {
			n++
		}
	}
	return n
}
