package core

import (
	"context"
	"fmt"
	"time"

	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

// CreatePlan validates a plan and stores it. Invalid plans never reach the writer.
func CreatePlan(ctx context.Context, w contract.PlanWriter, rc *reqcache.Cache, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	if err := grading.ValidatePlan(plan); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created, err := w.CreatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	invalidate(rc)
	return created, nil
}

// UpdatePlan stores changes to an existing plan. Percentages are validated only when
// activities are supplied; otherwise the stored activities are kept.
func UpdatePlan(ctx context.Context, src contract.DataSource, w contract.PlanWriter, rc *reqcache.Cache, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	if plan == nil || plan.ID == "" {
		return nil, &grading.ValidationError{
			Err:    grading.ErrInvalidPlan,
			Fields: []grading.FieldError{{Field: "_id", Error: "_id is a required field"}},
		}
	}

	patch := *plan
	if patch.Activities == nil {
		existing, err := findPlan(ctx, src, plan)
		if err != nil {
			return nil, err
		}
		patch.Activities = existing.Activities
		if patch.SubjectName == "" {
			patch.SubjectName = existing.SubjectName
		}
	} else if err := grading.ValidatePlan(&patch); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	updated, err := w.UpdatePlan(ctx, &patch)
	if err != nil {
		return nil, err
	}
	invalidate(rc)
	return updated, nil
}

// DeletePlan removes a plan with its comments. Grades recorded under the plan stay
// in the store but no longer count once another plan becomes the latest.
func DeletePlan(ctx context.Context, w contract.PlanWriter, rc *reqcache.Cache, planID string) error {
	if planID == "" {
		return &grading.ValidationError{
			Err:    grading.ErrInvalidPlan,
			Fields: []grading.FieldError{{Field: "_id", Error: "_id is a required field"}},
		}
	}
	if err := w.DeletePlan(ctx, planID); err != nil {
		return err
	}
	invalidate(rc)
	return nil
}

// findPlan looks up a stored plan by id among the plans of its subject and semester.
func findPlan(ctx context.Context, src contract.DataSource, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	plans, err := src.GetEvaluationPlans(ctx, plan.SubjectCode, plan.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evaluation plans: %w", err)
	}
	for i := range plans {
		if plans[i].ID == plan.ID {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("plan %s: %w", plan.ID, contract.ErrNotFound)
}

// SaveGrade records the grade of one activity. A student has at most one grade per
// activity of a plan: an existing grade is updated in place, otherwise one is created.
func SaveGrade(ctx context.Context, src contract.DataSource, w contract.GradeWriter, rc *reqcache.Cache, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	if err := grading.ValidateGrade(grade); err != nil {
		return nil, err
	}
	if grade.EvaluationPlanID == "" {
		return nil, &grading.ValidationError{
			Err:    grading.ErrInvalidGrade,
			Fields: []grading.FieldError{{Field: "evaluation_plan_id", Error: "evaluation_plan_id is a required field"}},
		}
	}

	if err := checkActivity(ctx, src, grade); err != nil {
		return nil, err
	}

	records, err := src.GetGradesByPlan(ctx, grade.EvaluationPlanID, grade.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing grades: %w", err)
	}
	existing, found := schema.NewGradeSet(grade.SubjectCode, records).Lookup(grade.ActivityID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var saved *schema.StudentGrade
	if found && existing.ID != "" {
		g := *grade
		g.ID = existing.ID
		saved, err = w.UpdateGrade(ctx, &g)
	} else {
		saved, err = w.CreateGrade(ctx, grade)
	}
	if err != nil {
		return nil, err
	}
	invalidate(rc)
	return saved, nil
}

// DeleteGrade removes one stored grade; the activity becomes ungraded again.
func DeleteGrade(ctx context.Context, w contract.GradeWriter, rc *reqcache.Cache, gradeID string) error {
	if gradeID == "" {
		return &grading.ValidationError{
			Err:    grading.ErrInvalidGrade,
			Fields: []grading.FieldError{{Field: "_id", Error: "_id is a required field"}},
		}
	}
	if err := w.DeleteGrade(ctx, gradeID); err != nil {
		return err
	}
	invalidate(rc)
	return nil
}

// checkActivity rejects a grade whose activity is not part of its plan. Such a
// grade would be stored but never counted.
func checkActivity(ctx context.Context, src contract.DataSource, grade *schema.StudentGrade) error {
	var missing []grading.FieldError
	if grade.SubjectCode == "" {
		missing = append(missing, grading.FieldError{Field: "subject_code", Error: "subject_code is a required field"})
	}
	if grade.Semester == "" {
		missing = append(missing, grading.FieldError{Field: "semester", Error: "semester is a required field"})
	}
	if len(missing) > 0 {
		return &grading.ValidationError{Err: grading.ErrInvalidGrade, Fields: missing}
	}

	plan, err := findPlan(ctx, src, &schema.EvaluationPlan{
		ID: grade.EvaluationPlanID, SubjectCode: grade.SubjectCode, Semester: grade.Semester,
	})
	if err != nil {
		return err
	}
	for _, a := range plan.Activities {
		if a.ID == grade.ActivityID {
			return nil
		}
	}
	return &grading.ValidationError{
		Err: grading.ErrInvalidGrade,
		Fields: []grading.FieldError{{
			Field: "activity_id",
			Error: fmt.Sprintf("activity %q is not part of plan %s", grade.ActivityID, plan.ID),
		}},
	}
}

// ResetDemoData replaces the store contents with the demo dataset and drops
// everything cached for the session.
func ResetDemoData(ctx context.Context, seeder contract.Seeder, rc *reqcache.Cache) error {
	if err := seeder.ResetAndSeed(ctx, contract.DemoDataset(time.Now().UTC())); err != nil {
		return err
	}
	invalidate(rc)
	logInfo(ctx, "Demo data has been seeded for student %s", contract.DefaultStudentID)
	return nil
}

func invalidate(rc *reqcache.Cache) {
	if rc != nil {
		rc.Invalidate()
	}
}
