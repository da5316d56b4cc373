// Package core has core logic for grade aggregation, plan validation and grade entry.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/trackademic/trackademic/core/agg"
	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

// ExecutorFunc defines the function signature for commands that only need the configured backend.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache) error

// GetSemesterSummaryResults builds the semester summary and truncates the upcoming list
// to cfg.UpcomingLimit. It is shared by the CLI and the MCP server.
func GetSemesterSummaryResults(ctx context.Context, cfg *contract.Config, src contract.DataSource, rc *reqcache.Cache) (*schema.SemesterSummary, time.Duration, error) {
	start := time.Now()
	summary, err := BuildSemesterReport(ctx, src, rc, cfg)
	if err != nil {
		return nil, 0, err
	}
	summary.Upcoming = agg.TruncateUpcoming(summary.Upcoming, cfg.UpcomingLimit)
	return summary, time.Since(start), nil
}

// ExecuteSummary prints the semester summary of the configured student.
// It serves as the main entry point for the 'summary' command.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache) error {
	summary, duration, err := GetSemesterSummaryResults(ctx, cfg, repo, rc)
	if err != nil {
		return err
	}
	return out.WriteSummary(summary, cfg, duration)
}

// ExecuteCourseGrade prints the activities, grades and current grade of one course.
func ExecuteCourseGrade(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache, subjectCode string) error {
	if subjectCode == "" {
		return errors.New("a course code is required")
	}
	view, err := BuildCourseGrade(ctx, repo, rc, cfg, subjectCode)
	if err != nil {
		return err
	}
	return out.WriteCourseGrade(view, cfg)
}

// ExecutePlanValidate checks a plan file without storing it. The outcome is printed
// either way; an invalid plan is also returned as an error so the exit code reflects it.
func ExecutePlanValidate(_ context.Context, cfg *contract.Config, path string) error {
	plan, err := ReadPlanFile(path)
	if err != nil {
		return err
	}
	verr := grading.ValidatePlan(plan)
	if err := out.WritePlanCheck(plan, verr, cfg); err != nil {
		return err
	}
	return verr
}

// ExecutePlanSave stores the plan in a file. Plans with an id update the stored plan,
// plans without one are created.
func ExecutePlanSave(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache, path string) error {
	plan, err := ReadPlanFile(path)
	if err != nil {
		return err
	}

	var saved *schema.EvaluationPlan
	if plan.ID != "" {
		saved, err = UpdatePlan(ctx, repo, repo, rc, plan)
	} else {
		saved, err = CreatePlan(ctx, repo, rc, plan)
	}
	if err != nil {
		var verr *grading.ValidationError
		if errors.As(err, &verr) {
			_ = out.WritePlanCheck(plan, verr, cfg)
		}
		return err
	}
	return out.WriteRecord(saved, cfg)
}

// ExecuteGradeSave records one activity grade for the configured student.
func ExecuteGradeSave(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache, grade *schema.StudentGrade) error {
	if grade.StudentID == "" {
		grade.StudentID = cfg.StudentID
	}
	if grade.Semester == "" {
		grade.Semester = cfg.Semester
	}
	saved, err := SaveGrade(ctx, repo, repo, rc, grade)
	if err != nil {
		return err
	}
	return out.WriteRecord(saved, cfg)
}

// ExecutePlanDelete removes a plan and its comments.
func ExecutePlanDelete(ctx context.Context, _ *contract.Config, repo contract.Repository, rc *reqcache.Cache, planID string) error {
	if err := DeletePlan(ctx, repo, rc, planID); err != nil {
		return err
	}
	logInfo(ctx, "Deleted plan %s", planID)
	return nil
}

// ExecuteGradeDelete removes one stored grade.
func ExecuteGradeDelete(ctx context.Context, _ *contract.Config, repo contract.Repository, rc *reqcache.Cache, gradeID string) error {
	if err := DeleteGrade(ctx, repo, rc, gradeID); err != nil {
		return err
	}
	logInfo(ctx, "Deleted grade %s", gradeID)
	return nil
}

// ExecuteCommentAdd leaves a comment on a plan as the configured student.
func ExecuteCommentAdd(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache, comment *schema.PlanComment) error {
	if comment.StudentID == "" {
		comment.StudentID = cfg.StudentID
	}
	created, err := AddPlanComment(ctx, repo, rc, comment)
	if err != nil {
		return err
	}
	return out.WriteRecord(created, cfg)
}

// ExecuteCommentList prints the comments left on a plan.
func ExecuteCommentList(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache, planID string) error {
	comments, err := ListPlanComments(ctx, repo, rc, planID)
	if err != nil {
		return err
	}
	return out.WriteComments(planID, comments, cfg)
}

// ExecuteCommentDelete removes one comment.
func ExecuteCommentDelete(ctx context.Context, _ *contract.Config, repo contract.Repository, rc *reqcache.Cache, commentID string) error {
	if err := DeletePlanComment(ctx, repo, rc, commentID); err != nil {
		return err
	}
	logInfo(ctx, "Deleted comment %s", commentID)
	return nil
}

// ExecuteSeed replaces the backend contents with the demo dataset.
func ExecuteSeed(ctx context.Context, _ *contract.Config, repo contract.Repository, rc *reqcache.Cache) error {
	return ResetDemoData(ctx, repo, rc)
}

// ExecuteStatus prints the backend status with the request cache counters.
func ExecuteStatus(ctx context.Context, cfg *contract.Config, repo contract.Repository, rc *reqcache.Cache) error {
	status, err := repo.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	var stats schema.CacheStats
	if rc != nil {
		stats = rc.Stats()
	}
	return out.WriteStatus(status, stats, cfg)
}

// ReadPlanFile decodes an evaluation plan from a JSON file.
func ReadPlanFile(path string) (*schema.EvaluationPlan, error) {
	if path == "" {
		return nil, errors.New("a plan file is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var plan schema.EvaluationPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan file %s: %w", path, err)
	}
	return &plan, nil
}
