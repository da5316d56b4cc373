package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

func writePlanFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func jsonConfig(t *testing.T) (*contract.Config, string) {
	t.Helper()
	cfg := demoConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "out.json")
	return cfg, cfg.OutputFile
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestGetSemesterSummaryResults_TruncatesUpcoming(t *testing.T) {
	cfg := demoConfig()
	cfg.UpcomingLimit = 2

	summary, duration, err := GetSemesterSummaryResults(quietCtx(), cfg, demoStore(), reqcache.New())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, duration.Nanoseconds(), int64(0))
	require.Len(t, summary.Upcoming, 2)
	assert.Equal(t, "act2", summary.Upcoming[0].ActivityID)
	assert.Equal(t, "act5", summary.Upcoming[1].ActivityID)
}

func TestExecuteSummary(t *testing.T) {
	cfg, path := jsonConfig(t)
	require.NoError(t, ExecuteSummary(quietCtx(), cfg, demoStore(), reqcache.New()))

	var summary schema.SemesterSummary
	readJSON(t, path, &summary)
	require.Len(t, summary.Courses, 2)
	require.NotNil(t, summary.OverallAverage)
	assert.InDelta(t, 1.59, *summary.OverallAverage, 1e-9)
}

func TestExecuteCourseGrade(t *testing.T) {
	t.Run("requires a course", func(t *testing.T) {
		cfg, _ := jsonConfig(t)
		assert.Error(t, ExecuteCourseGrade(quietCtx(), cfg, demoStore(), nil, ""))
	})

	t.Run("writes the view", func(t *testing.T) {
		cfg, path := jsonConfig(t)
		require.NoError(t, ExecuteCourseGrade(quietCtx(), cfg, demoStore(), nil, "CS201"))

		var view schema.CourseGradeView
		readJSON(t, path, &view)
		assert.Equal(t, "CS201", view.CourseID)
		assert.Len(t, view.Rows, 4)
	})
}

func TestExecutePlanValidate(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		cfg, path := jsonConfig(t)
		planPath := writePlanFile(t, `{"subject_code":"CS101","semester":"2024-1","activities":[
			{"id":"a1","name":"Exam","percentage":"33.33"},
			{"id":"a2","name":"Project","percentage":33.33},
			{"id":"a3","name":"Quiz","percentage":33.34}]}`)
		require.NoError(t, ExecutePlanValidate(quietCtx(), cfg, planPath))

		var check map[string]any
		readJSON(t, path, &check)
		assert.Equal(t, true, check["valid"])
	})

	t.Run("invalid plan", func(t *testing.T) {
		cfg, path := jsonConfig(t)
		planPath := writePlanFile(t, `{"subject_code":"CS101","semester":"2024-1","activities":[
			{"id":"a1","name":"Exam","percentage":50},
			{"id":"a2","name":"Project","percentage":45}]}`)
		err := ExecutePlanValidate(quietCtx(), cfg, planPath)
		assert.ErrorIs(t, err, grading.ErrPercentageSum)

		var check map[string]any
		readJSON(t, path, &check)
		assert.Equal(t, false, check["valid"])
		assert.InDelta(t, 95.0, check["total_percentage"], 1e-9)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, _ := jsonConfig(t)
		assert.Error(t, ExecutePlanValidate(quietCtx(), cfg, filepath.Join(t.TempDir(), "nope.json")))
	})
}

func TestExecutePlanSave(t *testing.T) {
	repo := demoStore()

	t.Run("create", func(t *testing.T) {
		cfg, path := jsonConfig(t)
		planPath := writePlanFile(t, `{"subject_code":"CS302","semester":"2024-1","activities":[
			{"id":"a1","name":"Exam","percentage":100}]}`)
		require.NoError(t, ExecutePlanSave(quietCtx(), cfg, repo, nil, planPath))

		var saved schema.EvaluationPlan
		readJSON(t, path, &saved)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "CS302", saved.SubjectCode)
	})

	t.Run("update", func(t *testing.T) {
		cfg, path := jsonConfig(t)
		planPath := writePlanFile(t, `{"_id":"plan1","subject_code":"CS101","semester":"2024-1","activities":[
			{"id":"act1","name":"Midterm Exam","percentage":50},
			{"id":"act2","name":"Final Project","percentage":50}]}`)
		require.NoError(t, ExecutePlanSave(quietCtx(), cfg, repo, nil, planPath))

		var saved schema.EvaluationPlan
		readJSON(t, path, &saved)
		assert.Equal(t, "plan1", saved.ID)
		assert.Len(t, saved.Activities, 2)
	})

	t.Run("invalid plan is not stored", func(t *testing.T) {
		cfg, _ := jsonConfig(t)
		before, err := repo.GetStatus(quietCtx())
		require.NoError(t, err)

		planPath := writePlanFile(t, `{"subject_code":"CS403","semester":"2024-1","activities":[
			{"id":"a1","name":"Exam","percentage":95}]}`)
		assert.ErrorIs(t, ExecutePlanSave(quietCtx(), cfg, repo, nil, planPath), grading.ErrPercentageSum)

		after, err := repo.GetStatus(quietCtx())
		require.NoError(t, err)
		assert.Equal(t, before.Plans, after.Plans)
	})
}

func TestExecuteGradeSave(t *testing.T) {
	cfg, path := jsonConfig(t)
	repo := demoStore()

	grade := &schema.StudentGrade{EvaluationPlanID: "plan1", SubjectCode: "CS101", ActivityID: "act2", Grade: 3.5}
	require.NoError(t, ExecuteGradeSave(quietCtx(), cfg, repo, nil, grade))

	var saved schema.StudentGrade
	readJSON(t, path, &saved)
	assert.Equal(t, contract.DefaultStudentID, saved.StudentID)
	assert.Equal(t, contract.DefaultSemester, saved.Semester)
	assert.InDelta(t, 3.5, saved.Grade.Float64(), 1e-9)

	summary, err := BuildSemesterReport(quietCtx(), repo, nil, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 4.01, summary.Courses[0].CurrentGrade, 1e-9)
	assert.InDelta(t, 100.0, summary.Courses[0].CompletedPercentage, 1e-9)
}

func TestExecuteSeedAndStatus(t *testing.T) {
	cfg, path := jsonConfig(t)
	repo := demoStore()
	rc := reqcache.New()

	_, err := BuildSemesterReport(quietCtx(), repo, rc, cfg)
	require.NoError(t, err)
	require.NoError(t, ExecuteSeed(quietCtx(), cfg, repo, rc))
	assert.Equal(t, 0, rc.Len())

	require.NoError(t, ExecuteStatus(quietCtx(), cfg, repo, rc))
	var status struct {
		Store schema.StoreStatus `json:"store"`
		Cache schema.CacheStats  `json:"cache"`
	}
	readJSON(t, path, &status)
	assert.Equal(t, "memory", status.Store.Backend)
	assert.Equal(t, 4, status.Store.Courses)
	assert.Positive(t, status.Cache.Misses)
}

func TestExecuteComments(t *testing.T) {
	cfg, path := jsonConfig(t)
	repo := demoStore()
	rc := reqcache.New()

	require.NoError(t, ExecuteCommentAdd(quietCtx(), cfg, repo, rc,
		&schema.PlanComment{EvaluationPlanID: "plan2", Comment: "Quizzes every week?"}))
	var created schema.PlanComment
	readJSON(t, path, &created)
	assert.Equal(t, contract.DefaultStudentID, created.StudentID)
	assert.NotEmpty(t, created.ID)

	require.NoError(t, ExecuteCommentList(quietCtx(), cfg, repo, rc, "plan2"))
	var listed []schema.PlanComment
	readJSON(t, path, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Quizzes every week?", listed[0].Comment)

	require.NoError(t, ExecuteCommentDelete(quietCtx(), cfg, repo, rc, created.ID))
	err := ExecuteCommentAdd(quietCtx(), cfg, repo, rc, &schema.PlanComment{EvaluationPlanID: "plan2", Comment: " "})
	assert.ErrorIs(t, err, grading.ErrInvalidComment)
}

func TestExecuteDeletes(t *testing.T) {
	cfg, _ := jsonConfig(t)
	repo := demoStore()
	rc := reqcache.New()

	require.NoError(t, ExecutePlanDelete(quietCtx(), cfg, repo, rc, "plan2"))
	assert.ErrorIs(t, ExecutePlanDelete(quietCtx(), cfg, repo, rc, "plan2"), contract.ErrNotFound)

	view, err := BuildCourseGrade(quietCtx(), repo, rc, cfg, "CS201")
	require.NoError(t, err)
	assert.Equal(t, schema.PlanAbsent, view.PlanState)

	assert.ErrorIs(t, ExecuteGradeDelete(quietCtx(), cfg, repo, rc, "missing"), contract.ErrNotFound)
}

func TestReadPlanFile(t *testing.T) {
	_, err := ReadPlanFile("")
	assert.Error(t, err)

	_, err = ReadPlanFile(writePlanFile(t, "not json"))
	assert.Error(t, err)

	p, err := ReadPlanFile(writePlanFile(t, `{"subject_code":"CS101","semester":"2024-1","activities":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "CS101", p.SubjectCode)
	assert.NotNil(t, p.Activities)
}
