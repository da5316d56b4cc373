package outwriter

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

func float(v float64) *float64 { return &v }

func sampleSummary() *schema.SemesterSummary {
	return &schema.SemesterSummary{
		StudentID:     "A00377013",
		Semester:      "2024-1",
		AveragePolicy: schema.NonZeroAverage,
		Courses: []schema.CourseResult{
			{
				CourseID:   "CS101",
				CourseName: "Introduction to Programming",
				Credits:    3,
				PlanID:     "plan-1",
				PlanState:  schema.PlanComplete,
				AggregatedGradeResult: schema.AggregatedGradeResult{
					CurrentGrade: 2.61, CompletedPercentage: 60, HasData: true,
				},
			},
			{
				CourseID:   "MA101",
				CourseName: "Calculus",
				PlanState:  schema.PlanAbsent,
				Error:      "backend unavailable",
			},
		},
		OverallAverage: float(2.61),
		Upcoming: []schema.UpcomingEvaluation{
			{CourseName: "Introduction to Programming", CourseID: "CS101", ActivityID: "act2", ActivityName: "Final Project", Percentage: 40},
		},
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sampleView() *schema.CourseGradeView {
	return &schema.CourseGradeView{
		StudentID:  "A00377013",
		CourseID:   "CS101",
		CourseName: "Introduction to Programming",
		Semester:   "2024-1",
		Plan:       &schema.EvaluationPlan{ID: "plan-1", SubjectCode: "CS101", Semester: "2024-1"},
		PlanState:  schema.PlanComplete,
		Rows: []schema.ActivityGradeRow{
			{Activity: schema.Activity{ID: "act1", Name: "Midterm", Percentage: 60}, GradeID: "g1", Grade: float(4.35)},
			{Activity: schema.Activity{ID: "act2", Name: "Final Project", Percentage: 40}},
		},
		AggregatedGradeResult: schema.AggregatedGradeResult{CurrentGrade: 2.61, CompletedPercentage: 60, HasData: true},
	}
}

func TestWriteSummaryTable(t *testing.T) {
	cfg := &contract.Config{Precision: 2, Width: 120, BatchSize: 5, Backend: schema.MemoryBackend}
	var buf bytes.Buffer
	err := writeSummaryTable(sampleSummary(), cfg, createFormatter(cfg.Precision), time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "A00377013: 2024-1")
	assert.Contains(t, out, "CS101")
	assert.Contains(t, out, "2.61")
	assert.Contains(t, out, "60.00%")
	assert.Contains(t, out, "Failing")
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, "Overall average (nonzero): 2.61")
	assert.Contains(t, out, "MA101: backend unavailable")
	assert.Contains(t, out, "Final Project")
	assert.Contains(t, out, "Backend: memory")
}

func TestWriteSummaryTable_Empty(t *testing.T) {
	cfg := &contract.Config{Precision: 1, Width: 80}
	summary := &schema.SemesterSummary{AveragePolicy: schema.AllAverage}
	var buf bytes.Buffer
	require.NoError(t, writeSummaryTable(summary, cfg, createFormatter(1), 0, &buf))
	assert.Contains(t, buf.String(), "Overall average (all): -")
	assert.Contains(t, buf.String(), "No upcoming evaluations.")
}

func TestWriteCSVResultsForSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForSummary(&buf, sampleSummary(), createFormatter(2)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "course_id,course_name,credits"))
	assert.Equal(t, "CS101,Introduction to Programming,3,plan-1,complete,2.61,60.00,true,Failing,", lines[1])
	assert.Equal(t, "MA101,Calculus,0,,absent,0.00,0.00,false,Pending,backend unavailable", lines[2])
}

func TestWriteSummary_Formats(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "summary.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 2}
		require.NoError(t, WriteSummary(sampleSummary(), cfg, time.Second))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, "2024-1", decoded["semester"])
		assert.Equal(t, 2.61, decoded["overall_average"])
		assert.Len(t, decoded["courses"], 2)
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "summary.csv")
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 2}
		require.NoError(t, WriteSummary(sampleSummary(), cfg, time.Second))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "CS101")
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "summary.parquet")
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path, Precision: 2}
		require.NoError(t, WriteSummary(sampleSummary(), cfg, time.Second))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestWriteCourseTable(t *testing.T) {
	cfg := &contract.Config{Precision: 2, Width: 100}
	var buf bytes.Buffer
	require.NoError(t, writeCourseTable(sampleView(), cfg, createFormatter(2), &buf))

	out := buf.String()
	assert.Contains(t, out, "CS101 Introduction to Programming (2024-1)")
	assert.Contains(t, out, "Midterm")
	assert.Contains(t, out, "4.35")
	assert.Contains(t, out, "Current grade: 2.61 (Failing), 60.00% evaluated")
}

func TestWriteCourseTable_NoPlan(t *testing.T) {
	view := &schema.CourseGradeView{CourseID: "CS999", PlanState: schema.PlanAbsent}
	var buf bytes.Buffer
	require.NoError(t, writeCourseTable(view, &contract.Config{}, createFormatter(2), &buf))
	assert.Contains(t, buf.String(), "No evaluation plan found")
}

func TestWriteCSVResultsForCourse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForCourse(&buf, sampleView(), createFormatter(2)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CS101,act1,Midterm,60.00,g1,4.35", lines[1])
	assert.Equal(t, "CS101,act2,Final Project,40.00,,", lines[2])
}

func TestWriteCourseGrade_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path}
	require.NoError(t, WriteCourseGrade(sampleView(), cfg))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestNewPlanCheck(t *testing.T) {
	plan := &schema.EvaluationPlan{
		SubjectCode: "CS101",
		Semester:    "2024-1",
		Activities: []schema.Activity{
			{ID: "a1", Name: "Quiz", Percentage: 50},
			{ID: "a2", Name: "Exam", Percentage: 45},
		},
	}

	t.Run("valid", func(t *testing.T) {
		check := newPlanCheck(plan, nil)
		assert.True(t, check.Valid)
		assert.Empty(t, check.Error)
		assert.InDelta(t, 95.0, check.Total, 1e-9)
	})

	t.Run("validation error", func(t *testing.T) {
		verr := grading.ValidatePlan(plan)
		require.Error(t, verr)
		check := newPlanCheck(plan, verr)
		assert.False(t, check.Valid)
		assert.Equal(t, grading.ErrPercentageSum.Error(), check.Error)
		require.NotEmpty(t, check.Fields)
		assert.Equal(t, "activities", check.Fields[0].Field)
	})

	t.Run("other error", func(t *testing.T) {
		check := newPlanCheck(nil, errors.New("boom"))
		assert.False(t, check.Valid)
		assert.Equal(t, "boom", check.Error)
		assert.Zero(t, check.Total)
	})
}

func TestWritePlanCheckTable(t *testing.T) {
	plan := &schema.EvaluationPlan{
		SubjectCode: "CS101",
		Semester:    "2024-1",
		Activities:  []schema.Activity{{ID: "a1", Name: "Quiz", Percentage: 95}},
	}
	cfg := &contract.Config{Precision: 1, Width: 100}

	var buf bytes.Buffer
	require.NoError(t, writePlanCheckTable(newPlanCheck(plan, grading.ValidatePlan(plan)), cfg, &buf))
	out := buf.String()
	assert.Contains(t, out, "Total: 95.0%")
	assert.Contains(t, out, "Plan is invalid")
	assert.Contains(t, out, "- activities:")

	plan.Activities[0].Percentage = 100
	buf.Reset()
	require.NoError(t, writePlanCheckTable(newPlanCheck(plan, grading.ValidatePlan(plan)), cfg, &buf))
	assert.Contains(t, buf.String(), "Plan is valid")
}

func TestWriteStatusText(t *testing.T) {
	status := schema.StoreStatus{Backend: "sqlite", Connected: true, Courses: 4, Enrollments: 2, Plans: 3, Grades: 4, SchemaVersion: 2}
	stats := schema.CacheStats{Entries: 3, Hits: 7, Misses: 3}

	var buf bytes.Buffer
	require.NoError(t, writeStatusText(status, stats, &buf))
	out := buf.String()
	assert.Contains(t, out, "Backend:     sqlite")
	assert.Contains(t, out, "Connected:   yes")
	assert.Contains(t, out, "Schema:      v2")
	assert.NotContains(t, out, "dirty")
	assert.Contains(t, out, "3 entries, 7 hits, 3 misses")
}

func TestWriteStatus_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
	require.NoError(t, WriteStatus(schema.StoreStatus{Backend: "memory", Connected: true}, schema.CacheStats{Hits: 1}, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		Store schema.StoreStatus `json:"store"`
		Cache schema.CacheStats  `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "memory", decoded.Store.Backend)
	assert.Equal(t, int64(1), decoded.Cache.Hits)
}

func TestWriteCommentsTable(t *testing.T) {
	cfg := &contract.Config{Width: 120}
	comments := []schema.PlanComment{
		{ID: "c1", StudentID: "A1", StudentName: "Ana", Comment: "Labs should weigh more",
			CreatedAt: schema.NewTimestamp(time.Date(2024, 2, 3, 9, 30, 0, 0, time.UTC))},
		{ID: "c2", StudentID: "A2", Comment: "Agreed"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCommentsTable("plan1", comments, cfg, &buf))
	out := buf.String()
	assert.Contains(t, out, "Comments on plan plan1")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "2024-02-03 09:30")
	assert.Contains(t, out, "A2")
	assert.Contains(t, out, "Labs should weigh more")

	buf.Reset()
	require.NoError(t, writeCommentsTable("plan9", nil, cfg, &buf))
	assert.Equal(t, "No comments on plan plan9\n", buf.String())
}

func TestWriteComments_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
	require.NoError(t, WriteComments("plan1", nil, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))

	require.NoError(t, WriteComments("plan1", []schema.PlanComment{{ID: "c1", EvaluationPlanID: "plan1", Comment: "ok"}}, cfg))
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "ok", decoded[0]["comment"])
}

func TestFormatOptional(t *testing.T) {
	fmtFloat := createFormatter(2)
	assert.Equal(t, "-", formatOptional(nil, fmtFloat))
	assert.Equal(t, "1.50", formatOptional(float(1.5), fmtFloat))
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 80, expected: 15},
		{width: 100, expected: 30},
		{width: 200, expected: 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, getMaxTableNameWidth(&contract.Config{Width: tt.width}))
	}
}
