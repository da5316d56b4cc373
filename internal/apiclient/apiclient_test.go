package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/api/", "secret", time.Second)
	c.backoff = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientReads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/student-courses", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A1", r.URL.Query().Get("student_id"))
		assert.Equal(t, "2024-1", r.URL.Query().Get("semester"))
		_, _ = io.WriteString(w, `[{"_id":"sc1","student_id":"A1","subject_code":"CS101","semester":"2024-1"}]`)
	})
	mux.HandleFunc("GET /api/evaluation-plans", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"p1","subject_code":"CS101","semester":"2024-1",
			"activities":[{"id":"a1","name":"Exam","percentage":"60"},{"id":"a2","name":"Lab","percentage":40}],
			"created_at":"Mon, 15 Jan 2024 10:00:00 GMT","updated_at":"2024-01-16T09:30:00"}]`)
	})
	mux.HandleFunc("GET /api/student-grades", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("evaluation_plan_id"))
		_, _ = io.WriteString(w, `[{"_id":"g1","activity_id":"a1","grade":4,"subject_code":"CS101"}]`)
	})
	mux.HandleFunc("GET /api/student-grades/semester/A1/2024-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"subject_code":"CS101","calculated_grade":3.4}`)
	})
	mux.HandleFunc("GET /api/courses/CS101", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"_id":"x","subject_code":"CS101","subject_name":"Intro"}`)
	})
	mux.HandleFunc("GET /api/courses/NOPE", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course NOPE not found"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("student courses", func(t *testing.T) {
		courses, err := c.GetStudentCourses(ctx, "A1", "2024-1")
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "CS101", courses[0].SubjectCode)
	})

	t.Run("plans decode loose numbers and dates", func(t *testing.T) {
		plans, err := c.GetEvaluationPlans(ctx, "CS101", "2024-1")
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.InDelta(t, 100.0, plans[0].TotalPercentage(), 1e-9)
		assert.Equal(t, 2024, plans[0].CreatedAt.Year())
		assert.Equal(t, 16, plans[0].UpdatedAt.Day())
	})

	t.Run("grades by plan", func(t *testing.T) {
		records, err := c.GetGradesByPlan(ctx, "p1", "A1")
		require.NoError(t, err)
		set := schema.NewGradeSet("CS101", records)
		assert.Equal(t, schema.ItemizedShape, set.Shape)
	})

	t.Run("precomputed semester payload", func(t *testing.T) {
		records, err := c.GetGradesBySemester(ctx, "A1", "2024-1")
		require.NoError(t, err)
		set := schema.NewGradeSet("CS101", records)
		assert.Equal(t, schema.PrecomputedShape, set.Shape)
		require.NotNil(t, set.Precomputed)
		assert.InDelta(t, 3.4, *set.Precomputed, 1e-9)
	})

	t.Run("course falls back to enrollment fields", func(t *testing.T) {
		course, err := c.GetCourse(ctx, "CS101")
		require.NoError(t, err)
		assert.Equal(t, "CS101", course.Code)
		assert.Equal(t, "Intro", course.SubjectName)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.GetCourse(ctx, "NOPE")
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))

	courses, err := c.GetStudentCourses(context.Background(), "A1", "2024-1")
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad"})
	}))

	_, err := c.GetStudentCourses(context.Background(), "A1", "2024-1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "bad", se.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientWrites(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/evaluation-plans", func(w http.ResponseWriter, r *http.Request) {
		var plan schema.EvaluationPlan
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&plan))
		plan.ID = "new-plan"
		writeJSON(w, http.StatusCreated, plan)
	})
	mux.HandleFunc("PUT /api/evaluation-plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "missing"})
			return
		}
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasID := body["_id"]
		assert.False(t, hasID)
		body["_id"] = "p1"
		writeJSON(w, http.StatusOK, body)
	})
	mux.HandleFunc("PUT /api/student-grades/g1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"_id": "g1", "grade": 4.5})
	})
	mux.HandleFunc("POST /api/seed-data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(adminKeyHeader) != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "seeded"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	created, err := c.CreatePlan(ctx, &schema.EvaluationPlan{SubjectCode: "CS101", Semester: "2024-1"})
	require.NoError(t, err)
	assert.Equal(t, "new-plan", created.ID)

	updated, err := c.UpdatePlan(ctx, &schema.EvaluationPlan{ID: "p1", SubjectCode: "CS101"})
	require.NoError(t, err)
	assert.Equal(t, "p1", updated.ID)

	_, err = c.UpdatePlan(ctx, &schema.EvaluationPlan{ID: "p9"})
	assert.ErrorIs(t, err, contract.ErrNotFound)

	grade, err := c.UpdateGrade(ctx, &schema.StudentGrade{ID: "g1", Grade: 4.5})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, grade.Grade.Float64(), 1e-9)

	require.NoError(t, c.ResetAndSeed(ctx, schema.Dataset{}))

	c.adminKey = "wrong"
	err = c.ResetAndSeed(ctx, schema.Dataset{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}

func TestClientCommentsAndDeletes(t *testing.T) {
	var deleted []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/plan-comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("evaluation_plan_id"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"_id": "c1", "evaluation_plan_id": "p1", "student_id": "A1", "comment": "Too many quizzes"},
		})
	})
	mux.HandleFunc("POST /api/plan-comments", func(w http.ResponseWriter, r *http.Request) {
		var body schema.PlanComment
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body.ID = "c2"
		writeJSON(w, http.StatusCreated, body)
	})
	mux.HandleFunc("DELETE /api/{kind}/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "gone" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		deleted = append(deleted, r.PathValue("kind")+"/"+r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	comments, err := c.GetPlanComments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Too many quizzes", comments[0].Comment)

	created, err := c.CreatePlanComment(ctx, &schema.PlanComment{EvaluationPlanID: "p1", StudentID: "A1", Comment: "Agreed"})
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)
	assert.Equal(t, "Agreed", created.Comment)

	require.NoError(t, c.DeletePlanComment(ctx, "c2"))
	require.NoError(t, c.DeleteGrade(ctx, "g1"))
	require.NoError(t, c.DeletePlan(ctx, "p1"))
	assert.Equal(t, []string{"plan-comments/c2", "student-grades/g1", "evaluation-plans/p1"}, deleted)

	assert.ErrorIs(t, c.DeletePlan(ctx, "gone"), contract.ErrNotFound)
}

func TestClientStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to TrackAcademic API"})
	}))
	status, err := c.GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "http", status.Backend)
	assert.NoError(t, c.Close())
}
