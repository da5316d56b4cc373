// Package apiclient is a Repository over the TrackAcademic REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// adminKeyHeader authorizes the seed endpoint.
const adminKeyHeader = "X-Admin-Key"

// maxRetries bounds retries of idempotent reads on transient failures.
const maxRetries = 2

// Client calls the API under a base URL such as http://localhost:5000/api.
type Client struct {
	baseURL  string
	adminKey string
	http     *http.Client
	backoff  time.Duration
}

var _ contract.Repository = &Client{} // Compile-time check

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api returned %d", e.Code)
}

// New returns a client for baseURL.
func New(baseURL, adminKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = contract.DefaultRequestTimeout
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		adminKey: adminKey,
		http:     &http.Client{Timeout: timeout},
		backoff:  200 * time.Millisecond,
	}
}

// root is the server origin; the welcome endpoint lives outside the api prefix.
func (c *Client) root() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	u.Path = "/"
	u.RawQuery = ""
	return u.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get decodes the JSON body of a GET into out, retrying transient failures.
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	b := retry.WithMaxRetries(maxRetries, retry.NewExponential(c.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodGet, rawURL, nil, nil)
		if err != nil {
			var se *StatusError
			if errors.Is(err, contract.ErrNotFound) || (errors.As(err, &se) && se.Code < http.StatusInternalServerError) {
				return err
			}
			return retry.RetryableError(err)
		}
		if out == nil {
			return nil
		}
		if raw, ok := out.(*[]byte); ok {
			*raw = body
			return nil
		}
		return json.Unmarshal(body, out)
	})
}

// send issues a write with a JSON body and decodes the response into out.
func (c *Client) send(ctx context.Context, method, rawURL string, in, out any, header http.Header) error {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}
	body, err := c.do(ctx, method, rawURL, payload, header)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload io.Reader, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", contract.ErrNotFound, apiErr.Error)
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	return body, nil
}

// GetStudentCourses returns the enrollments of a student in a semester.
func (c *Client) GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error) {
	var out []schema.StudentCourse
	q := url.Values{"student_id": {studentID}, "semester": {semester}}
	if err := c.get(ctx, c.endpoint("/student-courses", q), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch student courses: %w", err)
	}
	return out, nil
}

// GetEvaluationPlans returns every plan for a subject in a semester.
func (c *Client) GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error) {
	var out []schema.EvaluationPlan
	q := url.Values{"subject_code": {subjectCode}, "semester": {semester}}
	if err := c.get(ctx, c.endpoint("/evaluation-plans", q), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch evaluation plans: %w", err)
	}
	return out, nil
}

// GetGradesByPlan returns the grade records of a student under one plan.
func (c *Client) GetGradesByPlan(ctx context.Context, planID, studentID string) ([]schema.GradeRecord, error) {
	q := url.Values{"evaluation_plan_id": {planID}, "student_id": {studentID}}
	return c.getGradeRecords(ctx, c.endpoint("/student-grades", q))
}

// GetGradesBySemester returns the grade records of a student across a semester.
func (c *Client) GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error) {
	path := "/student-grades/semester/" + url.PathEscape(studentID) + "/" + url.PathEscape(semester)
	return c.getGradeRecords(ctx, c.endpoint(path, nil))
}

func (c *Client) getGradeRecords(ctx context.Context, rawURL string) ([]schema.GradeRecord, error) {
	var body []byte
	if err := c.get(ctx, rawURL, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch grades: %w", err)
	}
	return schema.DecodeGradePayload(body), nil
}

// courseBody accepts both catalog and enrollment documents for a subject.
type courseBody struct {
	ID          string `json:"_id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Credits     int    `json:"credits"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
}

// GetCourse returns details of a subject.
func (c *Client) GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error) {
	var body courseBody
	if err := c.get(ctx, c.endpoint("/courses/"+url.PathEscape(subjectCode), nil), &body); err != nil {
		return nil, fmt.Errorf("failed to fetch course %s: %w", subjectCode, err)
	}
	course := &schema.Course{
		ID:          body.ID,
		Code:        body.Code,
		Title:       body.Title,
		Credits:     body.Credits,
		SubjectName: body.SubjectName,
	}
	if course.Code == "" {
		course.Code = body.SubjectCode
	}
	return course, nil
}

// CreatePlan posts a new plan.
func (c *Client) CreatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	var out schema.EvaluationPlan
	if err := c.send(ctx, http.MethodPost, c.endpoint("/evaluation-plans", nil), plan, &out, nil); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &out, nil
}

// UpdatePlan replaces an existing plan.
func (c *Client) UpdatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	var out schema.EvaluationPlan
	path := "/evaluation-plans/" + url.PathEscape(plan.ID)
	if err := c.send(ctx, http.MethodPut, c.endpoint(path, nil), planUpdate(plan), &out, nil); err != nil {
		return nil, fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
	}
	return &out, nil
}

// planUpdate omits the key, which the server does not accept in an update body.
func planUpdate(plan *schema.EvaluationPlan) map[string]any {
	return map[string]any{
		"subject_code": plan.SubjectCode,
		"subject_name": plan.SubjectName,
		"semester":     plan.Semester,
		"activities":   plan.Activities,
	}
}

// CreateGrade posts a new grade.
func (c *Client) CreateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	var out schema.StudentGrade
	if err := c.send(ctx, http.MethodPost, c.endpoint("/student-grades", nil), grade, &out, nil); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}
	return &out, nil
}

// UpdateGrade changes the value of an existing grade.
func (c *Client) UpdateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	var out schema.StudentGrade
	path := "/student-grades/" + url.PathEscape(grade.ID)
	body := map[string]any{"grade": grade.Grade.Float64()}
	if err := c.send(ctx, http.MethodPut, c.endpoint(path, nil), body, &out, nil); err != nil {
		return nil, fmt.Errorf("failed to update grade %s: %w", grade.ID, err)
	}
	return &out, nil
}

// DeletePlan removes a plan.
func (c *Client) DeletePlan(ctx context.Context, planID string) error {
	path := "/evaluation-plans/" + url.PathEscape(planID)
	if err := c.send(ctx, http.MethodDelete, c.endpoint(path, nil), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", planID, err)
	}
	return nil
}

// DeleteGrade removes one grade.
func (c *Client) DeleteGrade(ctx context.Context, gradeID string) error {
	path := "/student-grades/" + url.PathEscape(gradeID)
	if err := c.send(ctx, http.MethodDelete, c.endpoint(path, nil), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete grade %s: %w", gradeID, err)
	}
	return nil
}

// GetPlanComments returns the comments of a plan.
func (c *Client) GetPlanComments(ctx context.Context, planID string) ([]schema.PlanComment, error) {
	q := url.Values{"evaluation_plan_id": {planID}}
	var out []schema.PlanComment
	if err := c.get(ctx, c.endpoint("/plan-comments", q), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch comments of plan %s: %w", planID, err)
	}
	return out, nil
}

// CreatePlanComment posts a new comment.
func (c *Client) CreatePlanComment(ctx context.Context, comment *schema.PlanComment) (*schema.PlanComment, error) {
	var out schema.PlanComment
	if err := c.send(ctx, http.MethodPost, c.endpoint("/plan-comments", nil), comment, &out, nil); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &out, nil
}

// DeletePlanComment removes one comment.
func (c *Client) DeletePlanComment(ctx context.Context, commentID string) error {
	path := "/plan-comments/" + url.PathEscape(commentID)
	if err := c.send(ctx, http.MethodDelete, c.endpoint(path, nil), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	return nil
}

// ResetAndSeed asks the server to load its own demo data. The dataset argument is
// ignored because the server owns the seed content.
func (c *Client) ResetAndSeed(ctx context.Context, _ schema.Dataset) error {
	header := http.Header{}
	header.Set(adminKeyHeader, c.adminKey)
	if err := c.send(ctx, http.MethodPost, c.endpoint("/seed-data", nil), nil, nil, header); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	return nil
}

// GetStatus reports whether the API answers. Counts are not available remotely.
func (c *Client) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(schema.HTTPBackend)}
	if _, err := c.do(ctx, http.MethodGet, c.root(), nil, nil); err == nil {
		status.Connected = true
	}
	return status, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
