package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/trackademic/trackademic/core"
	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
// rc lives as long as the server, so repeated questions in one session reuse fetched data.
type toolHandler struct {
	baseCfg *contract.Config
	repo    contract.Repository
	rc      *reqcache.Cache
}

// configFor applies the student and semester overrides of a request.
func (h *toolHandler) configFor(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("student_id", ""); s != "" {
		cfg.StudentID = s
	}
	if s := request.GetString("semester", ""); s != "" {
		cfg.Semester = s
	}
	return cfg
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetSemesterSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configFor(request)
	if p := request.GetString("average_policy", ""); p != "" {
		policy := schema.AveragePolicy(p)
		if _, ok := schema.ValidAveragePolicies[policy]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid average_policy %q", p)), nil
		}
		cfg.AveragePolicy = policy
	}
	if l := request.GetInt("upcoming_limit", 0); l > 0 {
		cfg.UpcomingLimit = l
	}

	summary, _, err := core.GetSemesterSummaryResults(core.WithSuppressLogs(ctx), cfg, h.repo, h.rc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *toolHandler) handleGetCourseGrade(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("course_code", "")
	if code == "" {
		return mcp.NewToolResultError("course_code is required"), nil
	}
	cfg := h.configFor(request)

	view, err := core.BuildCourseGrade(core.WithSuppressLogs(ctx), h.repo, h.rc, cfg, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("course grade failed: %v", err)), nil
	}
	return jsonResult(view)
}

// planValidation is the result of the validate_plan tool.
type planValidation struct {
	Valid           bool                 `json:"valid"`
	TotalPercentage float64              `json:"total_percentage"`
	Error           string               `json:"error,omitempty"`
	Fields          []grading.FieldError `json:"fields,omitempty"`
}

func (h *toolHandler) handleValidatePlan(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("plan_json", "")
	if raw == "" {
		return mcp.NewToolResultError("plan_json is required"), nil
	}
	var plan schema.EvaluationPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid plan JSON: %v", err)), nil
	}

	res := planValidation{Valid: true, TotalPercentage: plan.TotalPercentage()}
	if err := grading.ValidatePlan(&plan); err != nil {
		res.Valid = false
		var verr *grading.ValidationError
		if errors.As(err, &verr) {
			res.Error = verr.Err.Error()
			res.Fields = verr.Fields
		} else {
			res.Error = err.Error()
		}
	}
	return jsonResult(res)
}

func (h *toolHandler) handleResetDemoData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !request.GetBool("confirm", false) {
		return mcp.NewToolResultError("confirm must be true to reset the data"), nil
	}
	if err := core.ResetDemoData(core.WithSuppressLogs(ctx), h.repo, h.rc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Demo data has been seeded for student %s", contract.DefaultStudentID)), nil
}

func (h *toolHandler) handleGetStoreStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.repo.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(struct {
		Store schema.StoreStatus `json:"store"`
		Cache schema.CacheStats  `json:"cache"`
	}{status, h.rc.Stats()})
}
