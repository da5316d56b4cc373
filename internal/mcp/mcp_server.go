// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
)

// NewMCPServer initializes and configures the Trackademic MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, repo contract.Repository) *server.MCPServer {
	s := server.NewMCPServer(
		"Trackademic Grades Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		repo:    repo,
		rc:      reqcache.New(),
	}

	// --- 1. Tool: get_semester_summary ---
	s.AddTool(mcp.NewTool("get_semester_summary",
		mcp.WithDescription("Summarize the current grade, completion and upcoming evaluations of every course a student takes in a semester."),
		mcp.WithString("student_id", mcp.Description("Student identifier (defaults to the configured student).")),
		mcp.WithString("semester", mcp.Description("Semester code such as 2024-1 (defaults to the configured semester).")),
		mcp.WithString("average_policy", mcp.Description("Which courses count toward the overall average."), mcp.Enum("nonzero", "all")),
		mcp.WithNumber("upcoming_limit", mcp.Description("Maximum number of upcoming evaluations returned.")),
	), h.handleGetSemesterSummary)

	// --- 2. Tool: get_course_grade ---
	s.AddTool(mcp.NewTool("get_course_grade",
		mcp.WithDescription("Show the evaluation plan of one course with the grade recorded for each activity."),
		mcp.WithString("course_code", mcp.Description("Subject code of the course, e.g. CS101."), mcp.Required()),
		mcp.WithString("student_id", mcp.Description("Student identifier.")),
		mcp.WithString("semester", mcp.Description("Semester code.")),
	), h.handleGetCourseGrade)

	// --- 3. Tool: validate_plan ---
	s.AddTool(mcp.NewTool("validate_plan",
		mcp.WithDescription("Check that an evaluation plan is well formed and that its activity percentages sum to 100."),
		mcp.WithString("plan_json", mcp.Description("The evaluation plan as a JSON document."), mcp.Required()),
	), h.handleValidatePlan)

	// --- 4. Tool: reset_demo_data ---
	s.AddTool(mcp.NewTool("reset_demo_data",
		mcp.WithDescription("Replace every course, enrollment, plan and grade with the demo dataset."),
		mcp.WithBoolean("confirm", mcp.Description("Must be true; the current data is deleted."), mcp.Required()),
	), h.handleResetDemoData)

	// --- 5. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report the backend, record counts and request cache counters."),
	), h.handleGetStoreStatus)

	return s
}

// StartMCPServer starts the Trackademic MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, repo contract.Repository) error {
	s := NewMCPServer(baseCfg, repo)
	return server.ServeStdio(s)
}
