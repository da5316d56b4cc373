// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints a semester summary using the configured output format.
func (ow *OutWriter) WriteSummary(summary *schema.SemesterSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteSummary(summary, cfg, duration)
}

// WriteCourseGrade prints a course grade view using the configured output format.
func (ow *OutWriter) WriteCourseGrade(view *schema.CourseGradeView, cfg *contract.Config) error {
	return WriteCourseGrade(view, cfg)
}

// WritePlanCheck prints the validation outcome of a plan.
func (ow *OutWriter) WritePlanCheck(plan *schema.EvaluationPlan, verr error, cfg *contract.Config) error {
	return WritePlanCheck(plan, verr, cfg)
}

// WriteStatus prints backend and cache status.
func (ow *OutWriter) WriteStatus(status schema.StoreStatus, stats schema.CacheStats, cfg *contract.Config) error {
	return WriteStatus(status, stats, cfg)
}

// WriteComments prints the comments left on a plan.
func (ow *OutWriter) WriteComments(planID string, comments []schema.PlanComment, cfg *contract.Config) error {
	return WriteComments(planID, comments, cfg)
}

// WriteRecord prints a stored record as JSON.
func (ow *OutWriter) WriteRecord(record any, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, record)
	}, "Wrote JSON")
}

// getMaxTableNameWidth calculates the maximum width for course and activity names
// in table output based on terminal width.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Code + Credits + Grade + Completed + Label + Plan, plus borders and padding
	baseWidth := 70

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
