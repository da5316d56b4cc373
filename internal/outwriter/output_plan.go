package outwriter

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// planCheck is the JSON shape of a plan validation outcome.
type planCheck struct {
	Plan   *schema.EvaluationPlan `json:"plan"`
	Total  float64                `json:"total_percentage"`
	Valid  bool                   `json:"valid"`
	Error  string                 `json:"error,omitempty"`
	Fields []grading.FieldError   `json:"fields,omitempty"`
}

func newPlanCheck(plan *schema.EvaluationPlan, verr error) planCheck {
	check := planCheck{Plan: plan, Valid: verr == nil}
	if plan != nil {
		check.Total = plan.TotalPercentage()
	}
	if verr == nil {
		return check
	}
	var ve *grading.ValidationError
	if errors.As(verr, &ve) {
		check.Error = ve.Err.Error()
		check.Fields = ve.Fields
	} else {
		check.Error = verr.Error()
	}
	return check
}

// WritePlanCheck prints the activities of a plan with the outcome of validating it.
// Only text and JSON are supported; other formats fall back to text.
func WritePlanCheck(plan *schema.EvaluationPlan, verr error, cfg *contract.Config) error {
	check := newPlanCheck(plan, verr)
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, check)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writePlanCheckTable(check, cfg, w)
	}, "Wrote table")
}

func writePlanCheckTable(check planCheck, cfg *contract.Config, writer io.Writer) error {
	fmtFloat := createFormatter(cfg.Precision)

	if check.Plan != nil {
		if _, err := fmt.Fprintf(writer, "📋 %s (%s)\n", check.Plan.SubjectCode, check.Plan.Semester); err != nil {
			return err
		}
		table := tablewriter.NewWriter(writer)
		table.Header([]string{"ID", "Activity", "Weight"})
		nameWidth := getMaxTableNameWidth(cfg)
		var data [][]string
		for _, a := range check.Plan.Activities {
			data = append(data, []string{a.ID, contract.TruncateText(a.Name, nameWidth), fmtFloat(a.Percentage.Float64()) + "%"})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Total: %s%%\n", fmtFloat(check.Total)); err != nil {
		return err
	}

	if check.Valid {
		_, err := fmt.Fprintln(writer, contract.PassingColor.Sprint("✅ Plan is valid"))
		return err
	}
	if _, err := fmt.Fprintf(writer, "%s: %s\n", contract.FailingColor.Sprint("❌ Plan is invalid"), check.Error); err != nil {
		return err
	}
	for _, f := range check.Fields {
		if _, err := fmt.Fprintf(writer, "  - %s: %s\n", f.Field, f.Error); err != nil {
			return err
		}
	}
	return nil
}
