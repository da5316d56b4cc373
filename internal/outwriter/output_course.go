package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/parquet"
	"github.com/trackademic/trackademic/schema"
)

// WriteCourseGrade outputs the grade view of one course.
func WriteCourseGrade(view *schema.CourseGradeView, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForCourse(w, view, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteActivityRowsParquet(parquet.ActivityRowsFromView(view), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.LogInfo("💾 Wrote Parquet to %s", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCourseTable(view, cfg, fmtFloat, w)
		}, "Wrote table")
	}
}

func writeCourseTable(view *schema.CourseGradeView, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "📘 %s %s (%s)\n", view.CourseID, view.CourseName, view.Semester); err != nil {
		return err
	}
	if view.Plan == nil {
		_, err := fmt.Fprintln(writer, "No evaluation plan found for this course.")
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Activity", "Weight", "Grade"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range view.Rows {
		data = append(data, []string{
			contract.TruncateText(r.Name, nameWidth),
			fmtFloat(r.Percentage.Float64()) + "%",
			formatOptional(r.Grade, fmtFloat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	label := contract.GetPlainLabel(view.AggregatedGradeResult)
	if cfg.UseColors {
		label = contract.GetColorLabel(view.AggregatedGradeResult)
	}
	_, err := fmt.Fprintf(writer, "Current grade: %s (%s), %s%% evaluated. Plan %s is %s\n",
		fmtFloat(view.CurrentGrade), label, fmtFloat(view.CompletedPercentage), view.Plan.ID, view.PlanState)
	return err
}

func writeCSVResultsForCourse(w io.Writer, view *schema.CourseGradeView, fmtFloat func(float64) string) error {
	header := []string{"course_id", "activity_id", "activity_name", "percentage", "grade_id", "grade"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range view.Rows {
			grade := ""
			if r.Grade != nil {
				grade = fmtFloat(*r.Grade)
			}
			row := []string{view.CourseID, r.ID, r.Name, fmtFloat(r.Percentage.Float64()), r.GradeID, grade}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
