package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/parquet"
	"github.com/trackademic/trackademic/schema"
)

// WriteSummary outputs a semester summary, dispatching based on the output format configured.
func WriteSummary(summary *schema.SemesterSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForSummary(w, summary, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteCourseRowsParquet(parquet.CourseRowsFromSummary(summary), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.LogInfo("💾 Wrote Parquet to %s", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(summary, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeSummaryTable generates and writes the human-readable tables.
func writeSummaryTable(summary *schema.SemesterSummary, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "📚 %s: %s\n", summary.StudentID, summary.Semester); err != nil {
		return err
	}

	// 1. Course table
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Code", "Course", "Credits", "Grade", "Completed", "Label", "Plan"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, c := range summary.Courses {
		grade, label := "-", contract.GetColorLabel(c.AggregatedGradeResult)
		if c.HasData {
			grade = fmtFloat(c.CurrentGrade)
		}
		if !cfg.UseColors {
			label = contract.GetPlainLabel(c.AggregatedGradeResult)
		}
		if c.Error != "" {
			label = "Error"
		}
		data = append(data, []string{
			c.CourseID,
			contract.TruncateText(c.CourseName, nameWidth),
			strconv.Itoa(c.Credits),
			grade,
			fmtFloat(c.CompletedPercentage) + "%",
			label,
			string(c.PlanState),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// 2. Overall average
	average := formatOptional(summary.OverallAverage, fmtFloat)
	if _, err := fmt.Fprintf(writer, "Overall average (%s): %s\n", summary.AveragePolicy, average); err != nil {
		return err
	}
	for _, c := range summary.Courses {
		if c.Error == "" {
			continue
		}
		if _, err := fmt.Fprintf(writer, "⚠️  %s: %s\n", c.CourseID, c.Error); err != nil {
			return err
		}
	}

	// 3. Upcoming evaluations
	if err := writeUpcomingTable(summary.Upcoming, cfg, fmtFloat, writer); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "Summary computed in %v with batch size %d. Backend: %s\n", duration, cfg.BatchSize, cfg.Backend)
	return err
}

// writeUpcomingTable lists ungraded activities, or a notice when there are none.
func writeUpcomingTable(items []schema.UpcomingEvaluation, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(writer, "No upcoming evaluations.")
		return err
	}
	if _, err := fmt.Fprintln(writer, "Upcoming evaluations:"); err != nil {
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Course", "Activity", "Weight"})
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, u := range items {
		data = append(data, []string{
			contract.TruncateText(u.CourseName, nameWidth),
			contract.TruncateText(u.ActivityName, nameWidth),
			fmtFloat(u.Percentage) + "%",
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCSVResultsForSummary writes one CSV row per course.
func writeCSVResultsForSummary(w io.Writer, summary *schema.SemesterSummary, fmtFloat func(float64) string) error {
	header := []string{
		"course_id",
		"course_name",
		"credits",
		"plan_id",
		"plan_state",
		"current_grade",
		"completed_percentage",
		"has_data",
		"label",
		"error",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range summary.Courses {
			row := []string{
				c.CourseID,
				c.CourseName,
				strconv.Itoa(c.Credits),
				c.PlanID,
				string(c.PlanState),
				fmtFloat(c.CurrentGrade),
				fmtFloat(c.CompletedPercentage),
				strconv.FormatBool(c.HasData),
				contract.GetPlainLabel(c.AggregatedGradeResult),
				c.Error,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
