// Package parquet provides data structures and functions for exporting grade
// reports to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/trackademic/trackademic/schema"
)

// CourseRow is one course of a semester summary.
type CourseRow struct {
	// StudentID identifies the student the summary belongs to
	StudentID string `parquet:"student_id,snappy"`

	// Semester is the academic period, such as 2024-1
	Semester string `parquet:"semester,snappy"`

	// CourseID is the subject code
	CourseID string `parquet:"course_id,snappy"`

	CourseName string `parquet:"course_name,snappy"`
	Credits    int32  `parquet:"credits,snappy"`

	// PlanID is the evaluation plan used for the grade (nullable)
	PlanID *string `parquet:"plan_id,optional,snappy"`

	PlanState           string  `parquet:"plan_state,snappy"`
	CurrentGrade        float64 `parquet:"current_grade,snappy"`
	CompletedPercentage float64 `parquet:"completed_percentage,snappy"`
	HasData             bool    `parquet:"has_data,snappy"`
	Passing             bool    `parquet:"passing,snappy"`

	// Error is set when the course could not be fetched (nullable)
	Error *string `parquet:"error,optional,snappy"`

	// GeneratedAt is when the summary was computed
	GeneratedAt time.Time `parquet:"generated_at,snappy"`
}

// ActivityRow is one activity of a course grade view.
type ActivityRow struct {
	StudentID    string  `parquet:"student_id,snappy"`
	CourseID     string  `parquet:"course_id,snappy"`
	Semester     string  `parquet:"semester,snappy"`
	ActivityID   string  `parquet:"activity_id,snappy"`
	ActivityName string  `parquet:"activity_name,snappy"`
	Percentage   float64 `parquet:"percentage,snappy"`

	// Grade is empty for activities that have not been graded yet
	Grade *float64 `parquet:"grade,optional,snappy"`
}

// CourseRowsFromSummary flattens a summary into one row per course.
func CourseRowsFromSummary(summary *schema.SemesterSummary) []CourseRow {
	rows := make([]CourseRow, 0, len(summary.Courses))
	for _, c := range summary.Courses {
		row := CourseRow{
			StudentID:           summary.StudentID,
			Semester:            summary.Semester,
			CourseID:            c.CourseID,
			CourseName:          c.CourseName,
			Credits:             int32(c.Credits),
			PlanState:           string(c.PlanState),
			CurrentGrade:        c.CurrentGrade,
			CompletedPercentage: c.CompletedPercentage,
			HasData:             c.HasData,
			Passing:             c.Passing(),
			GeneratedAt:         summary.GeneratedAt,
		}
		if c.PlanID != "" {
			id := c.PlanID
			row.PlanID = &id
		}
		if c.Error != "" {
			msg := c.Error
			row.Error = &msg
		}
		rows = append(rows, row)
	}
	return rows
}

// ActivityRowsFromView flattens a course grade view into one row per activity.
func ActivityRowsFromView(view *schema.CourseGradeView) []ActivityRow {
	rows := make([]ActivityRow, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, ActivityRow{
			StudentID:    view.StudentID,
			CourseID:     view.CourseID,
			Semester:     view.Semester,
			ActivityID:   r.ID,
			ActivityName: r.Name,
			Percentage:   r.Percentage.Float64(),
			Grade:        r.Grade,
		})
	}
	return rows
}

// WriteCourseRowsParquet writes course rows to a Parquet file.
func WriteCourseRowsParquet(data []CourseRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteActivityRowsParquet writes activity rows to a Parquet file.
func WriteActivityRowsParquet(data []ActivityRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
