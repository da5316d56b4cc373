package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trackademic/trackademic/core"
	"github.com/trackademic/trackademic/internal/contract"
)

// summaryCmd focuses on the semester overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the current grade of every course in a semester",
	Long: `Compute the current grade and completion of every course the student is enrolled in.

Each course uses its most recently updated evaluation plan. Grades are weighted by
activity percentage and ungraded activities count as zero, so the grade only reaches
its final value once every activity is graded.

The overall average skips courses without a grade unless --average-policy=all.

Examples:
  # Summary for the default student and semester
  trackademic summary

  # Another semester, as JSON
  trackademic summary --semester 2023-2 --output json

  # Keep going when one course fails to load
  trackademic summary --tolerate-course-errors`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg, repository(), requestCache); err != nil {
			contract.LogFatal("Cannot run summary", err)
		}
	},
}

// gradesCmd focuses on one course.
var gradesCmd = &cobra.Command{
	Use:   "grades <course-code>",
	Short: "Show the activities and grades of one course",
	Long: `Show the latest evaluation plan of a course with the grade recorded for each activity.

Examples:
  trackademic grades CS101
  trackademic grades CS201 --output csv --output-file cs201.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteCourseGrade(rootCtx, cfg, repository(), requestCache, args[0]); err != nil {
			contract.LogFatal("Cannot show course grades", err)
		}
	},
}
