package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trackademic/trackademic/core"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// gradeCmd focused on grade entry.
var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Record activity grades",
}

// gradeSaveCmd records one grade.
var gradeSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Record the grade of one activity",
	Long: `Record the grade of the configured student for one activity of a plan.

A student holds one grade per activity: saving again replaces the previous grade.

Examples:
  trackademic grade save --plan plan1 --course CS101 --activity act2 --grade 4.5`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		flags := cmd.Flags()
		planID, _ := flags.GetString("plan")
		course, _ := flags.GetString("course")
		activity, _ := flags.GetString("activity")
		activityName, _ := flags.GetString("activity-name")
		value, _ := flags.GetFloat64("grade")

		grade := &schema.StudentGrade{
			EvaluationPlanID: planID,
			SubjectCode:      course,
			ActivityID:       activity,
			ActivityName:     activityName,
			Grade:            schema.Number(value),
		}
		if err := core.ExecuteGradeSave(rootCtx, cfg, repository(), requestCache, grade); err != nil {
			contract.LogFatal("Cannot save grade", err)
		}
	},
}

// gradeDeleteCmd removes one grade.
var gradeDeleteCmd = &cobra.Command{
	Use:   "delete <grade-id>",
	Short: "Delete a recorded grade",
	Long: `Remove one stored grade. The activity shows as ungraded again.

Grade ids are listed in the grade_id column of "trackademic grades <course> --output json".

Examples:
  trackademic grade delete grade1`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteGradeDelete(rootCtx, cfg, repository(), requestCache, args[0]); err != nil {
			contract.LogFatal("Cannot delete grade", err)
		}
	},
}

// seedCmd loads the demo dataset.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with the demo dataset",
	Long: `Delete every course, enrollment, plan and grade in the backend and load the demo dataset.

The demo student is A00377013 in semester 2024-1, enrolled in CS101 and CS201.

Examples:
  trackademic seed
  trackademic seed --backend http --admin-key "$ADMIN_KEY"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeed(rootCtx, cfg, repository(), requestCache); err != nil {
			contract.LogFatal("Cannot seed demo data", err)
		}
	},
}
