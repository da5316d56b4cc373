package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackademic/trackademic/core"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// planCmd focused on evaluation plan management.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Validate and store evaluation plans",
	Long: `Manage evaluation plans stored as JSON files.

A plan lists weighted activities for one subject and semester. The weights must
sum to 100 (within 0.1) before a plan can be stored.

Subcommands:
  validate - Check a plan file without storing it
  save     - Create a plan, or update it when the file carries an _id
  delete   - Remove a plan and its comments
  comment  - Add, list or remove comments on a plan`,
}

// planValidateCmd checks a plan file offline.
var planValidateCmd = &cobra.Command{
	Use:   "validate <plan.json>",
	Short: "Check a plan file without storing it",
	Long: `Print the activities of a plan file and whether it can be stored.

Exits with a non-zero code when the plan is invalid, so it can gate CI pipelines.

Examples:
  trackademic plan validate cs101.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePlanValidate(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Plan validation failed", err)
		}
	},
}

// planSaveCmd stores a plan file.
var planSaveCmd = &cobra.Command{
	Use:   "save <plan.json>",
	Short: "Create or update an evaluation plan",
	Long: `Store the plan in a JSON file in the configured backend.

A file without "_id" creates a new plan. A file with "_id" updates that plan; when it
omits "activities" the stored activities are kept.

Examples:
  trackademic plan save cs101.json
  trackademic plan save cs101.json --backend http --api-url http://localhost:5000/api`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePlanSave(rootCtx, cfg, repository(), requestCache, args[0]); err != nil {
			contract.LogFatal("Cannot save plan", err)
		}
	},
}

// planDeleteCmd removes a stored plan.
var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete an evaluation plan",
	Long: `Remove a plan and the comments left on it.

Grades recorded under the plan stay in the store.

Examples:
  trackademic plan delete plan1`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePlanDelete(rootCtx, cfg, repository(), requestCache, args[0]); err != nil {
			contract.LogFatal("Cannot delete plan", err)
		}
	},
}

// planCommentCmd groups plan comment subcommands.
var planCommentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Discuss an evaluation plan",
}

// planCommentAddCmd leaves a comment on a plan.
var planCommentAddCmd = &cobra.Command{
	Use:   "add <plan-id> <text>...",
	Short: "Comment on a plan as the configured student",
	Long: `Store a comment on a plan. Remaining arguments are joined with spaces.

Examples:
  trackademic plan comment add plan1 "Could the final project be split in two?"
  trackademic plan comment add plan1 --name "Ana" Labs deserve more weight`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		comment := &schema.PlanComment{
			EvaluationPlanID: args[0],
			StudentName:      name,
			Comment:          strings.Join(args[1:], " "),
		}
		if err := core.ExecuteCommentAdd(rootCtx, cfg, repository(), requestCache, comment); err != nil {
			contract.LogFatal("Cannot add comment", err)
		}
	},
}

// planCommentListCmd prints the comments of a plan.
var planCommentListCmd = &cobra.Command{
	Use:     "list <plan-id>",
	Short:   "List the comments on a plan",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteCommentList(rootCtx, cfg, repository(), requestCache, args[0]); err != nil {
			contract.LogFatal("Cannot list comments", err)
		}
	},
}

// planCommentDeleteCmd removes one comment.
var planCommentDeleteCmd = &cobra.Command{
	Use:     "delete <comment-id>",
	Short:   "Delete a comment",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteCommentDelete(rootCtx, cfg, repository(), requestCache, args[0]); err != nil {
			contract.LogFatal("Cannot delete comment", err)
		}
	},
}
