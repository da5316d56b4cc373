// Package cmd defines the command-line interface for trackademic.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(gradesCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the plan subcommands to the parent plan command
	planCmd.AddCommand(planValidateCmd)
	planCmd.AddCommand(planSaveCmd)
	planCmd.AddCommand(planDeleteCmd)
	planCmd.AddCommand(planCommentCmd)
	planCommentCmd.AddCommand(planCommentAddCmd)
	planCommentCmd.AddCommand(planCommentListCmd)
	planCommentCmd.AddCommand(planCommentDeleteCmd)

	// Add the grade subcommands to the parent grade command
	gradeCmd.AddCommand(gradeSaveCmd)
	gradeCmd.AddCommand(gradeDeleteCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Data backend: sqlite or mysql or postgresql or mongodb or http or memory")
	rootCmd.PersistentFlags().String("db-connect", "", "Connection string for sqlite (file path), mysql, postgresql or mongodb")
	rootCmd.PersistentFlags().String("db-name", contract.DefaultMongoDBName, "MongoDB database name")
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "Base URL of the web API for the http backend")
	rootCmd.PersistentFlags().String("admin-key", contract.DefaultAdminKey, "Admin key sent when seeding through the http backend")
	rootCmd.PersistentFlags().StringP("student", "s", contract.DefaultStudentID, "Student identifier")
	rootCmd.PersistentFlags().String("semester", contract.DefaultSemester, "Semester code, e.g. 2024-1")
	rootCmd.PersistentFlags().Int("batch-size", contract.DefaultBatchSize, "Number of courses fetched concurrently")
	rootCmd.PersistentFlags().String("average-policy", string(schema.NonZeroAverage), "Courses counted in the overall average: nonzero or all")
	rootCmd.PersistentFlags().Bool("tolerate-course-errors", false, "Keep a failing course with no data instead of aborting the summary")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultRequestTimeout.String(), "Timeout of each backend request")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("upcoming-limit", contract.DefaultUpcomingLimit, "Number of upcoming evaluations to display")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Flags of gradeSaveCmd are read directly; they describe one record, not configuration
	gradeSaveCmd.Flags().String("plan", "", "Evaluation plan id")
	gradeSaveCmd.Flags().String("course", "", "Subject code of the course")
	gradeSaveCmd.Flags().String("activity", "", "Activity id within the plan")
	gradeSaveCmd.Flags().String("activity-name", "", "Activity name stored with the grade")
	gradeSaveCmd.Flags().Float64("grade", -1, "Grade between 0 and 5")
	_ = gradeSaveCmd.MarkFlagRequired("plan")
	_ = gradeSaveCmd.MarkFlagRequired("course")
	_ = gradeSaveCmd.MarkFlagRequired("activity")
	_ = gradeSaveCmd.MarkFlagRequired("grade")

	planCommentAddCmd.Flags().String("name", "", "Display name shown with the comment")

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
