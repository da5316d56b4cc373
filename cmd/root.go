package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/internal/store"
	"github.com/trackademic/trackademic/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// requestCache deduplicates backend reads for the lifetime of the process.
var requestCache = reqcache.New()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "trackademic",
	Short:              "Track evaluation plans and grades for a semester.",
	Long:               `Trackademic computes the current grade of every course from its weighted evaluation plan.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("TRACKADEMIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("db-name", contract.DefaultMongoDBName)
	viper.SetDefault("api-url", contract.DefaultAPIURL)
	viper.SetDefault("admin-key", contract.DefaultAdminKey)
	viper.SetDefault("student", contract.DefaultStudentID)
	viper.SetDefault("semester", contract.DefaultSemester)
	viper.SetDefault("batch-size", contract.DefaultBatchSize)
	viper.SetDefault("average-policy", schema.NonZeroAverage)
	viper.SetDefault("timeout", contract.DefaultRequestTimeout.String())
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("upcoming-limit", contract.DefaultUpcomingLimit)
	viper.SetDefault("color", "yes")
}

// setConfigFile points viper at --config or the default .trackademic.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".trackademic") // Name of config file (without extension)
		viper.SetConfigType("yaml")         // We'll use YAML format
		viper.AddConfigPath(".")            // Look in the current directory
		viper.AddConfigPath("$HOME")        // Look in the home directory
	}
}

// loadSettings merges defaults, file, env and flags, then validates them into cfg.
func loadSettings() error {
	// 1. Read config file.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	color.NoColor = !cfg.UseColors
	return nil
}

// sharedSetup validates config and connects to the configured backend.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	if err := loadSettings(); err != nil {
		return err
	}
	if err := store.InitStore(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// settingsSetupWrapper validates config without touching any backend.
func settingsSetupWrapper(_ *cobra.Command, _ []string) error {
	return loadSettings()
}

// repository returns the backend opened by sharedSetup.
func repository() contract.Repository {
	return store.Manager.GetRepository()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
