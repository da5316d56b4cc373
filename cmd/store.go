package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trackademic/trackademic/core"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/store"
)

// storeCmd focused on backend management.
//
// Note: clear and migrate only validate configuration and never open the store
// through sharedSetup, so they work against an empty or broken schema.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the data backend",
	Long: `Manage the backend that holds courses, enrollments, plans and grades.

Supported backends: SQLite (default), MySQL, PostgreSQL, MongoDB, the web API (http)
or an in-memory demo store (memory).

Subcommands:
  status  - Show record counts, schema version and request cache counters
  clear   - Remove all stored data
  migrate - Apply or roll back SQL schema migrations`,
}

// storeStatusCmd shows backend status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display record counts and connection details",
	Long: `Show the backend type, whether it is reachable, how many records it holds and
the applied schema version for SQL backends.

Examples:
  trackademic store status
  TRACKADEMIC_BACKEND=postgresql TRACKADEMIC_DB_CONNECT="host=... dbname=..." trackademic store status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStatus(rootCtx, cfg, repository(), requestCache); err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
	},
}

// storeClearCmd clears the backend.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored data",
	Long: `Delete all data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Rolls back every migration, dropping the tables
For MongoDB: Empties the collections

Examples:
  trackademic store clear`,
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ClearStore(rootCtx, cfg); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs SQL migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back SQL schema migrations",
	Long: `Migrate the SQL schema to a target version. Stores migrate to the latest
version automatically when opened; use this to inspect or roll back.

Examples:
  # Migrate to latest
  trackademic store migrate

  # Roll back everything
  trackademic store migrate --target-version 0`,
	PreRunE: settingsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := store.Migrate(cfg.Backend, cfg.DBConnect, target, os.Stdout); err != nil {
			contract.LogFatal("Failed to migrate store", err)
		}
	},
}
