package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/trackademic/trackademic/schema"
)

// Default values for configuration.
const (
	DefaultBatchSize      = 5
	MaxBatchSize          = 50
	DefaultUpcomingLimit  = 5
	DefaultPrecision      = 2
	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultAdminKey       = "admin_secret_key"
	DefaultMongoDBName    = "trackademic"
	DefaultStudentID      = "A00377013"
	DefaultSemester       = "2024-1"
	DefaultRequestTimeout = 10 * time.Second
)

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Backend   schema.DataBackend
	DBConnect string // Please use env var as this is plaintext
	DBName    string
	APIURL    string
	AdminKey  string // Please use env var as this is plaintext

	StudentID string
	Semester  string

	BatchSize            int
	AveragePolicy        schema.AveragePolicy
	TolerateCourseErrors bool
	RequestTimeout       time.Duration

	Precision     int
	Output        schema.OutputMode
	OutputFile    string
	UpcomingLimit int
	Width         int  // Terminal width override (0 = auto-detect)
	UseColors     bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Backend   string `mapstructure:"backend"`
	DBConnect string `mapstructure:"db-connect"`
	DBName    string `mapstructure:"db-name"`
	APIURL    string `mapstructure:"api-url"`
	AdminKey  string `mapstructure:"admin-key"`

	Student  string `mapstructure:"student"`
	Semester string `mapstructure:"semester"`

	BatchSize            int    `mapstructure:"batch-size"`
	AveragePolicy        string `mapstructure:"average-policy"`
	TolerateCourseErrors bool   `mapstructure:"tolerate-course-errors"`
	Timeout              string `mapstructure:"timeout"`

	Precision     int    `mapstructure:"precision"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	UpcomingLimit int    `mapstructure:"upcoming-limit"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the networked backends.
func ValidateDatabaseConnectionString(backend schema.DataBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.HTTPBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.MongoDBBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "mongodb://") && !strings.HasPrefix(connStr, "mongodb+srv://") {
			return fmt.Errorf("MongoDB connection string must start with 'mongodb://' or 'mongodb+srv://'")
		}
	}
	return nil
}

// validateBackendConfig validates the data backend and its connection settings.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Backend = schema.DataBackend(strings.ToLower(input.Backend))
	if _, ok := schema.ValidDataBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, mongodb, http, memory", input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect); err != nil {
		return err
	}

	cfg.DBName = input.DBName
	if cfg.DBName == "" {
		cfg.DBName = DefaultMongoDBName
	}

	cfg.AdminKey = input.AdminKey
	if cfg.AdminKey == "" {
		cfg.AdminKey = DefaultAdminKey
	}

	cfg.APIURL = strings.TrimRight(input.APIURL, "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Backend == schema.HTTPBackend {
		u, err := url.Parse(cfg.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid api-url '%s'. must be an absolute http(s) URL", input.APIURL)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.TolerateCourseErrors = input.TolerateCourseErrors

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Student and semester ---
	cfg.StudentID = strings.TrimSpace(input.Student)
	if cfg.StudentID == "" {
		return fmt.Errorf("student must not be empty")
	}
	cfg.Semester = strings.TrimSpace(input.Semester)
	if cfg.Semester == "" {
		return fmt.Errorf("semester must not be empty")
	}

	// --- 2. Batch size ---
	if input.BatchSize <= 0 || input.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch-size must be greater than 0 and cannot exceed %d (received %d)", MaxBatchSize, input.BatchSize)
	}
	cfg.BatchSize = input.BatchSize

	// --- 3. Average policy ---
	cfg.AveragePolicy = schema.AveragePolicy(strings.ToLower(input.AveragePolicy))
	if _, ok := schema.ValidAveragePolicies[cfg.AveragePolicy]; !ok {
		return fmt.Errorf("invalid average policy '%s'. must be nonzero, all", input.AveragePolicy)
	}

	// --- 4. Timeout ---
	cfg.RequestTimeout = DefaultRequestTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout '%s'. expected a positive duration like 10s", input.Timeout)
		}
		cfg.RequestTimeout = d
	}

	// --- 5. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 3 {
		return fmt.Errorf("precision must be between 1 and 3 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("output-file is required for parquet output")
	}

	// --- 6. Upcoming limit ---
	if input.UpcomingLimit < 0 {
		return fmt.Errorf("upcoming-limit cannot be negative (received %d)", input.UpcomingLimit)
	}
	cfg.UpcomingLimit = input.UpcomingLimit

	return nil
}
