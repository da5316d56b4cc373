package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DataBackend represents where plans, grades and enrollments are read from.
	DataBackend string

	// AveragePolicy represents which courses count toward the semester average.
	AveragePolicy string

	// GradeShape represents the layout a grade payload arrived in.
	GradeShape string

	// PlanState represents how far along an evaluation plan is.
	PlanState string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All data backends supported.
const (
	SQLiteBackend     DataBackend = "sqlite" // default
	MySQLBackend      DataBackend = "mysql"
	PostgreSQLBackend DataBackend = "postgresql"
	MongoDBBackend    DataBackend = "mongodb"
	HTTPBackend       DataBackend = "http"
	MemoryBackend     DataBackend = "memory"
)

// All average policies supported.
const (
	NonZeroAverage AveragePolicy = "nonzero" // default
	AllAverage     AveragePolicy = "all"
)

// All grade shapes recognized at the decoding boundary.
const (
	EmptyShape       GradeShape = "empty"
	ItemizedShape    GradeShape = "itemized"
	PrecomputedShape GradeShape = "precomputed"
	UnknownShape     GradeShape = "unknown"
)

// Plan lifecycle states.
const (
	PlanAbsent   PlanState = "absent"
	PlanDraft    PlanState = "draft"
	PlanComplete PlanState = "complete"
)

// Domain limits.
const (
	MinGrade         = 0.0
	MaxGrade         = 5.0
	PassingGrade     = 3.0
	PercentTotal     = 100.0
	PercentTolerance = 0.1
)

// UnknownCourseName is shown when neither the course nor the enrollment carries a name.
const UnknownCourseName = "Unknown Course"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDataBackends lists all valid data backends.
var ValidDataBackends = map[DataBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MongoDBBackend:    {},
	HTTPBackend:       {},
	MemoryBackend:     {},
}

// ValidAveragePolicies lists all valid average policies.
var ValidAveragePolicies = map[AveragePolicy]struct{}{
	NonZeroAverage: {},
	AllAverage:     {},
}

// IsSQL reports whether the backend is served by database/sql.
func (b DataBackend) IsSQL() bool {
	return b == SQLiteBackend || b == MySQLBackend || b == PostgreSQLBackend
}
