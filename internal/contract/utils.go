package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/trackademic/trackademic/schema"
)

// Grade label constants.
const (
	PassingValue = "Passing" // Passing value
	FailingValue = "Failing" // Failing value
	PendingValue = "Pending" // Pending value
)

// Color variables for console output.
var (
	PassingColor = color.New(color.FgGreen, color.Bold) // PassingColor marks a grade at or above the threshold.
	FailingColor = color.New(color.FgRed, color.Bold)   // FailingColor marks a grade below the threshold.
	PendingColor = color.New(color.FgCyan)              // PendingColor marks a course without grade data.
)

// GetPlainLabel returns a plain text label for a course result. This is the
// core logic used for CSV, JSON, and table printing.
func GetPlainLabel(res schema.AggregatedGradeResult) string {
	switch {
	case !res.HasData:
		return PendingValue
	case res.Passing():
		return PassingValue
	default:
		return FailingValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(res schema.AggregatedGradeResult) string {
	text := GetPlainLabel(res)

	switch text {
	case PassingValue:
		return PassingColor.Sprint(text)
	case FailingValue:
		return FailingColor.Sprint(text)
	default:
		return PendingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetDBFilePath returns the path to the default SQLite DB file.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trackademic.db"
	}
	return filepath.Join(homeDir, ".trackademic.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
