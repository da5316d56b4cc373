package outwriter

import (
	"fmt"
	"io"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// WriteStatus prints the store status together with the request cache counters.
func WriteStatus(status schema.StoreStatus, stats schema.CacheStats, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Store schema.StoreStatus `json:"store"`
				Cache schema.CacheStats  `json:"cache"`
			}{status, stats})
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeStatusText(status, stats, w)
	}, "Wrote status")
}

func writeStatusText(status schema.StoreStatus, stats schema.CacheStats, w io.Writer) error {
	connected := "no"
	if status.Connected {
		connected = "yes"
	}
	lines := []string{
		fmt.Sprintf("Backend:     %s", status.Backend),
		fmt.Sprintf("Connected:   %s", connected),
		fmt.Sprintf("Courses:     %d", status.Courses),
		fmt.Sprintf("Enrollments: %d", status.Enrollments),
		fmt.Sprintf("Plans:       %d", status.Plans),
		fmt.Sprintf("Grades:      %d", status.Grades),
	}
	if status.SchemaVersion > 0 {
		line := fmt.Sprintf("Schema:      v%d", status.SchemaVersion)
		if status.Dirty {
			line += " (dirty)"
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("Cache:       %d entries, %d hits, %d misses", stats.Entries, stats.Hits, stats.Misses))
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
