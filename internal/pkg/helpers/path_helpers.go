package helpers

import (
	"path/filepath"
	"strings"
)

// SafeSemesterName converts a semester label to a filename-safe token,
// e.g. "Spring 2026" -> "spring_2026".
func SafeSemesterName(semester string) string {
	safe := strings.TrimSpace(semester)
	safe = strings.ReplaceAll(safe, " ", "_")
	return strings.ToLower(safe)
}

// SafeTimestampName converts a capture timestamp to a filename-safe token,
// e.g. "2026-01-15 10:30:00" -> "2026-01-15_10-30-00".
func SafeTimestampName(timestamp string) string {
	safe := strings.ReplaceAll(timestamp, ":", "-")
	return strings.ReplaceAll(safe, " ", "_")
}

// ReportPath constructs the output path for a generated report or snapshot
// artifact: <dir>/<semester>_<timestamp><ext>.
func ReportPath(dir, semester, timestamp, ext string) string {
	filename := SafeSemesterName(semester) + "_" + SafeTimestampName(timestamp) + ext
	return filepath.Join(dir, filename)
}
