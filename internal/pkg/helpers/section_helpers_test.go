package helpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionTypeCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"1L", "L"},
		{"10L", "L"},
		{"2S", "S"},
		{"3Lb", "B"},
		{"1D", "D"},
		{"7", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, SectionTypeCode(tt.code))
		})
	}
}

func TestSectionSortKeyOrdering(t *testing.T) {
	codes := []string{"2Lb", "10L", "1S", "2L", "1X", "1L"}
	sort.Slice(codes, func(i, j int) bool {
		return SectionSortKey(codes[i], "") < SectionSortKey(codes[j], "")
	})

	// Lectures first in natural numeric order, then seminars, labs, other.
	assert.Equal(t, []string{"1L", "2L", "10L", "1S", "2Lb", "1X"}, codes)
}

func TestReportPath(t *testing.T) {
	path := ReportPath("reports", "Spring 2026", "2026-01-15 10:30:00", ".txt")
	assert.Equal(t, "reports/spring_2026_2026-01-15_10-30-00.txt", path)
}
