package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursewatch/internal/app/models"
)

func TestFormatFirstSnapshotSummary(t *testing.T) {
	cs := &models.ChangeSet{
		CurrentID:   1,
		Timestamp:   "2026-08-01T08:00:00Z",
		Semester:    "Fall 2026",
		OverallFill: 0.42,
		Added: []models.SectionChange{
			{CourseCode: "CSCI 101", SectionCode: "1L", Status: models.StatusOpen},
			{CourseCode: "CSCI 101", SectionCode: "1S", Status: models.StatusOpen},
			{CourseCode: "MATH 201", SectionCode: "1L", Status: models.StatusOpen},
		},
	}

	out := NewFormatter().Format(cs)

	assert.Contains(t, out, "Fall 2026")
	assert.Contains(t, out, "42.0%")
	assert.Contains(t, out, "2 courses, 3 sections")
	assert.NotContains(t, out, "NEW 1L", "first snapshot must summarize, not enumerate")
}

func TestFormatChanges(t *testing.T) {
	cs := &models.ChangeSet{
		BaselineID:       1,
		CurrentID:        2,
		Timestamp:        "2026-08-02T08:00:00Z",
		Semester:         "Fall 2026",
		OverallFill:      0.5,
		OverallFillDelta: 0.03,
		Added: []models.SectionChange{
			{CourseCode: "CSCI 101", SectionCode: "2L", Enrollment: 10, Capacity: 10, Status: models.StatusFull},
		},
		Removed: []models.SectionChange{
			{CourseCode: "MATH 201", SectionCode: "1S"},
		},
		Modified: []models.SectionChange{
			{
				CourseCode:      "CSCI 101",
				SectionCode:     "1L",
				Enrollment:      20,
				Capacity:        25,
				Status:          models.StatusNear,
				OldStatus:       models.StatusFull,
				EnrollmentDelta: 0,
				CapacityChanged: true,
				OldCapacity:     20,
				NewCapacity:     25,
				LeftFull:        true,
			},
		},
	}

	out := NewFormatter().Format(cs)

	assert.Contains(t, out, "(+3.0%)")
	assert.Contains(t, out, "✨ NEW 2L: 10/10 FULL")
	assert.Contains(t, out, "❌ REMOVED 1S")
	assert.Contains(t, out, "[cap 20→25]")
	assert.Contains(t, out, "[FULL→NEAR]")

	// Courses come out in code order.
	require.Less(t, strings.Index(out, "CSCI 101"), strings.Index(out, "MATH 201"))
}

func TestFormatBigSwingMarker(t *testing.T) {
	cs := &models.ChangeSet{
		BaselineID:  1,
		CurrentID:   2,
		Timestamp:   "2026-08-02T08:00:00Z",
		Semester:    "Fall 2026",
		OverallFill: 0.5,
		Modified: []models.SectionChange{
			{CourseCode: "CSCI 101", SectionCode: "1L", Enrollment: 18, Capacity: 20, EnrollmentDelta: 8, Status: models.StatusNear, OldStatus: models.StatusNear},
		},
	}

	out := NewFormatter().Format(cs)

	assert.Contains(t, out, "🔺 1L: 18/20 (+8)")
}

func TestFormatNoChanges(t *testing.T) {
	cs := &models.ChangeSet{
		BaselineID:  1,
		CurrentID:   2,
		Timestamp:   "2026-08-02T08:00:00Z",
		Semester:    "Fall 2026",
		OverallFill: 0.5,
	}

	out := NewFormatter().Format(cs)

	assert.Contains(t, out, "No changes since the last report")
}

func TestFormatSectionOrderingWithinCourse(t *testing.T) {
	cs := &models.ChangeSet{
		BaselineID:  1,
		CurrentID:   2,
		Timestamp:   "2026-08-02T08:00:00Z",
		Semester:    "Fall 2026",
		OverallFill: 0.5,
		Modified: []models.SectionChange{
			{CourseCode: "CSCI 101", SectionCode: "1Lb", Enrollment: 1, Capacity: 10, EnrollmentDelta: 1, Status: models.StatusOpen, OldStatus: models.StatusOpen},
			{CourseCode: "CSCI 101", SectionCode: "10L", Enrollment: 1, Capacity: 10, EnrollmentDelta: 1, Status: models.StatusOpen, OldStatus: models.StatusOpen},
			{CourseCode: "CSCI 101", SectionCode: "2L", Enrollment: 1, Capacity: 10, EnrollmentDelta: 1, Status: models.StatusOpen, OldStatus: models.StatusOpen},
			{CourseCode: "CSCI 101", SectionCode: "1S", Enrollment: 1, Capacity: 10, EnrollmentDelta: 1, Status: models.StatusOpen, OldStatus: models.StatusOpen},
		},
	}

	out := NewFormatter().Format(cs)

	posOf := func(code string) int { return strings.Index(out, " "+code+":") }
	assert.True(t, posOf("2L") < posOf("10L"), "natural numeric order inside lectures")
	assert.True(t, posOf("10L") < posOf("1S"), "lectures before seminars")
	assert.True(t, posOf("1S") < posOf("1Lb"), "seminars before labs")
}
