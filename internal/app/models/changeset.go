package models

import "math"

// FillEpsilon is the threshold below which an overall-fill delta is treated
// as noise rather than a change.
const FillEpsilon = 1e-3

// SectionChange describes one section's appearance in a ChangeSet: either a
// section added or removed between two snapshots, or a surviving section
// whose enrollment, capacity, or status moved.
type SectionChange struct {
	CourseCode  string
	CourseTitle string
	SectionCode string
	Type        SectionType
	Instructor  string

	Enrollment int
	Capacity   int
	Fill       float64
	Status     Status

	// Fields below are meaningful only for modified sections.
	EnrollmentDelta int
	CapacityChanged bool
	OldCapacity     int
	NewCapacity     int
	OldStatus       Status
	BecameFull      bool
	LeftFull        bool
}

// StatusChanged reports whether the section moved between status bands.
func (c *SectionChange) StatusChanged() bool {
	return c.OldStatus != "" && c.OldStatus != c.Status
}

// ChangeSet is the structured diff between two snapshots. It backs both the
// report text and the capacity-change markers on the dashboard chart. A nil
// baseline (first-ever snapshot) yields every section in Added with no deltas.
type ChangeSet struct {
	BaselineID int64 // 0 when there is no baseline
	CurrentID  int64
	Timestamp  string
	Semester   string

	OverallFill      float64
	OverallFillDelta float64

	Added    []SectionChange
	Removed  []SectionChange
	Modified []SectionChange
}

// HasBaseline reports whether the diff was computed against a prior snapshot.
func (cs *ChangeSet) HasBaseline() bool {
	return cs.BaselineID != 0
}

// HasChanges reports whether anything worth notifying about happened: any
// added or removed section, any surviving-section delta, or an overall-fill
// movement beyond FillEpsilon.
func (cs *ChangeSet) HasChanges() bool {
	if len(cs.Added) > 0 || len(cs.Removed) > 0 || len(cs.Modified) > 0 {
		return true
	}
	return math.Abs(cs.OverallFillDelta) > FillEpsilon
}
