package models

// SnapshotView is the in-memory projection of one snapshot used by the diff
// engine and the report formatter: courses keyed by code, sections keyed by
// section code within their course.
type SnapshotView struct {
	ID          int64
	Timestamp   string
	Semester    string
	OverallFill float64
	Courses     map[string]*CourseView
}

// CourseView groups a course's sections within a SnapshotView.
type CourseView struct {
	Code     string
	Title    string
	Sections map[string]*SectionView
}

// SectionView holds one section's enrollment state within a SnapshotView.
type SectionView struct {
	SectionID  int64
	Code       string
	Type       SectionType
	Instructor string
	Enrollment int
	Capacity   int
	Fill       float64
	Status     Status
}

// SectionCount returns the total number of sections across all courses.
func (v *SnapshotView) SectionCount() int {
	n := 0
	for _, course := range v.Courses {
		n += len(course.Sections)
	}
	return n
}

// HistoryPoint is one section's state in one snapshot, used for the
// dashboard's per-section time series. Index is the snapshot's position in
// the chronological snapshot sequence.
// Serialized with the dashboard's minified key convention.
type HistoryPoint struct {
	Index      int     `json:"i"`
	SnapshotID int64   `json:"sid"`
	Timestamp  string  `json:"ts"`
	Enrollment int     `json:"e"`
	Capacity   int     `json:"c"`
	Fill       float64 `json:"f"`
}
