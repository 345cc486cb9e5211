package models

import "time"

// Course represents a unique catalog course. Courses and sections are shared
// dimension data: they survive retention cleanup even when every snapshot
// referencing them is deleted.
type Course struct {
	ID         int64
	Code       string
	Title      string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Section represents a schedulable offering of a course, keyed by
// (course_id, code).
type Section struct {
	ID         int64
	CourseID   int64
	Code       string
	Type       SectionType
	Instructor string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Snapshot represents one point-in-time poll of the entire registrar feed.
// Timestamp is an ISO-8601 string and is globally unique; it strictly orders
// all snapshots.
type Snapshot struct {
	ID          int64
	Timestamp   string
	Semester    string
	OverallFill float64
	CreatedAt   time.Time
}

// EnrollmentRecord represents one section's state within one snapshot.
// FillPercentage is always recomputed from the two counts, never supplied
// independently.
type EnrollmentRecord struct {
	ID              int64
	SnapshotID      int64
	SectionID       int64
	Status          Status
	EnrollmentCount int
	CapacityCount   int
	FillPercentage  float64
	CreatedAt       time.Time
}

// ReportLogEntry records that a report was generated for a snapshot. At most
// one entry exists per snapshot; the insert that creates it closes the
// exactly-once delivery window.
type ReportLogEntry struct {
	ID                 int64
	ReportedSnapshotID int64
	ReportTimestamp    string
	ChangesFound       bool
	CreatedAt          time.Time
}

// StoreStats summarizes store contents for the stats command.
type StoreStats struct {
	Courses           int64
	Sections          int64
	Snapshots         int64
	EnrollmentRecords int64
	Reports           int64
	FirstSnapshot     string
	LatestSnapshot    string
}
