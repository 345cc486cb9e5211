package models

// LegacySnapshotFile is the JSON document format the file-based predecessor
// wrote one snapshot to. The migrate command replays these through the
// ingestor, and backup writes the same shape so a dump can be replayed back.
type LegacySnapshotFile struct {
	Timestamp string                  `json:"timestamp"`
	Semester  string                  `json:"semester"`
	Courses   map[string]LegacyCourse `json:"courses"`
}

// LegacyCourse is one course entry in a legacy snapshot file.
type LegacyCourse struct {
	Title    string                   `json:"title,omitempty"`
	Sections map[string]LegacySection `json:"sections"`
}

// LegacySection is one section entry in a legacy snapshot file.
type LegacySection struct {
	Enrollment int    `json:"enrollment"`
	Capacity   int    `json:"capacity"`
	Instructor string `json:"instructor,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Observations flattens the file into the ingestor's input batch.
func (f *LegacySnapshotFile) Observations() []SectionObservation {
	var observations []SectionObservation
	for courseCode, course := range f.Courses {
		for sectionCode, section := range course.Sections {
			observations = append(observations, SectionObservation{
				CourseCode:  courseCode,
				CourseTitle: course.Title,
				SectionCode: sectionCode,
				SectionType: ParseSectionType(section.Type),
				Instructor:  section.Instructor,
				Enrollment:  section.Enrollment,
				Capacity:    section.Capacity,
			})
		}
	}
	return observations
}
