package models

import (
	"strings"

	"github.com/yigit/coursewatch/internal/pkg/apperrors"
)

// SectionObservation is one normalized row from the registrar feed: a single
// section's enrollment state at capture time. A batch of observations plus a
// semester label and a capture timestamp is the ingestor's input.
type SectionObservation struct {
	CourseCode  string
	CourseTitle string
	SectionCode string
	SectionType SectionType
	Instructor  string
	Enrollment  int
	Capacity    int
}

// Validate checks the observation for malformed input. Any failure aborts
// the whole ingestion batch.
func (o *SectionObservation) Validate() error {
	if strings.TrimSpace(o.CourseCode) == "" {
		return apperrors.NewValidationError("observation is missing a course code")
	}
	if strings.TrimSpace(o.SectionCode) == "" {
		return apperrors.NewValidationError("observation for " + o.CourseCode + " is missing a section code")
	}
	if o.Enrollment < 0 {
		return apperrors.NewValidationError("negative enrollment count for " + o.CourseCode + " " + o.SectionCode)
	}
	if o.Capacity < 0 {
		return apperrors.NewValidationError("negative capacity count for " + o.CourseCode + " " + o.SectionCode)
	}
	return nil
}

// Department derives the department label from the course code prefix
// ("CSCI 101" becomes "CSCI").
func (o *SectionObservation) Department() string {
	code := strings.TrimSpace(o.CourseCode)
	if idx := strings.IndexAny(code, " 0123456789"); idx > 0 {
		return strings.TrimSpace(code[:idx])
	}
	return code
}
