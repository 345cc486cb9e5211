package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
)

func TestSectionObservationValidate(t *testing.T) {
	tests := []struct {
		name    string
		obs     SectionObservation
		wantErr bool
	}{
		{"valid", SectionObservation{CourseCode: "CSCI 101", SectionCode: "1L", Enrollment: 10, Capacity: 20}, false},
		{"zero counts are fine", SectionObservation{CourseCode: "CSCI 101", SectionCode: "1L"}, false},
		{"missing course code", SectionObservation{SectionCode: "1L"}, true},
		{"missing section code", SectionObservation{CourseCode: "CSCI 101"}, true},
		{"negative enrollment", SectionObservation{CourseCode: "CSCI 101", SectionCode: "1L", Enrollment: -1}, true},
		{"negative capacity", SectionObservation{CourseCode: "CSCI 101", SectionCode: "1L", Capacity: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obs.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSectionObservationDepartment(t *testing.T) {
	assert.Equal(t, "CSCI", (&SectionObservation{CourseCode: "CSCI 101"}).Department())
	assert.Equal(t, "MATH", (&SectionObservation{CourseCode: "MATH201"}).Department())
	assert.Equal(t, "ART", (&SectionObservation{CourseCode: "ART"}).Department())
}

func TestParseSectionType(t *testing.T) {
	assert.Equal(t, TypeLecture, ParseSectionType("L"))
	assert.Equal(t, TypeLecture, ParseSectionType("Lecture"))
	assert.Equal(t, TypeLab, ParseSectionType("B"))
	assert.Equal(t, TypeLab, ParseSectionType("Lab"))
	assert.Equal(t, TypeOther, ParseSectionType("weird"))
	assert.Equal(t, TypeOther, ParseSectionType(""))
}
