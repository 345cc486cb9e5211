package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionCountSpansCourses(t *testing.T) {
	view := &SnapshotView{Courses: map[string]*CourseView{
		"CSCI 101": {Sections: map[string]*SectionView{"1L": {}, "1Lb": {}}},
		"MATH 201": {Sections: map[string]*SectionView{"1L": {}}},
	}}
	assert.Equal(t, 3, view.SectionCount())

	assert.Zero(t, (&SnapshotView{}).SectionCount())
}
