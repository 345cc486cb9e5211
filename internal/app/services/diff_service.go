package services

import (
	"context"
	"sort"

	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
)

// SnapshotViews loads snapshot projections for diffing and per-section time
// series. Satisfied by repositories.SnapshotRepository.
type SnapshotViews interface {
	GetView(ctx context.Context, snapshotID int64) (*models.SnapshotView, error)
	SectionHistory(ctx context.Context, sectionID int64) ([]models.HistoryPoint, error)
}

// DiffService computes structured change-sets between snapshots.
type DiffService struct {
	views SnapshotViews
}

// NewDiffService creates a new DiffService
func NewDiffService(views SnapshotViews) *DiffService {
	return &DiffService{views: views}
}

// Diff loads both snapshots and compares them. A baselineID of 0 means no
// baseline: every section comes back as added with no deltas.
func (s *DiffService) Diff(ctx context.Context, baselineID, currentID int64) (*models.ChangeSet, error) {
	current, err := s.views.GetView(ctx, currentID)
	if err != nil {
		return nil, err
	}

	var baseline *models.SnapshotView
	if baselineID != 0 {
		baseline, err = s.views.GetView(ctx, baselineID)
		if err != nil {
			return nil, err
		}
	}

	return CompareSnapshots(baseline, current), nil
}

// SectionHistory returns one section's chronologically ordered enrollment
// states, the series behind the dashboard chart.
func (s *DiffService) SectionHistory(ctx context.Context, sectionID int64) ([]models.HistoryPoint, error) {
	return s.views.SectionHistory(ctx, sectionID)
}

// CompareSnapshots computes the ChangeSet between two snapshot views. Pure:
// no store access, deterministic ordering by course code then section sort
// order. baseline may be nil.
func CompareSnapshots(baseline, current *models.SnapshotView) *models.ChangeSet {
	cs := &models.ChangeSet{
		CurrentID:   current.ID,
		Timestamp:   current.Timestamp,
		Semester:    current.Semester,
		OverallFill: current.OverallFill,
	}
	if baseline != nil {
		cs.BaselineID = baseline.ID
		cs.OverallFillDelta = current.OverallFill - baseline.OverallFill
	}

	for courseCode, course := range current.Courses {
		var baseCourse *models.CourseView
		if baseline != nil {
			baseCourse = baseline.Courses[courseCode]
		}

		for sectionCode, section := range course.Sections {
			var baseSection *models.SectionView
			if baseCourse != nil {
				baseSection = baseCourse.Sections[sectionCode]
			}

			if baseSection == nil {
				cs.Added = append(cs.Added, newSectionChange(course, section))
				continue
			}

			change := newSectionChange(course, section)
			change.EnrollmentDelta = section.Enrollment - baseSection.Enrollment
			change.OldStatus = baseSection.Status
			if section.Capacity != baseSection.Capacity {
				change.CapacityChanged = true
				change.OldCapacity = baseSection.Capacity
				change.NewCapacity = section.Capacity
			}
			change.BecameFull = baseSection.Status != models.StatusFull && section.Status == models.StatusFull
			change.LeftFull = baseSection.Status == models.StatusFull && section.Status != models.StatusFull

			if change.EnrollmentDelta != 0 || change.CapacityChanged || change.StatusChanged() {
				cs.Modified = append(cs.Modified, change)
			}
		}
	}

	if baseline != nil {
		for courseCode, course := range baseline.Courses {
			currentCourse := current.Courses[courseCode]
			for sectionCode, section := range course.Sections {
				if currentCourse == nil || currentCourse.Sections[sectionCode] == nil {
					cs.Removed = append(cs.Removed, newSectionChange(course, section))
				}
			}
		}
	}

	sortChanges(cs.Added)
	sortChanges(cs.Removed)
	sortChanges(cs.Modified)
	return cs
}

func newSectionChange(course *models.CourseView, section *models.SectionView) models.SectionChange {
	return models.SectionChange{
		CourseCode:  course.Code,
		CourseTitle: course.Title,
		SectionCode: section.Code,
		Type:        section.Type,
		Instructor:  section.Instructor,
		Enrollment:  section.Enrollment,
		Capacity:    section.Capacity,
		Fill:        section.Fill,
		Status:      section.Status,
	}
}

func sortChanges(changes []models.SectionChange) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].CourseCode != changes[j].CourseCode {
			return changes[i].CourseCode < changes[j].CourseCode
		}
		ki := helpers.SectionSortKey(changes[i].SectionCode, helpers.SectionTypeCode(changes[i].SectionCode))
		kj := helpers.SectionSortKey(changes[j].SectionCode, helpers.SectionTypeCode(changes[j].SectionCode))
		return ki < kj
	})
}
