package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/app/repositories"
	"github.com/yigit/coursewatch/internal/db"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
)

// ingestState is the committed content of the fake store: writes land in a
// staged copy and become visible only when the transaction commits.
type ingestState struct {
	courses   map[string]int64
	sections  map[string]int64
	snapshots []models.Snapshot
	records   []models.EnrollmentRecord
	nextID    int64
}

func newIngestState() *ingestState {
	return &ingestState{
		courses:  map[string]int64{},
		sections: map[string]int64{},
		nextID:   1,
	}
}

func (s *ingestState) clone() *ingestState {
	c := newIngestState()
	c.nextID = s.nextID
	for k, v := range s.courses {
		c.courses[k] = v
	}
	for k, v := range s.sections {
		c.sections[k] = v
	}
	c.snapshots = append(c.snapshots, s.snapshots...)
	c.records = append(c.records, s.records...)
	return c
}

type fakeIngestStore struct {
	committed *ingestState
	staged    *ingestState

	txCalls       int
	courseUpserts int
}

func newFakeIngestStore() *fakeIngestStore {
	return &fakeIngestStore{committed: newIngestState()}
}

func (f *fakeIngestStore) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	f.txCalls++
	f.staged = f.committed.clone()
	if err := fn(ctx, nil); err != nil {
		f.staged = nil
		return err
	}
	f.committed = f.staged
	f.staged = nil
	return nil
}

type fakeCourseWriter struct{ store *fakeIngestStore }

func (w fakeCourseWriter) Upsert(_ context.Context, _ repositories.Querier, course *models.Course) (int64, error) {
	w.store.courseUpserts++
	st := w.store.staged
	if id, ok := st.courses[course.Code]; ok {
		return id, nil
	}
	id := st.nextID
	st.nextID++
	st.courses[course.Code] = id
	return id, nil
}

type fakeSectionWriter struct{ store *fakeIngestStore }

func (w fakeSectionWriter) Upsert(_ context.Context, _ repositories.Querier, section *models.Section) (int64, error) {
	st := w.store.staged
	key := fmt.Sprintf("%d:%s", section.CourseID, section.Code)
	if id, ok := st.sections[key]; ok {
		return id, nil
	}
	id := st.nextID
	st.nextID++
	st.sections[key] = id
	return id, nil
}

type fakeSnapshotWriter struct{ store *fakeIngestStore }

func (w fakeSnapshotWriter) Insert(_ context.Context, _ repositories.Querier, snapshot *models.Snapshot) (int64, error) {
	st := w.store.staged
	for _, existing := range st.snapshots {
		if existing.Timestamp == snapshot.Timestamp {
			return 0, apperrors.NewConflictError("snapshot timestamp already stored")
		}
	}
	id := st.nextID
	st.nextID++
	stored := *snapshot
	stored.ID = id
	st.snapshots = append(st.snapshots, stored)
	return id, nil
}

func (w fakeSnapshotWriter) InsertEnrollmentRecords(_ context.Context, _ repositories.Querier, records []models.EnrollmentRecord) error {
	w.store.staged.records = append(w.store.staged.records, records...)
	return nil
}

func newIngestFixture() (*fakeIngestStore, *IngestService) {
	store := newFakeIngestStore()
	svc := NewIngestService(store, fakeCourseWriter{store}, fakeSectionWriter{store}, fakeSnapshotWriter{store})
	return store, svc
}

func sampleBatch() []models.SectionObservation {
	return []models.SectionObservation{
		{CourseCode: "CSCI 101", CourseTitle: "Intro", SectionCode: "1L", SectionType: models.TypeLecture, Enrollment: 20, Capacity: 20},
		{CourseCode: "CSCI 101", CourseTitle: "Intro", SectionCode: "1Lb", SectionType: models.TypeLab, Enrollment: 10, Capacity: 20},
		{CourseCode: "MATH 201", CourseTitle: "Calculus", SectionCode: "1L", SectionType: models.TypeLecture, Enrollment: 0, Capacity: 100},
	}
}

func TestIngestStoresBatchInOneTransaction(t *testing.T) {
	store, svc := newIngestFixture()

	id, err := svc.Ingest(context.Background(), sampleBatch(), "Fall 2026", "2026-08-30T12:00:00Z")
	require.NoError(t, err)
	assert.NotZero(t, id)

	assert.Equal(t, 1, store.txCalls)
	assert.Len(t, store.committed.snapshots, 1)
	assert.Len(t, store.committed.records, 3)
	assert.Len(t, store.committed.courses, 2)
	assert.Len(t, store.committed.sections, 3)
	// One upsert per distinct course code, not per observation.
	assert.Equal(t, 2, store.courseUpserts)

	for _, record := range store.committed.records {
		assert.Equal(t, id, record.SnapshotID)
	}
}

func TestIngestDuplicateTimestampRollsBackWholeBatch(t *testing.T) {
	store, svc := newIngestFixture()

	_, err := svc.Ingest(context.Background(), sampleBatch(), "Fall 2026", "2026-08-30T12:00:00Z")
	require.NoError(t, err)
	before := store.committed.clone()

	// Retry with the same timestamp but a course the store has never seen:
	// the conflict must discard that course upsert along with everything else.
	retry := append(sampleBatch(), models.SectionObservation{
		CourseCode: "PHYS 110", CourseTitle: "Mechanics", SectionCode: "1L",
		SectionType: models.TypeLecture, Enrollment: 5, Capacity: 30,
	})
	_, err = svc.Ingest(context.Background(), retry, "Fall 2026", "2026-08-30T12:00:00Z")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Equal(t, before, store.committed)
}

func TestIngestValidationRejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name         string
		observations []models.SectionObservation
		semester     string
		timestamp    string
	}{
		{name: "empty batch", observations: nil, semester: "Fall 2026", timestamp: "2026-08-30T12:00:00Z"},
		{name: "blank timestamp", observations: sampleBatch(), semester: "Fall 2026", timestamp: "  "},
		{name: "blank semester", observations: sampleBatch(), semester: "", timestamp: "2026-08-30T12:00:00Z"},
		{
			name: "negative enrollment",
			observations: []models.SectionObservation{
				{CourseCode: "CSCI 101", SectionCode: "1L", SectionType: models.TypeLecture, Enrollment: -1, Capacity: 20},
			},
			semester:  "Fall 2026",
			timestamp: "2026-08-30T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, svc := newIngestFixture()

			_, err := svc.Ingest(context.Background(), tt.observations, tt.semester, tt.timestamp)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Zero(t, store.txCalls)
			assert.Equal(t, newIngestState(), store.committed)
		})
	}
}

func TestOverallFillIsUnweightedMean(t *testing.T) {
	// Ratios 1.0, 0.5 and 0.0.
	observations := []models.SectionObservation{
		{CourseCode: "CSCI 101", SectionCode: "1L", Enrollment: 20, Capacity: 20},
		{CourseCode: "CSCI 101", SectionCode: "2L", Enrollment: 10, Capacity: 20},
		{CourseCode: "MATH 201", SectionCode: "1L", Enrollment: 0, Capacity: 100},
	}

	// The mean is over ratios, not enrollment-weighted: a tiny full section
	// counts as much as a huge empty one.
	assert.InDelta(t, 0.5, OverallFill(observations), 1e-9)
}

func TestOverallFillEmptyBatch(t *testing.T) {
	assert.Zero(t, OverallFill(nil))
}

func TestOverallFillOverEnrolled(t *testing.T) {
	observations := []models.SectionObservation{
		{CourseCode: "CSCI 101", SectionCode: "1L", Enrollment: 28, Capacity: 20},
	}
	assert.InDelta(t, 1.4, OverallFill(observations), 1e-9)
}
