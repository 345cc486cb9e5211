package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
)

type fakeMaintSnapshots struct {
	ids        []int64
	timestamps map[string]bool
	views      map[int64]*models.SnapshotView
	deleted    int64
}

func (f *fakeMaintSnapshots) LatestID(context.Context) (int64, error) {
	if len(f.ids) == 0 {
		return 0, nil
	}
	return f.ids[len(f.ids)-1], nil
}

func (f *fakeMaintSnapshots) TimestampExists(_ context.Context, timestamp string) (bool, error) {
	return f.timestamps[timestamp], nil
}

func (f *fakeMaintSnapshots) RecentIDs(_ context.Context, keep int) ([]int64, error) {
	var ids []int64
	for i := len(f.ids) - 1; i >= 0 && len(ids) < keep; i-- {
		ids = append(ids, f.ids[i])
	}
	return ids, nil
}

func (f *fakeMaintSnapshots) DeleteAllButRecent(_ context.Context, keep int) (int64, error) {
	deleted := int64(len(f.ids) - keep)
	if deleted < 0 {
		deleted = 0
	}
	f.deleted = deleted
	return deleted, nil
}

func (f *fakeMaintSnapshots) Count(context.Context) (int64, error) {
	return int64(len(f.ids)), nil
}

func (f *fakeMaintSnapshots) EnrollmentCount(context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeMaintSnapshots) TimestampBounds(context.Context) (string, string, error) {
	return "", "", nil
}

func (f *fakeMaintSnapshots) ListAll(context.Context) ([]models.Snapshot, error) {
	var snapshots []models.Snapshot
	for _, id := range f.ids {
		view := f.views[id]
		snapshots = append(snapshots, models.Snapshot{ID: id, Timestamp: view.Timestamp, Semester: view.Semester})
	}
	return snapshots, nil
}

func (f *fakeMaintSnapshots) GetView(_ context.Context, id int64) (*models.SnapshotView, error) {
	view, ok := f.views[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("snapshot not found")
	}
	return view, nil
}

type fakeLogReader struct {
	lastReported int64
	lastTs       string
	count        int64
}

func (f *fakeLogReader) LastReportedSnapshotID(context.Context) (int64, error) {
	return f.lastReported, nil
}

func (f *fakeLogReader) LastReportTimestamp(context.Context) (string, error) {
	return f.lastTs, nil
}

func (f *fakeLogReader) Count(context.Context) (int64, error) {
	return f.count, nil
}

type fakeCounter int64

func (f fakeCounter) Count(context.Context) (int64, error) {
	return int64(f), nil
}

type fakeIngestor struct {
	snapshots *fakeMaintSnapshots
	calls     int
	err       error
}

func (f *fakeIngestor) Ingest(_ context.Context, _ []models.SectionObservation, _ string, timestamp string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls++
	f.snapshots.timestamps[timestamp] = true
	f.snapshots.ids = append(f.snapshots.ids, int64(len(f.snapshots.ids)+1))
	return int64(len(f.snapshots.ids)), nil
}

func newMaintFixture(ids []int64, lastReported int64) (*MaintenanceService, *fakeMaintSnapshots, *fakeIngestor) {
	snapshots := &fakeMaintSnapshots{
		ids:        ids,
		timestamps: map[string]bool{},
		views:      map[int64]*models.SnapshotView{},
	}
	ingestor := &fakeIngestor{snapshots: snapshots}
	svc := NewMaintenanceService(snapshots, &fakeLogReader{lastReported: lastReported}, fakeCounter(0), fakeCounter(0), ingestor)
	return svc, snapshots, ingestor
}

func TestCleanupRejectsNonPositiveKeep(t *testing.T) {
	svc, _, _ := newMaintFixture([]int64{1, 2, 3}, 3)

	_, err := svc.Cleanup(context.Background(), 0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestCleanupNoopWhenNothingToDelete(t *testing.T) {
	svc, snapshots, _ := newMaintFixture([]int64{1, 2}, 2)

	result, err := svc.Cleanup(context.Background(), 5)

	require.NoError(t, err)
	assert.Zero(t, result.Deleted)
	assert.Zero(t, snapshots.deleted)
}

func TestCleanupSkipsWhenPendingBaselineWouldBeDeleted(t *testing.T) {
	// Snapshot 5 is latest but snapshot 3 was the last one reported: the
	// pending diff needs 3 as its baseline, and keep=2 would delete it.
	svc, snapshots, _ := newMaintFixture([]int64{1, 2, 3, 4, 5}, 3)

	result, err := svc.Cleanup(context.Background(), 2)

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)
	assert.Zero(t, snapshots.deleted)
}

func TestCleanupDeletesWhenLatestReported(t *testing.T) {
	svc, snapshots, _ := newMaintFixture([]int64{1, 2, 3, 4, 5}, 5)

	result, err := svc.Cleanup(context.Background(), 2)

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, int64(3), result.Deleted)
	assert.Equal(t, int64(3), snapshots.deleted)
}

func TestCleanupProceedsWhenNothingEverReported(t *testing.T) {
	// No report log entries: the pending diff's baseline is "none", which
	// cleanup cannot delete.
	svc, _, _ := newMaintFixture([]int64{1, 2, 3, 4, 5}, 0)

	result, err := svc.Cleanup(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Deleted)
}

func writeLegacyFile(t *testing.T, dir, name string, file models.LegacySnapshotFile) {
	t.Helper()
	data, err := json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func legacyFixture(timestamp string) models.LegacySnapshotFile {
	return models.LegacySnapshotFile{
		Timestamp: timestamp,
		Semester:  "Fall 2026",
		Courses: map[string]models.LegacyCourse{
			"CSCI 101": {
				Title: "Intro to Computer Science",
				Sections: map[string]models.LegacySection{
					"1L": {Enrollment: 10, Capacity: 20, Instructor: "A. Turing", Type: "Lecture"},
				},
			},
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeLegacyFile(t, dir, "a.json", legacyFixture("2026-08-01T08:00:00Z"))
	writeLegacyFile(t, dir, "b.json", legacyFixture("2026-08-02T08:00:00Z"))

	svc, _, ingestor := newMaintFixture(nil, 0)

	first, err := svc.Migrate(context.Background(), dir, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Migrated)
	assert.Zero(t, first.Skipped)
	assert.Equal(t, 2, ingestor.calls)

	second, err := svc.Migrate(context.Background(), dir, false, true)
	require.NoError(t, err)
	assert.Zero(t, second.Migrated, "second run must insert nothing")
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 2, ingestor.calls)
}

func TestMigrateDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeLegacyFile(t, dir, "a.json", legacyFixture("2026-08-01T08:00:00Z"))

	svc, _, ingestor := newMaintFixture(nil, 0)

	result, err := svc.Migrate(context.Background(), dir, true, false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Migrated)
	assert.Zero(t, ingestor.calls)
}

func TestMigrateRequiresForceOnNonEmptyStore(t *testing.T) {
	dir := t.TempDir()
	writeLegacyFile(t, dir, "a.json", legacyFixture("2026-08-01T08:00:00Z"))

	svc, _, _ := newMaintFixture([]int64{1}, 0)

	_, err := svc.Migrate(context.Background(), dir, false, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestMigrateBadFileDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("not json"), 0o644))
	writeLegacyFile(t, dir, "good.json", legacyFixture("2026-08-01T08:00:00Z"))

	svc, _, ingestor := newMaintFixture(nil, 0)

	result, err := svc.Migrate(context.Background(), dir, false, false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Migrated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bad.json")
	assert.Equal(t, 1, ingestor.calls)
}

func TestBackupWritesReplayableDump(t *testing.T) {
	snapshots := &fakeMaintSnapshots{
		ids:        []int64{1},
		timestamps: map[string]bool{"2026-08-01T08:00:00Z": true},
		views: map[int64]*models.SnapshotView{
			1: buildView(1, "2026-08-01T08:00:00Z", 0.5, map[string]map[string][2]int{
				"CSCI 101": {"1L": {10, 20}},
			}),
		},
	}
	svc := NewMaintenanceService(snapshots, &fakeLogReader{}, fakeCounter(0), fakeCounter(0), &fakeIngestor{snapshots: snapshots})

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, svc.Backup(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var dump []models.LegacySnapshotFile
	require.NoError(t, json.Unmarshal(data, &dump))
	require.Len(t, dump, 1)
	assert.Equal(t, "2026-08-01T08:00:00Z", dump[0].Timestamp)
	require.Contains(t, dump[0].Courses, "CSCI 101")
	assert.Equal(t, 10, dump[0].Courses["CSCI 101"].Sections["1L"].Enrollment)

	observations := dump[0].Observations()
	require.Len(t, observations, 1)
	assert.Equal(t, "CSCI 101", observations[0].CourseCode)
}
