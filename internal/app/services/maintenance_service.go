package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// SnapshotMaintenance is the snapshot-repository surface the maintenance
// operations use.
type SnapshotMaintenance interface {
	LatestID(ctx context.Context) (int64, error)
	TimestampExists(ctx context.Context, timestamp string) (bool, error)
	RecentIDs(ctx context.Context, keep int) ([]int64, error)
	DeleteAllButRecent(ctx context.Context, keep int) (int64, error)
	Count(ctx context.Context) (int64, error)
	EnrollmentCount(ctx context.Context) (int64, error)
	TimestampBounds(ctx context.Context) (first, latest string, err error)
	ListAll(ctx context.Context) ([]models.Snapshot, error)
	GetView(ctx context.Context, snapshotID int64) (*models.SnapshotView, error)
}

// ReportLogReader is the read-only report-log surface maintenance uses.
type ReportLogReader interface {
	LastReportedSnapshotID(ctx context.Context) (int64, error)
	LastReportTimestamp(ctx context.Context) (string, error)
	Count(ctx context.Context) (int64, error)
}

// Counter reports a table's row count.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Ingestor stores one snapshot batch. Satisfied by IngestService.
type Ingestor interface {
	Ingest(ctx context.Context, observations []models.SectionObservation, semester, timestamp string) (int64, error)
}

// CleanupResult describes what a cleanup run did.
type CleanupResult struct {
	Deleted int64
	Skipped bool
	Reason  string
}

// MigrationResult accounts for a legacy-file migration run.
type MigrationResult struct {
	Total    int
	Migrated int
	Skipped  int
	Failed   int
	Errors   []string
}

// MaintenanceService covers retention cleanup, legacy JSON migration, store
// statistics, and backup dumps.
type MaintenanceService struct {
	snapshots SnapshotMaintenance
	log       ReportLogReader
	courses   Counter
	sections  Counter
	ingestor  Ingestor
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(snapshots SnapshotMaintenance, log ReportLogReader, courses, sections Counter, ingestor Ingestor) *MaintenanceService {
	return &MaintenanceService{
		snapshots: snapshots,
		log:       log,
		courses:   courses,
		sections:  sections,
		ingestor:  ingestor,
	}
}

// Cleanup deletes all but the keep most recent snapshots, cascading to
// enrollment rows and report-log entries. It refuses to run when the latest
// snapshot has not been reported yet and the cutoff would delete its diff
// baseline, since that would lose the undelivered report window.
func (s *MaintenanceService) Cleanup(ctx context.Context, keep int) (*CleanupResult, error) {
	if keep < 1 {
		return nil, apperrors.NewValidationError("cleanup must keep at least one snapshot")
	}

	count, err := s.snapshots.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count <= int64(keep) {
		return &CleanupResult{}, nil
	}

	latestID, err := s.snapshots.LatestID(ctx)
	if err != nil {
		return nil, err
	}
	lastReportedID, err := s.log.LastReportedSnapshotID(ctx)
	if err != nil {
		return nil, err
	}

	if latestID != lastReportedID && lastReportedID != 0 {
		kept, err := s.snapshots.RecentIDs(ctx, keep)
		if err != nil {
			return nil, err
		}
		if !containsID(kept, lastReportedID) {
			reason := fmt.Sprintf(
				"snapshot %d is pending a report whose baseline %d would be deleted",
				latestID, lastReportedID)
			logger.Warn().Int("keep", keep).Msg("Cleanup skipped: " + reason)
			return &CleanupResult{Skipped: true, Reason: reason}, nil
		}
	}

	deleted, err := s.snapshots.DeleteAllButRecent(ctx, keep)
	if err != nil {
		return nil, err
	}
	logger.Info().Int64("deleted", deleted).Int("keep", keep).Msg("Retention cleanup complete")
	return &CleanupResult{Deleted: deleted}, nil
}

// Migrate replays legacy JSON snapshot files through the ingestor in
// timestamp order. Files whose timestamp is already stored are skipped, so
// reruns are idempotent. One bad file does not abort the batch. Migrating
// into a non-empty store requires force; dry runs validate without writing.
func (s *MaintenanceService) Migrate(ctx context.Context, dir string, dryRun, force bool) (*MigrationResult, error) {
	files, err := legacyFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{Total: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	if !dryRun && !force {
		count, err := s.snapshots.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.NewValidationError("store already contains snapshots, rerun with force to migrate anyway")
		}
	}

	for _, path := range files {
		file, err := readLegacyFile(path)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable legacy file")
			continue
		}

		exists, err := s.snapshots.TimestampExists(ctx, file.Timestamp)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			logger.Debug().Str("timestamp", file.Timestamp).Msg("Snapshot already stored, skipping")
			continue
		}

		if dryRun {
			result.Migrated++
			logger.Info().Str("timestamp", file.Timestamp).Msg("Dry run: would migrate snapshot")
			continue
		}

		if _, err := s.ingestor.Ingest(ctx, file.Observations(), file.Semester, file.Timestamp); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			logger.Warn().Err(err).Str("file", path).Msg("Failed to migrate legacy file")
			continue
		}
		result.Migrated++
	}

	logger.Info().
		Int("total", result.Total).
		Int("migrated", result.Migrated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("dryRun", dryRun).
		Msg("Migration complete")
	return result, nil
}

// Stats returns read-only store statistics.
func (s *MaintenanceService) Stats(ctx context.Context) (*models.StoreStats, error) {
	stats := &models.StoreStats{}
	var err error

	if stats.Courses, err = s.courses.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Sections, err = s.sections.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Snapshots, err = s.snapshots.Count(ctx); err != nil {
		return nil, err
	}
	if stats.EnrollmentRecords, err = s.snapshots.EnrollmentCount(ctx); err != nil {
		return nil, err
	}
	if stats.Reports, err = s.log.Count(ctx); err != nil {
		return nil, err
	}
	if stats.FirstSnapshot, stats.LatestSnapshot, err = s.snapshots.TimestampBounds(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// Backup writes every stored snapshot to path as a JSON array of legacy
// snapshot documents. The dump replays back through Migrate, which makes it a
// portable, restorable copy of the store.
func (s *MaintenanceService) Backup(ctx context.Context, path string) error {
	snapshots, err := s.snapshots.ListAll(ctx)
	if err != nil {
		return err
	}

	dump := make([]models.LegacySnapshotFile, 0, len(snapshots))
	for _, snapshot := range snapshots {
		view, err := s.snapshots.GetView(ctx, snapshot.ID)
		if err != nil {
			return err
		}
		dump = append(dump, viewToLegacy(view))
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("snapshots", len(dump)).Msg("Backup written")
	return nil
}

func viewToLegacy(view *models.SnapshotView) models.LegacySnapshotFile {
	file := models.LegacySnapshotFile{
		Timestamp: view.Timestamp,
		Semester:  view.Semester,
		Courses:   make(map[string]models.LegacyCourse, len(view.Courses)),
	}
	for code, course := range view.Courses {
		legacy := models.LegacyCourse{
			Title:    course.Title,
			Sections: make(map[string]models.LegacySection, len(course.Sections)),
		}
		for sectionCode, section := range course.Sections {
			legacy.Sections[sectionCode] = models.LegacySection{
				Enrollment: section.Enrollment,
				Capacity:   section.Capacity,
				Instructor: section.Instructor,
				Type:       string(section.Type),
			}
		}
		file.Courses[code] = legacy
	}
	return file
}

func legacyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func readLegacyFile(path string) (*models.LegacySnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file models.LegacySnapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid snapshot document: %w", err)
	}
	if strings.TrimSpace(file.Timestamp) == "" {
		return nil, fmt.Errorf("snapshot document has no timestamp")
	}
	return &file, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
