package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/app/report"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
	"github.com/yigit/coursewatch/internal/pkg/logger"
	"github.com/yigit/coursewatch/internal/pkg/notify"
)

// SnapshotSource reads the snapshot positions the reporter needs. Satisfied
// by repositories.SnapshotRepository.
type SnapshotSource interface {
	LatestID(ctx context.Context) (int64, error)
	GetView(ctx context.Context, snapshotID int64) (*models.SnapshotView, error)
}

// ReportLog reads and appends report-log entries. Satisfied by
// repositories.ReportLogRepository.
type ReportLog interface {
	LastReportedSnapshotID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, entry *models.ReportLogEntry) error
}

// ReportResult describes what one reporter invocation did.
type ReportResult struct {
	SnapshotID      int64
	ChangesFound    bool
	Delivered       bool
	AlreadyReported bool
	Report          string
}

// ReportService decides whether the latest snapshot still needs a report,
// delivers it, and closes the reporting window. Delivery happens outside any
// transaction; the log insert is the race-safe exactly-once boundary.
type ReportService struct {
	snapshots  SnapshotSource
	log        ReportLog
	formatter  *report.Formatter
	notifier   notify.Notifier
	reportsDir string
}

// NewReportService creates a new ReportService. reportsDir may be empty to
// skip writing report files.
func NewReportService(snapshots SnapshotSource, log ReportLog, notifier notify.Notifier, reportsDir string) *ReportService {
	return &ReportService{
		snapshots:  snapshots,
		log:        log,
		formatter:  report.NewFormatter(),
		notifier:   notifier,
		reportsDir: reportsDir,
	}
}

// Run executes one reporter invocation. In stateful mode an empty change-set
// is logged with changesFound=false and nothing is delivered; otherwise every
// new snapshot is delivered regardless of emptiness. A delivery failure
// leaves the log untouched so the next invocation recomputes the same diff
// and retries.
func (s *ReportService) Run(ctx context.Context, stateful bool) (*ReportResult, error) {
	latestID, err := s.snapshots.LatestID(ctx)
	if err != nil {
		return nil, err
	}
	if latestID == 0 {
		logger.Info().Msg("No snapshots stored, nothing to report")
		return &ReportResult{}, nil
	}

	lastReportedID, err := s.log.LastReportedSnapshotID(ctx)
	if err != nil {
		return nil, err
	}
	if latestID == lastReportedID {
		logger.Info().Int64("snapshotId", latestID).Msg("Latest snapshot already reported")
		return &ReportResult{SnapshotID: latestID, AlreadyReported: true}, nil
	}

	current, err := s.snapshots.GetView(ctx, latestID)
	if err != nil {
		return nil, err
	}
	var baseline *models.SnapshotView
	if lastReportedID != 0 {
		baseline, err = s.snapshots.GetView(ctx, lastReportedID)
		if err != nil {
			return nil, err
		}
	}

	changeSet := CompareSnapshots(baseline, current)
	result := &ReportResult{
		SnapshotID:   latestID,
		ChangesFound: changeSet.HasChanges(),
	}

	if stateful && !changeSet.HasChanges() {
		logger.Info().
			Int64("snapshotId", latestID).
			Bool("changesFound", false).
			Msg("No changes since last report, skipping delivery")
		if err := s.closeWindow(ctx, latestID, false, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	text := s.formatter.Format(changeSet)
	result.Report = text
	s.writeReportFile(changeSet, text)

	if err := s.notifier.Notify(ctx, text); err != nil {
		return nil, err
	}
	result.Delivered = true

	if err := s.closeWindow(ctx, latestID, changeSet.HasChanges(), result); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("snapshotId", latestID).
		Int("sections", current.SectionCount()).
		Bool("changesFound", result.ChangesFound).
		Bool("alreadyReported", result.AlreadyReported).
		Msg("Report delivered")
	return result, nil
}

// closeWindow appends the report-log entry. A ConflictError means a
// concurrent invocation already closed this snapshot's window; that is
// treated as already reported, not a failure.
func (s *ReportService) closeWindow(ctx context.Context, snapshotID int64, changesFound bool, result *ReportResult) error {
	err := s.log.Insert(ctx, &models.ReportLogEntry{
		ReportedSnapshotID: snapshotID,
		ReportTimestamp:    time.Now().UTC().Format(time.RFC3339),
		ChangesFound:       changesFound,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn().Int64("snapshotId", snapshotID).Msg("Concurrent invocation already logged this snapshot")
			result.AlreadyReported = true
			return nil
		}
		return err
	}
	return nil
}

func (s *ReportService) writeReportFile(cs *models.ChangeSet, text string) {
	if s.reportsDir == "" {
		return
	}
	path := helpers.ReportPath(s.reportsDir, cs.Semester, cs.Timestamp, ".txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn().Err(err).Msg("Failed to create reports directory")
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to write report file")
	}
}
