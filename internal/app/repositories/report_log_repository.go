package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/dberrors"
)

// ReportLogRepository handles database operations for the reporting log
type ReportLogRepository struct {
	db *pgxpool.Pool
}

// NewReportLogRepository creates a new ReportLogRepository
func NewReportLogRepository(db *pgxpool.Pool) *ReportLogRepository {
	return &ReportLogRepository{db: db}
}

// Insert appends a report-log entry for a snapshot. Two reporter invocations
// racing on the same snapshot resolve here: the unique constraint lets only
// one insert succeed, and the loser gets a ConflictError.
func (r *ReportLogRepository) Insert(ctx context.Context, entry *models.ReportLogEntry) error {
	query := `
		INSERT INTO reporting_log (reported_snapshot_id, report_timestamp, changes_found)
		VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, entry.ReportedSnapshotID, entry.ReportTimestamp, entry.ChangesFound)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "reporting_log_snapshot_key") {
			return apperrors.NewConflictError(fmt.Sprintf("snapshot %d already has a report-log entry", entry.ReportedSnapshotID))
		}
		return apperrors.NewIntegrityError("failed to insert report-log entry", err)
	}
	return nil
}

// LastReportedSnapshotID returns the id of the most recent reported snapshot
// by snapshot timestamp, or 0 when no report has ever been logged.
func (r *ReportLogRepository) LastReportedSnapshotID(ctx context.Context) (int64, error) {
	query := `
		SELECT rl.reported_snapshot_id
		FROM reporting_log rl
		JOIN snapshots s ON s.id = rl.reported_snapshot_id
		ORDER BY s.timestamp DESC
		LIMIT 1`

	var id int64
	err := r.db.QueryRow(ctx, query).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LastReportTimestamp returns when the most recent report was logged, or an
// empty string when none exists.
func (r *ReportLogRepository) LastReportTimestamp(ctx context.Context) (string, error) {
	var ts string
	err := r.db.QueryRow(ctx, "SELECT report_timestamp FROM reporting_log ORDER BY id DESC LIMIT 1").Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return ts, err
}

// Count returns the number of logged reports
func (r *ReportLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM reporting_log").Scan(&count)
	return count, err
}
