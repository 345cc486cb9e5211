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

// SnapshotRepository handles database operations for snapshots and their
// enrollment rows
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert creates the snapshot row. A duplicate timestamp surfaces as a
// ConflictError, which aborts the caller's ingestion transaction.
func (r *SnapshotRepository) Insert(ctx context.Context, q Querier, snapshot *models.Snapshot) (int64, error) {
	query := `
		INSERT INTO snapshots (timestamp, semester, overall_fill)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	err := q.QueryRow(ctx, query, snapshot.Timestamp, snapshot.Semester, snapshot.OverallFill).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "snapshots_timestamp_key") {
			return 0, apperrors.NewConflictError(fmt.Sprintf("snapshot with timestamp %s already exists", snapshot.Timestamp))
		}
		return 0, apperrors.NewIntegrityError("failed to insert snapshot", err)
	}
	return id, nil
}

// InsertEnrollmentRecords bulk-inserts one row per section for a snapshot.
func (r *SnapshotRepository) InsertEnrollmentRecords(ctx context.Context, q Querier, records []models.EnrollmentRecord) error {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			rec.SnapshotID, rec.SectionID, string(rec.Status),
			rec.EnrollmentCount, rec.CapacityCount, rec.FillPercentage,
		})
	}

	_, err := q.CopyFrom(ctx,
		pgx.Identifier{"enrollment_data"},
		[]string{"snapshot_id", "section_id", "status", "enrollment_count", "capacity_count", "fill_percentage"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("duplicate enrollment row in snapshot batch")
		}
		return apperrors.NewIntegrityError("failed to insert enrollment records", err)
	}
	return nil
}

// LatestID returns the id of the most recent snapshot by timestamp, or 0
// when the store holds no snapshots.
func (r *SnapshotRepository) LatestID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, "SELECT id FROM snapshots ORDER BY timestamp DESC LIMIT 1").Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// TimestampExists reports whether a snapshot with the given timestamp is
// already stored. Used by the legacy-file migration for idempotent reruns.
func (r *SnapshotRepository) TimestampExists(ctx context.Context, timestamp string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM snapshots WHERE timestamp = $1)", timestamp).Scan(&exists)
	return exists, err
}

// GetByID retrieves a snapshot row
func (r *SnapshotRepository) GetByID(ctx context.Context, id int64) (*models.Snapshot, error) {
	query := `
		SELECT id, timestamp, semester, overall_fill, created_at
		FROM snapshots
		WHERE id = $1`

	snapshot := &models.Snapshot{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&snapshot.ID, &snapshot.Timestamp, &snapshot.Semester,
		&snapshot.OverallFill, &snapshot.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("snapshot %d not found", id))
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListAll returns all snapshots in chronological order.
func (r *SnapshotRepository) ListAll(ctx context.Context) ([]models.Snapshot, error) {
	query := `
		SELECT id, timestamp, semester, overall_fill, created_at
		FROM snapshots
		ORDER BY timestamp`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Semester, &s.OverallFill, &s.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// ListBySemester returns a semester's snapshots in chronological order.
func (r *SnapshotRepository) ListBySemester(ctx context.Context, semester string) ([]models.Snapshot, error) {
	query := `
		SELECT id, timestamp, semester, overall_fill, created_at
		FROM snapshots
		WHERE semester = $1
		ORDER BY timestamp`

	rows, err := r.db.Query(ctx, query, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Semester, &s.OverallFill, &s.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// GetView loads a snapshot together with every course and section state it
// recorded, shaped for the diff engine and the report formatter.
func (r *SnapshotRepository) GetView(ctx context.Context, snapshotID int64) (*models.SnapshotView, error) {
	snapshot, err := r.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	view := &models.SnapshotView{
		ID:          snapshot.ID,
		Timestamp:   snapshot.Timestamp,
		Semester:    snapshot.Semester,
		OverallFill: snapshot.OverallFill,
		Courses:     make(map[string]*models.CourseView),
	}

	query := `
		SELECT c.code, c.title, s.id, s.code, s.type, s.instructor,
		       e.enrollment_count, e.capacity_count, e.fill_percentage, e.status
		FROM enrollment_data e
		JOIN sections s ON s.id = e.section_id
		JOIN courses c ON c.id = s.course_id
		WHERE e.snapshot_id = $1`

	rows, err := r.db.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			courseCode, courseTitle string
			section                 models.SectionView
		)
		if err := rows.Scan(
			&courseCode, &courseTitle, &section.SectionID, &section.Code,
			&section.Type, &section.Instructor,
			&section.Enrollment, &section.Capacity, &section.Fill, &section.Status,
		); err != nil {
			return nil, err
		}

		course, ok := view.Courses[courseCode]
		if !ok {
			course = &models.CourseView{
				Code:     courseCode,
				Title:    courseTitle,
				Sections: make(map[string]*models.SectionView),
			}
			view.Courses[courseCode] = course
		}
		sectionCopy := section
		course.Sections[section.Code] = &sectionCopy
	}
	return view, rows.Err()
}

// SectionHistory returns one section's chronologically ordered states across
// every snapshot that recorded it.
func (r *SnapshotRepository) SectionHistory(ctx context.Context, sectionID int64) ([]models.HistoryPoint, error) {
	query := `
		SELECT sn.id, sn.timestamp, e.enrollment_count, e.capacity_count, e.fill_percentage
		FROM enrollment_data e
		JOIN snapshots sn ON sn.id = e.snapshot_id
		WHERE e.section_id = $1
		ORDER BY sn.timestamp`

	rows, err := r.db.Query(ctx, query, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.HistoryPoint
	for rows.Next() {
		var p models.HistoryPoint
		if err := rows.Scan(&p.SnapshotID, &p.Timestamp, &p.Enrollment, &p.Capacity, &p.Fill); err != nil {
			return nil, err
		}
		p.Index = len(points)
		points = append(points, p)
	}
	return points, rows.Err()
}

// RecentIDs returns the ids of the keep most recent snapshots by timestamp.
func (r *SnapshotRepository) RecentIDs(ctx context.Context, keep int) ([]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT id FROM snapshots ORDER BY timestamp DESC LIMIT $1", keep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteAllButRecent removes every snapshot except the keep most recent,
// cascading to enrollment rows and report-log entries. Returns the number of
// snapshots deleted.
func (r *SnapshotRepository) DeleteAllButRecent(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM snapshots
		WHERE id NOT IN (SELECT id FROM snapshots ORDER BY timestamp DESC LIMIT $1)`

	tag, err := r.db.Exec(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored snapshots
func (r *SnapshotRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&count)
	return count, err
}

// EnrollmentCount returns the number of stored enrollment rows
func (r *SnapshotRepository) EnrollmentCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM enrollment_data").Scan(&count)
	return count, err
}

// TimestampBounds returns the first and latest snapshot timestamps, or empty
// strings when the store holds no snapshots.
func (r *SnapshotRepository) TimestampBounds(ctx context.Context) (first, latest string, err error) {
	err = r.db.QueryRow(ctx, "SELECT COALESCE(MIN(timestamp), ''), COALESCE(MAX(timestamp), '') FROM snapshots").Scan(&first, &latest)
	return first, latest, err
}
