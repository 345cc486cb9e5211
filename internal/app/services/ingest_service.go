package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/app/repositories"
	"github.com/yigit/coursewatch/internal/db"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// TxRunner executes a function inside one store transaction. Satisfied by
// db.PostgresDB.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// CourseWriter upserts course rows. Satisfied by repositories.CourseRepository.
type CourseWriter interface {
	Upsert(ctx context.Context, q repositories.Querier, course *models.Course) (int64, error)
}

// SectionWriter upserts section rows. Satisfied by
// repositories.SectionRepository.
type SectionWriter interface {
	Upsert(ctx context.Context, q repositories.Querier, section *models.Section) (int64, error)
}

// SnapshotWriter appends snapshot and enrollment rows. Satisfied by
// repositories.SnapshotRepository.
type SnapshotWriter interface {
	Insert(ctx context.Context, q repositories.Querier, snapshot *models.Snapshot) (int64, error)
	InsertEnrollmentRecords(ctx context.Context, q repositories.Querier, records []models.EnrollmentRecord) error
}

// IngestService stores one full enrollment snapshot per invocation. It is the
// sole writer of snapshot and enrollment rows.
type IngestService struct {
	tx        TxRunner
	courses   CourseWriter
	sections  SectionWriter
	snapshots SnapshotWriter
}

// NewIngestService creates a new IngestService
func NewIngestService(tx TxRunner, courses CourseWriter, sections SectionWriter, snapshots SnapshotWriter) *IngestService {
	return &IngestService{tx: tx, courses: courses, sections: sections, snapshots: snapshots}
}

// Ingest validates the observation batch and writes the course upserts,
// section upserts, snapshot row, and enrollment rows in one transaction.
// A duplicate timestamp rolls the whole batch back with a ConflictError;
// nothing partial is ever visible. Returns the new snapshot id.
func (s *IngestService) Ingest(ctx context.Context, observations []models.SectionObservation, semester, timestamp string) (int64, error) {
	if len(observations) == 0 {
		return 0, apperrors.NewValidationError("observation batch is empty")
	}
	if strings.TrimSpace(timestamp) == "" {
		return 0, apperrors.NewValidationError("capture timestamp is empty")
	}
	if strings.TrimSpace(semester) == "" {
		return 0, apperrors.NewValidationError("semester label is empty")
	}
	for i := range observations {
		if err := observations[i].Validate(); err != nil {
			return 0, err
		}
	}

	overallFill := OverallFill(observations)

	var snapshotID int64
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		courseIDs := make(map[string]int64)
		for i := range observations {
			obs := &observations[i]
			if _, seen := courseIDs[obs.CourseCode]; seen {
				continue
			}
			id, err := s.courses.Upsert(ctx, tx, &models.Course{
				Code:       obs.CourseCode,
				Title:      obs.CourseTitle,
				Department: obs.Department(),
			})
			if err != nil {
				return err
			}
			courseIDs[obs.CourseCode] = id
		}

		records := make([]models.EnrollmentRecord, 0, len(observations))
		for i := range observations {
			obs := &observations[i]
			sectionID, err := s.sections.Upsert(ctx, tx, &models.Section{
				CourseID:   courseIDs[obs.CourseCode],
				Code:       obs.SectionCode,
				Type:       obs.SectionType,
				Instructor: obs.Instructor,
			})
			if err != nil {
				return err
			}

			fill := models.FillRatio(obs.Enrollment, obs.Capacity)
			records = append(records, models.EnrollmentRecord{
				SectionID:       sectionID,
				Status:          models.ClassifyFill(fill),
				EnrollmentCount: obs.Enrollment,
				CapacityCount:   obs.Capacity,
				FillPercentage:  fill,
			})
		}

		id, err := s.snapshots.Insert(ctx, tx, &models.Snapshot{
			Timestamp:   timestamp,
			Semester:    semester,
			OverallFill: overallFill,
		})
		if err != nil {
			return err
		}
		snapshotID = id

		for i := range records {
			records[i].SnapshotID = snapshotID
		}
		return s.snapshots.InsertEnrollmentRecords(ctx, tx, records)
	})
	if err != nil {
		return 0, err
	}

	logger.Info().
		Int64("snapshotId", snapshotID).
		Str("timestamp", timestamp).
		Int("sections", len(observations)).
		Float64("overallFill", overallFill).
		Msg("Snapshot ingested")
	return snapshotID, nil
}

// OverallFill computes the snapshot's aggregate fill as the unweighted mean
// of per-section fill ratios.
func OverallFill(observations []models.SectionObservation) float64 {
	if len(observations) == 0 {
		return 0
	}
	var sum float64
	for i := range observations {
		sum += models.FillRatio(observations[i].Enrollment, observations[i].Capacity)
	}
	return sum / float64(len(observations))
}
