package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so write methods run unchanged inside
// or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Course    *CourseRepository
	Section   *SectionRepository
	Snapshot  *SnapshotRepository
	ReportLog *ReportLogRepository
}

// NewRepositories creates all repositories with the shared connection pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Course:    NewCourseRepository(pool),
		Section:   NewSectionRepository(pool),
		Snapshot:  NewSnapshotRepository(pool),
		ReportLog: NewReportLogRepository(pool),
	}
}
