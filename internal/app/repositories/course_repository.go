package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursewatch/internal/app/models"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// Upsert inserts the course or refreshes its title/department if it already
// exists, returning the course id either way. Runs on the caller's Querier so
// ingestion can keep it inside the snapshot transaction.
func (r *CourseRepository) Upsert(ctx context.Context, q Querier, course *models.Course) (int64, error) {
	query := `
		INSERT INTO courses (code, title, department)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT courses_code_key DO UPDATE
		SET title = COALESCE(NULLIF(EXCLUDED.title, ''), courses.title),
		    department = EXCLUDED.department,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id`

	var id int64
	err := q.QueryRow(ctx, query, course.Code, course.Title, course.Department).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert course %s: %w", course.Code, err)
	}
	return id, nil
}

// GetByCode retrieves a course by its catalog code
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	query := `
		SELECT id, code, title, department, created_at, updated_at
		FROM courses
		WHERE code = $1`

	course := &models.Course{}
	err := r.db.QueryRow(ctx, query, code).Scan(
		&course.ID, &course.Code, &course.Title, &course.Department,
		&course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// Count returns the number of tracked courses
func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM courses").Scan(&count)
	return count, err
}
