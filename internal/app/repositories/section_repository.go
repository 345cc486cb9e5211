package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursewatch/internal/app/models"
)

// SectionRepository handles database operations for sections
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{db: db}
}

// Upsert inserts the section or updates its type/instructor in place when
// they changed, returning the section id either way.
func (r *SectionRepository) Upsert(ctx context.Context, q Querier, section *models.Section) (int64, error) {
	query := `
		INSERT INTO sections (course_id, code, type, instructor)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT sections_course_id_code_key DO UPDATE
		SET type = EXCLUDED.type,
		    instructor = COALESCE(NULLIF(EXCLUDED.instructor, ''), sections.instructor),
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id`

	var id int64
	err := q.QueryRow(ctx, query, section.CourseID, section.Code, string(section.Type), section.Instructor).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert section %s: %w", section.Code, err)
	}
	return id, nil
}

// ListByCourse retrieves all sections of a course ordered by code
func (r *SectionRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Section, error) {
	query := `
		SELECT id, course_id, code, type, instructor, created_at, updated_at
		FROM sections
		WHERE course_id = $1
		ORDER BY code`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Code, &s.Type, &s.Instructor, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// Count returns the number of tracked sections
func (r *SectionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM sections").Scan(&count)
	return count, err
}
