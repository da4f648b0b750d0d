package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
)

var courseColumns = []string{"id", "name", "description", "responsible_id"}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	pool db.Querier
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(pool db.Querier) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// Create inserts a course and sets its ID
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := psql.Insert("courses").
		Columns("name", "description", "responsible_id").
		Values(course.Name, course.Description, course.ResponsibleID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&course.ID); err != nil {
		return err
	}
	return nil
}

// GetByID retrieves a course with the IDs of its sessions
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := psql.Select(courseColumns...).
		From("courses").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var course models.Course
	err = r.q(ctx).QueryRow(ctx, sql, args...).Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&course.ResponsibleID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	course.SessionIDs, err = r.GetSessionIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// GetAll retrieves a page of courses ordered by name along with the total count
func (r *CourseRepository) GetAll(ctx context.Context, limit int, offset uint64) ([]*models.Course, int64, error) {
	sql, args, err := psql.Select(courseColumns...).
		Column("COUNT(*) OVER()").
		From("courses").
		OrderBy("name").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	var total int64
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Description,
			&course.ResponsibleID,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		courses = append(courses, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, course := range courses {
		if course.SessionIDs, err = r.GetSessionIDs(ctx, course.ID); err != nil {
			return nil, 0, err
		}
	}

	return courses, total, nil
}

// GetSessionIDs returns the IDs of the sessions belonging to a course
func (r *CourseRepository) GetSessionIDs(ctx context.Context, courseID int64) ([]int64, error) {
	ids, err := queryInt64s(ctx, r.q(ctx), psql.Select("id").
		From("sessions").
		Where("course_id = ?", courseID).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("error retrieving course sessions: %w", err)
	}
	return ids, nil
}

// CountByNameLike counts courses whose name matches a LIKE pattern
func (r *CourseRepository) CountByNameLike(ctx context.Context, pattern string) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").
		From("courses").
		Where("name LIKE ?", pattern).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting courses: %w", err)
	}
	return count, nil
}

// Update updates an existing course
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := psql.Update("courses").
		Set("name", course.Name).
		Set("description", course.Description).
		Set("responsible_id", course.ResponsibleID).
		Where("id = ?", course.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	cmdTag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Delete deletes a course. Its sessions go with it through ON DELETE CASCADE.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("courses").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	cmdTag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
