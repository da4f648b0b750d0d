package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/dberrors"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
)

// Messages for the course table constraints
const (
	MsgCourseNameDescription = "The title of the course should not be the description"
	MsgCourseNameUnique      = "The course title must be unique"
	MsgValueOutOfRange       = "A value is too long or out of range"
)

// CourseService defines the interface for course operations
type CourseService interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetAllCourses(ctx context.Context, page, size int) ([]*models.Course, int64, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id int64) error
	CopyCourse(ctx context.Context, id int64, overrides models.CourseCopyOverrides) (*models.Course, error)
}

type courseServiceImpl struct {
	courses CourseStore
	tx      db.Transactor
	logger  zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(courses CourseStore, tx db.Transactor, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courses: courses,
		tx:      tx,
		logger:  logger,
	}
}

func (s *courseServiceImpl) validateCourse(course *models.Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}
	if strings.TrimSpace(course.Name) == "" {
		return apperrors.NewValidationError("Course title is required")
	}
	return nil
}

// translateCourseError maps constraint violations of the courses table to application errors
func translateCourseError(err error) error {
	switch {
	case err == nil:
		return nil
	case dberrors.IsDuplicateConstraintError(err, dberrors.CourseNameUnique):
		return apperrors.NewCustomError(apperrors.ErrCourseNameExists, MsgCourseNameUnique)
	case dberrors.IsCheckConstraintError(err, dberrors.CourseNameDescriptionCheck):
		return apperrors.NewValidationError(MsgCourseNameDescription)
	case dberrors.IsForeignKeyError(err, dberrors.CourseResponsibleFK):
		return apperrors.NewCustomError(apperrors.ErrUserNotFound, "Responsible user not found")
	case dberrors.IsDataError(err):
		return apperrors.NewValidationError(MsgValueOutOfRange)
	default:
		return err
	}
}

// CreateCourse creates a new course
func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(course); err != nil {
		return err
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return translateCourseError(err)
	}
	course.SessionIDs = []int64{}

	s.logger.Info().Int64("courseId", course.ID).Str("name", course.Name).Msg("Course created")
	return nil
}

// GetCourseByID retrieves a course with its session IDs
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid course ID", apperrors.ErrValidationFailed)
	}
	return s.courses.GetByID(ctx, id)
}

// GetAllCourses retrieves a page of courses and the total number of courses
func (s *courseServiceImpl) GetAllCourses(ctx context.Context, page, size int) ([]*models.Course, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	courses, total, err := s.courses.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving courses: %w", err)
	}
	return courses, total, nil
}

// UpdateCourse updates an existing course
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(course); err != nil {
		return err
	}
	if course.ID <= 0 {
		return fmt.Errorf("%w: invalid course ID", apperrors.ErrValidationFailed)
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.courses.Update(ctx, course); err != nil {
			return translateCourseError(err)
		}
		updated, err := s.courses.GetByID(ctx, course.ID)
		if err != nil {
			return err
		}
		*course = *updated
		return nil
	})
}

// DeleteCourse deletes a course together with its sessions
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid course ID", apperrors.ErrValidationFailed)
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("courseId", id).Msg("Course deleted with its sessions")
	return nil
}

// CopyCourse duplicates a course under a "Copy of" name. The name is computed from the number
// of courses already named like the first copy; the count is read without locking, so two
// concurrent copies can compute the same name and one of them fails on the unique constraint.
func (s *courseServiceImpl) CopyCourse(ctx context.Context, id int64, overrides models.CourseCopyOverrides) (*models.Course, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid course ID", apperrors.ErrValidationFailed)
	}

	var dup *models.Course
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		source, err := s.courses.GetByID(ctx, id)
		if err != nil {
			return err
		}

		copies, err := s.courses.CountByNameLike(ctx, models.CopyNamePattern(source.Name))
		if err != nil {
			return err
		}

		dup = source.Copy(models.CopyName(source.Name, copies), overrides)
		return translateCourseError(s.courses.Create(ctx, dup))
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNameExists) {
			s.logger.Warn().Int64("courseId", id).Msg("Course copy name collided with an existing course")
		}
		return nil, err
	}

	s.logger.Info().Int64("sourceId", id).Int64("courseId", dup.ID).Str("name", dup.Name).Msg("Course copied")
	return dup, nil
}
