package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

// PostgreSQL error codes handled by the application
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"

	StringDataRightTruncation = "22001"
	NumericValueOutOfRange    = "22003"
)

// Constraint names declared by the migrations
const (
	CourseNameUnique           = "course_name_unique"
	CourseNameDescriptionCheck = "course_name_description_check"
	SessionCourseFK            = "sessions_course_id_fkey"
	SessionInstructorFK        = "sessions_instructor_id_fkey"
	SessionAttendeePartnerFK   = "session_attendees_partner_id_fkey"
	CourseResponsibleFK        = "courses_responsible_id_fkey"
	PartnerCategoryFK          = "partner_category_rel_category_id_fkey"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return isViolation(err, UniqueViolation, constraintName)
}

// IsCheckConstraintError checks if the error is a PostgreSQL check violation for a specific constraint.
func IsCheckConstraintError(err error, constraintName string) bool {
	return isViolation(err, CheckViolation, constraintName)
}

// IsForeignKeyError checks if the error is a PostgreSQL foreign key violation for a specific constraint.
func IsForeignKeyError(err error, constraintName string) bool {
	return isViolation(err, ForeignKeyViolation, constraintName)
}

// IsDataError reports whether a value was too long or out of range for its column.
func IsDataError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == StringDataRightTruncation || pgErr.Code == NumericValueOutOfRange
}

func isViolation(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code && pgErr.ConstraintName == constraintName
}
