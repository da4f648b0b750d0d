package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
)

var sessionColumns = []string{
	"id", "name", "color", "active", "start_date", "duration", "end_date",
	"instructor_id", "course_id", "attendees_count", "seats",
}

// SessionFilter narrows session listings
type SessionFilter struct {
	CourseID        *int64
	IncludeArchived bool
}

// SessionRepository handles database operations for sessions and their attendees
type SessionRepository struct {
	pool db.Querier
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool db.Querier) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func scanSession(row pgx.Row, extra ...any) (*models.Session, error) {
	var s models.Session
	dest := []any{
		&s.ID,
		&s.Name,
		&s.Color,
		&s.Active,
		&s.StartDate,
		&s.Duration,
		&s.EndDate,
		&s.InstructorID,
		&s.CourseID,
		&s.AttendeesCount,
		&s.Seats,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.AttendeeIDs = []int64{}
	return &s, nil
}

// Create inserts a session with its attendees and sets its ID
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	sql, args, err := psql.Insert("sessions").
		Columns("name", "color", "active", "start_date", "duration", "end_date",
			"instructor_id", "course_id", "attendees_count", "seats").
		Values(session.Name, session.Color, session.Active, session.StartDate, session.Duration,
			session.EndDate, session.InstructorID, session.CourseID, session.AttendeesCount, session.Seats).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&session.ID); err != nil {
		return err
	}

	return r.ReplaceAttendees(ctx, session.ID, session.AttendeeIDs)
}

// GetByID retrieves a session with its attendee IDs
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	sql, args, err := psql.Select(sessionColumns...).
		From("sessions").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	session, err := scanSession(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	if err := r.attachAttendees(ctx, []*models.Session{session}); err != nil {
		return nil, err
	}
	return session, nil
}

// GetAll retrieves a page of sessions matching the filter along with the total count.
// Archived sessions are left out unless the filter asks for them.
func (r *SessionRepository) GetAll(ctx context.Context, filter SessionFilter, limit int, offset uint64) ([]*models.Session, int64, error) {
	query := psql.Select(sessionColumns...).
		Column("COUNT(*) OVER()").
		From("sessions").
		OrderBy("start_date", "id").
		Limit(uint64(limit)).
		Offset(offset)

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if !filter.IncludeArchived {
		query = query.Where("active = TRUE")
	}

	return r.list(ctx, query)
}

// GetByAttendee retrieves the active sessions a partner attends
func (r *SessionRepository) GetByAttendee(ctx context.Context, partnerID int64) ([]*models.Session, error) {
	query := psql.Select(prefixed("s", sessionColumns)...).
		Column("COUNT(*) OVER()").
		From("sessions s").
		Join("session_attendees sa ON sa.session_id = s.id").
		Where("sa.partner_id = ?", partnerID).
		Where("s.active = TRUE").
		OrderBy("s.start_date", "s.id")

	sessions, _, err := r.list(ctx, query)
	return sessions, err
}

func (r *SessionRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Session, int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	sessions := []*models.Session{}
	var total int64
	for rows.Next() {
		session, err := scanSession(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachAttendees(ctx, sessions); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// attachAttendees loads the attendee IDs of all given sessions in one query
func (r *SessionRepository) attachAttendees(ctx context.Context, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Session, len(sessions))
	ids := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	sql, args, err := psql.Select("session_id", "partner_id").
		From("session_attendees").
		Where(squirrel.Eq{"session_id": ids}).
		OrderBy("session_id", "partner_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error retrieving attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID, partnerID int64
		if err := rows.Scan(&sessionID, &partnerID); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		if s, ok := byID[sessionID]; ok {
			s.AttendeeIDs = append(s.AttendeeIDs, partnerID)
		}
	}
	return rows.Err()
}

// Update writes every stored column of a session and replaces its attendees
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	sql, args, err := psql.Update("sessions").
		SetMap(map[string]interface{}{
			"name":            session.Name,
			"color":           session.Color,
			"active":          session.Active,
			"start_date":      session.StartDate,
			"duration":        session.Duration,
			"end_date":        session.EndDate,
			"instructor_id":   session.InstructorID,
			"course_id":       session.CourseID,
			"attendees_count": session.AttendeesCount,
			"seats":           session.Seats,
		}).
		Where("id = ?", session.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	cmdTag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return r.ReplaceAttendees(ctx, session.ID, session.AttendeeIDs)
}

// ReplaceAttendees replaces the attendee rows of a session
func (r *SessionRepository) ReplaceAttendees(ctx context.Context, sessionID int64, partnerIDs []int64) error {
	sql, args, err := psql.Delete("session_attendees").Where("session_id = ?", sessionID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error clearing attendees: %w", err)
	}

	if len(partnerIDs) == 0 {
		return nil
	}

	insert := psql.Insert("session_attendees").Columns("session_id", "partner_id")
	for _, partnerID := range partnerIDs {
		insert = insert.Values(sessionID, partnerID)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return err
	}
	return nil
}

// Delete deletes a session
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("sessions").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	cmdTag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
