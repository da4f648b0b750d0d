package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/app/repositories"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/dberrors"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
)

// MsgInstructorNotEligible is returned when the chosen instructor is neither flagged as an
// instructor nor in a Teacher category
const MsgInstructorNotEligible = "The instructor must be flagged as an instructor or belong to a Teacher category"

// SessionChanges lists the fields a caller writes on a session. Nil fields are left untouched;
// the Clear flags write NULL to nullable fields.
type SessionChanges struct {
	Name            *string
	Color           *int
	Active          *bool
	CourseID        *int64
	StartDate       *time.Time
	ClearStartDate  bool
	Duration        *float64
	EndDate         *time.Time
	ClearEndDate    bool
	InstructorID    *int64
	ClearInstructor bool
	AttendeeIDs     []int64 // nil leaves the attendee set untouched
	Seats           *int
}

// touchesSeats reports whether the change affects the seat advisory
func (c SessionChanges) touchesSeats() bool {
	return c.Seats != nil || c.AttendeeIDs != nil
}

// touchesInstructorOrAttendees reports whether the change is subject to the instructor check
func (c SessionChanges) touchesInstructorOrAttendees() bool {
	return c.InstructorID != nil || c.ClearInstructor || c.AttendeeIDs != nil
}

// SessionResult is a saved session with the advisory raised by the change, if any
type SessionResult struct {
	Session *models.Session
	Warning *models.Warning
}

// SessionService defines the interface for session operations
type SessionService interface {
	CreateSession(ctx context.Context, changes SessionChanges) (*SessionResult, error)
	GetSessionByID(ctx context.Context, id int64) (*models.Session, error)
	GetSessions(ctx context.Context, filter repositories.SessionFilter, page, size int) ([]*models.Session, int64, error)
	UpdateSession(ctx context.Context, id int64, changes SessionChanges) (*SessionResult, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.Session, error)
	AddAttendee(ctx context.Context, sessionID, partnerID int64) (*SessionResult, error)
	RemoveAttendee(ctx context.Context, sessionID, partnerID int64) (*SessionResult, error)
	DeleteSession(ctx context.Context, id int64) error
	VerifySeats(seats int, attendeeIDs []int64) *models.Warning
}

type sessionServiceImpl struct {
	sessions SessionStore
	courses  CourseStore
	partners PartnerStore
	tx       db.Transactor
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSessionService creates a new session service instance
func NewSessionService(sessions SessionStore, courses CourseStore, partners PartnerStore, tx db.Transactor, logger zerolog.Logger) SessionService {
	return &sessionServiceImpl{
		sessions: sessions,
		courses:  courses,
		partners: partners,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// applyChanges writes the changes onto the session in the order the derived fields need:
// start_date and duration drive end_date forward; a directly written end_date drives duration
// backward, unless the same change also writes duration, which then wins.
func applyChanges(s *models.Session, c SessionChanges) {
	if c.Name != nil {
		s.Name = *c.Name
	}
	if c.Color != nil {
		s.Color = *c.Color
	}
	if c.Active != nil {
		s.Active = *c.Active
	}
	if c.CourseID != nil {
		s.CourseID = *c.CourseID
	}
	if c.Seats != nil {
		s.Seats = *c.Seats
	}

	if c.ClearInstructor {
		s.InstructorID = nil
	} else if c.InstructorID != nil {
		id := *c.InstructorID
		s.InstructorID = &id
	}

	if c.AttendeeIDs != nil {
		s.SetAttendees(c.AttendeeIDs)
	}

	if c.ClearStartDate {
		s.SetStartDate(nil)
	} else if c.StartDate != nil {
		s.SetStartDate(c.StartDate)
	}

	switch {
	case c.Duration != nil:
		s.SetDuration(*c.Duration)
	case c.ClearEndDate:
		s.RecomputeDurationFromEndDate(nil)
	case c.EndDate != nil:
		s.RecomputeDurationFromEndDate(c.EndDate)
	}
}

// validate runs the checks every persisted session must pass
func (s *sessionServiceImpl) validate(ctx context.Context, session *models.Session, changes SessionChanges) error {
	if strings.TrimSpace(session.Name) == "" {
		return apperrors.NewValidationError("Session name is required")
	}
	if session.CourseID <= 0 {
		return apperrors.NewValidationError("Session course is required")
	}
	if err := session.CheckDuration(); err != nil {
		return err
	}

	if changes.CourseID != nil {
		if _, err := s.courses.GetByID(ctx, session.CourseID); err != nil {
			return err
		}
	}

	if changes.InstructorID != nil && session.InstructorID != nil {
		instructor, err := s.partners.GetByID(ctx, *session.InstructorID)
		if err != nil {
			return err
		}
		if !instructor.CanInstruct() {
			return apperrors.NewValidationError(MsgInstructorNotEligible)
		}
	}

	if changes.touchesInstructorOrAttendees() {
		if err := session.CheckInstructorNotAttendee(); err != nil {
			return err
		}
	}
	return nil
}

// translateSessionError maps foreign key and data violations of the session tables to application errors
func translateSessionError(err error) error {
	switch {
	case err == nil:
		return nil
	case dberrors.IsForeignKeyError(err, dberrors.SessionCourseFK):
		return apperrors.NewCustomError(apperrors.ErrCourseNotFound, "Course not found")
	case dberrors.IsForeignKeyError(err, dberrors.SessionInstructorFK):
		return apperrors.NewCustomError(apperrors.ErrPartnerNotFound, "Instructor not found")
	case dberrors.IsForeignKeyError(err, dberrors.SessionAttendeePartnerFK):
		return apperrors.NewCustomError(apperrors.ErrPartnerNotFound, "Attendee not found")
	case dberrors.IsDataError(err):
		return apperrors.NewValidationError(MsgValueOutOfRange)
	default:
		return err
	}
}

func (s *sessionServiceImpl) advise(session *models.Session, changes SessionChanges) *models.Warning {
	if !changes.touchesSeats() {
		return nil
	}
	warning := session.VerifySeats()
	if warning != nil {
		s.logger.Debug().Int64("sessionId", session.ID).Str("warning", warning.Title).Msg("Seat advisory raised")
	}
	return warning
}

// CreateSession creates a session. start_date defaults to today and active to true.
func (s *sessionServiceImpl) CreateSession(ctx context.Context, changes SessionChanges) (*SessionResult, error) {
	if changes.Name == nil || changes.CourseID == nil {
		return nil, apperrors.NewValidationError("Session name and course are required")
	}

	session := models.NewSession(*changes.Name, *changes.CourseID, s.now())
	applyChanges(session, changes)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, session, changes); err != nil {
			return err
		}
		return translateSessionError(s.sessions.Create(ctx, session))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sessionId", session.ID).Int64("courseId", session.CourseID).Msg("Session created")
	return &SessionResult{Session: session, Warning: s.advise(session, changes)}, nil
}

// GetSessionByID retrieves a session with its attendee IDs
func (s *sessionServiceImpl) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid session ID", apperrors.ErrValidationFailed)
	}
	return s.sessions.GetByID(ctx, id)
}

// GetSessions retrieves a page of sessions matching the filter
func (s *sessionServiceImpl) GetSessions(ctx context.Context, filter repositories.SessionFilter, page, size int) ([]*models.Session, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sessions, total, err := s.sessions.GetAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving sessions: %w", err)
	}
	return sessions, total, nil
}

// UpdateSession applies the changes to a stored session, re-deriving the dependent fields and
// re-running the instructor check when instructor or attendees change
func (s *sessionServiceImpl) UpdateSession(ctx context.Context, id int64, changes SessionChanges) (*SessionResult, error) {
	return s.modify(ctx, id, func(session *models.Session) SessionChanges {
		applyChanges(session, changes)
		return changes
	})
}

// SetActive archives or restores a session
func (s *sessionServiceImpl) SetActive(ctx context.Context, id int64, active bool) (*models.Session, error) {
	result, err := s.UpdateSession(ctx, id, SessionChanges{Active: &active})
	if err != nil {
		return nil, err
	}
	return result.Session, nil
}

// AddAttendee adds a partner to a session's attendees
func (s *sessionServiceImpl) AddAttendee(ctx context.Context, sessionID, partnerID int64) (*SessionResult, error) {
	return s.modify(ctx, sessionID, func(session *models.Session) SessionChanges {
		session.AddAttendee(partnerID)
		return SessionChanges{AttendeeIDs: session.AttendeeIDs}
	})
}

// RemoveAttendee removes a partner from a session's attendees
func (s *sessionServiceImpl) RemoveAttendee(ctx context.Context, sessionID, partnerID int64) (*SessionResult, error) {
	return s.modify(ctx, sessionID, func(session *models.Session) SessionChanges {
		session.RemoveAttendee(partnerID)
		return SessionChanges{AttendeeIDs: session.AttendeeIDs}
	})
}

// modify loads a session, mutates it and saves it in one transaction. mutate returns the
// changes it made, which drive validation and the seat advisory.
func (s *sessionServiceImpl) modify(ctx context.Context, id int64, mutate func(*models.Session) SessionChanges) (*SessionResult, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid session ID", apperrors.ErrValidationFailed)
	}

	var (
		session *models.Session
		changes SessionChanges
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.sessions.GetByID(ctx, id)
		if err != nil {
			return err
		}

		changes = mutate(session)
		if err := s.validate(ctx, session, changes); err != nil {
			return err
		}
		return translateSessionError(s.sessions.Update(ctx, session))
	})
	if err != nil {
		return nil, err
	}

	return &SessionResult{Session: session, Warning: s.advise(session, changes)}, nil
}

// DeleteSession deletes a session
func (s *sessionServiceImpl) DeleteSession(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid session ID", apperrors.ErrValidationFailed)
	}
	return s.sessions.Delete(ctx, id)
}

// VerifySeats runs the seat advisory on an in-progress edit that has not been saved
func (s *sessionServiceImpl) VerifySeats(seats int, attendeeIDs []int64) *models.Warning {
	draft := &models.Session{Seats: seats}
	draft.SetAttendees(attendeeIDs)
	return draft.VerifySeats()
}
