package models

import (
	"math"
	"time"

	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
)

// Messages surfaced by session validation
const (
	MsgInstructorIsAttendee = "A session's instructor can't be an attendee"
	MsgDurationOutOfRange   = "Session duration must be between -9999.99 and 9999.99 days"

	WarnNegativeSeatsTitle   = "Incorrect 'seats' value"
	WarnNegativeSeatsMessage = "The number of available seats may not be negative"
	WarnTooManyTitle         = "Too many attendees"
	WarnTooManyMessage       = "Increase seats or remove excess attendees"
)

// MaxDuration bounds the absolute value of a session duration; the column holds NUMERIC(6, 2).
const MaxDuration = 10000.0

// Session is a scheduled instance of a course.
type Session struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Color          int        `json:"color" db:"color"`
	Active         bool       `json:"active" db:"active"`
	StartDate      *time.Time `json:"startDate,omitempty" db:"start_date"`
	Duration       float64    `json:"duration" db:"duration"` // days
	EndDate        *time.Time `json:"endDate,omitempty" db:"end_date"`
	InstructorID   *int64     `json:"instructorId,omitempty" db:"instructor_id"`
	CourseID       int64      `json:"courseId" db:"course_id"`
	AttendeeIDs    []int64    `json:"attendeeIds"`
	AttendeesCount int        `json:"attendeesCount" db:"attendees_count"`
	Seats          int        `json:"seats" db:"seats"`

	// Relations (populated when needed)
	Course     *Course  `json:"course,omitempty"`
	Instructor *Partner `json:"instructor,omitempty"`

	// set while the inverse derivation writes duration
	derivingDuration bool
}

// Warning is an advisory message produced while a session is being edited.
// It never blocks a save.
type Warning struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewSession returns a session with the defaults applied: active, starting today.
func NewSession(name string, courseID int64, today time.Time) *Session {
	start := DateOf(today)
	s := &Session{
		Name:        name,
		CourseID:    courseID,
		Active:      true,
		StartDate:   &start,
		AttendeeIDs: []int64{},
	}
	s.RecomputeEndDate()
	return s
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(math.Round(DateOf(end).Sub(DateOf(start)).Hours() / 24))
}

func dateRef(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

// SetStartDate writes start_date and re-derives end_date.
func (s *Session) SetStartDate(start *time.Time) {
	s.StartDate = dateRef(start)
	s.RecomputeEndDate()
}

// SetDuration writes duration and re-derives end_date, unless the write comes from
// RecomputeDurationFromEndDate.
func (s *Session) SetDuration(duration float64) {
	s.Duration = duration
	if s.derivingDuration {
		return
	}
	s.RecomputeEndDate()
}

// RecomputeEndDate derives end_date from start_date and duration. A duration of one day ends
// on the start date. Without a start date or a duration, end_date mirrors start_date.
func (s *Session) RecomputeEndDate() {
	if s.StartDate == nil || s.Duration == 0 {
		s.EndDate = dateRef(s.StartDate)
		return
	}
	if math.Abs(s.Duration) >= MaxDuration || math.IsNaN(s.Duration) {
		// rejected by CheckDuration before the session is saved
		s.EndDate = nil
		return
	}
	// fractional days are dropped the way date arithmetic drops them: toward minus infinity
	days := int(math.Floor(s.Duration - 1))
	end := s.StartDate.AddDate(0, 0, days)
	s.EndDate = &end
}

// RecomputeDurationFromEndDate stores a caller-written end_date and derives duration from it.
// Without a start date or an end date, duration is left untouched.
func (s *Session) RecomputeDurationFromEndDate(end *time.Time) {
	s.EndDate = dateRef(end)
	if s.StartDate == nil || s.EndDate == nil {
		return
	}
	s.derivingDuration = true
	defer func() { s.derivingDuration = false }()
	s.SetDuration(float64(DaysBetween(*s.StartDate, *s.EndDate) + 1))
}

// SetAttendees replaces the attendee set, dropping duplicates, and recounts it.
func (s *Session) SetAttendees(ids []int64) {
	seen := make(map[int64]struct{}, len(ids))
	attendees := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		attendees = append(attendees, id)
	}
	s.AttendeeIDs = attendees
	s.AttendeesCount = len(attendees)
}

// AddAttendee adds a partner to the attendee set. It reports whether the set changed.
func (s *Session) AddAttendee(partnerID int64) bool {
	if s.HasAttendee(partnerID) {
		return false
	}
	s.SetAttendees(append(append([]int64{}, s.AttendeeIDs...), partnerID))
	return true
}

// RemoveAttendee removes a partner from the attendee set. It reports whether the set changed.
func (s *Session) RemoveAttendee(partnerID int64) bool {
	if !s.HasAttendee(partnerID) {
		return false
	}
	remaining := make([]int64, 0, len(s.AttendeeIDs))
	for _, id := range s.AttendeeIDs {
		if id != partnerID {
			remaining = append(remaining, id)
		}
	}
	s.SetAttendees(remaining)
	return true
}

// HasAttendee reports whether the partner attends the session.
func (s *Session) HasAttendee(partnerID int64) bool {
	for _, id := range s.AttendeeIDs {
		if id == partnerID {
			return true
		}
	}
	return false
}

// TakenSeats returns the share of seats taken, in percent. It may exceed 100.
func (s *Session) TakenSeats() float64 {
	if s.Seats == 0 {
		return 0.0
	}
	return 100.0 * float64(len(s.AttendeeIDs)) / float64(s.Seats)
}

// VerifySeats returns the advisory warning for the session's seat configuration, if any.
func (s *Session) VerifySeats() *Warning {
	return VerifySeats(s.Seats, len(s.AttendeeIDs))
}

// VerifySeats checks a seat count against an attendee count. Only the first failing
// condition is reported.
func VerifySeats(seats, attendees int) *Warning {
	if seats < 0 {
		return &Warning{Title: WarnNegativeSeatsTitle, Message: WarnNegativeSeatsMessage}
	}
	if seats < attendees {
		return &Warning{Title: WarnTooManyTitle, Message: WarnTooManyMessage}
	}
	return nil
}

// CheckDuration fails when the duration does not fit the stored precision.
func (s *Session) CheckDuration() error {
	if math.IsNaN(s.Duration) || math.Abs(s.Duration) >= MaxDuration {
		return apperrors.NewValidationError(MsgDurationOutOfRange)
	}
	return nil
}

// CheckInstructorNotAttendee fails when the instructor is also in the attendee set.
func (s *Session) CheckInstructorNotAttendee() error {
	if s.InstructorID != nil && s.HasAttendee(*s.InstructorID) {
		return apperrors.NewValidationError(MsgInstructorIsAttendee)
	}
	return nil
}
