package dto

import "github.com/zigatrcek/openacademy/internal/app/models"

// SessionRequest represents the body of a session create or update. Only the keys present in
// the payload are written; null clears the nullable fields.
type SessionRequest struct {
	Name         *string          `json:"name" binding:"omitempty,notblank,max=255"`
	CourseID     *int64           `json:"courseId" binding:"omitempty,min=1"`
	StartDate    Optional[string] `json:"startDate"`
	Duration     *float64         `json:"duration" binding:"omitempty,gt=-10000,lt=10000"`
	EndDate      Optional[string] `json:"endDate"`
	Seats        *int             `json:"seats"`
	Color        *int             `json:"color"`
	Active       *bool            `json:"active"`
	InstructorID Optional[int64]  `json:"instructorId"`
	AttendeeIDs  []int64          `json:"attendeeIds" binding:"omitempty,dive,min=1"`
}

// SessionFilterRequest represents the query of a session listing
type SessionFilterRequest struct {
	CourseID        *int64 `form:"courseId" binding:"omitempty,min=1"`
	IncludeArchived bool   `form:"includeArchived"`
}

// AttendeeRequest names the partner to add to a session
type AttendeeRequest struct {
	PartnerID int64 `json:"partnerId" binding:"required,min=1"`
}

// ArchiveRequest sets the active flag of a session
type ArchiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// OnchangeRequest carries the in-progress seat configuration of a session form
type OnchangeRequest struct {
	Seats       int     `json:"seats"`
	AttendeeIDs []int64 `json:"attendeeIds"`
}

// OnchangeResponse reports the derived seat figures of an in-progress edit
type OnchangeResponse struct {
	AttendeesCount int     `json:"attendeesCount"`
	TakenSeats     float64 `json:"takenSeats"`
}

// SessionResponse represents a session
type SessionResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Color          int     `json:"color"`
	Active         bool    `json:"active"`
	StartDate      *string `json:"startDate"`
	Duration       float64 `json:"duration"`
	EndDate        *string `json:"endDate"`
	Seats          int     `json:"seats"`
	InstructorID   *int64  `json:"instructorId"`
	CourseID       int64   `json:"courseId"`
	AttendeeIDs    []int64 `json:"attendeeIds"`
	AttendeesCount int     `json:"attendeesCount"`
	TakenSeats     float64 `json:"takenSeats"`
}

// FromSession converts a session to its response form
func FromSession(s *models.Session) SessionResponse {
	attendees := s.AttendeeIDs
	if attendees == nil {
		attendees = []int64{}
	}
	return SessionResponse{
		ID:             s.ID,
		Name:           s.Name,
		Color:          s.Color,
		Active:         s.Active,
		StartDate:      FormatDate(s.StartDate),
		Duration:       s.Duration,
		EndDate:        FormatDate(s.EndDate),
		Seats:          s.Seats,
		InstructorID:   s.InstructorID,
		CourseID:       s.CourseID,
		AttendeeIDs:    attendees,
		AttendeesCount: s.AttendeesCount,
		TakenSeats:     s.TakenSeats(),
	}
}

// FromSessions converts a list of sessions
func FromSessions(sessions []*models.Session) []SessionResponse {
	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, FromSession(s))
	}
	return resp
}
