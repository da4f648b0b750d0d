package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/app/models/dto"
	"github.com/zigatrcek/openacademy/internal/app/repositories"
	"github.com/zigatrcek/openacademy/internal/app/services"
	"github.com/zigatrcek/openacademy/internal/middleware"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
)

// SessionController handles session-related operations
type SessionController struct {
	sessionService services.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// toSessionChanges converts a request body into the changes it writes
func toSessionChanges(req *dto.SessionRequest) (services.SessionChanges, error) {
	changes := services.SessionChanges{
		Name:        req.Name,
		CourseID:    req.CourseID,
		Duration:    req.Duration,
		Seats:       req.Seats,
		Color:       req.Color,
		Active:      req.Active,
		AttendeeIDs: req.AttendeeIDs,
	}

	parse := func(field string, opt dto.Optional[string]) (*time.Time, bool, error) {
		if !opt.Set {
			return nil, false, nil
		}
		if opt.Null || opt.Value == "" {
			return nil, true, nil
		}
		t, err := dto.ParseDate(field, opt.Value)
		if err != nil {
			return nil, false, apperrors.NewValidationError(err.Error())
		}
		return &t, false, nil
	}

	var err error
	if changes.StartDate, changes.ClearStartDate, err = parse("startDate", req.StartDate); err != nil {
		return changes, err
	}
	if changes.EndDate, changes.ClearEndDate, err = parse("endDate", req.EndDate); err != nil {
		return changes, err
	}

	if req.InstructorID.Set {
		if req.InstructorID.Null {
			changes.ClearInstructor = true
		} else {
			id := req.InstructorID.Value
			changes.InstructorID = &id
		}
	}
	return changes, nil
}

func respondSession(ctx *gin.Context, status int, result *services.SessionResult) {
	ctx.JSON(status, dto.NewAPIResponse(dto.FromSession(result.Session)).WithWarning(result.Warning))
}

// CreateSession handles session creation
// @Summary Create a new session
// @Description Creates a session. The start date defaults to today; the end date is derived from start date and duration.
// @Tags sessions
// @Security BearerAuth
// @Param request body dto.SessionRequest true "Session information"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse} "Created, possibly with a seat warning"
// @Failure 400 {object} dto.ErrorResponse "Instructor is an attendee or invalid data"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.SessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	changes, err := toSessionChanges(&req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.sessionService.CreateSession(ctx.Request.Context(), changes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondSession(ctx, http.StatusCreated, result)
}

// GetSessionByID retrieves a session by ID
// @Summary Get session by ID
// @Tags sessions
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /sessions/{id} [get]
func (c *SessionController) GetSessionByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Session")
	if !ok {
		return
	}

	session, err := c.sessionService.GetSessionByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromSession(session)))
}

// GetSessions retrieves a page of sessions
// @Summary List sessions
// @Tags sessions
// @Param courseId query int false "Only sessions of this course"
// @Param includeArchived query bool false "Include inactive sessions"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /sessions [get]
func (c *SessionController) GetSessions(ctx *gin.Context) {
	var req dto.SessionFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	filter := repositories.SessionFilter{CourseID: req.CourseID, IncludeArchived: req.IncludeArchived}
	sessions, total, err := c.sessionService.GetSessions(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, dto.FromSessions(sessions), total, page, size)
}

// UpdateSession applies a partial update to a session
// @Summary Update a session
// @Description Writes only the keys present in the body; null clears startDate, endDate and instructorId.
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.SessionRequest true "Fields to write"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Updated, possibly with a seat warning"
// @Router /sessions/{id} [patch]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Session")
	if !ok {
		return
	}

	var req dto.SessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	changes, err := toSessionChanges(&req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.sessionService.UpdateSession(ctx.Request.Context(), id, changes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondSession(ctx, http.StatusOK, result)
}

// SetActive archives or restores a session
// @Summary Archive or restore a session
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.ArchiveRequest true "Active flag"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /sessions/{id}/active [put]
func (c *SessionController) SetActive(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Session")
	if !ok {
		return
	}

	var req dto.ArchiveRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.SetActive(ctx.Request.Context(), id, *req.Active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromSession(session)))
}

// AddAttendee adds a partner to a session
// @Summary Add an attendee
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.AttendeeRequest true "Partner to add"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /sessions/{id}/attendees [post]
func (c *SessionController) AddAttendee(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Session")
	if !ok {
		return
	}

	var req dto.AttendeeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.sessionService.AddAttendee(ctx.Request.Context(), id, req.PartnerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondSession(ctx, http.StatusOK, result)
}

// RemoveAttendee removes a partner from a session
// @Summary Remove an attendee
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param partnerId path int true "Partner ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /sessions/{id}/attendees/{partnerId} [delete]
func (c *SessionController) RemoveAttendee(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Session")
	if !ok {
		return
	}
	partnerID, ok := parseIDParam(ctx, "partnerId", "Partner")
	if !ok {
		return
	}

	result, err := c.sessionService.RemoveAttendee(ctx.Request.Context(), id, partnerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondSession(ctx, http.StatusOK, result)
}

// DeleteSession deletes a session
// @Summary Delete a session
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Session")
	if !ok {
		return
	}

	if err := c.sessionService.DeleteSession(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Session deleted successfully"}))
}

// Onchange evaluates an in-progress edit of the seat configuration without saving it
// @Summary Check seats of an unsaved session form
// @Description Returns the derived seat figures and at most one advisory warning. Never fails on the seat values.
// @Tags sessions
// @Param request body dto.OnchangeRequest true "Form values"
// @Success 200 {object} dto.APIResponse{data=dto.OnchangeResponse}
// @Router /sessions/onchange [post]
func (c *SessionController) Onchange(ctx *gin.Context) {
	var req dto.OnchangeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	draft := &models.Session{Seats: req.Seats}
	draft.SetAttendees(req.AttendeeIDs)

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.OnchangeResponse{
		AttendeesCount: draft.AttendeesCount,
		TakenSeats:     draft.TakenSeats(),
	}).WithWarning(c.sessionService.VerifySeats(req.Seats, req.AttendeeIDs)))
}
