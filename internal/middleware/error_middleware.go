package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zigatrcek/openacademy/internal/app/models/dto"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/logger"
)

// HandleAPIError maps an application error to its HTTP status and writes the error envelope.
// Messages carried by apperrors.CustomError are shown to the caller as is.
func HandleAPIError(c *gin.Context, err error) {
	status, code, fallback := classify(err)
	detail := dto.NewErrorDetail(code, apperrors.Message(err, fallback))

	if status >= http.StatusInternalServerError {
		logger.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		detail = detail.WithSeverity(dto.ErrorSeverityCritical)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrCourseNotFound,
		apperrors.ErrSessionNotFound,
		apperrors.ErrPartnerNotFound,
		apperrors.ErrCategoryNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, notFoundMessage(err)
	case errors.Is(err, apperrors.ErrCourseNameExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "The course title must be unique"
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, apperrors.ErrPartnerNotFound):
		return "Partner not found"
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		return "Partner category not found"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return "User not found"
	default:
		return "Resource not found"
	}
}
