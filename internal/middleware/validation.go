package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/zigatrcek/openacademy/internal/app/models/dto"
	"github.com/zigatrcek/openacademy/internal/pkg/validation"
)

// BindJSON binds and validates the request body into obj. On failure it writes the 400
// response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(validationErrorDetail(err)))
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for endpoints whose body may be omitted. An empty body,
// chunked or not, leaves obj untouched.
func BindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(validationErrorDetail(err)))
		return false
	}
	return true
}

// BindQuery binds and validates the query string into obj
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(validationErrorDetail(err)))
		return false
	}
	return true
}

func validationErrorDetail(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
	}

	fields := dto.NewValidationErrors()
	for _, e := range verrs {
		fields.AddError(e.Field(), formatValidationError(e))
	}
	return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, formatValidationError(verrs[0])).
		WithField(verrs[0].Field()).
		WithDetails(fields.Errors)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case validation.TagNotBlank:
		return e.Field() + " must not be blank"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "lt":
		return e.Field() + " must be less than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
