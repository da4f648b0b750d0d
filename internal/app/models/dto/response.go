package dto

import (
	"time"

	"github.com/zigatrcek/openacademy/internal/app/models"
)

// APIResponse is the success envelope of every endpoint
type APIResponse struct {
	Success   bool            `json:"success"`
	Data      interface{}     `json:"data,omitempty"`
	Warning   *models.Warning `json:"warning,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewAPIResponse wraps data in the success envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// WithWarning attaches a non-blocking advisory to the response
func (r APIResponse) WithWarning(w *models.Warning) APIResponse {
	r.Warning = w
	return r
}

// SuccessResponse represents a message-only success payload
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}
