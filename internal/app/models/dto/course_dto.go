package dto

import "github.com/zigatrcek/openacademy/internal/app/models"

// CourseRequest represents the body of a course create or update
type CourseRequest struct {
	Name          string  `json:"name" binding:"required,notblank,max=255"`
	Description   *string `json:"description"`
	ResponsibleID *int64  `json:"responsibleId" binding:"omitempty,min=1"`
}

// CopyCourseRequest represents the optional overrides of a course copy
type CopyCourseRequest struct {
	Description   *string `json:"description"`
	ResponsibleID *int64  `json:"responsibleId" binding:"omitempty,min=1"`
}

// CourseResponse represents a course
type CourseResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	ResponsibleID *int64  `json:"responsibleId,omitempty"`
	SessionIDs    []int64 `json:"sessionIds"`
}

// ToModel converts the request into a course
func (r *CourseRequest) ToModel() *models.Course {
	return &models.Course{
		Name:          r.Name,
		Description:   r.Description,
		ResponsibleID: r.ResponsibleID,
	}
}

// ToOverrides converts the request into copy overrides
func (r *CopyCourseRequest) ToOverrides() models.CourseCopyOverrides {
	return models.CourseCopyOverrides{
		Description:   r.Description,
		ResponsibleID: r.ResponsibleID,
	}
}

// FromCourse converts a course to its response form
func FromCourse(c *models.Course) CourseResponse {
	sessionIDs := c.SessionIDs
	if sessionIDs == nil {
		sessionIDs = []int64{}
	}
	return CourseResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		ResponsibleID: c.ResponsibleID,
		SessionIDs:    sessionIDs,
	}
}

// FromCourses converts a list of courses
func FromCourses(courses []*models.Course) []CourseResponse {
	resp := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp = append(resp, FromCourse(c))
	}
	return resp
}
