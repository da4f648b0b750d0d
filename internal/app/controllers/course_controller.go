package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zigatrcek/openacademy/internal/app/models/dto"
	"github.com/zigatrcek/openacademy/internal/app/services"
	"github.com/zigatrcek/openacademy/internal/middleware"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
)

// CourseController handles course-related operations
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// CreateCourse handles course creation
// @Summary Create a new course
// @Tags courses
// @Security BearerAuth
// @Param request body dto.CourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 400 {object} dto.ErrorResponse "Title equals description or invalid data"
// @Failure 409 {object} dto.ErrorResponse "Course title already exists"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := req.ToModel()
	if err := c.courseService.CreateCourse(ctx.Request.Context(), course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.FromCourse(course)))
}

// GetCourseByID retrieves a course by ID
// @Summary Get course by ID
// @Tags courses
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourseByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourseByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(course)))
}

// GetAllCourses retrieves a page of courses
// @Summary List courses
// @Tags courses
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /courses [get]
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	courses, total, err := c.courseService.GetAllCourses(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, dto.FromCourses(courses), total, page, size)
}

// UpdateCourse updates a course
// @Summary Update a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseRequest true "Course information"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := req.ToModel()
	course.ID = id
	if err := c.courseService.UpdateCourse(ctx.Request.Context(), course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromCourse(course)))
}

// DeleteCourse deletes a course and its sessions
// @Summary Delete a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Course deleted successfully"}))
}

// CopyCourse duplicates a course under a "Copy of" name
// @Summary Duplicate a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CopyCourseRequest false "Field overrides"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 409 {object} dto.ErrorResponse "Computed copy name already exists"
// @Router /courses/{id}/copy [post]
func (c *CourseController) CopyCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	var req dto.CopyCourseRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.CopyCourse(ctx.Request.Context(), id, req.ToOverrides())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.FromCourse(course)))
}
