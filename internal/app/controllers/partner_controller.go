package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zigatrcek/openacademy/internal/app/models/dto"
	"github.com/zigatrcek/openacademy/internal/app/services"
	"github.com/zigatrcek/openacademy/internal/middleware"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
)

// PartnerController handles partner and partner category operations
type PartnerController struct {
	partnerService services.PartnerService
}

// NewPartnerController creates a new PartnerController
func NewPartnerController(partnerService services.PartnerService) *PartnerController {
	return &PartnerController{
		partnerService: partnerService,
	}
}

func toPartnerChanges(req *dto.PartnerRequest) services.PartnerChanges {
	return services.PartnerChanges{
		Name:        req.Name,
		Email:       req.Email,
		Instructor:  req.Instructor,
		CategoryIDs: req.CategoryIDs,
	}
}

// CreatePartner handles partner creation
// @Summary Create a new partner
// @Tags partners
// @Security BearerAuth
// @Param request body dto.PartnerRequest true "Partner information"
// @Success 201 {object} dto.APIResponse{data=dto.PartnerResponse}
// @Router /partners [post]
func (c *PartnerController) CreatePartner(ctx *gin.Context) {
	var req dto.PartnerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	partner, err := c.partnerService.CreatePartner(ctx.Request.Context(), toPartnerChanges(&req))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.FromPartner(partner)))
}

// GetPartnerByID retrieves a partner by ID
// @Summary Get partner by ID
// @Tags partners
// @Param id path int true "Partner ID"
// @Success 200 {object} dto.APIResponse{data=dto.PartnerResponse}
// @Router /partners/{id} [get]
func (c *PartnerController) GetPartnerByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Partner")
	if !ok {
		return
	}

	partner, err := c.partnerService.GetPartnerByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromPartner(partner)))
}

// GetAllPartners retrieves a page of partners
// @Summary List partners
// @Tags partners
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /partners [get]
func (c *PartnerController) GetAllPartners(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	partners, total, err := c.partnerService.GetAllPartners(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, dto.FromPartners(partners), total, page, size)
}

// UpdatePartner updates a partner
// @Summary Update a partner
// @Tags partners
// @Security BearerAuth
// @Param id path int true "Partner ID"
// @Param request body dto.PartnerRequest true "Fields to write"
// @Success 200 {object} dto.APIResponse{data=dto.PartnerResponse}
// @Router /partners/{id} [patch]
func (c *PartnerController) UpdatePartner(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Partner")
	if !ok {
		return
	}

	var req dto.PartnerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	partner, err := c.partnerService.UpdatePartner(ctx.Request.Context(), id, toPartnerChanges(&req))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromPartner(partner)))
}

// GetEligibleInstructors lists the partners that may instruct a session
// @Summary List eligible instructors
// @Tags partners
// @Success 200 {object} dto.APIResponse{data=[]dto.PartnerResponse}
// @Router /partners/instructors [get]
func (c *PartnerController) GetEligibleInstructors(ctx *gin.Context) {
	partners, err := c.partnerService.GetEligibleInstructors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromPartners(partners)))
}

// GetAttendedSessions lists the active sessions a partner attends
// @Summary List a partner's sessions
// @Tags partners
// @Param id path int true "Partner ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SessionResponse}
// @Router /partners/{id}/sessions [get]
func (c *PartnerController) GetAttendedSessions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Partner")
	if !ok {
		return
	}

	sessions, err := c.partnerService.GetAttendedSessions(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromSessions(sessions)))
}

// GetAllCategories lists the partner categories
// @Summary List partner categories
// @Tags partners
// @Success 200 {object} dto.APIResponse{data=[]models.PartnerCategory}
// @Router /partner-categories [get]
func (c *PartnerController) GetAllCategories(ctx *gin.Context) {
	categories, err := c.partnerService.GetAllCategories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(categories))
}

// CreateCategory creates a partner category, or returns the existing one with that name
// @Summary Create a partner category
// @Tags partners
// @Security BearerAuth
// @Param request body dto.CategoryRequest true "Category name"
// @Success 201 {object} dto.APIResponse{data=models.PartnerCategory}
// @Router /partner-categories [post]
func (c *PartnerController) CreateCategory(ctx *gin.Context) {
	var req dto.CategoryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	category, err := c.partnerService.CreateCategory(ctx.Request.Context(), req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(category))
}
