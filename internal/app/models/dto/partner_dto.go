package dto

import "github.com/zigatrcek/openacademy/internal/app/models"

// PartnerRequest represents the body of a partner create or update
type PartnerRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=255"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Instructor  *bool   `json:"instructor"`
	CategoryIDs []int64 `json:"categoryIds" binding:"omitempty,dive,min=1"`
}

// CategoryRequest represents the body of a partner category create
type CategoryRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

// PartnerResponse represents a partner
type PartnerResponse struct {
	ID          int64                    `json:"id"`
	Name        string                   `json:"name"`
	Email       *string                  `json:"email,omitempty"`
	Instructor  bool                     `json:"instructor"`
	CanInstruct bool                     `json:"canInstruct"`
	Categories  []models.PartnerCategory `json:"categories"`
	SessionIDs  []int64                  `json:"sessionIds"`
}

// FromPartner converts a partner to its response form
func FromPartner(p *models.Partner) PartnerResponse {
	categories := p.Categories
	if categories == nil {
		categories = []models.PartnerCategory{}
	}
	sessionIDs := p.SessionIDs
	if sessionIDs == nil {
		sessionIDs = []int64{}
	}
	return PartnerResponse{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Instructor:  p.Instructor,
		CanInstruct: p.CanInstruct(),
		Categories:  categories,
		SessionIDs:  sessionIDs,
	}
}

// FromPartners converts a list of partners
func FromPartners(partners []*models.Partner) []PartnerResponse {
	resp := make([]PartnerResponse, 0, len(partners))
	for _, p := range partners {
		resp = append(resp, FromPartner(p))
	}
	return resp
}
