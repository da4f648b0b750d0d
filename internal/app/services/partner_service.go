package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/dberrors"
	"github.com/zigatrcek/openacademy/internal/pkg/helpers"
)

// PartnerChanges lists the partner fields a caller writes. Nil fields are left untouched.
type PartnerChanges struct {
	Name        *string
	Email       *string
	Instructor  *bool
	CategoryIDs []int64 // nil leaves the categories untouched
}

// PartnerService defines the interface for partner operations
type PartnerService interface {
	CreatePartner(ctx context.Context, changes PartnerChanges) (*models.Partner, error)
	GetPartnerByID(ctx context.Context, id int64) (*models.Partner, error)
	GetAllPartners(ctx context.Context, page, size int) ([]*models.Partner, int64, error)
	UpdatePartner(ctx context.Context, id int64, changes PartnerChanges) (*models.Partner, error)
	GetEligibleInstructors(ctx context.Context) ([]*models.Partner, error)
	GetAttendedSessions(ctx context.Context, id int64) ([]*models.Session, error)
	GetAllCategories(ctx context.Context) ([]models.PartnerCategory, error)
	CreateCategory(ctx context.Context, name string) (*models.PartnerCategory, error)
}

type partnerServiceImpl struct {
	partners PartnerStore
	sessions SessionStore
	tx       db.Transactor
	logger   zerolog.Logger
}

// NewPartnerService creates a new partner service instance
func NewPartnerService(partners PartnerStore, sessions SessionStore, tx db.Transactor, logger zerolog.Logger) PartnerService {
	return &partnerServiceImpl{
		partners: partners,
		sessions: sessions,
		tx:       tx,
		logger:   logger,
	}
}

func (s *partnerServiceImpl) setCategories(ctx context.Context, partnerID int64, categoryIDs []int64) error {
	err := s.partners.SetCategories(ctx, partnerID, categoryIDs)
	if dberrors.IsForeignKeyError(err, dberrors.PartnerCategoryFK) {
		return apperrors.NewCustomError(apperrors.ErrCategoryNotFound, "Partner category not found")
	}
	return err
}

func (s *partnerServiceImpl) applyChanges(p *models.Partner, c PartnerChanges) error {
	if c.Name != nil {
		p.Name = strings.TrimSpace(*c.Name)
	}
	if c.Email != nil {
		email := strings.TrimSpace(*c.Email)
		if email == "" {
			p.Email = nil
		} else {
			p.Email = &email
		}
	}
	if c.Instructor != nil {
		p.Instructor = *c.Instructor
	}
	if p.Name == "" {
		return apperrors.NewValidationError("Partner name is required")
	}
	return nil
}

// CreatePartner creates a partner with its categories
func (s *partnerServiceImpl) CreatePartner(ctx context.Context, changes PartnerChanges) (*models.Partner, error) {
	partner := &models.Partner{}
	if err := s.applyChanges(partner, changes); err != nil {
		return nil, err
	}

	var created *models.Partner
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.partners.Create(ctx, partner); err != nil {
			return err
		}
		if len(changes.CategoryIDs) > 0 {
			if err := s.setCategories(ctx, partner.ID, changes.CategoryIDs); err != nil {
				return err
			}
		}
		var err error
		created, err = s.partners.GetByID(ctx, partner.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("partnerId", created.ID).Bool("instructor", created.Instructor).Msg("Partner created")
	return created, nil
}

// GetPartnerByID retrieves a partner with its categories and attended session IDs
func (s *partnerServiceImpl) GetPartnerByID(ctx context.Context, id int64) (*models.Partner, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid partner ID", apperrors.ErrValidationFailed)
	}
	return s.partners.GetByID(ctx, id)
}

// GetAllPartners retrieves a page of partners
func (s *partnerServiceImpl) GetAllPartners(ctx context.Context, page, size int) ([]*models.Partner, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	partners, total, err := s.partners.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving partners: %w", err)
	}
	return partners, total, nil
}

// UpdatePartner updates a partner. Revoking eligibility does not touch sessions the partner
// already instructs.
func (s *partnerServiceImpl) UpdatePartner(ctx context.Context, id int64, changes PartnerChanges) (*models.Partner, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid partner ID", apperrors.ErrValidationFailed)
	}

	var updated *models.Partner
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		partner, err := s.partners.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyChanges(partner, changes); err != nil {
			return err
		}
		if err := s.partners.Update(ctx, partner); err != nil {
			return err
		}
		if changes.CategoryIDs != nil {
			if err := s.setCategories(ctx, id, changes.CategoryIDs); err != nil {
				return err
			}
		}
		updated, err = s.partners.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetEligibleInstructors lists the partners that may instruct a session
func (s *partnerServiceImpl) GetEligibleInstructors(ctx context.Context) ([]*models.Partner, error) {
	return s.partners.GetEligibleInstructors(ctx)
}

// GetAttendedSessions lists the active sessions the partner attends
func (s *partnerServiceImpl) GetAttendedSessions(ctx context.Context, id int64) ([]*models.Session, error) {
	if _, err := s.GetPartnerByID(ctx, id); err != nil {
		return nil, err
	}
	return s.sessions.GetByAttendee(ctx, id)
}

// GetAllCategories lists the partner categories
func (s *partnerServiceImpl) GetAllCategories(ctx context.Context) ([]models.PartnerCategory, error) {
	return s.partners.GetAllCategories(ctx)
}

// CreateCategory returns the category with the given name, creating it if needed
func (s *partnerServiceImpl) CreateCategory(ctx context.Context, name string) (*models.PartnerCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("Category name is required")
	}
	id, err := s.partners.EnsureCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	return &models.PartnerCategory{ID: id, Name: name}, nil
}
