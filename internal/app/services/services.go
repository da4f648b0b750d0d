package services

import (
	"context"
	"time"

	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/app/repositories"
)

// Services defined in this package:
// - CourseService: course CRUD and duplication
// - SessionService: session CRUD, date/duration derivation, attendee rules
// - PartnerService: partners, categories and the instructor/attendee views
// - AuthService: login and access tokens

// CourseStore persists courses
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetAll(ctx context.Context, limit int, offset uint64) ([]*models.Course, int64, error)
	CountByNameLike(ctx context.Context, pattern string) (int, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore persists sessions and their attendee sets
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	GetAll(ctx context.Context, filter repositories.SessionFilter, limit int, offset uint64) ([]*models.Session, int64, error)
	GetByAttendee(ctx context.Context, partnerID int64) ([]*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id int64) error
}

// PartnerStore persists partners and partner categories
type PartnerStore interface {
	Create(ctx context.Context, partner *models.Partner) error
	GetByID(ctx context.Context, id int64) (*models.Partner, error)
	GetAll(ctx context.Context, limit int, offset uint64) ([]*models.Partner, int64, error)
	GetEligibleInstructors(ctx context.Context) ([]*models.Partner, error)
	Update(ctx context.Context, partner *models.Partner) error
	SetCategories(ctx context.Context, partnerID int64, categoryIDs []int64) error
	GetAllCategories(ctx context.Context) ([]models.PartnerCategory, error)
	EnsureCategory(ctx context.Context, name string) (int64, error)
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

var (
	_ CourseStore  = (*repositories.CourseRepository)(nil)
	_ SessionStore = (*repositories.SessionRepository)(nil)
	_ PartnerStore = (*repositories.PartnerRepository)(nil)
	_ UserStore    = (*repositories.UserRepository)(nil)
)
