package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/app/repositories"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/dberrors"
)

var testLogger = zerolog.Nop()

// fakeTx runs the function directly and counts the calls
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	f.calls++
	return fn(ctx)
}

func pgErr(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

// likeMatch evaluates a SQL LIKE pattern
func likeMatch(pattern, s string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String()).MatchString(s)
}

type fakeCourseStore struct {
	nextID  int64
	courses map[int64]*models.Course
	users   map[int64]bool
	// nameLimit emulates a VARCHAR(n) name column when set
	nameLimit int
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: map[int64]*models.Course{}, users: map[int64]bool{}}
}

func (f *fakeCourseStore) check(c *models.Course) error {
	if f.nameLimit > 0 && len([]rune(c.Name)) > f.nameLimit {
		return pgErr(dberrors.StringDataRightTruncation, "")
	}
	if c.Description != nil && *c.Description == c.Name {
		return pgErr(dberrors.CheckViolation, dberrors.CourseNameDescriptionCheck)
	}
	for _, other := range f.courses {
		if other.ID != c.ID && other.Name == c.Name {
			return pgErr(dberrors.UniqueViolation, dberrors.CourseNameUnique)
		}
	}
	if c.ResponsibleID != nil && !f.users[*c.ResponsibleID] {
		return pgErr(dberrors.ForeignKeyViolation, dberrors.CourseResponsibleFK)
	}
	return nil
}

func (f *fakeCourseStore) Create(_ context.Context, c *models.Course) error {
	if err := f.check(c); err != nil {
		return err
	}
	f.nextID++
	c.ID = f.nextID
	stored := *c
	f.courses[c.ID] = &stored
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	out := *c
	if out.SessionIDs == nil {
		out.SessionIDs = []int64{}
	}
	return &out, nil
}

func (f *fakeCourseStore) GetAll(_ context.Context, limit int, offset uint64) ([]*models.Course, int64, error) {
	all := make([]*models.Course, 0, len(f.courses))
	for _, c := range f.courses {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.Course{}, total, nil
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeCourseStore) CountByNameLike(_ context.Context, pattern string) (int, error) {
	n := 0
	for _, c := range f.courses {
		if likeMatch(pattern, c.Name) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCourseStore) Update(_ context.Context, c *models.Course) error {
	if _, ok := f.courses[c.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if err := f.check(c); err != nil {
		return err
	}
	stored := *c
	f.courses[c.ID] = &stored
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(f.courses, id)
	return nil
}

type fakeSessionStore struct {
	nextID   int64
	sessions map[int64]*models.Session
	partners *fakePartnerStore
	creates  int
	updates  int
}

func newFakeSessionStore(partners *fakePartnerStore) *fakeSessionStore {
	return &fakeSessionStore{sessions: map[int64]*models.Session{}, partners: partners}
}

func (f *fakeSessionStore) check(s *models.Session) error {
	if len([]rune(s.Name)) > 255 {
		return pgErr(dberrors.StringDataRightTruncation, "")
	}
	if f.partners == nil {
		return nil
	}
	if s.InstructorID != nil {
		if _, ok := f.partners.partners[*s.InstructorID]; !ok {
			return pgErr(dberrors.ForeignKeyViolation, dberrors.SessionInstructorFK)
		}
	}
	for _, id := range s.AttendeeIDs {
		if _, ok := f.partners.partners[id]; !ok {
			return pgErr(dberrors.ForeignKeyViolation, dberrors.SessionAttendeePartnerFK)
		}
	}
	return nil
}

func (f *fakeSessionStore) store(s *models.Session) {
	stored := *s
	stored.AttendeeIDs = append([]int64{}, s.AttendeeIDs...)
	f.sessions[s.ID] = &stored
}

func (f *fakeSessionStore) Create(_ context.Context, s *models.Session) error {
	if err := f.check(s); err != nil {
		return err
	}
	f.creates++
	f.nextID++
	s.ID = f.nextID
	f.store(s)
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int64) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	out := *s
	out.AttendeeIDs = append([]int64{}, s.AttendeeIDs...)
	return &out, nil
}

func (f *fakeSessionStore) GetAll(_ context.Context, filter repositories.SessionFilter, limit int, offset uint64) ([]*models.Session, int64, error) {
	var matched []*models.Session
	for _, s := range f.sessions {
		if filter.CourseID != nil && s.CourseID != *filter.CourseID {
			continue
		}
		if !filter.IncludeArchived && !s.Active {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	if offset >= uint64(len(matched)) {
		return []*models.Session{}, total, nil
	}
	end := int(offset) + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeSessionStore) GetByAttendee(_ context.Context, partnerID int64) ([]*models.Session, error) {
	out := []*models.Session{}
	for _, s := range f.sessions {
		if s.Active && s.HasAttendee(partnerID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSessionStore) Update(_ context.Context, s *models.Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	if err := f.check(s); err != nil {
		return err
	}
	f.updates++
	f.store(s)
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakePartnerStore struct {
	nextID     int64
	partners   map[int64]*models.Partner
	categories map[int64]models.PartnerCategory
	sessions   *fakeSessionStore
}

func newFakePartnerStore() *fakePartnerStore {
	return &fakePartnerStore{
		partners:   map[int64]*models.Partner{},
		categories: map[int64]models.PartnerCategory{},
	}
}

func (f *fakePartnerStore) add(p *models.Partner) *models.Partner {
	f.nextID++
	p.ID = f.nextID
	f.partners[p.ID] = p
	return p
}

func (f *fakePartnerStore) Create(_ context.Context, p *models.Partner) error {
	stored := *p
	f.add(&stored)
	p.ID = stored.ID
	return nil
}

func (f *fakePartnerStore) GetByID(_ context.Context, id int64) (*models.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, apperrors.ErrPartnerNotFound
	}
	out := *p
	out.Categories = append([]models.PartnerCategory{}, p.Categories...)
	out.SessionIDs = []int64{}
	if f.sessions != nil {
		for _, s := range f.sessions.sessions {
			if s.HasAttendee(id) {
				out.SessionIDs = append(out.SessionIDs, s.ID)
			}
		}
	}
	return &out, nil
}

func (f *fakePartnerStore) GetAll(_ context.Context, limit int, offset uint64) ([]*models.Partner, int64, error) {
	all := make([]*models.Partner, 0, len(f.partners))
	for _, p := range f.partners {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.Partner{}, total, nil
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakePartnerStore) GetEligibleInstructors(_ context.Context) ([]*models.Partner, error) {
	out := []*models.Partner{}
	for _, p := range f.partners {
		if p.CanInstruct() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePartnerStore) Update(_ context.Context, p *models.Partner) error {
	stored, ok := f.partners[p.ID]
	if !ok {
		return apperrors.ErrPartnerNotFound
	}
	stored.Name = p.Name
	stored.Email = p.Email
	stored.Instructor = p.Instructor
	return nil
}

func (f *fakePartnerStore) SetCategories(_ context.Context, partnerID int64, categoryIDs []int64) error {
	p, ok := f.partners[partnerID]
	if !ok {
		return pgErr(dberrors.ForeignKeyViolation, "partner_category_rel_partner_id_fkey")
	}
	categories := []models.PartnerCategory{}
	for _, id := range categoryIDs {
		c, ok := f.categories[id]
		if !ok {
			return pgErr(dberrors.ForeignKeyViolation, dberrors.PartnerCategoryFK)
		}
		categories = append(categories, c)
	}
	p.Categories = categories
	return nil
}

func (f *fakePartnerStore) GetAllCategories(_ context.Context) ([]models.PartnerCategory, error) {
	out := make([]models.PartnerCategory, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakePartnerStore) EnsureCategory(_ context.Context, name string) (int64, error) {
	for id, c := range f.categories {
		if c.Name == name {
			return id, nil
		}
	}
	id := int64(len(f.categories) + 1)
	f.categories[id] = models.PartnerCategory{ID: id, Name: name}
	return id, nil
}

type fakeUserStore struct {
	users     map[string]*models.User
	lastLogin map[int64]time.Time
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]*models.User{}, lastLogin: map[int64]time.Time{}}
	for _, u := range users {
		f.users[u.Login] = u
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if _, ok := f.users[u.Login]; ok {
		return apperrors.ErrResourceAlreadyExists
	}
	u.ID = int64(len(f.users) + 1)
	f.users[u.Login] = u
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) GetByLogin(_ context.Context, login string) (*models.User, error) {
	u, ok := f.users[login]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.lastLogin[id] = at
	return nil
}

var (
	_ CourseStore  = (*fakeCourseStore)(nil)
	_ SessionStore = (*fakeSessionStore)(nil)
	_ PartnerStore = (*fakePartnerStore)(nil)
	_ UserStore    = (*fakeUserStore)(nil)
)
