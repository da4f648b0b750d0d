package repositories

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigatrcek/openacademy/internal/app/migrations"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/dberrors"
)

// setupTestDB connects to TEST_DATABASE_URL, applies the migrations and empties the tables
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator := migrations.NewMigrator(pool, zerolog.Nop())
	require.NoError(t, migrator.MigrateFromDirectory(ctx, filepath.Join("..", "..", "..", "migrations")))

	_, err = pool.Exec(ctx, `TRUNCATE session_attendees, sessions, courses, partner_category_rel,
		partner_categories, partners, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

func createUser(t *testing.T, repos *Repositories, login string) *models.User {
	t.Helper()
	user := &models.User{Name: login, Login: login, Password: "hash"}
	require.NoError(t, repos.UserRepository.Create(context.Background(), user))
	return user
}

func createCourse(t *testing.T, repos *Repositories, name string) *models.Course {
	t.Helper()
	course := &models.Course{Name: name}
	require.NoError(t, repos.CourseRepository.Create(context.Background(), course))
	return course
}

func createPartner(t *testing.T, repos *Repositories, name string, instructor bool) *models.Partner {
	t.Helper()
	partner := &models.Partner{Name: name, Instructor: instructor}
	require.NoError(t, repos.PartnerRepository.Create(context.Background(), partner))
	return partner
}

func TestCourseRepo_Constraints(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	createCourse(t, repos, "Algebra")

	err := repos.CourseRepository.Create(ctx, &models.Course{Name: "Algebra"})
	assert.True(t, dberrors.IsDuplicateConstraintError(err, dberrors.CourseNameUnique))

	same := "Geometry"
	err = repos.CourseRepository.Create(ctx, &models.Course{Name: "Geometry", Description: &same})
	assert.True(t, dberrors.IsCheckConstraintError(err, dberrors.CourseNameDescriptionCheck))

	missing := int64(404)
	err = repos.CourseRepository.Create(ctx, &models.Course{Name: "Topology", ResponsibleID: &missing})
	assert.True(t, dberrors.IsForeignKeyError(err, dberrors.CourseResponsibleFK))

	long := &models.Course{Name: models.CopyName(strings.Repeat("n", 255), 0)}
	assert.NoError(t, repos.CourseRepository.Create(ctx, long))
}

func TestCourseRepo_CountByNameLike(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	createCourse(t, repos, "Copy of Math_1")
	createCourse(t, repos, "Copy of MathX1")
	createCourse(t, repos, "Copy of Physics")

	count, err := repos.CourseRepository.CountByNameLike(ctx, models.CopyNamePattern("Math_1"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repos.CourseRepository.CountByNameLike(ctx, models.CopyNamePattern("Math"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCourseRepo_DeleteCascadesToSessions(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	course := createCourse(t, repos, "Algebra")
	session := models.NewSession("Morning", course.ID, time.Now())
	require.NoError(t, repos.SessionRepository.Create(ctx, session))

	got, err := repos.CourseRepository.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{session.ID}, got.SessionIDs)

	require.NoError(t, repos.CourseRepository.Delete(ctx, course.ID))

	_, err = repos.SessionRepository.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.ErrorIs(t, repos.CourseRepository.Delete(ctx, course.ID), apperrors.ErrCourseNotFound)
}

func TestCourseRepo_ResponsibleSetNullOnUserDelete(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	user := createUser(t, repos, "ada")
	course := &models.Course{Name: "Algebra", ResponsibleID: &user.ID}
	require.NoError(t, repos.CourseRepository.Create(ctx, course))

	_, err := pool.Exec(ctx, "DELETE FROM users WHERE id = $1", user.ID)
	require.NoError(t, err)

	got, err := repos.CourseRepository.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResponsibleID)
}

func TestSessionRepo_Attendees(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	course := createCourse(t, repos, "Algebra")
	bob := createPartner(t, repos, "Bob", false)
	cid := createPartner(t, repos, "Cid", false)

	session := models.NewSession("Morning", course.ID, time.Now())
	session.Seats = 1
	session.SetDuration(2.5)
	session.SetAttendees([]int64{bob.ID, cid.ID})
	require.NoError(t, repos.SessionRepository.Create(ctx, session))

	got, err := repos.SessionRepository.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{bob.ID, cid.ID}, got.AttendeeIDs)
	assert.Equal(t, 2, got.AttendeesCount)
	assert.Equal(t, 2.5, got.Duration)
	assert.Equal(t, *session.EndDate, *got.EndDate)

	got.SetAttendees([]int64{cid.ID})
	require.NoError(t, repos.SessionRepository.Update(ctx, got))

	got, err = repos.SessionRepository.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{cid.ID}, got.AttendeeIDs)
	assert.Equal(t, 1, got.AttendeesCount)

	attended, err := repos.SessionRepository.GetByAttendee(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, attended)

	got.SetAttendees([]int64{404})
	err = repos.SessionRepository.Update(ctx, got)
	assert.True(t, dberrors.IsForeignKeyError(err, dberrors.SessionAttendeePartnerFK))
}

func TestSessionRepo_DurationOutOfRange(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	course := createCourse(t, repos, "Algebra")
	session := models.NewSession("Morning", course.ID, time.Now())
	session.Duration = models.MaxDuration

	err := repos.SessionRepository.Create(ctx, session)

	assert.True(t, dberrors.IsDataError(err))
}

func TestSessionRepo_GetAllSkipsArchived(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	course := createCourse(t, repos, "Algebra")
	active := models.NewSession("Morning", course.ID, time.Now())
	archived := models.NewSession("Evening", course.ID, time.Now())
	archived.Active = false
	require.NoError(t, repos.SessionRepository.Create(ctx, active))
	require.NoError(t, repos.SessionRepository.Create(ctx, archived))

	sessions, total, err := repos.SessionRepository.GetAll(ctx, SessionFilter{CourseID: &course.ID}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sessions, 1)
	assert.Equal(t, active.ID, sessions[0].ID)

	_, total, err = repos.SessionRepository.GetAll(ctx, SessionFilter{IncludeArchived: true}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPartnerRepo_EligibleInstructors(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	flagged := createPartner(t, repos, "Ada", true)
	teacher := createPartner(t, repos, "Bob", false)
	createPartner(t, repos, "Cid", false)

	categoryID, err := repos.PartnerRepository.EnsureCategory(ctx, "senior teacher")
	require.NoError(t, err)
	require.NoError(t, repos.PartnerRepository.SetCategories(ctx, teacher.ID, []int64{categoryID}))

	eligible, err := repos.PartnerRepository.GetEligibleInstructors(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(eligible))
	for _, p := range eligible {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{flagged.ID, teacher.ID}, ids)

	again, err := repos.PartnerRepository.EnsureCategory(ctx, "senior teacher")
	require.NoError(t, err)
	assert.Equal(t, categoryID, again)
}

func TestPartnerRepo_GetAllCategoriesEmpty(t *testing.T) {
	pool := setupTestDB(t)
	repos := NewRepositories(pool)

	categories, err := repos.PartnerRepository.GetAllCategories(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}
