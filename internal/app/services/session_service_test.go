package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/app/repositories"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
)

var sessionToday = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(i int) *int              { return &i }
func floatPtr(f float64) *float64    { return &f }
func timePtr(t time.Time) *time.Time { return &t }

type sessionFixture struct {
	svc      *sessionServiceImpl
	sessions *fakeSessionStore
	courses  *fakeCourseStore
	partners *fakePartnerStore
	tx       *fakeTx
	courseID int64
	teacher  *models.Partner
	student  *models.Partner
	other    *models.Partner
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	courses := newFakeCourseStore()
	partners := newFakePartnerStore()
	sessions := newFakeSessionStore(partners)
	partners.sessions = sessions
	tx := &fakeTx{}

	course := &models.Course{Name: "Algebra"}
	require.NoError(t, courses.Create(context.Background(), course))

	svc := NewSessionService(sessions, courses, partners, tx, testLogger).(*sessionServiceImpl)
	svc.now = func() time.Time { return sessionToday }

	return &sessionFixture{
		svc:      svc,
		sessions: sessions,
		courses:  courses,
		partners: partners,
		tx:       tx,
		courseID: course.ID,
		teacher:  partners.add(&models.Partner{Name: "Ada", Instructor: true}),
		student:  partners.add(&models.Partner{Name: "Bob"}),
		other:    partners.add(&models.Partner{Name: "Cid"}),
	}
}

func (f *sessionFixture) create(t *testing.T, changes SessionChanges) *SessionResult {
	t.Helper()
	if changes.Name == nil {
		changes.Name = strPtr("Morning")
	}
	if changes.CourseID == nil {
		changes.CourseID = &f.courseID
	}
	result, err := f.svc.CreateSession(context.Background(), changes)
	require.NoError(t, err)
	return result
}

func Test_SessionService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("applies_defaults", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{})

		s := result.Session
		assert.NotZero(t, s.ID)
		assert.True(t, s.Active)
		require.NotNil(t, s.StartDate)
		assert.Equal(t, day(2026, 3, 10), *s.StartDate)
		assert.Equal(t, day(2026, 3, 10), *s.EndDate)
		assert.Empty(t, s.AttendeeIDs)
		assert.Nil(t, result.Warning)
		assert.Equal(t, 1, f.sessions.creates)
	})

	t.Run("derives_end_date_from_duration", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{
			StartDate: timePtr(day(2026, 1, 10)),
			Duration:  floatPtr(3),
		})

		assert.Equal(t, day(2026, 1, 12), *result.Session.EndDate)
	})

	t.Run("derives_duration_from_end_date", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{
			StartDate: timePtr(day(2026, 1, 10)),
			EndDate:   timePtr(day(2026, 1, 14)),
		})

		assert.Equal(t, 5.0, result.Session.Duration)
		assert.Equal(t, day(2026, 1, 14), *result.Session.EndDate)
	})

	t.Run("duration_wins_over_end_date", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{
			StartDate: timePtr(day(2026, 1, 10)),
			Duration:  floatPtr(2),
			EndDate:   timePtr(day(2026, 1, 20)),
		})

		assert.Equal(t, 2.0, result.Session.Duration)
		assert.Equal(t, day(2026, 1, 11), *result.Session.EndDate)
	})

	t.Run("without_start_date_end_date_is_empty", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{ClearStartDate: true, Duration: floatPtr(4)})

		assert.Nil(t, result.Session.StartDate)
		assert.Nil(t, result.Session.EndDate)
		assert.Equal(t, 4.0, result.Session.Duration)
	})

	t.Run("dedupes_attendees", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{
			Seats:       intPtr(10),
			AttendeeIDs: []int64{f.student.ID, f.other.ID, f.student.ID},
		})

		assert.Equal(t, []int64{f.student.ID, f.other.ID}, result.Session.AttendeeIDs)
		assert.Equal(t, 2, result.Session.AttendeesCount)
		assert.Nil(t, result.Warning)
	})

	t.Run("name_and_course_are_required", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{Name: strPtr("Morning")})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		_, err = f.svc.CreateSession(ctx, SessionChanges{Name: strPtr(" "), CourseID: &f.courseID})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unknown_course_is_not_found", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{Name: strPtr("Morning"), CourseID: int64Ptr(99)})

		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
		assert.Zero(t, f.sessions.creates)
	})

	t.Run("instructor_cannot_attend", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{
			Name:         strPtr("Morning"),
			CourseID:     &f.courseID,
			InstructorID: &f.teacher.ID,
			AttendeeIDs:  []int64{f.student.ID, f.teacher.ID},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		assert.Equal(t, models.MsgInstructorIsAttendee, err.Error())
		assert.Empty(t, f.sessions.sessions)
	})

	t.Run("ineligible_instructor_is_rejected", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{
			Name:         strPtr("Morning"),
			CourseID:     &f.courseID,
			InstructorID: &f.student.ID,
		})

		require.Error(t, err)
		assert.Equal(t, MsgInstructorNotEligible, err.Error())
	})

	t.Run("teacher_category_makes_instructor_eligible", func(t *testing.T) {
		f := newSessionFixture(t)
		f.student.Categories = []models.PartnerCategory{{ID: 1, Name: "Teacher / Level 1"}}

		result := f.create(t, SessionChanges{InstructorID: &f.student.ID})

		assert.Equal(t, f.student.ID, *result.Session.InstructorID)
	})

	t.Run("unknown_attendee_is_not_found", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{
			Name:        strPtr("Morning"),
			CourseID:    &f.courseID,
			AttendeeIDs: []int64{404},
		})

		assert.ErrorIs(t, err, apperrors.ErrPartnerNotFound)
	})

	t.Run("duration_out_of_range_is_rejected", func(t *testing.T) {
		f := newSessionFixture(t)

		for _, d := range []float64{10000, -10000, 1e19} {
			_, err := f.svc.CreateSession(ctx, SessionChanges{
				Name:      strPtr("Morning"),
				CourseID:  &f.courseID,
				StartDate: timePtr(day(2026, 1, 10)),
				Duration:  floatPtr(d),
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, models.MsgDurationOutOfRange, err.Error())
		}
		assert.Zero(t, f.sessions.creates)
	})

	t.Run("distant_end_date_is_rejected", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{
			Name:      strPtr("Morning"),
			CourseID:  &f.courseID,
			StartDate: timePtr(day(2026, 1, 10)),
			EndDate:   timePtr(day(2060, 1, 10)),
		})

		require.Error(t, err)
		assert.Equal(t, models.MsgDurationOutOfRange, err.Error())
	})

	t.Run("too_long_name_is_a_validation_error", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.CreateSession(ctx, SessionChanges{
			Name:     strPtr(strings.Repeat("s", 300)),
			CourseID: &f.courseID,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		assert.Equal(t, MsgValueOutOfRange, err.Error())
	})

	t.Run("overbooked_session_is_saved_with_warning", func(t *testing.T) {
		f := newSessionFixture(t)

		result := f.create(t, SessionChanges{
			Seats:       intPtr(1),
			AttendeeIDs: []int64{f.student.ID, f.other.ID},
		})

		require.NotNil(t, result.Warning)
		assert.Equal(t, models.WarnTooManyTitle, result.Warning.Title)
		assert.Len(t, f.sessions.sessions, 1)
	})
}

func Test_SessionService_UpdateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("moving_start_date_moves_end_date", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{StartDate: timePtr(day(2026, 1, 10)), Duration: floatPtr(3)})

		result, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{StartDate: timePtr(day(2026, 2, 1))})

		require.NoError(t, err)
		assert.Equal(t, 3.0, result.Session.Duration)
		assert.Equal(t, day(2026, 2, 3), *result.Session.EndDate)
	})

	t.Run("writing_end_date_rederives_duration", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{StartDate: timePtr(day(2026, 1, 10)), Duration: floatPtr(3)})

		result, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{EndDate: timePtr(day(2026, 1, 19))})

		require.NoError(t, err)
		assert.Equal(t, 10.0, result.Session.Duration)
		assert.Equal(t, day(2026, 1, 19), *result.Session.EndDate)
	})

	t.Run("clearing_end_date_keeps_duration", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{StartDate: timePtr(day(2026, 1, 10)), Duration: floatPtr(3)})

		result, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{ClearEndDate: true})

		require.NoError(t, err)
		assert.Nil(t, result.Session.EndDate)
		assert.Equal(t, 3.0, result.Session.Duration)
	})

	t.Run("clearing_instructor", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{InstructorID: &f.teacher.ID})

		result, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{ClearInstructor: true})

		require.NoError(t, err)
		assert.Nil(t, result.Session.InstructorID)
	})

	t.Run("making_an_attendee_the_instructor_fails", func(t *testing.T) {
		f := newSessionFixture(t)
		f.student.Instructor = true
		created := f.create(t, SessionChanges{AttendeeIDs: []int64{f.student.ID}})

		_, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{InstructorID: &f.student.ID})

		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		stored, _ := f.sessions.GetByID(ctx, created.Session.ID)
		assert.Nil(t, stored.InstructorID)
	})

	t.Run("revoked_instructor_stays_on_unrelated_edit", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{InstructorID: &f.teacher.ID})
		f.teacher.Instructor = false

		result, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{Name: strPtr("Evening")})

		require.NoError(t, err)
		assert.Equal(t, "Evening", result.Session.Name)
		assert.Equal(t, f.teacher.ID, *result.Session.InstructorID)
	})

	t.Run("warning_only_when_seats_or_attendees_change", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{Seats: intPtr(-1)})
		require.NotNil(t, created.Warning)
		assert.Equal(t, models.WarnNegativeSeatsTitle, created.Warning.Title)

		renamed, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{Name: strPtr("Evening")})
		require.NoError(t, err)
		assert.Nil(t, renamed.Warning)

		reseated, err := f.svc.UpdateSession(ctx, created.Session.ID, SessionChanges{Seats: intPtr(-2)})
		require.NoError(t, err)
		assert.NotNil(t, reseated.Warning)
	})

	t.Run("missing_session_is_not_found", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.UpdateSession(ctx, 99, SessionChanges{Name: strPtr("Evening")})

		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("invalid_id_is_rejected", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.UpdateSession(ctx, 0, SessionChanges{})

		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func Test_SessionService_Attendees(t *testing.T) {
	ctx := context.Background()

	t.Run("add_and_remove", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{Seats: intPtr(1)})

		added, err := f.svc.AddAttendee(ctx, created.Session.ID, f.student.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{f.student.ID}, added.Session.AttendeeIDs)
		assert.Nil(t, added.Warning)

		again, err := f.svc.AddAttendee(ctx, created.Session.ID, f.student.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, again.Session.AttendeesCount)

		over, err := f.svc.AddAttendee(ctx, created.Session.ID, f.other.ID)
		require.NoError(t, err)
		require.NotNil(t, over.Warning)
		assert.Equal(t, models.WarnTooManyTitle, over.Warning.Title)

		removed, err := f.svc.RemoveAttendee(ctx, created.Session.ID, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{f.student.ID}, removed.Session.AttendeeIDs)
		assert.Nil(t, removed.Warning)
	})

	t.Run("instructor_cannot_be_added", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{InstructorID: &f.teacher.ID})

		_, err := f.svc.AddAttendee(ctx, created.Session.ID, f.teacher.ID)

		require.Error(t, err)
		assert.Equal(t, models.MsgInstructorIsAttendee, err.Error())
	})

	t.Run("attended_sessions_reflect_attendees", func(t *testing.T) {
		f := newSessionFixture(t)
		created := f.create(t, SessionChanges{AttendeeIDs: []int64{f.student.ID}})

		partner, err := f.partners.GetByID(ctx, f.student.ID)

		require.NoError(t, err)
		assert.Equal(t, []int64{created.Session.ID}, partner.SessionIDs)
	})
}

func Test_SessionService_SetActive(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	created := f.create(t, SessionChanges{})

	archived, err := f.svc.SetActive(ctx, created.Session.ID, false)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	active, _, err := f.svc.GetSessions(ctx, repositories.SessionFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, total, err := f.svc.GetSessions(ctx, repositories.SessionFilter{IncludeArchived: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, all, 1)

	restored, err := f.svc.SetActive(ctx, created.Session.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.Active)
}

func Test_SessionService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	created := f.create(t, SessionChanges{})

	require.NoError(t, f.svc.DeleteSession(ctx, created.Session.ID))

	_, err := f.svc.GetSessionByID(ctx, created.Session.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func Test_SessionService_VerifySeats(t *testing.T) {
	f := newSessionFixture(t)

	tests := []struct {
		name      string
		seats     int
		attendees []int64
		want      string
	}{
		{name: "enough_seats", seats: 2, attendees: []int64{1, 2}},
		{name: "negative_seats_reported_first", seats: -1, attendees: []int64{1, 2}, want: models.WarnNegativeSeatsTitle},
		{name: "too_many_attendees", seats: 1, attendees: []int64{1, 2}, want: models.WarnTooManyTitle},
		{name: "duplicates_count_once", seats: 1, attendees: []int64{1, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			warning := f.svc.VerifySeats(tc.seats, tc.attendees)
			if tc.want == "" {
				assert.Nil(t, warning)
				return
			}
			require.NotNil(t, warning)
			assert.Equal(t, tc.want, warning.Title)
		})
	}
}
