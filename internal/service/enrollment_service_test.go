package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type enrollmentFixture struct {
	svc         *EnrollmentService
	enrollments *fakeEnrollments
	intakes     *fakeIntakes
	notifier    *fakeNotifier
	feed        *fakeFeed
	catalog     *fakeInvalidator
}

func newEnrollmentFixture(intakes ...*model.Intake) *enrollmentFixture {
	f := &enrollmentFixture{
		enrollments: newFakeEnrollments(),
		intakes:     newFakeIntakes(intakes...),
		notifier:    &fakeNotifier{},
		feed:        &fakeFeed{},
		catalog:     &fakeInvalidator{},
	}
	f.svc = NewEnrollmentService(f.enrollments, f.intakes, f.notifier, f.feed, f.catalog, "office@academy.example", zerolog.Nop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func openIntake() *model.Intake {
	return &model.Intake{
		ID:                   uuid.New(),
		CourseID:             uuid.New(),
		StartDate:            fixedNow.AddDate(0, 1, 0),
		EndDate:              fixedNow.AddDate(0, 1, 5),
		RegistrationOpensAt:  fixedNow.AddDate(0, 0, -7),
		RegistrationClosesAt: fixedNow.AddDate(0, 0, 14),
		Capacity:             10,
		Registered:           3,
		Status:               model.IntakeStatusScheduled,
	}
}

func TestRequestEnrollment(t *testing.T) {
	in := openIntake()
	f := newEnrollmentFixture(in)
	ctx := context.Background()
	user := uuid.New()

	d, err := f.svc.Request(ctx, user, &model.CreateEnrollmentRequest{IntakeID: in.ID, Note: "  evenings only  "})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRequested, d.Status)
	assert.Equal(t, "evenings only", d.Note)
	assert.Equal(t, []string{mail.TmplEnrollmentRequestedAdmin}, f.notifier.templates())
	require.Len(t, f.feed.events, 1)
	assert.Equal(t, model.FeedEnrollmentRequested, f.feed.events[0].Type)

	_, err = f.svc.Request(ctx, user, &model.CreateEnrollmentRequest{IntakeID: in.ID})
	assert.ErrorIs(t, err, model.ErrAlreadyEnrolled)
}

func TestRequestEnrollmentClosedIntake(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *model.Intake)
	}{
		{"not yet open", func(in *model.Intake) { in.RegistrationOpensAt = fixedNow.Add(time.Hour) }},
		{"closed", func(in *model.Intake) { in.RegistrationClosesAt = fixedNow.Add(-time.Hour) }},
		{"full", func(in *model.Intake) { in.Registered = in.Capacity }},
		{"cancelled", func(in *model.Intake) { in.Status = model.IntakeStatusCancelled }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := openIntake()
			tt.mutate(in)
			f := newEnrollmentFixture(in)

			_, err := f.svc.Request(context.Background(), uuid.New(), &model.CreateEnrollmentRequest{IntakeID: in.ID})
			assert.ErrorIs(t, err, model.ErrIntakeClosed)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestRequestEnrollmentReopensCancelled(t *testing.T) {
	in := openIntake()
	f := newEnrollmentFixture(in)
	user := uuid.New()
	prev := f.enrollments.add(user, model.EnrollmentCancelled)
	prev.IntakeID = in.ID

	d, err := f.svc.Request(context.Background(), user, &model.CreateEnrollmentRequest{IntakeID: in.ID})
	require.NoError(t, err)
	assert.Equal(t, prev.ID, d.ID)
	assert.Equal(t, model.EnrollmentRequested, d.Status)
}

func TestTransitionSideEffects(t *testing.T) {
	f := newEnrollmentFixture()
	d := f.enrollments.add(uuid.New(), model.EnrollmentRequested)

	res, err := f.svc.Transition(context.Background(), d.ID, &model.TransitionEnrollmentRequest{
		Status:    model.EnrollmentEnrolled,
		AdminNote: " paid deposit ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRequested, res.From)
	assert.Equal(t, model.EnrollmentEnrolled, res.To)
	assert.Equal(t, "paid deposit", res.Enrollment.AdminNote)
	assert.Equal(t, fixedNow, res.Enrollment.StatusChangedAt)

	assert.Equal(t, []string{mail.TmplEnrollmentEnrolled}, f.notifier.templates())
	require.Len(t, f.feed.events, 1)
	assert.Equal(t, model.FeedEnrollmentStatusChanged, f.feed.events[0].Type)
	assert.Equal(t, 1, f.catalog.calls, "seat count changed")
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	f := newEnrollmentFixture()
	d := f.enrollments.add(uuid.New(), model.EnrollmentCompleted)

	_, err := f.svc.Transition(context.Background(), d.ID, &model.TransitionEnrollmentRequest{Status: model.EnrollmentCancelled})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.svc.Transition(context.Background(), d.ID, &model.TransitionEnrollmentRequest{Status: "archived"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.svc.Transition(context.Background(), uuid.New(), &model.TransitionEnrollmentRequest{Status: model.EnrollmentEnrolled})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.feed.events)
}

func TestCancelOwn(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	owner := uuid.New()

	requested := f.enrollments.add(owner, model.EnrollmentRequested)
	enrolled := f.enrollments.add(owner, model.EnrollmentEnrolled)

	_, err := f.svc.CancelOwn(ctx, uuid.New(), requested.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.CancelOwn(ctx, owner, enrolled.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	res, err := f.svc.CancelOwn(ctx, owner, requested.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCancelled, res.To)
	assert.Equal(t, []string{mail.TmplEnrollmentCancelled}, f.notifier.templates())
	assert.Zero(t, f.catalog.calls, "requested enrollments hold no seat")
}

func TestGetMineHidesOtherUsers(t *testing.T) {
	f := newEnrollmentFixture()
	owner := uuid.New()
	d := f.enrollments.add(owner, model.EnrollmentRequested)

	got, err := f.svc.GetMine(context.Background(), owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = f.svc.GetMine(context.Background(), uuid.New(), d.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListMineForcesOwner(t *testing.T) {
	f := newEnrollmentFixture()
	owner := uuid.New()

	q := url.Values{"user_id": {uuid.New().String()}, "status": {"requested"}}
	_, page, err := f.svc.ListMine(context.Background(), owner, q)
	require.NoError(t, err)

	assert.Equal(t, owner.String(), page.Filters["user_id"])
	assert.Equal(t, "requested", page.Filters["status"])
	assert.NotEqual(t, owner.String(), q.Get("user_id"), "caller's values are not mutated")
}

func TestCompleteFinished(t *testing.T) {
	f := newEnrollmentFixture()
	done := f.enrollments.add(uuid.New(), model.EnrollmentEnrolled)
	stale := f.enrollments.add(uuid.New(), model.EnrollmentCancelled)
	f.enrollments.completable = []uuid.UUID{done.ID, stale.ID}

	n, err := f.svc.CompleteFinished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := f.enrollments.GetDetail(context.Background(), done.ID)
	assert.Equal(t, model.EnrollmentCompleted, got.Status)
	assert.Equal(t, []string{mail.TmplEnrollmentCompleted}, f.notifier.templates())
}

func TestSendReminders(t *testing.T) {
	f := newEnrollmentFixture()
	a := f.enrollments.add(uuid.New(), model.EnrollmentEnrolled)
	b := f.enrollments.add(uuid.New(), model.EnrollmentEnrolled)
	f.enrollments.reminders = []model.EnrollmentDetail{*a, *b}

	n, err := f.svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, f.enrollments.reminded)
	assert.Equal(t, []string{mail.TmplIntakeReminder, mail.TmplIntakeReminder}, f.notifier.templates())
}
