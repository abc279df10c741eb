package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/metrics"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reminderWindow is how far ahead of an intake start reminders go out.
const reminderWindow = 48 * time.Hour

// Notifier queues outgoing email.
type Notifier interface {
	Enqueue(ctx context.Context, msg mail.Message) error
}

// FeedPublisher broadcasts events to connected admins.
type FeedPublisher interface {
	Publish(ctx context.Context, ev model.FeedEvent) error
}

// EnrollmentService drives the enrollment lifecycle.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	intakes     repository.IntakeRepository
	notifier    Notifier
	feed        FeedPublisher
	catalog     CatalogInvalidator
	adminEmail  string
	log         zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService. Admin notifications
// are skipped when adminEmail is empty.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	intakes repository.IntakeRepository,
	notifier Notifier,
	feed FeedPublisher,
	catalog CatalogInvalidator,
	adminEmail string,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		intakes:     intakes,
		notifier:    notifier,
		feed:        feed,
		catalog:     catalog,
		adminEmail:  strings.TrimSpace(adminEmail),
		log:         log.With().Str("component", "enrollment").Logger(),
		now:         time.Now,
	}
}

// Request asks for a seat in an open intake. A cancelled enrollment for the
// same intake is reopened.
func (s *EnrollmentService) Request(ctx context.Context, userID uuid.UUID, req *model.CreateEnrollmentRequest) (*model.EnrollmentDetail, error) {
	now := s.now()
	in, err := s.intakes.GetByID(ctx, req.IntakeID)
	if err != nil {
		return nil, err
	}
	if !in.IsOpen(now) {
		return nil, model.ErrIntakeClosed
	}

	e := &model.Enrollment{
		IntakeID:        in.ID,
		UserID:          userID,
		Note:            strings.TrimSpace(req.Note),
		StatusChangedAt: now,
	}
	if err := s.enrollments.CreateOrReopen(ctx, e); err != nil {
		return nil, err
	}
	d, err := s.enrollments.GetDetail(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordEnrollmentRequest()
	if s.adminEmail != "" {
		s.notify(ctx, mail.EnrollmentRequestedAdmin(mail.Address{Email: s.adminEmail}, d))
	}
	s.publish(ctx, model.FeedEvent{
		Type:    model.FeedEnrollmentRequested,
		ID:      d.ID.String(),
		At:      now,
		Summary: fmt.Sprintf("%s requested %s", d.UserName, d.CourseTitle),
	})
	return d, nil
}

// Transition moves an enrollment to a new status as an admin.
func (s *EnrollmentService) Transition(ctx context.Context, id uuid.UUID, req *model.TransitionEnrollmentRequest) (*model.TransitionResult, error) {
	return s.transition(ctx, repository.TransitionInput{
		ID:        id,
		To:        req.Status,
		AdminNote: strings.TrimSpace(req.AdminNote),
	})
}

// CancelOwn lets a user withdraw their own enrollment while it is still
// requested. Other users' enrollments read as not found.
func (s *EnrollmentService) CancelOwn(ctx context.Context, userID, id uuid.UUID) (*model.TransitionResult, error) {
	return s.transition(ctx, repository.TransitionInput{
		ID: id,
		To: model.EnrollmentCancelled,
		Check: func(e *model.Enrollment) error {
			if e.UserID != userID {
				return repository.ErrNotFound
			}
			if e.Status != model.EnrollmentRequested {
				return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, e.Status, model.EnrollmentCancelled)
			}
			return nil
		},
	})
}

func (s *EnrollmentService) transition(ctx context.Context, in repository.TransitionInput) (*model.TransitionResult, error) {
	if !in.To.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, in.To)
	}
	in.At = s.now()

	res, err := s.enrollments.Transition(ctx, in)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(res.From), string(res.To))
	if msg, ok := mail.EnrollmentStatusChanged(res); ok {
		s.notify(ctx, msg)
	}
	s.publish(ctx, model.FeedEvent{
		Type:    model.FeedEnrollmentStatusChanged,
		ID:      res.Enrollment.ID.String(),
		At:      in.At,
		Summary: fmt.Sprintf("%s: %s -> %s (%s)", res.Enrollment.UserName, res.From, res.To, res.Enrollment.CourseTitle),
	})
	if model.SeatDelta(res.From, res.To) != 0 {
		s.catalog.Invalidate(ctx)
	}

	s.log.Info().
		Str("enrollment_id", res.Enrollment.ID.String()).
		Str("from", string(res.From)).
		Str("to", string(res.To)).
		Msg("enrollment transitioned")
	return res, nil
}

// ListMine returns the caller's enrollments.
func (s *EnrollmentService) ListMine(ctx context.Context, userID uuid.UUID, q url.Values) ([]model.EnrollmentDetail, *response.Pagination, error) {
	scoped := url.Values{}
	for k, v := range q {
		scoped[k] = v
	}
	scoped.Set("user_id", userID.String())
	return s.list(ctx, scoped)
}

// ListAdmin returns enrollments across all users.
func (s *EnrollmentService) ListAdmin(ctx context.Context, q url.Values) ([]model.EnrollmentDetail, *response.Pagination, error) {
	return s.list(ctx, q)
}

func (s *EnrollmentService) list(ctx context.Context, q url.Values) ([]model.EnrollmentDetail, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.EnrollmentListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.enrollments.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

// GetMine returns one of the caller's enrollments, including its payment.
func (s *EnrollmentService) GetMine(ctx context.Context, userID, id uuid.UUID) (*model.EnrollmentDetail, error) {
	d, err := s.enrollments.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (s *EnrollmentService) GetAdmin(ctx context.Context, id uuid.UUID) (*model.EnrollmentDetail, error) {
	return s.enrollments.GetDetail(ctx, id)
}

// CompleteFinished completes paid enrollments whose intake has ended. Each
// one goes through the regular transition path. It returns how many were
// completed.
func (s *EnrollmentService) CompleteFinished(ctx context.Context) (int, error) {
	ids, err := s.enrollments.ListCompletable(ctx, s.now())
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		_, err := s.transition(ctx, repository.TransitionInput{ID: id, To: model.EnrollmentCompleted})
		if err != nil {
			s.log.Error().Err(err).Str("enrollment_id", id.String()).Msg("failed to auto-complete enrollment")
			continue
		}
		done++
	}
	return done, nil
}

// SendReminders emails enrolled students whose intake starts within the
// reminder window. Each enrollment is reminded once.
func (s *EnrollmentService) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.enrollments.ListReminderDue(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range due {
		d := &due[i]
		if err := s.notifier.Enqueue(ctx, mail.IntakeReminder(d)); err != nil {
			s.log.Error().Err(err).Str("enrollment_id", d.ID.String()).Msg("failed to queue reminder")
			continue
		}
		if err := s.enrollments.MarkReminderSent(ctx, d.ID, now); err != nil {
			s.log.Error().Err(err).Str("enrollment_id", d.ID.String()).Msg("failed to mark reminder sent")
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *EnrollmentService) notify(ctx context.Context, msg mail.Message) {
	if err := s.notifier.Enqueue(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("template", msg.Template).Msg("failed to queue email")
	}
}

func (s *EnrollmentService) publish(ctx context.Context, ev model.FeedEvent) {
	if err := s.feed.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to publish feed event")
	}
}
