package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContactService stores enquiries from the public contact form and sends
// admin replies.
type ContactService struct {
	messages   repository.ContactRepository
	notifier   Notifier
	feed       FeedPublisher
	adminEmail string
	log        zerolog.Logger
	now        func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(messages repository.ContactRepository, notifier Notifier, feed FeedPublisher, adminEmail string, log zerolog.Logger) *ContactService {
	return &ContactService{
		messages:   messages,
		notifier:   notifier,
		feed:       feed,
		adminEmail: strings.TrimSpace(adminEmail),
		log:        log.With().Str("component", "contact").Logger(),
		now:        time.Now,
	}
}

// Submit stores a new enquiry and alerts the admins.
func (s *ContactService) Submit(ctx context.Context, req *model.ContactRequest) (*model.ContactMessage, error) {
	m := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   NormalizeEmail(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.adminEmail != "" {
		msg := mail.ContactReceivedAdmin(mail.Address{Email: s.adminEmail}, m)
		if err := s.notifier.Enqueue(ctx, msg); err != nil {
			s.log.Error().Err(err).Str("contact_id", m.ID.String()).Msg("failed to queue contact notification")
		}
	}
	ev := model.FeedEvent{
		Type:    model.FeedContactReceived,
		ID:      m.ID.String(),
		At:      s.now(),
		Summary: fmt.Sprintf("%s: %s", m.Name, m.Subject),
	}
	if err := s.feed.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish feed event")
	}
	return m, nil
}

func (s *ContactService) List(ctx context.Context, q url.Values) ([]model.ContactMessage, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.ContactListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.messages.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	return s.messages.GetByID(ctx, id)
}

// Reply emails the sender and records the reply. Replying again overwrites
// the stored reply.
func (s *ContactService) Reply(ctx context.Context, id, adminID uuid.UUID, req *model.ContactReplyRequest) (*model.ContactMessage, error) {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if err := s.notifier.Enqueue(ctx, mail.ContactReply(m, body)); err != nil {
		return nil, fmt.Errorf("queue reply: %w", err)
	}
	return s.messages.SaveReply(ctx, id, body, adminID, s.now())
}

// Archive hides an enquiry from the inbox.
func (s *ContactService) Archive(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	return s.messages.SetStatus(ctx, id, model.ContactArchived)
}
