package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
)

// ErrCannotDeleteSelf is returned when an admin tries to delete their own account.
var ErrCannotDeleteSelf = errors.New("cannot delete your own account")

// SessionRevoker voids the tokens already issued to a user.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, userID uuid.UUID) error
}

// UserService handles admin management of profiles.
type UserService struct {
	profiles repository.ProfileRepository
	sessions SessionRevoker
}

// NewUserService creates a new UserService.
func NewUserService(profiles repository.ProfileRepository, sessions SessionRevoker) *UserService {
	return &UserService{profiles: profiles, sessions: sessions}
}

// List returns a page of profiles.
func (s *UserService) List(ctx context.Context, q url.Values) ([]model.Profile, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.ProfileListSpec)
	if err != nil {
		return nil, nil, err
	}
	profiles, total, err := s.profiles.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return profiles, params.Pagination(total), nil
}

// Get returns a profile by ID.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// Update edits a profile, including its role. A role change signs the
// user out everywhere so the old role stops working at once.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *model.AdminUpdateUserRequest) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roleChanged := p.Role != req.Role
	p.FullName = strings.TrimSpace(req.FullName)
	p.Phone = strings.TrimSpace(req.Phone)
	p.Role = req.Role
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	if roleChanged {
		if err := s.sessions.RevokeSessions(ctx, id); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
	}
	return p, nil
}

// Delete removes a profile and voids its tokens. Profiles with enrollments
// return repository.ErrInUse.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.RevokeSessions(ctx, id); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
