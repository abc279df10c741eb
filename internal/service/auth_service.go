package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// tokenAudience matches the audience hosted identity providers put on
// user tokens.
const tokenAudience = "authenticated"

// Claims are the access token claims: sub, email, role, jti, iat, exp.
type Claims struct {
	jwt.RegisteredClaims
	Email string         `json:"email"`
	Role  model.UserRole `json:"role"`

	// UserID is the parsed subject, set by ValidateToken.
	UserID uuid.UUID `json:"-"`
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role.IsAdmin()
}

// IssuedBefore reports whether the token was issued at or before cutoff.
// Tokens without iat count as issued before any cutoff.
func (c *Claims) IssuedBefore(cutoff time.Time) bool {
	if cutoff.IsZero() {
		return false
	}
	if c.IssuedAt == nil {
		return true
	}
	return c.IssuedAt.Unix() <= cutoff.Unix()
}

// RevocationStore remembers signed-out token IDs until they expire, and
// per-user cutoffs before which every issued token is void.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeUser(ctx context.Context, userID uuid.UUID, at time.Time, ttl time.Duration) error
	RevokedBefore(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

type redisRevocationStore struct {
	rdb *redis.Client
}

// NewRedisRevocationStore keeps the deny-list in Redis with per-key TTLs.
func NewRedisRevocationStore(rdb *redis.Client) RevocationStore {
	return &redisRevocationStore{rdb: rdb}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), 1, ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisRevocationStore) RevokeUser(ctx context.Context, userID uuid.UUID, at time.Time, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.RevokedBeforeKey(userID.String()), at.Unix(), ttl).Err()
}

func (s *redisRevocationStore) RevokedBefore(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.RevokedBeforeKey(userID.String())).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse revocation cutoff: %w", err)
	}
	return time.Unix(sec, 0), nil
}

// AuthService handles sign-up, sign-in, tokens and the caller's profile.
type AuthService struct {
	cfg      *config.Config
	profiles repository.ProfileRepository
	revoked  RevocationStore
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, profiles repository.ProfileRepository, revoked RevocationStore) *AuthService {
	return &AuthService{cfg: cfg, profiles: profiles, revoked: revoked, now: time.Now}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateProfile registers an account with the given role.
func (s *AuthService) CreateProfile(ctx context.Context, email, password, fullName, phone string, role model.UserRole) (*model.Profile, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := &model.Profile{
		Email:        NormalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		Phone:        strings.TrimSpace(phone),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return p, nil
}

// SignUp registers a learner account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.AuthResponse, error) {
	p, err := s.CreateProfile(ctx, req.Email, req.Password, req.FullName, req.Phone, model.RoleAuthenticated)
	if err != nil {
		return nil, err
	}
	return s.authResponse(p)
}

// SignIn verifies credentials and issues a token.
func (s *AuthService) SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthResponse, error) {
	p, err := s.profiles.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.CheckPassword(p.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return s.authResponse(p)
}

// SignOut revokes the token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *AuthService) authResponse(p *model.Profile) (*model.AuthResponse, error) {
	token, exp, err := s.IssueToken(p)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		Profile:     *p,
	}, nil
}

// IssueToken signs an HS256 access token for p.
func (s *AuthService) IssueToken(p *model.Profile) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   p.ID.String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: p.Email,
		Role:  p.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithAudience(tokenAudience))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	claims.UserID = id
	return claims, nil
}

// IsRevoked reports whether the token ID was signed out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked.IsRevoked(ctx, jti)
}

// RevokeSessions voids every token issued to userID up to now. Used when a
// profile's role changes or the profile is deleted.
func (s *AuthService) RevokeSessions(ctx context.Context, userID uuid.UUID) error {
	return s.revoked.RevokeUser(ctx, userID, s.now(), s.cfg.JWTExpiry)
}

// RevokedBefore returns the user's token cutoff, or the zero time when none is set.
func (s *AuthService) RevokedBefore(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	return s.revoked.RevokedBefore(ctx, userID)
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateMe edits the caller's name and phone.
func (s *AuthService) UpdateMe(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.FullName = strings.TrimSpace(req.FullName)
	p.Phone = strings.TrimSpace(req.Phone)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
