// Package auth verifies bearer tokens and answers the identity, role and
// ownership questions asked by the controllers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the salt rounds the accounts were created with.
const BcryptCost = 10

var (
	ErrUnauthorized       = errors.New("auth: missing or invalid token")
	ErrForbidden          = errors.New("auth: insufficient permissions")
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
)

type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret string
	// TokenTTL of zero issues tokens without expiry.
	TokenTTL time.Duration
	Now      func() time.Time
}

type Service struct {
	users  *store.UserRepository
	policy *Policy
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(users *store.UserRepository, policy *Policy, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:  users,
		policy: policy,
		secret: []byte(opts.Secret),
		ttl:    opts.TokenTTL,
		now:    now,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		UserID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ResolveIdentity verifies signature and expiry and returns the user id the
// token was issued for.
func (s *Service) ResolveIdentity(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// Identify resolves the token and loads the user it belongs to.
func (s *Service) Identify(ctx context.Context, token string) (*models.User, error) {
	id, ok := s.ResolveIdentity(token)
	if !ok {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformedID) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// IsAdmin is false when the token does not resolve or its user is gone.
func (s *Service) IsAdmin(ctx context.Context, token string) bool {
	user, err := s.Identify(ctx, token)
	return err == nil && user.IsAdmin()
}

func (s *Service) IsOwnerOrAdmin(ctx context.Context, token, ownerID string) bool {
	id, ok := s.ResolveIdentity(token)
	if !ok {
		return false
	}
	if id == ownerID {
		return true
	}
	return s.IsAdmin(ctx, token)
}

// Permit identifies the caller and checks their role against the policy.
func (s *Service) Permit(ctx context.Context, token string, resource Resource, action Action) (*models.User, error) {
	user, err := s.Identify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.policy.Allowed(user.Role, resource, action) {
		return nil, ErrForbidden
	}
	return user, nil
}

// Login checks the password and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
