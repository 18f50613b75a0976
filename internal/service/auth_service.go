package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
	"github.com/travelmandu/trm-backend/internal/util"
)

var (
	ErrAuthValidation         = errors.New("auth validation failed")
	ErrAuthEmailTaken         = errors.New("an account with this email already exists")
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthInvalidToken       = errors.New("invalid or expired token")
)

// googleValidator is swapped out in tests; production uses idtoken.Validate.
type googleValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type AuthService struct {
	users          ports.UserRepository
	tokens         *util.JWTManager
	googleAudience string
	validateGoogle googleValidator
}

func NewAuthService(users ports.UserRepository, tokens *util.JWTManager, googleAudience string) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		googleAudience: googleAudience,
		validateGoogle: idtoken.Validate,
	}
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

func (s *AuthService) RegisterWithEmail(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrAuthValidation)
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthValidation, err)
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateEmailUser(ctx, email, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAuthEmailTaken
		}
		return nil, err
	}
	return s.startSession(user)
}

func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}
	return s.startSession(user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	payload, err := s.validateGoogle(ctx, idToken, s.googleAudience)
	if err != nil {
		return nil, ErrAuthInvalidToken
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrAuthInvalidToken
	}
	var name, picture *string
	if v, ok := payload.Claims["name"].(string); ok && v != "" {
		name = &v
	}
	if v, ok := payload.Claims["picture"].(string); ok && v != "" {
		picture = &v
	}

	user, err := s.users.UpsertGoogleUser(ctx, email, name, picture)
	if err != nil {
		return nil, err
	}
	return s.startSession(user)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrAuthInvalidToken
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAuthInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAuthInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) startSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
