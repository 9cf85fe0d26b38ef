package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"
	"blogapi/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is an authenticated user with a freshly issued token.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	events   EventPublisher
	log      logrus.FieldLogger
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, tokens *TokenIssuer, events EventPublisher, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		log:      log,
	}
}

// Register creates a user with a hashed password and returns a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user := &models.User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := validateRegistration(user, in.Password); err != nil {
		return nil, validationError("Validation failed", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, duplicateEmail(in.Email, nil)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	// The unique index settles races that passed the lookup above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, duplicateEmail(in.Email, err)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	publishEvent(s.events, s.log, EventUserRegistered, map[string]interface{}{
		"userID": user.ID,
		"email":  user.Email,
	})
	return s.newSession(user)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, apperrors.Unauthorized("Invalid credentials", nil)
	}
	return s.newSession(user)
}

// CurrentUser returns the user a validated token was issued for.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// ValidateToken parses and validates a token, returning its user ID.
func (s *AuthService) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) newSession(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func validateRegistration(user *models.User, password string) error {
	errs := validation.Errors{}
	if err := user.Validate(); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for field, fieldErr := range fieldErrs {
			errs[field] = fieldErr
		}
	}
	if err := models.ValidateRawPassword(password); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			errs["password"] = fieldErrs["password"]
		}
	}
	return errs.Filter()
}

func duplicateEmail(email string, cause error) error {
	return apperrors.Conflict(fmt.Sprintf("%s is already registered", email), cause)
}
