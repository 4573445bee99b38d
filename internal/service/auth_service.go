package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialbook/internal/auth"
	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
	"socialbook/internal/repository"
	"socialbook/internal/validation"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username  string `form:"username" json:"username" validate:"required,min=4,max=16"`
	Password  string `form:"password" json:"password" validate:"required,min=8,max=32"`
	Email     string `form:"email" json:"email" validate:"required,email,max=255"`
	Firstname string `form:"firstname" json:"firstname" validate:"required,max=50"`
	Lastname  string `form:"lastname" json:"lastname" validate:"required,max=50"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
	Remember bool   `form:"-" json:"remember"`
}

// AuthService handles registration, login and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (*model.User, error)
	StartSession(user *model.User) (*auth.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	users     repository.UserRepository
	sessions  *auth.SessionService
	revoked   auth.RevocationStore
	validator *validation.Validator
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, sessions *auth.SessionService, revoked auth.RevocationStore, v *validation.Validator) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		revoked:   revoked,
		validator: v,
	}
}

// NormalizeUsername is the canonical form used for storage and every lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail is the canonical form used for storage and every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the form, checks both unique fields in one query and stores the
// user with a hashed password, all inside one transaction.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = NormalizeUsername(in.Username)
	in.Email = NormalizeEmail(in.Email)
	in.Firstname = strings.TrimSpace(in.Firstname)
	in.Lastname = strings.TrimSpace(in.Lastname)
	if err := s.validator.Check(&in); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashed,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
	}

	err = s.users.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		existing, err := repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
		if err != nil {
			return fmt.Errorf("check user existence: %w", err)
		}
		if err := collision(existing, in.Username, in.Email); err != nil {
			return err
		}
		return repo.Create(ctx, user)
	})
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrUniqueViolation):
		// Lost a race with a concurrent registration; report which field collided.
		return nil, s.resolveCollision(ctx, in.Username, in.Email)
	case errors.Is(err, apperrors.ErrUsernameTaken), errors.Is(err, apperrors.ErrEmailTaken):
		return nil, err
	default:
		return nil, fmt.Errorf("register %s: %w", in.Username, err)
	}
}

func (s *authService) resolveCollision(ctx context.Context, username, email string) error {
	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return fmt.Errorf("check user existence: %w", err)
	}
	if err := collision(existing, username, email); err != nil {
		return err
	}
	return apperrors.ErrUsernameTaken
}

// collision reports a taken username before a taken email.
func collision(existing []model.User, username, email string) error {
	for _, u := range existing {
		if u.Username == username {
			return apperrors.ErrUsernameTaken
		}
	}
	for _, u := range existing {
		if u.Email == email {
			return apperrors.ErrEmailTaken
		}
	}
	return nil
}

// Login authenticates by username and password. Unknown users and wrong passwords
// both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, in LoginInput) (*model.User, error) {
	if err := s.validator.Check(&in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, NormalizeUsername(in.Username))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		auth.BurnPasswordCheck(in.Password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// StartSession issues a signed session for an authenticated user.
func (s *authService) StartSession(user *model.User) (*auth.Session, error) {
	session, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return session, nil
}

// Authenticate validates a session token and rejects logged-out sessions.
func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

// Logout revokes the session behind token. Invalid or empty tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, s.sessions.Remaining(claims)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
