package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	domain "github.com/example/todo-api/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrMissingFields is returned when registration fields are absent.
	ErrMissingFields = errors.New("name, email, password and phone are required")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrEmptyProfileUpdate is returned when a profile update carries no fields.
	ErrEmptyProfileUpdate = errors.New("no fields provided for update")
	// ErrEmailTaken is returned when a profile update targets an email owned by another account.
	ErrEmailTaken = errors.New("email already in use by another account")
	// ErrInvalidName is returned when a supplied name is empty.
	ErrInvalidName = errors.New("name must not be empty")
	// ErrInvalidPhone is returned when a supplied phone is empty.
	ErrInvalidPhone = errors.New("phone must not be empty")
)

// ProfilePatch is a partial profile update. Nil fields are left untouched.
// Credential rotation is out of scope, so there is no password field.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// HasFields reports whether the patch carries at least one field.
func (p ProfilePatch) HasFields() bool {
	return p.Name != nil || p.Email != nil || p.Phone != nil
}

// AuthService handles registration, login and profile business logic.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Register creates a new user account and returns a signed identity token.
func (s *AuthService) Register(_ context.Context, name, email, password, phone string) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if name == "" || email == "" || password == "" || phone == "" {
		return "", ErrMissingFields
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}

	if len(password) < 6 {
		return "", ErrWeakPassword
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return "", fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return "", ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(user); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Login authenticates a user and returns a signed identity token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(_ context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken validates an identity token and returns the claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID: claims.UserID,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(userID)
}

// UpdateProfile applies a partial update to the user's name, email or phone.
// Only the fields present in the patch are changed.
func (s *AuthService) UpdateProfile(_ context.Context, userID string, patch ProfilePatch) (*domain.User, error) {
	if !patch.HasFields() {
		return nil, ErrEmptyProfileUpdate
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, ErrInvalidName
	}
	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) == "" {
		return nil, ErrInvalidPhone
	}

	var newEmail string
	if patch.Email != nil {
		newEmail = strings.ToLower(strings.TrimSpace(*patch.Email))
		if _, err := mail.ParseAddress(newEmail); err != nil {
			return nil, ErrInvalidEmail
		}
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && newEmail != user.Email {
		exists, err := s.repo.EmailExists(newEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return nil, ErrEmailTaken
		}
		user.Email = newEmail
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Save(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// TokenDuration returns the configured token lifetime in seconds.
func (s *AuthService) TokenDuration() int64 {
	return s.jwt.TokenDuration()
}
