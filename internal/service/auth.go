package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avatarly/avatarly-go/internal/apperror"
	"github.com/avatarly/avatarly-go/internal/crypto"
	"github.com/avatarly/avatarly-go/internal/model"
	"github.com/avatarly/avatarly-go/internal/repository"
)

// UserRepository is the identity store interface the services depend
// on. Satisfied by repository.UserRepository; tests substitute fakes.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateAvatarURL(ctx context.Context, id int64, avatarURL string) (*model.User, error)
}

// AuthService handles registration, login and identity lookup.
type AuthService struct {
	repo      UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account and returns an auth token. Email
// and nickname uniqueness is enforced by the identity store.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Password == "" || req.Birthday == "" || req.Gender == "" || req.Nickname == "" {
		return model.AuthResponse{}, apperror.Validation("all fields are required")
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		return model.AuthResponse{}, apperror.Validation("birthday must be in YYYY-MM-DD format")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Nickname:     req.Nickname,
		PasswordHash: hash,
		Birthday:     birthday,
		Age:          calculateAge(birthday, time.Now()),
		Gender:       req.Gender,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return model.AuthResponse{}, apperror.Conflict("Email or Nickname already exists")
		}
		return model.AuthResponse{}, fmt.Errorf("creating user: %w", err)
	}

	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("generating token: %w", err)
	}

	return model.AuthResponse{User: user.Sanitize(), Token: token}, nil
}

// Login authenticates a user and returns an auth token. Unknown email
// and wrong password produce the same error so account existence does
// not leak.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return model.AuthResponse{}, apperror.Validation("email and password required")
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, apperror.Unauthorized("Invalid credentials")
		}
		return model.AuthResponse{}, fmt.Errorf("looking up user: %w", err)
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, apperror.Unauthorized("Invalid credentials")
	}

	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("generating token: %w", err)
	}

	return model.AuthResponse{User: user.Sanitize(), Token: token}, nil
}

// Me loads the identity encoded in a validated token.
func (s *AuthService) Me(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, apperror.NotFound("User not found")
		}
		return model.UserResponse{}, fmt.Errorf("looking up user: %w", err)
	}

	return user.Sanitize(), nil
}

// calculateAge returns the number of whole years between birthday and
// now, decrementing when this year's birthday has not yet passed.
func calculateAge(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}
