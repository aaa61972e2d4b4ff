package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult bundles a user with a freshly issued access token
type AuthResult struct {
	User  *models.User
	Token string
}

// Service handles user registration, login, and profile lookup
type Service struct {
	users  repositories.UserRepository
	tokens *TokenManager
	logger *zap.Logger
}

// NewService creates a new auth service
func NewService(users repositories.UserRepository, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new account and returns it with an access token
func (s *Service) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	if existing, _ := s.users.GetByEmail(ctx, email); existing != nil {
		return nil, services.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(email, string(hash), name)
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the GetByEmail check;
		// the unique constraint reports it as a conflict.
		if services.IsConflictError(err) {
			return nil, services.ErrDuplicateEmail
		}
		return nil, services.WrapInternal("failed to create user", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, services.WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with an access token
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists
		return nil, services.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, services.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, services.WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the user's profile
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, services.ErrUserNotFound
	}
	return user, nil
}
