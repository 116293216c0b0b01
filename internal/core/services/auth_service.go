package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/google/uuid"
)

type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type AuthService struct {
	repo   domain.UserRepository
	tokens TokenIssuer
}

func NewAuthService(repo domain.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  *domain.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	id := uuid.NewString()
	user, err := domain.NewUser(id, input.Email)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	return user, nil
}

// Login never tells the caller whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: failed to load user: %w", err)
	}

	if err := user.Authenticate(input.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}
