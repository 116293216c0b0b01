package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidIssuer  = errors.New("invalid token issuer")
	ErrInvalidSubject = errors.New("invalid token subject")
)

type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	userRepo      domain.UserRepository
	now           func() time.Time
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration, userRepo domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		userRepo:      userRepo,
		now:           time.Now,
	}
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken returns the subject of a valid token whose user still exists.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token claims")
	}

	if claims.Issuer != s.issuer {
		return "", ErrInvalidIssuer
	}
	if claims.Subject == "" {
		return "", ErrInvalidSubject
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, claims.Subject); err != nil {
		return "", fmt.Errorf("user no longer exists or db error: %w", err)
	}

	return claims.Subject, nil
}
