package services

import (
	"context"
	"errors"
	"fmt"

	"shop-service/models"
	"shop-service/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and logout. Token issuance and
// validation are delegated to TokenService.
type AuthService struct {
	userRepo     repository.UserRepository
	tokenService *TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokenService *TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokenService: tokenService}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, Name: name, Password: string(hashed)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent registrations for the same email race past the
		// lookup; the unique index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokenService.Generate(user.ID, user.Email)
}

// Logout blacklists the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokenService.Revoke(ctx, token)
}
