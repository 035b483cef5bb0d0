package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/authz"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, name, email, plainPassword string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyUser(ctx context.Context, id int) error
	UpdateRefresh(ctx context.Context, id int, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func (s *userService) Register(ctx context.Context, name, email, plainPassword string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, validationf("name and email are required")
	}
	if strings.TrimSpace(plainPassword) == "" {
		return nil, validationf("password is required")
	}
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, conflictf("an account with this email already exists")
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       authz.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, upstream(err)
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail registration
			log.Printf("Register: warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) VerifyUser(ctx context.Context, id int) error {
	return s.repo.SetVerified(ctx, id)
}

func (s *userService) UpdateRefresh(ctx context.Context, id int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, id, token, expiresAt)
}

func (s *userService) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(ctx, token)
}

func (s *userService) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(ctx, oldToken, newToken, expiresAt)
}
