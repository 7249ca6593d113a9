package service

import (
	"context"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/pkg/apperror"
	"go-marketplace-ws/pkg/jwt"
	"go-marketplace-ws/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrInvalidToken       = apperror.New(apperror.KindUnauthorized, "invalid or expired token")
	ErrUserInactive       = apperror.New(apperror.KindForbidden, "user account is inactive")
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	db       *gorm.DB
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, db *gorm.DB, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		db:       db,
		tokens:   tokens,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(s.db.WithContext(ctx), req.Email)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Generate JWT token
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to generate token", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user logged in")
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

// Authenticate resolves a bearer token to a user that still exists and is active.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, err.Error())
	}

	user, err := s.userRepo.FindByID(s.db.WithContext(ctx), claims.UserID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}
