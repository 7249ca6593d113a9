package repository

import (
	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(tx *gorm.DB, email string) (*model.User, error)
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.User, error)
	Create(tx *gorm.DB, user *model.User) error
}

type userRepo struct{}

func NewUserRepo() UserRepository {
	return &userRepo{}
}

func (r *userRepo) FindByEmail(tx *gorm.DB, email string) (*model.User, error) {
	var user model.User
	if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find user", err)
	}
	return &user, nil
}

func (r *userRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find user", err)
	}
	return &user, nil
}

func (r *userRepo) Create(tx *gorm.DB, user *model.User) error {
	if err := tx.Create(user).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "create user", err)
	}
	return nil
}
