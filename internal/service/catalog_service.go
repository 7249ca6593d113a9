package service

import (
	"context"
	"fmt"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/pkg/apperror"
	"go-marketplace-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	StoreID     uuid.UUID       `json:"store_id" validate:"uuid_required"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"uuid_required"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"is_active"`
}

type CatalogService interface {
	CreateProduct(ctx context.Context, actor model.Actor, req *CreateProductRequest) (*model.Product, error)
	ListStoreProducts(ctx context.Context, storeID uuid.UUID) ([]model.Product, error)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	db          *gorm.DB
}

func NewCatalogService(cRepo repository.CatalogRepository, db *gorm.DB) CatalogService {
	return &catalogService{catalogRepo: cRepo, db: db}
}

func (s *catalogService) CreateProduct(ctx context.Context, actor model.Actor, req *CreateProductRequest) (*model.Product, error) {
	// 1. Validasi Struct Dasar
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var created *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 2. Only the owner (or an admin) stocks a store
		store, err := s.catalogRepo.FindStore(tx, req.StoreID)
		if err != nil {
			return err
		}
		if !actor.CanManage(store) {
			return apperror.Forbidden("only the store owner or an admin can add products")
		}

		// 3. Category must belong to the same store
		category, err := s.catalogRepo.FindCategory(tx, req.CategoryID)
		if err != nil {
			return err
		}
		if category.StoreID != store.ID {
			return apperror.WithMetadata(apperror.KindValidation,
				fmt.Sprintf("category %q belongs to another store", category.Name),
				map[string]any{"category_id": category.ID.String(), "store_id": store.ID.String()})
		}

		product := &model.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			IsActive:    req.IsActive == nil || *req.IsActive,
			StoreID:     store.ID,
			CategoryID:  category.ID,
		}
		product.CreatedBy = actor.ID.String()
		product.UpdatedBy = actor.ID.String()

		if err := s.catalogRepo.CreateProduct(tx, product); err != nil {
			return err
		}
		created, err = s.catalogRepo.FindProductByID(tx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"product_id": created.ID, "store_id": created.StoreID}).Info("product created")
	return created, nil
}

// ListStoreProducts returns what a customer can order from the store.
func (s *catalogService) ListStoreProducts(ctx context.Context, storeID uuid.UUID) ([]model.Product, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.catalogRepo.FindStore(db, storeID); err != nil {
		return nil, err
	}
	return s.catalogRepo.FindProductsByStore(db, storeID, true)
}
