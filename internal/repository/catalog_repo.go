package repository

import (
	"fmt"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository is the stock ledger plus store/category/product lookup.
// Every method runs on the handle of the caller's unit of work.
type CatalogRepository interface {
	FindStore(tx *gorm.DB, id uuid.UUID) (*model.Store, error)
	IsStoreOpen(tx *gorm.DB, storeID uuid.UUID) (bool, error)
	FindStoresByOwner(tx *gorm.DB, ownerID uuid.UUID) ([]model.Store, error)
	FindCategory(tx *gorm.DB, id uuid.UUID) (*model.Category, error)

	FindOrderableProduct(tx *gorm.DB, productID, storeID uuid.UUID) (*model.Product, error)
	FindProductByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindProductsByStore(tx *gorm.DB, storeID uuid.UUID, activeOnly bool) ([]model.Product, error)
	CreateProduct(tx *gorm.DB, product *model.Product) error

	DecrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error
	IncrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error
}

type catalogRepo struct{}

func NewCatalogRepo() CatalogRepository {
	return &catalogRepo{}
}

func (r *catalogRepo) FindStore(tx *gorm.DB, id uuid.UUID) (*model.Store, error) {
	var store model.Store
	if err := tx.First(&store, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("store", id)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find store", err)
	}
	return &store, nil
}

func (r *catalogRepo) IsStoreOpen(tx *gorm.DB, storeID uuid.UUID) (bool, error) {
	store, err := r.FindStore(tx, storeID)
	if err != nil {
		return false, err
	}
	return store.IsOpen, nil
}

func (r *catalogRepo) FindStoresByOwner(tx *gorm.DB, ownerID uuid.UUID) ([]model.Store, error) {
	var stores []model.Store
	if err := tx.Where("owner_id = ?", ownerID).Order("name ASC").Find(&stores).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "find stores by owner", err)
	}
	return stores, nil
}

func (r *catalogRepo) FindCategory(tx *gorm.DB, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := tx.First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("category", id)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find category", err)
	}
	return &category, nil
}

// FindOrderableProduct returns the product only if it is active and sold by storeID.
// On postgres the row stays locked until the surrounding transaction ends.
func (r *catalogRepo) FindOrderableProduct(tx *gorm.DB, productID, storeID uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := forUpdate(tx).
		Where("id = ? AND store_id = ? AND is_active = ?", productID, storeID, true).
		First(&product).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.ProductUnavailable(productID)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find product", err)
	}
	return &product, nil
}

func (r *catalogRepo) FindProductByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find product", err)
	}
	return &product, nil
}

func (r *catalogRepo) FindProductsByStore(tx *gorm.DB, storeID uuid.UUID, activeOnly bool) ([]model.Product, error) {
	var products []model.Product
	query := tx.Preload("Category").Where("store_id = ?", storeID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "find products", err)
	}
	return products, nil
}

func (r *catalogRepo) CreateProduct(tx *gorm.DB, product *model.Product) error {
	if err := tx.Omit("Store", "Category").Create(product).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "create product", err)
	}
	return nil
}

// DecrementStock takes quantity units in one guarded statement: the row only
// changes while stock >= quantity, so concurrent callers can never drive it negative.
func (r *catalogRepo) DecrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return invalidQuantity(quantity)
	}
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return apperror.Wrap(apperror.KindInternal, "decrement stock", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var current model.Product
	if err := tx.Select("id", "name", "stock").First(&current, "id = ?", productID).Error; err != nil {
		if isNotFound(err) {
			return apperror.ProductUnavailable(productID)
		}
		return apperror.Wrap(apperror.KindInternal, "read stock", err)
	}
	return apperror.InsufficientStock(productID, current.Name, current.Stock, quantity)
}

// IncrementStock adds quantity back. No upper bound; callers gate double restoration.
func (r *catalogRepo) IncrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return invalidQuantity(quantity)
	}
	res := tx.Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return apperror.Wrap(apperror.KindInternal, "increment stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product", productID)
	}
	return nil
}

func invalidQuantity(quantity int) error {
	return apperror.WithMetadata(apperror.KindValidation,
		fmt.Sprintf("stock quantity must be positive, got %d", quantity),
		map[string]any{"quantity": quantity})
}
