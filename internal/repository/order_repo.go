package repository

import (
	"time"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	TransitionStatus(tx *gorm.DB, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus, updatedBy string) (bool, error)
	FindByUser(tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]model.Order, int64, error)
	FindByStore(tx *gorm.DB, storeID uuid.UUID, filter ListFilter) ([]model.Order, int64, error)
	FindByStoreBetween(tx *gorm.DB, storeID uuid.UUID, start, end time.Time) ([]model.Order, error)
	CountByStore(tx *gorm.DB, storeID uuid.UUID) (int64, error)
}

type orderRepo struct{}

func NewOrderRepo() OrderRepository {
	return &orderRepo{}
}

// Create inserts the header, then every item under its id.
func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	items := order.Items
	if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "create order", err)
	}
	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedBy = order.CreatedBy
		items[i].UpdatedBy = order.UpdatedBy
	}
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "create order items", err)
	}
	order.Items = items
	return nil
}

// FindByID returns the order with items, products, store and customer.
func (r *orderRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Store").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find order", err)
	}
	return &order, nil
}

// FindForUpdate loads (and on postgres locks) the order with its items and store.
func (r *orderRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "find order", err)
	}
	if err := tx.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&order.Items).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "find order items", err)
	}
	var store model.Store
	if err := tx.First(&store, "id = ?", order.StoreID).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "find order store", err)
	}
	order.Store = &store
	return &order, nil
}

// TransitionStatus moves the order to `to` only while its status is one of `from`.
// It reports false when the guard did not match, so concurrent transitions apply once.
func (r *orderRepo) TransitionStatus(tx *gorm.DB, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus, updatedBy string) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return false, apperror.Wrap(apperror.KindInternal, "update order status", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) FindByUser(tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]model.Order, int64, error) {
	return r.list(tx.Where("user_id = ?", userID), filter, "Store")
}

func (r *orderRepo) FindByStore(tx *gorm.DB, storeID uuid.UUID, filter ListFilter) ([]model.Order, int64, error) {
	return r.list(tx.Where("store_id = ?", storeID), filter, "User")
}

func (r *orderRepo) list(query *gorm.DB, filter ListFilter, preload string) ([]model.Order, int64, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	// Shared by the count and the page query.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.Wrap(apperror.KindInternal, "count orders", err)
	}

	var orders []model.Order
	err := query.
		Preload(preload).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.KindInternal, "list orders", err)
	}
	return orders, total, nil
}

// FindByStoreBetween returns the store's orders created in [start, end).
func (r *orderRepo) FindByStoreBetween(tx *gorm.DB, storeID uuid.UUID, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := tx.Preload("Items").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, start, end).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "find orders for report", err)
	}
	return orders, nil
}

func (r *orderRepo) CountByStore(tx *gorm.DB, storeID uuid.UUID) (int64, error) {
	var n int64
	if err := tx.Model(&model.Order{}).Where("store_id = ?", storeID).Count(&n).Error; err != nil {
		return 0, apperror.Wrap(apperror.KindInternal, "count orders", err)
	}
	return n, nil
}
