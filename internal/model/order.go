package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses is the canonical set accepted by status updates.
var OrderStatuses = []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled}

// CancellableStatuses are the only states cancellation may start from.
var CancellableStatuses = []OrderStatus{OrderPending, OrderPreparing}

// OpenStatuses are the non-terminal states a status update may start from.
var OpenStatuses = []OrderStatus{OrderPending, OrderPreparing, OrderReady}

// IsCanonical reports whether s is one of OrderStatuses.
func (s OrderStatus) IsCanonical() bool {
	for _, c := range OrderStatuses {
		if c == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status mutation is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) IsCancellable() bool {
	for _, c := range CancellableStatuses {
		if c == s {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	OrderNumber     string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StoreID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	Store           *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"` // Sum of snapshot price * quantity
	DeliveryAddress string          `gorm:"type:text;not null" json:"delivery_address"`
	Notes           *string         `gorm:"type:text" json:"notes,omitempty"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`

	// Owned exclusively by the order; removed with it.
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // Snapshot at order time
}

// LineTotal is the snapshot price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AllModels lists every table AutoMigrate manages, in dependency order.
func AllModels() []any {
	return []any{&User{}, &Store{}, &Category{}, &Product{}, &Order{}, &OrderItem{}}
}
