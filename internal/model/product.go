package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is orderable only while active. Stock never drops below zero.
type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0" json:"stock"`
	IsActive    bool            `gorm:"not null" json:"is_active"`

	StoreID    uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	Store      *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
