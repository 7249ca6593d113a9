package model

import "github.com/google/uuid"

// Store is a vendor in the marketplace. Closed stores accept no new orders.
type Store struct {
	BaseModel
	Name    string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address string    `gorm:"type:text" json:"address"`
	Phone   string    `gorm:"type:varchar(20)" json:"phone"`
	IsOpen  bool      `gorm:"not null" json:"is_open"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// Category belongs to exactly one store.
type Category struct {
	BaseModel
	Name    string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	Store   *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}
