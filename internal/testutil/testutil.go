// Package testutil builds throwaway databases and catalog fixtures for tests.
package testutil

import (
	"testing"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database that is closed with the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Fixtures creates catalog rows with sensible defaults.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) User(role string) *model.User {
	f.t.Helper()
	u := &model.User{
		Email:    uuid.NewString() + "@example.com",
		FullName: role + " user",
		Role:     role,
		IsActive: true,
	}
	require.NoError(f.t, u.SetPassword("password123"))
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *Fixtures) Store(owner *model.User, open bool) *model.Store {
	f.t.Helper()
	s := &model.Store{Name: "Store " + uuid.NewString()[:8], Address: "Main St 1", Phone: "555", IsOpen: open, OwnerID: owner.ID}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

func (f *Fixtures) Category(store *model.Store) *model.Category {
	f.t.Helper()
	c := &model.Category{Name: "Drinks", StoreID: store.ID}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

// Product creates a product in store under a fresh category.
func (f *Fixtures) Product(store *model.Store, price string, stock int, active bool) *model.Product {
	f.t.Helper()
	cat := f.Category(store)
	p := &model.Product{
		Name:       "Product " + uuid.NewString()[:8],
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   active,
		StoreID:    store.ID,
		CategoryID: cat.ID,
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

// Stock re-reads a product's stock.
func (f *Fixtures) Stock(productID uuid.UUID) int {
	f.t.Helper()
	var p model.Product
	require.NoError(f.t, f.db.Select("stock").First(&p, "id = ?", productID).Error)
	return p.Stock
}

// Count returns how many rows of model exist.
func (f *Fixtures) Count(m any) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(m).Count(&n).Error)
	return n
}
