package main

import (
	"go-marketplace-ws/internal/config"
	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/pkg/apperror"
	"go-marketplace-ws/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const seedPassword = "password123"

func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	cfg.SetupLogging()

	// 2. Setup Database
	db, err := database.Open(database.Options{
		Driver:      cfg.Database.Driver,
		PostgresDSN: cfg.Database.PostgresDSN(),
		SQLitePath:  cfg.Database.SQLitePath,
		Migrations:  cfg.Database.Migrations,
	})
	if err != nil {
		logrus.WithError(err).Fatal("database setup failed")
	}

	// 3. Seed demo data in one transaction
	if err := db.Transaction(seed); err != nil {
		logrus.WithError(err).Fatal("seed failed")
	}
}

func seed(tx *gorm.DB) error {
	users := repository.NewUserRepo()
	catalog := repository.NewCatalogRepo()

	admin, err := ensureUser(tx, users, "admin@example.com", "Marketplace Admin", model.RoleAdmin)
	if err != nil {
		return err
	}
	vendor, err := ensureUser(tx, users, "vendor@example.com", "Demo Vendor", model.RoleTradesman)
	if err != nil {
		return err
	}
	if _, err := ensureUser(tx, users, "customer@example.com", "Demo Customer", model.RoleCustomer); err != nil {
		return err
	}

	stores, err := catalog.FindStoresByOwner(tx, vendor.ID)
	if err != nil {
		return err
	}
	if len(stores) > 0 {
		logrus.WithField("store_id", stores[0].ID).Info("demo store already present")
		return nil
	}

	store := &model.Store{Name: "Demo Kitchen", Address: "Jl. Sudirman 1", Phone: "021-555-0100", IsOpen: true, OwnerID: vendor.ID}
	store.CreatedBy = admin.ID.String()
	if err := tx.Create(store).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "create store", err)
	}
	category := &model.Category{Name: "Meals", StoreID: store.ID}
	if err := tx.Create(category).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "create category", err)
	}

	for _, p := range []struct {
		name  string
		price string
		stock int
	}{
		{"Nasi Goreng", "25000.00", 50},
		{"Mie Ayam", "18000.00", 40},
		{"Es Teh", "5000.00", 100},
	} {
		product := &model.Product{
			Name:       p.name,
			Price:      decimal.RequireFromString(p.price),
			Stock:      p.stock,
			IsActive:   true,
			StoreID:    store.ID,
			CategoryID: category.ID,
		}
		product.CreatedBy = vendor.ID.String()
		if err := catalog.CreateProduct(tx, product); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{"store_id": store.ID, "password": seedPassword}).Info("✅ demo data seeded")
	return nil
}

func ensureUser(tx *gorm.DB, users repository.UserRepository, email, name, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, apperror.Validation("unknown role " + role)
	}
	existing, err := users.FindByEmail(tx, email)
	if err == nil {
		return existing, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	user := &model.User{Email: email, FullName: name, Role: role, IsActive: true}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"
	if err := user.SetPassword(seedPassword); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "hash password", err)
	}
	if err := users.Create(tx, user); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"email": email, "role": role}).Info("✅ user created")
	return user, nil
}
