package repository

import (
	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold marks products that need restocking.
const LowStockThreshold = 10

// StoreStats is the inventory overview for one store.
type StoreStats struct {
	TotalProducts  int64           `json:"total_products"`
	TotalOrders    int64           `json:"total_orders"`
	ActiveProducts int64           `json:"active_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type ReportRepository interface {
	GetStoreStats(tx *gorm.DB, storeID uuid.UUID) (*StoreStats, error)
}

type reportRepo struct{}

func NewReportRepo() ReportRepository {
	return &reportRepo{}
}

func (r *reportRepo) GetStoreStats(tx *gorm.DB, storeID uuid.UUID) (*StoreStats, error) {
	var stats StoreStats
	products := func() *gorm.DB {
		return tx.Model(&model.Product{}).Where("store_id = ?", storeID)
	}

	if err := products().Count(&stats.TotalProducts).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "count products", err)
	}
	if err := products().Where("is_active = ?", true).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "count active products", err)
	}
	if err := products().Where("stock < ?", LowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "count low stock", err)
	}

	// Total Valuation (SUM of stock * price)
	var valuation decimal.NullDecimal
	if err := products().Select("SUM(stock * price)").Row().Scan(&valuation); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "sum valuation", err)
	}
	stats.TotalValuation = decimal.Zero
	if valuation.Valid {
		stats.TotalValuation = valuation.Decimal
	}

	return &stats, nil
}
