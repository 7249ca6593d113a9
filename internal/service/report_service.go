package service

import (
	"context"
	"time"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportSummary aggregates a window of orders. Cancelled orders count toward
// TotalOrders and OrdersByStatus but not toward revenue.
type ReportSummary struct {
	TotalOrders       int                       `json:"total_orders"`
	TotalRevenue      decimal.Decimal           `json:"total_revenue"`
	OrdersByStatus    map[model.OrderStatus]int `json:"orders_by_status"`
	CancelledOrders   int                       `json:"cancelled_orders"`
	AverageOrderValue decimal.Decimal           `json:"average_order_value"`
}

type DailyReport struct {
	StoreID uuid.UUID `json:"store_id"`
	Date    string    `json:"date"`
	ReportSummary
}

type DayBreakdown struct {
	Day     int             `json:"day"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type MonthlyReport struct {
	StoreID uuid.UUID `json:"store_id"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	ReportSummary
	Days []DayBreakdown `json:"daily_breakdown"`
}

type ReportService interface {
	DailyReport(ctx context.Context, actor model.Actor, storeID uuid.UUID, date time.Time) (*DailyReport, error)
	MonthlyReport(ctx context.Context, actor model.Actor, storeID uuid.UUID, year, month int) (*MonthlyReport, error)
	StoreStats(ctx context.Context, actor model.Actor, storeID uuid.UUID) (*repository.StoreStats, error)
}

type reportService struct {
	catalogRepo repository.CatalogRepository
	orderRepo   repository.OrderRepository
	reportRepo  repository.ReportRepository
	db          *gorm.DB
}

func NewReportService(cRepo repository.CatalogRepository, oRepo repository.OrderRepository, rRepo repository.ReportRepository, db *gorm.DB) ReportService {
	return &reportService{catalogRepo: cRepo, orderRepo: oRepo, reportRepo: rRepo, db: db}
}

func (s *reportService) authorize(db *gorm.DB, actor model.Actor, storeID uuid.UUID) error {
	store, err := s.catalogRepo.FindStore(db, storeID)
	if err != nil {
		return err
	}
	if !actor.CanManage(store) {
		return apperror.Forbidden("you do not have access to this store's reports")
	}
	return nil
}

// DailyReport covers the UTC calendar day containing date.
func (s *reportService) DailyReport(ctx context.Context, actor model.Actor, storeID uuid.UUID, date time.Time) (*DailyReport, error) {
	db := s.db.WithContext(ctx)
	if err := s.authorize(db, actor, storeID); err != nil {
		return nil, err
	}

	date = date.UTC()
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	orders, err := s.orderRepo.FindByStoreBetween(db, storeID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return &DailyReport{
		StoreID:       storeID,
		Date:          start.Format("2006-01-02"),
		ReportSummary: summarize(orders),
	}, nil
}

func (s *reportService) MonthlyReport(ctx context.Context, actor model.Actor, storeID uuid.UUID, year, month int) (*MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, apperror.Validation("month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return nil, apperror.Validation("year is out of range")
	}

	db := s.db.WithContext(ctx)
	if err := s.authorize(db, actor, storeID); err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	orders, err := s.orderRepo.FindByStoreBetween(db, storeID, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	// Orders arrive sorted by created_at, so days come out in order.
	index := make(map[int]int)
	days := []DayBreakdown{}
	for _, o := range orders {
		day := o.CreatedAt.UTC().Day()
		i, ok := index[day]
		if !ok {
			days = append(days, DayBreakdown{Day: day, Revenue: decimal.Zero})
			i = len(days) - 1
			index[day] = i
		}
		days[i].Orders++
		if o.Status != model.OrderCancelled {
			days[i].Revenue = days[i].Revenue.Add(o.TotalAmount)
		}
	}

	return &MonthlyReport{
		StoreID:       storeID,
		Year:          year,
		Month:         month,
		ReportSummary: summarize(orders),
		Days:          days,
	}, nil
}

func (s *reportService) StoreStats(ctx context.Context, actor model.Actor, storeID uuid.UUID) (*repository.StoreStats, error) {
	db := s.db.WithContext(ctx)
	if err := s.authorize(db, actor, storeID); err != nil {
		return nil, err
	}
	stats, err := s.reportRepo.GetStoreStats(db, storeID)
	if err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orderRepo.CountByStore(db, storeID); err != nil {
		return nil, err
	}
	return stats, nil
}

func summarize(orders []model.Order) ReportSummary {
	sum := ReportSummary{
		TotalOrders:       len(orders),
		TotalRevenue:      decimal.Zero,
		OrdersByStatus:    make(map[model.OrderStatus]int),
		AverageOrderValue: decimal.Zero,
	}
	for _, o := range orders {
		sum.OrdersByStatus[o.Status]++
		if o.Status == model.OrderCancelled {
			sum.CancelledOrders++
			continue
		}
		sum.TotalRevenue = sum.TotalRevenue.Add(o.TotalAmount)
	}
	if billed := sum.TotalOrders - sum.CancelledOrders; billed > 0 {
		sum.AverageOrderValue = sum.TotalRevenue.Div(decimal.NewFromInt(int64(billed))).Round(2)
	}
	return sum
}
