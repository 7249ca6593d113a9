package handler

import (
	"time"

	"go-marketplace-ws/internal/service"
	"go-marketplace-ws/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDailyReport returns order totals for one day
// Query params: storeId, date (YYYY-MM-DD, default today UTC)
func (h *ReportHandler) GetDailyReport(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	storeID, err := parseUUID(c.Query("storeId"), "storeId")
	if err != nil {
		return respondError(c, err)
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return respondError(c, apperror.Validation("date must be YYYY-MM-DD"))
		}
	}

	report, err := h.service.DailyReport(c.UserContext(), actor, storeID, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": report})
}

// GetMonthlyReport returns order totals with a per-day breakdown
// Query params: storeId, year, month (default current UTC month)
func (h *ReportHandler) GetMonthlyReport(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	storeID, err := parseUUID(c.Query("storeId"), "storeId")
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now().UTC()
	year, err := queryInt(c, "year", now.Year())
	if err != nil {
		return respondError(c, err)
	}
	month, err := queryInt(c, "month", int(now.Month()))
	if err != nil {
		return respondError(c, err)
	}

	report, err := h.service.MonthlyReport(c.UserContext(), actor, storeID, year, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": report})
}

// GetStoreStats returns the inventory overview of a store
// GET /api/v1/stores/:storeId/stats
func (h *ReportHandler) GetStoreStats(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	storeID, err := parseUUID(c.Params("storeId"), "store id")
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.service.StoreStats(c.UserContext(), actor, storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
