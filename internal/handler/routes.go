package handler

import (
	"go-marketplace-ws/internal/middleware"
	"go-marketplace-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Order   *OrderHandler
	Report  *ReportHandler
	WS      *WSHandler
}

// SetupRoutes mounts the REST API under /api/v1 and the relay under /ws.
func SetupRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")
	vendor := middleware.RequireRole(model.RoleTradesman, model.RoleAdmin)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)

	api.Get("/stores/:storeId/products", h.Catalog.ListStoreProducts)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/stores/:storeId/stats", vendor, h.Report.GetStoreStats)
	protected.Post("/products", vendor, h.Catalog.CreateProduct)

	orders := protected.Group("/orders")
	orders.Post("/", h.Order.CreateOrder)
	orders.Get("/", h.Order.ListMyOrders)
	orders.Get("/store/:storeId", vendor, h.Order.ListStoreOrders)
	orders.Get("/reports/daily", vendor, h.Report.GetDailyReport)
	orders.Get("/reports/monthly", vendor, h.Report.GetMonthlyReport)
	orders.Get("/:id", h.Order.GetOrder)
	orders.Patch("/:id/status", vendor, h.Order.UpdateStatus)
	orders.Patch("/:id/cancel", h.Order.CancelOrder)

	// WebSocket Route
	app.Get("/ws", requireAuth, h.WS.Upgrade, h.WS.Serve())
}
