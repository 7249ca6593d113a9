package handler

import (
	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.CreateOrder(c.UserContext(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

// GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := listFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	orders, total, err := h.service.ListUserOrders(c.UserContext(), actor, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(paginated(orders, total, filter))
}

// GET /api/v1/orders/store/:storeId
func (h *OrderHandler) ListStoreOrders(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	storeID, err := parseUUID(c.Params("storeId"), "store id")
	if err != nil {
		return respondError(c, err)
	}
	filter, err := listFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	orders, total, err := h.service.ListStoreOrders(c.UserContext(), actor, storeID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(paginated(orders, total, filter))
}

// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseUUID(c.Params("id"), "order id")
	if err != nil {
		return respondError(c, err)
	}

	order, err := h.service.GetOrderByID(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseUUID(c.Params("id"), "order id")
	if err != nil {
		return respondError(c, err)
	}

	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

// PATCH /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseUUID(c.Params("id"), "order id")
	if err != nil {
		return respondError(c, err)
	}

	order, err := h.service.CancelOrder(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled", "data": order})
}
