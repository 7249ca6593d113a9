package handler

import (
	"go-marketplace-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// CreateProduct adds a product to one of the caller's stores
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// GET /api/v1/stores/:storeId/products
func (h *CatalogHandler) ListStoreProducts(c *fiber.Ctx) error {
	storeID, err := parseUUID(c.Params("storeId"), "store id")
	if err != nil {
		return respondError(c, err)
	}

	products, err := h.service.ListStoreProducts(c.UserContext(), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": products})
}
