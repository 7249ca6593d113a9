package handler

import (
	"strconv"
	"strings"

	"go-marketplace-ws/internal/middleware"
	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil Actor dari JWT Context (set by auth middleware)
func getActor(c *fiber.Ctx) (model.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return model.Actor{}, apperror.New(apperror.KindUnauthorized, "not authenticated")
	}
	return actor, nil
}

// Helper untuk parse UUID dari route param atau query
func parseUUID(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, apperror.WithMetadata(apperror.KindValidation, "invalid "+name, map[string]any{"field": name})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Wrap(apperror.KindValidation, "invalid JSON", err)
	}
	return nil
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.WithMetadata(apperror.KindValidation, name+" must be a number", map[string]any{"field": name})
	}
	return n, nil
}

func listFilter(c *fiber.Ctx) (repository.ListFilter, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return repository.ListFilter{}, err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return repository.ListFilter{}, err
	}
	return repository.ListFilter{Status: c.Query("status"), Page: page, Limit: limit}, nil
}

func paginated(data any, total int64, filter repository.ListFilter) fiber.Map {
	filter = filter.Normalize(20)
	return fiber.Map{
		"data": data,
		"pagination": fiber.Map{
			"page":  filter.Page,
			"limit": filter.Limit,
			"total": total,
		},
	}
}
