package middleware

import (
	"strings"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/service"
	"go-marketplace-ws/pkg/apperror"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// RequireAuth is middleware that validates JWT token and sets the caller's Actor in context.
// Websocket upgrades may pass the token as ?token= since browsers cannot set headers there.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		user, err := authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals(actorKey, user.Actor())

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c) && c.Query("token") != "" {
			return c.Query("token"), nil
		}
		return "", apperror.New(apperror.KindUnauthorized, "missing authorization token")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperror.New(apperror.KindUnauthorized, "invalid authorization format, use: Bearer <token>")
	}
	return parts[1], nil
}

// ActorFrom returns the Actor set by RequireAuth.
func ActorFrom(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(actorKey).(model.Actor)
	return actor, ok
}

// RequireRole checks that the authenticated user has one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return apperror.New(apperror.KindUnauthorized, "not authenticated")
		}

		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}

		return apperror.WithMetadata(apperror.KindForbidden,
			"forbidden: requires one of "+strings.Join(roles, ", ")+" roles",
			map[string]any{"role": actor.Role})
	}
}
