package handler

import (
	"strings"

	"go-marketplace-ws/internal/service"
	"go-marketplace-ws/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const channelsKey = "ws_channels"

type WSHandler struct {
	hub           *ws.Hub
	subscriptions service.SubscriptionService
}

func NewWSHandler(hub *ws.Hub, s service.SubscriptionService) *WSHandler {
	return &WSHandler{hub: hub, subscriptions: s}
}

// Upgrade runs after RequireAuth: it rejects plain HTTP and resolves which
// channels the connection will listen on.
// GET /ws?channels=store_<id>,user_<id>
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}

	actor, err := getActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var requested []string
	for _, ch := range strings.Split(c.Query("channels"), ",") {
		if ch = strings.TrimSpace(ch); ch != "" {
			requested = append(requested, ch)
		}
	}

	channels, err := h.subscriptions.Channels(c.UserContext(), actor, requested)
	if err != nil {
		return respondError(c, err)
	}
	c.Locals(channelsKey, channels)
	return c.Next()
}

// Serve keeps the connection registered until the client goes away.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		channels, _ := c.Locals(channelsKey).([]string)
		h.hub.Register <- &ws.Subscription{Client: c, Channels: channels}
		defer func() { h.hub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				logrus.WithError(err).Debug("ws: client disconnected")
				break
			}
		}
	})
}
