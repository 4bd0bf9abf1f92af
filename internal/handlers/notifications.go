package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
)

type NotificationHandler struct {
	Hub *realtime.Hub
}

// RequireUpgrade rejects plain HTTP requests on the socket route.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve streams the authenticated user's events until the socket closes.
func (h *NotificationHandler) Serve(c *websocket.Conn) {
	uid, _ := c.Locals("userId").(int)
	if uid <= 0 {
		_ = c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: uid,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 64),
	}
	if !h.Hub.RegisterClient(client) {
		_ = c.Close()
		return
	}
	defer h.Hub.UnregisterClient(client)

	go client.Pump()

	// Reads only keep the connection alive and detect close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Printf("[realtime] user %d socket closed: %v", uid, err)
			return
		}
	}
}
