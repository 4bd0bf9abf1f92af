package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventApplicationCreated = "application_created"
	EventApplicationStatus  = "application_status"
	EventOrderCreated       = "order_created"
	EventOrderStatus        = "order_status"
	EventReviewCreated      = "review_created"
)

type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// Notifier fans marketplace events out to websocket clients and, when a
// Redis client is configured, to the user's Redis channel.
type Notifier struct {
	hub *Hub
	rdb *redis.Client
}

func NewNotifier(hub *Hub, rdb *redis.Client) *Notifier {
	return &Notifier{hub: hub, rdb: rdb}
}

func Channel(userID int) string {
	return "notifications:" + strconv.Itoa(userID)
}

// Notify never fails the caller; delivery problems are logged.
func (n *Notifier) Notify(ctx context.Context, userID int, event string, data any) {
	if n == nil {
		return
	}
	ev := Event{Type: event, Data: data, At: time.Now().UTC()}

	if n.hub != nil {
		n.hub.SendToUser(userID, ev)
	}
	if n.rdb == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[realtime] marshal %s: %v", event, err)
		return
	}
	if err := n.rdb.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		log.Printf("[realtime] publish %s to user %d: %v", event, userID, err)
	}
}
