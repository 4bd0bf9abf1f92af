package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func connect(t *testing.T, hub *Hub, id string, userID int) *Client {
	t.Helper()
	c := &Client{ID: id, UserID: userID, Send: make(chan []byte, 8)}
	require.True(t, hub.RegisterClient(c))
	require.Eventually(t, func() bool { return hub.Connected(userID) > 0 }, time.Second, time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s got nothing", c.ID)
		return nil
	}
}

func TestSendToUserTargetsOnlyThatUser(t *testing.T) {
	hub, _ := startHub(t)
	alice := connect(t, hub, "a1", 1)
	bob := connect(t, hub, "b1", 2)

	hub.SendToUser(1, map[string]string{"hello": "alice"})

	assert.JSONEq(t, `{"hello":"alice"}`, string(receive(t, alice)))
	select {
	case msg := <-bob.Send:
		t.Fatalf("bob received %s", msg)
	default:
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub, _ := startHub(t)
	c := connect(t, hub, "a1", 1)

	hub.UnregisterClient(c)
	require.Eventually(t, func() bool { return hub.Connected(1) == 0 }, time.Second, time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestStoppedHubRefusesClients(t *testing.T) {
	hub, cancel := startHub(t)
	c := connect(t, hub, "a1", 1)
	cancel()

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, hub.RegisterClient(&Client{ID: "late", UserID: 1, Send: make(chan []byte, 1)}))
	hub.UnregisterClient(c)
}

func TestNotifierDeliversEvent(t *testing.T) {
	hub, _ := startHub(t)
	c := connect(t, hub, "s1", 7)

	n := NewNotifier(hub, nil)
	n.Notify(context.Background(), 7, EventOrderCreated, map[string]int{"id": 3})

	var ev struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(receive(t, c), &ev))
	assert.Equal(t, EventOrderCreated, ev.Type)
	assert.Equal(t, 3, ev.Data["id"])
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.Notify(context.Background(), 1, EventReviewCreated, nil) })
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "notifications:12", Channel(12))
}

func TestNewRedisDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, NewRedis(context.Background(), "", ""))
}
