package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, 8),
		Hub:    hub,
	}
}

func receiveMessage(t *testing.T, client *Client) WebSocketMessage {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for websocket message")
		return WebSocketMessage{}
	}
}

func assertNoMessage(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data := <-client.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubEmitToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	driver := newTestClient(hub, 1)
	passenger := newTestClient(hub, 2)
	hub.Register(driver)
	hub.Register(passenger)
	waitForClients(t, hub, 2)

	hub.EmitToUser(1, EventBookingCreated, map[string]uint{"bookingId": 42})

	msg := receiveMessage(t, driver)
	assert.Equal(t, EventBookingCreated, msg.Type)
	assertNoMessage(t, passenger)
}

func TestHubEmitToUserAllSessions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient(hub, 7)
	second := newTestClient(hub, 7)
	hub.Register(first)
	hub.Register(second)
	waitForClients(t, hub, 2)

	hub.EmitToUser(7, EventBookingStatus, nil)

	assert.Equal(t, EventBookingStatus, receiveMessage(t, first).Type)
	assert.Equal(t, EventBookingStatus, receiveMessage(t, second).Type)
}

func TestHubTripRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, 1)
	outsider := newTestClient(hub, 2)
	hub.Register(member)
	hub.Register(outsider)
	waitForClients(t, hub, 2)

	hub.JoinTrip(member, 10)

	hub.EmitToTrip(10, EventMessageNew, map[string]uint{"tripId": 10})
	assert.Equal(t, EventMessageNew, receiveMessage(t, member).Type)
	assertNoMessage(t, outsider)

	hub.LeaveTrip(member, 10)
	hub.EmitToTrip(10, EventMessageNew, nil)
	assertNoMessage(t, member)
}

func TestHubFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{UserID: 3, Send: make(chan []byte), Hub: hub} // unbuffered, never drained
	hub.Register(client)
	waitForClients(t, hub, 1)

	done := make(chan struct{})
	go func() {
		hub.EmitToUser(3, EventBookingStatus, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EmitToUser blocked on a full send buffer")
	}
}

func TestHubUnregisterLeavesRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 5)
	hub.Register(client)
	waitForClients(t, hub, 1)
	hub.JoinTrip(client, 99)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	// Emitting into the abandoned room must not panic or deliver.
	hub.EmitToTrip(99, EventMessageNew, nil)
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectedClients() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", want)
}
