package realtime

import (
	"testing"
	"time"
)

func testClient(buffer int) *Client {
	return &Client{
		send:         make(chan Message, buffer),
		writeTimeout: time.Second,
		pongTimeout:  time.Second,
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestPublishReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub(nil)

	inRoom := testClient(1)
	outside := testClient(1)
	hub.Join("user:u1", inRoom)
	hub.Join("user:u2", outside)

	hub.Publish("user:u1", "wallet:updated", map[string]any{"balance": 50})

	msg := receive(t, inRoom)
	if msg.Event != "wallet:updated" {
		t.Fatalf("unexpected event name %q", msg.Event)
	}

	select {
	case stray := <-outside.send:
		t.Fatalf("client outside the room received %+v", stray)
	default:
	}
}

func TestPublishToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Publish("user:missing", "wallet:updated", nil)
}

func TestLeaveRemovesClientFromAllRooms(t *testing.T) {
	hub := NewHub(nil)

	client := testClient(1)
	hub.Join("user:u1", client)
	hub.Join("channel:c1", client)

	hub.Leave(client)

	if hub.RoomSize("user:u1") != 0 || hub.RoomSize("channel:c1") != 0 {
		t.Fatal("client should be removed from every room")
	}

	// A publish after leave must not panic on the closed send channel.
	hub.Publish("user:u1", "wallet:updated", nil)
}

func TestFullSendQueueDropsMessage(t *testing.T) {
	hub := NewHub(nil)

	client := testClient(1)
	hub.Join("user:u1", client)

	hub.Publish("user:u1", "wallet:updated", 1)
	hub.Publish("user:u1", "wallet:updated", 2)

	first := receive(t, client)
	if first.Data != 1 {
		t.Fatalf("expected first message to survive, got %+v", first)
	}
	select {
	case second := <-client.send:
		t.Fatalf("expected second message dropped, got %+v", second)
	default:
	}
}
