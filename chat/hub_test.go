package chat

import (
	"testing"
	"time"
)

func newTestClient(room string) *Client {
	return &Client{Send: make(chan []byte, 4), Room: room, UserID: "u-" + room}
}

func TestHubBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := newTestClient("room1")
	b := newTestClient("room1")
	c := newTestClient("room2")
	hub.register <- a
	hub.register <- b
	hub.register <- c

	hub.Broadcast("room1", []byte("halo"))

	for _, cl := range []*Client{a, b} {
		select {
		case msg := <-cl.Send:
			if string(msg) != "halo" {
				t.Fatalf("got %q, want %q", msg, "halo")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}

	select {
	case msg := <-c.Send:
		t.Fatalf("room2 client received %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	cl := newTestClient("room1")
	hub.register <- cl
	hub.unregister <- cl

	select {
	case _, open := <-cl.Send:
		if open {
			t.Fatal("expected Send to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Send to close")
	}
}

func TestHubStopClosesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient("room1")
	b := newTestClient("room2")
	hub.register <- a
	hub.register <- b

	hub.Stop()

	for _, cl := range []*Client{a, b} {
		select {
		case _, open := <-cl.Send:
			if open {
				t.Fatal("expected Send to be closed")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for Send to close")
		}
	}
}
