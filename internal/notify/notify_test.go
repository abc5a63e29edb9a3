package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"event-ticketing/internal/ticketing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

func envelope(seq, eventID uint64) ticketing.Envelope {
	return ticketing.Envelope{
		Seq:          seq,
		At:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Notification: ticketing.EventCanceled{ID: eventID},
	}
}

func unreachableClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRedisPublisherNeverBlocks(t *testing.T) {
	p := NewRedisPublisher(unreachableClient(t), "ticketing-events", 2)
	sub := p.Subscriber()

	done := make(chan struct{})
	go func() {
		for i := uint64(1); i <= 10; i++ {
			sub(envelope(i, 1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber blocked on a full queue")
	}
	if p.Pending() != 2 {
		t.Errorf("expected 2 queued envelopes, got %d", p.Pending())
	}

	p.Close()
	p.Close()
	sub(envelope(11, 1))
}

func TestRedisPublisherDrainsQueue(t *testing.T) {
	p := NewRedisPublisher(unreachableClient(t), "ticketing-events", 8)
	p.Start()
	defer p.Close()

	sub := p.Subscriber()
	for i := uint64(1); i <= 3; i++ {
		sub(envelope(i, 1))
	}

	// Publishing fails against the unreachable server; the worker logs and moves on
	waitFor(t, func() bool { return p.Pending() == 0 })
}

const frontendOrigin = "http://localhost:5173"

func startHub(t *testing.T) (*Hub, string) {
	gin.SetMode(gin.TestMode)
	hub := NewHub([]string{frontendOrigin + "/"})
	router := gin.New()
	router.GET("/api/stream", hub.ServeWS)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/stream"
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) ticketing.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	var env ticketing.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("failed to decode %s: %v", data, err)
	}
	return env
}

func TestHubBroadcast(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Broadcast(envelope(4, 9))

	env := readEnvelope(t, conn)
	if env.Seq != 4 || env.Notification.Kind() != ticketing.KindEventCanceled || env.Notification.EventID() != 9 {
		t.Errorf("unexpected envelope %+v", env)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

func TestHubEventFilter(t *testing.T) {
	hub, url := startHub(t)
	all := dial(t, url)
	filtered := dial(t, url+"?event_id=2")
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Broadcast(envelope(1, 1))
	hub.Broadcast(envelope(2, 2))

	if env := readEnvelope(t, all); env.Seq != 1 {
		t.Errorf("expected seq 1 first, got %d", env.Seq)
	}
	if env := readEnvelope(t, all); env.Seq != 2 {
		t.Errorf("expected seq 2 second, got %d", env.Seq)
	}
	if env := readEnvelope(t, filtered); env.Seq != 2 {
		t.Errorf("filtered client expected seq 2, got %d", env.Seq)
	}
}

func TestHubRejectsBadFilter(t *testing.T) {
	_, url := startHub(t)
	_, resp, err := websocket.DefaultDialer.Dial(url+"?event_id=abc", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Errorf("expected 400 response, got %+v", resp)
	}
}

func TestHubChecksOrigin(t *testing.T) {
	hub, url := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("expected dial from unknown origin to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 response, got %+v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {frontendOrigin}})
	if err != nil {
		t.Fatalf("expected allowed origin to connect: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 1 })
}
