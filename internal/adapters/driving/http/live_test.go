package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func dialLive(t *testing.T, env *testEnv) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(env.server.Handler())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/live"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	return conn, func() {
		conn.Close()
		env.live.Close()
		ts.Close()
	}
}

func readLive(t *testing.T, conn *websocket.Conn) LiveMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg LiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *LiveHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d live clients, have %d", n, hub.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLive_InitialStateThenUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.load()
	conn, cleanup := dialLive(t, env)
	defer cleanup()

	first := readLive(t, conn)
	if first.Type != LiveMessageState || first.Site == nil {
		t.Fatalf("expected initial state frame, got %+v", first)
	}
	if first.ID == "" {
		t.Error("expected a message id")
	}
	if first.Site.IsLoading {
		t.Error("expected loaded state")
	}
	waitForClients(t, env.live, 1)

	unsubscribe := env.site.OnChange(env.live.PublishState)
	defer unsubscribe()
	pushed := domain.DefaultContent()
	pushed.Hero.Title = "Streamed"
	if err := env.server.pushService.PushContent(context.Background(), pushed); err != nil {
		t.Fatalf("push: %v", err)
	}

	update := readLive(t, conn)
	if update.Type != LiveMessageState || update.Site.Content.Hero.Title != "Streamed" {
		t.Errorf("expected streamed state, got %+v", update)
	}
	if update.ID == first.ID {
		t.Error("expected distinct message ids")
	}
}

func TestLive_Notification(t *testing.T) {
	env := newTestEnv(t)
	conn, cleanup := dialLive(t, env)
	defer cleanup()

	readLive(t, conn)
	waitForClients(t, env.live, 1)

	note := domain.ContentUnavailableNotification()
	note.DurationMs = 4000
	env.live.Notify(context.Background(), note)

	msg := readLive(t, conn)
	if msg.Type != LiveMessageNotification || msg.Notification == nil {
		t.Fatalf("expected notification frame, got %+v", msg)
	}
	if *msg.Notification != note {
		t.Errorf("expected %+v, got %+v", note, *msg.Notification)
	}
}

func TestLive_ClientDisconnect(t *testing.T) {
	env := newTestEnv(t)
	conn, cleanup := dialLive(t, env)
	defer cleanup()

	readLive(t, conn)
	waitForClients(t, env.live, 1)

	conn.Close()
	waitForClients(t, env.live, 0)
}

func TestLive_CloseDisconnectsClients(t *testing.T) {
	env := newTestEnv(t)
	conn, cleanup := dialLive(t, env)
	defer cleanup()

	readLive(t, conn)
	waitForClients(t, env.live, 1)

	env.live.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal closure, got %v", err)
	}
	if env.live.Clients() != 0 {
		t.Errorf("expected no clients after Close, got %d", env.live.Clients())
	}
}

func TestLiveHub_RejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	env.live.upgrader.CheckOrigin = NewLiveHub([]string{"https://site.example.com"}, nil).upgrader.CheckOrigin
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/v1/live", header)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp != nil {
		resp.Body.Close()
		if resp.StatusCode != 403 {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}
	}
}
