package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/persistence/store"
	"geocoin.ai/internal/protocol"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/world"
	"geocoin.ai/internal/transport/ws"
)

func newSession(t *testing.T, hub *ws.Hub) *world.Session {
	t.Helper()
	sess := world.New(world.Config{
		SessionID:   "admin-test",
		TileDegrees: 1,
		Radius:      0,
		Start:       grid.Point{Lat: 0.5, Lng: 0.5},
		Hash: func(key string) float64 {
			switch key {
			case "0,0":
				return 0.05
			case "0,0,initialValue":
				return 0.02
			}
			return 0.99
		},
	}, world.Deps{Store: store.NewMemory(), Renderer: hub})
	if _, err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = sess.Run(ctx) }()
	return sess
}

func TestAdmin_RejectsRemoteAndWrongMethod(t *testing.T) {
	hub := ws.NewHub(1)
	s := NewServer(newSession(t, hub), hub, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/state", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	rec := httptest.NewRecorder()
	s.StateHandler()(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("remote state: status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/v1/reset", nil)
	req.RemoteAddr = "127.0.0.1:4567"
	rec = httptest.NewRecorder()
	s.ResetHandler()(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET reset: status %d", rec.Code)
	}
}

func TestAdmin_StateSnapshotReset(t *testing.T) {
	hub := ws.NewHub(1)
	sess := newSession(t, hub)
	sink := make(chan snapshot.SnapshotV1, 4)
	sess.SetSnapshotSink(sink)

	mux := http.NewServeMux()
	NewServer(sess, hub, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/admin/v1/state")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	var st stateResponse
	err = json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.SessionID != "admin-test" || len(st.Visible) != 1 || len(st.Visible[0].Coins) != 2 {
		t.Fatalf("unexpected state: %+v", st)
	}

	resp, err = http.Post(srv.URL+"/admin/v1/snapshot", "application/json", nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot status %d", resp.StatusCode)
	}
	select {
	case snap := <-sink:
		if snap.Header.Reason != "admin" || len(snap.World.Caches) != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap.Header)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no snapshot")
	}

	resp, err = http.Post(srv.URL+"/admin/v1/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status %d", resp.StatusCode)
	}
	if m := sess.Metrics(); m.ResetTotal != 1 {
		t.Fatalf("reset total %d", m.ResetTotal)
	}
	select {
	case snap := <-sink:
		if snap.Header.Reason != "reset" {
			t.Fatalf("expected reset archive, got %q", snap.Header.Reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reset archive")
	}
}

func TestAdmin_SnapshotWithoutSink(t *testing.T) {
	hub := ws.NewHub(1)
	s := NewServer(newSession(t, hub), hub, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/snapshot", nil)
	req.RemoteAddr = "127.0.0.1:4567"
	rec := httptest.NewRecorder()
	s.SnapshotHandler()(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAdmin_WatchSeesUpdates(t *testing.T) {
	hub := ws.NewHub(1)
	sess := newSession(t, hub)

	mux := http.NewServeMux()
	NewServer(sess, hub, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/admin/v1/watch", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := sess.Submit(ctx, world.Event{Kind: world.EventStep, DI: 1}); err != nil {
		t.Fatalf("step: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		base, _ := protocol.DecodeBase(b)
		if base.Type == protocol.TypeHide {
			var h protocol.HideMsg
			_ = json.Unmarshal(b, &h)
			if h.Cell != "0,0" {
				t.Fatalf("unexpected hide %+v", h)
			}
			return
		}
	}
}
