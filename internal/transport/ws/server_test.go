package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"geocoin.ai/internal/persistence/store"
	"geocoin.ai/internal/protocol"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/world"
)

func startServer(t *testing.T) (*httptest.Server, *world.Session) {
	t.Helper()
	hub := NewHub(1)
	sess := world.New(world.Config{
		SessionID:        "ws-test",
		TileDegrees:      1,
		Radius:           0,
		SpawnProbability: 0.1,
		MaxInitialCoins:  100,
		CoinsPerClick:    1,
		Start:            grid.Point{Lat: 0.5, Lng: 0.5},
		Hash: func(key string) float64 {
			switch key {
			case "0,0":
				return 0.05
			case "0,0,initialValue":
				return 0.03
			}
			return 0.99
		},
	}, world.Deps{Store: store.NewMemory(), Renderer: hub})
	if _, err := sess.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = sess.Run(ctx) }()

	srv := httptest.NewServer(NewServer(sess, hub, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, sess
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base.Type, b
}

// readResult skips broadcasts until the RESULT for ref arrives.
func readResult(t *testing.T, conn *websocket.Conn, ref string) protocol.ResultMsg {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, b := readMsg(t, conn)
		if typ != protocol.TypeResult {
			continue
		}
		var r protocol.ResultMsg
		if err := json.Unmarshal(b, &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if r.Ref == ref {
			return r
		}
	}
	t.Fatalf("no RESULT for %s", ref)
	return protocol.ResultMsg{}
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "t"})
	typ, b := readMsg(t, conn)
	if typ != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %s", typ)
	}
	var w protocol.WelcomeMsg
	if err := json.Unmarshal(b, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return w
}

func act(id, action string) protocol.ActMsg {
	return protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, ID: id, Action: action}
}

func TestHandshake_WelcomeThenVisibleCaches(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)

	w := hello(t, conn)
	if w.SessionID != "ws-test" || w.TileDegrees != 1 || w.Player.Cell != "0,0" {
		t.Fatalf("unexpected welcome: %+v", w)
	}

	typ, b := readMsg(t, conn)
	if typ != protocol.TypeShow {
		t.Fatalf("expected SHOW, got %s", typ)
	}
	var m protocol.CacheMsg
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Cache.Cell != "0,0" || len(m.Cache.Coins) != 3 {
		t.Fatalf("unexpected cache: %+v", m.Cache)
	}
	if m.Cache.Bounds.NE.Lat != 1 || m.Cache.Bounds.NE.Lng != 1 {
		t.Fatalf("unexpected bounds: %+v", m.Cache.Bounds)
	}
}

func TestHandshake_RejectsNonHello(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)

	send(t, conn, act("a1", protocol.ActLocate))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestActs_ResultCodes(t *testing.T) {
	srv, sess := startServer(t)
	conn := dial(t, srv)
	hello(t, conn)

	dep := act("d1", protocol.ActDeposit)
	dep.Cell = "0,0"
	send(t, conn, dep)
	if r := readResult(t, conn, "d1"); r.OK || r.Code != protocol.ErrNoResource {
		t.Fatalf("deposit with empty purse: %+v", r)
	}

	col := act("c1", protocol.ActCollect)
	col.Cell = "0,0"
	send(t, conn, col)
	if r := readResult(t, conn, "c1"); !r.OK {
		t.Fatalf("collect: %+v", r)
	}

	bad := act("c2", protocol.ActCollect)
	bad.Cell = "5,5"
	send(t, conn, bad)
	if r := readResult(t, conn, "c2"); r.Code != protocol.ErrInvalidTarget {
		t.Fatalf("collect unknown cell: %+v", r)
	}

	missing := act("c3", protocol.ActCollect)
	send(t, conn, missing)
	if r := readResult(t, conn, "c3"); r.Code != protocol.ErrBadRequest {
		t.Fatalf("collect without cell: %+v", r)
	}

	old := act("v1", protocol.ActLocate)
	old.ProtocolVersion = "0.9"
	old.CoinID = "0:0:0"
	send(t, conn, old)
	if r := readResult(t, conn, "v1"); r.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("wrong version: %+v", r)
	}

	loc := act("l1", protocol.ActLocate)
	loc.CoinID = "0:0:2"
	send(t, conn, loc)
	r := readResult(t, conn, "l1")
	if !r.OK || r.Point == nil || r.Point.Lat != 0.5 || r.Point.Lng != 0.5 {
		t.Fatalf("locate: %+v", r)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := sess.RequestState(ctx)
	if err != nil {
		t.Fatalf("RequestState: %v", err)
	}
	if len(st.Player.Coins) != 1 || st.Player.Coins[0] != "0:0:2" {
		t.Fatalf("player coins: %v", st.Player.Coins)
	}
}

func TestActs_CollectBroadcastsUpdate(t *testing.T) {
	srv, _ := startServer(t)
	a := dial(t, srv)
	b := dial(t, srv)
	hello(t, a)
	hello(t, b)

	col := act("c1", protocol.ActCollect)
	col.Cell = "0,0"
	send(t, a, col)

	for i := 0; i < 10; i++ {
		typ, raw := readMsg(t, b)
		if typ != protocol.TypeUpdate {
			continue
		}
		var m protocol.CacheMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m.Cache.Cell != "0,0" || len(m.Cache.Coins) != 2 {
			t.Fatalf("unexpected update: %+v", m.Cache)
		}
		return
	}
	t.Fatalf("second client never saw UPDATE")
}

func TestCodeFor(t *testing.T) {
	cases := map[error]string{
		nil:                      "",
		world.ErrUnknownCache:    protocol.ErrInvalidTarget,
		world.ErrCacheHidden:     protocol.ErrInvalidTarget,
		world.ErrUnknownEvent:    protocol.ErrBadRequest,
		world.ErrStopped:         protocol.ErrBusy,
		context.DeadlineExceeded: protocol.ErrBusy,
		world.ErrSinkBusy:        protocol.ErrInternal,
	}
	for err, want := range cases {
		if got := CodeFor(err); got != want {
			t.Fatalf("CodeFor(%v)=%q want %q", err, got, want)
		}
	}
}

func TestHub_AddAfterRemoveIsIgnored(t *testing.T) {
	hub := NewHub(1)
	c := &client{out: make(chan []byte, 1), cancel: func() {}}
	hub.remove(c)
	hub.add(c)
	if n := hub.Clients(); n != 0 {
		t.Fatalf("removed client re-registered, clients=%d", n)
	}

	d := &client{out: make(chan []byte, 1), cancel: func() {}}
	hub.add(d)
	if n := hub.Clients(); n != 1 {
		t.Fatalf("clients=%d want 1", n)
	}
}
