package admin

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"geocoin.ai/internal/sim/world"
	"geocoin.ai/internal/transport/ws"
)

// Server hosts the loopback-only admin endpoints. They never bypass the
// session goroutine: every request is submitted like a player event.
type Server struct {
	sess *world.Session
	hub  *ws.Hub
	log  *log.Logger

	upgrader websocket.Upgrader
	timeout  time.Duration
}

func NewServer(sess *world.Session, hub *ws.Hub, logger *log.Logger) *Server {
	return &Server{
		sess:    sess,
		hub:     hub,
		log:     logger,
		timeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only anyway
		},
	}
}

// Register mounts every admin route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/v1/state", s.StateHandler())
	mux.HandleFunc("/admin/v1/snapshot", s.SnapshotHandler())
	mux.HandleFunc("/admin/v1/reset", s.ResetHandler())
	mux.HandleFunc("/admin/v1/watch", s.WatchHandler())
}

type stateResponse struct {
	SessionID string            `json:"session_id"`
	Seq       uint64            `json:"seq"`
	Player    world.PlayerView  `json:"player"`
	Visible   []world.CacheView `json:"visible"`
	Metrics   world.Metrics     `json:"metrics"`
}

func (s *Server) StateHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		st, err := s.sess.RequestState(ctx)
		if err != nil {
			writeResult(rw, http.StatusServiceUnavailable, err)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(stateResponse{
			SessionID: st.SessionID,
			Seq:       st.Seq,
			Player:    st.Player,
			Visible:   st.Visible,
			Metrics:   s.sess.Metrics(),
		})
	}
}

func (s *Server) SnapshotHandler() http.HandlerFunc {
	return s.post(func(ctx context.Context) error { return s.sess.RequestSnapshot(ctx) })
}

func (s *Server) ResetHandler() http.HandlerFunc {
	return s.post(func(ctx context.Context) error {
		err := s.sess.RequestReset(ctx)
		if err == nil && s.log != nil {
			s.log.Printf("admin reset")
		}
		return err
	})
}

func (s *Server) post(fn func(ctx context.Context) error) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			writeResult(rw, http.StatusServiceUnavailable, err)
			return
		}
		writeResult(rw, http.StatusOK, nil)
	}
}

// WatchHandler streams every display update the players see, read-only.
func (s *Server) WatchHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		// Subscribe first so nothing broadcast after the upgrade is missed.
		sub := s.hub.Subscribe(1024)
		defer sub.Close()

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Reader: discard input, notice the close.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case <-sub.Done:
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"), time.Now().Add(time.Second))
				return
			case b := <-sub.C:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

func writeResult(rw http.ResponseWriter, status int, err error) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	resp := map[string]any{"ok": err == nil}
	if err != nil {
		resp["error"] = err.Error()
	}
	_ = json.NewEncoder(rw).Encode(resp)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
