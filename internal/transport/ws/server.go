package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"geocoin.ai/internal/protocol"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ledger"
	"geocoin.ai/internal/sim/world"
)

type Server struct {
	sess *world.Session
	hub  *Hub
	log  *log.Logger

	upgrader websocket.Upgrader
	// Per-action deadline for the session to answer.
	actTimeout time.Duration
}

func NewServer(sess *world.Session, hub *Hub, logger *log.Logger) *Server {
	return &Server{
		sess:       sess,
		hub:        hub,
		log:        logger,
		actTimeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		c := &client{out: make(chan []byte, 256), cancel: cancel}
		if !s.handshake(ctx, conn, c) {
			return
		}
		defer s.hub.remove(c)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					_ = conn.Close()
					return
				case b := <-c.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			res := s.handleMessage(ctx, msg)
			b, _ := json.Marshal(res)
			select {
			case c.out <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handshake reads HELLO, then registers c with the hub in the same session
// turn that reads the state, and writes WELCOME plus a SHOW for every visible
// cache. Broadcasts from later events queue in c.out behind the handshake.
func (s *Server) handshake(ctx context.Context, conn *websocket.Conn, c *client) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "bad HELLO")
		return false
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return false
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	sctx, cancel := context.WithTimeout(ctx, s.actTimeout)
	defer cancel()
	st, err := s.sess.RequestStateWith(sctx, func(world.StateView) { s.hub.add(c) })
	if err != nil {
		s.hub.remove(c)
		closeWith(conn, "session unavailable")
		return false
	}

	if err := writeJSON(conn, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       st.SessionID,
		TileDegrees:     st.Tile,
		Radius:          st.Radius,
		Player:          toPlayer(st.Player),
	}); err != nil {
		s.hub.remove(c)
		return false
	}
	for _, v := range st.Visible {
		if err := writeJSON(conn, protocol.CacheMsg{
			Type:            protocol.TypeShow,
			ProtocolVersion: protocol.Version,
			Cache:           toCache(v),
		}); err != nil {
			s.hub.remove(c)
			return false
		}
	}
	if s.log != nil {
		s.log.Printf("client %q connected from %s", hello.ClientName, conn.RemoteAddr())
	}
	return true
}

func (s *Server) handleMessage(ctx context.Context, msg []byte) protocol.ResultMsg {
	res := protocol.ResultMsg{Type: protocol.TypeResult, ProtocolVersion: protocol.Version}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeAct {
		res.Code, res.Message = protocol.ErrProtoBadRequest, "expected ACT"
		return res
	}
	var act protocol.ActMsg
	if err := json.Unmarshal(msg, &act); err != nil {
		res.Code, res.Message = protocol.ErrProtoBadRequest, "bad ACT"
		return res
	}
	res.Ref = act.ID
	if act.ProtocolVersion != protocol.Version {
		res.Code, res.Message = protocol.ErrProtoBadRequest, "bad protocol_version"
		return res
	}
	if err := act.Validate(); err != nil {
		res.Code, res.Message = protocol.ErrBadRequest, err.Error()
		return res
	}

	actx, cancel := context.WithTimeout(ctx, s.actTimeout)
	defer cancel()

	out, err := s.submit(actx, act)
	if err == nil {
		err = out.Err
	}
	if err != nil {
		res.Code, res.Message = CodeFor(err), err.Error()
		return res
	}
	res.OK = true
	if act.Action == protocol.ActLocate || act.Action == protocol.ActMoveTo || act.Action == protocol.ActStep || act.Action == protocol.ActGeolocate {
		p := toPoint(out.Point)
		res.Point = &p
	}
	return res
}

func (s *Server) submit(ctx context.Context, act protocol.ActMsg) (world.Result, error) {
	ev := world.Event{Cell: act.Cell, CoinID: act.CoinID, DI: act.DI, DJ: act.DJ}
	if act.Lat != nil && act.Lng != nil {
		ev.Point = grid.Point{Lat: *act.Lat, Lng: *act.Lng}
	}
	switch act.Action {
	case protocol.ActMoveTo:
		ev.Kind = world.EventMoveTo
	case protocol.ActStep:
		ev.Kind = world.EventStep
	case protocol.ActGeolocate:
		ev.Kind = world.EventGeolocate
	case protocol.ActTracking:
		ev.Kind = world.EventTracking
		ev.Tracking = *act.Tracking
	case protocol.ActCollect:
		ev.Kind = world.EventCollect
	case protocol.ActDeposit:
		ev.Kind = world.EventDeposit
	case protocol.ActLocate:
		ev.Kind = world.EventLocate
	case protocol.ActReset:
		return world.Result{}, s.sess.RequestReset(ctx)
	}
	return s.sess.Submit(ctx, ev)
}

// CodeFor maps a session error to a protocol error code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ledger.ErrInsufficientCoins):
		return protocol.ErrNoResource
	case errors.Is(err, world.ErrUnknownCache), errors.Is(err, world.ErrCacheHidden), errors.Is(err, world.ErrBadCoinID):
		return protocol.ErrInvalidTarget
	case errors.Is(err, world.ErrUnknownEvent):
		return protocol.ErrBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, world.ErrStopped):
		return protocol.ErrBusy
	default:
		return protocol.ErrInternal
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
