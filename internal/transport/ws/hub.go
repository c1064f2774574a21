package ws

import (
	"encoding/json"
	"sync"

	"geocoin.ai/internal/protocol"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/model"
	"geocoin.ai/internal/sim/world"
)

// Hub is the session's Renderer: it turns display updates into protocol
// messages and fans them out to every connected client. A client whose queue
// is full is disconnected rather than left with a partial view.
type Hub struct {
	tile float64

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	out    chan []byte
	cancel func()
	gone   bool // guarded by Hub.mu
}

func NewHub(tileDegrees float64) *Hub {
	return &Hub{tile: tileDegrees, clients: map[*client]struct{}{}}
}

func (h *Hub) Show(c *model.Cache)   { h.broadcastCache(protocol.TypeShow, c) }
func (h *Hub) Update(c *model.Cache) { h.broadcastCache(protocol.TypeUpdate, c) }

func (h *Hub) Hide(c *model.Cache) {
	h.broadcast(protocol.HideMsg{
		Type:            protocol.TypeHide,
		ProtocolVersion: protocol.Version,
		Cell:            c.ID(),
	})
}

func (h *Hub) PlayerUpdated(p world.PlayerView) {
	h.broadcast(protocol.PlayerMsg{
		Type:            protocol.TypePlayer,
		ProtocolVersion: protocol.Version,
		Player:          toPlayer(p),
	})
}

// Subscription is a read-only feed of everything the hub broadcasts.
type Subscription struct {
	C    <-chan []byte
	Done <-chan struct{}

	hub  *Hub
	c    *client
	done chan struct{}
	once sync.Once
}

// Subscribe registers a read-only listener. Done is closed when the listener
// falls behind and is dropped, or after Close.
func (h *Hub) Subscribe(buf int) *Subscription {
	if buf <= 0 {
		buf = 256
	}
	out := make(chan []byte, buf)
	sub := &Subscription{C: out, hub: h, done: make(chan struct{})}
	sub.Done = sub.done
	sub.c = &client{out: out, cancel: sub.stop}
	h.add(sub.c)
	return sub
}

func (s *Subscription) Close() {
	s.hub.remove(s.c)
	s.stop()
}

func (s *Subscription) stop() { s.once.Do(func() { close(s.done) }) }

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcastCache(typ string, c *model.Cache) {
	h.broadcast(protocol.CacheMsg{
		Type:            typ,
		ProtocolVersion: protocol.Version,
		Cache:           toCache(world.ViewOf(c, h.tile)),
	})
}

func (h *Hub) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !trySend(c.out, b) {
			delete(h.clients, c)
			c.gone = true
			c.cancel()
		}
	}
}

// add registers c unless it was already removed.
func (h *Hub) add(c *client) {
	h.mu.Lock()
	if !c.gone {
		h.clients[c] = struct{}{}
	}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	c.gone = true
	h.mu.Unlock()
}

func trySend(ch chan []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	default:
		return false
	}
}

func toPoint(p grid.Point) protocol.Point { return protocol.Point{Lat: p.Lat, Lng: p.Lng} }

func toCache(v world.CacheView) protocol.Cache {
	coins := v.Coins
	if coins == nil {
		coins = []string{}
	}
	return protocol.Cache{
		Cell:   v.Cell,
		I:      v.I,
		J:      v.J,
		Bounds: protocol.Bounds{SW: toPoint(v.Bounds.SW), NE: toPoint(v.Bounds.NE)},
		Coins:  coins,
	}
}

func toPlayer(p world.PlayerView) protocol.Player {
	out := protocol.Player{
		Point:    toPoint(p.Point),
		Cell:     p.Cell,
		Coins:    p.Coins,
		Trail:    make([]protocol.Point, len(p.Trail)),
		Tracking: p.Tracking,
	}
	if out.Coins == nil {
		out.Coins = []string{}
	}
	for i, t := range p.Trail {
		out.Trail[i] = toPoint(t)
	}
	return out
}
