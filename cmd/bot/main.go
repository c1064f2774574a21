package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"geocoin.ai/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "bot", "client name")
		every = flag.Duration("every", 500*time.Millisecond, "delay between actions")
		seed  = flag.Int64("seed", 0, "random seed (0 = time based)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	b := newBrain(rand.New(rand.NewSource(*seed)))

	msgs := make(chan []byte, 256)
	go func() {
		defer close(msgs)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msgs <- msg
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	tick := time.NewTicker(*every)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if line := b.observe(msg); line != "" {
				logger.Print(line)
			}
		case <-tick.C:
			act, ok := b.next()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(act); err != nil {
				logger.Printf("send ACT: %v", err)
				return
			}
		}
	}
}

// brain walks at random and empties every cache it stands next to.
type brain struct {
	rng     *rand.Rand
	caches  map[string]int
	coins   int
	n       int
	pending bool
}

func newBrain(rng *rand.Rand) *brain {
	return &brain{rng: rng, caches: map[string]int{}}
}

func (b *brain) observe(msg []byte) string {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return ""
	}
	switch base.Type {
	case protocol.TypeWelcome:
		var w protocol.WelcomeMsg
		if err := json.Unmarshal(msg, &w); err != nil {
			return ""
		}
		b.coins = len(w.Player.Coins)
		return fmt.Sprintf("WELCOME session=%s tile=%g radius=%d", w.SessionID, w.TileDegrees, w.Radius)
	case protocol.TypeShow, protocol.TypeUpdate:
		var m protocol.CacheMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return ""
		}
		b.caches[m.Cache.Cell] = len(m.Cache.Coins)
	case protocol.TypeHide:
		var m protocol.HideMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return ""
		}
		delete(b.caches, m.Cell)
	case protocol.TypePlayer:
		var m protocol.PlayerMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return ""
		}
		b.coins = len(m.Player.Coins)
	case protocol.TypeResult:
		var r protocol.ResultMsg
		if err := json.Unmarshal(msg, &r); err != nil {
			return ""
		}
		b.pending = false
		if !r.OK {
			return fmt.Sprintf("%s failed: %s", r.Ref, r.Code)
		}
	}
	return ""
}

// next picks one action: collect from any visible cache with coins, otherwise
// take a random step. Nothing is sent while an action is unanswered.
func (b *brain) next() (protocol.ActMsg, bool) {
	if b.pending {
		return protocol.ActMsg{}, false
	}
	b.n++
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ID:              fmt.Sprintf("B%d", b.n),
	}
	if cell := b.richest(); cell != "" {
		act.Action = protocol.ActCollect
		act.Cell = cell
	} else {
		act.Action = protocol.ActStep
		switch b.rng.Intn(4) {
		case 0:
			act.DI = 1
		case 1:
			act.DI = -1
		case 2:
			act.DJ = 1
		default:
			act.DJ = -1
		}
	}
	b.pending = true
	return act, true
}

func (b *brain) richest() string {
	best, bestN := "", 0
	for cell, n := range b.caches {
		if n > bestN || (n == bestN && n > 0 && cell < best) {
			best, bestN = cell, n
		}
	}
	return best
}
