package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"geocoin.ai/internal/config"
	"geocoin.ai/internal/parser"
	"geocoin.ai/internal/protocol"
)

func main() {
	logger := log.New(os.Stdout, "[play] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.ParsePlay(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.URL, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      cfg.Name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	v := newView()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Printf("disconnected: %v", err)
				return
			}
			line, err := v.apply(msg)
			if err != nil {
				logger.Printf("bad message: %v", err)
				continue
			}
			if line != "" {
				fmt.Println(line)
			}
		}
	}()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	p := parser.New()
	n := 0
	for {
		select {
		case <-stop:
			return
		case <-done:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			cmd, err := p.Parse(line)
			if errors.Is(err, parser.ErrEmpty) {
				continue
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			switch cmd.Verb {
			case "quit":
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
				return
			case "look":
				v.look(os.Stdout)
				continue
			case "inventory":
				v.inventory(os.Stdout)
				continue
			case "help":
				for _, def := range p.Registry().Commands() {
					fmt.Printf("  %s\n", def.Usage)
				}
				continue
			}

			n++
			act, err := parser.ToAct(cmd, fmt.Sprintf("A%d", n))
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := conn.WriteJSON(act); err != nil {
				logger.Printf("send ACT: %v", err)
				return
			}
		}
	}
}
