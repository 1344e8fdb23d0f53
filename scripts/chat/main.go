package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"

	"github.com/vovakirdan/linechat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "localhost:49161", "server address; ws:// URLs use the WebSocket gateway")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "", "room to join after connecting")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, err := dial(ctx, *addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	send := func(line string) error {
		_, err := io.WriteString(conn, line+"\n")
		return err
	}

	if err := send(*user); err != nil {
		return fmt.Errorf("send username: %w", err)
	}
	if *room != "" {
		if err := send("/join " + *room); err != nil {
			return fmt.Errorf("send join: %w", err)
		}
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type messages or /create, /join, /leave, /list, /kick. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(conn)
	}()

	writeLoop(ctx, send)
	return nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		ws, _, err := websocket.Dial(ctx, addr, nil)
		if err != nil {
			return nil, err
		}
		return websocket.NetConn(ctx, ws, websocket.MessageText), nil
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func readLoop(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("read error: %v", err)
			}
			return
		}
		line = proto.TrimLine(line)

		if rooms, ok := proto.ParseRoomListFrame(line); ok {
			fmt.Printf("[rooms] %s\n", strings.Join(rooms, ", "))
			continue
		}
		if line == proto.PromptUsername {
			continue
		}
		fmt.Println(line)
	}
}

func writeLoop(ctx context.Context, send func(string) error) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := send(line); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
