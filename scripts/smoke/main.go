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
	"time"

	"github.com/vovakirdan/linechat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("smoke: %v", err)
		os.Exit(1)
	}
}

// run creates a room, joins it, sends one message and waits for the echo.
func run() error {
	addr := flag.String("addr", "localhost:49161", "chat server address")
	user := flag.String("user", "tester", "username")
	room := flag.String("room", "smoke", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", *addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	for _, line := range []string{*user, "/create " + *room, "/join " + *room, *text} {
		if _, err := io.WriteString(conn, line+"\n"); err != nil {
			return fmt.Errorf("send %q: %w", line, err)
		}
	}

	want := proto.ChatLine(*user, *text)
	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		line := proto.TrimLine(raw)
		fmt.Printf("< %s\n", line)
		if line == want {
			return nil
		}
	}
}
