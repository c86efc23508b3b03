package net

import (
	"bufio"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestServerAcceptsConsoleSessions(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", Options{
		InQueueSize:  4,
		OutQueueSize: 4,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Second,
		Greeting:     "hauntess",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go srv.AcceptLoop()
	defer srv.Shutdown()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var sess *Session
	select {
	case sess = <-srv.NewSessions():
	case <-time.After(2 * time.Second):
		t.Fatal("no session accepted")
	}
	defer sess.Close()
	if sess.ID == 0 {
		t.Fatal("session ID not assigned")
	}

	r := bufio.NewReader(conn)
	if got := readReply(t, r, conn); got != "hauntess" {
		t.Fatalf("greeting = %q", got)
	}

	conn.Write([]byte("haunt_status\n"))
	if got := recvLine(t, sess.InQueue); got != "haunt_status" {
		t.Fatalf("line = %q", got)
	}

	if id := srv.NextID(); id <= sess.ID {
		t.Fatalf("NextID = %d, want > %d", id, sess.ID)
	}
}
