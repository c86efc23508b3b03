package net

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func recvLine(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case line := <-ch:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func readReply(t *testing.T, r *bufio.Reader, c net.Conn) string {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return strings.TrimRight(line, "\n")
}

func TestSessionQueuesCleanLines(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	s := NewSession(server, 1, 8, 8, time.Minute, time.Second, zap.NewNop())
	s.Start("")
	defer s.Close()

	go func() {
		client.Write([]byte("css_haunt\r\n\n   \n  haunt_status  \n"))
	}()

	if got := recvLine(t, s.InQueue); got != "css_haunt" {
		t.Fatalf("first line = %q", got)
	}
	if got := recvLine(t, s.InQueue); got != "haunt_status" {
		t.Fatalf("second line = %q", got)
	}
}

func TestSessionBuffersUntilFlush(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	s := NewSession(server, 1, 8, 8, time.Minute, time.Second, zap.NewNop())
	s.Start("hauntess console")
	defer s.Close()

	r := bufio.NewReader(client)
	if got := readReply(t, r, client); got != "hauntess console" {
		t.Fatalf("greeting = %q", got)
	}

	s.Send("one")
	s.Reply("mode=%s players=%d", "haunted", 3)
	if len(s.OutQueue) != 0 {
		t.Fatal("reply written before flush")
	}
	s.FlushOutput()

	if got := readReply(t, r, client); got != "one" {
		t.Fatalf("reply = %q", got)
	}
	if got := readReply(t, r, client); got != "mode=haunted players=3" {
		t.Fatalf("reply = %q", got)
	}
}

func TestSessionClosesOnFullOutput(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	// Not started: nothing drains OutQueue.
	s := NewSession(server, 1, 1, 1, 0, 0, zap.NewNop())
	s.Send("a")
	s.Send("b")
	s.FlushOutput()
	if !s.IsClosed() {
		t.Fatal("session should close when output queue overflows")
	}
	s.Send("c")
	if len(s.outBuf) != 0 {
		t.Fatal("send after close should be ignored")
	}
	s.Close()
}

func TestSessionEndsOnPeerClose(t *testing.T) {
	server, client := net.Pipe()
	s := NewSession(server, 1, 8, 8, time.Minute, time.Second, zap.NewNop())
	s.Start("")
	client.Close()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close after peer hung up")
	}
}

func TestLocalSession(t *testing.T) {
	in := strings.NewReader("players\nhelp\n")
	var out strings.Builder
	s := NewLocalSession(in, &out, 7, 4, 4, zap.NewNop())
	if s.IP != "local" {
		t.Fatalf("IP = %q", s.IP)
	}
	s.Start("")
	if got := recvLine(t, s.InQueue); got != "players" {
		t.Fatalf("line = %q", got)
	}
	if got := recvLine(t, s.InQueue); got != "help" {
		t.Fatalf("line = %q", got)
	}
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("local session did not end at EOF")
	}
}

func TestCleanLineAndWriteLine(t *testing.T) {
	if got := CleanLine("  kill 3 \r\n"); got != "kill 3" {
		t.Fatalf("CleanLine = %q", got)
	}
	var b strings.Builder
	if err := WriteLine(&b, "ok\n"); err != nil {
		t.Fatal(err)
	}
	if b.String() != "ok\n" {
		t.Fatalf("WriteLine wrote %q", b.String())
	}
}
