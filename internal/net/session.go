package net

import (
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Session is one operator console: a TCP connection or the process's own
// stdin/stdout. Network I/O runs in dedicated goroutines; command lines are
// consumed only from the tick goroutine.
type Session struct {
	ID uint64
	rw io.ReadWriteCloser

	InQueue  chan string // tick loop reads command lines from here
	OutQueue chan string // writer goroutine reads from here

	IP string

	outBuf []string // buffered replies, flushed once per tick (tick goroutine only)

	readTimeout  time.Duration
	writeTimeout time.Duration

	auth         Authenticator // nil: no password required
	authed       atomic.Bool
	authFailures int // reader goroutine only

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize int, readTimeout, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := newSession(conn, id, inSize, outSize, log)
	s.IP = conn.RemoteAddr().String()
	s.readTimeout = readTimeout
	s.writeTimeout = writeTimeout
	return s
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

// NewLocalSession wraps a reader/writer pair, typically os.Stdin and os.Stdout.
func NewLocalSession(in io.Reader, out io.Writer, id uint64, inSize, outSize int, log *zap.Logger) *Session {
	s := newSession(stdio{Reader: in, Writer: out}, id, inSize, outSize, log)
	s.IP = "local"
	return s
}

func newSession(rw io.ReadWriteCloser, id uint64, inSize, outSize int, log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		rw:       rw,
		InQueue:  make(chan string, inSize),
		OutQueue: make(chan string, outSize),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
}

// RequireAuth makes the session reject every line until "auth <password>"
// succeeds. Call before Start.
func (s *Session) RequireAuth(auth Authenticator) {
	s.auth = auth
}

// Authenticated reports whether the session may run commands.
func (s *Session) Authenticated() bool {
	return s.auth == nil || s.authed.Load()
}

// Start writes the greeting (if any) and launches the reader and writer
// goroutines.
func (s *Session) Start(greeting string) {
	if greeting != "" {
		select {
		case s.OutQueue <- greeting:
		default:
		}
	}
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a reply line. Nothing is written until FlushOutput runs.
// Called only from the tick goroutine.
func (s *Session) Send(line string) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, line)
}

// Reply formats and buffers a reply line.
func (s *Session) Reply(format string, args ...any) {
	s.Send(fmt.Sprintf(format, args...))
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop
// goroutine. If OutQueue is full the session is disconnected.
func (s *Session) FlushOutput() {
	for _, line := range s.outBuf {
		select {
		case s.OutQueue <- line:
		default:
			s.log.Warn("console output queue full, closing slow session")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close shuts the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.rw.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop pushes each non-empty line onto InQueue, blocking while the
// queue is full so no command is dropped.
func (s *Session) readLoop() {
	defer s.Close()

	sc := NewLineReader(s.rw)
	for {
		if c, ok := s.rw.(net.Conn); ok && s.readTimeout > 0 {
			c.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil && !s.closed.Load() {
				s.log.Debug("console read error", zap.Error(err))
			}
			return
		}
		line := CleanLine(sc.Text())
		if line == "" {
			continue
		}
		if s.auth != nil && !s.authed.Load() {
			if !s.authenticate(line) {
				return
			}
			continue
		}
		select {
		case s.InQueue <- line:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case line := <-s.OutQueue:
			if !s.writeOne(line) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOne(line string) bool {
	if c, ok := s.rw.(net.Conn); ok && s.writeTimeout > 0 {
		c.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := WriteLine(s.rw, line); err != nil {
		if !s.closed.Load() {
			s.log.Debug("console write error", zap.Error(err))
		}
		return false
	}
	return true
}
