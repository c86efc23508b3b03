package net

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server accepts operator console connections and creates Sessions.
// New sessions are handed to the tick loop through a channel.
type Server struct {
	listener     net.Listener
	nextID       atomic.Uint64
	newConns     chan *Session
	inSize       int
	outSize      int
	readTimeout  time.Duration
	writeTimeout time.Duration
	greeting     string
	auth         Authenticator
	log          *zap.Logger
	closeCh      chan struct{}
}

// Options sizes the per-session queues and I/O deadlines.
type Options struct {
	InQueueSize  int
	OutQueueSize int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Greeting     string
	Auth         Authenticator // nil leaves the console open
}

func NewServer(bindAddr string, opts Options, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener:     ln,
		newConns:     make(chan *Session, 16),
		inSize:       opts.InQueueSize,
		outSize:      opts.OutQueueSize,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		greeting:     opts.Greeting,
		auth:         opts.Auth,
		log:          log,
		closeCh:      make(chan struct{}),
	}
	return s, nil
}

// NextID reserves a session ID. Used for sessions not created by the
// accept loop, such as the local stdin console.
func (s *Server) NextID() uint64 {
	return s.nextID.Add(1)
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("console accept failed", zap.Error(err))
			continue
		}

		sess := NewSession(conn, s.NextID(), s.inSize, s.outSize, s.readTimeout, s.writeTimeout, s.log)
		if s.auth != nil {
			sess.RequireAuth(s.auth)
		}
		sess.Start(s.greeting)

		s.log.Info("console connected", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("console queue full, rejecting connection")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
