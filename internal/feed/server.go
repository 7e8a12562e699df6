package feed

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server accepts line-oriented TCP subscribers.
type Server struct {
	Addr   string
	Hub    *Hub
	Logger *zap.Logger

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Hub: hub, Logger: logger}
}

// Run blocks until Close is called or the listener fails.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.Logger.Info("tcp feed listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Logger.Warn("tcp accept", zap.Error(err))
			continue
		}

		s.Hub.Add(conn)
		s.Hub.Welcome(conn)
		s.Logger.Debug("tcp client connected", zap.Stringer("remote", conn.RemoteAddr()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Logger.Debug("tcp client disconnected", zap.Stringer("remote", c.RemoteAddr()))
			}()

			// Subscribers only listen; drain whatever they send.
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
