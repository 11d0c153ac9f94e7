package net

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ServerOptions configures the listeners. An empty WebSocketAddress
// disables the websocket endpoint.
type ServerOptions struct {
	BindAddress      string
	WebSocketAddress string
	WebSocketPath    string
	Session          SessionOptions
}

// Server accepts TCP and websocket connections and creates Sessions.
// New/dead sessions are communicated to the game loop via channels.
type Server struct {
	listener   net.Listener
	wsListener net.Listener
	httpSrv    *http.Server
	upgrader   websocket.Upgrader

	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	opts     ServerOptions
	log      *zap.Logger
	closeCh  chan struct{}
	closed   atomic.Bool
}

func NewServer(opts ServerOptions, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", opts.BindAddress)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		opts:     opts,
		log:      log,
		closeCh:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if opts.WebSocketAddress != "" {
		wln, err := net.Listen("tcp", opts.WebSocketAddress)
		if err != nil {
			ln.Close()
			return nil, fmt.Errorf("websocket listen: %w", err)
		}
		s.wsListener = wln
		path := opts.WebSocketPath
		if path == "" {
			path = "/ws"
		}
		mux := http.NewServeMux()
		mux.Handle(path, s.WebSocketHandler())
		s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. It accepts TCP connections, creates
// sessions, and pushes them onto the newConns channel.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("連線接受失敗", zap.Error(err))
			continue
		}
		s.admit(NewSession(conn, s.nextID.Add(1), s.opts.Session, s.log))
	}
}

// ServeWebSocket runs the websocket HTTP endpoint until Shutdown. It returns
// immediately when the endpoint is disabled.
func (s *Server) ServeWebSocket() {
	if s.httpSrv == nil {
		return
	}
	if err := s.httpSrv.Serve(s.wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("WebSocket 服務中止", zap.Error(err))
	}
}

// WebSocketHandler upgrades requests into sessions.
func (s *Server) WebSocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.closed.Load() {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug("WebSocket 升級失敗", zap.Error(err))
			return
		}
		s.admit(NewWebSocketSession(conn, s.nextID.Add(1), s.opts.Session, s.log))
	})
}

func (s *Server) admit(sess *Session) {
	sess.Start()
	s.log.Info(fmt.Sprintf("玩家連線  session=%d  ip=%s  transport=%s", sess.ID, sess.IP, sess.Transport))

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("連線佇列已滿，拒絕新連線")
		sess.Close()
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session ID to the game loop.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.deadCh
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.closeCh)
	s.listener.Close()
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
}

// Addr returns the TCP listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// WebSocketAddr returns the websocket listener's address, or nil.
func (s *Server) WebSocketAddr() net.Addr {
	if s.wsListener == nil {
		return nil
	}
	return s.wsListener.Addr()
}
