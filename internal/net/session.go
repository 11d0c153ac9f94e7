package net

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/world"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionOptions sizes the queues and timeouts of one connection.
type SessionOptions struct {
	InQueueSize      int
	OutQueueSize     int
	PacketsPerSecond int           // 0 = unlimited
	WriteTimeout     time.Duration // 0 = 10s
	ReadTimeout      time.Duration // 0 = no idle timeout
}

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn frameConn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP        string
	Transport string

	// Identity is bound by the hello handler (game loop only).
	Identity world.Identity
	Username string

	outBuf [][]byte // buffered packets, flushed by OutputSystem (game loop only)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	writeTimeout time.Duration
	readTimeout  time.Duration

	log *zap.Logger
}

// NewSession wraps a stream connection using the length-prefixed frame codec.
func NewSession(conn net.Conn, id uint64, opt SessionOptions, log *zap.Logger) *Session {
	return newSession(&tcpConn{c: conn}, id, opt, log)
}

// NewWebSocketSession wraps an upgraded websocket connection.
func NewWebSocketSession(conn *websocket.Conn, id uint64, opt SessionOptions, log *zap.Logger) *Session {
	return newSession(newWSConn(conn), id, opt, log)
}

func newSession(fc frameConn, id uint64, opt SessionOptions, log *zap.Logger) *Session {
	if opt.WriteTimeout <= 0 {
		opt.WriteTimeout = 10 * time.Second
	}
	s := &Session{
		ID:           id,
		conn:         fc,
		InQueue:      make(chan []byte, opt.InQueueSize),
		OutQueue:     make(chan []byte, opt.OutQueueSize),
		IP:           fc.RemoteAddr(),
		Transport:    fc.Transport(),
		closeCh:      make(chan struct{}),
		pktPerSec:    opt.PacketsPerSecond,
		writeTimeout: opt.WriteTimeout,
		readTimeout:  opt.ReadTimeout,
		log:          log.With(zap.Uint64("session", id), zap.String("transport", fc.Transport())),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines. The client speaks
// first with C_HELLO, so nothing is written here.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet for sending. The packet is not written until
// FlushOutput is called by OutputSystem.
// Called only from the game loop goroutine, no lock needed on outBuf.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// Pending reports how many packets are buffered but not yet flushed.
func (s *Session) Pending() int { return len(s.outBuf) }

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed once the session shuts down.
func (s *Session) Done() <-chan struct{} { return s.closeCh }

// readLoop runs in its own goroutine. It reads packets from the transport
// and pushes them onto InQueue for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		payload, err := s.conn.ReadPacket()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}

		if !s.allow(time.Now().Unix()) {
			s.log.Warn("封包速率超限，斷開連線", zap.Int("pps", s.pktCount))
			return
		}

		// Block until InQueue has space or session closes. Dropping input
		// would desync the client's sequence numbers.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// allow counts one packet against the per-second budget.
func (s *Session) allow(nowUnix int64) bool {
	if s.pktPerSec <= 0 {
		return true
	}
	if nowUnix != s.pktResetAt {
		s.pktCount = 0
		s.pktResetAt = nowUnix
	}
	s.pktCount++
	return s.pktCount <= s.pktPerSec
}

// writeLoop runs in its own goroutine. It reads packets from OutQueue
// and writes them to the transport.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOnePacket(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// writeOnePacket 寫入單一封包。成功回傳 true。
func (s *Session) writeOnePacket(data []byte) bool {
	if len(data) > 0 {
		s.log.Debug("TX",
			zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
			zap.Int("len", len(data)),
		)
	}
	if err := s.conn.WritePacket(data, time.Now().Add(s.writeTimeout)); err != nil {
		if !s.closed.Load() {
			s.log.Debug("寫入錯誤", zap.Error(err))
		}
		return false
	}
	return true
}
