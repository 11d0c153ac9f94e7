package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState is the protocol phase of a connection.
type SessionState int

const (
	StateHandshake     SessionState = iota // connected, awaiting hello
	StateConnected                         // identity known, not registered
	StateInWorld                           // registered, playing
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateConnected:
		return "Connected"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

var (
	ErrEmptyPacket     = errors.New("empty packet")
	ErrStateNotAllowed = errors.New("opcode not allowed in state")
	ErrHandlerPanic    = errors.New("handler panic")
)

// HandlerFunc is the callback signature for packet handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn      HandlerFunc
	allowed uint32 // bit per SessionState
}

func stateBit(s SessionState) uint32 {
	if s < 0 || s >= 32 {
		return 0
	}
	return 1 << uint(s)
}

// DispatchStats counts dispatch outcomes since the registry was created.
type DispatchStats struct {
	Handled  uint64
	Unknown  uint64
	Rejected uint64
	Panics   uint64
}

// Registry maps opcodes to handlers with state-based access control.
// Dispatch runs on the game loop only.
type Registry struct {
	handlers map[byte]*handlerEntry
	stats    DispatchStats
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]*handlerEntry),
		log:      log,
	}
}

// Len returns the number of registered opcodes.
func (reg *Registry) Len() int { return len(reg.handlers) }

// Stats returns the dispatch counters.
func (reg *Registry) Stats() DispatchStats { return reg.stats }

// Register maps an opcode to a handler, restricted to the given session
// states. Registering an opcode twice panics.
func (reg *Registry) Register(opcode byte, states []SessionState, fn HandlerFunc) {
	if _, dup := reg.handlers[opcode]; dup {
		panic(fmt.Sprintf("packet: opcode %d registered twice", opcode))
	}
	var mask uint32
	for _, s := range states {
		mask |= stateBit(s)
	}
	reg.handlers[opcode] = &handlerEntry{fn: fn, allowed: mask}
}

// Allowed reports whether opcode may be dispatched in state.
func (reg *Registry) Allowed(opcode byte, state SessionState) bool {
	e, ok := reg.handlers[opcode]
	return ok && e.allowed&stateBit(state) != 0
}

// Dispatch finds the handler for the opcode in data[0], validates the
// session state and calls the handler. Unknown opcodes are dropped without
// error; a gated opcode returns ErrStateNotAllowed.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPacket
	}
	opcode := data[0]
	reg.log.Debug("收到封包",
		zap.Uint8("opcode", opcode),
		zap.Int("size", len(data)),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.stats.Unknown++
		reg.log.Debug("未知操作碼", zap.Uint8("opcode", opcode), zap.String("state", state.String()))
		return nil
	}

	if entry.allowed&stateBit(state) == 0 {
		reg.stats.Rejected++
		reg.log.Warn("操作碼在此狀態下不允許",
			zap.Uint8("opcode", opcode),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("%w: opcode %d, state %s", ErrStateNotAllowed, opcode, state)
	}

	if err := reg.safeCall(entry.fn, sess, NewReader(data), opcode); err != nil {
		reg.stats.Panics++
		return err
	}
	reg.stats.Handled++
	return nil
}

// safeCall keeps a bad packet from taking down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("%w: opcode %d: %v", ErrHandlerPanic, opcode, rec)
		}
	}()
	fn(sess, r)
	return nil
}
