package packet

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriterReaderFields(t *testing.T) {
	w := NewWriterWithOpcode(C_OPCODE_INPUT)
	w.WriteC(0x2a)
	w.WriteH(513)
	w.WriteD(-7)
	w.WriteDU(math.MaxUint32)
	w.WriteF(-1.25)
	w.WriteS("run")
	w.WriteS("")

	r := NewReader(w.Bytes())
	if r.Opcode() != C_OPCODE_INPUT {
		t.Fatalf("opcode = %d", r.Opcode())
	}
	if got := r.ReadC(); got != 0x2a {
		t.Fatalf("ReadC = %#x", got)
	}
	if got := r.ReadH(); got != 513 {
		t.Fatalf("ReadH = %d", got)
	}
	if got := r.ReadD(); got != -7 {
		t.Fatalf("ReadD = %d", got)
	}
	if got := r.ReadDU(); got != math.MaxUint32 {
		t.Fatalf("ReadDU = %d", got)
	}
	if got := r.ReadF(); got != -1.25 {
		t.Fatalf("ReadF = %v", got)
	}
	if got := r.ReadS(); got != "run" {
		t.Fatalf("ReadS = %q", got)
	}
	if got := r.ReadS(); got != "" {
		t.Fatalf("ReadS = %q", got)
	}
	if r.Remaining() != 0 || r.Short() {
		t.Fatalf("remaining %d short %v", r.Remaining(), r.Short())
	}
}

func TestReaderShort(t *testing.T) {
	r := NewReader([]byte{C_OPCODE_PING, 1, 2})
	if got := r.ReadDU(); got != 0 {
		t.Fatalf("short ReadDU = %d, want 0", got)
	}
	if !r.Short() {
		t.Fatal("reader should be marked short")
	}
}

func TestReadSNormalizes(t *testing.T) {
	w := NewWriterWithOpcode(C_OPCODE_REGISTER)
	w.WriteS("Ame\u0301lie") // e + combining acute
	r := NewReader(w.Bytes())
	if got := r.ReadS(); got != "Am\u00e9lie" {
		t.Fatalf("ReadS = %q, want NFC form", got)
	}
}

func TestWriteSDropsNUL(t *testing.T) {
	w := NewWriter()
	w.WriteS("a\x00b")
	if got := string(w.Bytes()); got != "ab\x00" {
		t.Fatalf("got %q", got)
	}
}

type fakeSession struct{ calls int }

func TestRegistryDispatch(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := NewRegistry(zap.New(core))

	reg.Register(C_OPCODE_PING, []SessionState{StateConnected, StateInWorld}, func(sess any, r *Reader) {
		sess.(*fakeSession).calls++
	})
	reg.Register(C_OPCODE_CAST, []SessionState{StateInWorld}, func(sess any, r *Reader) {
		panic("bad packet")
	})

	s := &fakeSession{}
	if err := reg.Dispatch(s, StateConnected, []byte{C_OPCODE_PING}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if s.calls != 1 {
		t.Fatalf("calls = %d", s.calls)
	}

	if err := reg.Dispatch(s, StateHandshake, []byte{C_OPCODE_PING}); !errors.Is(err, ErrStateNotAllowed) {
		t.Fatalf("state gate not enforced: %v", err)
	}
	if logs.FilterMessage("操作碼在此狀態下不允許").Len() != 1 {
		t.Fatal("rejected opcode not logged")
	}

	if err := reg.Dispatch(s, StateInWorld, []byte{99}); err != nil {
		t.Fatalf("unknown opcodes are ignored, got %v", err)
	}
	if err := reg.Dispatch(s, StateInWorld, nil); !errors.Is(err, ErrEmptyPacket) {
		t.Fatalf("empty packet: %v", err)
	}

	if err := reg.Dispatch(s, StateInWorld, []byte{C_OPCODE_CAST}); !errors.Is(err, ErrHandlerPanic) {
		t.Fatalf("panic must surface as an error, got %v", err)
	}
	if logs.FilterMessage("處理器 panic 已恢復").Len() != 1 {
		t.Fatal("recovered panic not logged")
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d", reg.Len())
	}
	if st := reg.Stats(); st != (DispatchStats{Handled: 1, Unknown: 1, Rejected: 1, Panics: 1}) {
		t.Fatalf("stats = %+v", st)
	}
	if !reg.Allowed(C_OPCODE_PING, StateInWorld) || reg.Allowed(C_OPCODE_CAST, StateConnected) {
		t.Fatal("Allowed disagrees with the registered gates")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(C_OPCODE_QUIT, []SessionState{StateInWorld}, func(any, *Reader) {})
	defer func() {
		if recover() == nil {
			t.Fatal("second registration must panic")
		}
	}()
	reg.Register(C_OPCODE_QUIT, []SessionState{StateInWorld}, func(any, *Reader) {})
}

func TestSessionStateString(t *testing.T) {
	if StateInWorld.String() != "InWorld" || SessionState(42).String() != "Unknown(42)" {
		t.Fatal("unexpected state names")
	}
}
