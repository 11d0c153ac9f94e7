package handler

import (
	"math"
	gonet "net"
	"testing"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/sim"
	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap/zaptest"
)

type harness struct {
	reg  *packet.Registry
	deps *Deps
	t    *testing.T
}

func newHarness(t *testing.T) *harness {
	log := zaptest.NewLogger(t)
	svc := game.NewService(world.NewStore(nil), game.Options{
		Params:    sim.DefaultParams(),
		Lifecycle: sim.LifecycleParams{Spawn: sim.DefaultSpawn()},
	}, log)
	deps := &Deps{Game: svc, Sessions: net.NewSessionStore(), Config: config.Default(), Log: log}
	reg := packet.NewRegistry(log)
	RegisterAll(reg, deps)
	return &harness{reg: reg, deps: deps, t: t}
}

func (h *harness) session(id uint64) *net.Session {
	c, s := gonet.Pipe()
	h.t.Cleanup(func() { c.Close(); s.Close() })
	sess := net.NewSession(s, id, net.SessionOptions{InQueueSize: 4, OutQueueSize: 32}, h.deps.Log)
	h.deps.Sessions.Add(sess)
	return sess
}

func (h *harness) send(sess *net.Session, w *packet.Writer) [][]byte {
	h.t.Helper()
	if err := h.reg.Dispatch(sess, sess.State(), w.Bytes()); err != nil {
		h.t.Fatalf("dispatch %d: %v", w.Bytes()[0], err)
	}
	sess.FlushOutput()
	var out [][]byte
	for {
		select {
		case p := <-sess.OutQueue:
			out = append(out, p)
		default:
			return out
		}
	}
}

func result(t *testing.T, pkts [][]byte) (op, code byte) {
	t.Helper()
	if len(pkts) != 1 || pkts[0][0] != packet.S_OPCODE_RESULT {
		t.Fatalf("want one S_RESULT, got %v", pkts)
	}
	r := packet.NewReader(pkts[0])
	return r.ReadC(), r.ReadC()
}

func hello(token string) *packet.Writer {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_HELLO)
	w.WriteS(token)
	return w
}

func register(name, class string) *packet.Writer {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_REGISTER)
	w.WriteS(name)
	w.WriteS(class)
	return w
}

func TestHelloBindsIdentity(t *testing.T) {
	h := newHarness(t)
	a := h.session(1)

	out := h.send(a, hello("tok"))
	if len(out) != 1 || out[0][0] != packet.S_OPCODE_WELCOME {
		t.Fatalf("want S_WELCOME, got %v", out)
	}
	r := packet.NewReader(out[0])
	if got := r.ReadS(); got != world.IdentityFromToken("tok").String() {
		t.Fatalf("identity = %s", got)
	}
	if got := r.ReadS(); got != "tok" {
		t.Fatalf("token echo = %q", got)
	}
	if a.State() != packet.StateConnected {
		t.Fatalf("state = %v", a.State())
	}

	b := h.session(2)
	if op, code := result(t, h.send(b, hello("tok"))); op != packet.C_OPCODE_HELLO || code != packet.ResultBadRequest {
		t.Fatalf("duplicate hello: op %d code %d", op, code)
	}
	if b.State() != packet.StateHandshake {
		t.Fatal("rejected hello must leave the session in handshake")
	}
}

func TestHelloMintsToken(t *testing.T) {
	h := newHarness(t)
	a := h.session(1)
	out := h.send(a, hello(""))
	r := packet.NewReader(out[0])
	id := r.ReadS()
	token := r.ReadS()
	if len(token) != 48 || id != world.IdentityFromToken(token).String() {
		t.Fatalf("minted token %q identity %s", token, id)
	}
}

func TestRegisterInputCastFlow(t *testing.T) {
	h := newHarness(t)
	a := h.session(1)
	h.send(a, hello("tok"))

	if err := h.reg.Dispatch(a, a.State(), []byte{packet.C_OPCODE_CAST, 0, 0}); err == nil {
		t.Fatal("cast before register must be refused by the state gate")
	}

	if _, code := result(t, h.send(a, register("alice", "paladin"))); code != packet.ResultOK {
		t.Fatalf("register code %d", code)
	}
	if a.State() != packet.StateInWorld || a.Username != "alice" {
		t.Fatalf("state %v username %q", a.State(), a.Username)
	}
	if _, code := result(t, h.send(a, register("alice", "paladin"))); code != packet.ResultAlreadyActive {
		t.Fatalf("second register code %d", code)
	}

	in := packet.NewWriterWithOpcode(packet.C_OPCODE_INPUT)
	in.WriteC(world.InputForward)
	in.WriteDU(1)
	in.WriteF(0)
	in.WriteS("walk")
	if out := h.send(a, in); len(out) != 0 {
		t.Fatalf("accepted input must not answer, got %v", out)
	}
	if p := h.deps.Game.Snapshot().Players[0]; p.Position[2] >= 0 || p.LastInputSeq != 1 {
		t.Fatalf("player after input = %+v", p)
	}

	cast := packet.NewWriterWithOpcode(packet.C_OPCODE_CAST)
	cast.WriteS("")
	cast.WriteBool(true)
	cast.WriteVec3([3]float64{1, 0, 0})
	if _, code := result(t, h.send(a, cast)); code != packet.ResultOK {
		t.Fatalf("cast code %d", code)
	}
	if _, code := result(t, h.send(a, cast)); code != packet.ResultOnCooldown {
		t.Fatalf("second cast code %d", code)
	}

	unknown := packet.NewWriterWithOpcode(packet.C_OPCODE_CAST)
	unknown.WriteS("meteor")
	unknown.WriteC(0)
	if _, code := result(t, h.send(a, unknown)); code != packet.ResultUnknownAbility {
		t.Fatalf("unknown ability code %d", code)
	}

	truncated := packet.NewWriterWithOpcode(packet.C_OPCODE_CAST)
	truncated.WriteS("")
	truncated.WriteC(1)
	truncated.WriteF(1)
	if _, code := result(t, h.send(a, truncated)); code != packet.ResultBadRequest {
		t.Fatalf("truncated cast code %d", code)
	}

	nanAim := packet.NewWriterWithOpcode(packet.C_OPCODE_CAST)
	nanAim.WriteS("")
	nanAim.WriteBool(true)
	nanAim.WriteVec3([3]float64{math.NaN(), 0, 0})
	if _, code := result(t, h.send(a, nanAim)); code != packet.ResultBadRequest {
		t.Fatalf("NaN aim code %d", code)
	}
}

func TestInputRejectsNonFiniteYaw(t *testing.T) {
	h := newHarness(t)
	a := h.session(1)
	h.send(a, hello("tok"))
	if _, code := result(t, h.send(a, register("alice", "paladin"))); code != packet.ResultOK {
		t.Fatalf("register code %d", code)
	}
	before := h.deps.Game.Snapshot().Players[0]

	for _, yaw := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := packet.NewWriterWithOpcode(packet.C_OPCODE_INPUT)
		in.WriteC(world.InputForward)
		in.WriteDU(3)
		in.WriteF(yaw)
		in.WriteS("walk")
		if op, code := result(t, h.send(a, in)); op != packet.C_OPCODE_INPUT || code != packet.ResultBadRequest {
			t.Fatalf("yaw %v: op %d code %d", yaw, op, code)
		}
	}
	after := h.deps.Game.Snapshot().Players[0]
	if after.Position != before.Position || after.Rotation != before.Rotation || after.LastInputSeq != 0 {
		t.Fatalf("rejected input changed the player: %+v", after)
	}
}

func TestPingAndQuit(t *testing.T) {
	h := newHarness(t)
	a := h.session(1)

	ping := packet.NewWriterWithOpcode(packet.C_OPCODE_PING)
	ping.WriteDU(77)
	out := h.send(a, ping)
	if len(out) != 1 || out[0][0] != packet.S_OPCODE_PONG {
		t.Fatalf("want S_PONG, got %v", out)
	}
	if nonce := packet.NewReader(out[0]).ReadDU(); nonce != 77 {
		t.Fatalf("nonce = %d", nonce)
	}

	h.send(a, packet.NewWriterWithOpcode(packet.C_OPCODE_QUIT))
	if !a.IsClosed() {
		t.Fatal("quit must close the session")
	}
}

func TestResultCode(t *testing.T) {
	cases := []struct {
		err  error
		want byte
	}{
		{nil, packet.ResultOK},
		{sim.ErrNotFound, packet.ResultNotFound},
		{&sim.CooldownError{Ability: "x"}, packet.ResultOnCooldown},
		{sim.ErrUnknownAbility, packet.ResultUnknownAbility},
		{gonet.ErrClosed, packet.ResultInternal},
	}
	for _, c := range cases {
		if got := resultCode(c.err); got != c.want {
			t.Fatalf("resultCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
