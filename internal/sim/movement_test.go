package sim

import (
	"math"
	"testing"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIntegrateForwardOneStep(t *testing.T) {
	p := &world.Player{Position: vecmath.Vec3{0, 1, 0}}
	got := Integrate(p, 0, world.InputState{Forward: true}, 1.0/60.0, false, DefaultMovement())

	if !near(got[0], 0) || !near(got[2], -0.25) {
		t.Fatalf("position = %v, want x=0 z=-0.25", got)
	}
	if got[1] >= 1 {
		t.Fatalf("gravity not applied, y = %v", got[1])
	}
	if p.Position != got {
		t.Fatal("Integrate must write the position back")
	}
}

func TestIntegrateDeterministic(t *testing.T) {
	inputs := []world.InputState{
		{Forward: true},
		{Forward: true, Right: true, Sprint: true},
		{Left: true, Jump: true},
		{Backward: true, Jump: true},
		{Right: true},
		{},
	}
	run := func() []vecmath.Vec3 {
		p := &world.Player{Position: vecmath.Vec3{3, 0, -2}}
		var out []vecmath.Vec3
		prev := false
		yaw := 0.3
		for i := 0; i < 120; i++ {
			in := inputs[i%len(inputs)]
			out = append(out, Integrate(p, yaw, in, InputDt, prev, DefaultMovement()))
			prev = in.Jump
			yaw += 0.07
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("step %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestIntegrateDiagonalNormalized(t *testing.T) {
	m := DefaultMovement()
	for _, in := range []world.InputState{
		{Forward: true, Right: true},
		{Forward: true, Left: true},
		{Backward: true, Right: true},
	} {
		p := &world.Player{}
		got := Integrate(p, 1.1, in, InputDt, false, m)
		step := math.Hypot(got[0], got[2])
		if !near(step, m.BaseSpeed*InputDt) {
			t.Fatalf("%+v: horizontal step = %v, want %v", in, step, m.BaseSpeed*InputDt)
		}
	}
}

func TestIntegrateOpposingInputsCancel(t *testing.T) {
	p := &world.Player{}
	got := Integrate(p, 0.5, world.InputState{Forward: true, Backward: true}, InputDt, false, DefaultMovement())
	if got != (vecmath.Vec3{}) {
		t.Fatalf("opposing inputs moved the player to %v", got)
	}
}

func TestIntegrateSprint(t *testing.T) {
	m := DefaultMovement()
	p := &world.Player{}
	got := Integrate(p, 0, world.InputState{Forward: true, Sprint: true}, InputDt, false, m)
	if want := -m.BaseSpeed * m.SprintMultiplier * InputDt; !near(got[2], want) {
		t.Fatalf("z = %v, want %v", got[2], want)
	}
}

func TestIntegrateIdleGroundedFastExit(t *testing.T) {
	p := &world.Player{Position: vecmath.Vec3{4, 0, 4}, VerticalVelocity: 0}
	got := Integrate(p, 0, world.InputState{Sprint: true}, InputDt, false, DefaultMovement())
	if got != (vecmath.Vec3{4, 0, 4}) || p.VerticalVelocity != 0 {
		t.Fatalf("idle grounded player changed: pos %v vv %v", got, p.VerticalVelocity)
	}
}

func TestJumpRisingEdgeOnly(t *testing.T) {
	m := DefaultMovement()
	p := &world.Player{}
	jump := world.InputState{Jump: true}

	Integrate(p, 0, jump, InputDt, false, m)
	if !near(p.VerticalVelocity, m.JumpImpulse) {
		t.Fatalf("first press: vv = %v, want %v", p.VerticalVelocity, m.JumpImpulse)
	}
	if !near(p.Position[1], m.JumpImpulse*InputDt) {
		t.Fatalf("first press: y = %v", p.Position[1])
	}

	Integrate(p, 0, jump, InputDt, true, m)
	if want := m.JumpImpulse + m.Gravity*InputDt; !near(p.VerticalVelocity, want) {
		t.Fatalf("held jump re-applied impulse: vv = %v, want %v", p.VerticalVelocity, want)
	}
}

func TestJumpNeedsGround(t *testing.T) {
	m := DefaultMovement()
	p := &world.Player{Position: vecmath.Vec3{0, 0.5, 0}}
	Integrate(p, 0, world.InputState{Jump: true}, InputDt, false, m)
	if want := m.Gravity * InputDt; !near(p.VerticalVelocity, want) {
		t.Fatalf("airborne jump applied: vv = %v, want %v", p.VerticalVelocity, want)
	}
}

func TestGroundClamp(t *testing.T) {
	p := &world.Player{Position: vecmath.Vec3{0, 0.001, 0}, VerticalVelocity: -5}
	got := Integrate(p, 0, world.InputState{}, InputDt, false, DefaultMovement())
	if got[1] != 0 || p.VerticalVelocity != 0 {
		t.Fatalf("y = %v vv = %v, want both 0", got[1], p.VerticalVelocity)
	}
}

func TestApplyInput(t *testing.T) {
	p := &world.Player{Position: vecmath.Vec3{0, 1, 0}, CurrentAnimation: world.AnimIdle}
	in := world.InputState{Forward: true, Sprint: true, Attack: true, Sequence: 12}
	ApplyInput(p, in, math.Pi, "run", DefaultMovement())

	if p.Rotation[1] != math.Pi {
		t.Fatalf("yaw = %v", p.Rotation[1])
	}
	if p.LastInputSeq != 12 || p.Input != in {
		t.Fatalf("input not stored: %+v", p.Input)
	}
	if !p.IsMoving || !p.IsRunning || !p.IsAttacking {
		t.Fatalf("derived flags: moving=%v running=%v attacking=%v", p.IsMoving, p.IsRunning, p.IsAttacking)
	}
	if p.CurrentAnimation != "run" {
		t.Fatalf("animation = %q", p.CurrentAnimation)
	}
	// yaw pi faces +Z
	if p.Position[2] <= 0 {
		t.Fatalf("z = %v, want positive", p.Position[2])
	}

	ApplyInput(p, world.InputState{Sequence: 13}, math.Pi, "", DefaultMovement())
	if p.CurrentAnimation != "run" {
		t.Fatal("empty hint must keep the previous animation")
	}
	if p.IsMoving || p.IsRunning {
		t.Fatal("flags not cleared on idle input")
	}
}
