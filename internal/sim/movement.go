package sim

import (
	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// Integrate advances p by one step of dt seconds under input in, facing yaw.
// It writes the new Position and VerticalVelocity back into p and returns
// the new position. prevJump is the jump flag of the previous input; a jump
// only starts on its rising edge and only near the ground.
//
// The step is pure in its arguments: the same inputs always produce the
// same output, bit for bit.
func Integrate(p *world.Player, yaw float64, in world.InputState, dt float64, prevJump bool, m MovementParams) vecmath.Vec3 {
	if !in.HasMovement() && !in.Jump && p.Grounded() {
		return p.Position
	}

	speed := m.BaseSpeed
	if in.Sprint {
		speed *= m.SprintMultiplier
	}

	forward, right := vecmath.YawBasis(yaw)
	var dir vecmath.Vec3
	if in.Forward {
		dir = dir.Add(forward)
	}
	if in.Backward {
		dir = dir.Sub(forward)
	}
	if in.Right {
		dir = dir.Add(right)
	}
	if in.Left {
		dir = dir.Sub(right)
	}
	dir, _ = vecmath.NormalizeHorizontal(dir, vecmath.NormalizeEpsilon)

	pos := p.Position
	pos[0] += dir[0] * speed * dt
	pos[2] += dir[2] * speed * dt

	p.VerticalVelocity += m.Gravity * dt
	if in.Jump && !prevJump && pos[1] <= m.JumpTolerance {
		p.VerticalVelocity = m.JumpImpulse
	}
	pos[1] += p.VerticalVelocity * dt
	if pos[1] <= 0 {
		pos[1] = 0
		p.VerticalVelocity = 0
	}

	p.Position = pos
	return pos
}

// ApplyInput stores a client input on p and integrates one input step. Only
// yaw, input flags and the animation hint are taken from the client.
func ApplyInput(p *world.Player, in world.InputState, yaw float64, animation string, m MovementParams) {
	prevJump := p.Input.Jump
	p.Rotation[1] = yaw
	Integrate(p, yaw, in, InputDt, prevJump, m)

	p.Input = in
	p.LastInputSeq = in.Sequence
	if animation != "" {
		p.CurrentAnimation = animation
	}
	p.IsMoving = in.HasMovement()
	p.IsRunning = p.IsMoving && in.Sprint
	p.IsAttacking = in.Attack
	p.Dirty = true
}
