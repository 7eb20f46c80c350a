package client

import "math"

// SimpleStepper 演示用的步进器：只做水平控制、重力与摩擦，没有碰撞
// 真正的碰撞/物理由地图层提供，核心只依赖 Stepper 接口
type SimpleStepper struct {
	FloorY float64
}

func (s SimpleStepper) Step(w *World, inputs map[int]Input, tuning *TuningState) {
	for id, c := range w.Characters {
		if !c.Active {
			continue
		}
		p := tuning.Params(c.TuneZone)
		in := inputs[id]
		grounded := c.Pos.Y() >= s.FloorY

		maxSpeed, accel, friction := p.AirControlSpeed, p.AirControlAccel, p.AirFriction
		if grounded {
			maxSpeed, accel, friction = p.GroundControlSpeed, p.GroundControlAccel, p.GroundFriction
		}

		vx, vy := c.Vel.X(), c.Vel.Y()+p.Gravity
		switch {
		case in.Direction < 0:
			vx = math.Max(vx-accel, -maxSpeed)
		case in.Direction > 0:
			vx = math.Min(vx+accel, maxSpeed)
		default:
			vx *= friction
		}
		if grounded && in.Jump&1 != 0 {
			vy = -p.GroundJumpImpulse
		}

		x, y := c.Pos.X()+vx, c.Pos.Y()+vy
		if y > s.FloorY {
			y, vy = s.FloorY, 0
		}
		c.Pos[0], c.Pos[1] = x, y
		c.Vel[0], c.Vel[1] = vx, vy
	}
	w.Tick++
}
