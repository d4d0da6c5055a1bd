package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MovementDriver advances the plank along the rope and maps the final balance
// score onto travel speed. A floor speed guarantees forward progress whether
// the rider is balanced or not; the plank only stops at a rope end.
type MovementDriver struct {
	tun *Tuning

	t         float64 // normalized path position, 0..1
	direction float64 // +1 toward PathEnd, -1 back
	moving    bool
}

func NewMovementDriver(tun *Tuning) *MovementDriver {
	return &MovementDriver{tun: tun, direction: 1}
}

// Start begins a ride from whichever end the plank is parked at.
func (m *MovementDriver) Start() { m.moving = true }

// Stop parks the plank without changing position or direction.
func (m *MovementDriver) Stop() { m.moving = false }

func (m *MovementDriver) Moving() bool { return m.moving }

func (m *MovementDriver) PathT() float64 { return m.t }

func (m *MovementDriver) Direction() float64 { return m.direction }

// Speed maps a final score to travel speed through the response curve.
func (m *MovementDriver) Speed(finalScore float64) float64 {
	curved := math.Pow(clamp01(finalScore), m.tun.ResponseExp)
	return clamp(curved*m.tun.SpeedMax, m.tun.SpeedFloor, m.tun.SpeedMax)
}

// Step advances the path position by dt. It reports true exactly once, on the
// tick the plank reaches a rope end; the travel direction is flipped for the
// next ride and the plank stops.
func (m *MovementDriver) Step(finalScore, dt float64) (arrived bool) {
	if !m.moving {
		return false
	}
	length := m.pathLength()
	if length < vecEpsilon {
		return false
	}
	m.t += m.direction * m.Speed(finalScore) * dt / length
	if m.t >= 1 || m.t <= 0 {
		m.t = clamp01(m.t)
		m.direction = -m.direction
		m.moving = false
		return true
	}
	return false
}

// Position is the plank's world position: linear interpolation between the
// rope endpoints plus a vertical droop term. The droop is a parabola scaled
// by SagMagnitude, which reads as a catenary without simulating one.
func (m *MovementDriver) Position() mgl64.Vec3 {
	start := mgl64.Vec3(m.tun.PathStart)
	end := mgl64.Vec3(m.tun.PathEnd)
	pos := start.Add(end.Sub(start).Mul(m.t))
	sag := m.tun.SagMagnitude * 4 * m.t * (1 - m.t)
	return pos.Sub(mgl64.Vec3{0, sag, 0})
}

func (m *MovementDriver) pathLength() float64 {
	return mgl64.Vec3(m.tun.PathEnd).Sub(mgl64.Vec3(m.tun.PathStart)).Len()
}
