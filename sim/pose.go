package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PoseSample is a single tick's snapshot of the tracked head and hand poses.
// Positions are meters in world space, Y up. Forward vectors need not be unit
// length; degenerate vectors are tolerated by the scorer.
type PoseSample struct {
	Head  mgl64.Vec3
	Left  mgl64.Vec3
	Right mgl64.Vec3

	HeadFwd  mgl64.Vec3
	LeftFwd  mgl64.Vec3
	RightFwd mgl64.Vec3

	// Valid is false when the tracking source lost a required reference
	// (headset or either controller). The scorer freezes on invalid samples.
	Valid bool
}

// Hand identifies a controller for haptic feedback.
type Hand uint8

const (
	LeftHand Hand = iota
	RightHand
)

func (h Hand) String() string {
	if h == LeftHand {
		return "left"
	}
	return "right"
}

// HapticSink receives haptic pulse commands for a hand. Strength is 0..1,
// duration is seconds. Implementations must not block the tick loop.
type HapticSink interface {
	Pulse(hand Hand, strength, duration float64)
}

// NopHaptics discards all pulses.
type NopHaptics struct{}

func (NopHaptics) Pulse(Hand, float64, float64) {}

const vecEpsilon = 1e-9

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// approach moves v toward target with a single-pole low-pass filter,
// frame-rate independent for small dt.
func approach(v, target, dt, rate float64) float64 {
	return v + (target-v)*math.Min(1, dt*rate)
}

// planarDistance is the horizontal (XZ) distance between two points.
func planarDistance(a, b mgl64.Vec3) float64 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return math.Hypot(dx, dz)
}

// tiltAngle returns the angle in radians between fwd and its horizontal
// projection. A vector with no horizontal component is fully vertical (pi/2);
// a near-zero vector carries no tilt information and reads as level.
func tiltAngle(fwd mgl64.Vec3) float64 {
	if fwd.Len() < vecEpsilon {
		return 0
	}
	planar := mgl64.Vec3{fwd.X(), 0, fwd.Z()}
	if planar.Len() < vecEpsilon {
		return math.Pi / 2
	}
	cos := clamp(fwd.Normalize().Dot(planar.Normalize()), -1, 1)
	return math.Acos(cos)
}
