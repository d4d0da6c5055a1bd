package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// BalanceState is the smoothed output of the scorer for one rider.
// All scores live in [0,1]; the offset lives in [-1,1]. Positive offset means
// the right hand is high (the plank tips left).
type BalanceState struct {
	OrientationScore float64
	DistanceScore    float64
	BalanceScore     float64
	BalanceOffset    float64
	FinalScore       float64
}

// BalanceScorer converts pose samples into a smoothed BalanceState.
//
// Per tick it computes three targets: an orientation score from each
// controller's tilt away from horizontal, a distance score from controller
// separation, and a balance score plus signed offset from the vertical height
// difference between the hands. Each smoothed value chases its target through
// the same single-pole filter so no score ever jumps in a single tick.
//
// The canonical formula is head-relative with full gating:
// FinalScore = OrientationScore * DistanceScore * BalanceScore.
type BalanceScorer struct {
	tun *Tuning
	log *zap.Logger

	state    BalanceState
	poseLost bool
}

func NewBalanceScorer(tun *Tuning, log *zap.Logger) *BalanceScorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &BalanceScorer{
		tun: tun,
		log: log,
		state: BalanceState{
			OrientationScore: 1,
			DistanceScore:    1,
			BalanceScore:     1,
			FinalScore:       1,
		},
	}
}

// State returns the current smoothed state.
func (s *BalanceScorer) State() BalanceState { return s.state }

// Perturb nudges the smoothed offset accumulator directly. Disruption
// waveforms feed through here; the per-tick smoothing then pulls the offset
// back toward the pose-derived target, so a perturbation decays naturally
// unless the rider's hands keep it alive.
func (s *BalanceScorer) Perturb(delta float64) {
	s.state.BalanceOffset = clamp(s.state.BalanceOffset+delta, -1, 1)
}

// Step advances the smoothed state by dt using the given pose. An invalid
// pose freezes the state at its last values; scoring resumes when tracking
// comes back.
func (s *BalanceScorer) Step(pose PoseSample, dt float64) BalanceState {
	if !pose.Valid {
		if !s.poseLost {
			s.poseLost = true
			s.log.Warn("pose reference lost, balance scoring frozen")
		}
		return s.state
	}
	if s.poseLost {
		s.poseLost = false
		s.log.Info("pose tracking recovered")
	}

	oriTarget := s.orientationTarget(pose)
	distTarget := s.distanceTarget(pose)
	offTarget, balTarget := s.balanceTargets(pose)

	s.state.OrientationScore = clamp01(approach(s.state.OrientationScore, oriTarget, dt, s.tun.SmoothingRate))
	s.state.DistanceScore = clamp01(approach(s.state.DistanceScore, distTarget, dt, s.tun.SmoothingRate))
	s.state.BalanceScore = clamp01(approach(s.state.BalanceScore, balTarget, dt, s.tun.SmoothingRate))
	s.state.BalanceOffset = clamp(approach(s.state.BalanceOffset, offTarget, dt, s.tun.SmoothingRate), -1, 1)
	s.state.FinalScore = s.state.OrientationScore * s.state.DistanceScore * s.state.BalanceScore
	return s.state
}

func (s *BalanceScorer) orientationTarget(pose PoseSample) float64 {
	maxDev := mgl64.DegToRad(s.tun.MaxDeviationDeg)
	if maxDev <= 0 {
		return 1
	}
	left := 1 - clamp01(tiltAngle(pose.LeftFwd)/maxDev)
	right := 1 - clamp01(tiltAngle(pose.RightFwd)/maxDev)
	if s.tun.RequireBothHands {
		return math.Min(left, right)
	}
	return math.Max(left, right)
}

func (s *BalanceScorer) distanceTarget(pose PoseSample) float64 {
	if s.tun.MinSeparation <= 0 {
		return 1
	}
	sep := pose.Right.Sub(pose.Left).Len()
	return clamp01(sep / s.tun.MinSeparation)
}

func (s *BalanceScorer) balanceTargets(pose PoseSample) (offset, score float64) {
	heightDiff := pose.Right.Y() - pose.Left.Y()
	offset = clamp(heightDiff*s.tun.OffsetSensitivity, -1, 1)
	score = clamp01(1 - math.Abs(heightDiff)*s.tun.ScoreFalloff)
	if s.tun.SymmetryPenalty {
		asym := math.Abs(planarDistance(pose.Left, pose.Head) - planarDistance(pose.Right, pose.Head))
		score *= clamp01(1 - asym*s.tun.SymmetryFalloff)
	}
	return offset, score
}
