package sim

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDt = 1.0 / 40

func levelPose() PoseSample {
	return PoseSample{
		Head:     mgl64.Vec3{0, 1.7, 0},
		Left:     mgl64.Vec3{-0.6, 1.0, 0},
		Right:    mgl64.Vec3{0.6, 1.0, 0},
		HeadFwd:  mgl64.Vec3{0, 0, 1},
		LeftFwd:  mgl64.Vec3{0, 0, 1},
		RightFwd: mgl64.Vec3{0, 0, 1},
		Valid:    true,
	}
}

func settle(s *BalanceScorer, pose PoseSample, ticks int) BalanceState {
	var st BalanceState
	for i := 0; i < ticks; i++ {
		st = s.Step(pose, testDt)
	}
	return st
}

func TestPerfectPoseScoresOne(t *testing.T) {
	tun := DefaultTuning()
	s := NewBalanceScorer(&tun, nil)

	st := settle(s, levelPose(), 200)
	assert.InDelta(t, 1.0, st.OrientationScore, 1e-6)
	assert.InDelta(t, 1.0, st.DistanceScore, 1e-6)
	assert.InDelta(t, 1.0, st.BalanceScore, 1e-6)
	assert.InDelta(t, 1.0, st.FinalScore, 1e-6)
	assert.InDelta(t, 0.0, st.BalanceOffset, 1e-6)
}

func TestHeightDiffOffsetApproachesWithoutOvershoot(t *testing.T) {
	tun := DefaultTuning()
	tun.OffsetSensitivity = 2
	s := NewBalanceScorer(&tun, nil)

	pose := levelPose()
	pose.Right[1] += 0.3 // right hand 0.3m higher -> target offset 0.6

	prev := 0.0
	for i := 0; i < 400; i++ {
		st := s.Step(pose, testDt)
		require.LessOrEqual(t, st.BalanceOffset, 0.6+1e-9, "offset overshot its target at tick %d", i)
		require.GreaterOrEqual(t, st.BalanceOffset, prev-1e-9, "offset must approach monotonically")
		prev = st.BalanceOffset
	}
	assert.InDelta(t, 0.6, prev, 1e-3)
}

func TestTiltedForwardLowersOrientationScore(t *testing.T) {
	tun := DefaultTuning()
	s := NewBalanceScorer(&tun, nil)

	pose := levelPose()
	pose.RightFwd = mgl64.Vec3{0, 1, 1} // 45 degrees up

	st := settle(s, pose, 400)
	assert.InDelta(t, 1-45.0/tun.MaxDeviationDeg, st.OrientationScore, 1e-3)
}

func TestOrientationCombineMode(t *testing.T) {
	pose := levelPose()
	pose.LeftFwd = mgl64.Vec3{0, 1, 0} // fully vertical, per-hand score 0

	tun := DefaultTuning()
	tun.RequireBothHands = true
	st := settle(NewBalanceScorer(&tun, nil), pose, 400)
	assert.InDelta(t, 0.0, st.OrientationScore, 1e-3, "min combine: one bad hand fails")

	tun2 := DefaultTuning()
	tun2.RequireBothHands = false
	st = settle(NewBalanceScorer(&tun2, nil), pose, 400)
	assert.InDelta(t, 1.0, st.OrientationScore, 1e-3, "max combine: one good hand holds")
}

func TestNarrowHandsLowerDistanceScore(t *testing.T) {
	tun := DefaultTuning()
	tun.MinSeparation = 0.4
	s := NewBalanceScorer(&tun, nil)

	pose := levelPose()
	pose.Left = mgl64.Vec3{-0.05, 1.0, 0}
	pose.Right = mgl64.Vec3{0.05, 1.0, 0}

	st := settle(s, pose, 400)
	assert.InDelta(t, 0.1/0.4, st.DistanceScore, 1e-3)
}

func TestSymmetryPenaltyMultipliesBalanceScore(t *testing.T) {
	tun := DefaultTuning()
	tun.SymmetryPenalty = true
	tun.SymmetryFalloff = 1
	s := NewBalanceScorer(&tun, nil)

	pose := levelPose()
	pose.Right = mgl64.Vec3{1.0, 1.0, 0} // same height, but 1.0m out vs 0.6m

	st := settle(s, pose, 400)
	assert.InDelta(t, 1-0.4, st.BalanceScore, 1e-2)
}

func TestInvalidPoseFreezesState(t *testing.T) {
	tun := DefaultTuning()
	s := NewBalanceScorer(&tun, nil)

	pose := levelPose()
	pose.Right[1] += 0.2
	before := settle(s, pose, 20)

	lost := pose
	lost.Valid = false
	after := settle(s, lost, 50)
	assert.Equal(t, before, after, "state must freeze while tracking is lost")

	resumed := settle(s, pose, 1)
	assert.NotEqual(t, before, resumed, "scoring must resume on recovery")
}

func TestDegenerateForwardVectorsAreSafe(t *testing.T) {
	tun := DefaultTuning()
	s := NewBalanceScorer(&tun, nil)

	pose := levelPose()
	pose.LeftFwd = mgl64.Vec3{}
	pose.RightFwd = mgl64.Vec3{0, 1e-12, 0}

	st := settle(s, pose, 50)
	assert.False(t, st.OrientationScore < 0 || st.OrientationScore > 1)
	assert.False(t, st.FinalScore < 0 || st.FinalScore > 1)
}

func TestScoresStayInRangeForRandomPoses(t *testing.T) {
	tun := DefaultTuning()
	tun.SymmetryPenalty = true
	s := NewBalanceScorer(&tun, nil)
	rng := rand.New(rand.NewSource(7))

	v := func(scale float64) mgl64.Vec3 {
		return mgl64.Vec3{
			(rng.Float64()*2 - 1) * scale,
			(rng.Float64()*2 - 1) * scale,
			(rng.Float64()*2 - 1) * scale,
		}
	}

	for i := 0; i < 5000; i++ {
		st := s.Step(PoseSample{
			Head: v(2), Left: v(2), Right: v(2),
			HeadFwd: v(1), LeftFwd: v(1), RightFwd: v(1),
			Valid: true,
		}, testDt)
		require.GreaterOrEqual(t, st.OrientationScore, 0.0)
		require.LessOrEqual(t, st.OrientationScore, 1.0)
		require.GreaterOrEqual(t, st.DistanceScore, 0.0)
		require.LessOrEqual(t, st.DistanceScore, 1.0)
		require.GreaterOrEqual(t, st.BalanceScore, 0.0)
		require.LessOrEqual(t, st.BalanceScore, 1.0)
		require.GreaterOrEqual(t, st.FinalScore, 0.0)
		require.LessOrEqual(t, st.FinalScore, 1.0)
		require.GreaterOrEqual(t, st.BalanceOffset, -1.0)
		require.LessOrEqual(t, st.BalanceOffset, 1.0)
	}
}

func TestPerturbClampsOffset(t *testing.T) {
	tun := DefaultTuning()
	s := NewBalanceScorer(&tun, nil)
	s.Perturb(5)
	assert.Equal(t, 1.0, s.State().BalanceOffset)
	s.Perturb(-10)
	assert.Equal(t, -1.0, s.State().BalanceOffset)
}
