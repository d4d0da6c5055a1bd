package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRider(tun Tuning, seed int64) *Rider {
	return NewRider("r1", tun, rand.New(rand.NewSource(seed)), nil, nil)
}

func TestAttachStartsGracePeriod(t *testing.T) {
	tun := DefaultTuning()
	tun.GraceWindow = 2
	tun.DisruptionChance = 0
	r := newTestRider(tun, 1)
	r.Attach()

	assert.True(t, r.IsInGracePeriod())

	pose := levelPose()
	pose.Right[1] += 1 // badly unbalanced, so balance is never regained
	for i := 0; i < 40*3; i++ {
		r.Step(pose, testDt)
	}
	assert.False(t, r.IsInGracePeriod(), "grace must expire without a balanced transition")
	assert.Greater(t, r.TimeSinceBalanced(), tun.GraceWindow)
}

func TestRegainingBalanceRestartsGrace(t *testing.T) {
	tun := DefaultTuning()
	tun.GraceWindow = 1
	tun.DisruptionChance = 0
	r := newTestRider(tun, 1)
	r.Attach()

	bad := levelPose()
	bad.Right[1] += 1
	for i := 0; i < 40*3; i++ {
		r.Step(bad, testDt)
	}
	require.False(t, r.IsInGracePeriod())

	for i := 0; i < 40*3; i++ {
		r.Step(levelPose(), testDt)
	}
	require.True(t, r.IsBalanced())
	assert.Less(t, r.TimeSinceBalanced(), 3.0, "balanced transition must reset the timer")
}

func TestDisruptionPerturbsOffsetOfSteadyRider(t *testing.T) {
	tun := DefaultTuning()
	tun.DisruptionChance = 1
	tun.WarningDelay = 0
	tun.GraceWindow = 0
	tun.MinGap, tun.MaxGap = 0.5, 1
	r := newTestRider(tun, 3)
	r.Attach()

	maxOffset := 0.0
	for i := 0; i < 40*30 && r.Attached(); i++ {
		r.Step(levelPose(), testDt)
		maxOffset = math.Max(maxOffset, math.Abs(r.State().BalanceOffset))
	}
	assert.Greater(t, maxOffset, 0.01, "a perfectly steady rider must still get pushed")
}

func TestRideEndForcesDisruptionTermination(t *testing.T) {
	tun := DefaultTuning()
	tun.DisruptionChance = 1
	tun.WarningDelay = 0
	tun.GraceWindow = 0
	tun.MinGap, tun.MaxGap = 0.1, 0.2
	tun.GustDuration = 600 // effectively endless, so one is active at ride end
	tun.DriftDuration = 600
	tun.OscDuration = 600
	r := newTestRider(tun, 4)

	var endedDir float64
	r.OnRideEnded = func(dir float64) { endedDir = dir }

	r.Attach()
	sawActive := false
	for i := 0; i < 40*60*5 && r.Attached(); i++ {
		r.Step(levelPose(), testDt)
		if r.Generator().Phase() == PhaseActive {
			sawActive = true
		}
	}

	require.True(t, sawActive, "expected a disruption during the ride")
	require.False(t, r.Attached(), "rider detaches at the rope end")
	assert.Equal(t, PhaseIdle, r.Generator().Phase(), "in-flight disruption is force-terminated")
	assert.Equal(t, 1.0, endedDir)
	assert.Equal(t, 1.0, r.PathT())
}

func TestDifficultyResetsOnReattach(t *testing.T) {
	tun := DefaultTuning()
	tun.DifficultyInterval = 1
	tun.DisruptionChance = 0
	r := newTestRider(tun, 5)
	r.Attach()

	for i := 0; i < 40*5 && r.Attached(); i++ {
		r.Step(levelPose(), testDt)
	}
	require.Greater(t, r.Difficulty(), 1.0)
	prev := r.Difficulty()

	r.Detach()
	assert.Equal(t, prev, r.Difficulty(), "detach alone does not reset difficulty")

	r.Attach()
	assert.Equal(t, 1.0, r.Difficulty(), "re-attach resets difficulty")
}

func TestDifficultyNeverDecreasesWhileAttached(t *testing.T) {
	tun := DefaultTuning()
	tun.DifficultyInterval = 0.5
	tun.DisruptionChance = 0
	r := newTestRider(tun, 6)
	r.Attach()

	prev := r.Difficulty()
	for i := 0; i < 40*8 && r.Attached(); i++ {
		r.Step(levelPose(), testDt)
		require.GreaterOrEqual(t, r.Difficulty(), prev)
		prev = r.Difficulty()
	}
}

func TestOnBalanceFiresEveryTick(t *testing.T) {
	tun := DefaultTuning()
	tun.DisruptionChance = 0
	r := newTestRider(tun, 7)

	count := 0
	r.OnBalance = func(st BalanceState) {
		count++
		require.GreaterOrEqual(t, st.FinalScore, 0.0)
		require.LessOrEqual(t, st.FinalScore, 1.0)
	}
	for i := 0; i < 100; i++ {
		r.Step(levelPose(), testDt)
	}
	assert.Equal(t, 100, count)
}

func TestPositionFollowsRide(t *testing.T) {
	tun := DefaultTuning()
	tun.DisruptionChance = 0
	r := newTestRider(tun, 8)
	r.Attach()

	start := r.Position()
	for i := 0; i < 40*2; i++ {
		r.Step(levelPose(), testDt)
	}
	assert.Greater(t, r.Position()[2], start[2], "plank moves along the rope while attached")
}
