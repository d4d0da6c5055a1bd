package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedFloorGuaranteesProgress(t *testing.T) {
	tun := DefaultTuning()
	m := NewMovementDriver(&tun)

	assert.Equal(t, tun.SpeedFloor, m.Speed(0), "a failing rider still moves")
	assert.Equal(t, tun.SpeedMax, m.Speed(1))
	assert.Greater(t, m.Speed(0.5), tun.SpeedFloor)
	assert.Less(t, m.Speed(0.5), m.Speed(0.9), "speed curve is monotone in score")
}

func TestStepAdvancesAndArrivalFlipsDirection(t *testing.T) {
	tun := DefaultTuning()
	m := NewMovementDriver(&tun)
	m.Start()

	arrivals := 0
	for i := 0; i < 40*60*5 && arrivals == 0; i++ {
		if m.Step(1, testDt) {
			arrivals++
		}
	}
	require.Equal(t, 1, arrivals, "plank never reached the far end")
	assert.Equal(t, 1.0, m.PathT())
	assert.Equal(t, -1.0, m.Direction(), "direction flips for the return ride")
	assert.False(t, m.Moving())

	// A second ride travels back to the start.
	m.Start()
	for i := 0; i < 40*60*5; i++ {
		if m.Step(1, testDt) {
			break
		}
	}
	assert.Equal(t, 0.0, m.PathT())
	assert.Equal(t, 1.0, m.Direction())
}

func TestStoppedDriverDoesNotMove(t *testing.T) {
	tun := DefaultTuning()
	m := NewMovementDriver(&tun)

	for i := 0; i < 100; i++ {
		require.False(t, m.Step(1, testDt))
	}
	assert.Equal(t, 0.0, m.PathT())
}

func TestPositionInterpolatesWithSag(t *testing.T) {
	tun := DefaultTuning()
	tun.PathStart = [3]float64{0, 4, 0}
	tun.PathEnd = [3]float64{0, 4, 12}
	tun.SagMagnitude = 0.6
	m := NewMovementDriver(&tun)

	assert.Equal(t, mgl64.Vec3{0, 4, 0}, m.Position(), "no sag at the near anchor")

	m.t = 0.5
	p := m.Position()
	assert.InDelta(t, 4-0.6, p.Y(), 1e-9, "full droop at mid-path")
	assert.InDelta(t, 6, p.Z(), 1e-9)

	m.t = 1
	assert.Equal(t, mgl64.Vec3{0, 4, 12}, m.Position(), "no sag at the far anchor")
}

func TestDegeneratePathIsSafe(t *testing.T) {
	tun := DefaultTuning()
	tun.PathStart = [3]float64{1, 2, 3}
	tun.PathEnd = [3]float64{1, 2, 3}
	m := NewMovementDriver(&tun)
	m.Start()

	assert.False(t, m.Step(1, testDt))
	assert.Equal(t, 0.0, m.PathT())
}
