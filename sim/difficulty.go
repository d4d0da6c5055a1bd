package sim

// DifficultyRamp scales disruption pressure with elapsed ride time. The
// multiplier only moves up between attach and detach; a re-attach resets it
// to 1.
type DifficultyRamp struct {
	tun *Tuning

	multiplier   float64
	lastIncrease float64
}

func NewDifficultyRamp(tun *Tuning) *DifficultyRamp {
	return &DifficultyRamp{tun: tun, multiplier: 1}
}

// Reset restarts the ramp at multiplier 1. Called on (re)attach.
func (d *DifficultyRamp) Reset(now float64) {
	d.multiplier = 1
	d.lastIncrease = now
}

// Step bumps the multiplier whenever a full interval has elapsed.
func (d *DifficultyRamp) Step(now float64) {
	if !d.tun.DifficultyEnabled {
		return
	}
	if now-d.lastIncrease < d.tun.DifficultyInterval {
		return
	}
	d.lastIncrease = now
	d.multiplier += d.tun.DifficultyRate
	if d.multiplier > d.tun.DifficultyMax {
		d.multiplier = d.tun.DifficultyMax
	}
}

func (d *DifficultyRamp) Multiplier() float64 { return d.multiplier }

// StrengthScale grows disruption strength with difficulty.
func (d *DifficultyRamp) StrengthScale() float64 { return d.multiplier }

// GapScale shrinks the time between disruption attempts with difficulty.
func (d *DifficultyRamp) GapScale() float64 { return 1 / d.multiplier }

// Chance derives the effective disruption probability from a base chance.
func (d *DifficultyRamp) Chance(base float64) float64 {
	return clamp01(base * (1 + (d.multiplier-1)*d.tun.ChanceMultiplier))
}
