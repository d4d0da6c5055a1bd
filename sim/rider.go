package sim

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Rider owns one complete ride simulation: scorer, disruption generator,
// difficulty ramp and movement driver, advanced together by Step. All state
// belongs to the tick loop that calls Step; there is no internal locking.
type Rider struct {
	ID  string
	tun Tuning
	log *zap.Logger

	scorer *BalanceScorer
	gen    *DisruptionGenerator
	ramp   *DifficultyRamp
	driver *MovementDriver

	now      float64
	tick     int
	attached bool

	lastBalancedAt float64
	wasBalanced    bool

	// OnBalance fires every tick with the freshly smoothed state.
	OnBalance func(BalanceState)
	// OnRideEnded fires when the plank reaches a rope end. The argument is
	// the direction of the ride that just finished.
	OnRideEnded func(direction float64)
}

// NewRider builds a rider simulation. rng drives all disruption randomness;
// pass a seeded source for reproducible rides. haptics and log may be nil.
func NewRider(id string, tun Tuning, rng *rand.Rand, haptics HapticSink, log *zap.Logger) *Rider {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("rider", id))
	r := &Rider{
		ID:  id,
		tun: tun,
		log: log,
	}
	r.scorer = NewBalanceScorer(&r.tun, log)
	r.ramp = NewDifficultyRamp(&r.tun)
	r.gen = NewDisruptionGenerator(&r.tun, r.ramp, rng, haptics, log)
	r.driver = NewMovementDriver(&r.tun)
	return r
}

// Generator exposes the disruption state machine for observers that want its
// phase-transition callbacks.
func (r *Rider) Generator() *DisruptionGenerator { return r.gen }

// Attach puts the rider on the plank and starts a ride. Difficulty and grace
// timers restart; the first disruption attempt is scheduled.
func (r *Rider) Attach() {
	if r.attached {
		return
	}
	r.attached = true
	r.ramp.Reset(r.now)
	r.gen.Arm(r.now)
	r.lastBalancedAt = r.now
	r.wasBalanced = false
	r.driver.Start()
	r.log.Info("rider attached", zap.Float64("path_t", r.driver.PathT()))
}

// Detach takes the rider off the plank, cancelling any in-flight disruption.
func (r *Rider) Detach() {
	if !r.attached {
		return
	}
	r.attached = false
	r.gen.Cancel(r.now)
	r.driver.Stop()
	r.log.Info("rider detached")
}

// Step advances the whole simulation by dt seconds using the given pose.
func (r *Rider) Step(pose PoseSample, dt float64) {
	r.tick++
	r.now += dt

	st := r.scorer.Step(pose, dt)
	balanced := r.isBalanced(st)
	if balanced && !r.wasBalanced {
		r.lastBalancedAt = r.now
	}
	r.wasBalanced = balanced

	if r.attached {
		r.ramp.Step(r.now)
		if delta := r.gen.Step(r.now, dt, balanced, r.IsInGracePeriod()); delta != 0 {
			r.scorer.Perturb(delta)
		}
		if arrived := r.driver.Step(st.FinalScore, dt); arrived {
			ended := -r.driver.Direction() // Step already flipped it
			r.gen.Cancel(r.now)
			r.attached = false
			r.log.Info("ride ended", zap.Float64("direction", ended))
			if r.OnRideEnded != nil {
				r.OnRideEnded(ended)
			}
		}
	}

	if r.OnBalance != nil {
		r.OnBalance(r.scorer.State())
	}
}

// State returns the current smoothed balance state.
func (r *Rider) State() BalanceState { return r.scorer.State() }

func (r *Rider) Attached() bool { return r.attached }

func (r *Rider) Now() float64 { return r.now }

func (r *Rider) Tick() int { return r.tick }

func (r *Rider) Difficulty() float64 { return r.ramp.Multiplier() }

func (r *Rider) PathT() float64 { return r.driver.PathT() }

// Position is the plank's current world position along the rope.
func (r *Rider) Position() [3]float64 {
	p := r.driver.Position()
	return [3]float64{p.X(), p.Y(), p.Z()}
}

// IsBalanced reports whether the rider currently counts as balanced: the
// final score clears the threshold and the offset has not been pushed too far.
func (r *Rider) IsBalanced() bool { return r.isBalanced(r.scorer.State()) }

func (r *Rider) isBalanced(st BalanceState) bool {
	return st.FinalScore >= r.tun.BalancedThreshold &&
		st.BalanceOffset >= -r.tun.MaxBalancedOffset &&
		st.BalanceOffset <= r.tun.MaxBalancedOffset
}

// IsInGracePeriod reports whether disruptions are currently suppressed
// because balance was (re)gained recently.
func (r *Rider) IsInGracePeriod() bool {
	return r.now-r.lastBalancedAt < r.tun.GraceWindow
}

// TimeSinceBalanced returns seconds since the rider last became balanced.
func (r *Rider) TimeSinceBalanced() float64 {
	return r.now - r.lastBalancedAt
}
