package sim

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DisruptionType selects the waveform injected into the balance offset.
type DisruptionType uint8

const (
	Gust DisruptionType = iota
	Drift
	Oscillation
)

func (t DisruptionType) String() string {
	switch t {
	case Gust:
		return "gust"
	case Drift:
		return "drift"
	case Oscillation:
		return "oscillation"
	}
	return "unknown"
}

// UnmarshalYAML accepts disruption types by name in tuning files.
func (t *DisruptionType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "gust":
		*t = Gust
	case "drift":
		*t = Drift
	case "oscillation":
		*t = Oscillation
	default:
		return fmt.Errorf("unknown disruption type %q", s)
	}
	return nil
}

// MarshalYAML writes disruption types by name.
func (t DisruptionType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// DisruptionPhase is the state of the generator's state machine.
type DisruptionPhase uint8

const (
	PhaseIdle DisruptionPhase = iota
	PhaseWarning
	PhaseActive
)

func (p DisruptionPhase) String() string {
	switch p {
	case PhaseWarning:
		return "warning"
	case PhaseActive:
		return "active"
	}
	return "idle"
}

// DisruptionEvent describes one scheduled perturbation. At most one exists at
// a time; it lives from warning entry until its waveform's duration elapses.
type DisruptionEvent struct {
	Type      DisruptionType
	Direction float64 // -1 or +1
	Strength  float64
	Duration  float64 // seconds
	StartAt   float64 // simulation time when the waveform began
}

// DisruptionGenerator schedules and steps perturbation waveforms.
//
// IDLE -> WARNING -> ACTIVE -> IDLE. A disruption only fires when the rider
// is balanced, outside the grace period, and a probability roll succeeds;
// any miss simply reschedules the next attempt. The generator never kicks a
// rider who is already failing.
type DisruptionGenerator struct {
	tun     *Tuning
	rng     *rand.Rand
	log     *zap.Logger
	haptics HapticSink
	ramp    *DifficultyRamp

	phase   DisruptionPhase
	nextAt  float64 // next attempt while idle, phase deadline otherwise
	current DisruptionEvent

	// Optional phase-transition callbacks, invoked from Step.
	OnWarning func(DisruptionEvent)
	OnStart   func(DisruptionEvent)
	OnEnd     func(DisruptionEvent)
}

func NewDisruptionGenerator(tun *Tuning, ramp *DifficultyRamp, rng *rand.Rand, haptics HapticSink, log *zap.Logger) *DisruptionGenerator {
	if haptics == nil {
		haptics = NopHaptics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DisruptionGenerator{
		tun:     tun,
		rng:     rng,
		log:     log,
		haptics: haptics,
		ramp:    ramp,
	}
}

func (g *DisruptionGenerator) Phase() DisruptionPhase { return g.phase }

// Current returns the in-flight event. Only meaningful outside PhaseIdle.
func (g *DisruptionGenerator) Current() DisruptionEvent { return g.current }

// Arm schedules the first attempt after an attach.
func (g *DisruptionGenerator) Arm(now float64) {
	g.phase = PhaseIdle
	g.nextAt = now + g.gap()
}

// Cancel terminates any in-flight disruption without firing OnEnd and resets
// the machine to idle. Used on detach and ride end.
func (g *DisruptionGenerator) Cancel(now float64) {
	g.phase = PhaseIdle
	g.current = DisruptionEvent{}
	g.nextAt = now + g.gap()
}

// Step advances the state machine and returns the offset delta to inject this
// tick (zero outside PhaseActive).
func (g *DisruptionGenerator) Step(now, dt float64, balanced, inGrace bool) float64 {
	switch g.phase {
	case PhaseIdle:
		if now < g.nextAt {
			return 0
		}
		g.tryFire(now, balanced, inGrace)
		return 0

	case PhaseWarning:
		if now >= g.nextAt {
			g.activate(now)
		}
		return 0

	case PhaseActive:
		elapsed := now - g.current.StartAt
		if elapsed >= g.current.Duration {
			done := g.current
			g.phase = PhaseIdle
			g.current = DisruptionEvent{}
			g.nextAt = now + g.gap()
			if g.OnEnd != nil {
				g.OnEnd(done)
			}
			return 0
		}
		return g.waveStrength(elapsed) * g.current.Direction * dt
	}
	return 0
}

// tryFire runs the gating checks and probability roll for one attempt. Every
// miss is a normal path: the next attempt is rescheduled, nothing fires.
func (g *DisruptionGenerator) tryFire(now float64, balanced, inGrace bool) {
	g.nextAt = now + g.gap()
	if len(g.tun.Disruptions) == 0 {
		return // inert, but keeps rescheduling
	}
	if !balanced || inGrace {
		return
	}
	chance := g.tun.DisruptionChance
	if g.ramp != nil {
		chance = g.ramp.Chance(chance)
	}
	if g.rng.Float64() >= chance {
		return
	}

	g.current = g.roll()
	if g.tun.WarningDelay > 0 {
		g.phase = PhaseWarning
		g.nextAt = now + g.tun.WarningDelay
		g.haptics.Pulse(LeftHand, g.tun.WarningHaptic, g.tun.WarningDelay)
		g.haptics.Pulse(RightHand, g.tun.WarningHaptic, g.tun.WarningDelay)
		if g.OnWarning != nil {
			g.OnWarning(g.current)
		}
	} else {
		g.activate(now)
	}
}

// roll picks the waveform, direction, strength and duration for a new event.
// Oscillation is self-oscillating, so its direction stays positive.
func (g *DisruptionGenerator) roll() DisruptionEvent {
	typ := g.tun.Disruptions[g.rng.Intn(len(g.tun.Disruptions))]
	ev := DisruptionEvent{Type: typ, Direction: 1}
	scale := 1.0
	if g.ramp != nil {
		scale = g.ramp.StrengthScale()
	}
	switch typ {
	case Gust:
		ev.Strength = g.uniform(g.tun.GustMin, g.tun.GustMax) * scale
		ev.Duration = g.tun.GustDuration
	case Drift:
		ev.Strength = g.uniform(g.tun.DriftMin, g.tun.DriftMax) * scale
		ev.Duration = g.tun.DriftDuration
	case Oscillation:
		ev.Strength = g.tun.OscAmplitude * scale
		ev.Duration = g.tun.OscDuration
	}
	if typ != Oscillation && g.rng.Intn(2) == 0 {
		ev.Direction = -1
	}
	return ev
}

func (g *DisruptionGenerator) activate(now float64) {
	g.phase = PhaseActive
	g.current.StartAt = now
	if g.OnStart != nil {
		g.OnStart(g.current)
	}
	g.log.Debug("disruption active",
		zap.String("type", g.current.Type.String()),
		zap.Float64("strength", g.current.Strength),
		zap.Float64("duration", g.current.Duration))
}

// waveStrength evaluates the current waveform's envelope at elapsed seconds.
func (g *DisruptionGenerator) waveStrength(elapsed float64) float64 {
	e := g.current
	frac := clamp01(elapsed / e.Duration)
	switch e.Type {
	case Gust:
		return e.Strength * (1 - frac)
	case Drift:
		return e.Strength * math.Sin(math.Pi*frac)
	case Oscillation:
		return e.Strength * math.Sin(2*math.Pi*g.tun.OscFrequency*elapsed) * (1 - frac)
	}
	return 0
}

func (g *DisruptionGenerator) gap() float64 {
	gap := g.tun.MinGap + g.rng.Float64()*(g.tun.MaxGap-g.tun.MinGap)
	if g.ramp != nil {
		gap *= g.ramp.GapScale()
	}
	return gap
}

func (g *DisruptionGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
