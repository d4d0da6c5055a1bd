package room

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JamWare/Funamboard/protocol"
	"github.com/JamWare/Funamboard/sim"
)

// rider bundles one connected client with its simulation instance and the
// latest pose it reported. All fields are owned by the room goroutine.
type rider struct {
	id     string
	name   string
	conn   Conn
	sim    *sim.Rider
	latest protocol.PoseInput
}

// Room runs the ride simulations for a set of connected riders. It is an
// actor: every mutation goes through Inbox or the tick loop, so the sim state
// needs no locks.
type Room struct {
	Inbox          chan any
	tickHz         int
	broadcastEvery int
	tick           int
	tuning         sim.Tuning
	riders         map[string]*rider
	quit           chan struct{}
	log            *zap.Logger

	Code    string            // room code (e.g. "ABC123")
	OnEmpty func(code string) // called when last rider leaves
}

func New(tuning sim.Tuning, log *zap.Logger) *Room {
	if log == nil {
		log = zap.NewNop()
	}
	broadcastEvery := protocol.SimTickHz / protocol.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	return &Room{
		Inbox:          make(chan any, 256),
		tickHz:         protocol.SimTickHz,
		broadcastEvery: broadcastEvery,
		tuning:         tuning,
		riders:         make(map[string]*rider),
		quit:           make(chan struct{}),
		log:            log,
	}
}

func (r *Room) Stop() {
	close(r.quit)
}

// Done is closed when the room stops. Callers about to send on Inbox should
// select against it so a join racing a shutdown cannot block forever.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

// NumRiders returns the current number of connected clients.
func (r *Room) NumRiders() int {
	return len(r.riders)
}

func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	dt := 1.0 / float64(r.tickHz)
	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.step(dt)
		}
	}
}

func (r *Room) step(dt float64) {
	r.tick++
	for _, rd := range r.riders {
		rd.sim.Step(toPose(rd.latest), dt)
	}
	if r.tick%r.broadcastEvery == 0 {
		r.broadcastState()
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		id := uuid.NewString()
		name := c.Name
		if name == "" {
			name = "rider-" + id[:8]
		}
		rd := &rider{
			id:   id,
			name: name,
			conn: c.Conn,
			sim: sim.NewRider(id, r.tuning,
				rand.New(rand.NewSource(time.Now().UnixNano())),
				&connHaptics{conn: c.Conn}, r.log),
		}
		r.wireEvents(rd)
		r.riders[id] = rd
		c.Reply <- JoinResult{RiderID: id}
	case Pose:
		if rd, ok := r.riders[c.RiderID]; ok {
			rd.latest = c.Pose
		}
	case Attach:
		if rd, ok := r.riders[c.RiderID]; ok {
			rd.sim.Attach()
		}
	case Detach:
		if rd, ok := r.riders[c.RiderID]; ok {
			rd.sim.Detach()
		}
	case Leave:
		r.handleLeave(c.RiderID)
	}
}

// wireEvents forwards sim notifications to the owning client.
func (r *Room) wireEvents(rd *rider) {
	gen := rd.sim.Generator()
	gen.OnWarning = func(e sim.DisruptionEvent) {
		r.sendDisruption(rd, sim.PhaseWarning, e)
	}
	gen.OnStart = func(e sim.DisruptionEvent) {
		r.sendDisruption(rd, sim.PhaseActive, e)
	}
	gen.OnEnd = func(e sim.DisruptionEvent) {
		r.sendDisruption(rd, sim.PhaseIdle, e)
	}
	rd.sim.OnRideEnded = func(direction float64) {
		b, err := protocol.Encode(protocol.MsgRideEnded, protocol.RideEnded{
			RiderID:   rd.id,
			Direction: direction,
		})
		if err != nil {
			return
		}
		_ = rd.conn.Send(b)
	}
}

func (r *Room) sendDisruption(rd *rider, phase sim.DisruptionPhase, e sim.DisruptionEvent) {
	b, err := protocol.Encode(protocol.MsgDisruption, protocol.Disruption{
		RiderID:   rd.id,
		Phase:     phase.String(),
		Type:      e.Type.String(),
		Direction: e.Direction,
		Strength:  e.Strength,
		Duration:  e.Duration,
	})
	if err != nil {
		return
	}
	_ = rd.conn.Send(b)
}

func (r *Room) handleLeave(riderID string) {
	rd, ok := r.riders[riderID]
	if !ok {
		return
	}
	rd.sim.Detach()
	delete(r.riders, riderID)
	r.sendStateTo(rd.conn)
	_ = rd.conn.Close()
	if len(r.riders) == 0 && r.OnEmpty != nil && r.Code != "" {
		r.OnEmpty(r.Code)
	}
}

func (r *Room) removeRider(riderID string) {
	if rd, ok := r.riders[riderID]; ok {
		_ = rd.conn.Close()
		delete(r.riders, riderID)
	}
}

func (r *Room) broadcastState() {
	b, err := protocol.Encode(protocol.MsgState, r.buildSnapshot())
	if err != nil {
		return
	}

	var failed []string
	for id, rd := range r.riders {
		if err := rd.conn.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.removeRider(id)
	}
}

func (r *Room) sendStateTo(c Conn) {
	b, err := protocol.Encode(protocol.MsgState, r.buildSnapshot())
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (r *Room) buildSnapshot() protocol.State {
	snapshot := protocol.State{
		Tick:   r.tick,
		Riders: make([]protocol.RiderSnapshot, 0, len(r.riders)),
	}
	for id, rd := range r.riders {
		st := rd.sim.State()
		snapshot.Riders = append(snapshot.Riders, protocol.RiderSnapshot{
			ID:          id,
			Name:        rd.name,
			Orientation: st.OrientationScore,
			Distance:    st.DistanceScore,
			Balance:     st.BalanceScore,
			Offset:      st.BalanceOffset,
			Final:       st.FinalScore,
			PathT:       rd.sim.PathT(),
			Pos:         rd.sim.Position(),
			Attached:    rd.sim.Attached(),
			Balanced:    rd.sim.IsBalanced(),
			Grace:       rd.sim.IsInGracePeriod(),
			Difficulty:  rd.sim.Difficulty(),
		})
	}
	return snapshot
}

// connHaptics forwards sim haptic pulses to the client as protocol messages.
type connHaptics struct {
	conn Conn
}

func (h *connHaptics) Pulse(hand sim.Hand, strength, duration float64) {
	b, err := protocol.Encode(protocol.MsgHaptic, protocol.Haptic{
		Hand:       hand.String(),
		Strength:   strength,
		DurationMs: duration * 1000,
	})
	if err != nil {
		return
	}
	_ = h.conn.Send(b)
}

func toPose(in protocol.PoseInput) sim.PoseSample {
	return sim.PoseSample{
		Head:     mgl64.Vec3(in.Head),
		Left:     mgl64.Vec3(in.Left),
		Right:    mgl64.Vec3(in.Right),
		HeadFwd:  mgl64.Vec3(in.HeadFwd),
		LeftFwd:  mgl64.Vec3(in.LeftFwd),
		RightFwd: mgl64.Vec3(in.RightFwd),
		Valid:    in.Valid,
	}
}
