package protocol

// Messages sent by the server.

type Welcome struct {
	RiderID string `json:"riderId"`
	TickHz  int    `json:"tickHz"`
}

type State struct {
	Tick   int             `json:"tick"`
	Riders []RiderSnapshot `json:"riders"`
}

type RiderSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Orientation float64    `json:"orientation"`
	Distance    float64    `json:"distance"`
	Balance     float64    `json:"balance"`
	Offset      float64    `json:"offset"`
	Final       float64    `json:"final"`
	PathT       float64    `json:"pathT"`
	Pos         [3]float64 `json:"pos"`
	Attached    bool       `json:"attached"`
	Balanced    bool       `json:"balanced"`
	Grace       bool       `json:"grace"`
	Difficulty  float64    `json:"difficulty"`
}

// Disruption announces a phase change of the rider's disruption generator.
type Disruption struct {
	RiderID   string  `json:"riderId"`
	Phase     string  `json:"phase"` // "warning", "active" or "idle"
	Type      string  `json:"type"`
	Direction float64 `json:"direction"`
	Strength  float64 `json:"strength"`
	Duration  float64 `json:"duration"` // seconds
}

// Haptic asks the client to fire a controller pulse.
type Haptic struct {
	Hand       string  `json:"hand"` // "left" or "right"
	Strength   float64 `json:"strength"`
	DurationMs float64 `json:"durationMs"`
}

// RideEnded reports that the plank reached a rope end and the rider was
// detached. Direction is the travel direction of the finished ride.
type RideEnded struct {
	RiderID   string  `json:"riderId"`
	Direction float64 `json:"direction"`
}
