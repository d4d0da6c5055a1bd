package room

import "github.com/JamWare/Funamboard/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	RiderID string
}

// Pose: latest tracked pose for a rider
type Pose struct {
	RiderID string
	Pose    protocol.PoseInput
}

// Attach: rider steps onto the plank and the ride starts
type Attach struct {
	RiderID string
}

// Detach: rider steps off mid-ride
type Detach struct {
	RiderID string
}

// Leave: issued on disconnect
type Leave struct {
	RiderID string
}
