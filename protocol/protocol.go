package protocol

import (
	"encoding/json"
)

const (
	MsgHello      = "hello"
	MsgPose       = "pose"
	MsgAttach     = "attach"
	MsgDetach     = "detach"
	MsgWelcome    = "welcome"
	MsgState      = "state"
	MsgDisruption = "disruption"
	MsgHaptic     = "haptic"
	MsgRideEnded  = "ride_ended"
)

const (
	SimTickHz    = 40
	ClientPoseHz = 40
	BroadcastHz  = 20
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
